package service

import (
	"context"
	"fmt"

	"github.com/udistrital/trabajo_grado_core/internal/application/port"
	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
	"github.com/udistrital/trabajo_grado_core/internal/domain/workflow"
)

// CreateSubmissionInput carries one versioned stage delivery.
type CreateSubmissionInput struct {
	StageID     int64
	SubmittedBy string
	DocumentURL string
	Notes       string
}

// SubmissionService files stage submissions. Each submission increments the
// stage's version counter and moves the stage to RADICADA, which also reopens
// an observed stage for repeat endorsement and evaluation.
type SubmissionService interface {
	CreateSubmission(ctx context.Context, in CreateSubmissionInput) (*entity.Submission, error)
	GetSubmissions(ctx context.Context, stageID int64) ([]*entity.Submission, error)
}

type submissionServiceImpl struct {
	stageRepo      port.StageRepository
	submissionRepo port.SubmissionRepository
	auditRepo      port.AuditEventRepository
	txManager      port.TransactionManager
	flow           workflow.Builder
	logger         Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	stageRepo port.StageRepository,
	submissionRepo port.SubmissionRepository,
	auditRepo port.AuditEventRepository,
	txManager port.TransactionManager,
	logger Logger,
) SubmissionService {
	return &submissionServiceImpl{
		stageRepo:      stageRepo,
		submissionRepo: submissionRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
		flow:           workflow.StageFlow(),
		logger:         logger,
	}
}

func (s *submissionServiceImpl) CreateSubmission(ctx context.Context, in CreateSubmissionInput) (*entity.Submission, error) {
	stage, err := s.stageRepo.GetByID(ctx, in.StageID)
	if err != nil {
		return nil, fmt.Errorf("get stage: %w", err)
	}
	if stage == nil {
		return nil, ErrStageNotFound
	}

	machine := s.flow.Build(workflow.FromSystemState(stage.SystemState))
	if err := machine.Fire(ctx, workflow.TriggerRadicar); err != nil {
		return nil, fmt.Errorf("%w: %s no admite nuevas entregas", ErrStageClosed, stage.SystemState)
	}

	latest, err := s.submissionRepo.GetLatestByStageID(ctx, in.StageID)
	if err != nil {
		return nil, fmt.Errorf("get latest submission: %w", err)
	}
	version := 1
	if latest != nil {
		version = latest.Version + 1
	}

	submission := &entity.Submission{
		StageID:     in.StageID,
		SubmittedBy: in.SubmittedBy,
		Version:     version,
		DocumentURL: in.DocumentURL,
		Notes:       in.Notes,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.submissionRepo.Create(txCtx, submission); err != nil {
			return fmt.Errorf("create submission: %w", err)
		}

		next := workflow.ToSystemState(machine.State())
		if next != stage.SystemState {
			if err := s.stageRepo.UpdateSystemState(txCtx, in.StageID, next); err != nil {
				return fmt.Errorf("update system state: %w", err)
			}
		}

		event := &entity.AuditEvent{
			ProjectID:   stage.ProjectID,
			UserID:      in.SubmittedBy,
			EventType:   entity.EventSubmissionCreated,
			Description: fmt.Sprintf("Entrega v%d radicada en etapa %s", version, stage.StageName),
		}
		return s.auditRepo.Append(txCtx, event)
	})

	if err != nil {
		s.logger.Error("Failed to create submission", "error", err, "stage_id", in.StageID)
		return nil, err
	}

	s.logger.Info("Submission created",
		"id", submission.ID, "stage_id", in.StageID, "version", version)
	return submission, nil
}

func (s *submissionServiceImpl) GetSubmissions(ctx context.Context, stageID int64) ([]*entity.Submission, error) {
	return s.submissionRepo.GetByStageID(ctx, stageID)
}
