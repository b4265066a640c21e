package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/udistrital/trabajo_grado_core/internal/application/port"
	"github.com/udistrital/trabajo_grado_core/internal/domain/consolidation"
	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
	"github.com/udistrital/trabajo_grado_core/internal/domain/grading"
	"github.com/udistrital/trabajo_grado_core/internal/domain/workflow"
)

// RecordEndorsementInput carries a director's sign-off on a submission.
type RecordEndorsementInput struct {
	SubmissionID int64
	EndorsedBy   string
	Approved     bool
	Comments     string
}

// RecordEvaluationInput carries one jury verdict.
type RecordEvaluationInput struct {
	StageID      int64
	EvaluatorID  string
	Result       entity.OfficialResult
	Observations string
}

// ScheduleDefenseInput carries the oral defense scheduling data.
type ScheduleDefenseInput struct {
	StageID     int64
	ScheduledAt time.Time
	Location    string
	JuryIDs     []string
	ScheduledBy string
}

// ReviewService covers the review cycle between a submission and its
// consolidation: endorsements, jury assignment, jury verdicts and the defense
// grade. Role checks happen upstream; this layer enforces the workflow and
// data constraints only.
type ReviewService interface {
	// RecordEndorsement registers the director's sign-off. No stage mutation
	// happens here: jury assignment is a separate coordinator action, and a
	// refused endorsement just waits for a corrected resubmission.
	RecordEndorsement(ctx context.Context, in RecordEndorsementInput) (*entity.Endorsement, error)

	// AssignJury opens the review window, moving the stage to EN_REVISION.
	// Stages that require an endorsement reject assignment until the latest
	// submission holds an approved one.
	AssignJury(ctx context.Context, stageID int64, juryIDs []string, assignedBy string) error

	// RecordEvaluation registers one verdict per evaluator per submission.
	RecordEvaluation(ctx context.Context, in RecordEvaluationInput) (*entity.Evaluation, error)

	// RecordDefenseGrade validates and stores the defense grade on a pending
	// SUSTENTACION stage. Consolidation happens separately.
	RecordDefenseGrade(ctx context.Context, stageID int64, grade int, recordedBy string) error

	// ScheduleDefense registers the defense session for a SUSTENTACION stage.
	ScheduleDefense(ctx context.Context, in ScheduleDefenseInput) (*entity.DefenseSession, error)
}

type reviewServiceImpl struct {
	stageRepo       port.StageRepository
	submissionRepo  port.SubmissionRepository
	endorsementRepo port.EndorsementRepository
	evaluationRepo  port.EvaluationRepository
	sessionRepo     port.DefenseSessionRepository
	auditRepo       port.AuditEventRepository
	txManager       port.TransactionManager
	flow            workflow.Builder
	logger          Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	stageRepo port.StageRepository,
	submissionRepo port.SubmissionRepository,
	endorsementRepo port.EndorsementRepository,
	evaluationRepo port.EvaluationRepository,
	sessionRepo port.DefenseSessionRepository,
	auditRepo port.AuditEventRepository,
	txManager port.TransactionManager,
	logger Logger,
) ReviewService {
	return &reviewServiceImpl{
		stageRepo:       stageRepo,
		submissionRepo:  submissionRepo,
		endorsementRepo: endorsementRepo,
		evaluationRepo:  evaluationRepo,
		sessionRepo:     sessionRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		flow:            workflow.StageFlow(),
		logger:          logger,
	}
}

func (s *reviewServiceImpl) RecordEndorsement(ctx context.Context, in RecordEndorsementInput) (*entity.Endorsement, error) {
	submission, err := s.submissionRepo.GetByID(ctx, in.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}

	stage, err := s.stageRepo.GetByID(ctx, submission.StageID)
	if err != nil {
		return nil, fmt.Errorf("get stage: %w", err)
	}
	if stage == nil {
		return nil, ErrStageNotFound
	}
	if stage.SystemState == entity.SystemCerrada {
		return nil, ErrStageClosed
	}

	endorsement := &entity.Endorsement{
		SubmissionID: in.SubmissionID,
		EndorsedBy:   in.EndorsedBy,
		Approved:     in.Approved,
		Comments:     in.Comments,
	}

	verdict := "negado"
	if in.Approved {
		verdict = "otorgado"
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.endorsementRepo.Create(txCtx, endorsement); err != nil {
			return fmt.Errorf("create endorsement: %w", err)
		}

		event := &entity.AuditEvent{
			ProjectID:   stage.ProjectID,
			UserID:      in.EndorsedBy,
			EventType:   entity.EventEndorsementRecorded,
			Description: fmt.Sprintf("Aval %s para la entrega v%d de %s", verdict, submission.Version, stage.StageName),
		}
		return s.auditRepo.Append(txCtx, event)
	})

	if err != nil {
		s.logger.Error("Failed to record endorsement", "error", err, "submission_id", in.SubmissionID)
		return nil, err
	}

	s.logger.Info("Endorsement recorded",
		"submission_id", in.SubmissionID, "approved", in.Approved)
	return endorsement, nil
}

func (s *reviewServiceImpl) AssignJury(ctx context.Context, stageID int64, juryIDs []string, assignedBy string) error {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return fmt.Errorf("get stage: %w", err)
	}
	if stage == nil {
		return ErrStageNotFound
	}

	if stage.StageName.RequiresEndorsement() {
		latest, err := s.submissionRepo.GetLatestByStageID(ctx, stageID)
		if err != nil {
			return fmt.Errorf("get latest submission: %w", err)
		}
		if latest == nil {
			return ErrSubmissionNotFound
		}
		approved, err := s.endorsementRepo.HasApproved(ctx, latest.ID)
		if err != nil {
			return fmt.Errorf("check endorsement: %w", err)
		}
		if !approved {
			return consolidation.ErrEndorsementMissing
		}
	}

	machine := s.flow.Build(workflow.FromSystemState(stage.SystemState))
	if err := machine.Fire(ctx, workflow.TriggerAsignarJurados); err != nil {
		return fmt.Errorf("assign jury from %s: %w", stage.SystemState, err)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.stageRepo.UpdateSystemState(txCtx, stageID, workflow.ToSystemState(machine.State())); err != nil {
			return fmt.Errorf("update system state: %w", err)
		}

		metadata, _ := json.Marshal(map[string][]string{"jury_ids": juryIDs})
		event := &entity.AuditEvent{
			ProjectID:   stage.ProjectID,
			UserID:      assignedBy,
			EventType:   entity.EventJuryAssigned,
			Description: fmt.Sprintf("Jurados asignados a %s: %s", stage.StageName, strings.Join(juryIDs, ", ")),
			Metadata:    string(metadata),
		}
		return s.auditRepo.Append(txCtx, event)
	})

	if err != nil {
		s.logger.Error("Failed to assign jury", "error", err, "stage_id", stageID)
		return err
	}

	s.logger.Info("Jury assigned", "stage_id", stageID, "jury_count", len(juryIDs))
	return nil
}

func (s *reviewServiceImpl) RecordEvaluation(ctx context.Context, in RecordEvaluationInput) (*entity.Evaluation, error) {
	if !in.Result.IsValid() {
		return nil, fmt.Errorf("%w: %q", grading.ErrUnknownResult, in.Result)
	}

	stage, err := s.stageRepo.GetByID(ctx, in.StageID)
	if err != nil {
		return nil, fmt.Errorf("get stage: %w", err)
	}
	if stage == nil {
		return nil, ErrStageNotFound
	}
	if stage.Consolidated() {
		return nil, consolidation.ErrAlreadyConsolidated
	}
	if stage.StageName.GradedByNumber() {
		return nil, fmt.Errorf("%w: la sustentación se califica con nota", ErrWrongStage)
	}

	latest, err := s.submissionRepo.GetLatestByStageID(ctx, in.StageID)
	if err != nil {
		return nil, fmt.Errorf("get latest submission: %w", err)
	}
	if latest == nil {
		return nil, ErrSubmissionNotFound
	}

	if stage.StageName.RequiresEndorsement() {
		approved, err := s.endorsementRepo.HasApproved(ctx, latest.ID)
		if err != nil {
			return nil, fmt.Errorf("check endorsement: %w", err)
		}
		if !approved {
			return nil, consolidation.ErrEndorsementMissing
		}
	}

	existing, err := s.evaluationRepo.GetByEvaluatorAndSubmission(ctx, in.EvaluatorID, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("check evaluation: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEvaluation
	}

	evaluation := &entity.Evaluation{
		SubmissionID:   latest.ID,
		StageID:        in.StageID,
		EvaluatorID:    in.EvaluatorID,
		OfficialResult: in.Result,
		Observations:   in.Observations,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.evaluationRepo.Create(txCtx, evaluation); err != nil {
			return fmt.Errorf("create evaluation: %w", err)
		}

		event := &entity.AuditEvent{
			ProjectID:   stage.ProjectID,
			UserID:      in.EvaluatorID,
			EventType:   entity.EventEvaluationRecorded,
			Description: fmt.Sprintf("Concepto %s registrado para %s v%d", in.Result, stage.StageName, latest.Version),
		}
		return s.auditRepo.Append(txCtx, event)
	})

	if err != nil {
		s.logger.Error("Failed to record evaluation", "error", err,
			"stage_id", in.StageID, "evaluator_id", in.EvaluatorID)
		return nil, err
	}

	s.logger.Info("Evaluation recorded",
		"stage_id", in.StageID, "evaluator_id", in.EvaluatorID, "result", in.Result.String())
	return evaluation, nil
}

func (s *reviewServiceImpl) RecordDefenseGrade(ctx context.Context, stageID int64, grade int, recordedBy string) error {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return fmt.Errorf("get stage: %w", err)
	}
	if stage == nil {
		return ErrStageNotFound
	}
	if !stage.StageName.GradedByNumber() {
		return fmt.Errorf("%w: solo la sustentación recibe nota", ErrWrongStage)
	}
	if stage.Consolidated() {
		return consolidation.ErrAlreadyConsolidated
	}

	result, err := grading.ClassifyDefenseGrade(grade)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.stageRepo.SetFinalGrade(txCtx, stageID, grade); err != nil {
			return fmt.Errorf("set final grade: %w", err)
		}

		event := &entity.AuditEvent{
			ProjectID:   stage.ProjectID,
			UserID:      recordedBy,
			EventType:   entity.EventGradeRecorded,
			Description: fmt.Sprintf("Nota %d (%s) registrada para la sustentación", grade, result.Label),
		}
		return s.auditRepo.Append(txCtx, event)
	})

	if err != nil {
		s.logger.Error("Failed to record defense grade", "error", err, "stage_id", stageID)
		return err
	}

	s.logger.Info("Defense grade recorded", "stage_id", stageID, "grade", grade, "label", result.Label.String())
	return nil
}

func (s *reviewServiceImpl) ScheduleDefense(ctx context.Context, in ScheduleDefenseInput) (*entity.DefenseSession, error) {
	stage, err := s.stageRepo.GetByID(ctx, in.StageID)
	if err != nil {
		return nil, fmt.Errorf("get stage: %w", err)
	}
	if stage == nil {
		return nil, ErrStageNotFound
	}
	if !stage.StageName.GradedByNumber() {
		return nil, fmt.Errorf("%w: solo la sustentación se programa", ErrWrongStage)
	}
	if stage.Consolidated() {
		return nil, consolidation.ErrAlreadyConsolidated
	}

	session := &entity.DefenseSession{
		StageID:     in.StageID,
		ScheduledAt: in.ScheduledAt,
		Location:    in.Location,
		JuryIDs:     strings.Join(in.JuryIDs, ","),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.sessionRepo.Create(txCtx, session); err != nil {
			return fmt.Errorf("create defense session: %w", err)
		}

		event := &entity.AuditEvent{
			ProjectID:   stage.ProjectID,
			UserID:      in.ScheduledBy,
			EventType:   entity.EventDefenseScheduled,
			Description: fmt.Sprintf("Sustentación programada para %s en %s", in.ScheduledAt.Format("2006-01-02 15:04"), in.Location),
		}
		return s.auditRepo.Append(txCtx, event)
	})

	if err != nil {
		s.logger.Error("Failed to schedule defense", "error", err, "stage_id", in.StageID)
		return nil, err
	}

	s.logger.Info("Defense scheduled", "stage_id", in.StageID, "scheduled_at", in.ScheduledAt)
	return session, nil
}
