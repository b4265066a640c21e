package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/udistrital/trabajo_grado_core/internal/application/port"
	"github.com/udistrital/trabajo_grado_core/internal/domain/consolidation"
	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
	"github.com/udistrital/trabajo_grado_core/internal/domain/grading"
)

// ApplyOptions carries the actor and the coordinator-chosen due date for
// decisions whose deadline has no default.
type ApplyOptions struct {
	ActorID       string
	ManualDueDate *time.Time
}

// ConsolidationService is the transition orchestrator: a pure decision phase
// (Decide) separated from the effectful phase (ApplyDecision) that commits a
// decision against the Stage Ledger as one unit.
type ConsolidationService interface {
	// Decide reads the stage's current evaluations or grade and computes the
	// consolidation decision without mutating anything.
	Decide(ctx context.Context, stageID int64) (consolidation.Decision, error)

	// ApplyDecision persists a decision: stage update, optional deadline,
	// optional successor stage and exactly one audit event. Steps are
	// idempotent per decision; a lost concurrent race surfaces as
	// consolidation.ErrAlreadyConsolidated.
	ApplyDecision(ctx context.Context, stageID int64, decision consolidation.Decision, opts ApplyOptions) error

	// Consolidate is Decide followed by ApplyDecision when the decision is not
	// pending. The returned decision reports pending state to the caller.
	Consolidate(ctx context.Context, stageID int64, opts ApplyOptions) (consolidation.Decision, error)
}

type consolidationServiceImpl struct {
	engine          *consolidation.Engine
	stageRepo       port.StageRepository
	submissionRepo  port.SubmissionRepository
	endorsementRepo port.EndorsementRepository
	evaluationRepo  port.EvaluationRepository
	deadlineRepo    port.DeadlineRepository
	auditRepo       port.AuditEventRepository
	txManager       port.TransactionManager
	logger          Logger
	now             func() time.Time
}

// NewConsolidationService creates a new ConsolidationService.
func NewConsolidationService(
	engine *consolidation.Engine,
	stageRepo port.StageRepository,
	submissionRepo port.SubmissionRepository,
	endorsementRepo port.EndorsementRepository,
	evaluationRepo port.EvaluationRepository,
	deadlineRepo port.DeadlineRepository,
	auditRepo port.AuditEventRepository,
	txManager port.TransactionManager,
	logger Logger,
) ConsolidationService {
	return &consolidationServiceImpl{
		engine:          engine,
		stageRepo:       stageRepo,
		submissionRepo:  submissionRepo,
		endorsementRepo: endorsementRepo,
		evaluationRepo:  evaluationRepo,
		deadlineRepo:    deadlineRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		logger:          logger,
		now:             time.Now,
	}
}

// Decide loads the consolidation input for the stage and runs the engine.
func (s *consolidationServiceImpl) Decide(ctx context.Context, stageID int64) (consolidation.Decision, error) {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return consolidation.Decision{}, fmt.Errorf("get stage: %w", err)
	}
	if stage == nil {
		return consolidation.Decision{}, ErrStageNotFound
	}

	in := consolidation.Input{Stage: stage, Grade: stage.FinalGrade}

	latest, err := s.submissionRepo.GetLatestByStageID(ctx, stageID)
	if err != nil {
		return consolidation.Decision{}, fmt.Errorf("get latest submission: %w", err)
	}
	if latest == nil && !stage.StageName.GradedByNumber() {
		return consolidation.Decision{
			StageID:       stageID,
			StageName:     stage.StageName,
			Pending:       true,
			PendingReason: "la etapa no tiene entregas radicadas",
		}, nil
	}

	if latest != nil {
		in.Evaluations, err = s.loadEvaluations(ctx, stage, latest)
		if err != nil {
			return consolidation.Decision{}, err
		}

		in.EndorsementApproved, err = s.endorsementRepo.HasApproved(ctx, latest.ID)
		if err != nil {
			return consolidation.Decision{}, fmt.Errorf("check endorsement: %w", err)
		}
	}

	decision, err := s.engine.Consolidate(in)
	if err != nil {
		return consolidation.Decision{}, err
	}

	if decision.Pending {
		s.logger.Info("Consolidation still pending", "stage_id", stageID, "reason", decision.PendingReason)
	}
	return decision, nil
}

// loadEvaluations returns the current submission's verdicts merged with the
// whole version history, so an approval granted several resubmissions ago
// still counts until that evaluator speaks again.
func (s *consolidationServiceImpl) loadEvaluations(ctx context.Context, stage *entity.ProjectStage, latest *entity.Submission) ([]entity.Evaluation, error) {
	current, err := s.evaluationRepo.GetBySubmissionID(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("get evaluations: %w", err)
	}

	history := [][]entity.Evaluation{deref(current)}
	for version := latest.Version - 1; version >= 1; version-- {
		submission, err := s.submissionRepo.GetByStageAndVersion(ctx, stage.ID, version)
		if err != nil {
			return nil, fmt.Errorf("get submission version %d: %w", version, err)
		}
		if submission == nil {
			continue
		}
		evals, err := s.evaluationRepo.GetBySubmissionID(ctx, submission.ID)
		if err != nil {
			return nil, fmt.Errorf("get evaluations for version %d: %w", version, err)
		}
		history = append(history, deref(evals))
	}

	return grading.MergeEvaluationHistory(history...), nil
}

// ApplyDecision commits the decision inside one transaction. Each step is
// idempotent on its own (conditional stage update, insert-if-absent deadline
// and successor), so a caller retry after a reported failure is safe.
func (s *consolidationServiceImpl) ApplyDecision(ctx context.Context, stageID int64, decision consolidation.Decision, opts ApplyOptions) error {
	if decision.Pending {
		return ErrPendingDecision
	}
	if decision.Deadline != nil && decision.Deadline.Manual && opts.ManualDueDate == nil {
		return ErrManualDueDateRequired
	}

	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		return fmt.Errorf("get stage: %w", err)
	}
	if stage == nil {
		return ErrStageNotFound
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		updated, err := s.stageRepo.Consolidate(txCtx, stageID,
			decision.OfficialState, decision.NextSystemState, decision.FinalGrade, decision.Observations)
		if err != nil {
			return fmt.Errorf("update stage: %w", err)
		}
		if !updated {
			return consolidation.ErrAlreadyConsolidated
		}

		if decision.Deadline != nil {
			if err := s.insertDeadline(txCtx, stageID, decision.Deadline, opts); err != nil {
				return err
			}
		}

		if decision.SpawnSuccessor {
			if err := s.insertSuccessor(txCtx, stage.ProjectID, decision.SuccessorStage); err != nil {
				return err
			}
		}

		// Project.globalStatus is never touched here; final delivery is a
		// separate operation.

		metadata, err := json.Marshal(decision)
		if err != nil {
			return fmt.Errorf("marshal decision: %w", err)
		}
		event := &entity.AuditEvent{
			ProjectID:   stage.ProjectID,
			UserID:      opts.ActorID,
			EventType:   entity.EventStageConsolidated,
			Description: decision.AuditDescription,
			Metadata:    string(metadata),
		}
		if err := s.auditRepo.Append(txCtx, event); err != nil {
			return fmt.Errorf("append audit event: %w", err)
		}

		return nil
	})

	if err != nil {
		s.logger.Error("Failed to apply decision", "error", err, "stage_id", stageID)
		return err
	}

	s.logger.Info("Decision applied",
		"stage_id", stageID,
		"stage", decision.StageName.String(),
		"official_state", decision.OfficialState.String(),
		"spawn_successor", decision.SpawnSuccessor)
	return nil
}

// insertDeadline creates the remediation deadline unless one already exists
// for this stage and description.
func (s *consolidationServiceImpl) insertDeadline(ctx context.Context, stageID int64, spec *consolidation.DeadlineSpec, opts ApplyOptions) error {
	existing, err := s.deadlineRepo.GetByStageAndDescription(ctx, stageID, spec.Description)
	if err != nil {
		return fmt.Errorf("check deadline: %w", err)
	}
	if existing != nil {
		return nil
	}

	var due time.Time
	switch {
	case spec.Manual:
		due = *opts.ManualDueDate
	case spec.BusinessDays:
		due = grading.AddBusinessDays(s.now(), spec.DaysFromNow)
	default:
		due = s.now().AddDate(0, 0, spec.DaysFromNow)
	}

	deadline := &entity.Deadline{
		StageID:     stageID,
		Description: spec.Description,
		DueDate:     due,
		CreatedBy:   opts.ActorID,
	}
	if err := s.deadlineRepo.Create(ctx, deadline); err != nil {
		return fmt.Errorf("insert deadline: %w", err)
	}
	return nil
}

// insertSuccessor creates the follow-on stage in BORRADOR/PENDIENTE unless
// one already exists for (project, stage name).
func (s *consolidationServiceImpl) insertSuccessor(ctx context.Context, projectID int64, name entity.StageName) error {
	existing, err := s.stageRepo.GetByProjectAndName(ctx, projectID, name)
	if err != nil {
		return fmt.Errorf("check successor stage: %w", err)
	}
	if existing != nil {
		return nil
	}

	successor := &entity.ProjectStage{
		ProjectID:     projectID,
		StageName:     name,
		SystemState:   entity.SystemBorrador,
		OfficialState: entity.OfficialPendiente,
	}
	if err := s.stageRepo.Create(ctx, successor); err != nil {
		return fmt.Errorf("insert successor stage: %w", err)
	}
	return nil
}

// Consolidate runs the decision phase and, when an outcome exists, applies it.
func (s *consolidationServiceImpl) Consolidate(ctx context.Context, stageID int64, opts ApplyOptions) (consolidation.Decision, error) {
	decision, err := s.Decide(ctx, stageID)
	if err != nil {
		return consolidation.Decision{}, err
	}
	if decision.Pending {
		return decision, nil
	}
	if err := s.ApplyDecision(ctx, stageID, decision, opts); err != nil {
		return consolidation.Decision{}, err
	}
	return decision, nil
}

func deref(evaluations []*entity.Evaluation) []entity.Evaluation {
	out := make([]entity.Evaluation, 0, len(evaluations))
	for _, ev := range evaluations {
		if ev != nil {
			out = append(out, *ev)
		}
	}
	return out
}
