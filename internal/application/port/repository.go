// Package port defines the narrow interfaces the application layer needs from
// the Stage Ledger. The core never talks to the store directly; everything
// goes through these contracts so decisions stay testable without a database.
package port

import (
	"context"

	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
)

// ProjectRepository defines persistence operations for Project.
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id int64) (*entity.Project, error)
	UpdateGlobalStatus(ctx context.Context, id int64, status entity.GlobalStatus) error
	List(ctx context.Context, limit, offset int) ([]*entity.Project, error)
}

// StageRepository defines persistence operations for ProjectStage.
type StageRepository interface {
	Create(ctx context.Context, stage *entity.ProjectStage) error
	GetByID(ctx context.Context, id int64) (*entity.ProjectStage, error)
	GetByProjectAndName(ctx context.Context, projectID int64, name entity.StageName) (*entity.ProjectStage, error)
	GetByProjectID(ctx context.Context, projectID int64) ([]*entity.ProjectStage, error)
	UpdateSystemState(ctx context.Context, id int64, state entity.SystemState) error

	// SetFinalGrade records the defense grade on a still-pending stage.
	SetFinalGrade(ctx context.Context, id int64, grade int) error

	// Consolidate conditionally records the stage outcome: the update applies
	// only while the stage's official state is still PENDIENTE. It returns
	// false, without error, when a concurrent consolidation already won.
	Consolidate(ctx context.Context, id int64, official entity.OfficialState, system entity.SystemState, finalGrade *int, observations string) (bool, error)
}

// SubmissionRepository defines persistence operations for Submission.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *entity.Submission) error
	GetByID(ctx context.Context, id int64) (*entity.Submission, error)
	GetLatestByStageID(ctx context.Context, stageID int64) (*entity.Submission, error)
	GetByStageAndVersion(ctx context.Context, stageID int64, version int) (*entity.Submission, error)
	GetByStageID(ctx context.Context, stageID int64) ([]*entity.Submission, error)
}

// EndorsementRepository defines persistence operations for Endorsement.
type EndorsementRepository interface {
	Create(ctx context.Context, endorsement *entity.Endorsement) error
	GetBySubmissionID(ctx context.Context, submissionID int64) ([]*entity.Endorsement, error)
	HasApproved(ctx context.Context, submissionID int64) (bool, error)
}

// EvaluationRepository defines persistence operations for Evaluation.
type EvaluationRepository interface {
	// Create inserts a verdict; one exists per (evaluator, submission).
	Create(ctx context.Context, evaluation *entity.Evaluation) error
	GetBySubmissionID(ctx context.Context, submissionID int64) ([]*entity.Evaluation, error)
	GetByEvaluatorAndSubmission(ctx context.Context, evaluatorID string, submissionID int64) (*entity.Evaluation, error)
}

// DeadlineRepository defines persistence operations for Deadline.
type DeadlineRepository interface {
	Create(ctx context.Context, deadline *entity.Deadline) error
	GetByStageID(ctx context.Context, stageID int64) ([]*entity.Deadline, error)
	GetByStageAndDescription(ctx context.Context, stageID int64, description string) (*entity.Deadline, error)
}

// DefenseSessionRepository defines persistence operations for DefenseSession.
type DefenseSessionRepository interface {
	Create(ctx context.Context, session *entity.DefenseSession) error
	GetByStageID(ctx context.Context, stageID int64) (*entity.DefenseSession, error)
}

// AuditEventRepository defines the append-only audit trail.
type AuditEventRepository interface {
	Append(ctx context.Context, event *entity.AuditEvent) error
	GetByProjectID(ctx context.Context, projectID int64) ([]*entity.AuditEvent, error)
}

// TransactionManager handles database transactions.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
