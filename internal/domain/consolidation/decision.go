package consolidation

import (
	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
)

// DeadlineSpec describes a remediation or delivery deadline the orchestrator
// must create when applying a decision. When Manual is set the coordinator
// supplies the due date at apply time and DaysFromNow is meaningless.
type DeadlineSpec struct {
	Description  string `json:"description"`
	DaysFromNow  int    `json:"days_from_now"`
	BusinessDays bool   `json:"business_days"`
	Manual       bool   `json:"manual"`
}

// Decision is the outcome of consolidating a stage: the official state the
// stage lands in, the workflow state it moves to, and the side effects the
// orchestrator must apply. A pending decision carries no outcome and must not
// be applied.
type Decision struct {
	StageID   int64            `json:"stage_id"`
	StageName entity.StageName `json:"stage_name"`

	// Pending is set when not enough input exists yet. It is a legitimate
	// state, not an error.
	Pending       bool   `json:"pending"`
	PendingReason string `json:"pending_reason,omitempty"`

	OfficialState   entity.OfficialState `json:"official_state,omitempty"`
	NextSystemState entity.SystemState   `json:"next_system_state,omitempty"`

	// GradeLabel and FinalGrade are set for SUSTENTACION decisions only.
	GradeLabel entity.GradeLabel `json:"grade_label,omitempty"`
	FinalGrade *int              `json:"final_grade,omitempty"`

	SpawnSuccessor bool             `json:"spawn_successor"`
	SuccessorStage entity.StageName `json:"successor_stage,omitempty"`

	Deadline *DeadlineSpec `json:"deadline,omitempty"`

	// Observations is the stage's consolidated observation text: one line per
	// evaluator, in evaluator order.
	Observations string `json:"observations,omitempty"`

	// RawResults keeps the verdicts the decision was computed from, for the
	// audit trail.
	RawResults []entity.OfficialResult `json:"raw_results,omitempty"`

	AuditDescription string `json:"audit_description,omitempty"`
}

// Input carries everything the engine needs to decide a stage's outcome.
type Input struct {
	Stage       *entity.ProjectStage
	Evaluations []entity.Evaluation

	// Grade is the recorded defense grade, nil when none exists yet.
	Grade *int

	// EndorsementApproved reports whether the latest submission holds at least
	// one approved endorsement. The caller checks this before jury assignment;
	// the engine re-checks it here.
	EndorsementApproved bool
}
