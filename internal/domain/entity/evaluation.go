package entity

import "time"

// Evaluation is one jury member's verdict on a submission. Exactly one exists
// per (evaluator, submission). On resubmission a prior APROBADO verdict may be
// carried over for evaluators who have not re-evaluated the new version.
type Evaluation struct {
	ID             int64          `json:"id"`
	SubmissionID   int64          `json:"submission_id"`
	StageID        int64          `json:"stage_id"`
	EvaluatorID    string         `json:"evaluator_id"`
	OfficialResult OfficialResult `json:"official_result"`
	Observations   string         `json:"observations"`
	CarriedOver    bool           `json:"carried_over"`
	CreatedAt      time.Time      `json:"created_at"`
}
