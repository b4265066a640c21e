// Package service wires the pure decision logic to the Stage Ledger: the
// consolidation orchestrator plus the lifecycle operations around it
// (projects, submissions, endorsements, evaluations, defense).
package service

import "errors"

// Logger interface for minimal logging dependency.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

var (
	// ErrProjectNotFound is returned when a project id resolves to nothing.
	ErrProjectNotFound = errors.New("project not found")

	// ErrStageNotFound is returned when a stage id resolves to nothing.
	ErrStageNotFound = errors.New("stage not found")

	// ErrSubmissionNotFound is returned when a stage has no submission yet or
	// a submission id resolves to nothing.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrStageClosed is returned when an operation targets a stage already in
	// CERRADA.
	ErrStageClosed = errors.New("stage is closed")

	// ErrWrongStage is returned when an operation targets a stage of the wrong
	// type (e.g. recording a grade outside SUSTENTACION).
	ErrWrongStage = errors.New("operation does not apply to this stage type")

	// ErrDuplicateEvaluation is returned when an evaluator already issued a
	// verdict for the submission.
	ErrDuplicateEvaluation = errors.New("evaluator already evaluated this submission")

	// ErrPendingDecision is returned when ApplyDecision receives a pending
	// decision; there is nothing to apply yet.
	ErrPendingDecision = errors.New("decision is still pending, nothing to apply")

	// ErrManualDueDateRequired is returned when a decision carries a
	// coordinator-chosen deadline and no due date was supplied.
	ErrManualDueDateRequired = errors.New("decision requires a coordinator-chosen due date")

	// ErrProjectNotActive is returned when a lifecycle operation targets a
	// project that is no longer VIGENTE.
	ErrProjectNotActive = errors.New("project is not active")

	// ErrDefenseNotApproved is returned when final delivery is registered
	// before the defense stage consolidated as approved.
	ErrDefenseNotApproved = errors.New("defense stage is not consolidated as approved")
)
