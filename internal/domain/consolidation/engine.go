// Package consolidation implements the per-stage rule set that turns jury
// verdicts or a defense grade into one official outcome, plus the follow-on
// effects: which workflow state the stage closes into, whether a successor
// stage is spawned and which remediation deadline is due. Decisions are pure
// values; applying them is the orchestrator's job.
package consolidation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
	"github.com/udistrital/trabajo_grado_core/internal/domain/grading"
)

// Rules holds the deadline day counts of the decision table. Values come from
// configuration; zero values fall back to the institutional defaults.
type Rules struct {
	// PropuestaBusinessDays is the remediation window after a proposal is
	// approved with modifications, in business days (Mon-Fri).
	PropuestaBusinessDays int

	// AnteproyectoDays is the remediation window after a pre-project is
	// approved with modifications, in calendar days.
	AnteproyectoDays int

	// SustentacionDays is the final-delivery window after a passed defense,
	// in calendar days.
	SustentacionDays int
}

// DefaultRules returns the institutional deadline windows.
func DefaultRules() Rules {
	return Rules{
		PropuestaBusinessDays: 5,
		AnteproyectoDays:      10,
		SustentacionDays:      8,
	}
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.PropuestaBusinessDays <= 0 {
		r.PropuestaBusinessDays = d.PropuestaBusinessDays
	}
	if r.AnteproyectoDays <= 0 {
		r.AnteproyectoDays = d.AnteproyectoDays
	}
	if r.SustentacionDays <= 0 {
		r.SustentacionDays = d.SustentacionDays
	}
	return r
}

// Engine decides stage outcomes. It is stateless and safe for concurrent use.
type Engine struct {
	rules Rules
}

// NewEngine creates an engine with the given rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules.withDefaults()}
}

// Consolidate computes the decision for a stage from its current evaluations
// or grade. It never mutates anything. Not-enough-input is reported as a
// pending decision; errors are reserved for constraint violations (stage
// already consolidated, missing endorsement, invalid grade).
func (e *Engine) Consolidate(in Input) (Decision, error) {
	stage := in.Stage
	if stage == nil || !stage.StageName.IsValid() {
		return Decision{}, ErrUnknownStage
	}
	if stage.Consolidated() {
		return Decision{}, fmt.Errorf("%w: %s is %s", ErrAlreadyConsolidated, stage.StageName, stage.OfficialState)
	}
	if stage.StageName.RequiresEndorsement() && !in.EndorsementApproved {
		return Decision{}, fmt.Errorf("%w: stage %s", ErrEndorsementMissing, stage.StageName)
	}

	if stage.StageName.GradedByNumber() {
		return e.decideDefense(stage, in.Grade)
	}
	return e.decideJuryStage(stage, in.Evaluations)
}

func (e *Engine) decideJuryStage(stage *entity.ProjectStage, evaluations []entity.Evaluation) (Decision, error) {
	d := Decision{StageID: stage.ID, StageName: stage.StageName}

	outcome, err := grading.ClassifyJuryConsensus(stage.StageName, grading.Results(evaluations))
	if errors.Is(err, grading.ErrInsufficientEvaluations) {
		d.Pending = true
		d.PendingReason = fmt.Sprintf("se requieren al menos %d evaluaciones, hay %d",
			grading.MinJuryEvaluations, len(evaluations))
		return d, nil
	}
	if err != nil {
		return Decision{}, err
	}

	d.OfficialState = outcome
	d.NextSystemState = entity.SystemCerrada
	d.Observations = observationLines(evaluations)
	d.RawResults = grading.Results(evaluations)
	d.AuditDescription = fmt.Sprintf("Etapa %s consolidada como %s con %d evaluaciones",
		stage.StageName, outcome, len(evaluations))

	switch stage.StageName {
	case entity.StagePropuesta:
		if outcome == entity.OfficialAprobadaConModificaciones {
			d.Deadline = &DeadlineSpec{
				Description:  "Entrega de ajustes a la propuesta",
				DaysFromNow:  e.rules.PropuestaBusinessDays,
				BusinessDays: true,
			}
		}

	case entity.StageAnteproyecto:
		switch outcome {
		case entity.OfficialAprobada:
			d.SpawnSuccessor = true
			d.SuccessorStage = entity.StageInformeFinal
		case entity.OfficialAprobadaConModificaciones:
			d.Deadline = &DeadlineSpec{
				Description: "Entrega de correcciones del anteproyecto",
				DaysFromNow: e.rules.AnteproyectoDays,
			}
		}

	case entity.StageInformeFinal:
		switch outcome {
		case entity.OfficialAprobada:
			d.SpawnSuccessor = true
			d.SuccessorStage = entity.StageSustentacion
		case entity.OfficialAprobadaConModificaciones:
			// The coordinator chooses this due date; there is no default.
			d.NextSystemState = entity.SystemConObservaciones
			d.Deadline = &DeadlineSpec{
				Description: "Entrega de ajustes al informe final",
				Manual:      true,
			}
		}
	}

	return d, nil
}

func (e *Engine) decideDefense(stage *entity.ProjectStage, grade *int) (Decision, error) {
	d := Decision{StageID: stage.ID, StageName: stage.StageName}

	if grade == nil {
		d.Pending = true
		d.PendingReason = "la sustentación no tiene nota registrada"
		return d, nil
	}

	result, err := grading.ClassifyDefenseGrade(*grade)
	if err != nil {
		return Decision{}, err
	}

	d.OfficialState = result.OfficialState
	d.NextSystemState = entity.SystemCerrada
	d.GradeLabel = result.Label
	d.FinalGrade = grade
	d.Observations = fmt.Sprintf("Nota: %d (%s)", result.Grade, result.Label)
	d.AuditDescription = fmt.Sprintf("Sustentación consolidada con nota %d: %s", result.Grade, result.Label)

	if result.Passed() {
		d.Deadline = &DeadlineSpec{
			Description: "Entrega final del documento",
			DaysFromNow: e.rules.SustentacionDays,
		}
	}

	return d, nil
}

// observationLines concatenates each evaluator's verdict and comment, one per
// line, in evaluator order.
func observationLines(evaluations []entity.Evaluation) string {
	lines := make([]string, 0, len(evaluations))
	for _, ev := range evaluations {
		line := fmt.Sprintf("%s: %s", ev.EvaluatorID, ev.OfficialResult)
		if ev.Observations != "" {
			line += ". " + ev.Observations
		}
		if ev.CarriedOver {
			line += " (concepto de la versión anterior)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
