// Package grading holds the pure classification rules of the degree-work
// pipeline: jury consensus aggregation, defense grade banding, carry-over of
// prior approvals across resubmission versions and business-day arithmetic.
// Nothing here touches storage.
package grading

import (
	"errors"
	"fmt"

	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
)

var (
	// ErrInsufficientEvaluations is returned when fewer than two jury verdicts
	// exist. Callers treat it as "still pending", not as a failure.
	ErrInsufficientEvaluations = errors.New("insufficient evaluations to consolidate")

	// ErrUnknownResult is returned when a verdict is not a known official result.
	ErrUnknownResult = errors.New("unknown official result")

	// ErrUnsupportedStage is returned when a stage has no consensus rule.
	ErrUnsupportedStage = errors.New("stage has no jury consensus rule")
)

// MinJuryEvaluations is the minimum verdict count required before a jury
// stage may consolidate.
const MinJuryEvaluations = 2

// ClassifyJuryConsensus aggregates jury verdicts for a stage into a single
// official outcome.
//
// The aggregation policy differs by stage type and the difference is kept
// deliberately:
//   - PROPUESTA and ANTEPROYECTO use the any-veto rule: one NO_APROBADO sinks
//     the stage, one APLAZADO_POR_MODIFICACIONES forces modifications.
//   - INFORME_FINAL requires unanimity in either direction; any mixed set of
//     verdicts lands on APROBADA_CON_MODIFICACIONES.
//
// TODO: confirm with the curricular committee whether the final-report
// unanimity rule is intended policy; do not unify the two rules until then.
func ClassifyJuryConsensus(stage entity.StageName, results []entity.OfficialResult) (entity.OfficialState, error) {
	if len(results) < MinJuryEvaluations {
		return "", fmt.Errorf("%w: have %d, need %d", ErrInsufficientEvaluations, len(results), MinJuryEvaluations)
	}

	for _, r := range results {
		if !r.IsValid() {
			return "", fmt.Errorf("%w: %q", ErrUnknownResult, r)
		}
	}

	switch stage {
	case entity.StagePropuesta, entity.StageAnteproyecto:
		return classifyAnyVeto(results), nil
	case entity.StageInformeFinal:
		return classifyUnanimity(results), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedStage, stage)
	}
}

// classifyAnyVeto: a single rejection vetoes the stage; otherwise a single
// deferral forces modifications; approval requires every verdict in favor.
func classifyAnyVeto(results []entity.OfficialResult) entity.OfficialState {
	deferred := false
	for _, r := range results {
		switch r {
		case entity.ResultNoAprobado:
			return entity.OfficialNoAprobada
		case entity.ResultAplazadoPorModificaciones:
			deferred = true
		}
	}
	if deferred {
		return entity.OfficialAprobadaConModificaciones
	}
	return entity.OfficialAprobada
}

// classifyUnanimity: approval and rejection both demand a unanimous jury; any
// mix consolidates as approved with modifications.
func classifyUnanimity(results []entity.OfficialResult) entity.OfficialState {
	allApproved, allRejected := true, true
	for _, r := range results {
		if r != entity.ResultAprobado {
			allApproved = false
		}
		if r != entity.ResultNoAprobado {
			allRejected = false
		}
	}
	switch {
	case allApproved:
		return entity.OfficialAprobada
	case allRejected:
		return entity.OfficialNoAprobada
	default:
		return entity.OfficialAprobadaConModificaciones
	}
}
