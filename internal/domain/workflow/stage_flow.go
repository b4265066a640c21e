package workflow

import "github.com/udistrital/trabajo_grado_core/internal/domain/entity"

// StageFlow returns the transition table of the stage lifecycle:
//
//	BORRADOR --RADICAR--> RADICADA --ASIGNAR_JURADOS--> EN_REVISION
//	EN_REVISION --CONSOLIDAR--> CERRADA
//	EN_REVISION --OBSERVAR--> CON_OBSERVACIONES
//	CON_OBSERVACIONES --RADICAR--> RADICADA   (corrected resubmission)
//	RADICADA --RADICAR--> RADICADA            (new version before review)
func StageFlow() Builder {
	b := NewBuilder()

	b.Configure(StateBorrador).
		Permit(TriggerRadicar, StateRadicada)

	b.Configure(StateRadicada).
		Permit(TriggerRadicar, StateRadicada).
		Permit(TriggerAsignarJurados, StateEnRevision)

	b.Configure(StateEnRevision).
		Permit(TriggerConsolidar, StateCerrada).
		Permit(TriggerObservar, StateConObservaciones)

	b.Configure(StateConObservaciones).
		Permit(TriggerRadicar, StateRadicada)

	return b
}

// FromSystemState maps a persisted system state onto its workflow state.
func FromSystemState(s entity.SystemState) State {
	return State(s)
}

// ToSystemState maps a workflow state back onto the persisted representation.
func ToSystemState(s State) entity.SystemState {
	return entity.SystemState(s)
}
