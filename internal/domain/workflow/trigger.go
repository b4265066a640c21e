package workflow

// Trigger represents an event that can cause a state transition.
type Trigger string

const (
	// TriggerRadicar files a submission, moving a draft (or an observed stage
	// being resubmitted) into RADICADA.
	TriggerRadicar Trigger = "RADICAR"

	// TriggerAsignarJurados is the coordinator's jury assignment, which opens
	// the review window.
	TriggerAsignarJurados Trigger = "ASIGNAR_JURADOS"

	// TriggerConsolidar closes the stage with a formal outcome.
	TriggerConsolidar Trigger = "CONSOLIDAR"

	// TriggerObservar consolidates with pending remediation, leaving the stage
	// open for a corrected resubmission.
	TriggerObservar Trigger = "OBSERVAR"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
