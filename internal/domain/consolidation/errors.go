package consolidation

import "errors"

var (
	// ErrEndorsementMissing is returned when consolidation of an endorsed
	// stage is attempted without an approved director endorsement.
	ErrEndorsementMissing = errors.New("no approved endorsement for this submission")

	// ErrAlreadyConsolidated is returned when the stage already holds a formal
	// outcome; the caller must refresh, another actor got there first.
	ErrAlreadyConsolidated = errors.New("stage already consolidated")

	// ErrUnknownStage is returned for a stage name outside the pipeline.
	ErrUnknownStage = errors.New("unknown stage name")
)
