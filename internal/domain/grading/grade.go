package grading

import (
	"errors"
	"fmt"

	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
)

// ErrInvalidGrade is returned when a defense grade falls outside [0, 100].
var ErrInvalidGrade = errors.New("grade must be an integer between 0 and 100")

// Grade band boundaries for the oral defense.
const (
	MinGrade       = 0
	MaxGrade       = 100
	PassingGrade   = 70
	MeritoriaGrade = 95
	LaureadaGrade  = 100
)

// DefenseResult is the classified outcome of a defense grade: the distinction
// label plus the official state the stage consolidates into.
type DefenseResult struct {
	Grade         int
	Label         entity.GradeLabel
	OfficialState entity.OfficialState
}

// Passed reports whether the grade reaches the passing threshold.
func (r DefenseResult) Passed() bool {
	return r.Grade >= PassingGrade
}

// ClassifyDefenseGrade maps a numeric defense grade onto its label and
// official state. Bands are contiguous and non-overlapping:
//
//	[0, 69]   REPROBADA  / NO_APROBADA
//	[70, 94]  APROBADA   / APROBADA
//	[95, 99]  MERITORIA  / APROBADA
//	100       LAUREADA   / APROBADA
func ClassifyDefenseGrade(grade int) (DefenseResult, error) {
	if grade < MinGrade || grade > MaxGrade {
		return DefenseResult{}, fmt.Errorf("%w: got %d", ErrInvalidGrade, grade)
	}

	result := DefenseResult{Grade: grade, OfficialState: entity.OfficialAprobada}
	switch {
	case grade < PassingGrade:
		result.Label = entity.LabelReprobada
		result.OfficialState = entity.OfficialNoAprobada
	case grade < MeritoriaGrade:
		result.Label = entity.LabelAprobada
	case grade < LaureadaGrade:
		result.Label = entity.LabelMeritoria
	default:
		result.Label = entity.LabelLaureada
	}
	return result, nil
}
