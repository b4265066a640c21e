package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
)

func TestClassifyJuryConsensus_AnteproyectoAnyVeto(t *testing.T) {
	tests := []struct {
		name     string
		results  []entity.OfficialResult
		expected entity.OfficialState
	}{
		{
			name:     "all approved",
			results:  []entity.OfficialResult{entity.ResultAprobado, entity.ResultAprobado},
			expected: entity.OfficialAprobada,
		},
		{
			name:     "single veto rejects",
			results:  []entity.OfficialResult{entity.ResultAprobado, entity.ResultNoAprobado},
			expected: entity.OfficialNoAprobada,
		},
		{
			name:     "veto outranks deferral",
			results:  []entity.OfficialResult{entity.ResultAplazadoPorModificaciones, entity.ResultNoAprobado, entity.ResultAprobado},
			expected: entity.OfficialNoAprobada,
		},
		{
			name:     "deferral forces modifications",
			results:  []entity.OfficialResult{entity.ResultAprobado, entity.ResultAplazadoPorModificaciones},
			expected: entity.OfficialAprobadaConModificaciones,
		},
		{
			name:     "all deferred",
			results:  []entity.OfficialResult{entity.ResultAplazadoPorModificaciones, entity.ResultAplazadoPorModificaciones},
			expected: entity.OfficialAprobadaConModificaciones,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyJuryConsensus(entity.StageAnteproyecto, tt.results)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// A NO_APROBADO anywhere in a pre-project verdict set must reject regardless
// of what the other jurors said.
func TestClassifyJuryConsensus_VetoProperty(t *testing.T) {
	others := []entity.OfficialResult{
		entity.ResultAprobado,
		entity.ResultAplazadoPorModificaciones,
		entity.ResultNoAprobado,
	}

	for _, first := range others {
		for _, second := range others {
			results := []entity.OfficialResult{first, second, entity.ResultNoAprobado}
			got, err := ClassifyJuryConsensus(entity.StageAnteproyecto, results)
			require.NoError(t, err)
			assert.Equal(t, entity.OfficialNoAprobada, got,
				"results %v should be vetoed", results)
		}
	}
}

func TestClassifyJuryConsensus_InformeFinalUnanimity(t *testing.T) {
	tests := []struct {
		name     string
		results  []entity.OfficialResult
		expected entity.OfficialState
	}{
		{
			name:     "unanimous approval",
			results:  []entity.OfficialResult{entity.ResultAprobado, entity.ResultAprobado, entity.ResultAprobado},
			expected: entity.OfficialAprobada,
		},
		{
			name:     "unanimous rejection",
			results:  []entity.OfficialResult{entity.ResultNoAprobado, entity.ResultNoAprobado},
			expected: entity.OfficialNoAprobada,
		},
		{
			name:     "mixed approval and rejection",
			results:  []entity.OfficialResult{entity.ResultAprobado, entity.ResultNoAprobado},
			expected: entity.OfficialAprobadaConModificaciones,
		},
		{
			name:     "single rejection does not veto",
			results:  []entity.OfficialResult{entity.ResultAprobado, entity.ResultAprobado, entity.ResultNoAprobado},
			expected: entity.OfficialAprobadaConModificaciones,
		},
		{
			name:     "any deferral breaks unanimity",
			results:  []entity.OfficialResult{entity.ResultAplazadoPorModificaciones, entity.ResultAplazadoPorModificaciones},
			expected: entity.OfficialAprobadaConModificaciones,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyJuryConsensus(entity.StageInformeFinal, tt.results)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassifyJuryConsensus_PropuestaUsesAnyVeto(t *testing.T) {
	got, err := ClassifyJuryConsensus(entity.StagePropuesta,
		[]entity.OfficialResult{entity.ResultAprobado, entity.ResultAplazadoPorModificaciones})
	require.NoError(t, err)
	assert.Equal(t, entity.OfficialAprobadaConModificaciones, got)
}

func TestClassifyJuryConsensus_InsufficientEvaluations(t *testing.T) {
	_, err := ClassifyJuryConsensus(entity.StageAnteproyecto,
		[]entity.OfficialResult{entity.ResultAprobado})
	assert.ErrorIs(t, err, ErrInsufficientEvaluations)

	_, err = ClassifyJuryConsensus(entity.StageInformeFinal, nil)
	assert.ErrorIs(t, err, ErrInsufficientEvaluations)
}

func TestClassifyJuryConsensus_UnknownResult(t *testing.T) {
	_, err := ClassifyJuryConsensus(entity.StageAnteproyecto,
		[]entity.OfficialResult{entity.ResultAprobado, entity.OfficialResult("MAYBE")})
	assert.ErrorIs(t, err, ErrUnknownResult)
}

func TestClassifyJuryConsensus_SustentacionHasNoConsensusRule(t *testing.T) {
	_, err := ClassifyJuryConsensus(entity.StageSustentacion,
		[]entity.OfficialResult{entity.ResultAprobado, entity.ResultAprobado})
	assert.ErrorIs(t, err, ErrUnsupportedStage)
}
