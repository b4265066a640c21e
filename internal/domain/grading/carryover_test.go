package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
)

func TestCarryOverApprovals(t *testing.T) {
	previous := []entity.Evaluation{
		{EvaluatorID: "jurado-a", OfficialResult: entity.ResultAprobado},
		{EvaluatorID: "jurado-b", OfficialResult: entity.ResultNoAprobado},
	}
	current := []entity.Evaluation{
		{EvaluatorID: "jurado-b", OfficialResult: entity.ResultAprobado},
	}

	merged := CarryOverApprovals(current, previous)
	require.Len(t, merged, 2)

	byEvaluator := make(map[string]entity.Evaluation, len(merged))
	for _, ev := range merged {
		byEvaluator[ev.EvaluatorID] = ev
	}

	// B re-evaluated: the new verdict wins and is not tagged.
	assert.Equal(t, entity.ResultAprobado, byEvaluator["jurado-b"].OfficialResult)
	assert.False(t, byEvaluator["jurado-b"].CarriedOver)

	// A has not re-evaluated: the prior approval is carried over.
	assert.Equal(t, entity.ResultAprobado, byEvaluator["jurado-a"].OfficialResult)
	assert.True(t, byEvaluator["jurado-a"].CarriedOver)
}

func TestCarryOverApprovals_NeverCarriesNonApprovals(t *testing.T) {
	previous := []entity.Evaluation{
		{EvaluatorID: "jurado-a", OfficialResult: entity.ResultNoAprobado},
		{EvaluatorID: "jurado-b", OfficialResult: entity.ResultAplazadoPorModificaciones},
	}

	merged := CarryOverApprovals(nil, previous)
	assert.Empty(t, merged)
}

func TestCarryOverApprovals_NoPrevious(t *testing.T) {
	current := []entity.Evaluation{
		{EvaluatorID: "jurado-a", OfficialResult: entity.ResultAprobado},
	}

	merged := CarryOverApprovals(current, nil)
	require.Len(t, merged, 1)
	assert.False(t, merged[0].CarriedOver)
}

func TestMergeEvaluationHistory_ReachesBackSeveralVersions(t *testing.T) {
	version1 := []entity.Evaluation{
		{EvaluatorID: "jurado-a", OfficialResult: entity.ResultAprobado},
		{EvaluatorID: "jurado-b", OfficialResult: entity.ResultAplazadoPorModificaciones},
	}
	version2 := []entity.Evaluation{
		{EvaluatorID: "jurado-b", OfficialResult: entity.ResultAplazadoPorModificaciones},
	}
	version3 := []entity.Evaluation{
		{EvaluatorID: "jurado-b", OfficialResult: entity.ResultAprobado},
	}

	merged := MergeEvaluationHistory(version3, version2, version1)
	require.Len(t, merged, 2)

	byEvaluator := make(map[string]entity.Evaluation, len(merged))
	for _, ev := range merged {
		byEvaluator[ev.EvaluatorID] = ev
	}

	// A approved at version 1 and never re-evaluated: still counts.
	assert.True(t, byEvaluator["jurado-a"].CarriedOver)
	assert.Equal(t, entity.ResultAprobado, byEvaluator["jurado-a"].OfficialResult)

	// B's fresh verdict at version 3 is the one that counts.
	assert.False(t, byEvaluator["jurado-b"].CarriedOver)
}

func TestMergeEvaluationHistory_NewerRejectionShadowsOlderApproval(t *testing.T) {
	version1 := []entity.Evaluation{
		{EvaluatorID: "jurado-a", OfficialResult: entity.ResultAprobado},
	}
	version2 := []entity.Evaluation{
		{EvaluatorID: "jurado-a", OfficialResult: entity.ResultAplazadoPorModificaciones},
	}

	merged := MergeEvaluationHistory(nil, version2, version1)
	assert.Empty(t, merged)
}

func TestMergeEvaluationHistory_Empty(t *testing.T) {
	assert.Nil(t, MergeEvaluationHistory())
	assert.Empty(t, MergeEvaluationHistory(nil, nil))
}

func TestResults(t *testing.T) {
	evaluations := []entity.Evaluation{
		{EvaluatorID: "jurado-a", OfficialResult: entity.ResultAprobado},
		{EvaluatorID: "jurado-b", OfficialResult: entity.ResultNoAprobado},
	}

	assert.Equal(t,
		[]entity.OfficialResult{entity.ResultAprobado, entity.ResultNoAprobado},
		Results(evaluations))
}
