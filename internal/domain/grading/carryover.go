package grading

import "github.com/udistrital/trabajo_grado_core/internal/domain/entity"

// MergeEvaluationHistory merges the evaluations of every version of a
// resubmitted document, newest first. Each evaluator counts once, with their
// most recent verdict: any verdict at a newer version shadows everything that
// evaluator said before, so a stale approval never outlives a later rejection.
// From older versions only approvals are carried, tagged with CarriedOver; a
// prior non-approving verdict forces the evaluator to re-evaluate.
func MergeEvaluationHistory(history ...[]entity.Evaluation) []entity.Evaluation {
	if len(history) == 0 {
		return nil
	}

	merged := make([]entity.Evaluation, len(history[0]))
	copy(merged, history[0])

	seen := make(map[string]bool, len(merged))
	for _, ev := range merged {
		seen[ev.EvaluatorID] = true
	}

	for _, version := range history[1:] {
		for _, prev := range version {
			if seen[prev.EvaluatorID] {
				continue
			}
			seen[prev.EvaluatorID] = true
			if prev.OfficialResult != entity.ResultAprobado {
				continue
			}
			prev.CarriedOver = true
			merged = append(merged, prev)
		}
	}

	return merged
}

// CarryOverApprovals merges a resubmitted version's evaluations with the
// prior version's, keeping new verdicts and carrying only prior approvals.
func CarryOverApprovals(current, previous []entity.Evaluation) []entity.Evaluation {
	return MergeEvaluationHistory(current, previous)
}

// Results extracts the verdicts of a set of evaluations, in order.
func Results(evaluations []entity.Evaluation) []entity.OfficialResult {
	results := make([]entity.OfficialResult, len(evaluations))
	for i, ev := range evaluations {
		results[i] = ev.OfficialResult
	}
	return results
}
