package service

import (
	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
)

// MatchWorkflow selects the single active workflow that applies to the
// given expense attributes. Candidates whose conditions do not match
// are filtered out; among the rest the highest priority wins, with the
// most recently created workflow breaking ties so selection stays
// deterministic.
//
// Pure function: no side effects, no I/O. Loading the candidate set is
// the caller's job.
func MatchWorkflow(amountCents int64, category string, candidates []*entity.Workflow) (*entity.Workflow, error) {
	var best *entity.Workflow

	for _, wf := range candidates {
		if !wf.Active {
			continue
		}
		if !wf.Conditions.Matches(amountCents, category) {
			continue
		}
		if best == nil || betterMatch(wf, best) {
			best = wf
		}
	}

	if best == nil {
		return nil, ErrNoWorkflowMatched
	}
	return best, nil
}

// betterMatch reports whether a should be preferred over b.
func betterMatch(a, b *entity.Workflow) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	// Stable last resort for identical timestamps.
	return a.ID > b.ID
}
