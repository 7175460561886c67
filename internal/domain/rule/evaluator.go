package rule

// Vote is one approver's current decision as seen by the evaluator.
type Vote string

const (
	VotePending  Vote = "PENDING"
	VoteApproved Vote = "APPROVED"
	VoteRejected Vote = "REJECTED"
)

// Outcome is the aggregate verdict for the current decision set.
type Outcome string

const (
	OutcomePending  Outcome = "PENDING"
	OutcomeApproved Outcome = "APPROVED"
	OutcomeRejected Outcome = "REJECTED"
)

// Result is the outcome of one evaluation pass.
//
// Deadlocked is set when a hybrid AND rule has both sub-rules finalized
// with opposite verdicts: the instance can never resolve on its own and
// needs human intervention. OverrideBy names the approver whose vote
// triggered an override win, when the outcome is an override approval.
type Result struct {
	Outcome    Outcome
	Deadlocked bool
	OverrideBy string
}

// Evaluate computes the aggregate verdict for a rule over the current
// decision set. votes maps every snapshotted approver to their current
// decision; a missing key counts as pending.
//
// The function is pure, idempotent, and order-independent: for a fixed
// vote set the result is identical no matter the order decisions were
// recorded in.
func Evaluate(spec Spec, votes map[string]Vote) Result {
	switch spec.Kind {
	case KindPercentage:
		return Result{Outcome: evaluatePercentage(*spec.Percentage, votes)}

	case KindOverride:
		outcome, by := evaluateOverride(*spec.Override, votes)
		return Result{Outcome: outcome, OverrideBy: by}

	case KindHybrid:
		return evaluateHybrid(spec, votes)

	default:
		// Unknown kinds are rejected by Validate at load time; an
		// instance carrying one can only stay pending.
		return Result{Outcome: OutcomePending}
	}
}

// evaluatePercentage applies the threshold over all snapshotted
// approvers. The denominator is the full approver set, not just those
// who have responded. Integer arithmetic avoids float comparison.
func evaluatePercentage(p Percentage, votes map[string]Vote) Outcome {
	total := len(votes)
	if total == 0 {
		return OutcomePending
	}

	var approved, rejected int
	for _, v := range votes {
		switch v {
		case VoteApproved:
			approved++
		case VoteRejected:
			rejected++
		}
	}

	if approved*100 >= p.Threshold*total {
		return OutcomeApproved
	}
	// Rejected once the threshold is unreachable even if every still
	// pending approver were to approve.
	pending := total - approved - rejected
	if (approved+pending)*100 < p.Threshold*total {
		return OutcomeRejected
	}
	return OutcomePending
}

// evaluateOverride short-circuits on the first approval from a listed
// approver (in listing order, so the winner is deterministic) and
// rejects only when every listed approver has rejected. A listed
// approver absent from the vote set counts as pending.
func evaluateOverride(o Override, votes map[string]Vote) (Outcome, string) {
	if len(o.ApproverIDs) == 0 {
		return OutcomePending, ""
	}

	allRejected := true
	for _, id := range o.ApproverIDs {
		switch votes[id] {
		case VoteApproved:
			return OutcomeApproved, id
		case VoteRejected:
			// still counting toward unanimous rejection
		default:
			allRejected = false
		}
	}
	if allRejected {
		return OutcomeRejected, ""
	}
	return OutcomePending, ""
}

// evaluateHybrid combines the percentage and override sub-verdicts.
//
// OR finalizes as soon as either sub-rule does; when both have decided
// with opposite verdicts, the override verdict wins.
//
// AND finalizes only when both sub-rules agree. Two finalized but
// disagreeing sub-verdicts can never converge, so the result is flagged
// deadlocked and left pending for manual resolution.
func evaluateHybrid(spec Spec, votes map[string]Vote) Result {
	pctOutcome := evaluatePercentage(*spec.Percentage, votes)
	ovrOutcome, ovrBy := evaluateOverride(*spec.Override, votes)

	switch spec.Combinator {
	case CombinatorOr:
		if ovrOutcome != OutcomePending {
			r := Result{Outcome: ovrOutcome}
			if ovrOutcome == OutcomeApproved {
				r.OverrideBy = ovrBy
			}
			return r
		}
		if pctOutcome != OutcomePending {
			return Result{Outcome: pctOutcome}
		}
		return Result{Outcome: OutcomePending}

	case CombinatorAnd:
		if pctOutcome == OutcomePending || ovrOutcome == OutcomePending {
			return Result{Outcome: OutcomePending}
		}
		if pctOutcome != ovrOutcome {
			return Result{Outcome: OutcomePending, Deadlocked: true}
		}
		r := Result{Outcome: pctOutcome}
		if pctOutcome == OutcomeApproved {
			r.OverrideBy = ovrBy
		}
		return r

	default:
		return Result{Outcome: OutcomePending}
	}
}
