package service

import "errors"

// Engine error taxonomy. Configuration errors surface before any state
// is created; authorization and state errors leave everything
// untouched; the ambiguity error marks an instance that needs a human.
var (
	// ErrNoWorkflowMatched is returned when no active workflow's
	// conditions match the submitted expense.
	ErrNoWorkflowMatched = errors.New("no workflow matched the expense")

	// ErrNoApproversResolved is returned when a workflow's approver
	// specifications expand to an empty set. This is a configuration
	// error and never silently auto-approves.
	ErrNoApproversResolved = errors.New("no approvers resolved for workflow")

	// ErrNotAnApprover is returned when the acting user is not part of
	// the instance's approver snapshot.
	ErrNotAnApprover = errors.New("user is not an approver on this instance")

	// ErrAlreadyDecided is returned when an approver votes twice.
	// The second call is an idempotent no-op.
	ErrAlreadyDecided = errors.New("approver has already decided")

	// ErrIllegalTransition is returned when the expense lifecycle does
	// not permit the requested transition.
	ErrIllegalTransition = errors.New("illegal expense state transition")

	// ErrAmbiguousHybridResult is returned when a hybrid AND rule's
	// sub-rules finalized with opposite verdicts. The instance is
	// flagged deadlocked and left pending for manual resolution.
	ErrAmbiguousHybridResult = errors.New("hybrid rule sub-results disagree; manual resolution required")

	// ErrDecisionMissing is returned when a snapshotted approver has no
	// decision record. This indicates corrupted data, not caller error.
	ErrDecisionMissing = errors.New("decision record missing for snapshotted approver")

	// ErrExpenseNotFound is returned when the expense does not exist.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrInstanceNotFound is returned when the approval instance does not exist.
	ErrInstanceNotFound = errors.New("approval instance not found")
)
