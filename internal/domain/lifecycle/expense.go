package lifecycle

// BuildExpenseStateMachine creates a state machine configured for the
// expense approval lifecycle:
//
//	DRAFT → SUBMITTED → PENDING → {APPROVED, REJECTED}
//	APPROVED → PAID
//
// REJECTED and PAID are terminal.
func BuildExpenseStateMachine(initialState State) StateMachine {
	b := NewBuilder()

	b.Configure(StateDraft).
		Permit(TriggerSubmit, StateSubmitted)

	b.Configure(StateSubmitted).
		Permit(TriggerRoute, StatePending)

	// Only a pending expense can be finalized by the coordinator.
	b.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)

	b.Configure(StateApproved).
		Permit(TriggerPay, StatePaid)

	return b.Build(initialState)
}
