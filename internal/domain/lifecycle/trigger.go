package lifecycle

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	// TriggerSubmit moves a draft into the submitted state.
	TriggerSubmit Trigger = "SUBMIT"
	// TriggerRoute moves a submitted expense into pending once an
	// approval instance has been created for it.
	TriggerRoute Trigger = "ROUTE"
	// TriggerApprove finalizes a pending expense as approved.
	TriggerApprove Trigger = "APPROVE"
	// TriggerReject finalizes a pending expense as rejected.
	TriggerReject Trigger = "REJECT"
	// TriggerPay records the external payment-completion event.
	TriggerPay Trigger = "PAY"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
