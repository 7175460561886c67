package entity

import "time"

// InstanceState is the aggregate state of an approval instance.
type InstanceState string

const (
	InstancePending  InstanceState = "PENDING"
	InstanceApproved InstanceState = "APPROVED"
	InstanceRejected InstanceState = "REJECTED"
)

// ApprovalInstance is the live execution of a matched workflow for one
// expense. Approvers holds the resolved, deduplicated approver snapshot
// in specification order; it is immune to later workflow edits.
type ApprovalInstance struct {
	ID          int64         `json:"id"`
	ExpenseID   int64         `json:"expense_id"`
	WorkflowID  int64         `json:"workflow_id"`
	Approvers   []string      `json:"approvers"`
	State       InstanceState `json:"state"`
	Deadlocked  bool          `json:"deadlocked"`
	FinalizedAt *time.Time    `json:"finalized_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsFinal reports whether the aggregate has reached a terminal outcome.
func (i *ApprovalInstance) IsFinal() bool {
	return i.State == InstanceApproved || i.State == InstanceRejected
}

// HasApprover reports whether a user is part of the approver snapshot.
func (i *ApprovalInstance) HasApprover(userID string) bool {
	for _, id := range i.Approvers {
		if id == userID {
			return true
		}
	}
	return false
}

// DecisionStatus is the status of one approver's vote.
type DecisionStatus string

const (
	DecisionPending  DecisionStatus = "PENDING"
	DecisionApproved DecisionStatus = "APPROVED"
	DecisionRejected DecisionStatus = "REJECTED"
)

// Decision is one approver's vote within an approval instance.
// DecidedAt is set on the first pending→approved/rejected transition
// and never changes afterwards.
type Decision struct {
	ID         int64          `json:"id"`
	InstanceID int64          `json:"instance_id"`
	ApproverID string         `json:"approver_id"`
	Status     DecisionStatus `json:"status"`
	Comment    string         `json:"comment,omitempty"`
	IsOverride bool           `json:"is_override"`
	DecidedAt  *time.Time     `json:"decided_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditEvent is one immutable entry in the approval audit trail.
type AuditEvent struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	ExpenseID   int64     `json:"expense_id"`
	InstanceID  int64     `json:"instance_id,omitempty"`
	ActorID     string    `json:"actor_id,omitempty"`
	BeforeState string    `json:"before_state,omitempty"`
	AfterState  string    `json:"after_state,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
