package port

import (
	"context"

	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
)

// Directory resolves approver specifications against the company's org
// data. It is an external capability; the engine never inspects org
// structure directly.
type Directory interface {
	// ResolveRole returns the user IDs holding the role within a company.
	ResolveRole(ctx context.Context, roleTag, companyID string) ([]string, error)

	// ResolveManager returns the manager of a user, or "" when the user
	// has none.
	ResolveManager(ctx context.Context, userID string) (string, error)
}

// AuditSink records approval audit events. Failures are logged by the
// caller, never propagated: auditing is fire-and-forget.
type AuditSink interface {
	Record(ctx context.Context, event *entity.AuditEvent) error
}

// Notification event kinds emitted by the coordinator.
const (
	NotifyDecisionRequested = "decision.requested"
	NotifyExpenseApproved   = "expense.approved"
	NotifyExpenseRejected   = "expense.rejected"
	NotifyExpenseDeadlocked = "expense.deadlocked"
)

// NotificationSink delivers notification intents best-effort. Delivery
// itself is out of scope; the engine only emits the intent.
type NotificationSink interface {
	Notify(ctx context.Context, recipientID, eventKind string, expenseID int64) error
}
