package port

import (
	"context"
	"time"

	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
)

// WorkflowRepository defines persistence operations for Workflow
type WorkflowRepository interface {
	Create(ctx context.Context, wf *entity.Workflow) error
	GetByID(ctx context.Context, id int64) (*entity.Workflow, error)
	ListByCompany(ctx context.Context, companyID string, activeOnly bool) ([]*entity.Workflow, error)
}

// ExpenseRepository defines persistence operations for Expense
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, id int64) (*entity.Expense, error)
	UpdateStatus(ctx context.Context, id int64, status entity.ExpenseStatus) error
	SetSubmittedAt(ctx context.Context, id int64, t time.Time) error
	SetResolvedAt(ctx context.Context, id int64, t time.Time) error
}

// InstanceRepository defines persistence operations for ApprovalInstance
type InstanceRepository interface {
	Create(ctx context.Context, instance *entity.ApprovalInstance) error
	GetByID(ctx context.Context, id int64) (*entity.ApprovalInstance, error)
	GetActiveByExpenseID(ctx context.Context, expenseID int64) (*entity.ApprovalInstance, error)

	// Finalize transitions the instance aggregate from pending to the
	// given terminal state. It must be implemented as a compare-and-set
	// on the pending state and report whether this call won the
	// transition, so that concurrent finalize attempts resolve to
	// exactly one winner.
	Finalize(ctx context.Context, id int64, state entity.InstanceState, at time.Time) (bool, error)

	MarkDeadlocked(ctx context.Context, id int64) error
}

// DecisionRepository defines persistence operations for Decision
type DecisionRepository interface {
	CreateBatch(ctx context.Context, decisions []*entity.Decision) error
	GetByInstanceID(ctx context.Context, instanceID int64) ([]*entity.Decision, error)

	// Record applies an approver's vote. It must only succeed while the
	// decision is still pending and report whether the row was mutated,
	// so a repeated vote surfaces as already-decided instead of
	// overwriting history.
	Record(ctx context.Context, instanceID int64, approverID string, status entity.DecisionStatus, comment string, at time.Time) (bool, error)

	MarkOverride(ctx context.Context, instanceID int64, approverID string) error
}

// AuditRepository defines persistence operations for AuditEvent
type AuditRepository interface {
	Append(ctx context.Context, event *entity.AuditEvent) error
	ListByExpenseID(ctx context.Context, expenseID int64) ([]*entity.AuditEvent, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
