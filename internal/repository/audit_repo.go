package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
	"github.com/Viraj0711/OdooHack-sub001/pkg/database"
)

// AuditRepository stores the append-only approval audit trail. It doubles
// as the coordinator's audit sink.
type AuditRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

// Append writes one audit event
func (r *AuditRepository) Append(ctx context.Context, event *entity.AuditEvent) error {
	query := `
		INSERT INTO audit_events (
			action, expense_id, instance_id, actor_id,
			before_state, after_state, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	var instanceID interface{}
	if event.InstanceID != 0 {
		instanceID = event.InstanceID
	}
	result, err := r.db.Conn(ctx).ExecContext(ctx, query,
		event.Action,
		event.ExpenseID,
		instanceID,
		event.ActorID,
		event.BeforeState,
		event.AfterState,
		event.Detail,
	)
	if err != nil {
		r.logger.Error("Failed to append audit event", zap.String("action", event.Action), zap.Error(err))
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	event.ID = id
	return nil
}

// Record implements the audit sink port on top of Append
func (r *AuditRepository) Record(ctx context.Context, event *entity.AuditEvent) error {
	return r.Append(ctx, event)
}

// ListByExpenseID retrieves the audit trail of an expense in event order
func (r *AuditRepository) ListByExpenseID(ctx context.Context, expenseID int64) ([]*entity.AuditEvent, error) {
	query := `
		SELECT id, action, expense_id, instance_id, actor_id,
			before_state, after_state, detail, created_at
		FROM audit_events
		WHERE expense_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, expenseID)
	if err != nil {
		r.logger.Error("Failed to list audit events", zap.Int64("expense_id", expenseID), zap.Error(err))
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	events := make([]*entity.AuditEvent, 0)
	for rows.Next() {
		var (
			event      entity.AuditEvent
			instanceID sql.NullInt64
		)
		err := rows.Scan(
			&event.ID,
			&event.Action,
			&event.ExpenseID,
			&instanceID,
			&event.ActorID,
			&event.BeforeState,
			&event.AfterState,
			&event.Detail,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if instanceID.Valid {
			event.InstanceID = instanceID.Int64
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
