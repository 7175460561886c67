package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
	"github.com/Viraj0711/OdooHack-sub001/pkg/database"
)

// InstanceRepository handles approval instance database operations
type InstanceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewInstanceRepository creates a new instance repository
func NewInstanceRepository(db *database.DB, logger *zap.Logger) *InstanceRepository {
	return &InstanceRepository{db: db, logger: logger}
}

// Create creates a new approval instance with its approver snapshot
func (r *InstanceRepository) Create(ctx context.Context, instance *entity.ApprovalInstance) error {
	approversJSON, err := json.Marshal(instance.Approvers)
	if err != nil {
		return fmt.Errorf("marshal approver snapshot: %w", err)
	}

	query := `
		INSERT INTO approval_instances (expense_id, workflow_id, approvers, state)
		VALUES (?, ?, ?, ?)
	`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query,
		instance.ExpenseID,
		instance.WorkflowID,
		string(approversJSON),
		instance.State,
	)
	if err != nil {
		r.logger.Error("Failed to create approval instance", zap.Error(err))
		return fmt.Errorf("failed to create approval instance: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	instance.ID = id
	return nil
}

// GetByID retrieves an approval instance by ID. Returns nil when not found.
func (r *InstanceRepository) GetByID(ctx context.Context, id int64) (*entity.ApprovalInstance, error) {
	query := selectInstance + ` WHERE id = ?`
	instance, err := scanInstance(r.db.Conn(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get instance", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}
	return instance, nil
}

// GetActiveByExpenseID retrieves the pending instance for an expense,
// or nil when the expense has none.
func (r *InstanceRepository) GetActiveByExpenseID(ctx context.Context, expenseID int64) (*entity.ApprovalInstance, error) {
	query := selectInstance + ` WHERE expense_id = ? AND state = 'PENDING' ORDER BY id DESC LIMIT 1`
	instance, err := scanInstance(r.db.Conn(ctx).QueryRowContext(ctx, query, expenseID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active instance: %w", err)
	}
	return instance, nil
}

// Finalize transitions the aggregate state from pending to a terminal
// outcome. The WHERE clause on the pending state makes this a
// compare-and-set: of two racing finalize attempts exactly one mutates
// the row, and the return value tells the caller whether it won.
func (r *InstanceRepository) Finalize(ctx context.Context, id int64, state entity.InstanceState, at time.Time) (bool, error) {
	query := `
		UPDATE approval_instances
		SET state = ?, finalized_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND state = 'PENDING'
	`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, state, at, id)
	if err != nil {
		r.logger.Error("Failed to finalize instance", zap.Int64("id", id), zap.Error(err))
		return false, fmt.Errorf("failed to finalize instance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// MarkDeadlocked flags an instance for manual resolution. The aggregate
// state stays pending.
func (r *InstanceRepository) MarkDeadlocked(ctx context.Context, id int64) error {
	query := `UPDATE approval_instances SET deadlocked = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark instance deadlocked: %w", err)
	}
	return nil
}

const selectInstance = `
	SELECT id, expense_id, workflow_id, approvers, state, deadlocked,
		finalized_at, created_at, updated_at
	FROM approval_instances`

func scanInstance(row rowScanner) (*entity.ApprovalInstance, error) {
	var (
		instance      entity.ApprovalInstance
		approversJSON string
		finalizedAt   sql.NullTime
	)
	err := row.Scan(
		&instance.ID,
		&instance.ExpenseID,
		&instance.WorkflowID,
		&approversJSON,
		&instance.State,
		&instance.Deadlocked,
		&finalizedAt,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(approversJSON), &instance.Approvers); err != nil {
		return nil, fmt.Errorf("unmarshal approver snapshot: %w", err)
	}
	if finalizedAt.Valid {
		instance.FinalizedAt = &finalizedAt.Time
	}
	return &instance, nil
}
