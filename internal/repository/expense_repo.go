package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
	"github.com/Viraj0711/OdooHack-sub001/pkg/database"
)

// ExpenseRepository handles expense database operations
type ExpenseRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *database.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{db: db, logger: logger}
}

// Create creates a new expense in draft state
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	if expense.Status == "" {
		expense.Status = entity.ExpenseDraft
	}

	query := `
		INSERT INTO expenses (
			company_id, submitter_id, amount_cents, currency,
			category, description, status
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query,
		expense.CompanyID,
		expense.SubmitterID,
		expense.AmountCents,
		expense.Currency,
		expense.Category,
		expense.Description,
		expense.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	expense.ID = id
	return nil
}

// GetByID retrieves an expense by ID. Returns nil when not found.
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*entity.Expense, error) {
	query := `
		SELECT id, company_id, submitter_id, amount_cents, currency,
			category, description, status, submitted_at, resolved_at,
			created_at, updated_at
		FROM expenses
		WHERE id = ?
	`

	var (
		expense     entity.Expense
		submittedAt sql.NullTime
		resolvedAt  sql.NullTime
	)
	err := r.db.Conn(ctx).QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.CompanyID,
		&expense.SubmitterID,
		&expense.AmountCents,
		&expense.Currency,
		&expense.Category,
		&expense.Description,
		&expense.Status,
		&submittedAt,
		&resolvedAt,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get expense", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if submittedAt.Valid {
		expense.SubmittedAt = &submittedAt.Time
	}
	if resolvedAt.Valid {
		expense.ResolvedAt = &resolvedAt.Time
	}
	return &expense, nil
}

// UpdateStatus updates the expense status
func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id int64, status entity.ExpenseStatus) error {
	query := `UPDATE expenses SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, status, id); err != nil {
		r.logger.Error("Failed to update expense status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update expense status: %w", err)
	}
	return nil
}

// SetSubmittedAt records the submission time
func (r *ExpenseRepository) SetSubmittedAt(ctx context.Context, id int64, t time.Time) error {
	query := `UPDATE expenses SET submitted_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, t, id); err != nil {
		return fmt.Errorf("failed to set submitted time: %w", err)
	}
	return nil
}

// SetResolvedAt records the resolution time
func (r *ExpenseRepository) SetResolvedAt(ctx context.Context, id int64, t time.Time) error {
	query := `UPDATE expenses SET resolved_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, t, id); err != nil {
		return fmt.Errorf("failed to set resolved time: %w", err)
	}
	return nil
}
