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

// DecisionRepository handles decision database operations
type DecisionRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewDecisionRepository creates a new decision repository
func NewDecisionRepository(db *database.DB, logger *zap.Logger) *DecisionRepository {
	return &DecisionRepository{db: db, logger: logger}
}

// CreateBatch inserts the pending decision rows for a fresh instance,
// one per snapshot approver.
func (r *DecisionRepository) CreateBatch(ctx context.Context, decisions []*entity.Decision) error {
	query := `
		INSERT INTO decisions (instance_id, approver_id, status, comment)
		VALUES (?, ?, ?, ?)
	`
	conn := r.db.Conn(ctx)
	for _, d := range decisions {
		if d.Status == "" {
			d.Status = entity.DecisionPending
		}
		result, err := conn.ExecContext(ctx, query, d.InstanceID, d.ApproverID, d.Status, d.Comment)
		if err != nil {
			r.logger.Error("Failed to create decision",
				zap.Int64("instance_id", d.InstanceID),
				zap.String("approver_id", d.ApproverID),
				zap.Error(err))
			return fmt.Errorf("failed to create decision: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		d.ID = id
	}
	return nil
}

// GetByInstanceID retrieves all decisions of an instance in snapshot
// insertion order.
func (r *DecisionRepository) GetByInstanceID(ctx context.Context, instanceID int64) ([]*entity.Decision, error) {
	query := `
		SELECT id, instance_id, approver_id, status, comment, is_override,
			decided_at, created_at
		FROM decisions
		WHERE instance_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, instanceID)
	if err != nil {
		r.logger.Error("Failed to list decisions", zap.Int64("instance_id", instanceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	decisions := make([]*entity.Decision, 0)
	for rows.Next() {
		var (
			d         entity.Decision
			decidedAt sql.NullTime
		)
		err := rows.Scan(
			&d.ID,
			&d.InstanceID,
			&d.ApproverID,
			&d.Status,
			&d.Comment,
			&d.IsOverride,
			&decidedAt,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		if decidedAt.Valid {
			d.DecidedAt = &decidedAt.Time
		}
		decisions = append(decisions, &d)
	}
	return decisions, rows.Err()
}

// Record applies an approver's vote. The WHERE clause on the pending
// status keeps a recorded vote immutable: a second vote by the same
// approver mutates nothing and is reported to the caller.
func (r *DecisionRepository) Record(ctx context.Context, instanceID int64, approverID string, status entity.DecisionStatus, comment string, at time.Time) (bool, error) {
	query := `
		UPDATE decisions
		SET status = ?, comment = ?, decided_at = ?
		WHERE instance_id = ? AND approver_id = ? AND status = 'PENDING'
	`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query, status, comment, at, instanceID, approverID)
	if err != nil {
		r.logger.Error("Failed to record decision",
			zap.Int64("instance_id", instanceID),
			zap.String("approver_id", approverID),
			zap.Error(err))
		return false, fmt.Errorf("failed to record decision: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// MarkOverride flags the decision that short-circuited the instance
func (r *DecisionRepository) MarkOverride(ctx context.Context, instanceID int64, approverID string) error {
	query := `UPDATE decisions SET is_override = 1 WHERE instance_id = ? AND approver_id = ?`
	if _, err := r.db.Conn(ctx).ExecContext(ctx, query, instanceID, approverID); err != nil {
		return fmt.Errorf("failed to mark override decision: %w", err)
	}
	return nil
}
