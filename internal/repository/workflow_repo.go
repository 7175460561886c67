package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
	"github.com/Viraj0711/OdooHack-sub001/pkg/database"
)

// WorkflowRepository handles workflow database operations
type WorkflowRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *database.DB, logger *zap.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// Create creates a new workflow. The rule spec is validated before
// anything is written so a broken configuration never reaches storage.
func (r *WorkflowRepository) Create(ctx context.Context, wf *entity.Workflow) error {
	if err := wf.Rule.Validate(); err != nil {
		return err
	}

	ruleJSON, err := json.Marshal(wf.Rule)
	if err != nil {
		return fmt.Errorf("marshal rule: %w", err)
	}
	approversJSON, err := json.Marshal(wf.Approvers)
	if err != nil {
		return fmt.Errorf("marshal approvers: %w", err)
	}
	categoriesJSON, err := json.Marshal(wf.Conditions.Categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	query := `
		INSERT INTO workflows (
			company_id, name, active, priority,
			min_amount_cents, max_amount_cents, categories,
			rule, approvers
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Conn(ctx).ExecContext(ctx, query,
		wf.CompanyID,
		wf.Name,
		wf.Active,
		wf.Priority,
		wf.Conditions.MinAmountCents,
		wf.Conditions.MaxAmountCents,
		string(categoriesJSON),
		string(ruleJSON),
		string(approversJSON),
	)
	if err != nil {
		r.logger.Error("Failed to create workflow", zap.Error(err))
		return fmt.Errorf("failed to create workflow: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	wf.ID = id
	return nil
}

// GetByID retrieves a workflow by ID. Returns nil when not found.
func (r *WorkflowRepository) GetByID(ctx context.Context, id int64) (*entity.Workflow, error) {
	query := selectWorkflow + ` WHERE id = ?`

	wf, err := scanWorkflow(r.db.Conn(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get workflow", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return wf, nil
}

// ListByCompany retrieves workflows scoped to a company, most recently
// created first.
func (r *WorkflowRepository) ListByCompany(ctx context.Context, companyID string, activeOnly bool) ([]*entity.Workflow, error) {
	query := selectWorkflow + ` WHERE company_id = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list workflows", zap.String("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	workflows := make([]*entity.Workflow, 0)
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

const selectWorkflow = `
	SELECT id, company_id, name, active, priority,
		min_amount_cents, max_amount_cents, categories,
		rule, approvers, created_at, updated_at
	FROM workflows`

// rowScanner abstracts sql.Row and sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkflow(row rowScanner) (*entity.Workflow, error) {
	var (
		wf             entity.Workflow
		minAmount      sql.NullInt64
		maxAmount      sql.NullInt64
		categoriesJSON string
		ruleJSON       string
		approversJSON  string
	)

	err := row.Scan(
		&wf.ID,
		&wf.CompanyID,
		&wf.Name,
		&wf.Active,
		&wf.Priority,
		&minAmount,
		&maxAmount,
		&categoriesJSON,
		&ruleJSON,
		&approversJSON,
		&wf.CreatedAt,
		&wf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if minAmount.Valid {
		v := minAmount.Int64
		wf.Conditions.MinAmountCents = &v
	}
	if maxAmount.Valid {
		v := maxAmount.Int64
		wf.Conditions.MaxAmountCents = &v
	}
	if err := json.Unmarshal([]byte(categoriesJSON), &wf.Conditions.Categories); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}
	if err := json.Unmarshal([]byte(ruleJSON), &wf.Rule); err != nil {
		return nil, fmt.Errorf("unmarshal rule: %w", err)
	}
	if err := json.Unmarshal([]byte(approversJSON), &wf.Approvers); err != nil {
		return nil, fmt.Errorf("unmarshal approvers: %w", err)
	}
	return &wf, nil
}
