package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/Viraj0711/OdooHack-sub001/pkg/database"
)

// DirectoryRepository resolves role and manager lookups against the
// users table. It backs the directory port for approver expansion.
type DirectoryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db *database.DB, logger *zap.Logger) *DirectoryRepository {
	return &DirectoryRepository{db: db, logger: logger}
}

// ResolveRole returns the user IDs holding a role within a company,
// in stable ID order so approver snapshots are deterministic.
func (r *DirectoryRepository) ResolveRole(ctx context.Context, roleTag, companyID string) ([]string, error) {
	query := `SELECT id FROM users WHERE company_id = ? AND role = ? ORDER BY id ASC`
	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, companyID, roleTag)
	if err != nil {
		r.logger.Error("Failed to resolve role",
			zap.String("role", roleTag),
			zap.String("company_id", companyID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to resolve role: %w", err)
	}
	defer rows.Close()

	userIDs := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

// ResolveManager returns the manager of a user, or "" when the user has
// none or does not exist.
func (r *DirectoryRepository) ResolveManager(ctx context.Context, userID string) (string, error) {
	query := `SELECT manager_id FROM users WHERE id = ?`

	var managerID sql.NullString
	err := r.db.Conn(ctx).QueryRowContext(ctx, query, userID).Scan(&managerID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		r.logger.Error("Failed to resolve manager", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("failed to resolve manager: %w", err)
	}

	if !managerID.Valid {
		return "", nil
	}
	return managerID.String, nil
}
