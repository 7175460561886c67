package service

import (
	"context"
	"fmt"

	"github.com/Viraj0711/OdooHack-sub001/internal/application/port"
	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
)

// ApproverSetBuilder expands a workflow's approver specifications into
// the concrete, ordered approver snapshot for one expense instance.
type ApproverSetBuilder struct {
	directory port.Directory
}

// NewApproverSetBuilder creates a new ApproverSetBuilder
func NewApproverSetBuilder(directory port.Directory) *ApproverSetBuilder {
	return &ApproverSetBuilder{directory: directory}
}

// Build resolves each specification entry to zero or more user IDs,
// concatenates them in specification order, and deduplicates keeping
// the first occurrence: a user reachable through several entries
// approves only once.
//
// An empty result is a configuration error (ErrNoApproversResolved),
// surfaced to the caller rather than silently auto-approving.
func (b *ApproverSetBuilder) Build(ctx context.Context, specs []entity.ApproverSpec, submitterID, companyID string) ([]string, error) {
	seen := make(map[string]bool)
	approvers := make([]string, 0, len(specs))

	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		approvers = append(approvers, id)
	}

	for _, spec := range specs {
		switch spec.Kind {
		case entity.ApproverUser:
			add(spec.UserID)

		case entity.ApproverRole:
			ids, err := b.directory.ResolveRole(ctx, spec.RoleTag, companyID)
			if err != nil {
				return nil, fmt.Errorf("resolve role %q: %w", spec.RoleTag, err)
			}
			for _, id := range ids {
				add(id)
			}

		case entity.ApproverManager:
			managerID, err := b.directory.ResolveManager(ctx, submitterID)
			if err != nil {
				return nil, fmt.Errorf("resolve manager of %q: %w", submitterID, err)
			}
			// A submitter without a manager contributes nothing.
			add(managerID)

		default:
			return nil, fmt.Errorf("unknown approver spec kind %q", spec.Kind)
		}
	}

	if len(approvers) == 0 {
		return nil, ErrNoApproversResolved
	}
	return approvers, nil
}
