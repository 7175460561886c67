package entity

import (
	"time"

	"github.com/Viraj0711/OdooHack-sub001/internal/domain/rule"
)

// ApproverKind discriminates the closed set of approver specifications.
type ApproverKind string

const (
	// ApproverUser names a single concrete user.
	ApproverUser ApproverKind = "USER"
	// ApproverRole expands to every user holding the role within the company.
	ApproverRole ApproverKind = "ROLE"
	// ApproverManager resolves to the submitter's manager at submission time.
	ApproverManager ApproverKind = "MANAGER"
)

// ApproverSpec is one entry in a workflow's ordered approver list.
// Exactly one of UserID/RoleTag is meaningful, selected by Kind;
// MANAGER carries no payload.
type ApproverSpec struct {
	Kind    ApproverKind `json:"kind"`
	UserID  string       `json:"user_id,omitempty"`
	RoleTag string       `json:"role_tag,omitempty"`
}

// Conditions is the predicate a workflow applies to candidate expenses.
// Nil bounds and an empty category set match everything.
type Conditions struct {
	MinAmountCents *int64   `json:"min_amount_cents,omitempty"`
	MaxAmountCents *int64   `json:"max_amount_cents,omitempty"`
	Categories     []string `json:"categories,omitempty"`
}

// Matches reports whether an expense's amount and category satisfy the predicate.
func (c Conditions) Matches(amountCents int64, category string) bool {
	if c.MinAmountCents != nil && amountCents < *c.MinAmountCents {
		return false
	}
	if c.MaxAmountCents != nil && amountCents > *c.MaxAmountCents {
		return false
	}
	if len(c.Categories) > 0 {
		found := false
		for _, cat := range c.Categories {
			if cat == category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Workflow is a configured approval policy scoped to a company.
// Edits to a workflow never affect in-flight instances: the resolved
// approver set is snapshotted onto the ApprovalInstance at submission.
type Workflow struct {
	ID         int64          `json:"id"`
	CompanyID  string         `json:"company_id"`
	Name       string         `json:"name"`
	Active     bool           `json:"active"`
	Priority   int            `json:"priority"`
	Conditions Conditions     `json:"conditions"`
	Rule       rule.Spec      `json:"rule"`
	Approvers  []ApproverSpec `json:"approvers"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
