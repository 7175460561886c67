package entity

import "time"

// ExpenseStatus is the lifecycle status of an expense.
type ExpenseStatus string

const (
	ExpenseDraft     ExpenseStatus = "DRAFT"
	ExpenseSubmitted ExpenseStatus = "SUBMITTED"
	ExpensePending   ExpenseStatus = "PENDING"
	ExpenseApproved  ExpenseStatus = "APPROVED"
	ExpenseRejected  ExpenseStatus = "REJECTED"
	ExpensePaid      ExpenseStatus = "PAID"
)

// Expense represents a submitted expense claim.
// Amounts are stored in cents to avoid floating point drift.
type Expense struct {
	ID          int64         `json:"id"`
	CompanyID   string        `json:"company_id"`
	SubmitterID string        `json:"submitter_id"`
	AmountCents int64         `json:"amount_cents"`
	Currency    string        `json:"currency"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Status      ExpenseStatus `json:"status"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
