package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
	"github.com/Viraj0711/OdooHack-sub001/internal/domain/rule"
)

func int64Ptr(v int64) *int64 { return &v }

func testWorkflow(id int64, priority int, createdAt time.Time) *entity.Workflow {
	return &entity.Workflow{
		ID:        id,
		CompanyID: "acme",
		Name:      "wf",
		Active:    true,
		Priority:  priority,
		Rule:      rule.Spec{Kind: rule.KindPercentage, Percentage: &rule.Percentage{Threshold: 50}},
		CreatedAt: createdAt,
	}
}

func TestMatchWorkflow_ConditionFiltering(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	lowAmount := testWorkflow(1, 0, base)
	lowAmount.Conditions = entity.Conditions{MaxAmountCents: int64Ptr(10000)}

	highAmount := testWorkflow(2, 0, base)
	highAmount.Conditions = entity.Conditions{MinAmountCents: int64Ptr(10001)}

	travelOnly := testWorkflow(3, 0, base)
	travelOnly.Conditions = entity.Conditions{Categories: []string{"travel"}}

	candidates := []*entity.Workflow{lowAmount, highAmount, travelOnly}

	tests := []struct {
		name        string
		amountCents int64
		category    string
		wantID      int64
	}{
		{"small meal expense", 5000, "meals", 1},
		{"large meal expense", 50000, "meals", 2},
		{"boundary amount", 10000, "meals", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchWorkflow(tt.amountCents, tt.category, candidates)
			if err != nil {
				t.Fatalf("MatchWorkflow() error = %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("MatchWorkflow() = workflow %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestMatchWorkflow_PriorityWins(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candidates := []*entity.Workflow{
		testWorkflow(1, 0, base),
		testWorkflow(2, 10, base),
		testWorkflow(3, 5, base),
	}

	got, err := MatchWorkflow(1000, "", candidates)
	if err != nil {
		t.Fatalf("MatchWorkflow() error = %v", err)
	}
	if got.ID != 2 {
		t.Errorf("MatchWorkflow() = workflow %d, want highest priority workflow 2", got.ID)
	}
}

func TestMatchWorkflow_CreatedAtBreaksTies(t *testing.T) {
	older := testWorkflow(1, 5, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := testWorkflow(2, 5, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))

	got, err := MatchWorkflow(1000, "", []*entity.Workflow{older, newer})
	if err != nil {
		t.Fatalf("MatchWorkflow() error = %v", err)
	}
	if got.ID != 2 {
		t.Errorf("MatchWorkflow() = workflow %d, want most recently created workflow 2", got.ID)
	}

	// Order of candidates must not matter.
	got, _ = MatchWorkflow(1000, "", []*entity.Workflow{newer, older})
	if got.ID != 2 {
		t.Errorf("MatchWorkflow() with reversed input = workflow %d, want 2", got.ID)
	}
}

func TestMatchWorkflow_SkipsInactive(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	inactive := testWorkflow(1, 100, base)
	inactive.Active = false
	active := testWorkflow(2, 0, base)

	got, err := MatchWorkflow(1000, "", []*entity.Workflow{inactive, active})
	if err != nil {
		t.Fatalf("MatchWorkflow() error = %v", err)
	}
	if got.ID != 2 {
		t.Errorf("MatchWorkflow() = workflow %d, inactive workflow must be skipped", got.ID)
	}
}

func TestMatchWorkflow_NoMatch(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	wf := testWorkflow(1, 0, base)
	wf.Conditions = entity.Conditions{Categories: []string{"travel"}}

	_, err := MatchWorkflow(1000, "meals", []*entity.Workflow{wf})
	if !errors.Is(err, ErrNoWorkflowMatched) {
		t.Errorf("MatchWorkflow() error = %v, want ErrNoWorkflowMatched", err)
	}

	_, err = MatchWorkflow(1000, "meals", nil)
	if !errors.Is(err, ErrNoWorkflowMatched) {
		t.Errorf("MatchWorkflow() with no candidates: error = %v, want ErrNoWorkflowMatched", err)
	}
}
