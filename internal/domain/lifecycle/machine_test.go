package lifecycle

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StateSubmitted, false},
		{StatePending, false},
		{StateApproved, false},
		{StateRejected, true},
		{StatePaid, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StateDraft, true},
		{"valid terminal state", StatePaid, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigureInvalidStatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() with invalid state should panic")
		}
	}()

	NewBuilder().Configure(State("BOGUS"))
}

func TestBuilder_BuildCopiesConfiguration(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateDraft).Permit(TriggerSubmit, StateSubmitted)

	machine := b.Build(StateDraft)

	// Mutating the builder after Build must not affect the machine.
	b.Configure(StateDraft).Permit(TriggerPay, StatePaid)

	if machine.CanFire(TriggerPay) {
		t.Error("machine should not see transitions added after Build()")
	}
}

func TestStateMachine_Fire(t *testing.T) {
	machine := BuildExpenseStateMachine(StateDraft)
	ctx := context.Background()

	if err := machine.Fire(ctx, TriggerSubmit); err != nil {
		t.Fatalf("Fire(SUBMIT) from DRAFT failed: %v", err)
	}
	if machine.State() != StateSubmitted {
		t.Errorf("state = %v, want %v", machine.State(), StateSubmitted)
	}

	if err := machine.Fire(ctx, TriggerRoute); err != nil {
		t.Fatalf("Fire(ROUTE) from SUBMITTED failed: %v", err)
	}
	if machine.State() != StatePending {
		t.Errorf("state = %v, want %v", machine.State(), StatePending)
	}
}

func TestStateMachine_FireInvalidTransition(t *testing.T) {
	machine := BuildExpenseStateMachine(StateDraft)

	err := machine.Fire(context.Background(), TriggerApprove)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(APPROVE) from DRAFT: error = %v, want ErrInvalidTransition", err)
	}
	if machine.State() != StateDraft {
		t.Errorf("failed fire must not change state, got %v", machine.State())
	}
}

func TestStateMachine_GuardBlocksTransition(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatePending).
		PermitIf(TriggerApprove, StateApproved, func(ctx context.Context) bool { return false })

	machine := b.Build(StatePending)

	err := machine.Fire(context.Background(), TriggerApprove)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("error = %v, want ErrGuardFailed", err)
	}
	if machine.State() != StatePending {
		t.Errorf("guarded fire must not change state, got %v", machine.State())
	}
}

func TestExpenseLifecycle_FullApprovalPath(t *testing.T) {
	machine := BuildExpenseStateMachine(StateDraft)
	ctx := context.Background()

	steps := []struct {
		trigger Trigger
		want    State
	}{
		{TriggerSubmit, StateSubmitted},
		{TriggerRoute, StatePending},
		{TriggerApprove, StateApproved},
		{TriggerPay, StatePaid},
	}

	for _, step := range steps {
		if err := machine.Fire(ctx, step.trigger); err != nil {
			t.Fatalf("Fire(%s) failed: %v", step.trigger, err)
		}
		if machine.State() != step.want {
			t.Fatalf("after %s: state = %v, want %v", step.trigger, machine.State(), step.want)
		}
	}

	if len(machine.PermittedTriggers()) != 0 {
		t.Error("PAID must be terminal with no permitted triggers")
	}
}

func TestExpenseLifecycle_RejectedIsTerminal(t *testing.T) {
	machine := BuildExpenseStateMachine(StatePending)
	ctx := context.Background()

	if err := machine.Fire(ctx, TriggerReject); err != nil {
		t.Fatalf("Fire(REJECT) from PENDING failed: %v", err)
	}

	for _, trigger := range []Trigger{TriggerSubmit, TriggerRoute, TriggerApprove, TriggerPay} {
		if err := machine.Fire(ctx, trigger); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Fire(%s) from REJECTED: error = %v, want ErrInvalidTransition", trigger, err)
		}
	}
}

func TestExpenseLifecycle_NoRegression(t *testing.T) {
	// An approved expense can only move to PAID, never backwards.
	machine := BuildExpenseStateMachine(StateApproved)
	ctx := context.Background()

	for _, trigger := range []Trigger{TriggerSubmit, TriggerRoute, TriggerReject} {
		if err := machine.Fire(ctx, trigger); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Fire(%s) from APPROVED: error = %v, want ErrInvalidTransition", trigger, err)
		}
	}

	if !machine.CanFire(TriggerPay) {
		t.Error("CanFire(PAY) from APPROVED should be true")
	}
}
