package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Viraj0711/OdooHack-sub001/internal/application/port"
	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
	"github.com/Viraj0711/OdooHack-sub001/internal/domain/lifecycle"
	"github.com/Viraj0711/OdooHack-sub001/internal/domain/rule"
	"github.com/Viraj0711/OdooHack-sub001/internal/metrics"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ApprovalCoordinator orchestrates expense submission and decision
// resolution: workflow matching, approver snapshot construction,
// per-decision rule evaluation and the one-time finalize of each
// approval instance.
type ApprovalCoordinator struct {
	workflowRepo port.WorkflowRepository
	expenseRepo  port.ExpenseRepository
	instanceRepo port.InstanceRepository
	decisionRepo port.DecisionRepository
	txManager    port.TransactionManager
	builder      *ApproverSetBuilder
	audit        port.AuditSink
	notifier     port.NotificationSink
	metrics      *metrics.Metrics
	logger       Logger

	locks instanceLocks
}

// instanceLocks hands out one mutex per approval instance so that
// decide-evaluate-finalize runs atomically per instance while distinct
// instances proceed fully in parallel.
type instanceLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (l *instanceLocks) forInstance(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[int64]*sync.Mutex)
	}
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}

// NewApprovalCoordinator creates a new ApprovalCoordinator
func NewApprovalCoordinator(
	workflowRepo port.WorkflowRepository,
	expenseRepo port.ExpenseRepository,
	instanceRepo port.InstanceRepository,
	decisionRepo port.DecisionRepository,
	txManager port.TransactionManager,
	builder *ApproverSetBuilder,
	audit port.AuditSink,
	notifier port.NotificationSink,
	m *metrics.Metrics,
	logger Logger,
) *ApprovalCoordinator {
	if m == nil {
		m = metrics.New(nil)
	}
	return &ApprovalCoordinator{
		workflowRepo: workflowRepo,
		expenseRepo:  expenseRepo,
		instanceRepo: instanceRepo,
		decisionRepo: decisionRepo,
		txManager:    txManager,
		builder:      builder,
		audit:        audit,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
	}
}

// Submit routes a draft expense into its approval workflow: matches a
// workflow, resolves the approver snapshot, and transactionally creates
// the approval instance with one pending decision per approver while
// moving the expense to pending. On any error no partial state is left
// behind.
func (c *ApprovalCoordinator) Submit(ctx context.Context, expenseID int64) (*entity.ApprovalInstance, error) {
	expense, err := c.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("load expense: %w", err)
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}

	machine := lifecycle.BuildExpenseStateMachine(lifecycle.State(expense.Status))
	if err := machine.Fire(ctx, lifecycle.TriggerSubmit); err != nil {
		return nil, fmt.Errorf("%w: expense %d is %s", ErrIllegalTransition, expenseID, expense.Status)
	}

	// One active instance per expense.
	active, err := c.instanceRepo.GetActiveByExpenseID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("check active instance: %w", err)
	}
	if active != nil {
		return nil, fmt.Errorf("%w: expense %d already has an active instance", ErrIllegalTransition, expenseID)
	}

	candidates, err := c.workflowRepo.ListByCompany(ctx, expense.CompanyID, true)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}

	workflow, err := MatchWorkflow(expense.AmountCents, expense.Category, candidates)
	if err != nil {
		return nil, err
	}
	if err := workflow.Rule.Validate(); err != nil {
		return nil, fmt.Errorf("workflow %d: %w", workflow.ID, err)
	}

	approvers, err := c.builder.Build(ctx, workflow.Approvers, expense.SubmitterID, expense.CompanyID)
	if err != nil {
		return nil, err
	}

	// SUBMITTED is transient within this operation; the expense lands
	// in PENDING together with its instance.
	if err := machine.Fire(ctx, lifecycle.TriggerRoute); err != nil {
		return nil, fmt.Errorf("%w: expense %d", ErrIllegalTransition, expenseID)
	}

	now := time.Now()
	instance := &entity.ApprovalInstance{
		ExpenseID:  expense.ID,
		WorkflowID: workflow.ID,
		Approvers:  approvers,
		State:      entity.InstancePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := c.instanceRepo.Create(txCtx, instance); err != nil {
			return fmt.Errorf("create instance: %w", err)
		}

		decisions := make([]*entity.Decision, 0, len(approvers))
		for _, approverID := range approvers {
			decisions = append(decisions, &entity.Decision{
				InstanceID: instance.ID,
				ApproverID: approverID,
				Status:     entity.DecisionPending,
				CreatedAt:  now,
			})
		}
		if err := c.decisionRepo.CreateBatch(txCtx, decisions); err != nil {
			return fmt.Errorf("create decisions: %w", err)
		}

		if err := c.expenseRepo.UpdateStatus(txCtx, expense.ID, entity.ExpensePending); err != nil {
			return fmt.Errorf("update expense status: %w", err)
		}
		if err := c.expenseRepo.SetSubmittedAt(txCtx, expense.ID, now); err != nil {
			return fmt.Errorf("set submitted time: %w", err)
		}
		return nil
	})
	if err != nil {
		c.logger.Error("Failed to submit expense", "error", err, "expense_id", expenseID)
		return nil, err
	}

	c.metrics.SubmissionsTotal.Inc()
	c.recordAudit(ctx, &entity.AuditEvent{
		Action:      "expense.submitted",
		ExpenseID:   expense.ID,
		InstanceID:  instance.ID,
		ActorID:     expense.SubmitterID,
		BeforeState: string(entity.ExpenseDraft),
		AfterState:  string(entity.ExpensePending),
	})
	for _, approverID := range approvers {
		c.notify(ctx, approverID, port.NotifyDecisionRequested, expense.ID)
	}

	c.logger.Info("Expense submitted for approval",
		"expense_id", expense.ID,
		"instance_id", instance.ID,
		"workflow_id", workflow.ID,
		"approvers", len(approvers),
	)
	return instance, nil
}

// RecordDecision applies one approver's vote to an instance,
// re-evaluates the workflow rule, and finalizes the instance and the
// expense when the rule reaches a verdict. The whole step is atomic per
// instance: exactly one concurrent decision can win the finalize while
// every decision mutation persists.
//
// Votes arriving after the instance finalized are accepted for
// record-keeping and leave the aggregate untouched.
func (c *ApprovalCoordinator) RecordDecision(ctx context.Context, instanceID int64, approverID string, outcome entity.DecisionStatus, comment string) (entity.ExpenseStatus, error) {
	if outcome != entity.DecisionApproved && outcome != entity.DecisionRejected {
		return "", fmt.Errorf("invalid decision outcome %q", outcome)
	}

	lock := c.locks.forInstance(instanceID)
	lock.Lock()
	defer lock.Unlock()

	instance, err := c.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return "", fmt.Errorf("load instance: %w", err)
	}
	if instance == nil {
		return "", ErrInstanceNotFound
	}
	if !instance.HasApprover(approverID) {
		return "", ErrNotAnApprover
	}

	decisions, err := c.decisionRepo.GetByInstanceID(ctx, instanceID)
	if err != nil {
		return "", fmt.Errorf("load decisions: %w", err)
	}

	var mine *entity.Decision
	for _, d := range decisions {
		if d.ApproverID == approverID {
			mine = d
			break
		}
	}
	if mine == nil {
		return "", fmt.Errorf("%w: instance %d approver %s", ErrDecisionMissing, instanceID, approverID)
	}
	if mine.Status != entity.DecisionPending {
		return "", ErrAlreadyDecided
	}

	now := time.Now()
	mutated, err := c.decisionRepo.Record(ctx, instanceID, approverID, outcome, comment, now)
	if err != nil {
		return "", fmt.Errorf("record decision: %w", err)
	}
	if !mutated {
		return "", ErrAlreadyDecided
	}
	mine.Status = outcome
	mine.DecidedAt = &now
	c.metrics.DecisionsTotal.WithLabelValues(string(outcome)).Inc()

	expense, err := c.expenseRepo.GetByID(ctx, instance.ExpenseID)
	if err != nil {
		return "", fmt.Errorf("load expense: %w", err)
	}
	if expense == nil {
		return "", fmt.Errorf("%w: expense %d", ErrExpenseNotFound, instance.ExpenseID)
	}

	c.recordAudit(ctx, &entity.AuditEvent{
		Action:     "decision.recorded",
		ExpenseID:  expense.ID,
		InstanceID: instance.ID,
		ActorID:    approverID,
		AfterState: string(outcome),
		Detail:     comment,
	})

	// A vote on an already finalized instance is record-keeping only.
	if instance.IsFinal() {
		return expense.Status, nil
	}

	workflow, err := c.workflowRepo.GetByID(ctx, instance.WorkflowID)
	if err != nil {
		return "", fmt.Errorf("load workflow: %w", err)
	}

	result := rule.Evaluate(workflow.Rule, votesFromDecisions(instance.Approvers, decisions))

	if result.Deadlocked {
		if err := c.instanceRepo.MarkDeadlocked(ctx, instanceID); err != nil {
			c.logger.Error("Failed to mark instance deadlocked", "error", err, "instance_id", instanceID)
		}
		c.recordAudit(ctx, &entity.AuditEvent{
			Action:     "instance.deadlocked",
			ExpenseID:  expense.ID,
			InstanceID: instance.ID,
		})
		c.notify(ctx, expense.SubmitterID, port.NotifyExpenseDeadlocked, expense.ID)
		return expense.Status, ErrAmbiguousHybridResult
	}

	if result.Outcome == rule.OutcomePending {
		return expense.Status, nil
	}

	return c.finalize(ctx, expense, instance, result, now)
}

// finalize applies a terminal evaluation result at most once. The
// instance repository's compare-and-set decides the race: the loser
// simply observes the state another decision already produced.
func (c *ApprovalCoordinator) finalize(ctx context.Context, expense *entity.Expense, instance *entity.ApprovalInstance, result rule.Result, now time.Time) (entity.ExpenseStatus, error) {
	var (
		instanceState entity.InstanceState
		trigger       lifecycle.Trigger
		status        entity.ExpenseStatus
		notifyKind    string
	)
	if result.Outcome == rule.OutcomeApproved {
		instanceState = entity.InstanceApproved
		trigger = lifecycle.TriggerApprove
		status = entity.ExpenseApproved
		notifyKind = port.NotifyExpenseApproved
	} else {
		instanceState = entity.InstanceRejected
		trigger = lifecycle.TriggerReject
		status = entity.ExpenseRejected
		notifyKind = port.NotifyExpenseRejected
	}

	won, err := c.instanceRepo.Finalize(ctx, instance.ID, instanceState, now)
	if err != nil {
		return "", fmt.Errorf("finalize instance: %w", err)
	}
	if !won {
		current, err := c.expenseRepo.GetByID(ctx, expense.ID)
		if err != nil || current == nil {
			return expense.Status, nil
		}
		return current.Status, nil
	}

	if result.OverrideBy != "" {
		if err := c.decisionRepo.MarkOverride(ctx, instance.ID, result.OverrideBy); err != nil {
			c.logger.Error("Failed to flag override decision", "error", err, "instance_id", instance.ID, "approver_id", result.OverrideBy)
		}
	}

	machine := lifecycle.BuildExpenseStateMachine(lifecycle.State(expense.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return "", fmt.Errorf("%w: expense %d is %s", ErrIllegalTransition, expense.ID, expense.Status)
	}

	err = c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := c.expenseRepo.UpdateStatus(txCtx, expense.ID, status); err != nil {
			return fmt.Errorf("update expense status: %w", err)
		}
		if err := c.expenseRepo.SetResolvedAt(txCtx, expense.ID, now); err != nil {
			return fmt.Errorf("set resolved time: %w", err)
		}
		return nil
	})
	if err != nil {
		c.logger.Error("Failed to persist expense outcome", "error", err, "expense_id", expense.ID)
		return "", err
	}

	c.metrics.FinalizesTotal.WithLabelValues(string(instanceState)).Inc()
	c.recordAudit(ctx, &entity.AuditEvent{
		Action:      "instance.finalized",
		ExpenseID:   expense.ID,
		InstanceID:  instance.ID,
		BeforeState: string(entity.ExpensePending),
		AfterState:  string(status),
	})
	c.notify(ctx, expense.SubmitterID, notifyKind, expense.ID)

	c.logger.Info("Approval instance finalized",
		"instance_id", instance.ID,
		"expense_id", expense.ID,
		"outcome", string(instanceState),
	)
	return status, nil
}

// PendingApprovers returns the approvers still awaited on an instance,
// in snapshot order.
func (c *ApprovalCoordinator) PendingApprovers(ctx context.Context, instanceID int64) ([]string, error) {
	instance, err := c.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("load instance: %w", err)
	}
	if instance == nil {
		return nil, ErrInstanceNotFound
	}

	decisions, err := c.decisionRepo.GetByInstanceID(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("load decisions: %w", err)
	}

	statusByApprover := make(map[string]entity.DecisionStatus, len(decisions))
	for _, d := range decisions {
		statusByApprover[d.ApproverID] = d.Status
	}

	pending := make([]string, 0, len(instance.Approvers))
	for _, approverID := range instance.Approvers {
		status, ok := statusByApprover[approverID]
		if !ok {
			return nil, fmt.Errorf("%w: instance %d approver %s", ErrDecisionMissing, instanceID, approverID)
		}
		if status == entity.DecisionPending {
			pending = append(pending, approverID)
		}
	}
	return pending, nil
}

// MarkPaid records the external payment-completion event for an
// approved expense.
func (c *ApprovalCoordinator) MarkPaid(ctx context.Context, expenseID int64) error {
	expense, err := c.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}
	if expense == nil {
		return ErrExpenseNotFound
	}

	machine := lifecycle.BuildExpenseStateMachine(lifecycle.State(expense.Status))
	if err := machine.Fire(ctx, lifecycle.TriggerPay); err != nil {
		return fmt.Errorf("%w: expense %d is %s", ErrIllegalTransition, expenseID, expense.Status)
	}

	if err := c.expenseRepo.UpdateStatus(ctx, expenseID, entity.ExpensePaid); err != nil {
		return fmt.Errorf("update expense status: %w", err)
	}

	c.recordAudit(ctx, &entity.AuditEvent{
		Action:      "expense.paid",
		ExpenseID:   expenseID,
		BeforeState: string(entity.ExpenseApproved),
		AfterState:  string(entity.ExpensePaid),
	})
	return nil
}

// votesFromDecisions projects the decision set onto the evaluator
// input, with every snapshotted approver present.
func votesFromDecisions(approvers []string, decisions []*entity.Decision) map[string]rule.Vote {
	votes := make(map[string]rule.Vote, len(approvers))
	for _, id := range approvers {
		votes[id] = rule.VotePending
	}
	for _, d := range decisions {
		switch d.Status {
		case entity.DecisionApproved:
			votes[d.ApproverID] = rule.VoteApproved
		case entity.DecisionRejected:
			votes[d.ApproverID] = rule.VoteRejected
		}
	}
	return votes
}

// recordAudit writes an audit event and logs a warning on failure
// (never returns an error).
func (c *ApprovalCoordinator) recordAudit(ctx context.Context, event *entity.AuditEvent) {
	event.CreatedAt = time.Now()
	if err := c.audit.Record(ctx, event); err != nil {
		c.logger.Error("Failed to write audit event", "error", err, "action", event.Action, "expense_id", event.ExpenseID)
	}
}

// notify emits a notification intent best-effort.
func (c *ApprovalCoordinator) notify(ctx context.Context, recipientID, eventKind string, expenseID int64) {
	if err := c.notifier.Notify(ctx, recipientID, eventKind, expenseID); err != nil {
		c.logger.Error("Failed to emit notification", "error", err, "recipient", recipientID, "kind", eventKind)
	}
}
