package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Viraj0711/OdooHack-sub001/internal/application/port"
	"github.com/Viraj0711/OdooHack-sub001/internal/application/service"
	"github.com/Viraj0711/OdooHack-sub001/internal/domain/entity"
	"github.com/Viraj0711/OdooHack-sub001/internal/domain/rule"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	coordinator  *service.ApprovalCoordinator
	expenseRepo  port.ExpenseRepository
	workflowRepo port.WorkflowRepository
	decisionRepo port.DecisionRepository
	auditRepo    port.AuditRepository
	logger       Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	coordinator *service.ApprovalCoordinator,
	expenseRepo port.ExpenseRepository,
	workflowRepo port.WorkflowRepository,
	decisionRepo port.DecisionRepository,
	auditRepo port.AuditRepository,
	logger Logger,
) *Handlers {
	return &Handlers{
		coordinator:  coordinator,
		expenseRepo:  expenseRepo,
		workflowRepo: workflowRepo,
		decisionRepo: decisionRepo,
		auditRepo:    auditRepo,
		logger:       logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// CreateExpenseRequest is the payload for creating a draft expense
type CreateExpenseRequest struct {
	CompanyID   string `json:"company_id" binding:"required"`
	SubmitterID string `json:"submitter_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required,gt=0"`
	Currency    string `json:"currency"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// RecordDecisionRequest is the payload for an approver's vote
type RecordDecisionRequest struct {
	ApproverID string `json:"approver_id" binding:"required"`
	Outcome    string `json:"outcome" binding:"required,oneof=APPROVED REJECTED"`
	Comment    string `json:"comment"`
}

// CreateWorkflowRequest is the payload for configuring a workflow
type CreateWorkflowRequest struct {
	CompanyID  string                `json:"company_id" binding:"required"`
	Name       string                `json:"name" binding:"required"`
	Active     bool                  `json:"active"`
	Priority   int                   `json:"priority"`
	Conditions entity.Conditions     `json:"conditions"`
	Rule       rule.Spec             `json:"rule"`
	Approvers  []entity.ApproverSpec `json:"approvers" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// CreateExpense handles POST /api/v1/expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	expense := &entity.Expense{
		CompanyID:   req.CompanyID,
		SubmitterID: req.SubmitterID,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: req.Description,
		Status:      entity.ExpenseDraft,
	}
	if expense.Currency == "" {
		expense.Currency = "USD"
	}

	if err := h.expenseRepo.Create(c.Request.Context(), expense); err != nil {
		h.logger.Error("Failed to create expense", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to create expense"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: expense})
}

// GetExpense handles GET /api/v1/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	expense, err := h.expenseRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get expense", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve expense"})
		return
	}
	if expense == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "expense not found"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// SubmitExpense handles POST /api/v1/expenses/:id/submit
func (h *Handlers) SubmitExpense(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	instance, err := h.coordinator.Submit(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: instance})
}

// RecordDecision handles POST /api/v1/instances/:id/decisions
func (h *Handlers) RecordDecision(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req RecordDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	status, err := h.coordinator.RecordDecision(
		c.Request.Context(), id, req.ApproverID,
		entity.DecisionStatus(req.Outcome), req.Comment,
	)
	if err != nil {
		// The ambiguity case carries a usable expense status; the caller
		// learns the instance needs manual resolution.
		if errors.Is(err, service.ErrAmbiguousHybridResult) {
			c.JSON(http.StatusConflict, Response{
				Success: false,
				Data:    gin.H{"expense_status": status},
				Error:   err.Error(),
				Code:    "AMBIGUOUS_HYBRID_RESULT",
			})
			return
		}
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"expense_status": status}})
}

// ListDecisions handles GET /api/v1/instances/:id/decisions
func (h *Handlers) ListDecisions(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	decisions, err := h.decisionRepo.GetByInstanceID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list decisions", "instance_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve decisions"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: decisions})
}

// PendingApprovers handles GET /api/v1/instances/:id/approvers/pending
func (h *Handlers) PendingApprovers(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	pending, err := h.coordinator.PendingApprovers(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"pending": pending}})
}

// MarkExpensePaid handles POST /api/v1/expenses/:id/paid
func (h *Handlers) MarkExpensePaid(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.coordinator.MarkPaid(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"expense_status": entity.ExpensePaid}})
}

// GetAuditTrail handles GET /api/v1/expenses/:id/audit
func (h *Handlers) GetAuditTrail(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	events, err := h.auditRepo.ListByExpenseID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list audit events", "expense_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve audit trail"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: events})
}

// CreateWorkflow handles POST /api/v1/workflows
func (h *Handlers) CreateWorkflow(c *gin.Context) {
	var req CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	wf := &entity.Workflow{
		CompanyID:  req.CompanyID,
		Name:       req.Name,
		Active:     req.Active,
		Priority:   req.Priority,
		Conditions: req.Conditions,
		Rule:       req.Rule,
		Approvers:  req.Approvers,
	}

	if err := wf.Rule.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.workflowRepo.Create(c.Request.Context(), wf); err != nil {
		h.logger.Error("Failed to create workflow", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to create workflow"})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: wf})
}

// ListWorkflows handles GET /api/v1/workflows?company_id=
func (h *Handlers) ListWorkflows(c *gin.Context) {
	companyID := c.Query("company_id")
	if companyID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "company_id is required"})
		return
	}
	activeOnly := c.Query("active") == "true"

	workflows, err := h.workflowRepo.ListByCompany(c.Request.Context(), companyID, activeOnly)
	if err != nil {
		h.logger.Error("Failed to list workflows", "company_id", companyID, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to retrieve workflows"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: workflows})
}

// pathID parses the :id path parameter, writing the error response itself
func (h *Handlers) pathID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// respondError maps engine errors onto HTTP status codes.
// Configuration errors are 422, authorization 403, state conflicts 409,
// missing resources 404, data integrity 500.
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExpenseNotFound),
		errors.Is(err, service.ErrInstanceNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrNoWorkflowMatched),
		errors.Is(err, service.ErrNoApproversResolved),
		errors.Is(err, rule.ErrInvalidThreshold),
		errors.Is(err, rule.ErrInvalidSpec):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrNotAnApprover):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrAlreadyDecided),
		errors.Is(err, service.ErrIllegalTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case errors.Is(err, service.ErrDecisionMissing):
		h.logger.Error("Data integrity error", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Unhandled engine error", "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
