package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	workflowapp "github.com/expenseflow/backend/internal/application/workflow"
)

// WorkflowHandler handles approval workflow definition endpoints
type WorkflowHandler struct {
	BaseHandler
	service *workflowapp.Service
}

// NewWorkflowHandler creates a new WorkflowHandler
func NewWorkflowHandler(service *workflowapp.Service) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// Create handles POST /api/v1/workflows
func (h *WorkflowHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req workflowapp.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /api/v1/workflows/:id
func (h *WorkflowHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /api/v1/workflows/:id
func (h *WorkflowHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req workflowapp.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /api/v1/workflows
func (h *WorkflowHandler) List(c *gin.Context) {
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListActive handles GET /api/v1/workflows/active
func (h *WorkflowHandler) ListActive(c *gin.Context) {
	items, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Activate handles POST /api/v1/workflows/:id/activate
func (h *WorkflowHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate handles POST /api/v1/workflows/:id/deactivate
func (h *WorkflowHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *WorkflowHandler) setActive(c *gin.Context, active bool) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var resp *workflowapp.WorkflowResponse
	var err error
	if active {
		resp, err = h.service.Activate(c.Request.Context(), id, actor)
	} else {
		resp, err = h.service.Deactivate(c.Request.Context(), id, actor)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /api/v1/workflows/:id
func (h *WorkflowHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ActionHandler handles approval action endpoints
type ActionHandler struct {
	BaseHandler
	service *workflowapp.ActionService
}

// NewActionHandler creates a new ActionHandler
func NewActionHandler(service *workflowapp.ActionService) *ActionHandler {
	return &ActionHandler{service: service}
}

// Record handles POST /api/v1/approval-actions
func (h *ActionHandler) Record(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req workflowapp.RecordActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Record(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListByExpense handles GET /api/v1/expenses/:id/actions
func (h *ActionHandler) ListByExpense(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListByExpense(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Latest handles GET /api/v1/expenses/:id/actions/latest
func (h *ActionHandler) Latest(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.Latest(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ApprovedAtStep handles GET /api/v1/expenses/:id/steps/:stepID/approval
func (h *ActionHandler) ApprovedAtStep(c *gin.Context) {
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	stepID, ok := h.pathID(c, "stepID")
	if !ok {
		return
	}
	approved, err := h.service.HasApprovedAtStep(c.Request.Context(), expenseID, stepID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"approved": approved})
}

// ListPendingDelegations handles GET /api/v1/approval-actions/delegations
func (h *ActionHandler) ListPendingDelegations(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	items, err := h.service.ListPendingDelegations(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// HistoryHandler handles workflow history endpoints
type HistoryHandler struct {
	BaseHandler
	service *workflowapp.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(service *workflowapp.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// ListByExpense handles GET /api/v1/expenses/:id/history
func (h *HistoryHandler) ListByExpense(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListByExpense(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Latest handles GET /api/v1/expenses/:id/history/latest
func (h *HistoryHandler) Latest(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.Latest(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByActor handles GET /api/v1/workflow-history/by-actor/:id
func (h *HistoryHandler) ListByActor(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}
	page, err := h.service.ListByActor(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListSince handles GET /api/v1/workflow-history?since=...
func (h *HistoryHandler) ListSince(c *gin.Context) {
	raw := c.Query("since")
	if raw == "" {
		h.BadRequest(c, "Missing since parameter")
		return
	}
	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		h.BadRequest(c, "Invalid since parameter, expected RFC3339")
		return
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	page, err := h.service.ListSince(c.Request.Context(), since, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CommentHandler handles expense comment endpoints
type CommentHandler struct {
	BaseHandler
	service *workflowapp.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(service *workflowapp.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// CommentRequest carries the comment text
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// Add handles POST /api/v1/expenses/:id/comments
func (h *CommentHandler) Add(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Comment text is required")
		return
	}

	resp, err := h.service.Add(c.Request.Context(), id, actor, req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Edit handles PUT /api/v1/comments/:id
func (h *CommentHandler) Edit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Comment text is required")
		return
	}

	resp, err := h.service.Edit(c.Request.Context(), id, actor, req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByExpense handles GET /api/v1/expenses/:id/comments
func (h *CommentHandler) ListByExpense(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListByExpense(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Delete handles DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, actor); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
