package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	expenseapp "github.com/expenseflow/backend/internal/application/expense"
)

// ExpenseHandler handles expense lifecycle endpoints
type ExpenseHandler struct {
	BaseHandler
	service *expenseapp.Service
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(service *expenseapp.Service) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// RejectExpenseRequest carries the rejection reason
type RejectExpenseRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// MarkPaidRequest carries the payment reference
type MarkPaidRequest struct {
	PaymentReference string `json:"payment_reference"`
}

// AttachDocumentRequest carries document metadata
type AttachDocumentRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size" binding:"required,gt=0"`
	StoragePath string `json:"storage_path" binding:"required"`
}

// expenseListQuery binds expense list query parameters
type expenseListQuery struct {
	Search      string `form:"search"`
	Status      string `form:"status"`
	SubmitterID string `form:"submitter_id"`
	FromDate    string `form:"from_date"`
	ToDate      string `form:"to_date"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// Create handles POST /api/v1/expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req expenseapp.CreateExpenseRequest
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

// Get handles GET /api/v1/expenses/:id
func (h *ExpenseHandler) Get(c *gin.Context) {
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

// Update handles PUT /api/v1/expenses/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req expenseapp.UpdateExpenseRequest
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

// Delete handles DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
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

// Submit handles POST /api/v1/expenses/:id/submit
func (h *ExpenseHandler) Submit(c *gin.Context) {
	h.transition(c, func(ctx *gin.Context, id, actor uuid.UUID) (any, error) {
		return h.service.Submit(ctx.Request.Context(), id, actor)
	})
}

// Approve handles POST /api/v1/expenses/:id/approve
func (h *ExpenseHandler) Approve(c *gin.Context) {
	h.transition(c, func(ctx *gin.Context, id, actor uuid.UUID) (any, error) {
		return h.service.Approve(ctx.Request.Context(), id, actor)
	})
}

// Reject handles POST /api/v1/expenses/:id/reject
func (h *ExpenseHandler) Reject(c *gin.Context) {
	h.transition(c, func(ctx *gin.Context, id, actor uuid.UUID) (any, error) {
		var req RejectExpenseRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			h.BadRequest(ctx, "Rejection reason is required")
			return nil, nil
		}
		return h.service.Reject(ctx.Request.Context(), id, actor, req.Reason)
	})
}

// MarkPaid handles POST /api/v1/expenses/:id/pay
func (h *ExpenseHandler) MarkPaid(c *gin.Context) {
	h.transition(c, func(ctx *gin.Context, id, actor uuid.UUID) (any, error) {
		var req MarkPaidRequest
		if err := ctx.ShouldBindJSON(&req); err != nil && ctx.Request.ContentLength > 0 {
			h.BadRequest(ctx, "Invalid request body: "+err.Error())
			return nil, nil
		}
		return h.service.MarkPaid(ctx.Request.Context(), id, actor, req.PaymentReference)
	})
}

// AttachDocument handles POST /api/v1/expenses/:id/documents
func (h *ExpenseHandler) AttachDocument(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req AttachDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.AttachDocument(c.Request.Context(), id, actor, req.FileName, req.FileType, req.FileSize, req.StoragePath)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /api/v1/expenses
func (h *ExpenseHandler) List(c *gin.Context) {
	var query expenseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}

	filter := expenseapp.ListFilter{
		Search:   query.Search,
		Status:   query.Status,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.SubmitterID != "" {
		id, err := uuid.Parse(query.SubmitterID)
		if err != nil {
			h.BadRequest(c, "Invalid submitter_id parameter")
			return
		}
		filter.SubmitterID = &id
	}
	if query.FromDate != "" {
		t, err := time.Parse(time.RFC3339, query.FromDate)
		if err != nil {
			h.BadRequest(c, "Invalid from_date parameter, expected RFC3339")
			return
		}
		filter.FromDate = &t
	}
	if query.ToDate != "" {
		t, err := time.Parse(time.RFC3339, query.ToDate)
		if err != nil {
			h.BadRequest(c, "Invalid to_date parameter, expected RFC3339")
			return
		}
		filter.ToDate = &t
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, items, total, page, pageSize)
}

// ListPendingApprovals handles GET /api/v1/expenses/pending-approvals
func (h *ExpenseHandler) ListPendingApprovals(c *gin.Context) {
	items, err := h.service.ListPendingApprovals(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// transition factors the shared shape of lifecycle transition endpoints.
// A nil result with a nil error means the callback already responded.
func (h *ExpenseHandler) transition(c *gin.Context, fn func(c *gin.Context, id, actor uuid.UUID) (any, error)) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := fn(c, id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp == nil {
		return
	}
	h.Success(c, resp)
}
