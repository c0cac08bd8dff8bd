package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	budgetapp "github.com/expenseflow/backend/internal/application/budget"
)

// BudgetHandler handles budget endpoints
type BudgetHandler struct {
	BaseHandler
	service *budgetapp.Service
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(service *budgetapp.Service) *BudgetHandler {
	return &BudgetHandler{service: service}
}

// budgetListQuery binds budget list query parameters
type budgetListQuery struct {
	Search       string `form:"search"`
	SegmentID    string `form:"segment_id"`
	DepartmentID string `form:"department_id"`
	Period       string `form:"period"`
	ActiveOnly   bool   `form:"active_only"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// Create handles POST /api/v1/budgets
func (h *BudgetHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req budgetapp.CreateBudgetRequest
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

// Get handles GET /api/v1/budgets/:id
func (h *BudgetHandler) Get(c *gin.Context) {
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

// Update handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req budgetapp.UpdateBudgetRequest
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

// List handles GET /api/v1/budgets
func (h *BudgetHandler) List(c *gin.Context) {
	var query budgetListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid list parameters: "+err.Error())
		return
	}

	filter := budgetapp.ListFilter{
		Search:     query.Search,
		Period:     query.Period,
		ActiveOnly: query.ActiveOnly,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.SegmentID != "" {
		id, err := uuid.Parse(query.SegmentID)
		if err != nil {
			h.BadRequest(c, "Invalid segment_id parameter")
			return
		}
		filter.SegmentID = &id
	}
	if query.DepartmentID != "" {
		id, err := uuid.Parse(query.DepartmentID)
		if err != nil {
			h.BadRequest(c, "Invalid department_id parameter")
			return
		}
		filter.DepartmentID = &id
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Activate handles POST /api/v1/budgets/:id/activate
func (h *BudgetHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate handles POST /api/v1/budgets/:id/deactivate
func (h *BudgetHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *BudgetHandler) setActive(c *gin.Context, active bool) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var resp *budgetapp.BudgetResponse
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

// Delete handles DELETE /api/v1/budgets/:id
func (h *BudgetHandler) Delete(c *gin.Context) {
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

// ThresholdHandler handles budget threshold endpoints
type ThresholdHandler struct {
	BaseHandler
	service *budgetapp.ThresholdService
}

// NewThresholdHandler creates a new ThresholdHandler
func NewThresholdHandler(service *budgetapp.ThresholdService) *ThresholdHandler {
	return &ThresholdHandler{service: service}
}

// ThresholdAlertRequest toggles alerting on a threshold
type ThresholdAlertRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// ThresholdRecipientRequest names an alert recipient
type ThresholdRecipientRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// Create handles POST /api/v1/budgets/:id/thresholds
func (h *ThresholdHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	budgetID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req budgetapp.CreateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), budgetID, actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListByBudget handles GET /api/v1/budgets/:id/thresholds
func (h *ThresholdHandler) ListByBudget(c *gin.Context) {
	budgetID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListByBudget(c.Request.Context(), budgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// SetAlertEnabled handles PUT /api/v1/thresholds/:id/alerts
func (h *ThresholdHandler) SetAlertEnabled(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ThresholdAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.SetAlertEnabled(c.Request.Context(), id, actor, *req.Enabled)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddRecipient handles POST /api/v1/thresholds/:id/recipients
func (h *ThresholdHandler) AddRecipient(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req ThresholdRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.AddRecipient(c.Request.Context(), id, actor, req.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveRecipient handles DELETE /api/v1/thresholds/:id/recipients/:userID
func (h *ThresholdHandler) RemoveRecipient(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.pathID(c, "userID")
	if !ok {
		return
	}

	resp, err := h.service.RemoveRecipient(c.Request.Context(), id, actor, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /api/v1/thresholds/:id
func (h *ThresholdHandler) Delete(c *gin.Context) {
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

// AlertHandler handles budget alert endpoints
type AlertHandler struct {
	BaseHandler
	service *budgetapp.AlertService
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(service *budgetapp.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// Check handles POST /api/v1/alerts/check
func (h *AlertHandler) Check(c *gin.Context) {
	created, err := h.service.CheckAndCreateAlerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"created": created})
}

// Acknowledge handles POST /api/v1/alerts/:id/acknowledge
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.Acknowledge(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByBudget handles GET /api/v1/budgets/:id/alerts
func (h *AlertHandler) ListByBudget(c *gin.Context) {
	budgetID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListByBudget(c.Request.Context(), budgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListUnacknowledged handles GET /api/v1/alerts/unacknowledged
func (h *AlertHandler) ListUnacknowledged(c *gin.Context) {
	items, err := h.service.ListUnacknowledged(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListRecent handles GET /api/v1/alerts/recent?hours=24
func (h *AlertHandler) ListRecent(c *gin.Context) {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		parsed, err := parsePositiveInt(raw)
		if err != nil {
			h.BadRequest(c, "Invalid hours parameter")
			return
		}
		hours = parsed
	}
	filter, ok := h.listFilter(c)
	if !ok {
		return
	}

	page, err := h.service.ListRecent(c.Request.Context(), time.Duration(hours)*time.Hour, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// DeleteOlderThan handles DELETE /api/v1/alerts/older-than?days=90
func (h *AlertHandler) DeleteOlderThan(c *gin.Context) {
	days, err := parsePositiveInt(c.DefaultQuery("days", "90"))
	if err != nil {
		h.BadRequest(c, "Invalid days parameter")
		return
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	deleted, err := h.service.DeleteOlderThan(c.Request.Context(), cutoff)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": deleted})
}

// DeleteAcknowledged handles DELETE /api/v1/budgets/:id/alerts/acknowledged
func (h *AlertHandler) DeleteAcknowledged(c *gin.Context) {
	budgetID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.service.DeleteAcknowledged(c.Request.Context(), budgetID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": deleted})
}
