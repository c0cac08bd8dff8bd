package handler

import (
	"github.com/gin-gonic/gin"

	segmentapp "github.com/expenseflow/backend/internal/application/segment"
)

// SegmentHandler handles segment endpoints
type SegmentHandler struct {
	BaseHandler
	service *segmentapp.Service
}

// NewSegmentHandler creates a new SegmentHandler
func NewSegmentHandler(service *segmentapp.Service) *SegmentHandler {
	return &SegmentHandler{service: service}
}

// Create handles POST /api/v1/segments
func (h *SegmentHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req segmentapp.CreateSegmentRequest
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

// Get handles GET /api/v1/segments/:id
func (h *SegmentHandler) Get(c *gin.Context) {
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

// Update handles PUT /api/v1/segments/:id
func (h *SegmentHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req segmentapp.UpdateSegmentRequest
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

// List handles GET /api/v1/segments
func (h *SegmentHandler) List(c *gin.Context) {
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

// ListByType handles GET /api/v1/segments/by-type/:type
func (h *SegmentHandler) ListByType(c *gin.Context) {
	items, err := h.service.ListByType(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// ListChildren handles GET /api/v1/segments/:id/children
func (h *SegmentHandler) ListChildren(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.service.ListChildren(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Activate handles POST /api/v1/segments/:id/activate
func (h *SegmentHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate handles POST /api/v1/segments/:id/deactivate
func (h *SegmentHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *SegmentHandler) setActive(c *gin.Context, active bool) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.SetActive(c.Request.Context(), id, actor, active)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /api/v1/segments/:id
func (h *SegmentHandler) Delete(c *gin.Context) {
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
