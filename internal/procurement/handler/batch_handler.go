package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nirmaan-app/procurement/internal/procurement/service"
)

// BatchHandler serves sent-back batches: listing, detail, the reviewer's
// selection session, and the approve / send-back actions.
type BatchHandler struct {
	svc *service.ReviewService
}

func NewBatchHandler(svc *service.ReviewService) *BatchHandler {
	return &BatchHandler{svc: svc}
}

// ListBatches lists sent-back batches.
// GET /api/v1/procurement/sent-back-batches?type=xxx&workflow_state=xxx&project_id=xxx&search=xxx
func (h *BatchHandler) ListBatches(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"project_id":     c.Query("project_id"),
		"type":           c.Query("type"),
		"workflow_state": c.Query("workflow_state"),
		"search":         c.Query("search"),
	}

	batches, total, err := h.svc.ListBatches(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list batches failed: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: batches,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: listPages(total, pageSize),
		},
	})
}

// GetBatch returns a batch with derived counts, categories, and per-item
// reference quotes.
// GET /api/v1/procurement/sent-back-batches/:id
func (h *BatchHandler) GetBatch(c *gin.Context) {
	batch, err := h.svc.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, batch)
}

// CreateBatch registers a new sent-back batch from the upstream flow.
// POST /api/v1/procurement/sent-back-batches
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	var req service.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	batch, err := h.svc.CreateBatch(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, batch)
}

// GetSelection returns the caller's current selection on the batch.
// GET /api/v1/procurement/sent-back-batches/:id/selection
func (h *BatchHandler) GetSelection(c *gin.Context) {
	sel, err := h.svc.GetSelection(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sel)
}

// SelectCategory selects every item of one category.
// PUT /api/v1/procurement/sent-back-batches/:id/selection/category
func (h *BatchHandler) SelectCategory(c *gin.Context) {
	var req struct {
		Category string `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	sel, err := h.svc.SelectCategory(c.Request.Context(), GetUserID(c), c.Param("id"), req.Category)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sel)
}

// SelectItems selects an explicit item subset within one category.
// PUT /api/v1/procurement/sent-back-batches/:id/selection/items
func (h *BatchHandler) SelectItems(c *gin.Context) {
	var req struct {
		Category string   `json:"category" binding:"required"`
		ItemIDs  []string `json:"item_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	sel, err := h.svc.SelectItems(c.Request.Context(), GetUserID(c), c.Param("id"), req.Category, req.ItemIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, sel)
}

// ClearSelection drops the caller's selection on the batch.
// DELETE /api/v1/procurement/sent-back-batches/:id/selection
func (h *BatchHandler) ClearSelection(c *gin.Context) {
	if err := h.svc.ClearSelection(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	Success(c, nil)
}

// Approve disposes the selected items as approved and generates one
// purchase order per vendor.
// POST /api/v1/procurement/sent-back-batches/:id/approve
func (h *BatchHandler) Approve(c *gin.Context) {
	outcome, err := h.svc.Approve(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, outcome)
}

// SendBack bounces the selected items into a new rejection batch.
// POST /api/v1/procurement/sent-back-batches/:id/send-back
func (h *BatchHandler) SendBack(c *gin.Context) {
	var req struct {
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	outcome, err := h.svc.SendBack(c.Request.Context(), GetUserID(c), c.Param("id"), req.Comment)
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, outcome)
}

// GetComments lists a batch's annotations.
// GET /api/v1/procurement/sent-back-batches/:id/comments
func (h *BatchHandler) GetComments(c *gin.Context) {
	comments, err := h.svc.GetComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, comments)
}

// GetReviewLog lists a batch's review history.
// GET /api/v1/procurement/sent-back-batches/:id/review-log
func (h *BatchHandler) GetReviewLog(c *gin.Context) {
	page, pageSize := GetPagination(c)
	logs, total, err := h.svc.GetReviewLog(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, ListResponse{
		Items: logs,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: listPages(total, pageSize),
		},
	})
}
