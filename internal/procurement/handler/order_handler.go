package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nirmaan-app/procurement/internal/procurement/service"
)

// OrderHandler serves generated purchase orders.
type OrderHandler struct {
	svc       *service.OrderService
	exportSvc *service.ExportService
}

func NewOrderHandler(svc *service.OrderService, exportSvc *service.ExportService) *OrderHandler {
	return &OrderHandler{svc: svc, exportSvc: exportSvc}
}

// ListOrders lists purchase orders.
// GET /api/v1/procurement/orders?batch_id=xxx&vendor=xxx&status=xxx&search=xxx
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"batch_id":   c.Query("batch_id"),
		"vendor":     c.Query("vendor"),
		"project_id": c.Query("project_id"),
		"status":     c.Query("status"),
		"search":     c.Query("search"),
	}

	orders, total, err := h.svc.ListOrders(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list orders failed: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: orders,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: listPages(total, pageSize),
		},
	})
}

// GetOrder returns one purchase order.
// GET /api/v1/procurement/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	po, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, po)
}

// UpdateStatus moves an order through dispatch/delivery.
// PUT /api/v1/procurement/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	po, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, po)
}

// Export renders the order as .xlsx and returns a download URL.
// POST /api/v1/procurement/orders/:id/export
func (h *OrderHandler) Export(c *gin.Context) {
	url, err := h.exportSvc.ExportOrder(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"url": url})
}
