package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nirmaan-app/procurement/internal/procurement/reconcile"
	"github.com/nirmaan-app/procurement/internal/procurement/repository"
	"github.com/nirmaan-app/procurement/internal/procurement/service"
)

// Handlers is the procurement handler set.
type Handlers struct {
	Batch  *BatchHandler
	Order  *OrderHandler
	Vendor *VendorHandler
}

func NewHandlers(reviewSvc *service.ReviewService, orderSvc *service.OrderService, exportSvc *service.ExportService, vendorRepo *repository.VendorRepository) *Handlers {
	return &Handlers{
		Batch:  NewBatchHandler(reviewSvc),
		Order:  NewOrderHandler(orderSvc, exportSvc),
		Vendor: NewVendorHandler(vendorRepo),
	}
}

// === Response helpers ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// FailedWrite reports a persistence failure with a distinct code so clients
// can tell "retry or clean up" apart from an ordinary server error.
func FailedWrite(c *gin.Context, message string) {
	Error(c, 50010, message)
}

// RespondError maps the service error taxonomy onto the response envelope.
func RespondError(c *gin.Context, err error) {
	var vErr *reconcile.ValidationError
	if errors.As(err, &vErr) {
		BadRequest(c, vErr.Reason)
		return
	}
	var pErr *service.PersistenceError
	if errors.As(err, &pErr) {
		FailedWrite(c, pErr.Error())
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c, "record not found")
		return
	}
	InternalError(c, err.Error())
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func listPages(total int64, pageSize int) int {
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
