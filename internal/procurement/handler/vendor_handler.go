package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nirmaan-app/procurement/internal/procurement/repository"
)

// VendorHandler serves the read-only vendor directory.
type VendorHandler struct {
	repo *repository.VendorRepository
}

func NewVendorHandler(repo *repository.VendorRepository) *VendorHandler {
	return &VendorHandler{repo: repo}
}

// ListVendors lists vendors.
// GET /api/v1/procurement/vendors?category=xxx&status=xxx&search=xxx
func (h *VendorHandler) ListVendors(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"category": c.Query("category"),
		"status":   c.Query("status"),
		"search":   c.Query("search"),
	}

	vendors, total, err := h.repo.FindAll(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list vendors failed: "+err.Error())
		return
	}

	Success(c, ListResponse{
		Items: vendors,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: listPages(total, pageSize),
		},
	})
}

// GetVendor returns one vendor.
// GET /api/v1/procurement/vendors/:id
func (h *VendorHandler) GetVendor(c *gin.Context) {
	vendor, err := h.repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, vendor)
}
