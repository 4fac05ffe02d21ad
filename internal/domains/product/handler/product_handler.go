package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/domains/product/service"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/query"
	"shop-backend/internal/shared/request"
	"shop-backend/internal/shared/response"
	"shop-backend/pkg/logger"
)

// Handler serves the storefront catalog and the admin product endpoints.
type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

func parseFilter(c *gin.Context) (model.ProductFilter, error) {
	q := request.NewQuery(c)
	f := model.ProductFilter{
		Search:    q.String("search"),
		Category:  q.String("category"),
		Brand:     q.String("brand"),
		MinPrice:  q.Decimal("minPrice"),
		MaxPrice:  q.Decimal("maxPrice"),
		Featured:  q.Bool("featured"),
		IsActive:  q.Bool("isActive"),
		LowStock:  q.Int("lowStock"),
		SortBy:    q.String("sortBy"),
		SortOrder: q.String("sortOrder"),
		Page:      query.ParsePage(c.Request.URL.Query()),
	}
	return f, q.Err()
}

// ListProducts - GET /api/v1/products
func (h *Handler) ListProducts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	resp, err := h.service.ListProducts(c.Request.Context(), filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Products retrieved successfully", resp)
}

// GetProduct - GET /api/v1/products/:id (id or slug)
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Product retrieved successfully", p)
}

// ListCategories - GET /api/v1/categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Categories retrieved successfully", categories)
}

// AdminListProducts - GET /api/v1/admin/products
func (h *Handler) AdminListProducts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	resp, err := h.service.AdminListProducts(c.Request.Context(), filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Products retrieved successfully", resp)
}

// CreateProduct - POST /api/v1/admin/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var req model.CreateProductRequest
	if !request.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.ActorFromContext(c)

	p, err := h.service.CreateProduct(c.Request.Context(), actor, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Product created successfully", p)
}

// UpdateProduct - PUT /api/v1/admin/products/:id
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateProductRequest
	if !request.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.ActorFromContext(c)

	p, err := h.service.UpdateProduct(c.Request.Context(), actor, id, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Product updated successfully", p)
}

// BulkUpdateProducts - PATCH /api/v1/admin/products
func (h *Handler) BulkUpdateProducts(c *gin.Context) {
	var req model.BulkUpdateProductsRequest
	if !request.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.ActorFromContext(c)

	resp, err := h.service.BulkUpdateProducts(c.Request.Context(), actor, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Products updated successfully", resp)
}

// ExportProducts - GET /api/v1/admin/products/export
func (h *Handler) ExportProducts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	f, rows, err := h.service.ExportProductsToExcel(c.Request.Context(), filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("Failed to close export workbook", err)
		}
	}()

	filename := fmt.Sprintf("products_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("X-Total-Rows", fmt.Sprint(rows))
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		logger.Error("Failed to write export workbook", err)
	}
}

// ListImages - GET /api/v1/admin/products/:id/images
func (h *Handler) ListImages(c *gin.Context) {
	productID, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}

	images, err := h.service.ListImages(c.Request.Context(), productID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Images retrieved successfully", images)
}

// AddImage - POST /api/v1/admin/products/:id/images
func (h *Handler) AddImage(c *gin.Context) {
	productID, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.AddImageRequest
	if !request.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.ActorFromContext(c)

	img, err := h.service.AddImage(c.Request.Context(), actor, productID, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Image added successfully", img)
}

// ReorderImages - PUT /api/v1/admin/products/:id/images/order
func (h *Handler) ReorderImages(c *gin.Context) {
	productID, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.ReorderImagesRequest
	if !request.BindJSON(c, &req) {
		return
	}

	images, err := h.service.ReorderImages(c.Request.Context(), productID, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Images reordered successfully", images)
}

// DeleteImage - DELETE /api/v1/admin/images/:id
func (h *Handler) DeleteImage(c *gin.Context) {
	id, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteImage(c.Request.Context(), id); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Image deleted successfully", nil)
}

// BulkUpdateImages - PATCH /api/v1/admin/images
func (h *Handler) BulkUpdateImages(c *gin.Context) {
	var req model.BulkUpdateImagesRequest
	if !request.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.ActorFromContext(c)

	resp, err := h.service.BulkUpdateImages(c.Request.Context(), actor, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Images updated successfully", resp)
}
