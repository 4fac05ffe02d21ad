package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/domains/review/model"
	"shop-backend/internal/domains/review/service"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/query"
	"shop-backend/internal/shared/request"
	"shop-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

func parseFilter(c *gin.Context) (model.ListReviewsFilter, error) {
	q := request.NewQuery(c)
	f := model.ListReviewsFilter{
		ProductID:  q.UUID("productId"),
		UserID:     q.UUID("userId"),
		IsVisible:  q.Bool("isVisible"),
		IsVerified: q.Bool("isVerified"),
		Rating:     q.Int("rating"),
		Search:     q.String("search"),
		SortBy:     q.String("sortBy"),
		SortOrder:  q.String("sortOrder"),
		Page:       query.ParsePage(c.Request.URL.Query()),
	}
	return f, q.Err()
}

// ListForProduct - GET /api/v1/products/:id/reviews
func (h *Handler) ListForProduct(c *gin.Context) {
	productID, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	resp, err := h.service.ListForProduct(c.Request.Context(), productID, filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Reviews retrieved successfully", resp)
}

// Create - POST /api/v1/products/:id/reviews
func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	productID, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.CreateReviewRequest
	if !request.BindJSON(c, &req) {
		return
	}

	review, err := h.service.Create(c.Request.Context(), actor, productID, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Review created successfully", review)
}

// AdminList - GET /api/v1/admin/reviews
func (h *Handler) AdminList(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	resp, err := h.service.AdminList(c.Request.Context(), filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Reviews retrieved successfully", resp)
}

// BulkSetVisibility - PATCH /api/v1/admin/reviews
func (h *Handler) BulkSetVisibility(c *gin.Context) {
	var req model.BulkVisibilityRequest
	if !request.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.ActorFromContext(c)

	resp, err := h.service.BulkSetVisibility(c.Request.Context(), actor, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Reviews updated successfully", resp)
}
