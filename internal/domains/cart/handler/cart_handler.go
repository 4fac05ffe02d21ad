package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/domains/cart/model"
	"shop-backend/internal/domains/cart/service"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/request"
	"shop-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// GetCart - GET /api/v1/cart
func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}

	cart, err := h.service.GetCart(c.Request.Context(), userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Cart retrieved successfully", cart)
}

// SyncCart - PUT /api/v1/cart
func (h *Handler) SyncCart(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	var req model.SyncCartRequest
	if !request.BindJSON(c, &req) {
		return
	}

	cart, err := h.service.SyncCart(c.Request.Context(), userID, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Cart updated successfully", cart)
}

// ClearCart - DELETE /api/v1/cart
func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}

	if err := h.service.ClearCart(c.Request.Context(), userID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Cart cleared successfully", nil)
}
