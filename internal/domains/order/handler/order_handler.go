package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/service"
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

func parseFilter(c *gin.Context) (model.ListOrdersFilter, error) {
	q := request.NewQuery(c)
	f := model.ListOrdersFilter{
		Status:        model.Status(strings.ToUpper(q.String("status"))),
		PaymentStatus: model.PaymentStatus(strings.ToUpper(q.String("paymentStatus"))),
		From:          q.Date("from", false),
		To:            q.Date("to", true),
		Search:        q.String("search"),
		SortBy:        q.String("sortBy"),
		SortOrder:     q.String("sortOrder"),
		Page:          query.ParsePage(c.Request.URL.Query()),
	}
	return f, q.Err()
}

// ListMyOrders - GET /api/v1/orders
func (h *Handler) ListMyOrders(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	resp, err := h.service.ListMyOrders(c.Request.Context(), userID, filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Orders retrieved successfully", resp)
}

// GetMyOrder - GET /api/v1/orders/:id
func (h *Handler) GetMyOrder(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	id, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetMyOrder(c.Request.Context(), userID, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order retrieved successfully", order)
}

// CancelMyOrder - POST /api/v1/orders/:id/cancel
func (h *Handler) CancelMyOrder(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	id, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.CancelOrderRequest
	if c.Request.ContentLength > 0 && !request.BindJSON(c, &req) {
		return
	}

	order, err := h.service.CancelMyOrder(c.Request.Context(), actor, id, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order cancelled successfully", order)
}

// AdminListOrders - GET /api/v1/admin/orders
func (h *Handler) AdminListOrders(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	resp, err := h.service.AdminListOrders(c.Request.Context(), filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Orders retrieved successfully", resp)
}

// AdminGetOrder - GET /api/v1/admin/orders/:id
func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.AdminGetOrder(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order retrieved successfully", order)
}

// UpdateStatus - PATCH /api/v1/admin/orders/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := request.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateStatusRequest
	if !request.BindJSON(c, &req) {
		return
	}
	actor, _ := middleware.ActorFromContext(c)

	order, err := h.service.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Order status updated successfully", order)
}
