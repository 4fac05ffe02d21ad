package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/domains/payment/model"
	"shop-backend/internal/domains/payment/service"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/request"
	"shop-backend/internal/shared/response"
)

type PaymentHandler struct {
	service service.ServiceInterface
}

func NewPaymentHandler(service service.ServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreatePaymentIntent - POST /api/v1/stripe/create-payment-intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	var req model.CreatePaymentIntentRequest
	if !request.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreatePaymentIntent(c.Request.Context(), userID, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Payment intent created", resp)
}

// ConfirmPayment - POST /api/v1/stripe/confirm-payment
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		response.HandleError(c, apperror.ErrUnauthenticated)
		return
	}
	var req model.ConfirmPaymentRequest
	if !request.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.ConfirmPayment(c.Request.Context(), userID, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	message := "Payment confirmed"
	if !resp.Completed {
		message = "Payment is still being processed"
	}
	response.Success(c, http.StatusOK, message, resp)
}
