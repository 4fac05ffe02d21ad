package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderModel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/model"
	"shop-backend/internal/shared/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	createReq model.CreatePaymentIntentRequest
	confirmed *model.ConfirmPaymentResponse
	err       error
}

func (s *stubService) CreatePaymentIntent(_ context.Context, _ uuid.UUID, req model.CreatePaymentIntentRequest) (*model.PaymentIntentResponse, error) {
	s.createReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &model.PaymentIntentResponse{OrderID: uuid.NewString(), ClientSecret: "secret", Amount: 1099, Currency: "usd"}, nil
}

func (s *stubService) ConfirmPayment(_ context.Context, _ uuid.UUID, _ model.ConfirmPaymentRequest) (*model.ConfirmPaymentResponse, error) {
	return s.confirmed, s.err
}

func newRouter(svc *stubService, authenticated bool) *gin.Engine {
	h := NewPaymentHandler(svc)
	r := gin.New()
	if authenticated {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextKeyUserID, uuid.New())
			c.Next()
		})
	}
	r.POST("/stripe/create-payment-intent", h.CreatePaymentIntent)
	r.POST("/stripe/confirm-payment", h.ConfirmPayment)
	return r
}

func post(r http.Handler, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var env map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestCreatePaymentIntent(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		body          string
		err           error
		wantStatus    int
	}{
		{"created", true, `{"items":[{"productId":"` + uuid.NewString() + `","quantity":2}],"shipping":{"fullName":"Ada"}}`, nil, http.StatusCreated},
		{"unauthenticated", false, `{}`, nil, http.StatusUnauthorized},
		{"malformed json", true, `{"items":`, nil, http.StatusBadRequest},
		{"out of stock", true, `{"items":[]}`, orderModel.ErrProductUnavailable, http.StatusBadRequest},
		{"gateway down", true, `{"orderId":"` + uuid.NewString() + `"}`, gateway.ErrGatewayUnavailable, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err}
			w, _ := post(newRouter(svc, tt.authenticated), "/stripe/create-payment-intent", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCreatePaymentIntent_BindsItems(t *testing.T) {
	svc := &stubService{}
	productID := uuid.NewString()
	_, env := post(newRouter(svc, true), "/stripe/create-payment-intent",
		`{"items":[{"productId":"`+productID+`","quantity":3}],"total":"0.01"}`)

	require.Len(t, svc.createReq.Items, 1)
	assert.Equal(t, productID, svc.createReq.Items[0].ProductID)
	assert.Equal(t, 3, svc.createReq.Items[0].Quantity)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, "secret", data["clientSecret"])
}

func TestConfirmPayment_Pending(t *testing.T) {
	svc := &stubService{confirmed: &model.ConfirmPaymentResponse{Completed: false, Status: "processing"}}
	w, env := post(newRouter(svc, true), "/stripe/confirm-payment", `{"paymentIntentId":"pi_1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	data := env["data"].(map[string]interface{})
	assert.Equal(t, false, data["completed"])
	assert.Equal(t, "processing", data["status"])
}
