package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	orderModel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway"
	productModel "shop-backend/internal/domains/product/model"
	"shop-backend/internal/infrastructure/events"
	"shop-backend/pkg/database"
)

type mockOrders struct {
	mock.Mock
}

func (m *mockOrders) CreateTx(ctx context.Context, tx pgx.Tx, o *orderModel.Order) error {
	return m.Called(ctx, tx, o).Error(0)
}

func (m *mockOrders) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	return m.Called(ctx, id, intentID).Error(0)
}

func (m *mockOrders) GetByID(ctx context.Context, id uuid.UUID) (*orderModel.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*orderModel.Order)
	return o, args.Error(1)
}

func (m *mockOrders) GetByPaymentIntent(ctx context.Context, intentID string) (*orderModel.Order, error) {
	args := m.Called(ctx, intentID)
	o, _ := args.Get(0).(*orderModel.Order)
	return o, args.Error(1)
}

func (m *mockOrders) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*orderModel.Order, error) {
	args := m.Called(ctx, tx, id)
	o, _ := args.Get(0).(*orderModel.Order)
	return o, args.Error(1)
}

func (m *mockOrders) UpdateStatusTx(ctx context.Context, tx pgx.Tx, o *orderModel.Order, from orderModel.Status, changedBy *uuid.UUID, notes string) error {
	return m.Called(ctx, tx, o, from, changedBy, notes).Error(0)
}

func (m *mockOrders) SetPaymentStatus(ctx context.Context, id uuid.UUID, status orderModel.PaymentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockOrders) List(ctx context.Context, f orderModel.ListOrdersFilter) ([]orderModel.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]orderModel.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *mockOrders) History(ctx context.Context, orderID uuid.UUID) ([]orderModel.StatusHistory, error) {
	args := m.Called(ctx, orderID)
	h, _ := args.Get(0).([]orderModel.StatusHistory)
	return h, args.Error(1)
}

func (m *mockOrders) ListStalePending(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, before, limit)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type mockProducts struct {
	mock.Mock
}

func (m *mockProducts) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]productModel.Product, error) {
	args := m.Called(ctx, ids)
	p, _ := args.Get(0).([]productModel.Product)
	return p, args.Error(1)
}

func (m *mockProducts) DecrementStockTx(ctx context.Context, tx pgx.Tx, lines []productModel.StockLine) error {
	return m.Called(ctx, tx, lines).Error(0)
}

type mockCart struct {
	mock.Mock
}

func (m *mockCart) ClearTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	return m.Called(ctx, tx, userID).Error(0)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Name() string { return "mock" }

func (m *mockGateway) CreateIntent(ctx context.Context, params gateway.CreateIntentParams) (*gateway.Intent, error) {
	args := m.Called(ctx, params)
	i, _ := args.Get(0).(*gateway.Intent)
	return i, args.Error(1)
}

func (m *mockGateway) GetIntent(ctx context.Context, intentID string) (*gateway.Intent, error) {
	args := m.Called(ctx, intentID)
	i, _ := args.Get(0).(*gateway.Intent)
	return i, args.Error(1)
}

func (m *mockGateway) Refund(ctx context.Context, intentID string, amount int64) (*gateway.Refund, error) {
	args := m.Called(ctx, intentID, amount)
	r, _ := args.Get(0).(*gateway.Refund)
	return r, args.Error(1)
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

type txStub struct{}

func (txStub) WithTx(_ context.Context, fn database.TxFunc) error { return fn(nil) }

type publisherStub struct {
	events.NoopPublisher
	mu     sync.Mutex
	events []events.Event
}

func (p *publisherStub) Publish(_ context.Context, _ string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *publisherStub) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// memoryStock is an in-memory ProductStore with the conditional-decrement
// semantics of the SQL implementation.
type memoryStock struct {
	mu    sync.Mutex
	stock map[uuid.UUID]int
}

func (s *memoryStock) GetByIDs(_ context.Context, ids []uuid.UUID) ([]productModel.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []productModel.Product
	for _, id := range ids {
		if n, ok := s.stock[id]; ok {
			out = append(out, productModel.Product{ID: id, IsActive: true, Stock: n})
		}
	}
	return out, nil
}

func (s *memoryStock) DecrementStockTx(_ context.Context, _ pgx.Tx, lines []productModel.StockLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range lines {
		if s.stock[l.ProductID] < l.Quantity {
			return productModel.ErrInsufficientStock.WithDetails(map[string]interface{}{"productId": l.ProductID.String()})
		}
	}
	for _, l := range lines {
		s.stock[l.ProductID] -= l.Quantity
	}
	return nil
}
