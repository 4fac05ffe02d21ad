package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	auditModel "shop-backend/internal/domains/audit/model"
	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway"
	productModel "shop-backend/internal/domains/product/model"
	"shop-backend/internal/infrastructure/events"
	"shop-backend/pkg/database"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateTx(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	return m.Called(ctx, tx, o).Error(0)
}

func (m *mockRepo) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	return m.Called(ctx, id, intentID).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *mockRepo) GetByPaymentIntent(ctx context.Context, intentID string) (*model.Order, error) {
	args := m.Called(ctx, intentID)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *mockRepo) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *mockRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, o *model.Order, from model.Status, changedBy *uuid.UUID, notes string) error {
	return m.Called(ctx, tx, o, from, changedBy, notes).Error(0)
}

func (m *mockRepo) SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockRepo) List(ctx context.Context, f model.ListOrdersFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) History(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistory, error) {
	args := m.Called(ctx, orderID)
	h, _ := args.Get(0).([]model.StatusHistory)
	return h, args.Error(1)
}

func (m *mockRepo) ListStalePending(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	args := m.Called(ctx, before, limit)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type mockStock struct {
	mock.Mock
}

func (m *mockStock) RestockTx(ctx context.Context, tx pgx.Tx, lines []productModel.StockLine) error {
	return m.Called(ctx, tx, lines).Error(0)
}

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) GetIntent(ctx context.Context, intentID string) (*gateway.Intent, error) {
	args := m.Called(ctx, intentID)
	i, _ := args.Get(0).(*gateway.Intent)
	return i, args.Error(1)
}

func (m *mockPayments) Refund(ctx context.Context, intentID string, amount int64) (*gateway.Refund, error) {
	args := m.Called(ctx, intentID, amount)
	r, _ := args.Get(0).(*gateway.Refund)
	return r, args.Error(1)
}

type txStub struct{}

func (txStub) WithTx(_ context.Context, fn database.TxFunc) error { return fn(nil) }

type recorderStub struct {
	entries []auditModel.Entry
}

func (r *recorderStub) Record(_ context.Context, e auditModel.Entry) {
	r.entries = append(r.entries, e)
}

type publisherStub struct {
	events.NoopPublisher
	mu        sync.Mutex
	published []events.Event
}

func (p *publisherStub) Publish(_ context.Context, _ string, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, e)
	return nil
}
