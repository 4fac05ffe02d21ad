package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	auditModel "shop-backend/internal/domains/audit/model"
	"shop-backend/internal/domains/booking/model"
	"shop-backend/internal/shared/query"
	"shop-backend/pkg/database"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) LockDayTx(ctx context.Context, tx pgx.Tx, day string) error {
	return m.Called(ctx, tx, day).Error(0)
}

func (m *mockRepo) ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.Interval, error) {
	args := m.Called(ctx, from, to)
	iv, _ := args.Get(0).([]model.Interval)
	return iv, args.Error(1)
}

func (m *mockRepo) ListActiveBetweenTx(ctx context.Context, tx pgx.Tx, from, to time.Time, excludeID uuid.UUID) ([]model.Interval, error) {
	args := m.Called(ctx, tx, from, to, excludeID)
	iv, _ := args.Get(0).([]model.Interval)
	return iv, args.Error(1)
}

func (m *mockRepo) CreateTx(ctx context.Context, tx pgx.Tx, t *model.Ticket) error {
	return m.Called(ctx, tx, t).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*model.Ticket)
	return t, args.Error(1)
}

func (m *mockRepo) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Ticket, error) {
	args := m.Called(ctx, tx, id)
	t, _ := args.Get(0).(*model.Ticket)
	return t, args.Error(1)
}

func (m *mockRepo) GetByIDsForUpdateTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Ticket, error) {
	args := m.Called(ctx, tx, ids)
	t, _ := args.Get(0).([]model.Ticket)
	return t, args.Error(1)
}

func (m *mockRepo) UpdateTx(ctx context.Context, tx pgx.Tx, t *model.Ticket) error {
	return m.Called(ctx, tx, t).Error(0)
}

func (m *mockRepo) Cancel(ctx context.Context, t *model.Ticket, from []model.Status) error {
	return m.Called(ctx, t, from).Error(0)
}

func (m *mockRepo) List(ctx context.Context, f model.ListTicketsFilter) ([]model.Ticket, int64, error) {
	args := m.Called(ctx, f)
	t, _ := args.Get(0).([]model.Ticket)
	return t, args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) BulkUpdateTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID, u *query.Update) (int64, error) {
	args := m.Called(ctx, tx, ids, u)
	return args.Get(0).(int64), args.Error(1)
}

type txStub struct{}

func (txStub) WithTx(_ context.Context, fn database.TxFunc) error { return fn(nil) }

type recorderStub struct {
	entries []auditModel.Entry
}

func (r *recorderStub) Record(_ context.Context, e auditModel.Entry) {
	r.entries = append(r.entries, e)
}
