package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	auditModel "shop-backend/internal/domains/audit/model"
	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/shared/query"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	args := m.Called(ctx, f)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	args := m.Called(ctx, slug)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *mockProductRepo) Create(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) Update(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) BulkUpdate(ctx context.Context, ids []uuid.UUID, upd *query.Update) (int64, error) {
	args := m.Called(ctx, ids, upd)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepo) DecrementStockTx(ctx context.Context, tx pgx.Tx, lines []model.StockLine) error {
	return m.Called(ctx, tx, lines).Error(0)
}

func (m *mockProductRepo) RestockTx(ctx context.Context, tx pgx.Tx, lines []model.StockLine) error {
	return m.Called(ctx, tx, lines).Error(0)
}

func (m *mockProductRepo) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	args := m.Called(ctx, activeOnly)
	cats, _ := args.Get(0).([]model.Category)
	return cats, args.Error(1)
}

func (m *mockProductRepo) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockImageRepo struct {
	mock.Mock
}

func (m *mockImageRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error) {
	args := m.Called(ctx, productID)
	images, _ := args.Get(0).([]model.ProductImage)
	return images, args.Error(1)
}

func (m *mockImageRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.ProductImage, error) {
	args := m.Called(ctx, id)
	img, _ := args.Get(0).(*model.ProductImage)
	return img, args.Error(1)
}

func (m *mockImageRepo) Add(ctx context.Context, img *model.ProductImage) error {
	return m.Called(ctx, img).Error(0)
}

func (m *mockImageRepo) Reorder(ctx context.Context, productID uuid.UUID, ids []uuid.UUID) error {
	return m.Called(ctx, productID, ids).Error(0)
}

func (m *mockImageRepo) SetPrimary(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockImageRepo) BulkUpdate(ctx context.Context, ids []uuid.UUID, upd *query.Update) (int64, error) {
	args := m.Called(ctx, ids, upd)
	return args.Get(0).(int64), args.Error(1)
}

type recorderStub struct {
	entries []auditModel.Entry
}

func (r *recorderStub) Record(_ context.Context, e auditModel.Entry) {
	r.entries = append(r.entries, e)
}
