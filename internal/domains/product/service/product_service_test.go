package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditModel "shop-backend/internal/domains/audit/model"
	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/query"
)

var admin = shared.Actor{ID: uuid.NewString(), Role: shared.RoleAdmin}

func newService() (*ProductService, *mockProductRepo, *mockImageRepo, *recorderStub) {
	repo := new(mockProductRepo)
	images := new(mockImageRepo)
	rec := &recorderStub{}
	return NewProductService(repo, images, rec).(*ProductService), repo, images, rec
}

func TestListProducts_StorefrontForcesActiveAndHidesCost(t *testing.T) {
	svc, repo, _, _ := newService()
	cost := decimal.NewFromInt(5)
	inactive := false

	repo.On("List", mock.Anything, mock.MatchedBy(func(f model.ProductFilter) bool {
		return f.ActiveOnly && f.IsActive == nil && f.LowStock == nil
	})).Return([]model.Product{{Name: "Mouse", CostPrice: &cost}}, int64(41), nil)

	resp, err := svc.ListProducts(context.Background(), model.ProductFilter{
		IsActive: &inactive,
		Page:     query.Page{Page: 2, Limit: 20},
	})

	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Nil(t, resp.Products[0].CostPrice)
	assert.Equal(t, int64(41), resp.Pagination.Total)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
}

func TestListProducts_InvalidRangeIsValidationError(t *testing.T) {
	svc, repo, _, _ := newService()
	lo, hi := decimal.NewFromInt(50), decimal.NewFromInt(10)

	_, err := svc.ListProducts(context.Background(), model.ProductFilter{MinPrice: &lo, MaxPrice: &hi})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetProduct(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		product *model.Product
		repoErr error
		wantErr error
	}{
		{name: "active product with images", product: &model.Product{ID: id, IsActive: true}},
		{name: "inactive product is hidden", product: &model.Product{ID: id, IsActive: false}, wantErr: model.ErrProductNotFound},
		{name: "missing product", repoErr: model.ErrProductNotFound, wantErr: model.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, images, _ := newService()
			repo.On("GetBySlug", mock.Anything, "usb-hub").Return(tt.product, tt.repoErr)
			images.On("ListByProduct", mock.Anything, id).
				Return([]model.ProductImage{{ID: uuid.New(), Position: 0}}, nil).Maybe()

			p, err := svc.GetProduct(context.Background(), "usb-hub")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, p.Images, 1)
		})
	}
}

func TestCreateProduct(t *testing.T) {
	t.Run("generates slug and records audit", func(t *testing.T) {
		svc, repo, _, rec := newService()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
			return p.Slug == "wireless-mouse" && p.IsActive
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.Product).ID = uuid.New()
		}).Return(nil)

		p, err := svc.CreateProduct(context.Background(), admin, model.CreateProductRequest{
			Name:  "Wireless Mouse",
			Price: decimal.RequireFromString("19.99"),
			Stock: 10,
		})

		require.NoError(t, err)
		assert.Equal(t, "wireless-mouse", p.Slug)
		require.Len(t, rec.entries, 1)
		assert.Equal(t, auditModel.ActionProductCreated, rec.entries[0].Action)
	})

	t.Run("slug collision retries with suffix", func(t *testing.T) {
		svc, repo, _, _ := newService()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
			return p.Slug == "keyboard"
		})).Return(model.ErrSlugTaken).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
			return len(p.Slug) == len("keyboard-")+8
		})).Return(nil).Once()

		_, err := svc.CreateProduct(context.Background(), admin, model.CreateProductRequest{
			Name:  "Keyboard",
			Price: decimal.NewFromInt(30),
		})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("unknown category", func(t *testing.T) {
		svc, repo, _, _ := newService()
		cat := uuid.NewString()
		repo.On("CategoryExists", mock.Anything, uuid.MustParse(cat)).Return(false, nil)

		_, err := svc.CreateProduct(context.Background(), admin, model.CreateProductRequest{
			Name:       "Cable",
			Price:      decimal.NewFromInt(3),
			CategoryID: &cat,
		})

		assert.ErrorIs(t, err, model.ErrCategoryNotFound)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("zero price is rejected", func(t *testing.T) {
		svc, _, _, _ := newService()
		_, err := svc.CreateProduct(context.Background(), admin, model.CreateProductRequest{Name: "Free"})
		assert.Error(t, err)
	})
}

func TestUpdateProduct_MergesPresentFields(t *testing.T) {
	svc, repo, _, rec := newService()
	id := uuid.New()
	existing := &model.Product{ID: id, Name: "Old", Slug: "old", Price: decimal.NewFromInt(10), Stock: 4, IsActive: true}
	repo.On("GetByID", mock.Anything, id).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	price := decimal.NewFromInt(12)
	p, err := svc.UpdateProduct(context.Background(), admin, id, model.UpdateProductRequest{Price: &price})

	require.NoError(t, err)
	assert.Equal(t, "Old", p.Name)
	assert.Equal(t, 4, p.Stock)
	assert.True(t, p.Price.Equal(price))
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "10", rec.entries[0].OldValues["price"])
	assert.Equal(t, "12", rec.entries[0].NewValues["price"])
}

func TestBulkUpdateProducts(t *testing.T) {
	svc, repo, _, rec := newService()
	ids := []string{uuid.NewString(), uuid.NewString()}
	featured := true

	repo.On("BulkUpdate", mock.Anything, mock.Anything, mock.MatchedBy(func(u *query.Update) bool {
		return assert.ObjectsAreEqual([]string{"is_featured"}, u.Columns())
	})).Return(int64(2), nil)

	resp, err := svc.BulkUpdateProducts(context.Background(), admin, model.BulkUpdateProductsRequest{
		IDs:        ids,
		IsFeatured: &featured,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Updated)
	assert.Len(t, rec.entries, 2)
}

func TestBulkUpdateProducts_RequiresAChange(t *testing.T) {
	svc, _, _, _ := newService()
	_, err := svc.BulkUpdateProducts(context.Background(), admin, model.BulkUpdateProductsRequest{
		IDs: []string{uuid.NewString()},
	})
	assert.Error(t, err)
}

func TestBulkUpdateImages(t *testing.T) {
	yes := true
	alt := "front view"

	t.Run("primary with several ids is rejected", func(t *testing.T) {
		svc, _, _, _ := newService()
		_, err := svc.BulkUpdateImages(context.Background(), admin, model.BulkUpdateImagesRequest{
			IDs:       []string{uuid.NewString(), uuid.NewString()},
			IsPrimary: &yes,
		})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("primary and alt text on one image", func(t *testing.T) {
		svc, _, images, _ := newService()
		id := uuid.New()
		images.On("SetPrimary", mock.Anything, id).Return(nil)
		images.On("BulkUpdate", mock.Anything, []uuid.UUID{id}, mock.Anything).Return(int64(1), nil)

		resp, err := svc.BulkUpdateImages(context.Background(), admin, model.BulkUpdateImagesRequest{
			IDs:       []string{id.String()},
			IsPrimary: &yes,
			AltText:   &alt,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.Updated)
		images.AssertExpectations(t)
	})
}

func TestReorderImages(t *testing.T) {
	svc, _, images, _ := newService()
	productID := uuid.New()
	a, b := uuid.New(), uuid.New()
	images.On("Reorder", mock.Anything, productID, []uuid.UUID{b, a}).Return(nil)
	images.On("ListByProduct", mock.Anything, productID).Return([]model.ProductImage{
		{ID: b, Position: 0}, {ID: a, Position: 1},
	}, nil)

	got, err := svc.ReorderImages(context.Background(), productID, model.ReorderImagesRequest{
		ImageIDs: []string{b.String(), a.String()},
	})

	require.NoError(t, err)
	assert.Equal(t, b, got[0].ID)
}

func TestExportProductsToExcel_PagesThroughResults(t *testing.T) {
	svc, repo, _, _ := newService()

	page1 := make([]model.Product, exportPageSize)
	for i := range page1 {
		page1[i] = model.Product{ID: uuid.New(), Name: "P", Price: decimal.NewFromInt(1), CreatedAt: time.Now()}
	}
	page2 := []model.Product{{ID: uuid.New(), Name: "Last", Price: decimal.NewFromInt(2)}}

	repo.On("List", mock.Anything, mock.MatchedBy(func(f model.ProductFilter) bool { return f.Page.Page == 1 })).
		Return(page1, int64(101), nil).Once()
	repo.On("List", mock.Anything, mock.MatchedBy(func(f model.ProductFilter) bool { return f.Page.Page == 2 })).
		Return(page2, int64(101), nil).Once()

	f, n, err := svc.ExportProductsToExcel(context.Background(), model.ProductFilter{})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 101, n)
	header, err := f.GetCellValue(exportSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)
	last, err := f.GetCellValue(exportSheet, "B102")
	require.NoError(t, err)
	assert.Equal(t, "Last", last)
	repo.AssertExpectations(t)
}
