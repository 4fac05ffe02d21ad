package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/query"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestDecrementStockTx(t *testing.T) {
	ctx := context.Background()
	a := uuid.MustParse("00000000-0000-4000-8000-00000000000a")
	b := uuid.MustParse("00000000-0000-4000-8000-00000000000b")

	t.Run("decrements every line in id order", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE products").WithArgs(a, 2).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec("UPDATE products").WithArgs(b, 1).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		err = repo.DecrementStockTx(ctx, tx, []model.StockLine{
			{ProductID: b, Quantity: 1},
			{ProductID: a, Quantity: 2},
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows means insufficient stock", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectBegin()
		mock.ExpectExec("stock >= \\$2").WithArgs(a, 5).WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		err = repo.DecrementStockTx(ctx, tx, []model.StockLine{{ProductID: a, Quantity: 5}})

		require.ErrorIs(t, err, model.ErrInsufficientStock)
		appErr, _ := apperror.As(err)
		assert.Equal(t, a.String(), appErr.Details["productId"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		mock := newMock(t)
		repo := NewPostgresRepository(mock)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE products").WillReturnError(errors.New("conn reset"))

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		err = repo.DecrementStockTx(ctx, tx, []model.StockLine{{ProductID: a, Quantity: 1}})
		assert.ErrorContains(t, err, "conn reset")
		assert.NotErrorIs(t, err, model.ErrInsufficientStock)
	})
}

func TestRestockTx(t *testing.T) {
	ctx := context.Background()
	mock := newMock(t)
	repo := NewPostgresRepository(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("SET stock = stock \\+ \\$2").WithArgs(id, 3).WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.RestockTx(ctx, tx, []model.StockLine{{ProductID: id, Quantity: 3}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdate(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresRepository(mock)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	var upd query.Update
	upd.Set("is_featured", true)

	mock.ExpectExec("UPDATE products SET is_featured = \\$1, updated_at = NOW\\(\\) WHERE id = ANY\\(\\$2\\)").
		WithArgs(true, ids).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	n, err := repo.BulkUpdate(context.Background(), ids, &upd)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_InvalidSortIsRejectedBeforeQuerying(t *testing.T) {
	mock := newMock(t)
	repo := NewPostgresRepository(mock)

	_, _, err := repo.List(context.Background(), model.ProductFilter{
		SortBy: "cost_price",
		Page:   query.Page{Page: 1, Limit: 20},
	})

	assert.ErrorIs(t, err, apperror.ErrInvalidQuery)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildPredicates(t *testing.T) {
	minPrice := decimal.NewFromInt(10)
	featured := true
	catID := uuid.New()

	preds := buildPredicates(model.ProductFilter{
		ActiveOnly: true,
		Category:   catID.String(),
		Brand:      "ACME",
		MinPrice:   &minPrice,
		Featured:   &featured,
	})

	assert.Equal(t, []query.Predicate{
		query.Eq("active", true),
		query.Eq("category_id", catID),
		query.Eq("brand", "acme"),
		query.Gte("price", minPrice),
		query.Eq("featured", true),
	}, preds)

	bySlug := buildPredicates(model.ProductFilter{Category: "laptops"})
	assert.Equal(t, []query.Predicate{query.Eq("category_slug", "laptops")}, bySlug)

	where, err := productSchema.Where("", preds...)
	require.NoError(t, err)
	assert.Contains(t, where.Clause, "p.is_active = $1")
	assert.Contains(t, where.Clause, "LOWER(p.brand) = $3")
}

func TestImageRepository_Delete(t *testing.T) {
	mock := newMock(t)
	repo := NewImageRepository(mock)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM product_images").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrImageNotFound)
}

func TestImageRepository_ReorderRejectsPartialList(t *testing.T) {
	mock := newMock(t)
	repo := NewImageRepository(mock)
	productID := uuid.New()
	a, b := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM product_images").
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(a).AddRow(b))
	mock.ExpectRollback()

	err := repo.Reorder(context.Background(), productID, []uuid.UUID{a})

	assert.ErrorIs(t, err, model.ErrInvalidImageOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSamePermutation(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	assert.True(t, samePermutation([]uuid.UUID{a, b, c}, []uuid.UUID{c, a, b}))
	assert.False(t, samePermutation([]uuid.UUID{a, b}, []uuid.UUID{a, a}))
	assert.False(t, samePermutation([]uuid.UUID{a, b}, []uuid.UUID{a, c}))
	assert.False(t, samePermutation([]uuid.UUID{a, b}, []uuid.UUID{a}))
}
