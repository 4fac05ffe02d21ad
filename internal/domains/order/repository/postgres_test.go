package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/shared/query"
)

func TestUpdateStatusTx(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	admin := uuid.New()

	t.Run("writes status and history", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		now := time.Now()
		o := &model.Order{ID: id, Status: model.StatusPending, PaymentStatus: model.PaymentProcessing}
		o.Transition(model.StatusCancelled, now)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE orders SET").
			WithArgs(id, model.StatusPending, model.StatusCancelled, model.PaymentProcessing,
				o.PaidAt, o.CancelledAt, o.DeliveredAt).
			WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
		mock.ExpectExec("INSERT INTO order_status_history").
			WithArgs(id, pgxmock.AnyArg(), model.StatusCancelled, &admin, "customer request").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		err = NewPostgresRepository(mock).UpdateStatusTx(ctx, tx, o, model.StatusPending, &admin, "customer request")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row already moved is a conflict", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		o := &model.Order{ID: id, Status: model.StatusConfirmed, PaymentStatus: model.PaymentCompleted}

		mock.ExpectBegin()
		mock.ExpectQuery("WHERE id = \\$1 AND status = \\$2").
			WillReturnRows(pgxmock.NewRows([]string{"updated_at"}))

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		err = NewPostgresRepository(mock).UpdateStatusTx(ctx, tx, o, model.StatusPending, nil, "")
		assert.ErrorIs(t, err, model.ErrConcurrentUpdate)
	})
}

func TestListStalePending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cutoff := time.Now().Add(-30 * time.Minute)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT id FROM orders").
		WithArgs(model.StatusPending, model.PaymentCompleted, cutoff, 100).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(a).AddRow(b))

	ids, err := NewPostgresRepository(mock).ListStalePending(context.Background(), cutoff, 100)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPaymentStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE orders SET payment_status").
		WithArgs(id, model.PaymentFailed).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewPostgresRepository(mock).SetPaymentStatus(context.Background(), id, model.PaymentFailed)
	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}

func TestList_CountAndPageRunTogether(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.MatchExpectationsInOrder(false)

	userID := uuid.New()
	filter := model.ListOrdersFilter{
		UserID: &userID,
		Status: model.StatusDelivered,
		Page:   query.Page{Page: 1, Limit: 20},
	}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders o WHERE o.user_id = \\$1 AND o.status = \\$2").
		WithArgs(userID, model.StatusDelivered).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("ORDER BY o.created_at DESC, o.id DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs(userID, model.StatusDelivered, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	orders, total, err := NewPostgresRepository(mock).List(context.Background(), filter)

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, orders)
	assert.NotNil(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_UnknownSortRejected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, _, err = NewPostgresRepository(mock).List(context.Background(), model.ListOrdersFilter{SortBy: "payment_intent_id"})
	assert.Error(t, err)
}
