package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/shared/query"
	"shop-backend/pkg/database"
)

var orderSchema = &query.Schema{
	Columns: map[string]string{
		"user_id":        "o.user_id",
		"status":         "o.status",
		"payment_status": "o.payment_status",
		"created_from":   "o.created_at",
		"created_to":     "o.created_at",
	},
	Search: []string{"o.order_number", "o.shipping_address->>'email'", "o.shipping_address->>'fullName'"},
	Sorts: map[string]string{
		"created_at": "o.created_at",
		"total":      "o.total",
		"status":     "o.status",
	},
	DefaultSort: "created_at",
	TieBreaker:  "o.id",
}

const orderColumns = `
	o.id, o.order_number, o.user_id, o.status, o.payment_status, o.payment_intent_id,
	o.subtotal, o.tax, o.shipping_fee, o.total, o.shipping_address,
	o.paid_at, o.cancelled_at, o.delivered_at, o.created_at, o.updated_at`

type postgresRepository struct {
	pool database.Pool
}

func NewPostgresRepository(pool database.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentIntentID,
		&o.Subtotal, &o.Tax, &o.ShippingFee, &o.Total, &o.Shipping,
		&o.PaidAt, &o.CancelledAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	const orderSQL = `
		INSERT INTO orders (
			id, order_number, user_id, status, payment_status,
			subtotal, tax, shipping_fee, total, shipping_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := tx.QueryRow(ctx, orderSQL,
		o.ID, o.OrderNumber, o.UserID, o.Status, o.PaymentStatus,
		o.Subtotal, o.Tax, o.ShippingFee, o.Total, o.Shipping,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const itemSQL = `
		INSERT INTO order_items (order_id, product_id, product_name, product_sku, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(itemSQL, o.ID, it.ProductID, it.ProductName, it.ProductSKU, it.Quantity, it.UnitPrice, it.Subtotal)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		if err := br.QueryRow().Scan(&o.Items[i].ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}

	return insertHistory(ctx, tx, o.ID, nil, o.Status, &o.UserID, "Order placed")
}

func (r *postgresRepository) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_intent_id = $2, payment_status = $3, updated_at = NOW() WHERE id = $1`,
		id, intentID, model.PaymentProcessing)
	if err != nil {
		return fmt.Errorf("set payment intent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getWithItems(ctx, r.pool, "SELECT "+orderColumns+" FROM orders o WHERE o.id = $1", id)
}

func (r *postgresRepository) GetByPaymentIntent(ctx context.Context, intentID string) (*model.Order, error) {
	return r.getWithItems(ctx, r.pool, "SELECT "+orderColumns+" FROM orders o WHERE o.payment_intent_id = $1", intentID)
}

func (r *postgresRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	return r.getWithItems(ctx, tx, "SELECT "+orderColumns+" FROM orders o WHERE o.id = $1 FOR UPDATE", id)
}

func (r *postgresRepository) getWithItems(ctx context.Context, q database.Querier, sql string, arg interface{}) (*model.Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, sql, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_sku, quantity, unit_price, subtotal
		FROM order_items WHERE order_id = $1 ORDER BY product_name, id`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductSKU,
			&it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return o, nil
}

func (r *postgresRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, o *model.Order, from model.Status, changedBy *uuid.UUID, notes string) error {
	const sql = `
		UPDATE orders SET
			status = $3, payment_status = $4,
			paid_at = $5, cancelled_at = $6, delivered_at = $7,
			updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at`

	err := tx.QueryRow(ctx, sql, o.ID, from, o.Status, o.PaymentStatus, o.PaidAt, o.CancelledAt, o.DeliveredAt).
		Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrConcurrentUpdate
	}
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if from == o.Status {
		return nil
	}
	return insertHistory(ctx, tx, o.ID, &from, o.Status, changedBy, notes)
}

func (r *postgresRepository) SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, from *model.Status, to model.Status, changedBy *uuid.UUID, notes string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, from_status, to_status, changed_by, notes)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))`,
		orderID, from, to, changedBy, notes)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func buildPredicates(f model.ListOrdersFilter) []query.Predicate {
	var preds []query.Predicate
	if f.UserID != nil {
		preds = append(preds, query.Eq("user_id", *f.UserID))
	}
	if f.Status != "" {
		preds = append(preds, query.Eq("status", f.Status))
	}
	if f.PaymentStatus != "" {
		preds = append(preds, query.Eq("payment_status", f.PaymentStatus))
	}
	if f.From != nil {
		preds = append(preds, query.Gte("created_from", *f.From))
	}
	if f.To != nil {
		preds = append(preds, query.Lte("created_to", *f.To))
	}
	return preds
}

// List returns order headers without items.
func (r *postgresRepository) List(ctx context.Context, f model.ListOrdersFilter) ([]model.Order, int64, error) {
	where, err := orderSchema.Where(f.Search, buildPredicates(f)...)
	if err != nil {
		return nil, 0, err
	}
	orderBy, err := orderSchema.OrderBy(f.SortBy, f.SortOrder)
	if err != nil {
		return nil, 0, err
	}

	n := len(where.Args)
	countSQL := "SELECT COUNT(*) FROM orders o " + where.Clause
	listSQL := fmt.Sprintf("SELECT %s FROM orders o %s %s LIMIT $%d OFFSET $%d",
		orderColumns, where.Clause, orderBy, n+1, n+2)
	listArgs := append(append([]interface{}{}, where.Args...), f.Page.Limit, f.Page.Offset())

	return query.FetchPage(ctx,
		func(ctx context.Context) (int64, error) {
			var total int64
			if err := r.pool.QueryRow(ctx, countSQL, where.Args...).Scan(&total); err != nil {
				return 0, fmt.Errorf("count orders: %w", err)
			}
			return total, nil
		},
		func(ctx context.Context) ([]model.Order, error) {
			rows, err := r.pool.Query(ctx, listSQL, listArgs...)
			if err != nil {
				return nil, fmt.Errorf("query orders: %w", err)
			}
			defer rows.Close()

			var orders []model.Order
			for rows.Next() {
				o, err := scanOrder(rows)
				if err != nil {
					return nil, fmt.Errorf("scan order: %w", err)
				}
				orders = append(orders, *o)
			}
			return orders, rows.Err()
		},
	)
}

func (r *postgresRepository) History(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, from_status, to_status, changed_by, COALESCE(notes, ''), created_at
		FROM order_status_history WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	history := []model.StatusHistory{}
	for rows.Next() {
		var h model.StatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.FromStatus, &h.ToStatus, &h.ChangedBy, &h.Notes, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// ListStalePending returns unpaid pending orders created before the cutoff, oldest first.
func (r *postgresRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM orders
		WHERE status = $1 AND payment_status <> $2 AND created_at < $3
		ORDER BY created_at
		LIMIT $4`,
		model.StatusPending, model.PaymentCompleted, createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("query stale orders: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("collect stale orders: %w", err)
	}
	return ids, nil
}
