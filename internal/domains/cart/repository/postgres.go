package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/cart/model"
	"shop-backend/pkg/database"
)

type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error)
	ReplaceTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, lines map[uuid.UUID]int) error
	ClearTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}

type postgresRepository struct {
	pool database.Querier
}

func NewPostgresRepository(pool database.Querier) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Get(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	const sql = `
		SELECT ci.product_id, ci.quantity, p.name, p.slug, p.price, p.stock, p.is_active,
			(SELECT pi.url FROM product_images pi
			  WHERE pi.product_id = p.id
			  ORDER BY pi.is_primary DESC, pi.position ASC LIMIT 1),
			ci.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.updated_at, p.name`

	rows, err := r.pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("query cart: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Name, &it.Slug, &it.Price,
			&it.Stock, &it.IsActive, &it.PrimaryImage, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepository) ReplaceTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, lines map[uuid.UUID]int) error {
	if err := r.ClearTx(ctx, tx, userID); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	qtys := make([]int32, 0, len(lines))
	for id, q := range lines {
		ids = append(ids, id)
		qtys = append(qtys, int32(q))
	}

	const sql = `
		INSERT INTO cart_items (user_id, product_id, quantity)
		SELECT $1, t.product_id, t.quantity
		FROM unnest($2::uuid[], $3::int[]) AS t(product_id, quantity)`

	if _, err := tx.Exec(ctx, sql, userID, ids, qtys); err != nil {
		return fmt.Errorf("insert cart items: %w", err)
	}
	return nil
}

func (r *postgresRepository) ClearTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
