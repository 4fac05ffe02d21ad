package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	orderModel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/review/model"
	"shop-backend/internal/shared/query"
	"shop-backend/pkg/database"
)

const uniqueViolation = "23505"

var reviewSchema = &query.Schema{
	Columns: map[string]string{
		"product_id":  "r.product_id",
		"user_id":     "r.user_id",
		"is_visible":  "r.is_visible",
		"is_verified": "r.is_verified_purchase",
		"rating":      "r.rating",
	},
	Search: []string{"r.title", "r.content", "u.full_name"},
	Sorts: map[string]string{
		"created_at": "r.created_at",
		"rating":     "r.rating",
	},
	DefaultSort: "created_at",
	TieBreaker:  "r.id",
}

// purchaseStatuses are the order states that count as a purchase.
var purchaseStatuses = []orderModel.Status{orderModel.StatusConfirmed, orderModel.StatusDelivered}

const reviewColumns = `
	r.id, r.product_id, r.user_id, COALESCE(u.full_name, ''), r.rating, r.title, r.content,
	r.is_visible, r.is_verified_purchase, r.created_at, r.updated_at`

type postgresRepository struct {
	pool database.Pool
}

func NewPostgresRepository(pool database.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, rv *model.Review) error {
	const sql = `
		INSERT INTO reviews (id, product_id, user_id, rating, title, content, is_visible, is_verified_purchase)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, sql,
		rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Title, rv.Content, rv.IsVisible, rv.IsVerifiedPurchase,
	).Scan(&rv.CreatedAt, &rv.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.ErrAlreadyReviewed
	}
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *postgresRepository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1 AND is_active)`, productID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check product: %w", err)
	}
	return ok, nil
}

func (r *postgresRepository) HasVerifiedPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders o
			JOIN order_items oi ON oi.order_id = o.id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = ANY($3)
		)`, userID, productID, purchaseStatuses).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return ok, nil
}

func buildPredicates(f model.ListReviewsFilter) []query.Predicate {
	var preds []query.Predicate
	if f.ProductID != nil {
		preds = append(preds, query.Eq("product_id", *f.ProductID))
	}
	if f.UserID != nil {
		preds = append(preds, query.Eq("user_id", *f.UserID))
	}
	if f.IsVisible != nil {
		preds = append(preds, query.Eq("is_visible", *f.IsVisible))
	}
	if f.IsVerified != nil {
		preds = append(preds, query.Eq("is_verified", *f.IsVerified))
	}
	if f.Rating != nil {
		preds = append(preds, query.Eq("rating", *f.Rating))
	}
	return preds
}

func (r *postgresRepository) List(ctx context.Context, f model.ListReviewsFilter) ([]model.Review, int64, error) {
	where, err := reviewSchema.Where(f.Search, buildPredicates(f)...)
	if err != nil {
		return nil, 0, err
	}
	orderBy, err := reviewSchema.OrderBy(f.SortBy, f.SortOrder)
	if err != nil {
		return nil, 0, err
	}

	const from = "FROM reviews r LEFT JOIN users u ON u.id = r.user_id"
	n := len(where.Args)
	countSQL := fmt.Sprintf("SELECT COUNT(*) %s %s", from, where.Clause)
	listSQL := fmt.Sprintf("SELECT %s %s %s %s LIMIT $%d OFFSET $%d",
		reviewColumns, from, where.Clause, orderBy, n+1, n+2)
	listArgs := append(append([]interface{}{}, where.Args...), f.Page.Limit, f.Page.Offset())

	return query.FetchPage(ctx,
		func(ctx context.Context) (int64, error) {
			var total int64
			if err := r.pool.QueryRow(ctx, countSQL, where.Args...).Scan(&total); err != nil {
				return 0, fmt.Errorf("count reviews: %w", err)
			}
			return total, nil
		},
		func(ctx context.Context) ([]model.Review, error) {
			rows, err := r.pool.Query(ctx, listSQL, listArgs...)
			if err != nil {
				return nil, fmt.Errorf("query reviews: %w", err)
			}
			reviews, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Review, error) {
				var rv model.Review
				err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.AuthorName, &rv.Rating, &rv.Title, &rv.Content,
					&rv.IsVisible, &rv.IsVerifiedPurchase, &rv.CreatedAt, &rv.UpdatedAt)
				return rv, err
			})
			if err != nil {
				return nil, fmt.Errorf("scan reviews: %w", err)
			}
			return reviews, nil
		},
	)
}

func (r *postgresRepository) SetVisibility(ctx context.Context, ids []uuid.UUID, visible bool) (int64, error) {
	var u query.Update
	u.Set("is_visible", visible)
	sql, args := u.ByIDs("reviews", ids, true)

	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("update review visibility: %w", err)
	}
	return tag.RowsAffected(), nil
}
