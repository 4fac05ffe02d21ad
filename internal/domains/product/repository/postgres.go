package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/shared/query"
	"shop-backend/pkg/database"
)

const uniqueViolation = "23505"

var productSchema = &query.Schema{
	Columns: map[string]string{
		"category_id":   "p.category_id",
		"category_slug": "c.slug",
		"brand":         "LOWER(p.brand)",
		"price":         "p.price",
		"featured":      "p.is_featured",
		"active":        "p.is_active",
		"stock":         "p.stock",
	},
	Search: []string{"p.name", "p.description", "p.brand", "p.sku"},
	Sorts: map[string]string{
		"created_at": "p.created_at",
		"price":      "p.price",
		"name":       "p.name",
		"stock":      "p.stock",
	},
	DefaultSort: "created_at",
	TieBreaker:  "p.id",
}

const productColumns = `
	p.id, p.name, p.slug, p.sku, p.brand, p.description, p.short_description,
	p.price, p.compare_at_price, p.cost_price, p.stock, p.category_id,
	c.name, c.slug, p.is_active, p.is_featured,
	(SELECT pi.url FROM product_images pi
	  WHERE pi.product_id = p.id
	  ORDER BY pi.is_primary DESC, pi.position ASC LIMIT 1),
	p.created_at, p.updated_at`

const productFrom = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

type postgresRepository struct {
	pool database.Pool
}

func NewPostgresRepository(pool database.Pool) ProductRepository {
	return &postgresRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Brand, &p.Description, &p.ShortDescription,
		&p.Price, &p.CompareAtPrice, &p.CostPrice, &p.Stock, &p.CategoryID,
		&p.CategoryName, &p.CategorySlug, &p.IsActive, &p.IsFeatured,
		&p.PrimaryImage,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// buildPredicates translates a product filter into allow-listed predicates.
func buildPredicates(f model.ProductFilter) []query.Predicate {
	var preds []query.Predicate

	if f.ActiveOnly {
		preds = append(preds, query.Eq("active", true))
	} else if f.IsActive != nil {
		preds = append(preds, query.Eq("active", *f.IsActive))
	}
	if f.Category != "" {
		if id, err := uuid.Parse(f.Category); err == nil {
			preds = append(preds, query.Eq("category_id", id))
		} else {
			preds = append(preds, query.Eq("category_slug", f.Category))
		}
	}
	if f.Brand != "" {
		preds = append(preds, query.Eq("brand", strings.ToLower(f.Brand)))
	}
	if f.MinPrice != nil {
		preds = append(preds, query.Gte("price", *f.MinPrice))
	}
	if f.MaxPrice != nil {
		preds = append(preds, query.Lte("price", *f.MaxPrice))
	}
	if f.Featured != nil {
		preds = append(preds, query.Eq("featured", *f.Featured))
	}
	if f.LowStock != nil {
		preds = append(preds, query.Lte("stock", *f.LowStock))
	}
	return preds
}

func (r *postgresRepository) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	where, err := productSchema.Where(f.Search, buildPredicates(f)...)
	if err != nil {
		return nil, 0, err
	}
	orderBy, err := productSchema.OrderBy(f.SortBy, f.SortOrder)
	if err != nil {
		return nil, 0, err
	}

	countSQL := "SELECT COUNT(*)" + productFrom + " " + where.Clause
	n := len(where.Args)
	listSQL := fmt.Sprintf("SELECT %s %s %s %s LIMIT $%d OFFSET $%d",
		productColumns, productFrom, where.Clause, orderBy, n+1, n+2)
	listArgs := append(append([]interface{}{}, where.Args...), f.Page.Limit, f.Page.Offset())

	return query.FetchPage(ctx,
		func(ctx context.Context) (int64, error) {
			var total int64
			if err := r.pool.QueryRow(ctx, countSQL, where.Args...).Scan(&total); err != nil {
				return 0, fmt.Errorf("count products: %w", err)
			}
			return total, nil
		},
		func(ctx context.Context) ([]model.Product, error) {
			return r.queryProducts(ctx, listSQL, listArgs...)
		},
	)
}

func (r *postgresRepository) queryProducts(ctx context.Context, sql string, args ...interface{}) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *postgresRepository) getOne(ctx context.Context, cond string, arg interface{}) (*model.Product, error) {
	sql := "SELECT " + productColumns + productFrom + " WHERE " + cond
	p, err := scanProduct(r.pool.QueryRow(ctx, sql, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.getOne(ctx, "p.slug = $1", slug)
}

func (r *postgresRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sql := "SELECT " + productColumns + productFrom + " WHERE p.id = ANY($1)"
	return r.queryProducts(ctx, sql, ids)
}

func (r *postgresRepository) Create(ctx context.Context, p *model.Product) error {
	const sql = `
		INSERT INTO products (
			name, slug, sku, brand, description, short_description,
			price, compare_at_price, cost_price, stock, category_id, is_active, is_featured
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, sql,
		p.Name, p.Slug, p.SKU, p.Brand, p.Description, p.ShortDescription,
		p.Price, p.CompareAtPrice, p.CostPrice, p.Stock, p.CategoryID, p.IsActive, p.IsFeatured,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return model.ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, p *model.Product) error {
	const sql = `
		UPDATE products SET
			name = $2, slug = $3, sku = $4, brand = $5, description = $6, short_description = $7,
			price = $8, compare_at_price = $9, cost_price = $10, stock = $11, category_id = $12,
			is_active = $13, is_featured = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, sql,
		p.ID, p.Name, p.Slug, p.SKU, p.Brand, p.Description, p.ShortDescription,
		p.Price, p.CompareAtPrice, p.CostPrice, p.Stock, p.CategoryID,
		p.IsActive, p.IsFeatured,
	).Scan(&p.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return model.ErrProductNotFound
	case isUniqueViolation(err):
		return model.ErrSlugTaken
	case err != nil:
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *postgresRepository) BulkUpdate(ctx context.Context, ids []uuid.UUID, upd *query.Update) (int64, error) {
	sql, args := upd.ByIDs("products", ids, true)
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update products: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DecrementStockTx subtracts every line or fails on the first product that
// is inactive or short. Lines are applied in id order to keep lock order stable.
func (r *postgresRepository) DecrementStockTx(ctx context.Context, tx pgx.Tx, lines []model.StockLine) error {
	const sql = `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND is_active AND stock >= $2`

	for _, line := range sortedLines(lines) {
		tag, err := tx.Exec(ctx, sql, line.ProductID, line.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock %s: %w", line.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrInsufficientStock.WithDetails(map[string]interface{}{
				"productId": line.ProductID.String(),
				"requested": line.Quantity,
			})
		}
	}
	return nil
}

func (r *postgresRepository) RestockTx(ctx context.Context, tx pgx.Tx, lines []model.StockLine) error {
	const sql = `UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`

	for _, line := range sortedLines(lines) {
		if _, err := tx.Exec(ctx, sql, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("restock %s: %w", line.ProductID, err)
		}
	}
	return nil
}

func (r *postgresRepository) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	sql := `SELECT id, name, slug, description, parent_id, is_active, sort_order FROM categories`
	if activeOnly {
		sql += ` WHERE is_active`
	}
	sql += ` ORDER BY sort_order, name`

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.IsActive, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *postgresRepository) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category: %w", err)
	}
	return exists, nil
}

func sortedLines(lines []model.StockLine) []model.StockLine {
	out := append([]model.StockLine(nil), lines...)
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].ProductID.String(), out[j].ProductID.String()) < 0
	})
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
