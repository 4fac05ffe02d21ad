package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/shared/query"
	"shop-backend/pkg/database"
)

const imageColumns = `id, product_id, url, alt_text, position, is_primary, created_at`

type imageRepository struct {
	pool database.Pool
}

func NewImageRepository(pool database.Pool) ImageRepository {
	return &imageRepository{pool: pool}
}

func scanImage(row pgx.Row) (*model.ProductImage, error) {
	var img model.ProductImage
	if err := row.Scan(&img.ID, &img.ProductID, &img.URL, &img.AltText, &img.Position, &img.IsPrimary, &img.CreatedAt); err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *imageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+imageColumns+` FROM product_images WHERE product_id = $1 ORDER BY position, created_at`, productID)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	images := []model.ProductImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

func (r *imageRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ProductImage, error) {
	img, err := scanImage(r.pool.QueryRow(ctx, `SELECT `+imageColumns+` FROM product_images WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}
	return img, nil
}

// Add appends the image at the end of the gallery. A primary image demotes the others.
func (r *imageRepository) Add(ctx context.Context, img *model.ProductImage) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if img.IsPrimary {
			if _, err := tx.Exec(ctx,
				`UPDATE product_images SET is_primary = FALSE WHERE product_id = $1`, img.ProductID); err != nil {
				return fmt.Errorf("demote primary image: %w", err)
			}
		}

		const sql = `
			INSERT INTO product_images (product_id, url, alt_text, position, is_primary)
			VALUES ($1, $2, $3,
				(SELECT COALESCE(MAX(position) + 1, 0) FROM product_images WHERE product_id = $1),
				$4)
			RETURNING id, position, created_at`

		if err := tx.QueryRow(ctx, sql, img.ProductID, img.URL, img.AltText, img.IsPrimary).
			Scan(&img.ID, &img.Position, &img.CreatedAt); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
		return nil
	})
}

// Reorder assigns positions 0..n-1 following imageIDs, which must be a
// permutation of the product's images.
func (r *imageRepository) Reorder(ctx context.Context, productID uuid.UUID, imageIDs []uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT id FROM product_images WHERE product_id = $1 FOR UPDATE`, productID)
		if err != nil {
			return fmt.Errorf("lock images: %w", err)
		}
		existing, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
		if err != nil {
			return fmt.Errorf("collect images: %w", err)
		}

		if !samePermutation(existing, imageIDs) {
			return model.ErrInvalidImageOrder
		}

		const sql = `
			UPDATE product_images pi
			SET position = o.ord - 1
			FROM unnest($2::uuid[]) WITH ORDINALITY AS o(id, ord)
			WHERE pi.id = o.id AND pi.product_id = $1`

		if _, err := tx.Exec(ctx, sql, productID, imageIDs); err != nil {
			return fmt.Errorf("reorder images: %w", err)
		}
		return nil
	})
}

// SetPrimary makes imageID the only primary image of its product.
func (r *imageRepository) SetPrimary(ctx context.Context, imageID uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		const sql = `
			UPDATE product_images
			SET is_primary = (id = $1)
			WHERE product_id = (SELECT product_id FROM product_images WHERE id = $1)`

		tag, err := tx.Exec(ctx, sql, imageID)
		if err != nil {
			return fmt.Errorf("set primary image: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrImageNotFound
		}
		return nil
	})
}

func (r *imageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM product_images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrImageNotFound
	}
	return nil
}

func (r *imageRepository) BulkUpdate(ctx context.Context, ids []uuid.UUID, upd *query.Update) (int64, error) {
	sql, args := upd.ByIDs("product_images", ids, false)
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update images: %w", err)
	}
	return tag.RowsAffected(), nil
}

func samePermutation(existing, requested []uuid.UUID) bool {
	if len(existing) != len(requested) {
		return false
	}
	seen := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		seen[id] = false
	}
	for _, id := range requested {
		used, ok := seen[id]
		if !ok || used {
			return false
		}
		seen[id] = true
	}
	return true
}
