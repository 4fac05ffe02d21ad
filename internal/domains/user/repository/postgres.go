package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/user/model"
	"shop-backend/internal/shared/query"
	"shop-backend/pkg/database"
)

var userSchema = &query.Schema{
	Columns: map[string]string{
		"role":      "u.role",
		"is_active": "u.is_active",
	},
	Search: []string{"u.email", "u.full_name", "u.phone"},
	Sorts: map[string]string{
		"created_at": "u.created_at",
		"email":      "u.email",
		"full_name":  "u.full_name",
	},
	DefaultSort: "created_at",
	TieBreaker:  "u.id",
}

const userColumns = `u.id, u.email, u.full_name, u.phone, u.role, u.is_active, u.created_at, u.updated_at`

type postgresRepository struct {
	pool database.Pool
}

func NewPostgresRepository(pool database.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users u WHERE u.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *postgresRepository) List(ctx context.Context, f model.ListUsersFilter) ([]model.User, int64, error) {
	var preds []query.Predicate
	if f.Role != "" {
		preds = append(preds, query.Eq("role", f.Role))
	}
	if f.IsActive != nil {
		preds = append(preds, query.Eq("is_active", *f.IsActive))
	}
	where, err := userSchema.Where(f.Search, preds...)
	if err != nil {
		return nil, 0, err
	}
	orderBy, err := userSchema.OrderBy(f.SortBy, f.SortOrder)
	if err != nil {
		return nil, 0, err
	}

	n := len(where.Args)
	countSQL := "SELECT COUNT(*) FROM users u " + where.Clause
	listSQL := fmt.Sprintf("SELECT %s FROM users u %s %s LIMIT $%d OFFSET $%d",
		userColumns, where.Clause, orderBy, n+1, n+2)
	listArgs := append(append([]interface{}{}, where.Args...), f.Page.Limit, f.Page.Offset())

	return query.FetchPage(ctx,
		func(ctx context.Context) (int64, error) {
			var total int64
			if err := r.pool.QueryRow(ctx, countSQL, where.Args...).Scan(&total); err != nil {
				return 0, fmt.Errorf("count users: %w", err)
			}
			return total, nil
		},
		func(ctx context.Context) ([]model.User, error) {
			rows, err := r.pool.Query(ctx, listSQL, listArgs...)
			if err != nil {
				return nil, fmt.Errorf("query users: %w", err)
			}
			users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.User, error) {
				return scanUser(row)
			})
			if err != nil {
				return nil, fmt.Errorf("scan users: %w", err)
			}
			return users, nil
		},
	)
}

func (r *postgresRepository) BulkUpdate(ctx context.Context, ids []uuid.UUID, u *query.Update) (int64, error) {
	sql, args := u.ByIDs("users", ids, true)
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update users: %w", err)
	}
	return tag.RowsAffected(), nil
}
