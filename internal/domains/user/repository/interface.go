package repository

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/user/model"
	"shop-backend/internal/shared/query"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context, filter model.ListUsersFilter) ([]model.User, int64, error)
	BulkUpdate(ctx context.Context, ids []uuid.UUID, u *query.Update) (int64, error)
}
