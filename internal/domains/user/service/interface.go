package service

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/user/model"
	"shop-backend/internal/shared"
)

type ServiceInterface interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)

	AdminList(ctx context.Context, filter model.ListUsersFilter) (*model.ListUsersResponse, error)
	BulkUpdate(ctx context.Context, actor shared.Actor, req model.BulkUpdateUsersRequest) (*model.BulkUpdateResponse, error)
}
