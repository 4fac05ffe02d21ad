package service

import (
	"context"

	"github.com/google/uuid"

	auditModel "shop-backend/internal/domains/audit/model"
	auditService "shop-backend/internal/domains/audit/service"
	"shop-backend/internal/domains/user/model"
	"shop-backend/internal/domains/user/repository"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/query"
	"shop-backend/internal/shared/utils"
)

type UserService struct {
	repo  repository.Repository
	audit auditService.Recorder
}

func NewUserService(repo repository.Repository, audit auditService.Recorder) ServiceInterface {
	return &UserService{repo: repo, audit: audit}
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) AdminList(ctx context.Context, filter model.ListUsersFilter) (*model.ListUsersResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.ListUsersResponse{
		Users:      users,
		Pagination: query.NewPagination(filter.Page, total),
	}, nil
}

// BulkUpdate changes role and/or active flag for a set of users.
// Only admins may call it, and an admin cannot lock themselves out.
func (s *UserService) BulkUpdate(ctx context.Context, actor shared.Actor, req model.BulkUpdateUsersRequest) (*model.BulkUpdateResponse, error) {
	if actor.Role != shared.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ids, err := utils.ParseUUIDs(req.IDs)
	if err != nil {
		return nil, apperror.ErrValidation.Wrap(err)
	}

	if req.Demotes() || req.Deactivates() {
		for _, id := range ids {
			if id.String() == actor.ID {
				return nil, model.ErrSelfModification
			}
		}
	}

	u := &query.Update{}
	changes := map[string]interface{}{}
	if req.Role != nil {
		u.Set("role", *req.Role)
		changes["role"] = *req.Role
	}
	if req.IsActive != nil {
		u.Set("is_active", *req.IsActive)
		changes["isActive"] = *req.IsActive
	}

	n, err := s.repo.BulkUpdate(ctx, ids, u)
	if err != nil {
		return nil, err
	}

	auditService.RecordAll(ctx, s.audit, actor, auditModel.ActionUserBulkUpdated, auditModel.ResourceUser, req.IDs, changes)
	return &model.BulkUpdateResponse{Updated: n}, nil
}
