package service

import (
	"context"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auditModel "shop-backend/internal/domains/audit/model"
	"shop-backend/internal/domains/user/model"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/query"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, f model.ListUsersFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	u, _ := args.Get(0).([]model.User)
	return u, args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) BulkUpdate(ctx context.Context, ids []uuid.UUID, u *query.Update) (int64, error) {
	args := m.Called(ctx, ids, u)
	return args.Get(0).(int64), args.Error(1)
}

type recorderStub struct {
	entries []auditModel.Entry
}

func (r *recorderStub) Record(_ context.Context, e auditModel.Entry) {
	r.entries = append(r.entries, e)
}

func boolPtr(b bool) *bool { return &b }

func rolePtr(r shared.Role) *shared.Role { return &r }

func TestBulkUpdate(t *testing.T) {
	ctx := context.Background()
	self := uuid.New()
	other := uuid.New()
	admin := shared.Actor{ID: self.String(), Role: shared.RoleAdmin}

	tests := []struct {
		name    string
		actor   shared.Actor
		req     model.BulkUpdateUsersRequest
		wantErr error
		columns []string
	}{
		{
			name:    "deactivate others",
			actor:   admin,
			req:     model.BulkUpdateUsersRequest{IDs: []string{other.String()}, IsActive: boolPtr(false)},
			columns: []string{"is_active"},
		},
		{
			name:    "promote self and other",
			actor:   admin,
			req:     model.BulkUpdateUsersRequest{IDs: []string{self.String(), other.String()}, Role: rolePtr("admin")},
			columns: []string{"role"},
		},
		{
			name:    "demote self",
			actor:   admin,
			req:     model.BulkUpdateUsersRequest{IDs: []string{other.String(), self.String()}, Role: rolePtr(shared.RoleManager)},
			wantErr: model.ErrSelfModification,
		},
		{
			name:    "deactivate self",
			actor:   admin,
			req:     model.BulkUpdateUsersRequest{IDs: []string{self.String()}, IsActive: boolPtr(false)},
			wantErr: model.ErrSelfModification,
		},
		{
			name:    "manager cannot manage users",
			actor:   shared.Actor{ID: uuid.NewString(), Role: shared.RoleManager},
			req:     model.BulkUpdateUsersRequest{IDs: []string{other.String()}, IsActive: boolPtr(true)},
			wantErr: apperror.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			rec := &recorderStub{}
			repo.On("BulkUpdate", ctx, mock.Anything, mock.Anything).Return(int64(len(tt.req.IDs)), nil)

			resp, err := NewUserService(repo, rec).BulkUpdate(ctx, tt.actor, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "BulkUpdate", mock.Anything, mock.Anything, mock.Anything)
				assert.Empty(t, rec.entries)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.req.IDs)), resp.Updated)

			u := repo.Calls[0].Arguments.Get(2).(*query.Update)
			assert.Equal(t, tt.columns, u.Columns())
			require.Len(t, rec.entries, len(tt.req.IDs))
			assert.Equal(t, auditModel.ActionUserBulkUpdated, rec.entries[0].Action)
		})
	}
}

func TestBulkUpdate_Validation(t *testing.T) {
	admin := shared.Actor{ID: uuid.NewString(), Role: shared.RoleAdmin}

	tests := []struct {
		name string
		req  model.BulkUpdateUsersRequest
	}{
		{"no ids", model.BulkUpdateUsersRequest{IsActive: boolPtr(true)}},
		{"no fields", model.BulkUpdateUsersRequest{IDs: []string{uuid.NewString()}}},
		{"bad role", model.BulkUpdateUsersRequest{IDs: []string{uuid.NewString()}, Role: rolePtr("OWNER")}},
		{"bad id", model.BulkUpdateUsersRequest{IDs: []string{"42"}, IsActive: boolPtr(true)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUserService(&mockRepo{}, &recorderStub{}).BulkUpdate(context.Background(), admin, tt.req)
			assert.IsType(t, validation.Errors{}, err)
		})
	}
}

func TestAdminList(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	filter := model.ListUsersFilter{Role: shared.RoleTechnician, Page: query.Page{Page: 2, Limit: 10}}
	repo.On("List", ctx, filter).Return([]model.User{{ID: uuid.New()}}, int64(11), nil)

	resp, err := NewUserService(repo, &recorderStub{}).AdminList(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, resp.Users, 1)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.False(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)

	_, err = NewUserService(repo, &recorderStub{}).AdminList(ctx, model.ListUsersFilter{Role: "OWNER"})
	assert.IsType(t, validation.Errors{}, err)
}
