package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domains/user/model"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/query"
)

func TestList_FiltersAndSearch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.MatchExpectationsInOrder(false)

	active := true
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users u WHERE \\(u.email ILIKE \\$1 OR u.full_name ILIKE \\$1 OR u.phone ILIKE \\$1\\) AND u.role = \\$2 AND u.is_active = \\$3").
		WithArgs("%ann%", shared.RoleTechnician, true).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("ORDER BY u.email ASC, u.id ASC LIMIT \\$4 OFFSET \\$5").
		WithArgs("%ann%", shared.RoleTechnician, true, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "full_name", "phone", "role", "is_active", "created_at", "updated_at"}).
			AddRow(id, "ann@example.com", "Ann Tech", nil, shared.RoleTechnician, true, now, now))

	users, total, err := NewPostgresRepository(mock).List(context.Background(), model.ListUsersFilter{
		Role: shared.RoleTechnician, IsActive: &active, Search: "ann",
		SortBy: "email", SortOrder: "asc",
		Page: query.Page{Page: 1, Limit: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "ann@example.com", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM users u WHERE u.id = \\$1").WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err = NewPostgresRepository(mock).GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}
