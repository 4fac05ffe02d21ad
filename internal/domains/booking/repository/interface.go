package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/booking/model"
	"shop-backend/internal/shared/query"
)

type Repository interface {
	// LockDayTx serialises bookings for one calendar day until the transaction ends.
	LockDayTx(ctx context.Context, tx pgx.Tx, day string) error
	// ListActiveBetween returns the intervals of non-cancelled tickets scheduled in [from, to).
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.Interval, error)
	// ListActiveBetweenTx is ListActiveBetween inside tx, ignoring excludeID.
	ListActiveBetweenTx(ctx context.Context, tx pgx.Tx, from, to time.Time, excludeID uuid.UUID) ([]model.Interval, error)

	CreateTx(ctx context.Context, tx pgx.Tx, t *model.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error)
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Ticket, error)
	GetByIDsForUpdateTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Ticket, error)
	// UpdateTx writes every mutable column of t.
	UpdateTx(ctx context.Context, tx pgx.Tx, t *model.Ticket) error
	// Cancel moves t to CANCELLED only while its stored status is one of from.
	Cancel(ctx context.Context, t *model.Ticket, from []model.Status) error

	List(ctx context.Context, filter model.ListTicketsFilter) ([]model.Ticket, int64, error)
	BulkUpdateTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID, u *query.Update) (int64, error)
}
