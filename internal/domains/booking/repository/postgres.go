package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/booking/model"
	"shop-backend/internal/shared/query"
	"shop-backend/pkg/database"
)

var ticketSchema = &query.Schema{
	Columns: map[string]string{
		"user_id":     "s.user_id",
		"assigned_to": "s.assigned_to",
		"status":      "s.status",
		"type":        "s.type",
		"priority":    "s.priority",
		"from":        "s.scheduled_date",
		"to":          "s.scheduled_date",
	},
	Search: []string{"s.ticket_number", "s.title", "s.description"},
	Sorts: map[string]string{
		"created_at":     "s.created_at",
		"scheduled_date": "s.scheduled_date",
		"priority":       "s.priority",
		"status":         "s.status",
	},
	DefaultSort: "created_at",
	TieBreaker:  "s.id",
}

const ticketColumns = `
	s.id, s.ticket_number, s.user_id, s.assigned_to, s.type, s.status, s.priority,
	s.title, s.description, s.device_info, s.issue_details, s.resolution,
	s.scheduled_date, s.estimated_hours, s.actual_hours, s.cost,
	s.completed_at, s.cancelled_at, s.created_at, s.updated_at`

type postgresRepository struct {
	pool database.Pool
}

func NewPostgresRepository(pool database.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var t model.Ticket
	err := row.Scan(
		&t.ID, &t.TicketNumber, &t.UserID, &t.AssignedTo, &t.Type, &t.Status, &t.Priority,
		&t.Title, &t.Description, &t.DeviceInfo, &t.IssueDetails, &t.Resolution,
		&t.ScheduledDate, &t.EstimatedHours, &t.ActualHours, &t.Cost,
		&t.CompletedAt, &t.CancelledAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *postgresRepository) LockDayTx(ctx context.Context, tx pgx.Tx, day string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "service_slots:"+day); err != nil {
		return fmt.Errorf("lock booking day: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.Interval, error) {
	return listIntervals(ctx, r.pool, from, to, uuid.Nil)
}

func (r *postgresRepository) ListActiveBetweenTx(ctx context.Context, tx pgx.Tx, from, to time.Time, excludeID uuid.UUID) ([]model.Interval, error) {
	return listIntervals(ctx, tx, from, to, excludeID)
}

func listIntervals(ctx context.Context, q database.Querier, from, to time.Time, excludeID uuid.UUID) ([]model.Interval, error) {
	rows, err := q.Query(ctx, `
		SELECT scheduled_date, type FROM service_tickets
		WHERE status <> $1 AND scheduled_date >= $2 AND scheduled_date < $3 AND id <> $4
		ORDER BY scheduled_date`,
		model.StatusCancelled, from, to, excludeID)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var out []model.Interval
	for rows.Next() {
		var (
			start time.Time
			typ   model.ServiceType
		)
		if err := rows.Scan(&start, &typ); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, model.NewInterval(start, typ))
	}
	return out, rows.Err()
}

func (r *postgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, t *model.Ticket) error {
	const sql = `
		INSERT INTO service_tickets (
			id, ticket_number, user_id, type, status, priority,
			title, description, device_info, issue_details,
			scheduled_date, estimated_hours
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := tx.QueryRow(ctx, sql,
		t.ID, t.TicketNumber, t.UserID, t.Type, t.Status, t.Priority,
		t.Title, t.Description, t.DeviceInfo, t.IssueDetails,
		t.ScheduledDate, t.EstimatedHours,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert service ticket: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	return getTicket(ctx, r.pool, "SELECT "+ticketColumns+" FROM service_tickets s WHERE s.id = $1", id)
}

func (r *postgresRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Ticket, error) {
	return getTicket(ctx, tx, "SELECT "+ticketColumns+" FROM service_tickets s WHERE s.id = $1 FOR UPDATE", id)
}

func getTicket(ctx context.Context, q database.Querier, sql string, id uuid.UUID) (*model.Ticket, error) {
	t, err := scanTicket(q.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get service ticket: %w", err)
	}
	return t, nil
}

func (r *postgresRepository) GetByIDsForUpdateTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Ticket, error) {
	rows, err := tx.Query(ctx,
		"SELECT "+ticketColumns+" FROM service_tickets s WHERE s.id = ANY($1) ORDER BY s.id FOR UPDATE", ids)
	if err != nil {
		return nil, fmt.Errorf("query service tickets: %w", err)
	}
	return collectTickets(rows)
}

func collectTickets(rows pgx.Rows) ([]model.Ticket, error) {
	defer rows.Close()
	tickets := []model.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *postgresRepository) UpdateTx(ctx context.Context, tx pgx.Tx, t *model.Ticket) error {
	const sql = `
		UPDATE service_tickets SET
			assigned_to = $2, status = $3, priority = $4,
			title = $5, description = $6, device_info = $7, issue_details = $8, resolution = $9,
			scheduled_date = $10, actual_hours = $11, cost = $12,
			completed_at = $13, cancelled_at = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := tx.QueryRow(ctx, sql,
		t.ID, t.AssignedTo, t.Status, t.Priority,
		t.Title, t.Description, t.DeviceInfo, t.IssueDetails, t.Resolution,
		t.ScheduledDate, t.ActualHours, t.Cost,
		t.CompletedAt, t.CancelledAt,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrTicketNotFound
	}
	if err != nil {
		return fmt.Errorf("update service ticket: %w", err)
	}
	return nil
}

func (r *postgresRepository) Cancel(ctx context.Context, t *model.Ticket, from []model.Status) error {
	const sql = `
		UPDATE service_tickets SET status = $2, cancelled_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, sql, t.ID, model.StatusCancelled, t.CancelledAt, from).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotCancellable
	}
	if err != nil {
		return fmt.Errorf("cancel service ticket: %w", err)
	}
	return nil
}

func buildPredicates(f model.ListTicketsFilter) []query.Predicate {
	var preds []query.Predicate
	if f.UserID != nil {
		preds = append(preds, query.Eq("user_id", *f.UserID))
	}
	if f.AssignedTo != nil {
		preds = append(preds, query.Eq("assigned_to", *f.AssignedTo))
	}
	if f.Status != "" {
		preds = append(preds, query.Eq("status", f.Status))
	}
	if f.Type != "" {
		preds = append(preds, query.Eq("type", f.Type))
	}
	if f.Priority != "" {
		preds = append(preds, query.Eq("priority", f.Priority))
	}
	if f.From != nil {
		preds = append(preds, query.Gte("from", *f.From))
	}
	if f.To != nil {
		preds = append(preds, query.Lte("to", *f.To))
	}
	return preds
}

func (r *postgresRepository) List(ctx context.Context, f model.ListTicketsFilter) ([]model.Ticket, int64, error) {
	where, err := ticketSchema.Where(f.Search, buildPredicates(f)...)
	if err != nil {
		return nil, 0, err
	}
	orderBy, err := ticketSchema.OrderBy(f.SortBy, f.SortOrder)
	if err != nil {
		return nil, 0, err
	}

	n := len(where.Args)
	countSQL := "SELECT COUNT(*) FROM service_tickets s " + where.Clause
	listSQL := fmt.Sprintf("SELECT %s FROM service_tickets s %s %s LIMIT $%d OFFSET $%d",
		ticketColumns, where.Clause, orderBy, n+1, n+2)
	listArgs := append(append([]interface{}{}, where.Args...), f.Page.Limit, f.Page.Offset())

	return query.FetchPage(ctx,
		func(ctx context.Context) (int64, error) {
			var total int64
			if err := r.pool.QueryRow(ctx, countSQL, where.Args...).Scan(&total); err != nil {
				return 0, fmt.Errorf("count service tickets: %w", err)
			}
			return total, nil
		},
		func(ctx context.Context) ([]model.Ticket, error) {
			rows, err := r.pool.Query(ctx, listSQL, listArgs...)
			if err != nil {
				return nil, fmt.Errorf("query service tickets: %w", err)
			}
			return collectTickets(rows)
		},
	)
}

func (r *postgresRepository) BulkUpdateTx(ctx context.Context, tx pgx.Tx, ids []uuid.UUID, u *query.Update) (int64, error) {
	sql, args := u.ByIDs("service_tickets", ids, true)
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("bulk update service tickets: %w", err)
	}
	return tag.RowsAffected(), nil
}
