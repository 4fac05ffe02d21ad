package repository

import (
	"context"
	"fmt"

	"shop-backend/internal/domains/audit/model"
	"shop-backend/pkg/database"
)

type Repository interface {
	Insert(ctx context.Context, e *model.Entry) error
}

type postgresRepository struct {
	pool database.Querier
}

func NewPostgresRepository(pool database.Querier) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Insert(ctx context.Context, e *model.Entry) error {
	const sql = `
		INSERT INTO audit_logs (
			actor_id, actor_role, action, resource_type, resource_id,
			old_values, new_values, ip_address, user_agent, created_at
		) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10)
		RETURNING id`

	err := r.pool.QueryRow(ctx, sql,
		e.ActorID, string(e.ActorRole), e.Action, e.ResourceType, e.ResourceID,
		e.OldValues, e.NewValues, e.IPAddress, e.UserAgent, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
