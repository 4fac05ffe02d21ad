package service

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/booking/model"
	"shop-backend/internal/shared"
)

type ServiceInterface interface {
	AvailableSlots(ctx context.Context, date, serviceType string) (*model.AvailableSlotsResponse, error)

	// Customer and staff
	Create(ctx context.Context, actor shared.Actor, req model.CreateTicketRequest) (*model.Ticket, error)
	Get(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.Ticket, error)
	ListMine(ctx context.Context, actor shared.Actor, filter model.ListTicketsFilter) (*model.ListTicketsResponse, error)
	Update(ctx context.Context, actor shared.Actor, id uuid.UUID, patch model.Patch) (*model.Ticket, error)
	Cancel(ctx context.Context, actor shared.Actor, id uuid.UUID) (*model.Ticket, error)

	// Admin
	AdminList(ctx context.Context, filter model.ListTicketsFilter) (*model.ListTicketsResponse, error)
	BulkUpdate(ctx context.Context, actor shared.Actor, req model.BulkUpdateTicketsRequest) (*model.BulkUpdateResponse, error)
}
