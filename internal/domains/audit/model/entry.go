package model

import (
	"time"

	"github.com/google/uuid"

	"shop-backend/internal/shared"
)

// Entry is one persisted state change.
type Entry struct {
	ID           uuid.UUID              `json:"id"`
	ActorID      *uuid.UUID             `json:"actorId,omitempty"`
	ActorRole    shared.Role            `json:"actorRole,omitempty"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resourceType"`
	ResourceID   string                 `json:"resourceId"`
	OldValues    map[string]interface{} `json:"oldValues,omitempty"`
	NewValues    map[string]interface{} `json:"newValues,omitempty"`
	IPAddress    string                 `json:"ipAddress,omitempty"`
	UserAgent    string                 `json:"userAgent,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// NewEntry stamps an entry with the acting principal.
func NewEntry(actor shared.Actor, action, resourceType, resourceID string, oldValues, newValues map[string]interface{}) Entry {
	e := Entry{
		ActorRole:    actor.Role,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		CreatedAt:    time.Now().UTC(),
	}
	if id, err := uuid.Parse(actor.ID); err == nil {
		e.ActorID = &id
	}
	return e
}

// Audit actions
const (
	ActionProductCreated     = "product.created"
	ActionProductUpdated     = "product.updated"
	ActionProductBulkUpdated = "product.bulk_updated"
	ActionImageBulkUpdated   = "product_image.bulk_updated"
	ActionOrderStatusChanged = "order.status_changed"
	ActionServiceCreated     = "service.created"
	ActionServiceUpdated     = "service.updated"
	ActionServiceCancelled   = "service.cancelled"
	ActionServiceBulkUpdated = "service.bulk_updated"
	ActionReviewBulkUpdated  = "review.bulk_updated"
	ActionUserBulkUpdated    = "user.bulk_updated"
)

// Resource types
const (
	ResourceProduct      = "product"
	ResourceProductImage = "product_image"
	ResourceOrder        = "order"
	ResourceService      = "service_ticket"
	ResourceReview       = "review"
	ResourceUser         = "user"
)
