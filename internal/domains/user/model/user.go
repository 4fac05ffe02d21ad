package model

import (
	"time"

	"github.com/google/uuid"

	"shop-backend/internal/shared"
)

type User struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	FullName  string      `json:"fullName"`
	Phone     *string     `json:"phone,omitempty"`
	Role      shared.Role `json:"role"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
