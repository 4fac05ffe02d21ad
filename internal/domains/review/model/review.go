package model

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID                 uuid.UUID `json:"id"`
	ProductID          uuid.UUID `json:"productId"`
	UserID             uuid.UUID `json:"userId"`
	AuthorName         string    `json:"authorName,omitempty"`
	Rating             int       `json:"rating"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	IsVisible          bool      `json:"isVisible"`
	IsVerifiedPurchase bool      `json:"isVerifiedPurchase"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}
