package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"shop-backend/internal/shared/query"
)

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (r *CreateReviewRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
}

func (r CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&r.Title, validation.Length(0, 255)),
		validation.Field(&r.Content, validation.Length(0, 5000)),
	)
}

type ListReviewsFilter struct {
	ProductID  *uuid.UUID `json:"productId"`
	UserID     *uuid.UUID `json:"userId"`
	IsVisible  *bool      `json:"isVisible"`
	IsVerified *bool      `json:"isVerified"`
	Rating     *int       `json:"rating"`
	Search     string     `json:"search"`
	SortBy     string     `json:"sortBy"`
	SortOrder  string     `json:"sortOrder"`
	Page       query.Page `json:"-"`
}

func (f ListReviewsFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Rating, validation.Min(1), validation.Max(5)),
	)
}

type ListReviewsResponse struct {
	Reviews    []Review         `json:"reviews"`
	Pagination query.Pagination `json:"pagination"`
}

// BulkVisibilityRequest hides or shows many reviews at once.
type BulkVisibilityRequest struct {
	IDs       []string `json:"ids"`
	IsVisible *bool    `json:"isVisible"`
}

func (r BulkVisibilityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required, validation.Length(1, 100), validation.Each(is.UUID)),
		validation.Field(&r.IsVisible, validation.NotNil),
	)
}

type BulkUpdateResponse struct {
	Updated int64 `json:"updated"`
}
