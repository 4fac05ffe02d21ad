package model

import "shop-backend/internal/shared/apperror"

const (
	ErrCodeReviewNotFound  = "REV001"
	ErrCodeAlreadyReviewed = "REV002"
	ErrCodeProductNotFound = "REV003"
)

var (
	ErrReviewNotFound  = apperror.New(apperror.KindNotFound, ErrCodeReviewNotFound, "Review not found")
	ErrAlreadyReviewed = apperror.New(apperror.KindStateConflict, ErrCodeAlreadyReviewed, "You have already reviewed this product")
	ErrProductNotFound = apperror.New(apperror.KindNotFound, ErrCodeProductNotFound, "Product not found")
)
