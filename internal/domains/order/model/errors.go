package model

import "shop-backend/internal/shared/apperror"

const (
	ErrCodeOrderNotFound      = "ORD001"
	ErrCodeInvalidTransition  = "ORD002"
	ErrCodeNotCancellable     = "ORD003"
	ErrCodeTotalMismatch      = "ORD004"
	ErrCodeNotPayable         = "ORD005"
	ErrCodeConcurrentUpdate   = "ORD006"
	ErrCodeProductUnavailable = "ORD007"
)

var (
	ErrOrderNotFound      = apperror.New(apperror.KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrInvalidTransition  = apperror.New(apperror.KindStateConflict, ErrCodeInvalidTransition, "Order status transition not allowed")
	ErrNotCancellable     = apperror.New(apperror.KindStateConflict, ErrCodeNotCancellable, "Only pending orders can be cancelled")
	ErrTotalMismatch      = apperror.New(apperror.KindStateConflict, ErrCodeTotalMismatch, "Order total does not match the payment amount")
	ErrNotPayable         = apperror.New(apperror.KindStateConflict, ErrCodeNotPayable, "Order is not awaiting payment")
	ErrConcurrentUpdate   = apperror.New(apperror.KindStateConflict, ErrCodeConcurrentUpdate, "Order was modified by another request")
	ErrProductUnavailable = apperror.New(apperror.KindStateConflict, ErrCodeProductUnavailable, "One or more products are unavailable or out of stock")
)
