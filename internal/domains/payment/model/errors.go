package model

import "shop-backend/internal/shared/apperror"

const (
	ErrCodePaymentFailed   = "PAY004"
	ErrCodeIntentMismatch  = "PAY005"
	ErrCodeAlreadyRefunded = "PAY006"
)

var (
	ErrPaymentFailed   = apperror.New(apperror.KindUpstream, ErrCodePaymentFailed, "Payment did not complete, please try another payment method")
	ErrIntentMismatch  = apperror.New(apperror.KindStateConflict, ErrCodeIntentMismatch, "Payment intent does not belong to this order")
	ErrAlreadyRefunded = apperror.New(apperror.KindStateConflict, ErrCodeAlreadyRefunded, "Order was cancelled and the payment refunded")
)
