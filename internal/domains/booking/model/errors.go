package model

import "shop-backend/internal/shared/apperror"

const (
	ErrCodeTicketNotFound         = "SVC001"
	ErrCodeSlotUnavailable        = "SVC002"
	ErrCodeCancelWindow           = "SVC003"
	ErrCodeNotCancellable         = "SVC004"
	ErrCodeTransitionForbidden    = "SVC005"
	ErrCodeTerminalState          = "SVC006"
	ErrCodeOutsideBusinessHours   = "SVC007"
	ErrCodeInsufficientNotice     = "SVC008"
	ErrCodeNotAssigned            = "SVC009"
	ErrCodeRescheduleNotAllowed   = "SVC010"
	ErrCodeTechnicianCannotCancel = "SVC011"
)

var (
	ErrTicketNotFound         = apperror.New(apperror.KindNotFound, ErrCodeTicketNotFound, "Service not found")
	ErrSlotUnavailable        = apperror.New(apperror.KindStateConflict, ErrCodeSlotUnavailable, "The requested time slot is no longer available")
	ErrCancelWindow           = apperror.New(apperror.KindStateConflict, ErrCodeCancelWindow, "Services cannot be cancelled within 24 hours of the scheduled time")
	ErrNotCancellable         = apperror.New(apperror.KindStateConflict, ErrCodeNotCancellable, "Only pending or confirmed services can be cancelled")
	ErrTransitionForbidden    = apperror.New(apperror.KindAuthorization, ErrCodeTransitionForbidden, "Status transition not allowed")
	ErrTerminalState          = apperror.New(apperror.KindStateConflict, ErrCodeTerminalState, "Completed or cancelled services cannot be modified")
	ErrOutsideBusinessHours   = apperror.New(apperror.KindStateConflict, ErrCodeOutsideBusinessHours, "Scheduled time is outside business hours")
	ErrInsufficientNotice     = apperror.New(apperror.KindStateConflict, ErrCodeInsufficientNotice, "Services must be booked at least 2 hours in advance")
	ErrNotAssigned            = apperror.New(apperror.KindAuthorization, ErrCodeNotAssigned, "You are not assigned to this service")
	ErrRescheduleNotAllowed   = apperror.New(apperror.KindStateConflict, ErrCodeRescheduleNotAllowed, "Only pending services can be rescheduled")
	ErrTechnicianCannotCancel = apperror.New(apperror.KindAuthorization, ErrCodeTechnicianCannotCancel, "Technicians cannot cancel services")
)
