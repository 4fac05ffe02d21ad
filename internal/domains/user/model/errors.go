package model

import "shop-backend/internal/shared/apperror"

const (
	ErrCodeUserNotFound     = "USR001"
	ErrCodeSelfModification = "USR002"
)

var (
	ErrUserNotFound     = apperror.New(apperror.KindNotFound, ErrCodeUserNotFound, "User not found")
	ErrSelfModification = apperror.New(apperror.KindStateConflict, ErrCodeSelfModification, "You cannot demote or deactivate your own account")
)
