package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"shop-backend/internal/shared/apperror"
	"shop-backend/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	ErrorWithDetails(c, statusCode, code, message, nil)
}

func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, apperror.ErrValidation.Code, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, apperror.ErrUnauthenticated.Code, message)
}

func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, apperror.ErrForbidden.Code, message)
}

// HandleError maps a service error to the JSON envelope.
// Unknown errors are logged and hidden behind a generic 500.
func HandleError(c *gin.Context, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]interface{}, len(fieldErrs))
		for field, fe := range fieldErrs {
			details[field] = fe.Error()
		}
		ErrorWithDetails(c, http.StatusBadRequest, apperror.ErrValidation.Code, apperror.ErrValidation.Message, details)
		return
	}

	if appErr, ok := apperror.As(err); ok {
		status := appErr.Kind.HTTPStatus()
		if status >= http.StatusInternalServerError {
			logger.ErrorWithFields("request failed", err, map[string]interface{}{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
				"code":       appErr.Code,
			})
		}
		var details interface{}
		if len(appErr.Details) > 0 {
			details = appErr.Details
		}
		ErrorWithDetails(c, status, appErr.Code, appErr.Message, details)
		return
	}

	logger.ErrorWithFields("unhandled error", err, map[string]interface{}{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
	})
	ErrorResponse(c, http.StatusInternalServerError, apperror.ErrInternal.Code, apperror.ErrInternal.Message)
}
