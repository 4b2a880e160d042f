package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinyngg/account/shared/apperror"
)

// ErrorResponse is the body returned for every domain failure.
type ErrorResponse struct {
	ErrorCode    apperror.Code `json:"errorCode"`
	ErrorMessage string        `json:"errorMessage"`
}

// StatusFor maps an error code to its HTTP status category.
func StatusFor(code apperror.Code) int {
	switch code {
	case apperror.UserNotFound, apperror.AccountNotFound, apperror.TransactionNotFound:
		return http.StatusNotFound
	case apperror.UserAccountUnMatch, apperror.TransactionAccountUnMatch:
		return http.StatusForbidden
	case apperror.AccountAlreadyUnregistered, apperror.AmountExceedBalance, apperror.MaxAccountPerUser,
		apperror.BalanceNotEmpty, apperror.CancelMustFully, apperror.TransactionAlreadyCancelled,
		apperror.TooOldOrderToCancel:
		return http.StatusUnprocessableEntity
	case apperror.InvalidRequest:
		return http.StatusBadRequest
	case apperror.LockUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err as an ErrorResponse. Errors that are not
// domain failures are reported as INTERNAL_SERVER_ERROR without leaking their text.
func RespondWithAppError(c *gin.Context, err error) {
	code := apperror.CodeOf(err)
	message := code.Description()
	var ae *apperror.Error
	if errors.As(err, &ae) && code != apperror.InternalServerError {
		message = ae.Message
	}
	_ = c.Error(err)
	c.JSON(StatusFor(code), ErrorResponse{ErrorCode: code, ErrorMessage: message})
}
