// Package apperror defines the typed failures surfaced by the account and
// transaction services. Each failure carries a stable Code that the HTTP layer
// maps to a status category.
package apperror

import (
	"errors"
	"fmt"
)

type Code string

const (
	UserNotFound                Code = "USER_NOT_FOUND"
	AccountNotFound             Code = "ACCOUNT_NOT_FOUND"
	UserAccountUnMatch          Code = "USER_ACCOUNT_UN_MATCH"
	AccountAlreadyUnregistered  Code = "ACCOUNT_ALREADY_UNREGISTERED"
	AmountExceedBalance         Code = "AMOUNT_EXCEED_BALANCE"
	MaxAccountPerUser           Code = "MAX_ACCOUNT_PER_USER_10"
	BalanceNotEmpty             Code = "BALANCE_NOT_EMPTY"
	TransactionNotFound         Code = "TRANSACTION_NOT_FOUND"
	TransactionAccountUnMatch   Code = "TRANSACTION_ACCOUNT_UN_MATCH"
	CancelMustFully             Code = "CANCEL_MUST_FULLY"
	TransactionAlreadyCancelled Code = "TRANSACTION_ALREADY_CANCELLED"
	TooOldOrderToCancel         Code = "TOO_OLD_ORDER_TO_CANCEL"
	LockUnavailable             Code = "LOCK_UNAVAILABLE"
	InvalidRequest              Code = "INVALID_REQUEST"
	InternalServerError         Code = "INTERNAL_SERVER_ERROR"
)

var descriptions = map[Code]string{
	UserNotFound:                "User not found",
	AccountNotFound:             "Account not found",
	UserAccountUnMatch:          "Account does not belong to the user",
	AccountAlreadyUnregistered:  "Account is already unregistered",
	AmountExceedBalance:         "Amount exceeds account balance",
	MaxAccountPerUser:           "A user may own at most 10 accounts",
	BalanceNotEmpty:             "Account balance must be zero to unregister",
	TransactionNotFound:         "Transaction not found",
	TransactionAccountUnMatch:   "Transaction does not belong to the account",
	CancelMustFully:             "Partial cancellation is not allowed",
	TransactionAlreadyCancelled: "Transaction is already cancelled",
	TooOldOrderToCancel:         "Transaction is too old to cancel",
	LockUnavailable:             "Account is being used by another request",
	InvalidRequest:              "Invalid request",
	InternalServerError:         "Internal server error",
}

// Description returns the human-readable text for the code.
func (c Code) Description() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return string(c)
}

// Error is a domain failure tagged with a Code. Err, when set, is the
// underlying cause and is exposed through Unwrap.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func New(code Code) *Error {
	return &Error{Code: code, Message: code.Description()}
}

// Newf builds an Error with a custom message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags err with code, keeping it reachable via errors.Is / errors.As.
func Wrap(code Code, err error) *Error {
	return &Error{Code: code, Message: code.Description(), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same code, so sentinel-style checks like
// errors.Is(err, apperror.New(apperror.UserNotFound)) work.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the Code carried by err, or InternalServerError when err is
// not a domain failure.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalServerError
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
