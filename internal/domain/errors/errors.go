package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrBadRequest    = errors.New("bad request")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")

	// not-found
	ErrPaymentTypeNotFound      = wrapKind(ErrNotFound, "payment type not found")
	ErrRecurringPaymentNotFound = wrapKind(ErrNotFound, "no recurring payment found")
	ErrTaskNotFound             = wrapKind(ErrNotFound, "automation task not found")
	ErrBackendNotDeployed       = wrapKind(ErrNotFound, "payment backend not deployed")
	ErrStreamNotFound           = wrapKind(ErrNotFound, "stream not found")

	// already-exists
	ErrPaymentTypeExists      = wrapKind(ErrAlreadyExists, "payment type already registered")
	ErrRecurringPaymentExists = wrapKind(ErrAlreadyExists, "recurring payment already exists")

	// invalid-argument
	ErrZeroAmount          = wrapKind(ErrInvalidInput, "amount must be greater than zero")
	ErrBelowMinimum        = wrapKind(ErrInvalidInput, "recurring amount below minimum")
	ErrInvalidIntervals    = wrapKind(ErrInvalidInput, "execution interval must be lower than expiration interval")
	ErrNotAContract        = wrapKind(ErrInvalidInput, "address is not a contract")
	ErrZeroAddress         = wrapKind(ErrInvalidInput, "address must not be zero")
	ErrInvalidAddress      = wrapKind(ErrInvalidInput, "invalid address")
	ErrInvalidAmount       = wrapKind(ErrInvalidInput, "invalid amount")
	ErrInvalidCreationData = wrapKind(ErrInvalidInput, "invalid creation data")
	ErrUnusedCreationFunds = wrapKind(ErrInvalidInput, "creation amount given for a payment type without initialization")

	// authorization
	ErrNotGovernor        = wrapKind(ErrForbidden, "caller is not the governor")
	ErrNotPendingGovernor = wrapKind(ErrForbidden, "caller is not the pending governor")
	ErrNotCollector       = wrapKind(ErrForbidden, "caller is not the ledger collector")

	// timing
	ErrTiming          = errors.New("timing constraint")
	ErrInCooldown      = wrapKind(ErrTiming, "recurring payment in cooldown")
	ErrGasPriceTooHigh = wrapKind(ErrTiming, "gas price too high")

	// integrity
	ErrIntegrity       = errors.New("integrity violation")
	ErrBalanceMismatch = wrapKind(ErrIntegrity, "scheduler balance changed after backend call")

	// token ledger
	ErrInsufficientBalance   = wrapKind(ErrInvalidInput, "insufficient balance")
	ErrInsufficientAllowance = wrapKind(ErrInvalidInput, "insufficient allowance")
	ErrInsufficientTreasury  = wrapKind(ErrInvalidInput, "insufficient treasury balance")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func wrapKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Machine-readable reason codes
const (
	CodeNotFound        = "NOT_FOUND"
	CodeAlreadyExists   = "ALREADY_EXISTS"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeTiming          = "TIMING"
	CodeIntegrity       = "INTEGRITY"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidArgument, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeAlreadyExists, message, ErrAlreadyExists)
}

func TooEarly(message string) *AppError {
	return NewAppError(http.StatusTooEarly, CodeTiming, message, ErrTiming)
}

func Unprocessable(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeIntegrity, message, ErrIntegrity)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// FromDomain maps a (possibly wrapped) domain error onto its HTTP shape.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, err.Error(), err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeAlreadyExists, err.Error(), err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return NewAppError(http.StatusBadRequest, CodeInvalidArgument, err.Error(), err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, err.Error(), err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, err.Error(), err)
	case errors.Is(err, ErrTiming):
		return NewAppError(http.StatusTooEarly, CodeTiming, err.Error(), err)
	case errors.Is(err, ErrIntegrity):
		return NewAppError(http.StatusUnprocessableEntity, CodeIntegrity, err.Error(), err)
	}
	return InternalError(err)
}
