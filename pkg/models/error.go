package models

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	DetailsKeyHint       = "Hint"
	DetailsKeyJobID      = "JobID"
	DetailsKeyResourceID = "ResourceID"
	DetailsKeyState      = "State"
)

const (
	BadRequestError        ErrorCode = "BadRequest"
	InternalError          ErrorCode = "InternalError"
	NotFoundError          ErrorCode = "NotFound"
	AlreadyExistsError     ErrorCode = "AlreadyExists"
	IllegalResourceRequest ErrorCode = "IllegalResourceRequest"
	InvalidStateError      ErrorCode = "InvalidState"
	DatastoreFailure       ErrorCode = "DatastoreFailure"
)

type HasHint interface {
	// Hint A human-readable string that advises the user on how they might solve the error.
	Hint() string
}

type HasDetails interface {
	// Details An extra set of metadata provided by the error.
	Details() map[string]string
}

type HasCode interface {
	Code() ErrorCode
}

// HasHTTPStatusCode is implemented by errors that know which HTTP status
// they should be rendered with.
type HasHTTPStatusCode interface {
	HTTPStatusCode() int
}

// BaseError is an error carrying a code, an optional hint and details, and
// the component that raised it. Package specific errors embed or build one.
type BaseError struct {
	message        string
	hint           string
	component      string
	httpStatusCode int
	details        map[string]string
	code           ErrorCode
	cause          error
}

// IsBaseError is a helper function that checks if an error is a BaseError.
func IsBaseError(err error) bool {
	var baseError *BaseError
	return errors.As(err, &baseError)
}

// NewBaseError creates a new BaseError with only the message field set.
func NewBaseError(format string, a ...any) *BaseError {
	return &BaseError{
		component: "techwm",
		message:   fmt.Sprintf(format, a...),
	}
}

// WithHint sets the hint field and returns the BaseError for chaining.
func (e *BaseError) WithHint(hint string) *BaseError {
	e.hint = hint
	return e
}

// WithDetails sets the details field and returns the BaseError for chaining.
func (e *BaseError) WithDetails(details map[string]string) *BaseError {
	e.details = details
	return e
}

// WithCode sets the code field and returns the BaseError for chaining.
func (e *BaseError) WithCode(code ErrorCode) *BaseError {
	e.code = code
	return e
}

// WithHTTPStatusCode overrides the status inferred from the error code.
func (e *BaseError) WithHTTPStatusCode(statusCode int) *BaseError {
	e.httpStatusCode = statusCode
	return e
}

// WithComponent records which component raised the error.
func (e *BaseError) WithComponent(component string) *BaseError {
	e.component = component
	return e
}

// WithCause attaches the underlying error, exposed through Unwrap.
func (e *BaseError) WithCause(cause error) *BaseError {
	e.cause = cause
	return e
}

func (e *BaseError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *BaseError) Unwrap() error {
	return e.cause
}

func (e *BaseError) Hint() string {
	return e.hint
}

func (e *BaseError) Details() map[string]string {
	return e.details
}

// Code returns a unique code to identify the error
func (e *BaseError) Code() ErrorCode {
	return e.code
}

func (e *BaseError) Component() string {
	return e.component
}

// HTTPStatusCode returns the explicit status if one was set, otherwise the
// status inferred from the error code.
func (e *BaseError) HTTPStatusCode() int {
	if e.httpStatusCode != 0 {
		return e.httpStatusCode
	}
	return inferHTTPStatusCode(e.code)
}

func inferHTTPStatusCode(code ErrorCode) int {
	switch code {
	case BadRequestError, IllegalResourceRequest:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AlreadyExistsError, InvalidStateError:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsErrorWithCode walks the error chain looking for an error that carries code.
func IsErrorWithCode(err error, code ErrorCode) bool {
	return ErrorCodeOf(err) == code
}

// ErrorCodeOf returns the code of the first coded error in the chain, or
// InternalError when there is none.
func ErrorCodeOf(err error) ErrorCode {
	var coded HasCode
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return InternalError
}

// HTTPStatusCodeOf returns the HTTP status an error should be rendered with.
func HTTPStatusCodeOf(err error) int {
	var withStatus HasHTTPStatusCode
	if errors.As(err, &withStatus) {
		return withStatus.HTTPStatusCode()
	}
	return inferHTTPStatusCode(ErrorCodeOf(err))
}
