package apimodels

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/techwm-project/techwm/pkg/models"
)

// APIError is the JSON body of every failed API call.
//
// The CLI prints Message and uses Code to tell apart rejections
// (IllegalResourceRequest, NotFound, InvalidState) from server failures.
type APIError struct {
	// HTTPStatusCode mirrors the status of the response.
	HTTPStatusCode int `json:"Status"`

	// Message is a short, human-readable description of the error.
	Message string `json:"Message"`

	// RequestID is the request ID of the request that caused the error.
	RequestID string `json:"RequestID,omitempty"`

	// Code is the error code of the error.
	Code string `json:"Code"`

	// Component is the component that caused the error.
	Component string `json:"Component,omitempty"`

	// Hint is a string providing additional context or suggestions related to the error.
	Hint string `json:"Hint,omitempty"`
}

// NewAPIError creates a new APIError with the given HTTP status code and message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		HTTPStatusCode: statusCode,
		Message:        message,
		Code:           string(models.InternalError),
	}
}

// Error implements the error interface, allowing APIError to be used as a standard Go error.
func (e *APIError) Error() string {
	return e.Message
}

// FromError converts a server side error to an APIError. Errors without a
// code are internal; their message is not shown to clients.
func FromError(err error) *APIError {
	code := models.ErrorCodeOf(err)
	apiErr := &APIError{
		HTTPStatusCode: models.HTTPStatusCodeOf(err),
		Message:        err.Error(),
		Code:           string(code),
	}

	var baseErr *models.BaseError
	if errors.As(err, &baseErr) {
		apiErr.Component = baseErr.Component()
		apiErr.Hint = baseErr.Hint()
	} else if code == models.InternalError {
		apiErr.Message = "internal server error"
	}
	return apiErr
}

// ToBaseError converts an APIError received by a client back to an error
// that carries the server's code and status.
func (e *APIError) ToBaseError() *models.BaseError {
	details := map[string]string{}
	if e.RequestID != "" {
		details["RequestID"] = e.RequestID
	}
	return models.NewBaseError("%s", e.Message).
		WithCode(models.ErrorCode(e.Code)).
		WithHTTPStatusCode(e.HTTPStatusCode).
		WithComponent(e.Component).
		WithHint(e.Hint).
		WithDetails(details)
}

// GenerateAPIErrorFromHTTPResponse parses the error body of resp. The body
// is consumed and closed.
func GenerateAPIErrorFromHTTPResponse(resp *http.Response) *APIError {
	if resp == nil {
		return NewAPIError(0, "API call error, invalid response")
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewAPIError(
			resp.StatusCode,
			fmt.Sprintf("Unable to read API call response body. Error: %q", err.Error()))
	}

	var apiErr APIError
	err = json.Unmarshal(body, &apiErr)
	if err != nil {
		return NewAPIError(
			resp.StatusCode,
			fmt.Sprintf("Unable to parse API call response body. Error: %q. Body received: %q",
				err.Error(),
				string(body),
			))
	}

	// If the JSON didn't include a status code, use the HTTP Status
	if apiErr.HTTPStatusCode == 0 {
		apiErr.HTTPStatusCode = resp.StatusCode
	}
	if apiErr.Code == "" {
		apiErr.Code = string(models.InternalError)
	}

	return &apiErr
}
