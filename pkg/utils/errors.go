package utils

import (
	"errors"
	"fmt"
	"net/http"

	"jobdesk/internal/graph"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

func NewUnauthorizedError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnauthorized,
		Message: "Sign-in required",
		Detail:  detail,
	}
}

func NewServiceUnavailableError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusServiceUnavailable,
		Message: message,
	}
}

func NewLLMError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: "LLM processing failed",
		Detail:  detail,
	}
}

// NewRemoteError maps a file gateway failure onto an HTTP error
func NewRemoteError(err error) *CustomError {
	var apiErr *graph.APIError
	if errors.As(err, &apiErr) {
		code := http.StatusBadGateway
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			code = http.StatusUnauthorized
		case http.StatusNotFound:
			code = http.StatusNotFound
		}
		return &CustomError{Code: code, Message: "Remote drive request failed", Detail: apiErr.Error()}
	}
	return &CustomError{Code: http.StatusBadGateway, Message: "Remote drive request failed", Detail: err.Error()}
}
