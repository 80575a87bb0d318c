// Package errors defines the error type returned across the HTTP boundary.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInternal      = "INTERNAL_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeValidation    = "VALIDATION_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeConflict      = "CONFLICT"
	CodeRateLimited   = "RATE_LIMITED"
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnprocessable = "UNPROCESSABLE_ENTITY"
)

// AppError is an error with a code and the HTTP status it maps to.
type AppError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	StatusCode int               `json:"-"`
	Err        error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

func Internal(message string) *AppError {
	return New(CodeInternal, message, http.StatusInternalServerError)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func RateLimited() *AppError {
	return New(CodeRateLimited, "Too Many Requests. Try again later.", http.StatusTooManyRequests)
}

// ValidationFields is a validation error with one detail per failing field.
func ValidationFields(message string, fields map[string]string) *AppError {
	e := Validation(message)
	for k, v := range fields {
		e.WithDetail(k, v)
	}
	return e
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest)
}

func Unprocessable(message string) *AppError {
	return New(CodeUnprocessable, message, http.StatusUnprocessableEntity)
}

// GetAppError extracts an AppError from err if present.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// GetStatusCode returns the HTTP status for err, 500 for plain errors.
func GetStatusCode(err error) int {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code == CodeNotFound
	}
	return false
}

// body is the JSON shape of every failed API response.
type body struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes err as {"success": false, "error": ...}. Plain errors
// are reported as an internal error without their text.
func WriteJSON(w http.ResponseWriter, err error) {
	b := body{Error: "internal error", Code: CodeInternal}
	status := http.StatusInternalServerError
	if appErr := GetAppError(err); appErr != nil {
		b = body{Error: appErr.Message, Code: appErr.Code, Details: appErr.Details}
		status = appErr.StatusCode
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(b)
}
