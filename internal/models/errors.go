package models

import (
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the standardized API error envelope.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Details string   `json:"details,omitempty"`
}

// AppError is a typed application error carrying the HTTP status it maps to.
type AppError struct {
	Status  int
	Code    string
	Message string
	Errs    []string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Status:  fiber.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string, errs ...string) *AppError {
	return &AppError{
		Status:  fiber.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Errs:    errs,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusUnauthorized,
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Status:  fiber.StatusForbidden,
		Code:    "FORBIDDEN",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Status:  fiber.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// TranslateDBError maps driver-level errors onto typed application errors by
// pattern-matching the message: unique and foreign-key violations become 400s,
// anything unmatched becomes a generic internal error.
func TranslateDBError(err error, operation string) *AppError {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	// PostgreSQL unique violation SQLSTATE 23505
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "23505"):
		return NewValidationError("Resource already exists")
	// PostgreSQL foreign-key violation SQLSTATE 23503
	case strings.Contains(msg, "foreign key constraint"),
		strings.Contains(msg, "violates foreign key"),
		strings.Contains(msg, "23503"):
		return NewValidationError("Cannot complete operation: related records exist")
	}
	return &AppError{
		Status:  fiber.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "Failed to " + operation,
		Err:     err,
	}
}

// RespondWithError serializes an error into the standard envelope. Driver
// details are only exposed outside production.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{
		Success: false,
		Status:  status,
		Message: err.Error(),
	}

	if appErr, ok := err.(*AppError); ok {
		if appErr.Status != 0 {
			status = appErr.Status
			response.Status = appErr.Status
		}
		response.Message = appErr.Message
		response.Errors = appErr.Errs
		if appErr.Err != nil && os.Getenv("APP_ENV") != "production" {
			response.Details = appErr.Err.Error()
		}
	}

	return c.Status(status).JSON(response)
}
