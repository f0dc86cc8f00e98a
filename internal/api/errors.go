package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/weilandt/circ-api/internal/api/shared"
	"github.com/weilandt/circ-api/internal/domain"
	"github.com/weilandt/circ-api/internal/service"
	"github.com/weilandt/circ-api/internal/service/auth"
	"github.com/weilandt/circ-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, service.ErrMediaUnavailable),
		errors.Is(err, domain.ErrNoCopiesAvailable):
		return http.StatusConflict

	// Business-rule violations: the request was well-formed but the
	// member's state forbids it
	case errors.Is(err, service.ErrUserHasOverdue),
		errors.Is(err, service.ErrUserBlocked):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidCopyCount),
		errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrEmptyEmail),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrEmptyMediaID),
		errors.Is(err, domain.ErrEmptyTitle):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrMediaUnavailable),
		errors.Is(err, domain.ErrNoCopiesAvailable):
		return "No copies available"

	case errors.Is(err, service.ErrUserHasOverdue):
		return "Account has overdue items"

	case errors.Is(err, service.ErrUserBlocked):
		return "Account blocked by unpaid fines"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrMediaNotFound):
		return "Media not found"

	case errors.Is(err, store.ErrLoanNotFound):
		return "Loan not found"

	case errors.Is(err, store.ErrUsernameExists):
		return "Name already taken"

	case errors.Is(err, store.ErrMediaExists):
		return "Media ID already in use"

	case errors.Is(err, domain.ErrInvalidCopyCount):
		return "Total copies cannot go below the available count"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return "Invalid request data"

	case errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrEmptyEmail),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmptyPassword),
		errors.Is(err, domain.ErrEmptyMediaID),
		errors.Is(err, domain.ErrEmptyTitle):
		return "Invalid request data: " + err.Error()

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status code and safe message, logs the
// underlying error, and writes the response. An explicit userMessage
// overrides the mapped message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'LoginRequest.Name' Error:Field validation for
	// 'Name' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
