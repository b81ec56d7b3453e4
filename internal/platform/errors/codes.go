// Package errors provides structured error handling with machine-readable codes.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Auth errors
	CodeAuthInvalidCredentials Code = "AUTH_INVALID_CREDENTIALS"
	CodeAuthEmailTaken         Code = "AUTH_EMAIL_TAKEN"
	CodeAuthEmailInvalid       Code = "AUTH_EMAIL_INVALID"
	CodeAuthPasswordTooShort   Code = "AUTH_PASSWORD_TOO_SHORT"
	CodeAuthSessionMissing     Code = "AUTH_SESSION_MISSING"
	CodeAuthSessionExpired     Code = "AUTH_SESSION_EXPIRED"
	CodeAuthRateLimited        Code = "AUTH_RATE_LIMITED"

	// Profile errors
	CodeProfileEmptyUserID Code = "PROFILE_EMPTY_USER_ID"
	CodeProfileEmptyName   Code = "PROFILE_EMPTY_NAME"

	// Task errors
	CodeTaskEmptyTitle      Code = "TASK_EMPTY_TITLE"
	CodeTaskInvalidDate     Code = "TASK_INVALID_DATE"
	CodeTaskInvalidCategory Code = "TASK_INVALID_CATEGORY"
	CodeTaskInvalidPriority Code = "TASK_INVALID_PRIORITY"
	CodeTaskInvalidStatus   Code = "TASK_INVALID_STATUS"

	// Priority item errors
	CodePriorityEmptyText          Code = "PRIORITY_EMPTY_TEXT"
	CodePriorityInvalidCategory    Code = "PRIORITY_INVALID_CATEGORY"
	CodePriorityInvalidSubCategory Code = "PRIORITY_INVALID_SUB_CATEGORY"

	// Note errors
	CodeNoteEmpty Code = "NOTE_EMPTY"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes for the gateway API.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeAuthEmailInvalid,
		CodeAuthPasswordTooShort,
		CodeProfileEmptyUserID,
		CodeProfileEmptyName,
		CodeTaskEmptyTitle,
		CodeTaskInvalidDate,
		CodeTaskInvalidCategory,
		CodeTaskInvalidPriority,
		CodeTaskInvalidStatus,
		CodePriorityEmptyText,
		CodePriorityInvalidCategory,
		CodePriorityInvalidSubCategory,
		CodeNoteEmpty:
		return http.StatusBadRequest

	// Unauthorized - missing or failed authentication
	case CodeAuthInvalidCredentials,
		CodeAuthSessionMissing,
		CodeAuthSessionExpired:
		return http.StatusUnauthorized

	// Conflict - duplicate identity
	case CodeAuthEmailTaken:
		return http.StatusConflict

	// Too many requests
	case CodeAuthRateLimited:
		return http.StatusTooManyRequests

	// Not found
	case CodeNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}

// ParseCode returns the Code for a wire value, defaulting to CodeUnknown.
func ParseCode(value string) Code {
	switch code := Code(value); code {
	case CodeAuthInvalidCredentials, CodeAuthEmailTaken, CodeAuthEmailInvalid,
		CodeAuthPasswordTooShort, CodeAuthSessionMissing, CodeAuthSessionExpired,
		CodeAuthRateLimited,
		CodeProfileEmptyUserID, CodeProfileEmptyName,
		CodeTaskEmptyTitle, CodeTaskInvalidDate, CodeTaskInvalidCategory,
		CodeTaskInvalidPriority, CodeTaskInvalidStatus,
		CodePriorityEmptyText, CodePriorityInvalidCategory,
		CodePriorityInvalidSubCategory,
		CodeNoteEmpty, CodeNotFound:
		return code
	default:
		return CodeUnknown
	}
}
