// Package common defines shared constants, sentinel errors and small helpers
// used across the server layers. Callers should use errors.Is to match the
// error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Input errors, raised before any store call.
	ErrorInvalidIdentifier = errors.New("invalid identifier")
	ErrorValidation        = errors.New("validation error")

	// Auth errors.
	ErrorInvalidCredentials = errors.New("invalid email or password")
	ErrorUnauthenticated    = errors.New("unauthenticated")
	ErrorForbidden          = errors.New("forbidden")

	// ErrorStorageFailure wraps every unexpected store fault. The driver error
	// is rendered into the message, never wrapped.
	ErrorStorageFailure = errors.New("storage failure")

	// ErrorNotConfigured is returned by optional integrations (object storage)
	// when their settings are absent.
	ErrorNotConfigured = errors.New("service not configured")
)
