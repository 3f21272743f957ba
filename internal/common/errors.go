// Package common defines shared constants and sentinel errors used across
// client and server layers of Daybook. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors, raised before any network or database call.
	ErrValidation = errors.New("validation error")

	// External collaborator errors.
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrStorage            = errors.New("storage error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
