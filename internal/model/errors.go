package model

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")

	ErrSessionNotFound = errors.New("refresh token not found or revoked")
	ErrTokenInvalid    = errors.New("invalid or expired token")

	// ErrSecretMissing means a signing secret is absent from the environment.
	// Surfaces as a 500 on first use rather than a startup crash.
	ErrSecretMissing = errors.New("signing secret is not configured")
)
