package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSearchFailed indicates both the configured strategy and the fallback failed
	ErrSearchFailed = errors.New("search failed")
)
