package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials indicates wrong email/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrQuotaExceeded indicates the user is over their hourly admission
	// limit for the requested job kind
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrQueueFull indicates the worker pool rejected a new job body
	ErrQueueFull = errors.New("worker queue full")

	// ErrTooLarge indicates an uploaded document exceeds the tier limit
	ErrTooLarge = errors.New("document too large")

	// ErrNotPDF indicates an upload without a PDF signature
	ErrNotPDF = errors.New("not a valid PDF")

	// ErrListingUnreachable indicates the job listing URL could not be
	// fetched with a successful status
	ErrListingUnreachable = errors.New("job listing unreachable")

	// ErrBundleMismatch indicates a bundle's recorded identity does not
	// match the identity it was requested under
	ErrBundleMismatch = errors.New("bundle identity mismatch")

	// ErrBundleCorrupt indicates a stored bundle failed integrity checks
	ErrBundleCorrupt = errors.New("bundle corrupt")
)
