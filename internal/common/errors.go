// Package common defines shared constants and sentinel errors used across
// recipebox packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Backup archive errors, detected before any mutation.
	ErrMissingArchiveEntry = errors.New("invalid backup: missing backup.json")
	ErrInvalidArchive      = errors.New("invalid backup archive")
	ErrInvalidFormat       = errors.New("invalid backup file format")

	// Restore errors. ErrPersistence is always rolled back, ErrAssetWrite
	// happens after commit and is not.
	ErrPersistence = errors.New("persistence failure")
	ErrAssetWrite  = errors.New("asset write failure")

	// Auth errors (invalid or malformed session token).
	ErrInvalidToken = errors.New("invalid token")
)
