// Package common defines shared sentinel errors used across the session
// core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Authorization errors (relationship checks; authentication is upstream).
	ErrForbidden = errors.New("forbidden")

	// Note cipher errors. A failed entry is isolated per note, never per request.
	ErrDecryptionFailed = errors.New("decryption failed")

	// Calendar credential lifecycle errors.
	ErrAuthRequired   = errors.New("calendar authorization required")
	ErrReauthRequired = errors.New("calendar reauthorization required")
	ErrInvalidState   = errors.New("invalid authorization state")

	// Calendar sync errors.
	ErrCalendarUnavailable = errors.New("calendar unavailable")
	ErrRemoteSync          = errors.New("remote sync error")
)
