// Package common defines shared constants and sentinel errors used across
// client and server layers of Alarmify. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// A single malformed alarm or snooze record. Handled by dropping the
	// offending record and logging, never fatal.
	ErrValidation = errors.New("validation error")

	// No valid future occurrence could be computed for an alarm. The alarm
	// is skipped for the current cycle, not removed from the store.
	ErrScheduling = errors.New("scheduling error")

	// The external playback call reported failure. Feeds the wake monitor
	// retry path rather than surfacing to the user directly.
	ErrPlaybackFailure = errors.New("playback failure")

	// Remote store unreachable or snapshot integrity broken. Surfaced to
	// the caller of an explicit sync; local state stays intact.
	ErrSyncUnavailable  = errors.New("sync unavailable")
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")

	// Wake monitor retry budget exceeded. The only condition that reaches
	// the notification sink as a user-visible failure.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
