package common

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the fanout engine. Callers match with errors.Is;
// wrapped detail travels via fmt.Errorf("%w").
var (
	// ErrNotAuthenticated means no current user identity is available.
	ErrNotAuthenticated = errors.New("user not authenticated")

	// ErrNotFound means a referenced notification, team or user document is missing.
	ErrNotFound = errors.New("not found")

	// ErrWriteFailed means the store rejected a write, transaction or batch.
	// The engine does not retry on its own.
	ErrWriteFailed = errors.New("write failed")

	// ErrPartialFanout means some but not all recipients were notified.
	// Already-written notifications are not rolled back.
	ErrPartialFanout = errors.New("partial fanout failure")

	// ErrVerificationFailed is diagnostic only: the batch committed but the
	// post-write read-back could not confirm every sampled record.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrMembershipUpdate means the team document update failed; the source
	// notification is left unread so the operation can be retried.
	ErrMembershipUpdate = errors.New("membership update failed")
)

// NotFoundf wraps ErrNotFound with context about what was missing.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// WriteFailedf wraps ErrWriteFailed with the underlying store error.
func WriteFailedf(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrWriteFailed, op, err)
}
