package refresh

import (
	"errors"
	"fmt"
)

var (
	ErrSessionTerminated   = errors.New("session terminated")
	ErrRefreshFailed       = errors.New("credential refresh failed")
	ErrNoRefreshCredential = fmt.Errorf("%w: no refresh credential", ErrSessionTerminated)
	ErrWaitTimeout         = errors.New("timed out waiting for credential refresh")
	ErrEmptyAccessToken    = errors.New("refresh response has no access token")
)

// RefreshError is returned to the caller that drove a failed refresh and to
// every call queued behind it. It matches ErrRefreshFailed and
// ErrSessionTerminated.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s: %v", ErrRefreshFailed, e.Err)
}

func (e *RefreshError) Unwrap() []error {
	return []error{ErrRefreshFailed, ErrSessionTerminated, e.Err}
}
