package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential    = errors.New("authentication required")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrExchangeFailed       = errors.New("token exchange failed")
	ErrAdminCredentialUnset = errors.New("admin credential not configured")
)

// UpstreamError preserves the status taxonomy of a failed upstream call so
// the route boundary can mirror it to the inbound caller instead of
// collapsing everything to 500. Status is the HTTP status to surface,
// Detail the upstream's own error payload when one was parseable.
type UpstreamError struct {
	Status  int
	Message string
	Detail  any
	Err     error
}

func (e *UpstreamError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream: status %d: %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream: status %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsUpstreamError unwraps err into an UpstreamError if one is in the chain.
func IsUpstreamError(err error) (*UpstreamError, bool) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream, true
	}
	return nil, false
}
