package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestUpstreamError_Unwrap(t *testing.T) {
	err := &UpstreamError{
		Status:  http.StatusForbidden,
		Message: "token revoked",
		Err:     ErrExchangeFailed,
	}

	if !errors.Is(err, ErrExchangeFailed) {
		t.Fatal("expected wrapped sentinel to surface through errors.Is")
	}

	wrapped := fmt.Errorf("handling request: %w", err)
	upstream, ok := IsUpstreamError(wrapped)
	if !ok {
		t.Fatal("expected IsUpstreamError to find the wrapped error")
	}
	if upstream.Status != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", upstream.Status)
	}
}

func TestIsUpstreamError_Plain(t *testing.T) {
	if _, ok := IsUpstreamError(errors.New("boom")); ok {
		t.Fatal("plain errors are not upstream errors")
	}
	if _, ok := IsUpstreamError(nil); ok {
		t.Fatal("nil is not an upstream error")
	}
}
