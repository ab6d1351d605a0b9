// Package provider contains the upstream IP intelligence clients and the
// pure normalizers that map their payloads into the canonical insight shape.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"trustlens/pkg/insight"
)

// DefaultTimeout bounds a single upstream request when no timeout is
// configured.
const DefaultTimeout = 2500 * time.Millisecond

// ErrNotConfigured marks a provider that cannot be used because its
// credentials are absent. This is a capability gate, not a failure: the
// caller moves on to the next source without logging an error.
var ErrNotConfigured = errors.New("provider not configured")

// Kind classifies a hard provider failure.
type Kind string

const (
	// KindTimeout means the request exceeded the client's bound.
	KindTimeout Kind = "timeout"
	// KindRejected means the provider answered with a non-success status
	// or an explicit failure envelope.
	KindRejected Kind = "rejected"
)

// Error is a typed provider failure. It always triggers fallback to the
// next source and never aborts the overall lookup on its own.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Source is one ordered upstream in the lookup chain.
type Source interface {
	Name() string
	// Configured reports whether the source has the credentials or data it
	// needs. An unconfigured source fails Fetch with ErrNotConfigured.
	Configured() bool
	// Fetch resolves ip into a normalized insight.
	Fetch(ctx context.Context, ip string) (insight.Insight, error)
	// VerifyToken is a lightweight credential-health probe. It never
	// returns an error: any network or auth failure reports as false.
	VerifyToken(ctx context.Context) bool
}

// classify wraps a transport error as a typed provider failure,
// distinguishing timeouts from everything else.
func classify(name string, err error) error {
	kind := KindRejected
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		kind = KindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &Error{Provider: name, Kind: kind, Err: err}
}

// rejected wraps a provider-level refusal (bad status, failure envelope).
func rejected(name string, format string, args ...any) error {
	return &Error{Provider: name, Kind: KindRejected, Err: fmt.Errorf(format, args...)}
}
