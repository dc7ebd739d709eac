package tag

import (
	"context"
	"errors"
)

// Provider errors.
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagReadOnly = errors.New("tag is read-only")
)

// ChangeFunc is invoked by a subscription when a tag's raw value
// changes on the device. oldRaw may be nil for the first delivery.
// Implementations must not block; long work should be queued.
type ChangeFunc func(path Path, oldRaw, newRaw any)

// Subscription is a handle to an active per-path change subscription.
type Subscription interface {
	// Cancel stops delivery. Cancel is idempotent; callbacks may
	// still arrive briefly after it returns.
	Cancel()
}

// Provider is the PLC collaborator. Implementations own the device
// connection, including reconnects and round-trip timeouts; a
// round-trip that exceeds the device timeout returns an error rather
// than retrying.
//
// All methods are safe for concurrent use.
type Provider interface {
	// ListPaths enumerates the full tag catalog. Called once at
	// address-space build time.
	ListPaths(ctx context.Context) ([]Path, error)

	// Describe returns the metadata for one path.
	Describe(ctx context.Context, path Path) (*Descriptor, error)

	// Read performs a synchronous device round-trip for the current
	// raw value.
	Read(ctx context.Context, path Path) (any, error)

	// Write performs a synchronous device round-trip to set the raw
	// value. Returns ErrTagReadOnly for read-only tags.
	Write(ctx context.Context, path Path, value any) error

	// Subscribe registers a change callback for one path. The
	// returned Subscription must be cancelled to release device
	// resources.
	Subscribe(path Path, fn ChangeFunc) (Subscription, error)
}
