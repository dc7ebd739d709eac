package log

import (
	"time"
)

// Event records one occurrence at the bridge's device or client
// boundary. CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// BridgeID identifies the bridge instance (UUID).
	BridgeID string `cbor:"2,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Origin indicates which side triggered the event.
	Origin Origin `cbor:"4,keyasint"`

	// Path is the tag path involved, if any.
	Path string `cbor:"5,keyasint,omitempty"`

	// NodeID is the node identifier involved, if any.
	NodeID string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Build  *BuildEvent  `cbor:"7,keyasint,omitempty"`
	Change *ChangeEvent `cbor:"8,keyasint,omitempty"`
	Access *AccessEvent `cbor:"9,keyasint,omitempty"`
	Error  *ErrorEvent  `cbor:"10,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryBuild indicates an address-space build.
	CategoryBuild Category = 0
	// CategoryChange indicates a device-originated value change.
	CategoryChange Category = 1
	// CategoryRead indicates a client read-through.
	CategoryRead Category = 2
	// CategoryWrite indicates a client write-through.
	CategoryWrite Category = 3
	// CategoryTeardown indicates an address-space teardown.
	CategoryTeardown Category = 4
	// CategoryError indicates an error event.
	CategoryError Category = 5
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryBuild:
		return "BUILD"
	case CategoryChange:
		return "CHANGE"
	case CategoryRead:
		return "READ"
	case CategoryWrite:
		return "WRITE"
	case CategoryTeardown:
		return "TEARDOWN"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Origin indicates which side of the bridge triggered an event.
type Origin uint8

const (
	// OriginBridge indicates the bridge's own lifecycle.
	OriginBridge Origin = 0
	// OriginDevice indicates the PLC collaborator.
	OriginDevice Origin = 1
	// OriginClient indicates the protocol server framework.
	OriginClient Origin = 2
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginBridge:
		return "BRIDGE"
	case OriginDevice:
		return "DEVICE"
	case OriginClient:
		return "CLIENT"
	default:
		return "UNKNOWN"
	}
}

// BuildEvent captures the outcome of an address-space build.
type BuildEvent struct {
	// Folders is the number of folder nodes created.
	Folders int `cbor:"1,keyasint"`

	// Variables is the number of variable nodes created.
	Variables int `cbor:"2,keyasint"`

	// Subscriptions is the number of device subscriptions registered.
	Subscriptions int `cbor:"3,keyasint"`

	// Partial indicates the build stopped early on a catalog error.
	Partial bool `cbor:"4,keyasint,omitempty"`
}

// ChangeEvent captures a device push applied to a node.
type ChangeEvent struct {
	// Value is the new raw value (CBOR-compatible representation).
	Value any `cbor:"1,keyasint,omitempty"`

	// Quality is the resulting node quality.
	Quality uint8 `cbor:"2,keyasint"`
}

// AccessEvent captures a client read-through or write-through.
type AccessEvent struct {
	// Value is the value read or written.
	Value any `cbor:"1,keyasint,omitempty"`

	// Quality is the resulting node quality (reads only).
	Quality uint8 `cbor:"2,keyasint,omitempty"`

	// RoundTrip is the device round-trip duration.
	RoundTrip time.Duration `cbor:"3,keyasint,omitempty"`
}

// ErrorEvent captures errors at any bridge boundary.
type ErrorEvent struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
