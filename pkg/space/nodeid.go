package space

import (
	"fmt"
	"sync"
)

// NodeID identifies a node within a namespace. An ID is either
// numeric (allocator-issued) or textual (derived from a string-typed
// parent). The zero value is no valid ID.
type NodeID struct {
	// Namespace is the namespace index the ID belongs to.
	Namespace uint16

	// Numeric is the numeric identifier (valid when Text is empty).
	Numeric uint32

	// Text is the string identifier, if any.
	Text string
}

// NumericID builds a numeric node ID.
func NumericID(namespace uint16, value uint32) NodeID {
	return NodeID{Namespace: namespace, Numeric: value}
}

// StringID builds a string-typed node ID.
func StringID(namespace uint16, value string) NodeID {
	return NodeID{Namespace: namespace, Text: value}
}

// IsString reports whether the ID is string-typed.
func (id NodeID) IsString() bool {
	return id.Text != ""
}

// IsZero reports whether the ID is the zero value.
func (id NodeID) IsZero() bool {
	return id == NodeID{}
}

// String returns "ns=<n>;i=<numeric>" or "ns=<n>;s=<text>".
func (id NodeID) String() string {
	if id.IsString() {
		return fmt.Sprintf("ns=%d;s=%s", id.Namespace, id.Text)
	}
	return fmt.Sprintf("ns=%d;i=%d", id.Namespace, id.Numeric)
}

// Allocator issues node identifiers for one namespace instance.
// Identifiers are sequential and never reused; a rebuilt address
// space gets a fresh allocator.
type Allocator struct {
	mu        sync.Mutex
	namespace uint16
	next      uint32
}

// NewAllocator creates an allocator for the given namespace index.
// The first issued identifier is 1; 0 is reserved as invalid.
func NewAllocator(namespace uint16) *Allocator {
	return &Allocator{namespace: namespace, next: 1}
}

// Namespace returns the namespace index the allocator serves.
func (a *Allocator) Namespace() uint16 {
	return a.namespace
}

// Next issues the next numeric identifier.
func (a *Allocator) Next() NodeID {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := NumericID(a.namespace, a.next)
	a.next++
	return id
}

// Issued returns how many identifiers have been handed out.
func (a *Allocator) Issued() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.next - 1)
}

// ChildID derives a child's identifier from its parent for the
// framework's node-identity hook. When the parent carries a
// string-typed ID the child gets "<parent>_<name>", propagating a
// readable identifier scheme downward; otherwise the child keeps the
// identifier it was originally allocated.
func (a *Allocator) ChildID(parent, child NodeID, name string) NodeID {
	if parent.IsString() {
		return StringID(parent.Namespace, parent.Text+"_"+name)
	}
	return child
}
