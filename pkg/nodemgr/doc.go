// Package nodemgr orchestrates the address space against the external
// protocol server framework.
//
// The Manager is the framework's single entry point: it builds the
// tree on CreateAddressSpace, answers node lookups and handle
// validation while active, forwards per-node reads and writes to the
// sync bridge, and releases every device subscription on
// DeleteAddressSpace.
//
// # Lifecycle
//
//	Unbuilt --CreateAddressSpace--> Active --DeleteAddressSpace--> Unbuilt
//
// Create and Delete serialize against each other. Installing or
// clearing the tree happens in a short exclusive section that is never
// held during device I/O; the build's device round-trips run before
// the install, and subscription cancellation runs after the clear.
// Delete is idempotent.
//
// # Handles
//
// GetNodeHandle issues generation-stamped handles. A handle from a
// previous address space fails validation after a rebuild, so the
// framework can cache handles without risking stale node access.
//
// The identifier allocator is owned by the Manager and survives
// rebuilds, so node identifiers are never reused across address-space
// generations.
package nodemgr
