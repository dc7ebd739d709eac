// Package tag defines the boundary to the PLC tag catalog.
//
// A PLC exposes its variables as a flat list of dot-separated paths
// ("Motor.Speed", "Line1.Conveyor.Running"). The catalog carries no
// hierarchy of its own; structure is recovered later by the address-space
// builder from the dotted prefixes.
//
// # Paths
//
// Paths are case-insensitive for identity and comparison but
// case-preserving for display. "MOTOR.speed" and "Motor.Speed" name the
// same tag; whichever spelling the catalog returned first is kept for
// browse names.
//
// # The Provider
//
// Provider is the device collaborator: it enumerates and describes the
// catalog at build time, serves synchronous value round-trips, and
// delivers asynchronous change notifications through per-path
// subscriptions. Connection management (reconnect, backoff, round-trip
// timeouts) is owned by the Provider implementation, not by its callers.
//
// SimProvider is an in-memory Provider used by the host binary's
// simulation mode and by tests.
package tag
