// Package log provides structured event capture for the tag bridge.
//
// Bridge events record what crossed the device boundary: address-space
// builds, device-originated value changes, client read-throughs and
// write-throughs, teardown, and errors. Events are plain structs with
// CBOR integer-key tags so a capture file stays compact and
// machine-readable.
//
// Applications plug in a Logger implementation:
//   - NoopLogger discards everything (the default).
//   - FileLogger appends a CBOR event stream to a file.
//   - SlogAdapter mirrors events into an slog.Logger for development.
//   - MultiLogger fans out to several of the above.
//
// Event capture is separate from debug logging; components take an
// optional *slog.Logger for the latter.
package log
