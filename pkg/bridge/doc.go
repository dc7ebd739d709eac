// Package bridge keeps the address space and the PLC synchronized.
//
// The bridge owns the path → variable-node map of the currently bound
// tree and moves values across it in three ways:
//
//   - OnDeviceChange applies asynchronous device pushes to node state
//     and signals observers. Pushes for unknown paths are ignored;
//     they are expected during and after teardown.
//   - ReadThrough serves a client read with a live device round-trip,
//     refreshing the node on the way out. Cached node state is
//     advisory between pushes and explicit reads.
//   - WriteThrough forwards a client write to the device without
//     optimistically touching node state; the next push or read
//     reconciles it.
//
// A node's (value, timestamp, quality) triple updates atomically under
// the node's own lock; there is no global lock across value accesses.
// Observer callbacks run on the delivering goroutine and must stay
// short; slow client fan-out belongs in the subscription manager,
// which coalesces rather than backpressures.
package bridge
