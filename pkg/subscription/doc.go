// Package subscription implements client-facing monitored items for
// the tag bridge.
//
// Protocol clients subscribe to tag paths to receive notifications
// when node values change. The subscription system handles coalescing,
// heartbeats, and bounce-back suppression; it never backpressures on a
// slow client. The authoritative node state always carries the latest
// value and intermediate values may be dropped.
//
// # Subscription Parameters
//
// Each subscription has:
//   - minInterval: Minimum time between notifications (coalescing window)
//   - maxInterval: Maximum time without notification (heartbeat)
//   - paths: Specific tag paths to monitor (empty = all)
//
// # Coalescing Behavior
//
// When multiple changes to one path occur within minInterval, only the
// final value is sent. The coalescing window starts when the first
// change occurs after the previous notification.
//
// # Bounce-Back Suppression
//
// If a value changes and then returns to its previously notified value
// within the coalescing window, no notification is sent.
//
// # Priming and Heartbeat
//
// When a subscription is established, a priming notification is sent
// immediately with all current values. Heartbeat notifications are
// sent at maxInterval if no changes occur.
//
// # Lifecycle
//
// Subscriptions are cleared when the address space is torn down;
// clients must re-subscribe after a rebuild.
package subscription
