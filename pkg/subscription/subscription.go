package subscription

import (
	"errors"
	"sync"
	"time"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
)

// Subscription errors.
var (
	ErrInvalidInterval      = errors.New("invalid subscription interval")
	ErrResourceExhausted    = errors.New("maximum subscriptions reached")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrTooManyPaths         = errors.New("too many paths in subscription")
)

// Default subscription limits.
const (
	DefaultMinInterval      = 1 * time.Second
	DefaultMaxInterval      = 60 * time.Second
	DefaultMaxSubscriptions = 50
	DefaultMaxPathsPerSub   = 1000
)

// HeartbeatMode specifies what content is sent in heartbeat notifications.
type HeartbeatMode uint8

const (
	// HeartbeatEmpty sends only subscriptionId and timestamp.
	HeartbeatEmpty HeartbeatMode = iota

	// HeartbeatFull sends all monitored paths with current values.
	HeartbeatFull
)

// String returns a human-readable heartbeat mode name.
func (m HeartbeatMode) String() string {
	switch m {
	case HeartbeatEmpty:
		return "EMPTY"
	case HeartbeatFull:
		return "FULL"
	default:
		return "UNKNOWN"
	}
}

// Config holds subscription manager configuration.
type Config struct {
	// MaxSubscriptions is the maximum number of subscriptions allowed.
	MaxSubscriptions int

	// MaxPathsPerSub is the maximum monitored paths per subscription.
	MaxPathsPerSub int

	// HeartbeatMode specifies heartbeat content (empty or full).
	HeartbeatMode HeartbeatMode

	// SuppressBounceBack enables bounce-back suppression.
	SuppressBounceBack bool

	// AutoCorrectIntervals swaps min/max if min > max.
	AutoCorrectIntervals bool
}

// DefaultConfig returns the default subscription configuration.
func DefaultConfig() Config {
	return Config{
		MaxSubscriptions:     DefaultMaxSubscriptions,
		MaxPathsPerSub:       DefaultMaxPathsPerSub,
		HeartbeatMode:        HeartbeatFull,
		SuppressBounceBack:   true,
		AutoCorrectIntervals: false,
	}
}

// Subscription represents one client's set of monitored tag paths.
type Subscription struct {
	mu sync.RWMutex

	// ID is the unique subscription identifier.
	ID uint32

	// Paths lists monitored tag paths (empty = all).
	Paths []tag.Path

	// MinInterval is the minimum time between notifications.
	MinInterval time.Duration

	// MaxInterval is the maximum time without notification (heartbeat).
	MaxInterval time.Duration

	// pathSet holds folded paths for membership tests.
	pathSet map[string]struct{}

	// lastNotified is when the last notification was sent.
	lastNotified time.Time

	// lastValues holds the last notified values for bounce-back detection,
	// keyed by folded path.
	lastValues map[string]any

	// pendingChanges accumulates changes during the coalescing window,
	// keyed by display path.
	pendingChanges map[string]any

	// changeWindowStart is when the first change occurred in current window.
	changeWindowStart time.Time

	// hasChanges indicates pending changes exist.
	hasChanges bool

	// active indicates if subscription is active.
	active bool
}

// NewSubscription creates a new subscription over the given paths.
func NewSubscription(id uint32, paths []tag.Path, minInterval, maxInterval time.Duration) *Subscription {
	pathSet := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		pathSet[p.Fold()] = struct{}{}
	}
	return &Subscription{
		ID:             id,
		Paths:          paths,
		MinInterval:    minInterval,
		MaxInterval:    maxInterval,
		pathSet:        pathSet,
		lastNotified:   time.Now(),
		lastValues:     make(map[string]any),
		pendingChanges: make(map[string]any),
		active:         true,
	}
}

// IsActive returns whether the subscription is active.
func (s *Subscription) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Deactivate marks the subscription as inactive.
func (s *Subscription) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// Monitors reports whether the subscription covers the given path.
func (s *Subscription) Monitors(path tag.Path) bool {
	if len(s.pathSet) == 0 {
		return true
	}
	_, ok := s.pathSet[path.Fold()]
	return ok
}

// RecordChange records a value change for a path. Later changes to the
// same path within the coalescing window overwrite earlier ones.
// Returns true if this change starts a new coalescing window.
func (s *Subscription) RecordChange(path tag.Path, value any) bool {
	if !s.Monitors(path) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return false
	}

	isNewWindow := !s.hasChanges
	if isNewWindow {
		s.changeWindowStart = time.Now()
	}

	s.pendingChanges[path.String()] = value
	s.hasChanges = true

	return isNewWindow
}

// GetPendingNotification returns the values that should be notified,
// keyed by display path. It implements bounce-back suppression and
// clears pending changes. Returns nil if no notification is due.
func (s *Subscription) GetPendingNotification(suppressBounceBack bool) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || !s.hasChanges {
		return nil
	}

	// Check if coalescing window has elapsed
	if time.Since(s.changeWindowStart) < s.MinInterval {
		return nil
	}

	notification := make(map[string]any)

	for path, newValue := range s.pendingChanges {
		key := tag.Path(path).Fold()
		if suppressBounceBack {
			if lastVal, exists := s.lastValues[key]; exists {
				if valuesEqual(lastVal, newValue) {
					continue
				}
			}
		}
		notification[path] = newValue
		s.lastValues[key] = newValue
	}

	s.pendingChanges = make(map[string]any)
	s.hasChanges = false
	s.lastNotified = time.Now()

	if len(notification) == 0 {
		return nil // All changes were bounce-backs
	}

	return notification
}

// NeedsHeartbeat returns true if maxInterval has elapsed since the
// last notification.
func (s *Subscription) NeedsHeartbeat() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.active {
		return false
	}

	return time.Since(s.lastNotified) >= s.MaxInterval
}

// RecordHeartbeat records that a heartbeat was sent.
func (s *Subscription) RecordHeartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastNotified = time.Now()
}

// SetPrimingValues seeds the last-notified values from the priming
// notification, keyed by display path.
func (s *Subscription) SetPrimingValues(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for path, value := range values {
		s.lastValues[tag.Path(path).Fold()] = value
	}
	s.lastNotified = time.Now()
}

// TimeSinceLastNotification returns time since the last notification.
func (s *Subscription) TimeSinceLastNotification() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastNotified)
}

// TimeUntilCoalesceExpiry returns time until the coalescing window
// expires. Returns 0 if no changes are pending.
func (s *Subscription) TimeUntilCoalesceExpiry() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasChanges {
		return 0
	}

	elapsed := time.Since(s.changeWindowStart)
	if elapsed >= s.MinInterval {
		return 0
	}
	return s.MinInterval - elapsed
}

// valuesEqual compares two values for equality.
func valuesEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return av == bv
		}
	case int32:
		if bv, ok := b.(int32); ok {
			return av == bv
		}
	case int:
		if bv, ok := b.(int); ok {
			return av == bv
		}
	case uint64:
		if bv, ok := b.(uint64); ok {
			return av == bv
		}
	case uint32:
		if bv, ok := b.(uint32); ok {
			return av == bv
		}
	case uint:
		if bv, ok := b.(uint); ok {
			return av == bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av == bv
		}
	case float32:
		if bv, ok := b.(float32); ok {
			return av == bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av == bv
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return av == bv
		}
	}

	// Mismatched types count as changed.
	return false
}
