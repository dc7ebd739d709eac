package subscription

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/space"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
)

// Notification represents a subscription notification to send.
type Notification struct {
	// SubscriptionID identifies the subscription.
	SubscriptionID uint32

	// Values maps display tag paths to their values.
	Values map[string]any

	// IsPriming indicates this is the initial priming notification.
	IsPriming bool

	// IsHeartbeat indicates this is a heartbeat notification.
	IsHeartbeat bool

	// Timestamp is when the notification was generated.
	Timestamp time.Time
}

// Manager manages client subscriptions over the address space.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config Config

	// Active subscriptions by ID
	subscriptions map[uint32]*Subscription

	// Index by folded path for efficient change dispatch
	pathIndex map[string][]*Subscription

	// Subscriptions monitoring every path
	wildcard []*Subscription

	// Callbacks
	onNotification func(Notification)

	// Subscription ID source, scoped to this manager.
	nextID atomic.Uint32
}

// NewManager creates a subscription manager with default configuration.
func NewManager() *Manager {
	return NewManagerWithConfig(DefaultConfig())
}

// NewManagerWithConfig creates a subscription manager with custom
// configuration.
func NewManagerWithConfig(config Config) *Manager {
	if config.MaxSubscriptions <= 0 {
		config.MaxSubscriptions = DefaultMaxSubscriptions
	}
	if config.MaxPathsPerSub <= 0 {
		config.MaxPathsPerSub = DefaultMaxPathsPerSub
	}

	return &Manager{
		config:        config,
		subscriptions: make(map[uint32]*Subscription),
		pathIndex:     make(map[string][]*Subscription),
	}
}

// Subscribe creates a new subscription and returns the subscription ID.
// It sends a priming notification with the current values via the
// callback. currentValues is keyed by display path.
func (m *Manager) Subscribe(
	paths []tag.Path,
	minInterval, maxInterval time.Duration,
	currentValues map[string]any,
) (uint32, error) {
	// Validate intervals
	if maxInterval == 0 {
		return 0, ErrInvalidInterval
	}
	if minInterval > maxInterval {
		if m.config.AutoCorrectIntervals {
			minInterval, maxInterval = maxInterval, minInterval
		} else {
			return 0, ErrInvalidInterval
		}
	}

	if len(paths) > m.config.MaxPathsPerSub {
		return 0, ErrTooManyPaths
	}

	m.mu.Lock()

	if len(m.subscriptions) >= m.config.MaxSubscriptions {
		m.mu.Unlock()
		return 0, ErrResourceExhausted
	}

	id := m.nextID.Add(1)
	sub := NewSubscription(id, paths, minInterval, maxInterval)

	// Filter current values to monitored paths
	primingValues := filterValues(currentValues, sub)
	sub.SetPrimingValues(primingValues)

	m.subscriptions[id] = sub

	if len(paths) == 0 {
		m.wildcard = append(m.wildcard, sub)
	} else {
		for _, p := range paths {
			key := p.Fold()
			m.pathIndex[key] = append(m.pathIndex[key], sub)
		}
	}

	// Capture callback for use outside lock
	onNotify := m.onNotification

	m.mu.Unlock()

	// Send priming notification outside lock
	if onNotify != nil && len(primingValues) > 0 {
		onNotify(Notification{
			SubscriptionID: id,
			Values:         primingValues,
			IsPriming:      true,
			Timestamp:      time.Now(),
		})
	}

	return id, nil
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, exists := m.subscriptions[subscriptionID]
	if !exists {
		return ErrSubscriptionNotFound
	}

	sub.Deactivate()
	delete(m.subscriptions, subscriptionID)

	if len(sub.Paths) == 0 {
		m.wildcard = removeSub(m.wildcard, sub)
		return nil
	}
	for _, p := range sub.Paths {
		key := p.Fold()
		m.pathIndex[key] = removeSub(m.pathIndex[key], sub)
		if len(m.pathIndex[key]) == 0 {
			delete(m.pathIndex, key)
		}
	}

	return nil
}

// NotifyChange records a value change for dispatch to relevant
// subscriptions. Changes are coalesced and notifications sent
// according to subscription intervals.
func (m *Manager) NotifyChange(path tag.Path, value any) {
	m.mu.RLock()
	subs := m.pathIndex[path.Fold()]
	targets := make([]*Subscription, 0, len(subs)+len(m.wildcard))
	targets = append(targets, subs...)
	targets = append(targets, m.wildcard...)
	m.mu.RUnlock()

	for _, sub := range targets {
		sub.RecordChange(path, value)
	}
}

// OnNodeChanged implements the bridge observer hook: a device push
// updated the node, so its latest value is recorded for dispatch.
func (m *Manager) OnNodeChanged(node *space.VariableNode) {
	value, _, _ := node.Value()
	m.NotifyChange(node.Path(), value)
}

// ProcessNotifications checks all subscriptions and sends pending
// notifications. This should be called periodically (e.g., every
// second) by the publish loop.
func (m *Manager) ProcessNotifications() {
	m.mu.RLock()
	subs := make([]*Subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	onNotify := m.onNotification
	config := m.config
	m.mu.RUnlock()

	if onNotify == nil {
		return
	}

	for _, sub := range subs {
		// Check for pending changes
		if values := sub.GetPendingNotification(config.SuppressBounceBack); values != nil {
			onNotify(Notification{
				SubscriptionID: sub.ID,
				Values:         values,
				Timestamp:      time.Now(),
			})
		}

		// Check for heartbeat
		if sub.NeedsHeartbeat() {
			notification := Notification{
				SubscriptionID: sub.ID,
				IsHeartbeat:    true,
				Timestamp:      time.Now(),
			}

			if config.HeartbeatMode == HeartbeatFull {
				// Include all last known values
				sub.mu.RLock()
				values := make(map[string]any, len(sub.lastValues))
				for k, v := range sub.lastValues {
					values[k] = v
				}
				sub.mu.RUnlock()
				notification.Values = values
			}

			sub.RecordHeartbeat()
			onNotify(notification)
		}
	}
}

// ClearAll removes all subscriptions (e.g., on address-space teardown).
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subscriptions {
		sub.Deactivate()
	}
	m.subscriptions = make(map[uint32]*Subscription)
	m.pathIndex = make(map[string][]*Subscription)
	m.wildcard = nil
}

// Count returns the number of active subscriptions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Get returns a subscription by ID.
func (m *Manager) Get(subscriptionID uint32) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, exists := m.subscriptions[subscriptionID]
	if !exists {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

// OnNotification sets the callback for notifications.
func (m *Manager) OnNotification(fn func(Notification)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onNotification = fn
}

// removeSub drops one subscription from a slice, preserving order.
func removeSub(subs []*Subscription, target *Subscription) []*Subscription {
	for i, s := range subs {
		if s == target {
			return append(subs[:i], subs[i+1:]...)
		}
	}
	return subs
}

// filterValues returns only the values the subscription monitors,
// keyed by display path.
func filterValues(values map[string]any, sub *Subscription) map[string]any {
	result := make(map[string]any)
	for path, v := range values {
		if sub.Monitors(tag.Path(path)) {
			result[path] = v
		}
	}
	return result
}
