package tag

import (
	"context"
	"sync"
)

// simTag holds one simulated tag's descriptor and current value.
type simTag struct {
	path  Path // as first registered, for display
	desc  Descriptor
	value any
}

// SimProvider is an in-memory Provider backed by a map. It is used by
// the host binary's simulation mode and by tests. Values pushed via
// Push are delivered to subscribers synchronously on the pushing
// goroutine.
type SimProvider struct {
	mu   sync.RWMutex
	tags map[string]*simTag // keyed by Path.Fold()
	subs map[string][]*simSubscription
}

// NewSimProvider creates an empty simulated catalog.
func NewSimProvider() *SimProvider {
	return &SimProvider{
		tags: make(map[string]*simTag),
		subs: make(map[string][]*simSubscription),
	}
}

// AddTag registers a tag with its descriptor and initial value.
// Re-adding a path (case-insensitive) replaces the descriptor and
// value but keeps the original display spelling.
func (s *SimProvider) AddTag(path Path, desc Descriptor, initial any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := path.Fold()
	if existing, ok := s.tags[key]; ok {
		existing.desc = desc
		existing.value = initial
		return
	}
	s.tags[key] = &simTag{path: path, desc: desc, value: initial}
}

// ListPaths returns all registered paths.
func (s *SimProvider) ListPaths(ctx context.Context) ([]Path, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]Path, 0, len(s.tags))
	for _, t := range s.tags {
		paths = append(paths, t.path)
	}
	return paths, nil
}

// Describe returns the descriptor for one path.
func (s *SimProvider) Describe(ctx context.Context, path Path) (*Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tags[path.Fold()]
	if !ok {
		return nil, ErrTagNotFound
	}
	desc := t.desc
	return &desc, nil
}

// Read returns the current value for one path.
func (s *SimProvider) Read(ctx context.Context, path Path) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tags[path.Fold()]
	if !ok {
		return nil, ErrTagNotFound
	}
	return t.value, nil
}

// Write sets the value for one path, honoring the read-only flag, and
// notifies subscribers.
func (s *SimProvider) Write(ctx context.Context, path Path, value any) error {
	s.mu.Lock()
	t, ok := s.tags[path.Fold()]
	if !ok {
		s.mu.Unlock()
		return ErrTagNotFound
	}
	if t.desc.IsReadOnly {
		s.mu.Unlock()
		return ErrTagReadOnly
	}
	old := t.value
	t.value = value
	subs := s.subscribersLocked(path)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(t.path, old, value)
	}
	return nil
}

// Push injects a device-originated value change, bypassing the
// read-only flag, and notifies subscribers. Unknown paths are ignored
// so simulations can run against partial catalogs.
func (s *SimProvider) Push(path Path, value any) {
	s.mu.Lock()
	t, ok := s.tags[path.Fold()]
	if !ok {
		s.mu.Unlock()
		return
	}
	old := t.value
	t.value = value
	subs := s.subscribersLocked(path)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(t.path, old, value)
	}
}

// Subscribe registers a change callback for one path.
func (s *SimProvider) Subscribe(path Path, fn ChangeFunc) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tags[path.Fold()]; !ok {
		return nil, ErrTagNotFound
	}

	sub := &simSubscription{provider: s, key: path.Fold(), fn: fn}
	s.subs[sub.key] = append(s.subs[sub.key], sub)
	return sub, nil
}

// SubscriptionCount returns the number of active subscriptions across
// all paths.
func (s *SimProvider) SubscriptionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, subs := range s.subs {
		n += len(subs)
	}
	return n
}

// subscribersLocked snapshots the active subscriptions for a path.
// Caller must hold s.mu.
func (s *SimProvider) subscribersLocked(path Path) []*simSubscription {
	subs := s.subs[path.Fold()]
	out := make([]*simSubscription, len(subs))
	copy(out, subs)
	return out
}

// simSubscription implements Subscription for SimProvider.
type simSubscription struct {
	provider *SimProvider
	key      string

	mu        sync.Mutex
	fn        ChangeFunc
	cancelled bool
}

func (sub *simSubscription) deliver(path Path, old, new any) {
	sub.mu.Lock()
	fn := sub.fn
	cancelled := sub.cancelled
	sub.mu.Unlock()

	if !cancelled && fn != nil {
		fn(path, old, new)
	}
}

// Cancel stops delivery and detaches the subscription from the
// provider. Cancel is idempotent.
func (sub *simSubscription) Cancel() {
	sub.mu.Lock()
	if sub.cancelled {
		sub.mu.Unlock()
		return
	}
	sub.cancelled = true
	sub.fn = nil
	sub.mu.Unlock()

	s := sub.provider
	s.mu.Lock()
	subs := s.subs[sub.key]
	for i, candidate := range subs {
		if candidate == sub {
			s.subs[sub.key] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(s.subs[sub.key]) == 0 {
		delete(s.subs, sub.key)
	}
	s.mu.Unlock()
}

// Compile-time interface satisfaction check.
var _ Provider = (*SimProvider)(nil)
