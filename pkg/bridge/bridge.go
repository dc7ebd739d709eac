package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	blog "github.com/tagbridge-protocol/tagbridge-go/pkg/log"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/space"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
)

// Bridge errors.
var (
	ErrUnknownPath  = errors.New("unknown tag path")
	ErrNodeReadOnly = errors.New("node is read-only")
)

// Observer is notified when a node's externally visible state changes.
type Observer interface {
	// OnNodeChanged is called after a device push updated the node.
	// It runs on the delivering goroutine and must not block.
	OnNodeChanged(node *space.VariableNode)
}

// Bridge synchronizes variable nodes with the PLC collaborator.
type Bridge struct {
	provider tag.Provider
	logger   *slog.Logger
	events   blog.Logger

	mu        sync.RWMutex
	tree      *space.Tree
	observers []observerEntry
	obsSeq    uint64
}

// observerEntry pairs an observer with its registration token, so
// removal never compares interface values (observer types may be
// uncomparable, e.g. func adapters).
type observerEntry struct {
	id  uint64
	obs Observer
}

// New creates a bridge over the given provider. logger and events may
// be nil.
func New(provider tag.Provider, logger *slog.Logger, events blog.Logger) *Bridge {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if events == nil {
		events = blog.NoopLogger{}
	}
	return &Bridge{provider: provider, logger: logger, events: events}
}

// Bind attaches a built tree. Any previously bound tree is dropped.
func (b *Bridge) Bind(tree *space.Tree) {
	b.mu.Lock()
	b.tree = tree
	b.mu.Unlock()
}

// Reset detaches the tree. Subsequent lookups miss and device pushes
// become no-ops.
func (b *Bridge) Reset() {
	b.mu.Lock()
	b.tree = nil
	b.mu.Unlock()
}

// AddObserver registers an observer for node change signals and
// returns the function that unregisters it. The returned function is
// idempotent.
func (b *Bridge) AddObserver(obs Observer) (remove func()) {
	b.mu.Lock()
	b.obsSeq++
	id := b.obsSeq
	b.observers = append(b.observers, observerEntry{id: id, obs: obs})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		for i, e := range b.observers {
			if e.id == id {
				b.observers = append(b.observers[:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

// Lookup returns the variable node for a path (case-insensitive).
func (b *Bridge) Lookup(path tag.Path) (*space.VariableNode, bool) {
	b.mu.RLock()
	tree := b.tree
	b.mu.RUnlock()

	if tree == nil {
		return nil, false
	}
	return tree.VariableByPath(path)
}

// OnDeviceChange applies an asynchronous device push. The signature
// matches tag.ChangeFunc so it can be registered directly as the
// per-path subscription callback. Unknown paths are ignored.
func (b *Bridge) OnDeviceChange(path tag.Path, oldRaw, newRaw any) {
	node, ok := b.Lookup(path)
	if !ok {
		// Expected during and after teardown.
		b.logger.Debug("device push for unknown path", "path", path)
		return
	}

	now := time.Now()
	node.SetValue(newRaw, now, space.QualityGood)

	b.events.Log(blog.Event{
		Timestamp: now,
		Category:  blog.CategoryChange,
		Origin:    blog.OriginDevice,
		Path:      path.String(),
		NodeID:    node.NodeID().String(),
		Change:    &blog.ChangeEvent{Value: newRaw, Quality: uint8(space.QualityGood)},
	})

	b.mu.RLock()
	observers := make([]observerEntry, len(b.observers))
	copy(observers, b.observers)
	b.mu.RUnlock()

	for _, e := range observers {
		e.obs.OnNodeChanged(node)
	}
}

// ReadThrough serves a client read with a live device round-trip and
// refreshes the node. The node is marked bad when the round-trip
// fails.
func (b *Bridge) ReadThrough(ctx context.Context, path tag.Path) (any, time.Time, space.Quality, error) {
	node, ok := b.Lookup(path)
	if !ok {
		return nil, time.Time{}, space.QualityBad, fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}

	start := time.Now()
	value, err := b.provider.Read(ctx, path)
	now := time.Now()
	if err != nil {
		node.MarkBad(now)
		b.logError("read-through", path, err)
		return nil, now, space.QualityBad, fmt.Errorf("read %q: %w", path, err)
	}

	node.SetValue(value, now, space.QualityGood)

	b.events.Log(blog.Event{
		Timestamp: now,
		Category:  blog.CategoryRead,
		Origin:    blog.OriginClient,
		Path:      path.String(),
		NodeID:    node.NodeID().String(),
		Access:    &blog.AccessEvent{Value: value, Quality: uint8(space.QualityGood), RoundTrip: now.Sub(start)},
	})

	return value, now, space.QualityGood, nil
}

// WriteThrough forwards a client write to the device. Node state is
// not updated optimistically; the next push or read reconciles it.
// Read-only and unknown paths fail.
func (b *Bridge) WriteThrough(ctx context.Context, path tag.Path, value any) error {
	node, ok := b.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	if node.ReadOnly() {
		return fmt.Errorf("%w: %s", ErrNodeReadOnly, path)
	}

	start := time.Now()
	if err := b.provider.Write(ctx, path, value); err != nil {
		b.logError("write-through", path, err)
		return fmt.Errorf("write %q: %w", path, err)
	}
	now := time.Now()

	b.events.Log(blog.Event{
		Timestamp: now,
		Category:  blog.CategoryWrite,
		Origin:    blog.OriginClient,
		Path:      path.String(),
		NodeID:    node.NodeID().String(),
		Access:    &blog.AccessEvent{Value: value, RoundTrip: now.Sub(start)},
	})

	return nil
}

func (b *Bridge) logError(op string, path tag.Path, err error) {
	b.logger.Warn("device round-trip failed", "op", op, "path", path, "err", err)
	b.events.Log(blog.Event{
		Timestamp: time.Now(),
		Category:  blog.CategoryError,
		Origin:    blog.OriginDevice,
		Path:      path.String(),
		Error:     &blog.ErrorEvent{Message: err.Error(), Context: op},
	})
}

// Compile-time check: OnDeviceChange matches the subscription callback.
var _ tag.ChangeFunc = (*Bridge)(nil).OnDeviceChange
