package nodemgr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/bridge"
	blog "github.com/tagbridge-protocol/tagbridge-go/pkg/log"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/space"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/subscription"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
)

// Manager errors.
var (
	ErrAlreadyActive = errors.New("address space already active")
	ErrNotActive     = errors.New("address space not active")
	ErrStaleHandle   = errors.New("handle from a previous address space")
)

// State is the manager's lifecycle state.
type State uint8

const (
	// StateUnbuilt means no address space exists.
	StateUnbuilt State = iota

	// StateActive means the address space is built and serving.
	StateActive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "ACTIVE"
	default:
		return "UNBUILT"
	}
}

// ExternalRoot describes where the framework wants the catalog root
// attached and what to call it.
type ExternalRoot struct {
	// ParentID is the framework node the catalog root hangs under.
	ParentID space.NodeID

	// BrowseName is the catalog root's browse name.
	BrowseName string
}

// Handle is an opaque, generation-stamped reference to a node.
type Handle struct {
	id         space.NodeID
	generation uint64
}

// NodeID returns the identifier the handle refers to.
func (h Handle) NodeID() space.NodeID {
	return h.id
}

// Config configures a Manager.
type Config struct {
	// Namespace is the namespace index for allocated node IDs.
	Namespace uint16

	// Provider is the PLC collaborator.
	Provider tag.Provider

	// Subscriptions is the client subscription manager. Optional; when
	// set it is wired as a bridge observer while active and cleared on
	// teardown.
	Subscriptions *subscription.Manager

	// Logger for debug output (optional).
	Logger *slog.Logger

	// Events receives bridge events (optional).
	Events blog.Logger
}

// Manager is the node manager facade the protocol server framework
// drives.
type Manager struct {
	// opMu serializes CreateAddressSpace/DeleteAddressSpace end to end.
	// It is distinct from mu so lookups never wait on device I/O.
	opMu sync.Mutex

	// mu guards the short structural sections that install or clear
	// the tree. Never held during device I/O.
	mu sync.RWMutex

	config     Config
	alloc      *space.Allocator
	bridge     *bridge.Bridge
	logger     *slog.Logger
	events     blog.Logger
	state      State
	tree       *space.Tree
	deviceSubs []tag.Subscription
	generation uint64

	// removeObserver detaches the client subscription manager from the
	// bridge; set during build, called during teardown. Guarded by opMu.
	removeObserver func()
}

// NewManager creates a manager in the Unbuilt state.
func NewManager(config Config) *Manager {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	events := config.Events
	if events == nil {
		events = blog.NoopLogger{}
	}
	return &Manager{
		config: config,
		alloc:  space.NewAllocator(config.Namespace),
		bridge: bridge.New(config.Provider, logger, events),
		logger: logger,
		events: events,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Tree returns the active tree, or nil when Unbuilt.
func (m *Manager) Tree() *space.Tree {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree
}

// Bridge returns the sync bridge.
func (m *Manager) Bridge() *bridge.Bridge {
	return m.bridge
}

// CreateAddressSpace builds the tree under the given external root and
// activates the manager.
//
// Build failures do not fail the call: the partial tree is installed
// and the error is reported through the logger, favoring degraded
// availability over a failed server startup. An error is returned only
// when an address space is already active.
func (m *Manager) CreateAddressSpace(ctx context.Context, ext ExternalRoot) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if m.State() == StateActive {
		return ErrAlreadyActive
	}

	rootName := ext.BrowseName
	if rootName == "" {
		rootName = "Tags"
	}
	root := space.NewFolderNode(m.alloc.Next(), nil, rootName)

	// Device I/O happens here, before any structural section.
	builder := space.NewBuilder(m.alloc, m.config.Provider, m.logger)
	result, buildErr := builder.Build(ctx, root, m.bridge.OnDeviceChange)
	if buildErr != nil {
		m.logger.Error("address space build incomplete, registering partial tree", "err", buildErr)
	}

	m.mu.Lock()
	m.tree = result.Tree
	m.deviceSubs = result.Subscriptions
	m.state = StateActive
	m.generation++
	generation := m.generation
	m.mu.Unlock()

	m.bridge.Bind(result.Tree)
	if m.config.Subscriptions != nil {
		m.removeObserver = m.bridge.AddObserver(m.config.Subscriptions)
	}

	m.events.Log(blog.Event{
		Timestamp: time.Now(),
		Category:  blog.CategoryBuild,
		Origin:    blog.OriginBridge,
		Build: &blog.BuildEvent{
			Folders:       result.Tree.FolderCount(),
			Variables:     result.Tree.VariableCount(),
			Subscriptions: len(result.Subscriptions),
			Partial:       buildErr != nil,
		},
	})

	m.logger.Info("address space active",
		"generation", generation,
		"variables", result.Tree.VariableCount())

	return nil
}

// DeleteAddressSpace tears the address space down: every device
// subscription registered during build is cancelled, client
// subscriptions are cleared, and the maps are released. Calling it
// when already Unbuilt is a no-op.
func (m *Manager) DeleteAddressSpace() {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	if m.state == StateUnbuilt {
		m.mu.Unlock()
		return
	}
	subs := m.deviceSubs
	m.deviceSubs = nil
	m.tree = nil
	m.state = StateUnbuilt
	m.mu.Unlock()

	m.bridge.Reset()
	if m.removeObserver != nil {
		m.removeObserver()
		m.removeObserver = nil
	}
	if m.config.Subscriptions != nil {
		m.config.Subscriptions.ClearAll()
	}

	// Cancellation may round-trip to the device; runs outside mu.
	for _, sub := range subs {
		sub.Cancel()
	}

	m.events.Log(blog.Event{
		Timestamp: time.Now(),
		Category:  blog.CategoryTeardown,
		Origin:    blog.OriginBridge,
	})

	m.logger.Info("address space released", "device_subscriptions", len(subs))
}

// GetNodeHandle returns a handle for the node with the given
// identifier in the active tree.
func (m *Manager) GetNodeHandle(id space.NodeID) (Handle, error) {
	m.mu.RLock()
	tree := m.tree
	generation := m.generation
	active := m.state == StateActive
	m.mu.RUnlock()

	if !active {
		return Handle{}, ErrNotActive
	}
	if _, err := tree.NodeByID(id); err != nil {
		return Handle{}, err
	}
	return Handle{id: id, generation: generation}, nil
}

// ValidateNode resolves a handle against the currently active tree.
// Handles issued for a previous address space fail with
// ErrStaleHandle.
func (m *Manager) ValidateNode(h Handle) (space.Node, error) {
	m.mu.RLock()
	tree := m.tree
	generation := m.generation
	active := m.state == StateActive
	m.mu.RUnlock()

	if !active {
		return nil, ErrNotActive
	}
	if h.generation != generation {
		return nil, ErrStaleHandle
	}
	return tree.NodeByID(h.id)
}

// ReadValue serves the framework's per-node read callback: a live
// read-through for variable handles.
func (m *Manager) ReadValue(ctx context.Context, h Handle) (any, time.Time, space.Quality, error) {
	node, err := m.ValidateNode(h)
	if err != nil {
		return nil, time.Time{}, space.QualityBad, err
	}
	variable, ok := node.(*space.VariableNode)
	if !ok {
		return nil, time.Time{}, space.QualityBad, fmt.Errorf("%w: node %s has no value", space.ErrNodeNotFound, h.id)
	}
	return m.bridge.ReadThrough(ctx, variable.Path())
}

// WriteValue serves the framework's per-node write callback: a
// write-through for variable handles.
func (m *Manager) WriteValue(ctx context.Context, h Handle, value any) error {
	node, err := m.ValidateNode(h)
	if err != nil {
		return err
	}
	variable, ok := node.(*space.VariableNode)
	if !ok {
		return fmt.Errorf("%w: node %s has no value", space.ErrNodeNotFound, h.id)
	}
	return m.bridge.WriteThrough(ctx, variable.Path(), value)
}

// DeriveChildID serves the framework's node-identity hook, delegating
// to the manager-owned allocator.
func (m *Manager) DeriveChildID(parent, child space.NodeID, name string) space.NodeID {
	return m.alloc.ChildID(parent, child, name)
}
