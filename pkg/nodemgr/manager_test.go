package nodemgr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/space"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/subscription"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
)

func newTestProvider() *tag.SimProvider {
	p := tag.NewSimProvider()
	p.AddTag("Motor", tag.Descriptor{TypeName: "FB_Drive", Children: []tag.Descriptor{{TypeName: "DINT"}}}, nil)
	p.AddTag("Motor.Speed", tag.Descriptor{TypeName: "DINT"}, int32(100))
	p.AddTag("Motor.Current", tag.Descriptor{TypeName: "REAL", IsReadOnly: true}, float32(1.5))
	return p
}

func newTestManager(p tag.Provider) *Manager {
	return NewManager(Config{Namespace: 1, Provider: p})
}

func TestManagerLifecycle(t *testing.T) {
	p := newTestProvider()
	m := newTestManager(p)

	if m.State() != StateUnbuilt {
		t.Errorf("initial state = %s, want UNBUILT", m.State())
	}
	if m.Tree() != nil {
		t.Error("Tree() != nil before create")
	}

	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{BrowseName: "PLC"}); err != nil {
		t.Fatalf("CreateAddressSpace failed: %v", err)
	}
	if m.State() != StateActive {
		t.Errorf("state after create = %s, want ACTIVE", m.State())
	}

	tree := m.Tree()
	if tree == nil {
		t.Fatal("Tree() = nil after create")
	}
	if tree.Root().BrowseName() != "PLC" {
		t.Errorf("root name = %q, want PLC", tree.Root().BrowseName())
	}
	if tree.VariableCount() != 3 {
		t.Errorf("VariableCount = %d, want 3", tree.VariableCount())
	}

	// Second create while active fails.
	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{}); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("second create = %v, want ErrAlreadyActive", err)
	}
}

func TestManagerTeardownReleasesSubscriptions(t *testing.T) {
	p := newTestProvider()
	m := newTestManager(p)

	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{}); err != nil {
		t.Fatalf("CreateAddressSpace failed: %v", err)
	}
	if got := p.SubscriptionCount(); got != 3 {
		t.Fatalf("device subscriptions after create = %d, want 3", got)
	}

	m.DeleteAddressSpace()

	// Teardown must actually cancel every device subscription.
	if got := p.SubscriptionCount(); got != 0 {
		t.Errorf("device subscriptions after teardown = %d, want 0", got)
	}
	if m.State() != StateUnbuilt {
		t.Errorf("state after teardown = %s, want UNBUILT", m.State())
	}
	if m.Tree() != nil {
		t.Error("Tree() != nil after teardown")
	}
}

func TestManagerTeardownIdempotent(t *testing.T) {
	p := newTestProvider()
	m := newTestManager(p)

	// Teardown before build is a no-op.
	m.DeleteAddressSpace()

	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{}); err != nil {
		t.Fatalf("CreateAddressSpace failed: %v", err)
	}
	m.DeleteAddressSpace()
	m.DeleteAddressSpace()

	if got := p.SubscriptionCount(); got != 0 {
		t.Errorf("device subscriptions = %d, want 0", got)
	}
}

func TestManagerTeardownClearsClientSubscriptions(t *testing.T) {
	p := newTestProvider()
	subs := subscription.NewManager()
	m := NewManager(Config{Namespace: 1, Provider: p, Subscriptions: subs})

	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{}); err != nil {
		t.Fatalf("CreateAddressSpace failed: %v", err)
	}
	if _, err := subs.Subscribe([]tag.Path{"Motor.Speed"}, time.Second, time.Minute, nil); err != nil {
		t.Fatalf("client Subscribe failed: %v", err)
	}

	m.DeleteAddressSpace()

	if got := subs.Count(); got != 0 {
		t.Errorf("client subscriptions after teardown = %d, want 0", got)
	}
}

func TestManagerIDsNeverReusedAcrossRebuilds(t *testing.T) {
	p := newTestProvider()
	m := newTestManager(p)

	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	first := make(map[space.NodeID]bool)
	for _, v := range m.Tree().Variables() {
		first[v.NodeID()] = true
	}
	m.DeleteAddressSpace()

	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{}); err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	for _, v := range m.Tree().Variables() {
		if first[v.NodeID()] {
			t.Errorf("identifier %v reused across rebuilds", v.NodeID())
		}
	}
}

func TestManagerHandles(t *testing.T) {
	p := newTestProvider()
	m := newTestManager(p)

	if _, err := m.GetNodeHandle(space.NumericID(1, 1)); !errors.Is(err, ErrNotActive) {
		t.Errorf("GetNodeHandle while unbuilt = %v, want ErrNotActive", err)
	}

	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{}); err != nil {
		t.Fatalf("CreateAddressSpace failed: %v", err)
	}

	node, ok := m.Tree().VariableByPath("Motor.Speed")
	if !ok {
		t.Fatal("Motor.Speed not in tree")
	}

	h, err := m.GetNodeHandle(node.NodeID())
	if err != nil {
		t.Fatalf("GetNodeHandle failed: %v", err)
	}
	resolved, err := m.ValidateNode(h)
	if err != nil {
		t.Fatalf("ValidateNode failed: %v", err)
	}
	if resolved.NodeID() != node.NodeID() {
		t.Errorf("resolved %v, want %v", resolved.NodeID(), node.NodeID())
	}

	if _, err := m.GetNodeHandle(space.NumericID(1, 9999)); !errors.Is(err, space.ErrNodeNotFound) {
		t.Errorf("unknown ID = %v, want ErrNodeNotFound", err)
	}
}

func TestManagerStaleHandleRejected(t *testing.T) {
	p := newTestProvider()
	m := newTestManager(p)

	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	node, _ := m.Tree().VariableByPath("Motor.Speed")
	h, err := m.GetNodeHandle(node.NodeID())
	if err != nil {
		t.Fatalf("GetNodeHandle failed: %v", err)
	}

	m.DeleteAddressSpace()

	if _, err := m.ValidateNode(h); !errors.Is(err, ErrNotActive) {
		t.Errorf("ValidateNode while unbuilt = %v, want ErrNotActive", err)
	}

	// Rebuild: the old handle belongs to the previous generation.
	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{}); err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if _, err := m.ValidateNode(h); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("stale handle = %v, want ErrStaleHandle", err)
	}
}

func TestManagerReadWriteValue(t *testing.T) {
	p := newTestProvider()
	m := newTestManager(p)
	ctx := context.Background()

	if err := m.CreateAddressSpace(ctx, ExternalRoot{}); err != nil {
		t.Fatalf("CreateAddressSpace failed: %v", err)
	}

	node, _ := m.Tree().VariableByPath("Motor.Speed")
	h, err := m.GetNodeHandle(node.NodeID())
	if err != nil {
		t.Fatalf("GetNodeHandle failed: %v", err)
	}

	value, _, quality, err := m.ReadValue(ctx, h)
	if err != nil {
		t.Fatalf("ReadValue failed: %v", err)
	}
	if value != int32(100) || quality != space.QualityGood {
		t.Errorf("ReadValue = (%v, %s), want (100, good)", value, quality)
	}

	if err := m.WriteValue(ctx, h, int32(200)); err != nil {
		t.Fatalf("WriteValue failed: %v", err)
	}
	v, _ := p.Read(ctx, "Motor.Speed")
	if v != int32(200) {
		t.Errorf("device value after WriteValue = %v, want 200", v)
	}

	// Folders have no value.
	folder, _ := m.Tree().FolderByKey("Motor")
	fh, err := m.GetNodeHandle(folder.NodeID())
	if err != nil {
		t.Fatalf("GetNodeHandle(folder) failed: %v", err)
	}
	if _, _, _, err := m.ReadValue(ctx, fh); !errors.Is(err, space.ErrNodeNotFound) {
		t.Errorf("ReadValue on folder = %v, want ErrNodeNotFound", err)
	}
}

func TestManagerPartialBuildStillActivates(t *testing.T) {
	p := newTestProvider()
	failing := &failingListProvider{Provider: p}
	m := newTestManager(failing)

	// Enumeration failure degrades to an empty but active space.
	if err := m.CreateAddressSpace(context.Background(), ExternalRoot{}); err != nil {
		t.Fatalf("CreateAddressSpace returned %v, want nil on partial build", err)
	}
	if m.State() != StateActive {
		t.Errorf("state = %s, want ACTIVE despite build failure", m.State())
	}
	if m.Tree() == nil {
		t.Error("partial tree not installed")
	}
}

func TestManagerDeriveChildID(t *testing.T) {
	m := newTestManager(newTestProvider())

	parent := space.StringID(1, "Motor")
	child := space.NumericID(1, 42)
	if got := m.DeriveChildID(parent, child, "Speed"); got != space.StringID(1, "Motor_Speed") {
		t.Errorf("DeriveChildID(string parent) = %v, want ns=1;s=Motor_Speed", got)
	}

	numParent := space.NumericID(1, 7)
	if got := m.DeriveChildID(numParent, child, "Speed"); got != child {
		t.Errorf("DeriveChildID(numeric parent) = %v, want %v", got, child)
	}
}

// failingListProvider fails catalog enumeration, delegating the rest.
type failingListProvider struct {
	tag.Provider
}

func (p *failingListProvider) ListPaths(ctx context.Context) ([]tag.Path, error) {
	return nil, errors.New("device offline")
}
