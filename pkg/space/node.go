package space

import (
	"sync"
	"time"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/typemap"
)

// Quality is the status of a variable node's current value.
type Quality uint8

const (
	// QualityUncertain means no value has been established yet.
	QualityUncertain Quality = iota

	// QualityGood means the value reflects a successful device
	// round-trip or push.
	QualityGood

	// QualityBad means the last device round-trip for this node
	// failed.
	QualityBad
)

// String returns the quality name.
func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityBad:
		return "bad"
	default:
		return "uncertain"
	}
}

// Node is implemented by folder and variable nodes.
type Node interface {
	// NodeID returns the node's identifier.
	NodeID() NodeID

	// BrowseName returns the node's symbolic name (last path segment).
	BrowseName() string
}

// FolderNode groups nodes under a shared dotted prefix. Folders are
// immutable after the tree is built.
type FolderNode struct {
	id     NodeID
	parent *FolderNode // nil only for the catalog root
	name   string      // last raw segment of the folder key
}

// NewFolderNode creates a folder under the given parent (nil for the
// catalog root).
func NewFolderNode(id NodeID, parent *FolderNode, name string) *FolderNode {
	return &FolderNode{id: id, parent: parent, name: name}
}

// NodeID returns the folder's identifier.
func (f *FolderNode) NodeID() NodeID { return f.id }

// BrowseName returns the folder's symbolic name.
func (f *FolderNode) BrowseName() string { return f.name }

// Parent returns the parent folder, or nil for the root.
func (f *FolderNode) Parent() *FolderNode { return f.parent }

// VariableNode represents one catalog tag path. Shape fields are
// immutable after build; value, timestamp and quality mutate under
// the node's own lock for the process lifetime.
type VariableNode struct {
	id        NodeID
	parent    *FolderNode
	path      tag.Path
	name      string
	dataType  typemap.DataType
	arrayRank int // 0 = scalar, 1 = single-dimension array
	readOnly  bool

	mu        sync.RWMutex
	value     any
	timestamp time.Time
	quality   Quality
}

// VariableSpec carries the immutable shape of a variable node.
type VariableSpec struct {
	ID       NodeID
	Parent   *FolderNode
	Path     tag.Path
	Name     string
	DataType typemap.DataType
	IsArray  bool
	ReadOnly bool
}

// NewVariableNode creates a variable node with no value
// (QualityUncertain).
func NewVariableNode(spec VariableSpec) *VariableNode {
	rank := 0
	if spec.IsArray {
		rank = 1
	}
	return &VariableNode{
		id:        spec.ID,
		parent:    spec.Parent,
		path:      spec.Path,
		name:      spec.Name,
		dataType:  spec.DataType,
		arrayRank: rank,
		readOnly:  spec.ReadOnly,
	}
}

// NodeID returns the variable's identifier.
func (v *VariableNode) NodeID() NodeID { return v.id }

// BrowseName returns the variable's symbolic name.
func (v *VariableNode) BrowseName() string { return v.name }

// Parent returns the folder the variable sits in.
func (v *VariableNode) Parent() *FolderNode { return v.parent }

// Path returns the catalog tag path the variable represents.
func (v *VariableNode) Path() tag.Path { return v.path }

// DataType returns the canonical data type.
func (v *VariableNode) DataType() typemap.DataType { return v.dataType }

// ArrayRank returns 0 for scalars and 1 for single-dimension arrays.
func (v *VariableNode) ArrayRank() int { return v.arrayRank }

// ReadOnly reports whether writes to the variable are rejected.
func (v *VariableNode) ReadOnly() bool { return v.readOnly }

// Value returns the current value, its source timestamp and quality
// as one atomic snapshot.
func (v *VariableNode) Value() (any, time.Time, Quality) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value, v.timestamp, v.quality
}

// SetValue atomically replaces the value, timestamp and quality.
func (v *VariableNode) SetValue(value any, ts time.Time, quality Quality) {
	v.mu.Lock()
	v.value = value
	v.timestamp = ts
	v.quality = quality
	v.mu.Unlock()
}

// MarkBad flags the node's value as bad without touching the cached
// value, stamping the failure time.
func (v *VariableNode) MarkBad(ts time.Time) {
	v.mu.Lock()
	v.timestamp = ts
	v.quality = QualityBad
	v.mu.Unlock()
}
