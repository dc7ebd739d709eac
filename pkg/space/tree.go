package space

import (
	"errors"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
)

// Tree errors.
var (
	ErrNodeNotFound = errors.New("node not found")
)

// Tree is a built address space: the root folder plus every folder
// and variable node, indexed by identifier and by tag path. Shape is
// immutable after Build; lookups need no locking.
type Tree struct {
	root *FolderNode

	// folders keyed by folded cumulative dotted prefix.
	folders map[string]*FolderNode

	// byID indexes every node (folders and variables).
	byID map[NodeID]Node

	// byPath indexes variables by folded tag path.
	byPath map[string]*VariableNode

	// variables in catalog order.
	variables []*VariableNode
}

// newTree creates an empty tree around the given root folder.
func newTree(root *FolderNode) *Tree {
	t := &Tree{
		root:    root,
		folders: make(map[string]*FolderNode),
		byID:    make(map[NodeID]Node),
		byPath:  make(map[string]*VariableNode),
	}
	t.byID[root.NodeID()] = root
	return t
}

// Root returns the catalog root folder.
func (t *Tree) Root() *FolderNode {
	return t.root
}

// NodeByID looks up any node by identifier.
func (t *Tree) NodeByID(id NodeID) (Node, error) {
	n, ok := t.byID[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return n, nil
}

// FolderByKey looks up a folder by its dotted prefix key
// (case-insensitive).
func (t *Tree) FolderByKey(key tag.Path) (*FolderNode, bool) {
	f, ok := t.folders[key.Fold()]
	return f, ok
}

// VariableByPath looks up a variable by tag path (case-insensitive).
func (t *Tree) VariableByPath(path tag.Path) (*VariableNode, bool) {
	v, ok := t.byPath[path.Fold()]
	return v, ok
}

// Variables returns all variable nodes in catalog order.
func (t *Tree) Variables() []*VariableNode {
	return t.variables
}

// FolderCount returns the number of folders, excluding the root.
func (t *Tree) FolderCount() int {
	return len(t.folders)
}

// VariableCount returns the number of variable nodes.
func (t *Tree) VariableCount() int {
	return len(t.variables)
}

// addFolder registers a folder under its prefix key.
func (t *Tree) addFolder(key tag.Path, f *FolderNode) {
	t.folders[key.Fold()] = f
	t.byID[f.NodeID()] = f
}

// addVariable registers a variable under its tag path.
func (t *Tree) addVariable(v *VariableNode) {
	t.byPath[v.Path().Fold()] = v
	t.byID[v.NodeID()] = v
	t.variables = append(t.variables, v)
}
