package space

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/typemap"
)

// Builder constructs an address-space tree from the flat tag catalog.
type Builder struct {
	alloc    *Allocator
	provider tag.Provider
	logger   *slog.Logger
}

// BuildResult is the outcome of a build: the tree (possibly partial on
// error) and the device subscriptions registered during the build.
// The caller owns the subscriptions and must cancel them on teardown.
type BuildResult struct {
	Tree          *Tree
	Subscriptions []tag.Subscription
}

// NewBuilder creates a builder issuing identifiers from alloc and
// reading the catalog from provider. logger may be nil.
func NewBuilder(alloc *Allocator, provider tag.Provider, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{alloc: alloc, provider: provider, logger: logger}
}

// Build enumerates the catalog and populates a tree under root.
//
// Every catalog path yields exactly one variable node. Container paths
// (paths some other path extends with a dot) additionally yield the
// folder chain of their cumulative prefixes; the container's own
// variable node sits inside its folder as a placeholder entry. Leaf
// values are fetched synchronously; a change subscription is
// registered per path and delivered to onChange.
//
// Build is best-effort: enumeration or description failures stop
// population early but the partial result is still returned alongside
// the error, so the caller can register what was built.
func (b *Builder) Build(ctx context.Context, root *FolderNode, onChange tag.ChangeFunc) (*BuildResult, error) {
	result := &BuildResult{Tree: newTree(root)}

	paths, err := b.provider.ListPaths(ctx)
	if err != nil {
		return result, fmt.Errorf("list tag catalog: %w", err)
	}

	paths = dedupe(paths, b.logger)
	index := newCatalogIndex(paths)

	b.logger.Debug("building address space", "tags", len(paths))

	for _, p := range paths {
		if err := b.buildPath(ctx, result, index, p, onChange); err != nil {
			return result, err
		}
	}

	b.logger.Info("address space built",
		"folders", result.Tree.FolderCount(),
		"variables", result.Tree.VariableCount(),
		"subscriptions", len(result.Subscriptions))

	return result, nil
}

// buildPath creates the folder chain and variable node for one path.
// Only description failures propagate; per-tag read and subscribe
// failures are logged and skipped.
func (b *Builder) buildPath(ctx context.Context, result *BuildResult, index *catalogIndex, p tag.Path, onChange tag.ChangeFunc) error {
	tree := result.Tree
	isContainer := index.isContainer(p)

	// Folder key chain: every cumulative prefix for containers, every
	// prefix short of the leaf's own name for leaves.
	chain := p.Prefixes()
	if !isContainer {
		chain = chain[:len(chain)-1]
	}

	parent := tree.Root()
	for _, key := range chain {
		if existing, ok := tree.FolderByKey(key); ok {
			parent = existing
			continue
		}
		folder := NewFolderNode(b.alloc.Next(), parent, key.Name())
		tree.addFolder(key, folder)
		parent = folder
	}

	// Node parent: the container's own folder, or the leaf's parent
	// folder; root when no folder exists (single-segment leaf).
	nodeParent := tree.Root()
	parentKey := p
	if !isContainer {
		parentKey = p.Parent()
	}
	if parentKey != "" {
		if folder, ok := tree.FolderByKey(parentKey); ok {
			nodeParent = folder
		}
	}

	desc, err := b.provider.Describe(ctx, p)
	if err != nil {
		return fmt.Errorf("describe tag %q: %w", p, err)
	}

	node := NewVariableNode(VariableSpec{
		ID:       b.alloc.Next(),
		Parent:   nodeParent,
		Path:     p,
		Name:     p.Name(),
		DataType: typemap.Map(desc),
		IsArray:  desc.IsArray,
		ReadOnly: desc.IsReadOnly || isContainer,
	})
	tree.addVariable(node)

	// Containers keep an unset placeholder value; leaves get a
	// synchronous initial fetch.
	if !desc.IsContainer() {
		value, err := b.provider.Read(ctx, p)
		if err != nil {
			b.logger.Warn("initial read failed", "path", p, "err", err)
			node.MarkBad(time.Now())
		} else {
			node.SetValue(value, time.Now(), QualityGood)
		}
	}

	sub, err := b.provider.Subscribe(p, onChange)
	if err != nil {
		b.logger.Warn("subscribe failed", "path", p, "err", err)
		return nil
	}
	result.Subscriptions = append(result.Subscriptions, sub)
	return nil
}

// catalogIndex answers container/leaf classification over the whole
// catalog using a sorted list of folded paths: a path is a container
// iff the first sorted entry at or after "<path>." actually starts
// with it. O(log n) per query instead of a full scan.
type catalogIndex struct {
	sorted []string
}

func newCatalogIndex(paths []tag.Path) *catalogIndex {
	sorted := make([]string, len(paths))
	for i, p := range paths {
		sorted[i] = p.Fold()
	}
	sort.Strings(sorted)
	return &catalogIndex{sorted: sorted}
}

func (c *catalogIndex) isContainer(p tag.Path) bool {
	prefix := p.Fold() + tag.PathSeparator
	i := sort.SearchStrings(c.sorted, prefix)
	return i < len(c.sorted) && strings.HasPrefix(c.sorted[i], prefix)
}

// dedupe drops empty and case-insensitively duplicated paths,
// preserving catalog order and first-seen spelling.
func dedupe(paths []tag.Path, logger *slog.Logger) []tag.Path {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0:0]
	for _, p := range paths {
		if p == "" {
			continue
		}
		key := p.Fold()
		if _, dup := seen[key]; dup {
			logger.Warn("duplicate tag path in catalog", "path", p)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
