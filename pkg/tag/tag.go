package tag

import (
	"strings"
)

// PathSeparator separates segments within a tag path.
const PathSeparator = "."

// Path is a dot-separated tag path as reported by the PLC
// (e.g. "Motor.Speed"). Identity is case-insensitive; display is
// case-preserving.
type Path string

// Fold returns the canonical lowercase form used for identity and
// map keys.
func (p Path) Fold() string {
	return strings.ToLower(string(p))
}

// Equal reports whether two paths name the same tag.
func (p Path) Equal(other Path) bool {
	return strings.EqualFold(string(p), string(other))
}

// Segments returns the raw path segments in order.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), PathSeparator)
}

// Name returns the last segment, the tag's own symbolic name.
func (p Path) Name() string {
	if i := strings.LastIndex(string(p), PathSeparator); i >= 0 {
		return string(p)[i+1:]
	}
	return string(p)
}

// Parent returns the path with the last segment removed, or "" if the
// path has a single segment.
func (p Path) Parent() Path {
	if i := strings.LastIndex(string(p), PathSeparator); i >= 0 {
		return p[:i]
	}
	return ""
}

// IsAncestorOf reports whether other lies strictly below p, i.e. other
// begins with p followed by a separator. The comparison is
// case-insensitive.
func (p Path) IsAncestorOf(other Path) bool {
	prefix := p.Fold() + PathSeparator
	return strings.HasPrefix(other.Fold(), prefix)
}

// Prefixes returns every cumulative dotted prefix of the path,
// shortest first, including the full path itself.
// "A.B.C" yields ["A", "A.B", "A.B.C"].
func (p Path) Prefixes() []Path {
	if p == "" {
		return nil
	}
	s := string(p)
	var out []Path
	for i := 0; i < len(s); i++ {
		if s[i] == PathSeparator[0] {
			out = append(out, Path(s[:i]))
		}
	}
	return append(out, p)
}

// String returns the display form of the path.
func (p Path) String() string {
	return string(p)
}

// Descriptor carries the per-path metadata reported by the PLC.
type Descriptor struct {
	// TypeName is the vendor type name (e.g. "DINT", "FB_Motor").
	TypeName string

	// BaseTypeName is the underlying primitive for aliased types.
	// When set it takes precedence over TypeName for type mapping.
	BaseTypeName string

	// IsArray indicates a single-dimension array tag.
	IsArray bool

	// IsReadOnly indicates the tag rejects writes.
	IsReadOnly bool

	// Comment is the human-readable description from the PLC project.
	Comment string

	// Children holds member descriptors. Non-empty iff the tag is a
	// struct/container.
	Children []Descriptor
}

// IsContainer reports whether the descriptor describes a struct tag
// with members of its own.
func (d *Descriptor) IsContainer() bool {
	return len(d.Children) > 0
}
