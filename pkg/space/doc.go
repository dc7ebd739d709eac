// Package space implements the bridge's address-space model.
//
// # Tree Construction
//
// The flat tag catalog is folded into a folder/variable tree:
//
//	Root
//	├── Motor                (folder, key "motor")
//	│   ├── Motor            (variable: the container's own placeholder)
//	│   ├── Speed            (variable, leaf "Motor.Speed")
//	│   └── Running          (variable, leaf "Motor.Running")
//	└── Line1                (folder, key "line1")
//	    └── ...
//
// A path is a container iff some other catalog path begins with it
// plus a dot (case-insensitive). Every catalog path yields exactly one
// variable node; container paths additionally yield the folder holding
// their members, and their variable node sits inside that folder as a
// placeholder for the container's own value entry. Folder identity is
// keyed by the folded cumulative dotted prefix, so paths sharing a
// prefix share one folder.
//
// # Identity
//
// Node identifiers are issued by an Allocator scoped to one namespace
// instance: sequential numeric IDs, never reused across rebuilds. The
// allocator is always passed in explicitly; there is no process-wide
// identity source.
//
// # Mutability
//
// Tree shape is immutable once built. Only a variable node's value,
// timestamp and quality mutate afterwards, under the node's own lock.
package space
