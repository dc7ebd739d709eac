package space

import (
	"testing"
)

func TestNodeIDString(t *testing.T) {
	if got := NumericID(1, 42).String(); got != "ns=1;i=42" {
		t.Errorf("numeric String() = %q, want ns=1;i=42", got)
	}
	if got := StringID(2, "Motor_Speed").String(); got != "ns=2;s=Motor_Speed" {
		t.Errorf("string String() = %q, want ns=2;s=Motor_Speed", got)
	}
}

func TestNodeIDPredicates(t *testing.T) {
	if NumericID(1, 1).IsString() {
		t.Error("numeric ID reported as string")
	}
	if !StringID(1, "x").IsString() {
		t.Error("string ID not reported as string")
	}
	if !(NodeID{}).IsZero() {
		t.Error("zero ID not reported as zero")
	}
	if NumericID(0, 1).IsZero() {
		t.Error("issued ID reported as zero")
	}
}

func TestAllocatorSequential(t *testing.T) {
	alloc := NewAllocator(3)

	first := alloc.Next()
	second := alloc.Next()

	if first != NumericID(3, 1) {
		t.Errorf("first ID = %v, want ns=3;i=1", first)
	}
	if second != NumericID(3, 2) {
		t.Errorf("second ID = %v, want ns=3;i=2", second)
	}
	if got := alloc.Issued(); got != 2 {
		t.Errorf("Issued() = %d, want 2", got)
	}
}

func TestAllocatorNeverReuses(t *testing.T) {
	alloc := NewAllocator(1)

	seen := make(map[NodeID]bool)
	for i := 0; i < 1000; i++ {
		id := alloc.Next()
		if seen[id] {
			t.Fatalf("identifier %v issued twice", id)
		}
		seen[id] = true
	}
}

func TestChildIDStringParent(t *testing.T) {
	alloc := NewAllocator(1)

	parent := StringID(1, "Motor")
	child := alloc.Next()

	got := alloc.ChildID(parent, child, "Speed")
	if got != StringID(1, "Motor_Speed") {
		t.Errorf("ChildID = %v, want ns=1;s=Motor_Speed", got)
	}
}

func TestChildIDNumericParent(t *testing.T) {
	alloc := NewAllocator(1)

	parent := alloc.Next()
	child := alloc.Next()

	if got := alloc.ChildID(parent, child, "Speed"); got != child {
		t.Errorf("ChildID = %v, want the child's own ID %v", got, child)
	}
}
