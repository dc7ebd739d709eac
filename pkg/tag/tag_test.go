package tag

import (
	"testing"
)

func TestPathFold(t *testing.T) {
	if got := Path("Motor.Speed").Fold(); got != "motor.speed" {
		t.Errorf("Fold() = %q, want %q", got, "motor.speed")
	}
}

func TestPathEqual(t *testing.T) {
	tests := []struct {
		a, b Path
		want bool
	}{
		{"Motor.Speed", "motor.speed", true},
		{"Motor.Speed", "MOTOR.SPEED", true},
		{"Motor.Speed", "Motor.Speed", true},
		{"Motor.Speed", "Motor.Current", false},
		{"Motor", "Motor.Speed", false},
	}

	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("Path(%q).Equal(%q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPathName(t *testing.T) {
	tests := []struct {
		path Path
		want string
	}{
		{"Motor.Speed", "Speed"},
		{"Line1.Conveyor.Running", "Running"},
		{"Heartbeat", "Heartbeat"},
	}

	for _, tt := range tests {
		if got := tt.path.Name(); got != tt.want {
			t.Errorf("Path(%q).Name() = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPathParent(t *testing.T) {
	tests := []struct {
		path Path
		want Path
	}{
		{"Line1.Conveyor.Running", "Line1.Conveyor"},
		{"Motor.Speed", "Motor"},
		{"Heartbeat", ""},
	}

	for _, tt := range tests {
		if got := tt.path.Parent(); got != tt.want {
			t.Errorf("Path(%q).Parent() = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPathSegments(t *testing.T) {
	segs := Path("A.B.C").Segments()
	want := []string{"A", "B", "C"}
	if len(segs) != len(want) {
		t.Fatalf("Segments() = %v, want %v", segs, want)
	}
	for i := range want {
		if segs[i] != want[i] {
			t.Errorf("Segments()[%d] = %q, want %q", i, segs[i], want[i])
		}
	}

	if got := Path("").Segments(); got != nil {
		t.Errorf("empty path Segments() = %v, want nil", got)
	}
}

func TestPathIsAncestorOf(t *testing.T) {
	tests := []struct {
		ancestor, other Path
		want            bool
	}{
		{"Motor", "Motor.Speed", true},
		{"motor", "Motor.Speed", true},
		{"Motor", "Motor.Speed.Raw", true},
		{"Motor", "Motor", false},
		{"Motor", "MotorB.Speed", false},
		{"Motor.Speed", "Motor", false},
	}

	for _, tt := range tests {
		if got := tt.ancestor.IsAncestorOf(tt.other); got != tt.want {
			t.Errorf("Path(%q).IsAncestorOf(%q) = %v, want %v",
				tt.ancestor, tt.other, got, tt.want)
		}
	}
}

func TestPathPrefixes(t *testing.T) {
	got := Path("A.B.C").Prefixes()
	want := []Path{"A", "A.B", "A.B.C"}
	if len(got) != len(want) {
		t.Fatalf("Prefixes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Prefixes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	single := Path("Heartbeat").Prefixes()
	if len(single) != 1 || single[0] != "Heartbeat" {
		t.Errorf("single-segment Prefixes() = %v, want [Heartbeat]", single)
	}

	if got := Path("").Prefixes(); got != nil {
		t.Errorf("empty path Prefixes() = %v, want nil", got)
	}
}

func TestDescriptorIsContainer(t *testing.T) {
	leaf := &Descriptor{TypeName: "DINT"}
	if leaf.IsContainer() {
		t.Error("leaf descriptor reported as container")
	}

	container := &Descriptor{
		TypeName: "FB_Motor",
		Children: []Descriptor{{TypeName: "DINT"}},
	}
	if !container.IsContainer() {
		t.Error("struct descriptor not reported as container")
	}
}
