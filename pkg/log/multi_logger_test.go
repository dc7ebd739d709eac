package log

import (
	"testing"
	"time"
)

// recordingLogger captures events for assertions.
type recordingLogger struct {
	events []Event
}

func (l *recordingLogger) Log(event Event) {
	l.events = append(l.events, event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	multi := NewMultiLogger(a, b)

	event := Event{Timestamp: time.Now(), Category: CategoryWrite, Path: "Motor.Speed"}
	multi.Log(event)

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("fan-out = (%d, %d), want (1, 1)", len(a.events), len(b.events))
	}
	if a.events[0].Path != "Motor.Speed" || b.events[0].Path != "Motor.Speed" {
		t.Error("event content lost in fan-out")
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	// A MultiLogger with no sinks discards events without panicking.
	NewMultiLogger().Log(Event{Timestamp: time.Now()})
}
