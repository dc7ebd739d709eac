package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func writeCapture(t *testing.T, events []Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bridge.cbor")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, event := range events {
		logger.Log(event)
	}
	logger.Close()
	return path
}

func TestReaderReadsAll(t *testing.T) {
	base := time.Now().UTC()
	path := writeCapture(t, []Event{
		{Timestamp: base, Category: CategoryBuild, Origin: OriginBridge},
		{Timestamp: base.Add(time.Second), Category: CategoryChange, Origin: OriginDevice, Path: "Motor.Speed"},
		{Timestamp: base.Add(2 * time.Second), Category: CategoryRead, Origin: OriginClient, Path: "Motor.Speed"},
	})

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Errorf("read %d events, want 3", count)
	}
}

func TestReaderCategoryFilter(t *testing.T) {
	base := time.Now().UTC()
	path := writeCapture(t, []Event{
		{Timestamp: base, Category: CategoryChange, Origin: OriginDevice},
		{Timestamp: base, Category: CategoryRead, Origin: OriginClient},
		{Timestamp: base, Category: CategoryChange, Origin: OriginDevice},
	})

	category := CategoryChange
	reader, err := NewFilteredReader(path, Filter{Category: &category})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if event.Category != CategoryChange {
			t.Errorf("filter leaked category %s", event.Category)
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d events, want 2", count)
	}
}

func TestReaderPathAndTimeFilter(t *testing.T) {
	base := time.Now().UTC()
	path := writeCapture(t, []Event{
		{Timestamp: base, Category: CategoryChange, Path: "Motor.Speed"},
		{Timestamp: base.Add(time.Minute), Category: CategoryChange, Path: "Motor.Speed"},
		{Timestamp: base.Add(time.Minute), Category: CategoryChange, Path: "Heartbeat"},
	})

	start := base.Add(30 * time.Second)
	reader, err := NewFilteredReader(path, Filter{Path: "Motor.Speed", TimeStart: &start})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.Path != "Motor.Speed" || event.Timestamp.Before(start) {
		t.Errorf("filtered event = %+v", event)
	}
	if _, err := reader.Next(); err != io.EOF {
		t.Errorf("expected EOF after single match, got %v", err)
	}
}

func TestReaderBridgeIDFilter(t *testing.T) {
	base := time.Now().UTC()
	path := writeCapture(t, []Event{
		{Timestamp: base, BridgeID: "a"},
		{Timestamp: base, BridgeID: "b"},
	})

	reader, err := NewFilteredReader(path, Filter{BridgeID: "b"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.BridgeID != "b" {
		t.Errorf("BridgeID = %q, want b", event.BridgeID)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.cbor")); err == nil {
		t.Error("NewReader succeeded on missing file")
	}
}
