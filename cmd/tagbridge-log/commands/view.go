// Package commands implements the tagbridge-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Category *log.Category
	Origin   *log.Origin
	Path     string
}

// RunView prints matching events from the capture file in a
// human-readable format.
func RunView(path string, filter ViewFilter, w io.Writer) error {
	readFilter := log.Filter{Path: filter.Path}
	readFilter.Category = filter.Category
	readFilter.Origin = filter.Origin

	reader, err := log.NewFilteredReader(path, readFilter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [bridge:id] ORIGIN CATEGORY path
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	bridgeID := shortenBridgeID(event.BridgeID)

	fmt.Fprintf(w, "%s [bridge:%s] %-6s %s", ts, bridgeID, event.Origin, event.Category)
	if event.Path != "" {
		fmt.Fprintf(w, " %s", event.Path)
	}
	fmt.Fprintln(w)

	if event.NodeID != "" {
		fmt.Fprintf(w, "  Node: %s\n", event.NodeID)
	}

	switch {
	case event.Build != nil:
		formatBuildDetails(w, event.Build)
	case event.Change != nil:
		fmt.Fprintf(w, "  Value: %v (quality %d)\n", event.Change.Value, event.Change.Quality)
	case event.Access != nil:
		formatAccessDetails(w, event.Access)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenBridgeID returns the first 8 characters of the bridge ID.
func shortenBridgeID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatBuildDetails(w io.Writer, build *log.BuildEvent) {
	fmt.Fprintf(w, "  Folders: %d  Variables: %d  Subscriptions: %d",
		build.Folders, build.Variables, build.Subscriptions)
	if build.Partial {
		fmt.Fprintf(w, " (partial)")
	}
	fmt.Fprintln(w)
}

func formatAccessDetails(w io.Writer, access *log.AccessEvent) {
	fmt.Fprintf(w, "  Value: %v\n", access.Value)
	if access.RoundTrip > 0 {
		fmt.Fprintf(w, "  RoundTrip: %s\n", formatDuration(access.RoundTrip))
	}
}

func formatErrorDetails(w io.Writer, errEvent *log.ErrorEvent) {
	fmt.Fprintf(w, "  Error: %s\n", errEvent.Message)
	if errEvent.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", errEvent.Context)
	}
}

// formatDuration renders sub-millisecond durations in microseconds.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return d.Round(10 * time.Microsecond).String()
}

// ParseCategoryFlag maps a category flag value to a log.Category.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "build":
		return log.CategoryBuild, nil
	case "change":
		return log.CategoryChange, nil
	case "read":
		return log.CategoryRead, nil
	case "write":
		return log.CategoryWrite, nil
	case "teardown":
		return log.CategoryTeardown, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category: %s (build, change, read, write, teardown, error)", s)
	}
}

// ParseOriginFlag maps an origin flag value to a log.Origin.
func ParseOriginFlag(s string) (log.Origin, error) {
	switch strings.ToLower(s) {
	case "bridge":
		return log.OriginBridge, nil
	case "device":
		return log.OriginDevice, nil
	case "client":
		return log.OriginClient, nil
	default:
		return 0, fmt.Errorf("unknown origin: %s (bridge, device, client)", s)
	}
}
