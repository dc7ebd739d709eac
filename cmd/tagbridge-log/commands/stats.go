package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	EventsByOrigin   map[log.Origin]int
	Paths            map[string]int
	Bridges          map[string]*BridgeStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// BridgeStats holds statistics for a single bridge instance.
type BridgeStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	Builds    int
	Teardowns int
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		EventsByOrigin:   make(map[log.Origin]int),
		Paths:            make(map[string]int),
		Bridges:          make(map[string]*BridgeStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsByOrigin[event.Origin]++
		if event.Path != "" {
			stats.Paths[event.Path]++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		bridge, ok := stats.Bridges[event.BridgeID]
		if !ok {
			bridge = &BridgeStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Bridges[event.BridgeID] = bridge
		}
		bridge.Events++
		if event.Timestamp.After(bridge.LastSeen) {
			bridge.LastSeen = event.Timestamp
		}
		switch event.Category {
		case log.CategoryBuild:
			bridge.Builds++
		case log.CategoryTeardown:
			bridge.Teardowns++
		}

		if event.Error != nil {
			stats.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Bridge Event Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{
		log.CategoryBuild, log.CategoryChange, log.CategoryRead,
		log.CategoryWrite, log.CategoryTeardown, log.CategoryError,
	} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Origin:")
	for _, origin := range []log.Origin{log.OriginBridge, log.OriginDevice, log.OriginClient} {
		if count := stats.EventsByOrigin[origin]; count > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", origin.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Busiest tag paths, top ten.
	if len(stats.Paths) > 0 {
		type pathCount struct {
			path  string
			count int
		}
		paths := make([]pathCount, 0, len(stats.Paths))
		for p, c := range stats.Paths {
			paths = append(paths, pathCount{p, c})
		}
		sort.Slice(paths, func(i, j int) bool {
			if paths[i].count != paths[j].count {
				return paths[i].count > paths[j].count
			}
			return paths[i].path < paths[j].path
		})
		if len(paths) > 10 {
			paths = paths[:10]
		}

		fmt.Fprintln(w, "Busiest Paths:")
		for _, pc := range paths {
			fmt.Fprintf(w, "  %-40s %d\n", pc.path, pc.count)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Bridge Instances: %d\n", len(stats.Bridges))
	if len(stats.Bridges) > 0 {
		type bridgeInfo struct {
			id    string
			stats *BridgeStats
		}
		bridges := make([]bridgeInfo, 0, len(stats.Bridges))
		for id, bs := range stats.Bridges {
			bridges = append(bridges, bridgeInfo{id, bs})
		}
		sort.Slice(bridges, func(i, j int) bool {
			return bridges[i].stats.FirstSeen.Before(bridges[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, b := range bridges {
			duration := b.stats.LastSeen.Sub(b.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n",
				shortenBridgeID(b.id), b.stats.Events, duration)
			if b.stats.Builds > 0 || b.stats.Teardowns > 0 {
				fmt.Fprintf(w, "             Builds: %d  Teardowns: %d\n",
					b.stats.Builds, b.stats.Teardowns)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
