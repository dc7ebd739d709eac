package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes bridge events to an slog.Logger. Useful for
// development when you want to watch bridge traffic in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
		slog.String("origin", event.Origin.String()),
	}

	if event.Path != "" {
		attrs = append(attrs, slog.String("path", event.Path))
	}
	if event.NodeID != "" {
		attrs = append(attrs, slog.String("node_id", event.NodeID))
	}

	switch {
	case event.Build != nil:
		attrs = append(attrs,
			slog.Int("folders", event.Build.Folders),
			slog.Int("variables", event.Build.Variables),
			slog.Int("subscriptions", event.Build.Subscriptions),
		)
		if event.Build.Partial {
			attrs = append(attrs, slog.Bool("partial", true))
		}
	case event.Change != nil:
		attrs = append(attrs,
			slog.Any("value", event.Change.Value),
			slog.Uint64("quality", uint64(event.Change.Quality)),
		)
	case event.Access != nil:
		attrs = append(attrs, slog.Any("value", event.Access.Value))
		if event.Access.RoundTrip > 0 {
			attrs = append(attrs, slog.Duration("round_trip", event.Access.RoundTrip))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "bridge", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
