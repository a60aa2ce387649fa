package pilot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LogSink is a slog.Handler that formats records as single lines and
// forwards them to a buffered channel. Lines are dropped when the channel is
// full, so logging never blocks the control loop.
type LogSink struct {
	ch    chan string
	level slog.Leveler
	attrs string // preformatted attributes from WithAttrs
	group string
}

// NewLogSink creates a sink buffering up to size lines.
func NewLogSink(size int, level slog.Leveler) *LogSink {
	if level == nil {
		level = slog.LevelInfo
	}
	return &LogSink{ch: make(chan string, size), level: level}
}

// Lines returns the channel of formatted log lines.
func (s *LogSink) Lines() <-chan string {
	return s.ch
}

func (s *LogSink) Enabled(_ context.Context, level slog.Level) bool {
	return level >= s.level.Level()
}

func (s *LogSink) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s", r.Time.Format("15:04:05"), r.Level, r.Message)
	b.WriteString(s.attrs)
	r.Attrs(func(a slog.Attr) bool {
		s.writeAttr(&b, a)
		return true
	})

	select {
	case s.ch <- b.String():
	default:
		// Drop if channel full
	}
	return nil
}

func (s *LogSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(s.attrs)
	for _, a := range attrs {
		s.writeAttr(&b, a)
	}
	clone := *s
	clone.attrs = b.String()
	return &clone
}

func (s *LogSink) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	clone := *s
	clone.group = s.group + name + "."
	return &clone
}

func (s *LogSink) writeAttr(b *strings.Builder, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(b, " %s%s=%v", s.group, a.Key, a.Value.Any())
}
