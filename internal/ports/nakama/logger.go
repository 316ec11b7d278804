package nakama

import (
	"context"
	"log/slog"
	"maps"

	"github.com/heroiclabs/nakama-common/runtime"
)

// LogHandler is a slog.Handler writing to Nakama's runtime.Logger. Attributes
// become logger fields; groups are flattened into dotted keys.
type LogHandler struct {
	logger runtime.Logger
	level  slog.Leveler
	fields map[string]interface{}
	group  string
}

func NewLogHandler(logger runtime.Logger, level slog.Leveler) *LogHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &LogHandler{logger: logger, level: level, fields: map[string]interface{}{}}
}

func (h *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := maps.Clone(h.fields)
	r.Attrs(func(a slog.Attr) bool {
		addField(fields, h.group, a)
		return true
	})

	logger := h.logger
	if len(fields) > 0 {
		logger = logger.WithFields(fields)
	}
	switch {
	case r.Level >= slog.LevelError:
		logger.Error("%s", r.Message)
	case r.Level >= slog.LevelWarn:
		logger.Warn("%s", r.Message)
	case r.Level >= slog.LevelInfo:
		logger.Info("%s", r.Message)
	default:
		logger.Debug("%s", r.Message)
	}
	return nil
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = maps.Clone(h.fields)
	for _, a := range attrs {
		addField(next.fields, h.group, a)
	}
	return &next
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = joinKey(h.group, name)
	return &next
}

func addField(fields map[string]interface{}, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group = joinKey(prefix, a.Key)
		}
		for _, ga := range a.Value.Group() {
			addField(fields, group, ga)
		}
		return
	}
	fields[joinKey(prefix, a.Key)] = a.Value.Any()
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
