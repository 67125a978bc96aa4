package logging

import (
	"context"
	"log/slog"
	"regexp"
)

// RedactedValue replaces sensitive attribute values in log output.
const RedactedValue = "[REDACTED]"

// RedactionConfig controls which attributes are redacted before a record
// reaches the underlying handlers.
type RedactionConfig struct {
	// SensitiveKeys contains patterns matched against attribute keys.
	// Matching attributes have their values replaced with RedactedValue.
	SensitiveKeys []*regexp.Regexp
}

// DefaultRedactionConfig returns the broker's redaction configuration.
// Injected text and clipboard contents can carry user credentials typed
// into the device, so they never appear in cleartext logs.
func DefaultRedactionConfig() *RedactionConfig {
	return &RedactionConfig{
		SensitiveKeys: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^(text|clipboard|msg)$`),
			regexp.MustCompile(`(?i)(password|token|secret)`),
		},
	}
}

// RedactingHandler is a decorator that redacts sensitive information before
// forwarding to the underlying handler.
type RedactingHandler struct {
	handler slog.Handler
	config  *RedactionConfig
}

// NewRedactingHandler creates a new redacting handler that wraps the given handler.
func NewRedactingHandler(handler slog.Handler, config *RedactionConfig) *RedactingHandler {
	if config == nil {
		config = DefaultRedactionConfig()
	}
	return &RedactingHandler{handler: handler, config: config}
}

// Enabled reports whether the handler handles records at the given level
func (r *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return r.handler.Enabled(ctx, level)
}

// Handle redacts the log record and forwards it to the underlying handler
func (r *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	newRecord := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		newRecord.AddAttrs(r.redactAttr(attr))
		return true
	})
	return r.handler.Handle(ctx, newRecord)
}

// WithAttrs returns a new RedactingHandler with the given attributes
func (r *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		redacted = append(redacted, r.redactAttr(attr))
	}
	return &RedactingHandler{
		handler: r.handler.WithAttrs(redacted),
		config:  r.config,
	}
}

// WithGroup returns a new RedactingHandler with the given group name
func (r *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{
		handler: r.handler.WithGroup(name),
		config:  r.config,
	}
}

// redactAttr redacts sensitive information from a single attribute
func (r *RedactingHandler) redactAttr(attr slog.Attr) slog.Attr {
	for _, pattern := range r.config.SensitiveKeys {
		if pattern.MatchString(attr.Key) {
			return slog.String(attr.Key, RedactedValue)
		}
	}
	return attr
}
