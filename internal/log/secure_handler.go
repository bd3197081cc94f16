package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"proxy-authorization": true,

	// Site ownership and submission secrets
	"indexnow_key":       true,
	"indexnowkey":        true,
	"key":                true,
	"verification":       true,
	"google_token":       true,
	"bing_token":         true,
	"site_verification":  true,
	"google-site-verify": true,

	// Authentication
	"password": true,
	"secret":   true,
	"token":    true,
	"api_key":  true,
	"apikey":   true,
	"session":  true,
}

// sensitiveKeywords mark a key as sensitive when contained in it.
// The bare word "key" is only masked as an exact key name above: as a
// substring it would hit "keyPages" or "key_count".
var sensitiveKeywords = []string{
	"password", "secret", "token", "auth", "credential", "cookie", "indexnow_key", "verification",
}

// sensitiveQueryParams are URL query parameters masked inside URL values.
// IndexNow passes its key as ?key=, which shows up in request logs.
var sensitiveQueryParams = []string{"key", "token", "apikey", "api_key", "access_token", "auth"}

// sensitivePatterns contains regex patterns that indicate sensitive values.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer and basic auth headers
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Long opaque keys; IndexNow keys are commonly 32 hex characters.
	regexp.MustCompile(`^[a-zA-Z0-9-]{32,}$`),

	// Private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler to sanitize sensitive information.
// It rewrites record attributes before they reach the underlying handler,
// so it works the same with the text and JSON handlers.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it to the underlying handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes sanitized and added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if isSensitiveValue(strVal) {
			return slog.String(a.Key, MaskValue)
		}
		if redacted, changed := RedactURL(strVal); changed {
			return slog.String(a.Key, redacted)
		}
	}

	return a
}

func containsSensitiveKeyword(key string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// RedactURL masks secret query parameters of an absolute URL.
// It reports false, and returns raw unchanged, when raw is not an
// absolute URL or carries no secret parameter.
func RedactURL(raw string) (string, bool) {
	if !strings.Contains(raw, "://") || !strings.Contains(raw, "?") {
		return raw, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw, false
	}

	query := u.Query()
	changed := false
	for name := range query {
		for _, secret := range sensitiveQueryParams {
			if strings.EqualFold(name, secret) {
				query[name] = []string{MaskValue}
				changed = true
			}
		}
	}
	if !changed {
		return raw, false
	}
	u.RawQuery = query.Encode()
	// Encode escapes the mask; keep it readable.
	return strings.ReplaceAll(u.String(), url.QueryEscape(MaskValue), MaskValue), true
}

// Option configures NewSecureLogger.
type Option func(*loggerOptions)

type loggerOptions struct {
	json bool
}

// WithJSON makes the logger emit JSON lines instead of text.
func WithJSON(enabled bool) Option {
	return func(o *loggerOptions) {
		o.json = enabled
	}
}

// NewSecureLogger creates a new slog.Logger whose output is sanitized.
// verbose selects slog.LevelDebug; otherwise only warnings and errors are written.
func NewSecureLogger(w io.Writer, verbose bool, opts ...Option) *slog.Logger {
	var o loggerOptions
	for _, opt := range opts {
		opt(&o)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if o.json {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(NewSecureHandler(handler))
}
