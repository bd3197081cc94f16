// Package log provides slog-based logging that never leaks site secrets.
//
// sitectl handles a few values that must not end up in CI logs: the IndexNow
// key, search console verification tokens, and cookies or auth headers
// configured for crawling staging hosts. The SecureHandler wraps any
// slog.Handler and masks them:
//   - attributes whose key names a secret (token, cookie, indexnow_key, ...)
//   - string values that look like credentials (bearer tokens, JWTs, long keys)
//   - secret query parameters inside URLs (?key=..., ?token=...), leaving the
//     rest of the URL readable
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Info("submitted", "url", "https://api.indexnow.org/indexnow?url=...&key=abcd1234")
//	// url=https://api.indexnow.org/indexnow?url=...&key=***REDACTED***
package log
