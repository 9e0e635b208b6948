// Package log provides structured logging with sanitization of
// sensitive data.
//
// A crawler's logs are full of URLs and header values, and those leak
// session tokens and tracking identifiers surprisingly often (query
// strings with sid=..., Set-Cookie echoes, auth headers on sites that
// require login). SanitizingHandler wraps any slog.Handler and masks
// attribute values whose key or shape marks them as sensitive, so the
// rest of the code can log freely.
package log
