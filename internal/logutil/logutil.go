// Package logutil formats captured browser traffic for logs without leaking
// credentials typed by the suites.
package logutil

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"
)

const redacted = "[REDACTED]"

// IsSensitiveLogField returns true when a key likely contains sensitive data.
func IsSensitiveLogField(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")

	switch {
	case normalized == "authorization":
		return true
	case strings.Contains(normalized, "token"):
		return true
	case strings.Contains(normalized, "secret"):
		return true
	case strings.Contains(normalized, "password"):
		return true
	case strings.Contains(normalized, "apikey"):
		return true
	case strings.Contains(normalized, "cookie"):
		return true
	case strings.Contains(normalized, "session"):
		return true
	default:
		return false
	}
}

// RedactHeaderValue redacts a header value when the key looks sensitive.
func RedactHeaderValue(key, value string) string {
	if IsSensitiveLogField(key) {
		return redacted
	}
	return value
}

// FormatHeadersForLog returns stable, redacted header text for logs.
// Playwright reports headers as a flat lower-cased map.
func FormatHeadersForLog(headers map[string]string) string {
	if len(headers) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := headers[k]
		if v == "" {
			parts = append(parts, fmt.Sprintf("%s=<empty>", strings.ToLower(k)))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%q", strings.ToLower(k), RedactHeaderValue(k, v)))
	}
	return strings.Join(parts, "; ")
}

// RedactBodyForLog redacts sensitive fields from JSON and form-encoded
// payloads; other bodies are returned as-is.
func RedactBodyForLog(contentType string, body []byte) string {
	text := string(body)
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return redactJSON(body, text)
	case strings.Contains(ct, "x-www-form-urlencoded"):
		return redactForm(text)
	default:
		return text
	}
}

func redactJSON(body []byte, fallback string) string {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}

	var redact func(v any)
	redact = func(v any) {
		switch typed := v.(type) {
		case map[string]any:
			for k, child := range typed {
				if IsSensitiveLogField(k) {
					typed[k] = redacted
					continue
				}
				redact(child)
			}
		case []any:
			for _, child := range typed {
				redact(child)
			}
		}
	}

	redact(payload)
	safeJSON, err := json.Marshal(payload)
	if err != nil {
		return fallback
	}
	return string(safeJSON)
}

func redactForm(text string) string {
	values, err := url.ParseQuery(text)
	if err != nil {
		return text
	}
	for k := range values {
		if IsSensitiveLogField(k) {
			values[k] = []string{redacted}
		}
	}
	// Encode sorts by key.
	return values.Encode()
}

// FormatBodyForLog truncates and redacts body text for safe logging.
func FormatBodyForLog(contentType string, body []byte, maxBytes int) string {
	if len(body) == 0 {
		return ""
	}
	text := RedactBodyForLog(contentType, body)
	if maxBytes > 0 && len(text) > maxBytes {
		return cutAtRune(text, maxBytes) + " [truncated]"
	}
	return text
}

// TruncateForLog returns a single-line truncated preview for unstructured values.
func TruncateForLog(value string, maxChars int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	normalized := strings.ReplaceAll(trimmed, "\n", "\\n")
	if maxChars <= 0 || len(normalized) <= maxChars {
		return normalized
	}
	return cutAtRune(normalized, maxChars) + "... [truncated]"
}

// cutAtRune returns at most n bytes of s without splitting a UTF-8 sequence.
func cutAtRune(s string, n int) string {
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
