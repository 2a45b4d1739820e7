package telemetry

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	// MaxValueLength is the longest string argument value kept in logs and spans.
	MaxValueLength = 200
	// maxListItems is the longest list argument kept before it is summarised.
	maxListItems = 20
)

// sensitiveKeys are redacted wherever they appear, at any nesting depth.
var sensitiveKeys = []string{"base64", "password", "passwd", "secret", "token", "api_key", "authorization"}

// SanitiseArguments returns a copy of args safe to log or attach to a span: sensitive keys are
// redacted, long strings truncated and large lists (such as raw byte arrays) summarised.
func SanitiseArguments(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}
	return sanitiseMap(args)
}

// SanitiseArgumentsJSON is SanitiseArguments serialised to a JSON string.
func SanitiseArgumentsJSON(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	b, err := json.Marshal(SanitiseArguments(args))
	if err != nil {
		return `{"error":"failed to serialise arguments"}`
	}
	return string(b)
}

func sanitiseMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		if isSensitiveKey(key) {
			out[key] = redacted(value)
			continue
		}
		out[key] = sanitiseValue(value)
	}
	return out
}

func sanitiseValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return sanitiseMap(v)
	case []any:
		if len(v) > maxListItems {
			return fmt.Sprintf("[%d items]", len(v))
		}
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = sanitiseValue(item)
		}
		return items
	case string:
		if looksLikeURL(v) {
			return TruncateString(SanitiseURL(v), MaxValueLength)
		}
		return TruncateString(v, MaxValueLength)
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func redacted(value any) string {
	if s, ok := value.(string); ok {
		return fmt.Sprintf("[REDACTED %d chars]", len(s))
	}
	return "[REDACTED]"
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// SanitiseURL removes credentials and token-like query parameters from a URL.
func SanitiseURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" {
		return "[INVALID_URL]"
	}

	parsedURL.User = nil

	if parsedURL.RawQuery != "" {
		query := parsedURL.Query()
		for key := range query {
			lower := strings.ToLower(key)
			if isSensitiveKey(lower) || strings.Contains(lower, "key") || strings.Contains(lower, "sig") {
				query.Set(key, "[REDACTED]")
			}
		}
		parsedURL.RawQuery = query.Encode()
	}

	return parsedURL.String()
}

// TruncateString truncates a string to a maximum length with ellipsis
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
