package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sammcj/mcp-pdftools/internal/errs"
)

// OptionalString returns the trimmed string value of key, or def when absent or blank.
func OptionalString(args map[string]any, key, def string) string {
	if value, ok := args[key].(string); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return def
}

// RequiredString returns the string value of key or a validation error.
func RequiredString(args map[string]any, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: missing or invalid required parameter: %s", errs.ErrValidation, key)
	}
	return strings.TrimSpace(value), nil
}

// OptionalInt returns the integer value of key, or def when absent.
// JSON numbers arrive as float64 and must be whole.
func OptionalInt(args map[string]any, key string, def int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return def, nil
	}
	n, err := toInt(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: parameter %s: %v", errs.ErrValidation, key, err)
	}
	return n, nil
}

// IntSlice returns the integer list under key; absent yields nil.
func IntSlice(args map[string]any, key string) ([]int, error) {
	items, err := list(args, key)
	if err != nil || items == nil {
		return nil, err
	}
	out := make([]int, 0, len(items))
	for i, item := range items {
		n, err := toInt(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", errs.ErrValidation, key, i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// StringSlice returns the string list under key; absent yields nil.
func StringSlice(args map[string]any, key string) ([]string, error) {
	items, err := list(args, key)
	if err != nil || items == nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("%w: %s[%d] must be a non-empty string", errs.ErrValidation, key, i)
		}
		out = append(out, s)
	}
	return out, nil
}

// ObjectSlice returns the list of objects under key; absent yields nil.
func ObjectSlice(args map[string]any, key string) ([]map[string]any, error) {
	items, err := list(args, key)
	if err != nil || items == nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be an object", errs.ErrValidation, key, i)
		}
		out = append(out, obj)
	}
	return out, nil
}

// IntField reads a required integer field from a nested object.
func IntField(obj map[string]any, key string) (int, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: missing field %s", errs.ErrValidation, key)
	}
	n, err := toInt(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: field %s: %v", errs.ErrValidation, key, err)
	}
	return n, nil
}

func list(args map[string]any, key string) ([]any, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: parameter %s must be an array", errs.ErrValidation, key)
	}
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not a whole number", v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s is not a whole number", v)
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", raw)
	}
}
