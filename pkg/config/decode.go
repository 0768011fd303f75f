package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DecodeValue parses s as a JSON value and falls back to s itself when it is
// not valid JSON. It never fails:
//
//	"42"        -> 42 (int)
//	"4.2"       -> 4.2 (float64)
//	"null"      -> nil
//	"true"      -> true
//	"[1,2]"     -> []any{1, 2}
//	`{"a":"b"}` -> map[string]any{"a": "b"}
//	`"null"`    -> "null" (string)
//	"bob"       -> "bob" (string)
func DecodeValue(s string) any {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return s
	}
	// Trailing data such as "1 2" is not a single JSON value.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return s
	}
	return normalize(v)
}

// splitKeyValue splits "key=value" on the first '='.
func splitKeyValue(item string) (string, string, bool) {
	return strings.Cut(item, "=")
}

// normalize converts decoded documents to the value set used across
// argware: map[string]any, []any, string, bool, int, float64 and nil.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case int64:
		return int(val)
	case uint64:
		return int(val)
	case float32:
		return float64(val)
	default:
		return val
	}
}
