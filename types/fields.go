package types

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"time"
)

// Fields is an untyped JSON object as decoded from an API response body.
//
// Every accessor is total: a missing key, a JSON null and a value of the
// wrong shape all report "no value" and are indistinguishable to the caller.
// Higher layers rely on this to treat a malformed field as an ordinary
// negative result.
type Fields map[string]interface{}

// ParseFields unmarshals bytes into Fields.
// It fails only when data is not a JSON object.
func ParseFields(data []byte) (Fields, error) {
	var fields Fields
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("failed to unmarshal fields: document is not an object")
	}
	return fields, nil
}

// Has reports whether key is present with a non-null value
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

// String returns the string stored under key
func (f Fields) String(key string) (string, bool) {
	s, ok := f[key].(string)
	return s, ok
}

// Bool returns the boolean stored under key, or def
func (f Fields) Bool(key string, def bool) bool {
	if b, ok := f[key].(bool); ok {
		return b
	}
	return def
}

// Int64 returns an integral number stored under key.
// Numbers with a fractional part are rejected.
func (f Fields) Int64(key string) (int64, bool) {
	switch v := f[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false
		}
		if v >= 1<<63 || v < -(1<<63) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// Date interprets the number stored under key as seconds since the Unix
// epoch and returns the corresponding UTC instant. Fractional seconds are
// kept to nanosecond precision.
func (f Fields) Date(key string) (time.Time, bool) {
	var secs float64
	switch v := f[key].(type) {
	case float64:
		secs = v
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		secs = n
	default:
		whole, ok := f.Int64(key)
		if !ok {
			return time.Time{}, false
		}
		return time.Unix(whole, 0).UTC(), true
	}
	if math.IsNaN(secs) || math.IsInf(secs, 0) || secs >= maxUnixSeconds || secs < -maxUnixSeconds {
		return time.Time{}, false
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC(), true
}

// maxUnixSeconds bounds Date inputs to values int64 nanosecond math can hold.
const maxUnixSeconds = 1 << 62

// Mapping returns the nested object stored under key.
// The returned Fields shares storage with f.
func (f Fields) Mapping(key string) (Fields, bool) {
	switch v := f[key].(type) {
	case map[string]interface{}:
		return Fields(v), true
	case Fields:
		return v, true
	default:
		return nil, false
	}
}

// StringSlice returns the array of strings stored under key.
// An array holding any non-string element yields no value.
func (f Fields) StringSlice(key string) ([]string, bool) {
	switch v := f[key].(type) {
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case []string:
		return append([]string(nil), v...), true
	default:
		return nil, false
	}
}

// URL returns the absolute URL stored as a string under key
func (f Fields) URL(key string) (*url.URL, bool) {
	s, ok := f.String(key)
	if !ok || s == "" {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

// Clone returns a deep copy of f. Nested objects and arrays are copied,
// so mutating the clone never affects f.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return map[string]interface{}(Fields(t).Clone())
	case Fields:
		return map[string]interface{}(t.Clone())
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return t
	}
}
