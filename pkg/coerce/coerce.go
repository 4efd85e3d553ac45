// Package coerce converts loosely-typed JSON values into Go values without
// ever failing. Every function takes the value as decoded by encoding/json (or
// built by hand) and returns either the converted value or the caller's default.
package coerce

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Float parses v as a finite float64. NaN, Inf and anything unparsable yield def.
func Float(v interface{}, def float64) float64 {
	f, ok := FloatOK(v)
	if !ok {
		return def
	}
	return f
}

// FloatOK is Float reporting whether v held a usable number.
func FloatOK(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case bool:
		// true/false are not amounts
		return 0, false
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		v = s
	case json.Number:
		v = t.String()
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FloatPtr returns nil when v does not hold a usable number.
func FloatPtr(v interface{}) *float64 {
	f, ok := FloatOK(v)
	if !ok {
		return nil
	}
	return &f
}

// Int truncates the numeric value of v. Strings are parsed as decimal, so "08" is 8.
func Int(v interface{}, def int) int {
	f, ok := FloatOK(v)
	if !ok {
		return def
	}
	return int(math.Trunc(f))
}

// Bool accepts booleans, numbers and the usual textual spellings.
func Bool(v interface{}, def bool) bool {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y", "on":
			return true
		case "no", "n", "off":
			return false
		case "":
			return def
		}
	}
	switch t := v.(type) {
	case nil:
		return def
	case float64:
		return t != 0
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// String renders scalars as text. Maps, slices and nil render as "".
func String(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case map[string]interface{}, []interface{}, []string:
		return ""
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Map returns v as a JSON object.
func Map(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, t != nil
	case map[interface{}]interface{}:
		m, err := cast.ToStringMapE(t)
		return m, err == nil
	}
	return nil, false
}

// List returns v as a JSON array.
func List(v interface{}) ([]interface{}, bool) {
	switch t := v.(type) {
	case []interface{}:
		return t, true
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	case []string:
		out := make([]interface{}, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	}
	return nil, false
}

// StringList normalizes v into a list of non-blank strings. A list is mapped
// entry by entry, a string is split on commas, and an object is searched for
// the first of subKeys holding a list. Anything else yields an empty list.
func StringList(v interface{}, subKeys ...string) []string {
	out := []string{}

	if m, ok := Map(v); ok {
		for _, k := range subKeys {
			if inner, found := m[k]; found && inner != nil {
				if _, isMap := Map(inner); isMap {
					continue
				}
				return StringList(inner)
			}
		}
		return out
	}

	if s, ok := v.(string); ok {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	}

	items, ok := List(v)
	if !ok {
		return out
	}
	for _, item := range items {
		if s := listEntry(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// listEntry renders one list element; objects contribute their name or value.
func listEntry(item interface{}) string {
	if m, ok := Map(item); ok {
		for _, k := range []string{"name", "label", "value", "title"} {
			if s := String(m[k]); s != "" {
				return s
			}
		}
		return ""
	}
	return String(item)
}

// StringMap copies an object's scalar entries as strings, dropping blanks.
func StringMap(v interface{}) map[string]string {
	out := map[string]string{}
	m, ok := Map(v)
	if !ok {
		return out
	}
	for k, val := range m {
		if s := String(val); s != "" {
			out[k] = s
		}
	}
	return out
}

// FloatMap copies an object's numeric entries, dropping anything unparsable.
func FloatMap(v interface{}) map[string]float64 {
	out := map[string]float64{}
	m, ok := Map(v)
	if !ok {
		return out
	}
	for k, val := range m {
		if f, ok := FloatOK(val); ok {
			out[k] = f
		}
	}
	return out
}
