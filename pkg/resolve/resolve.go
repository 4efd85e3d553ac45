// Package resolve looks up a value across several candidate locations of a raw
// JSON record. Candidates are tried in order and the first one holding a value
// wins, so callers list locations from most to least trusted.
package resolve

import (
	"strings"
	"time"

	"github.com/jwalitptl/admin-records/pkg/coerce"
)

// Path addresses a value inside nested objects, e.g. Key("vitals", "weight").
type Path []string

// Key builds a Path from its segments.
func Key(segments ...string) Path {
	return Path(segments)
}

// Keys builds one single-segment Path per key, for flat alias chains.
func Keys(keys ...string) []Path {
	paths := make([]Path, len(keys))
	for i, k := range keys {
		paths[i] = Path{k}
	}
	return paths
}

// Under prefixes every key with the same parent object.
func Under(parent string, keys ...string) []Path {
	paths := make([]Path, len(keys))
	for i, k := range keys {
		paths[i] = Path{parent, k}
	}
	return paths
}

// Chain concatenates candidate lists, preserving order.
func Chain(groups ...[]Path) []Path {
	var out []Path
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Lookup walks p through raw. It reports false when any segment is missing or
// an intermediate value is not an object.
func Lookup(raw map[string]interface{}, p Path) (interface{}, bool) {
	if raw == nil || len(p) == 0 {
		return nil, false
	}
	var cur interface{} = raw
	for _, seg := range p {
		m, ok := coerce.Map(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// present is the resolver's notion of "has a value": not null and not a blank string.
func present(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	}
	return true
}

// First returns the value at the first candidate path that holds one.
func First(raw map[string]interface{}, paths ...Path) (interface{}, bool) {
	for _, p := range paths {
		if v, ok := Lookup(raw, p); ok && present(v) {
			return v, true
		}
	}
	return nil, false
}

// FirstOr is First with a default.
func FirstOr(raw map[string]interface{}, def interface{}, paths ...Path) interface{} {
	if v, ok := First(raw, paths...); ok {
		return v
	}
	return def
}

func String(raw map[string]interface{}, def string, paths ...Path) string {
	v, ok := First(raw, paths...)
	if !ok {
		return def
	}
	if s := coerce.String(v); s != "" {
		return s
	}
	return def
}

func Float(raw map[string]interface{}, def float64, paths ...Path) float64 {
	v, _ := First(raw, paths...)
	return coerce.Float(v, def)
}

// FloatPtr returns nil when the winning candidate is missing or unparsable.
func FloatPtr(raw map[string]interface{}, paths ...Path) *float64 {
	v, _ := First(raw, paths...)
	return coerce.FloatPtr(v)
}

func Int(raw map[string]interface{}, def int, paths ...Path) int {
	v, _ := First(raw, paths...)
	return coerce.Int(v, def)
}

func Bool(raw map[string]interface{}, def bool, paths ...Path) bool {
	v, _ := First(raw, paths...)
	return coerce.Bool(v, def)
}

// Time resolves an optional timestamp.
func Time(raw map[string]interface{}, paths ...Path) *time.Time {
	v, _ := First(raw, paths...)
	return coerce.Time(v)
}

// TimeOr resolves a required timestamp, falling back to def.
func TimeOr(raw map[string]interface{}, def time.Time, paths ...Path) time.Time {
	v, _ := First(raw, paths...)
	return coerce.TimeOr(v, def)
}

// Strings resolves a list; see coerce.StringList for the accepted shapes.
func Strings(raw map[string]interface{}, subKeys []string, paths ...Path) []string {
	v, _ := First(raw, paths...)
	return coerce.StringList(v, subKeys...)
}

// Map resolves a nested object. The first present candidate wins as with the
// scalar helpers; when it holds something other than an object the result is
// not found, and later candidates are not consulted.
func Map(raw map[string]interface{}, paths ...Path) (map[string]interface{}, bool) {
	v, ok := First(raw, paths...)
	if !ok {
		return nil, false
	}
	return coerce.Map(v)
}

// List resolves a nested array under the same first-present rule as Map.
func List(raw map[string]interface{}, paths ...Path) []interface{} {
	v, ok := First(raw, paths...)
	if !ok {
		return nil
	}
	l, _ := coerce.List(v)
	return l
}
