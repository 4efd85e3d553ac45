// Package wire holds the small readers and writers every canonicalizer
// shares. Each Put helper skips empty values so serialized documents only
// carry what the canonical entity actually holds.
package wire

import (
	"time"

	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/coerce"
)

func PutString(m model.JSONMap, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func PutFloat(m model.JSONMap, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

// PutDate writes t as YYYY-MM-DD.
func PutDate(m model.JSONMap, key string, t *time.Time) {
	if t != nil {
		m[key] = coerce.DateString(*t)
	}
}

// PutTimestamp writes t as RFC3339.
func PutTimestamp(m model.JSONMap, key string, t *time.Time) {
	if t != nil {
		m[key] = coerce.TimestampString(*t)
	}
}

// PutStrings writes a non-empty list.
func PutStrings(m model.JSONMap, key string, s []string) {
	if len(s) > 0 {
		m[key] = Strings(s)
	}
}

// PutMap writes a non-empty object.
func PutMap(m model.JSONMap, key string, obj model.JSONMap) {
	if len(obj) > 0 {
		m[key] = obj
	}
}

// Strings converts to the []interface{} shape encoding/json decodes into,
// so serialized output compares equal to decoded documents.
func Strings(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
