package coerce

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Values above this are treated as unix milliseconds rather than seconds.
const millisThreshold = 1e11

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"03:04 PM",
	"03:04PM",
	"3:04 pm",
	"3:04pm",
	"3:04:05 PM",
}

// Time parses v as a point in time, normalized to UTC. Unparsable or empty
// input returns nil; use TimeOr where the call site needs a value.
func Time(v interface{}) *time.Time {
	var t time.Time

	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		if val.IsZero() {
			return nil
		}
		t = val
	case *time.Time:
		if val == nil || val.IsZero() {
			return nil
		}
		t = *val
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		parsed, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
		if err != nil {
			// epoch values sometimes arrive quoted
			if _, numeric := FloatOK(s); numeric {
				return Time(Float(s, 0))
			}
			return nil
		}
		t = parsed
	case bool:
		return nil
	default:
		f, ok := FloatOK(v)
		if !ok || f <= 0 {
			return nil
		}
		if f > millisThreshold {
			t = time.UnixMilli(int64(f))
		} else {
			t = time.Unix(int64(f), 0)
		}
	}

	t = t.UTC()
	return &t
}

// TimeOr is Time with a required fallback.
func TimeOr(v interface{}, def time.Time) time.Time {
	if t := Time(v); t != nil {
		return *t
	}
	return def
}

// Clock parses a time of day and returns hours, minutes and seconds.
func Clock(v interface{}) (h, m, s int, ok bool) {
	str := strings.TrimSpace(String(v))
	if str == "" {
		return 0, 0, 0, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(str)); err == nil {
			return t.Hour(), t.Minute(), t.Second(), true
		}
		if t, err := time.Parse(layout, str); err == nil {
			return t.Hour(), t.Minute(), t.Second(), true
		}
	}
	// full timestamps carry a clock too
	if t := Time(str); t != nil {
		return t.Hour(), t.Minute(), t.Second(), true
	}
	return 0, 0, 0, false
}

// DateString formats t as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// TimestampString formats t as RFC3339 with sub-second precision when present.
func TimestampString(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
