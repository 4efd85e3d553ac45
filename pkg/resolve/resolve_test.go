package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var record = map[string]interface{}{
	"weight": 90.0,
	"blank":  "   ",
	"null":   nil,
	"vitals": map[string]interface{}{
		"weight": "70",
		"bp":     "120/80",
	},
	"metadata": map[string]interface{}{
		"patientCode": "PT-1",
		"flags":       []interface{}{"a"},
	},
}

func TestPathHelpers(t *testing.T) {
	assert.Equal(t, []Path{{"a"}, {"b"}}, Keys("a", "b"))
	assert.Equal(t, []Path{{"m", "a"}, {"m", "b"}}, Under("m", "a", "b"))
	assert.Equal(t, []Path{{"a"}, {"m", "b"}}, Chain(Keys("a"), Under("m", "b")))
	assert.Equal(t, "vitals.weight", Key("vitals", "weight").String())
}

func TestLookup(t *testing.T) {
	v, ok := Lookup(record, Key("vitals", "bp"))
	assert.True(t, ok)
	assert.Equal(t, "120/80", v)

	_, ok = Lookup(record, Key("weight", "value"))
	assert.False(t, ok, "scalar intermediate")

	_, ok = Lookup(nil, Key("weight"))
	assert.False(t, ok)

	v, ok = Lookup(record, Key("null"))
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestFirst_EarlierCandidateWins(t *testing.T) {
	v, ok := First(record, Key("vitals", "weight"), Key("weight"))
	require.True(t, ok)
	assert.Equal(t, "70", v)

	v, ok = First(record, Key("weight"), Key("vitals", "weight"))
	require.True(t, ok)
	assert.Equal(t, 90.0, v)
}

func TestFirst_SkipsNullAndBlank(t *testing.T) {
	v, ok := First(record, Key("null"), Key("blank"), Key("missing"), Key("metadata", "patientCode"))
	require.True(t, ok)
	assert.Equal(t, "PT-1", v)

	_, ok = First(record, Key("null"), Key("blank"))
	assert.False(t, ok)

	assert.Equal(t, "dflt", FirstOr(record, "dflt", Key("missing")))
}

func TestTypedHelpers(t *testing.T) {
	assert.Equal(t, "PT-1", String(record, "", Key("patientCode"), Key("metadata", "patientCode")))
	assert.Equal(t, "none", String(record, "none", Key("vitals")))
	assert.Equal(t, 70.0, Float(record, 0, Key("vitals", "weight")))
	assert.Equal(t, 70, Int(record, 0, Key("vitals", "weight")))
	assert.Nil(t, FloatPtr(record, Key("missing")))
	assert.True(t, Bool(record, true, Key("missing")))
	assert.Nil(t, Time(record, Key("missing")))

	def := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, def, TimeOr(record, def, Key("vitals", "bp")))

	assert.Equal(t, []string{"a"}, Strings(record, nil, Key("metadata", "flags")))
	assert.Equal(t, []string{}, Strings(record, nil, Key("missing")))
}

func TestTypedHelpers_UnparsableWinnerDoesNotFallThrough(t *testing.T) {
	raw := map[string]interface{}{"basicSalary": "not-a-number", "basic": 1000}
	assert.Equal(t, 0.0, Float(raw, 0, Key("basicSalary"), Key("basic")))
}

func TestMapAndList(t *testing.T) {
	m, ok := Map(record, Key("missing"), Key("vitals"))
	require.True(t, ok)
	assert.Equal(t, "120/80", m["bp"])

	_, ok = Map(record, Key("weight"))
	assert.False(t, ok)

	assert.Equal(t, []interface{}{"a"}, List(record, Key("null"), Key("metadata", "flags")))
	assert.Nil(t, List(record, Key("vitals")))
}

func TestMapAndList_EarlierCandidateOfOtherShapeWins(t *testing.T) {
	// a present scalar shadows a later object or array
	_, ok := Map(record, Key("weight"), Key("vitals"))
	assert.False(t, ok)
	assert.Nil(t, List(record, Key("vitals"), Key("metadata", "flags")))

	// blank and null candidates are absent and fall through
	m, ok := Map(record, Key("blank"), Key("null"), Key("metadata"))
	require.True(t, ok)
	assert.Equal(t, "PT-1", m["patientCode"])
}
