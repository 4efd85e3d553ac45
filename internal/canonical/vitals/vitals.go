// Package vitals reconciles vitals recordings. Each measurement may arrive as
// a bare number, a "120/80"-style string, or an object carrying value and
// unit, and older documents keep systolic/diastolic as top-level keys.
package vitals

import (
	"strings"

	"github.com/jwalitptl/admin-records/internal/canonical/identity"
	"github.com/jwalitptl/admin-records/internal/canonical/wire"
	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/coerce"
	"github.com/jwalitptl/admin-records/pkg/resolve"
)

// Bare temperatures above this are assumed to be Fahrenheit.
const fahrenheitGuess = 45.0

var (
	idPaths          = resolve.Keys("_id", "id", "vitalsId", "vitals_id")
	appointmentPaths = resolve.Keys("appointmentId", "appointment_id", "appointment")
	recordedAtPaths  = resolve.Keys("recordedAt", "recorded_at", "measuredAt", "timestamp", "createdAt")
	locationPaths    = resolve.Keys("location", "ward", "room")
	notesPaths       = resolve.Keys("notes", "remarks", "comments")

	bpPaths          = resolve.Keys("bloodPressure", "blood_pressure", "bp")
	temperaturePaths = resolve.Keys("temperature", "temp")
	weightPaths      = resolve.Keys("weight")
	heightPaths      = resolve.Keys("height")
	glucosePaths     = resolve.Keys("bloodGlucose", "blood_glucose", "glucose", "bloodSugar")

	heartRatePaths = resolve.Keys("heartRate", "heart_rate", "pulse")
	respRatePaths  = resolve.Keys("respiratoryRate", "respiratory_rate", "respRate")
	oxygenPaths    = resolve.Keys("oxygenSaturation", "oxygen_saturation", "spo2", "oxygen")
	painPaths      = resolve.Keys("painScale", "pain_scale", "pain")
	flagPaths      = resolve.Keys("abnormalFlags", "abnormal_flags", "flags")
)

// Canonicalize builds a vitals recording. When the document carries no
// abnormal flags they are derived from the values.
func Canonicalize(raw model.JSONMap) model.PatientVitals {
	v := model.PatientVitals{
		ID:               resolve.String(raw, "", idPaths...),
		PatientID:        referenceID(raw, "patientId", "patient_id", "patient"),
		AppointmentID:    resolve.String(raw, "", appointmentPaths...),
		RecordedBy:       referenceID(raw, "recordedBy", "recorded_by", "nurse"),
		RecordedAt:       resolve.Time(raw, recordedAtPaths...),
		Location:         resolve.String(raw, "", locationPaths...),
		BloodPressure:    bloodPressure(raw),
		Temperature:      temperature(raw),
		Weight:           weight(raw),
		Height:           height(raw),
		BloodGlucose:     glucose(raw),
		HeartRate:        resolve.FloatPtr(raw, heartRatePaths...),
		RespiratoryRate:  resolve.FloatPtr(raw, respRatePaths...),
		OxygenSaturation: resolve.FloatPtr(raw, oxygenPaths...),
		PainScale:        resolve.FloatPtr(raw, painPaths...),
		Notes:            resolve.String(raw, "", notesPaths...),
	}

	if items := resolve.List(raw, flagPaths...); items != nil {
		v.Flags = make([]model.AbnormalFlag, 0, len(items))
		for _, item := range items {
			if f, ok := abnormalFlag(item); ok {
				v.Flags = append(v.Flags, f)
			}
		}
	} else {
		v.Flags = v.DerivedFlags()
	}
	return v
}

// referenceID accepts a bare id or an embedded object; a name-only object
// yields its name.
func referenceID(raw model.JSONMap, keys ...string) string {
	ref := identity.ParseReference(identity.ReferenceValue(raw, keys...), "", model.RoleUnknown)
	if ref.ID != "" {
		return ref.ID
	}
	return ref.DisplayName
}

func bloodPressure(raw model.JSONMap) *model.BloodPressure {
	if v, ok := resolve.First(raw, bpPaths...); ok {
		if obj, isMap := coerce.Map(v); isMap {
			sys, sysOK := coerce.FloatOK(resolve.FirstOr(obj, nil, resolve.Keys("systolic", "sys")...))
			dia, diaOK := coerce.FloatOK(resolve.FirstOr(obj, nil, resolve.Keys("diastolic", "dia")...))
			if sysOK && diaOK {
				return newBloodPressure(sys, dia, resolve.String(obj, "", resolve.Key("reading")))
			}
			return parseReading(resolve.String(obj, "", resolve.Key("reading")))
		}
		return parseReading(coerce.String(v))
	}

	// legacy flat keys
	sys, sysOK := coerce.FloatOK(resolve.FirstOr(raw, nil, resolve.Keys("systolic", "systolicBP")...))
	dia, diaOK := coerce.FloatOK(resolve.FirstOr(raw, nil, resolve.Keys("diastolic", "diastolicBP")...))
	if sysOK && diaOK {
		return newBloodPressure(sys, dia, "")
	}
	return nil
}

func newBloodPressure(sys, dia float64, reading string) *model.BloodPressure {
	if reading == "" {
		reading = coerce.String(sys) + "/" + coerce.String(dia)
	}
	return &model.BloodPressure{Systolic: sys, Diastolic: dia, Reading: reading}
}

// parseReading reads "120/80" and "120 / 80 mmHg".
func parseReading(s string) *model.BloodPressure {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return nil
	}
	sys, sysOK := coerce.FloatOK(parts[0])
	dia, diaOK := coerce.FloatOK(strings.TrimSuffix(strings.TrimSpace(parts[1]), "mmHg"))
	if !sysOK || !diaOK {
		return nil
	}
	return newBloodPressure(sys, dia, "")
}

// measurement splits a value that is either a bare number or {value, unit}.
// The first present candidate decides the shape.
func measurement(raw model.JSONMap, unitKey string, paths ...resolve.Path) (value float64, unit string, ok bool) {
	v, found := resolve.First(raw, paths...)
	if !found {
		return 0, "", false
	}
	if obj, isMap := coerce.Map(v); isMap {
		value, ok = coerce.FloatOK(resolve.FirstOr(obj, nil, resolve.Key("value")))
		unit = resolve.String(obj, "", resolve.Key("unit"))
		return value, unit, ok
	}
	value, ok = coerce.FloatOK(v)
	return value, resolve.String(raw, "", resolve.Key(unitKey)), ok
}

func temperature(raw model.JSONMap) *model.Temperature {
	value, unit, ok := measurement(raw, "temperatureUnit", temperaturePaths...)
	if !ok {
		return nil
	}
	return &model.Temperature{Value: value, Unit: temperatureUnit(unit, value)}
}

func temperatureUnit(unit string, value float64) model.TemperatureUnit {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(unit), "°")) {
	case "f", "fahrenheit":
		return model.Fahrenheit
	case "c", "celsius":
		return model.Celsius
	}
	if value > fahrenheitGuess {
		return model.Fahrenheit
	}
	return model.Celsius
}

func weight(raw model.JSONMap) *model.Weight {
	value, unit, ok := measurement(raw, "weightUnit", weightPaths...)
	if !ok {
		return nil
	}
	return &model.Weight{Value: value, Unit: unitOr(unit, "kg")}
}

func height(raw model.JSONMap) *model.Height {
	value, unit, ok := measurement(raw, "heightUnit", heightPaths...)
	if !ok {
		return nil
	}
	return &model.Height{Value: value, Unit: unitOr(unit, "cm")}
}

func unitOr(unit, def string) string {
	if unit = strings.ToLower(unit); unit != "" {
		return unit
	}
	return def
}

func glucose(raw model.JSONMap) *model.BloodGlucose {
	v, found := resolve.First(raw, glucosePaths...)
	if !found {
		return nil
	}
	if obj, isMap := coerce.Map(v); isMap {
		value, valueOK := coerce.FloatOK(resolve.FirstOr(obj, nil, resolve.Key("value")))
		if !valueOK {
			return nil
		}
		return &model.BloodGlucose{
			Value:    value,
			TestType: strings.ToLower(resolve.String(obj, "random", resolve.Keys("testType", "test_type", "type")...)),
		}
	}

	value, ok := coerce.FloatOK(v)
	if !ok {
		return nil
	}
	return &model.BloodGlucose{
		Value:    value,
		TestType: strings.ToLower(resolve.String(raw, "random", resolve.Keys("glucoseTestType", "glucose_test_type")...)),
	}
}

func abnormalFlag(item interface{}) (model.AbnormalFlag, bool) {
	obj, ok := coerce.Map(item)
	if !ok {
		// a bare string names the vital
		if s := coerce.String(item); s != "" {
			return model.AbnormalFlag{Vital: s, Severity: model.SeverityMild}, true
		}
		return model.AbnormalFlag{}, false
	}
	f := model.AbnormalFlag{
		Vital:    resolve.String(obj, "", resolve.Keys("vital", "parameter", "name")...),
		Severity: parseSeverity(resolve.String(obj, "", resolve.Key("severity"))),
		Note:     resolve.String(obj, "", resolve.Keys("note", "message", "description")...),
	}
	return f, f.Vital != ""
}

func parseSeverity(s string) model.Severity {
	switch sev := model.Severity(strings.ToLower(s)); sev {
	case model.SeverityMild, model.SeverityModerate, model.SeveritySevere, model.SeverityCritical:
		return sev
	}
	return model.SeverityMild
}

// Serialize writes each measurement as its nested object and always emits
// abnormalFlags when there are any, so the backend keeps what was shown.
func Serialize(v model.PatientVitals) model.JSONMap {
	out := model.JSONMap{}

	wire.PutString(out, "id", v.ID)
	wire.PutString(out, "patientId", v.PatientID)
	wire.PutString(out, "appointmentId", v.AppointmentID)
	wire.PutString(out, "recordedBy", v.RecordedBy)
	wire.PutTimestamp(out, "recordedAt", v.RecordedAt)
	wire.PutString(out, "location", v.Location)
	wire.PutString(out, "notes", v.Notes)

	if bp := v.BloodPressure; bp != nil {
		out["bloodPressure"] = model.JSONMap{"systolic": bp.Systolic, "diastolic": bp.Diastolic, "reading": bp.Reading}
	}
	if t := v.Temperature; t != nil {
		out["temperature"] = model.JSONMap{"value": t.Value, "unit": string(t.Unit)}
	}
	if w := v.Weight; w != nil {
		out["weight"] = model.JSONMap{"value": w.Value, "unit": w.Unit}
	}
	if h := v.Height; h != nil {
		out["height"] = model.JSONMap{"value": h.Value, "unit": h.Unit}
	}
	if g := v.BloodGlucose; g != nil {
		out["bloodGlucose"] = model.JSONMap{"value": g.Value, "testType": g.TestType}
	}

	wire.PutFloat(out, "heartRate", v.HeartRate)
	wire.PutFloat(out, "respiratoryRate", v.RespiratoryRate)
	wire.PutFloat(out, "oxygenSaturation", v.OxygenSaturation)
	wire.PutFloat(out, "painScale", v.PainScale)

	if len(v.Flags) > 0 {
		flags := make([]interface{}, len(v.Flags))
		for i, f := range v.Flags {
			flag := model.JSONMap{"vital": f.Vital, "severity": string(f.Severity)}
			wire.PutString(flag, "note", f.Note)
			flags[i] = flag
		}
		out["abnormalFlags"] = flags
	}
	return out
}
