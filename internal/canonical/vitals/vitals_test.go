package vitals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/admin-records/internal/model"
)

func TestCanonicalize_BloodPressureShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  model.JSONMap
		want *model.BloodPressure
	}{
		{"object", model.JSONMap{"bloodPressure": model.JSONMap{"systolic": 150, "diastolic": "95"}},
			&model.BloodPressure{Systolic: 150, Diastolic: 95, Reading: "150/95"}},
		{"reading string", model.JSONMap{"bp": "118 / 76 mmHg"},
			&model.BloodPressure{Systolic: 118, Diastolic: 76, Reading: "118/76"}},
		{"legacy flat keys", model.JSONMap{"systolic": "85", "diastolic": 55},
			&model.BloodPressure{Systolic: 85, Diastolic: 55, Reading: "85/55"}},
		{"garbage", model.JSONMap{"bp": "high"}, nil},
		{"absent", model.JSONMap{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.raw).BloodPressure)
		})
	}
}

func TestCanonicalize_Measurements(t *testing.T) {
	v := Canonicalize(model.JSONMap{
		"temperature":  101.2,
		"weight":       model.JSONMap{"value": "64.5", "unit": "KG"},
		"height":       170,
		"bloodGlucose": model.JSONMap{"value": 110, "testType": "Fasting"},
		"spo2":         "97",
	})

	require.NotNil(t, v.Temperature)
	assert.Equal(t, model.Fahrenheit, v.Temperature.Unit)
	assert.True(t, v.Temperature.IsFever())
	assert.Equal(t, &model.Weight{Value: 64.5, Unit: "kg"}, v.Weight)
	assert.Equal(t, &model.Height{Value: 170, Unit: "cm"}, v.Height)
	assert.Equal(t, &model.BloodGlucose{Value: 110, TestType: "fasting"}, v.BloodGlucose)
	assert.Equal(t, model.VitalNormal, v.BloodGlucose.Status())
	require.NotNil(t, v.OxygenSaturation)
	assert.Equal(t, 97.0, *v.OxygenSaturation)

	c := Canonicalize(model.JSONMap{"temp": "37.2", "temperatureUnit": "°C"})
	assert.Equal(t, &model.Temperature{Value: 37.2, Unit: model.Celsius}, c.Temperature)
	assert.False(t, c.Temperature.IsFever())
}

func TestCanonicalize_EarlierKeyWinsAcrossShapes(t *testing.T) {
	v := Canonicalize(model.JSONMap{
		"bloodPressure": "150/95",
		"bp":            model.JSONMap{"systolic": 110, "diastolic": 70},
		"temperature":   39.5,
		"temp":          model.JSONMap{"value": 36.6, "unit": "C"},
		"bloodGlucose":  "180",
		"glucose":       model.JSONMap{"value": 90},
		"weight":        "not weighed",
	})

	assert.Equal(t, &model.BloodPressure{Systolic: 150, Diastolic: 95, Reading: "150/95"}, v.BloodPressure)
	assert.Equal(t, &model.Temperature{Value: 39.5, Unit: model.Celsius}, v.Temperature)
	assert.True(t, v.Temperature.IsFever())
	assert.Equal(t, &model.BloodGlucose{Value: 180, TestType: "random"}, v.BloodGlucose)
	assert.Nil(t, v.Weight)

	vitals := make([]string, len(v.Flags))
	for i, f := range v.Flags {
		vitals[i] = f.Vital
	}
	assert.Contains(t, vitals, "bloodPressure")

	// an object first wins over a later scalar
	o := Canonicalize(model.JSONMap{
		"bloodPressure": model.JSONMap{"systolic": 110, "diastolic": 70},
		"bp":            "150/95",
	})
	assert.Equal(t, &model.BloodPressure{Systolic: 110, Diastolic: 70, Reading: "110/70"}, o.BloodPressure)
}

func TestCanonicalize_DerivesFlagsWhenAbsent(t *testing.T) {
	v := Canonicalize(model.JSONMap{
		"bp":        "185/100",
		"spo2":      88,
		"heartRate": 72,
	})

	require.Len(t, v.Flags, 2)
	assert.Equal(t, "bloodPressure", v.Flags[0].Vital)
	assert.Equal(t, model.SeverityCritical, v.Flags[0].Severity)
	assert.Equal(t, "oxygenSaturation", v.Flags[1].Vital)
	assert.Equal(t, model.SeverityCritical, v.Flags[1].Severity)
}

func TestCanonicalize_KeepsRecordedFlags(t *testing.T) {
	v := Canonicalize(model.JSONMap{
		"bp":            "185/100",
		"abnormalFlags": []interface{}{
			model.JSONMap{"parameter": "pain", "severity": "SEVERE", "message": "reported 8/10"},
			"temperature",
			model.JSONMap{"severity": "mild"},
		},
	})

	assert.Equal(t, []model.AbnormalFlag{
		{Vital: "pain", Severity: model.SeveritySevere, Note: "reported 8/10"},
		{Vital: "temperature", Severity: model.SeverityMild},
	}, v.Flags)
}

func TestCanonicalize_References(t *testing.T) {
	v := Canonicalize(model.JSONMap{
		"patient":       model.JSONMap{"_id": "p-1", "firstName": "Ravi"},
		"recordedBy":    model.JSONMap{"name": "Nurse Joy"},
		"appointmentId": "a-3",
	})

	assert.Equal(t, "p-1", v.PatientID)
	assert.Equal(t, "Nurse Joy", v.RecordedBy)
	assert.Equal(t, "a-3", v.AppointmentID)
	assert.Empty(t, v.ID)
	assert.NotNil(t, v.Flags)
}

func TestSerialize_RoundTrip(t *testing.T) {
	first := Canonicalize(model.JSONMap{
		"_id":        "v-1",
		"patientId":  "p-1",
		"recordedAt": "2024-03-01T08:00:00Z",
		"bp":         "150/92",
		"temp":       38.4,
		"weight":     72,
		"bloodSugar": 65,
		"pulse":      "110",
		"painScale":  3,
		"notes":      "post-op",
	})
	require.NotEmpty(t, first.Flags)

	out := Serialize(first)
	assert.Equal(t, model.JSONMap{"systolic": 150.0, "diastolic": 92.0, "reading": "150/92"}, out["bloodPressure"])
	assert.NotContains(t, out, "height")
	assert.NotContains(t, out, "respiratoryRate")

	assert.Equal(t, first, Canonicalize(out))
}

func TestSerialize_OmitsEmptyFlags(t *testing.T) {
	out := Serialize(model.PatientVitals{PatientID: "p-1", Flags: []model.AbnormalFlag{}})
	assert.Equal(t, model.JSONMap{"patientId": "p-1"}, out)
}
