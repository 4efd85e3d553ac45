package model

import (
	"fmt"
	"time"
)

// VitalCategory classifies a reading against its reference range
type VitalCategory string

const (
	VitalNormal VitalCategory = "normal"
	VitalHigh   VitalCategory = "high"
	VitalLow    VitalCategory = "low"
)

type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "C"
	Fahrenheit TemperatureUnit = "F"
)

// Fever thresholds per unit
const (
	FeverCelsius    = 38.0
	FeverFahrenheit = 100.4
)

// BloodPressure in mmHg. Reading keeps the "120/80" form.
type BloodPressure struct {
	Systolic  float64 `json:"systolic"`
	Diastolic float64 `json:"diastolic"`
	Reading   string  `json:"reading"`
}

// Category flags high before low, so 150/55 is high.
func (bp BloodPressure) Category() VitalCategory {
	switch {
	case bp.Systolic > 140 || bp.Diastolic > 90:
		return VitalHigh
	case bp.Systolic < 90 || bp.Diastolic < 60:
		return VitalLow
	}
	return VitalNormal
}

type Temperature struct {
	Value float64         `json:"value"`
	Unit  TemperatureUnit `json:"unit"`
}

func (t Temperature) IsFever() bool {
	if t.Unit == Fahrenheit {
		return t.Value >= FeverFahrenheit
	}
	return t.Value >= FeverCelsius
}

type Weight struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type Height struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// BloodGlucose in mg/dL; TestType is fasting, random, post-prandial, ...
type BloodGlucose struct {
	Value    float64 `json:"value"`
	TestType string  `json:"testType"`
}

func (g BloodGlucose) Status() VitalCategory {
	switch {
	case g.Value > 140:
		return VitalHigh
	case g.Value < 70:
		return VitalLow
	}
	return VitalNormal
}

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

type AbnormalFlag struct {
	Vital    string   `json:"vital"`
	Severity Severity `json:"severity"`
	Note     string   `json:"note,omitempty"`
}

// PatientVitals is one vitals recording tied to a patient and, optionally, an appointment.
type PatientVitals struct {
	ID               string         `json:"id"`
	PatientID        string         `json:"patientId"`
	AppointmentID    string         `json:"appointmentId,omitempty"`
	RecordedBy       string         `json:"recordedBy,omitempty"`
	RecordedAt       *time.Time     `json:"recordedAt,omitempty"`
	Location         string         `json:"location,omitempty"`
	BloodPressure    *BloodPressure `json:"bloodPressure,omitempty"`
	Temperature      *Temperature   `json:"temperature,omitempty"`
	Weight           *Weight        `json:"weight,omitempty"`
	Height           *Height        `json:"height,omitempty"`
	BloodGlucose     *BloodGlucose  `json:"bloodGlucose,omitempty"`
	HeartRate        *float64       `json:"heartRate,omitempty"`
	RespiratoryRate  *float64       `json:"respiratoryRate,omitempty"`
	OxygenSaturation *float64       `json:"oxygenSaturation,omitempty"`
	PainScale        *float64       `json:"painScale,omitempty"`
	Flags            []AbnormalFlag `json:"abnormalFlags"`
	Notes            string         `json:"notes,omitempty"`
}

// DerivedFlags computes abnormal flags from the recorded values.
func (v PatientVitals) DerivedFlags() []AbnormalFlag {
	flags := []AbnormalFlag{}

	if bp := v.BloodPressure; bp != nil {
		switch bp.Category() {
		case VitalHigh:
			sev := SeverityModerate
			if bp.Systolic >= 180 || bp.Diastolic >= 120 {
				sev = SeverityCritical
			}
			flags = append(flags, AbnormalFlag{Vital: "bloodPressure", Severity: sev, Note: "high blood pressure " + bp.Reading})
		case VitalLow:
			flags = append(flags, AbnormalFlag{Vital: "bloodPressure", Severity: SeverityModerate, Note: "low blood pressure " + bp.Reading})
		}
	}
	if t := v.Temperature; t != nil && t.IsFever() {
		flags = append(flags, AbnormalFlag{Vital: "temperature", Severity: SeverityModerate, Note: fmt.Sprintf("fever %.1f %s", t.Value, t.Unit)})
	}
	if g := v.BloodGlucose; g != nil {
		switch g.Status() {
		case VitalHigh:
			flags = append(flags, AbnormalFlag{Vital: "bloodGlucose", Severity: SeverityModerate, Note: "hyperglycemia"})
		case VitalLow:
			flags = append(flags, AbnormalFlag{Vital: "bloodGlucose", Severity: SeveritySevere, Note: "hypoglycemia"})
		}
	}
	if o := v.OxygenSaturation; o != nil && *o < 95 {
		sev := SeverityModerate
		if *o < 90 {
			sev = SeverityCritical
		}
		flags = append(flags, AbnormalFlag{Vital: "oxygenSaturation", Severity: sev, Note: fmt.Sprintf("SpO2 %.0f%%", *o)})
	}
	if hr := v.HeartRate; hr != nil && (*hr < 60 || *hr > 100) {
		flags = append(flags, AbnormalFlag{Vital: "heartRate", Severity: SeverityMild, Note: fmt.Sprintf("heart rate %.0f bpm", *hr)})
	}
	return flags
}
