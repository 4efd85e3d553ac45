package model

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

// DefaultAppointmentDuration in minutes
const DefaultAppointmentDuration = 30

// AppointmentVitals is the vitals snapshot taken at check-in
type AppointmentVitals struct {
	Height    *float64 `json:"height,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	BP        string   `json:"bp,omitempty"`
	HeartRate *float64 `json:"heartRate,omitempty"`
	Oxygen    *float64 `json:"oxygen,omitempty"`
}

func (v AppointmentVitals) IsZero() bool {
	return v.Height == nil && v.Weight == nil && v.BP == "" && v.HeartRate == nil && v.Oxygen == nil
}

// Appointment is the canonical appointment entity. Date and time of day are
// both read from DateTime so they can never disagree.
type Appointment struct {
	ID             string            `json:"id"`
	ClientName     string            `json:"clientName"`
	Type           string            `json:"type,omitempty"`
	DateTime       time.Time         `json:"dateTime"`
	Location       string            `json:"location,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	Gender         string            `json:"gender,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	Mode           string            `json:"mode,omitempty"`
	Priority       string            `json:"priority,omitempty"`
	Duration       int               `json:"duration"`
	Reminder       bool              `json:"reminder"`
	ChiefComplaint string            `json:"chiefComplaint,omitempty"`
	Vitals         AppointmentVitals `json:"vitals"`
	Status         AppointmentStatus `json:"status"`
	Patient        Reference         `json:"patient"`
	Doctor         Reference         `json:"doctor"`
	CreatedAt      *time.Time        `json:"createdAt,omitempty"`
}

// Date returns the calendar date as YYYY-MM-DD.
func (a Appointment) Date() string {
	return a.DateTime.UTC().Format("2006-01-02")
}

// TimeOfDay returns the wall clock as HH:MM.
func (a Appointment) TimeOfDay() string {
	return a.DateTime.UTC().Format("15:04")
}

// EndTime is DateTime plus Duration.
func (a Appointment) EndTime() time.Time {
	return a.DateTime.Add(time.Duration(a.Duration) * time.Minute)
}

func (a Appointment) IsIdentified() bool {
	return a.ID != ""
}
