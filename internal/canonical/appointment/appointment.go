// Package appointment reconciles backend appointment documents. Backends
// send the schedule either as one timestamp or as separate date and time
// fields; both collapse into model.Appointment.DateTime.
package appointment

import (
	"strings"
	"time"

	"github.com/jwalitptl/admin-records/internal/canonical/identity"
	"github.com/jwalitptl/admin-records/internal/canonical/wire"
	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/coerce"
	"github.com/jwalitptl/admin-records/pkg/resolve"
)

var statusAliases = map[string]model.AppointmentStatus{
	"scheduled": model.AppointmentStatusScheduled,
	"booked":    model.AppointmentStatusScheduled,
	"pending":   model.AppointmentStatusScheduled,
	"confirmed": model.AppointmentStatusConfirmed,
	"cancelled": model.AppointmentStatusCancelled,
	"canceled":  model.AppointmentStatusCancelled,
	"completed": model.AppointmentStatusCompleted,
	"done":      model.AppointmentStatusCompleted,
	"no-show":   model.AppointmentStatusNoShow,
	"no_show":   model.AppointmentStatusNoShow,
	"noshow":    model.AppointmentStatusNoShow,
}

var (
	idPaths         = resolve.Keys("_id", "id", "appointmentId", "appointment_id")
	clientNamePaths = resolve.Chain(resolve.Keys("clientName", "client_name", "patientName", "patient_name"), resolve.Under("metadata", "clientName"))
	typePaths       = resolve.Chain(resolve.Keys("type", "appointmentType", "visitType"), resolve.Under("metadata", "type"))
	dateTimePaths   = resolve.Keys("dateTime", "datetime", "startTime", "start_time", "scheduledAt")
	datePaths       = resolve.Keys("date", "appointmentDate", "appointment_date")
	clockPaths      = resolve.Keys("time", "appointmentTime", "appointment_time", "slot")
	locationPaths   = resolve.Chain(resolve.Keys("location", "room"), resolve.Under("metadata", "location"))
	notesPaths      = resolve.Chain(resolve.Keys("notes", "remarks"), resolve.Under("metadata", "notes"))
	genderPaths     = resolve.Chain(resolve.Keys("gender"), resolve.Under("patient", "gender"), resolve.Under("metadata", "gender"))
	phonePaths      = resolve.Chain(resolve.Keys("phone", "phoneNumber", "contactNumber"), resolve.Under("patient", "phone"), resolve.Under("metadata", "phone"))
	modePaths       = resolve.Chain(resolve.Keys("mode", "consultationMode", "visitMode"), resolve.Under("metadata", "mode"))
	priorityPaths   = resolve.Chain(resolve.Keys("priority", "urgency"), resolve.Under("metadata", "priority"))
	durationPaths   = resolve.Chain(resolve.Keys("duration", "durationMinutes", "duration_minutes"), resolve.Under("metadata", "duration"))
	reminderPaths   = resolve.Chain(resolve.Keys("reminder", "sendReminder", "reminderEnabled"), resolve.Under("metadata", "reminder"))
	complaintPaths  = resolve.Chain(resolve.Keys("chiefComplaint", "chief_complaint", "reason", "complaint"), resolve.Under("metadata", "chiefComplaint"))

	heightPaths    = resolve.Chain(resolve.Under("vitals", "height"), resolve.Keys("height"))
	weightPaths    = resolve.Chain(resolve.Under("vitals", "weight"), resolve.Keys("weight"))
	bpPaths        = resolve.Chain(resolve.Under("vitals", "bp", "bloodPressure"), resolve.Keys("bp", "bloodPressure"))
	heartRatePaths = resolve.Chain(resolve.Under("vitals", "heartRate", "pulse"), resolve.Keys("heartRate", "pulse"))
	oxygenPaths    = resolve.Chain(resolve.Under("vitals", "oxygen", "spo2"), resolve.Keys("oxygen", "spo2"))
)

// ParseStatus maps backend spellings onto the closed status set; anything
// unrecognized is scheduled.
func ParseStatus(v interface{}) model.AppointmentStatus {
	key := strings.ToLower(strings.TrimSpace(coerce.String(v)))
	key = strings.ReplaceAll(key, " ", "-")
	if s, ok := statusAliases[key]; ok {
		return s
	}
	return model.AppointmentStatusScheduled
}

// Canonicalize is CanonicalizeAt evaluated now.
func Canonicalize(raw model.JSONMap) model.Appointment {
	return CanonicalizeAt(raw, time.Now())
}

// CanonicalizeAt builds an appointment from any backend shape. now stands in
// for a missing date.
func CanonicalizeAt(raw model.JSONMap, now time.Time) model.Appointment {
	a := model.Appointment{
		ID:             resolve.String(raw, "", idPaths...),
		ClientName:     resolve.String(raw, "", clientNamePaths...),
		Type:           resolve.String(raw, "", typePaths...),
		DateTime:       scheduledAt(raw, now),
		Location:       resolve.String(raw, "", locationPaths...),
		Notes:          resolve.String(raw, "", notesPaths...),
		Gender:         strings.ToLower(resolve.String(raw, "", genderPaths...)),
		Phone:          resolve.String(raw, "", phonePaths...),
		Mode:           strings.ToLower(resolve.String(raw, "", modePaths...)),
		Priority:       strings.ToLower(resolve.String(raw, "", priorityPaths...)),
		Duration:       resolve.Int(raw, model.DefaultAppointmentDuration, durationPaths...),
		Reminder:       resolve.Bool(raw, false, reminderPaths...),
		ChiefComplaint: resolve.String(raw, "", complaintPaths...),
		Vitals: model.AppointmentVitals{
			Height:    resolve.FloatPtr(raw, heightPaths...),
			Weight:    resolve.FloatPtr(raw, weightPaths...),
			BP:        wire.BPReading(resolve.FirstOr(raw, nil, bpPaths...)),
			HeartRate: resolve.FloatPtr(raw, heartRatePaths...),
			Oxygen:    resolve.FloatPtr(raw, oxygenPaths...),
		},
		Status:    ParseStatus(resolve.FirstOr(raw, nil, resolve.Key("status"))),
		CreatedAt: resolve.Time(raw, resolve.Keys("createdAt", "created_at")...),
	}
	if a.Duration <= 0 {
		a.Duration = model.DefaultAppointmentDuration
	}

	a.Patient = identity.ParseReference(
		identity.ReferenceValue(raw, "patient", "patientId", "patient_id"),
		resolve.String(raw, "", resolve.Keys("patientName", "patient_name")...),
		model.RoleUnknown,
	)
	a.Doctor = identity.ParseReference(
		identity.ReferenceValue(raw, "doctor", "doctorId", "doctor_id"),
		resolve.String(raw, "", resolve.Keys("doctorName", "doctor_name")...),
		model.RoleDoctor,
	)

	if a.ClientName == "" {
		a.ClientName = a.Patient.DisplayName
	}
	return a
}

// scheduledAt prefers a combined timestamp, then date plus time of day. A
// time without a date lands on now's date; nothing at all yields now.
func scheduledAt(raw model.JSONMap, now time.Time) time.Time {
	if t := resolve.Time(raw, dateTimePaths...); t != nil {
		return *t
	}

	now = now.UTC()
	date := resolve.Time(raw, datePaths...)
	h, m, s, hasClock := coerce.Clock(resolve.FirstOr(raw, nil, clockPaths...))

	switch {
	case date != nil && hasClock:
		return time.Date(date.Year(), date.Month(), date.Day(), h, m, s, 0, time.UTC)
	case date != nil:
		return *date
	case hasClock:
		return time.Date(now.Year(), now.Month(), now.Day(), h, m, s, 0, time.UTC)
	}
	return now
}

// Serialize writes the appointment back with both the combined timestamp and
// the split date/time fields older endpoints still read.
func Serialize(a model.Appointment) model.JSONMap {
	duration := a.Duration
	if duration <= 0 {
		duration = model.DefaultAppointmentDuration
	}
	status := a.Status
	if status == "" {
		status = model.AppointmentStatusScheduled
	}

	out := model.JSONMap{
		"clientName": a.ClientName,
		"dateTime":   coerce.TimestampString(a.DateTime),
		"date":       a.Date(),
		"time":       a.TimeOfDay(),
		"duration":   duration,
		"reminder":   a.Reminder,
		"status":     string(status),
	}

	wire.PutString(out, "id", a.ID)
	wire.PutString(out, "type", a.Type)
	wire.PutString(out, "location", a.Location)
	wire.PutString(out, "notes", a.Notes)
	wire.PutString(out, "gender", a.Gender)
	wire.PutString(out, "phone", a.Phone)
	wire.PutString(out, "mode", a.Mode)
	wire.PutString(out, "priority", a.Priority)
	wire.PutString(out, "chiefComplaint", a.ChiefComplaint)
	wire.PutTimestamp(out, "createdAt", a.CreatedAt)

	if !a.Vitals.IsZero() {
		vitals := model.JSONMap{}
		wire.PutFloat(vitals, "height", a.Vitals.Height)
		wire.PutFloat(vitals, "weight", a.Vitals.Weight)
		wire.PutString(vitals, "bp", a.Vitals.BP)
		wire.PutFloat(vitals, "heartRate", a.Vitals.HeartRate)
		wire.PutFloat(vitals, "oxygen", a.Vitals.Oxygen)
		out["vitals"] = vitals
	}

	identity.SerializeReference(out, "patient", a.Patient)
	identity.SerializeReference(out, "doctor", a.Doctor)
	return out
}
