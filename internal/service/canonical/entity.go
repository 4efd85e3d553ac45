package canonical

import (
	"encoding/json"
	"strings"

	"github.com/jwalitptl/admin-records/internal/canonical/appointment"
	"github.com/jwalitptl/admin-records/internal/canonical/patient"
	"github.com/jwalitptl/admin-records/internal/canonical/payroll"
	"github.com/jwalitptl/admin-records/internal/canonical/staff"
	"github.com/jwalitptl/admin-records/internal/canonical/vitals"
	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/errors"
)

// Entity names a record kind the service can canonicalize.
type Entity string

const (
	EntityPatient     Entity = "patient"
	EntityAppointment Entity = "appointment"
	EntityVitals      Entity = "vitals"
	EntityStaff       Entity = "staff"
	EntityPayroll     Entity = "payroll"
)

// Entities lists every supported entity in a stable order.
var Entities = []Entity{EntityPatient, EntityAppointment, EntityVitals, EntityStaff, EntityPayroll}

var entityAliases = map[string]Entity{
	"patient":      EntityPatient,
	"patients":     EntityPatient,
	"appointment":  EntityAppointment,
	"appointments": EntityAppointment,
	"vitals":       EntityVitals,
	"vital":        EntityVitals,
	"staff":        EntityStaff,
	"payroll":      EntityPayroll,
	"payrolls":     EntityPayroll,
}

// ParseEntity accepts singular and plural spellings, case-insensitively.
func ParseEntity(s string) (Entity, error) {
	if e, ok := entityAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return e, nil
	}
	return "", errors.BadRequest("unknown entity "+s, nil)
}

// codec binds an entity's canonicalizer and serializer behind untyped
// signatures so the service can dispatch on Entity.
type codec struct {
	canonicalize func(raw model.JSONMap) (entity interface{}, id string)
	serialize    func(body []byte) (model.JSONMap, error)
}

func newCodec[T any](canonicalize func(model.JSONMap) T, serialize func(T) model.JSONMap, id func(T) string) codec {
	return codec{
		canonicalize: func(raw model.JSONMap) (interface{}, string) {
			v := canonicalize(raw)
			return v, id(v)
		},
		serialize: func(body []byte) (model.JSONMap, error) {
			var v T
			if err := json.Unmarshal(body, &v); err != nil {
				return nil, err
			}
			return serialize(v), nil
		},
	}
}

var codecs = map[Entity]codec{
	EntityPatient: newCodec(patient.Canonicalize, patient.Serialize,
		func(p model.Patient) string { return p.ID }),
	EntityAppointment: newCodec(appointment.Canonicalize, appointment.Serialize,
		func(a model.Appointment) string { return a.ID }),
	EntityVitals: newCodec(vitals.Canonicalize, vitals.Serialize,
		func(v model.PatientVitals) string { return v.ID }),
	EntityStaff: newCodec(staff.Canonicalize, staff.Serialize,
		func(s model.Staff) string { return s.ID }),
	EntityPayroll: newCodec(payroll.Canonicalize, payroll.Serialize,
		func(p model.Payroll) string { return p.ID }),
}
