// Package staff reconciles staff documents. Staff records are the least
// consistent entity the backend serves: the employee code alone has a
// dozen spellings, and anything the forms don't model lives in metadata.
package staff

import (
	"strings"

	"github.com/jwalitptl/admin-records/internal/canonical/identity"
	"github.com/jwalitptl/admin-records/internal/canonical/wire"
	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/coerce"
	"github.com/jwalitptl/admin-records/pkg/resolve"
)

var statusAliases = map[string]model.StaffStatus{
	"active":    model.StaffStatusActive,
	"inactive":  model.StaffStatusInactive,
	"disabled":  model.StaffStatusInactive,
	"suspended": model.StaffStatusInactive,
	"on-leave":  model.StaffStatusOnLeave,
	"on_leave":  model.StaffStatusOnLeave,
	"onleave":   model.StaffStatusOnLeave,
	"leave":     model.StaffStatusOnLeave,
}

var codeKeys = []string{
	"staffCode", "staff_code", "employeeCode", "employee_code",
	"employeeId", "employee_id", "empId", "emp_id", "code",
}

// metadataFields are the metadata keys lifted into canonical fields; every
// other metadata key is kept in Staff.Extra.
var metadataFields = map[string]bool{
	"name": true, "fullName": true, "designation": true, "department": true,
	"email": true, "phone": true, "gender": true, "status": true, "shift": true,
	"experience": true, "roles": true, "qualifications": true, "tags": true,
	"joiningDate": true, "joinedAt": true, "lastActive": true, "notes": true,
}

func init() {
	for _, k := range codeKeys {
		metadataFields[k] = true
	}
}

var (
	idPaths             = resolve.Keys("_id", "id", "staffId", "staff_id")
	namePaths           = resolve.Chain(resolve.Keys("name", "fullName", "full_name"), resolve.Under("metadata", "name", "fullName"))
	designationPaths    = resolve.Chain(resolve.Keys("designation", "title", "position", "jobTitle"), resolve.Under("metadata", "designation"))
	departmentPaths     = resolve.Chain(resolve.Keys("department", "dept"), resolve.Under("metadata", "department"))
	codePaths           = resolve.Chain(resolve.Keys(codeKeys...), resolve.Under("metadata", codeKeys...))
	emailPaths          = resolve.Chain(resolve.Keys("email"), resolve.Under("contact", "email"), resolve.Under("metadata", "email"))
	phonePaths          = resolve.Chain(resolve.Keys("phone", "phoneNumber", "mobile"), resolve.Under("contact", "phone"), resolve.Under("metadata", "phone"))
	genderPaths         = resolve.Chain(resolve.Keys("gender"), resolve.Under("metadata", "gender"))
	statusPaths         = resolve.Chain(resolve.Keys("status"), resolve.Under("metadata", "status"))
	shiftPaths          = resolve.Chain(resolve.Keys("shift", "shiftType"), resolve.Under("metadata", "shift"))
	experiencePaths     = resolve.Chain(resolve.Keys("experience", "experienceYears", "yearsOfExperience"), resolve.Under("metadata", "experience"))
	rolesPaths          = resolve.Chain(resolve.Keys("roles", "role"), resolve.Under("metadata", "roles"))
	qualificationsPaths = resolve.Chain(resolve.Keys("qualifications", "qualification", "education"), resolve.Under("metadata", "qualifications"))
	tagsPaths           = resolve.Chain(resolve.Keys("tags", "labels"), resolve.Under("metadata", "tags"))
	joinedAtPaths       = resolve.Chain(resolve.Keys("joinedAt", "joiningDate", "joining_date", "dateOfJoining"), resolve.Under("metadata", "joiningDate", "joinedAt"))
	lastActivePaths     = resolve.Chain(resolve.Keys("lastActive", "lastLogin", "last_active"), resolve.Under("metadata", "lastActive"))
	notesPaths          = resolve.Chain(resolve.Keys("notes"), resolve.Under("metadata", "notes"))
)

// ParseStatus maps backend spellings onto the closed status set; anything
// unrecognized is active.
func ParseStatus(v interface{}) model.StaffStatus {
	key := strings.ToLower(strings.TrimSpace(coerce.String(v)))
	if s, ok := statusAliases[strings.ReplaceAll(key, " ", "-")]; ok {
		return s
	}
	return model.StaffStatusActive
}

func Canonicalize(raw model.JSONMap) model.Staff {
	s := model.Staff{
		ID:             resolve.String(raw, "", idPaths...),
		Name:           resolve.String(raw, "", namePaths...),
		Designation:    resolve.String(raw, "", designationPaths...),
		Department:     resolve.String(raw, "", departmentPaths...),
		StaffCode:      resolve.String(raw, "", codePaths...),
		Email:          resolve.String(raw, "", emailPaths...),
		Phone:          resolve.String(raw, "", phonePaths...),
		Gender:         strings.ToLower(resolve.String(raw, "", genderPaths...)),
		Status:         ParseStatus(resolve.FirstOr(raw, nil, statusPaths...)),
		Shift:          resolve.String(raw, "", shiftPaths...),
		Experience:     resolve.Float(raw, 0, experiencePaths...),
		Roles:          resolve.Strings(raw, []string{"items"}, rolesPaths...),
		Qualifications: resolve.Strings(raw, []string{"items", "degrees"}, qualificationsPaths...),
		Tags:           resolve.Strings(raw, nil, tagsPaths...),
		JoinedAt:       resolve.Time(raw, joinedAtPaths...),
		LastActive:     resolve.Time(raw, lastActivePaths...),
		Notes:          notes(resolve.FirstOr(raw, nil, notesPaths...)),
		Extra:          extra(raw),
	}

	if s.Name == "" {
		// user-backed staff documents carry the name split or on the user object
		user, ok := resolve.Map(raw, resolve.Key("user"))
		if !ok {
			user = raw
		}
		s.Name = identity.ParseIdentity(user).FullName()
	}
	return s
}

// notes accepts a keyed object or a single free-text note.
func notes(v interface{}) map[string]string {
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return map[string]string{"general": s}
		}
	}
	return coerce.StringMap(v)
}

func extra(raw model.JSONMap) map[string]interface{} {
	out := map[string]interface{}{}
	meta, ok := resolve.Map(raw, resolve.Key("metadata"))
	if !ok {
		return out
	}
	for k, v := range meta {
		if metadataFields[k] || v == nil {
			continue
		}
		out[model.MetaPrefix+k] = v
	}
	return out
}

// Serialize writes canonical fields top-level and rebuilds metadata from the
// meta_-prefixed Extra keys only. Extra keys without the prefix are not sent.
func Serialize(s model.Staff) model.JSONMap {
	status := s.Status
	if status == "" {
		status = model.StaffStatusActive
	}

	out := model.JSONMap{
		"name":       s.Name,
		"status":     string(status),
		"experience": s.Experience,
	}
	wire.PutString(out, "id", s.ID)
	wire.PutString(out, "designation", s.Designation)
	wire.PutString(out, "department", s.Department)
	wire.PutString(out, "staffCode", s.StaffCode)
	wire.PutString(out, "email", s.Email)
	wire.PutString(out, "phone", s.Phone)
	wire.PutString(out, "gender", s.Gender)
	wire.PutString(out, "shift", s.Shift)
	wire.PutStrings(out, "roles", s.Roles)
	wire.PutStrings(out, "qualifications", s.Qualifications)
	wire.PutStrings(out, "tags", s.Tags)
	wire.PutTimestamp(out, "joinedAt", s.JoinedAt)
	wire.PutTimestamp(out, "lastActive", s.LastActive)

	if len(s.Notes) > 0 {
		notes := make(model.JSONMap, len(s.Notes))
		for k, v := range s.Notes {
			notes[k] = v
		}
		out["notes"] = notes
	}

	meta := model.JSONMap{}
	for k, v := range s.Extra {
		if key := strings.TrimPrefix(k, model.MetaPrefix); key != k && key != "" {
			meta[key] = v
		}
	}
	wire.PutMap(out, "metadata", meta)
	return out
}
