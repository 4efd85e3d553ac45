// Package identity canonicalizes user identities and composes the
// role-specific profiles (doctor, pharmacist, pathologist, admin) on top of them.
package identity

import (
	"strings"

	"github.com/jwalitptl/admin-records/internal/canonical/wire"
	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/coerce"
	"github.com/jwalitptl/admin-records/pkg/errors"
	"github.com/jwalitptl/admin-records/pkg/resolve"
)

var roleAliases = map[string]model.Role{
	"superadmin":   model.RoleSuperAdmin,
	"super_admin":  model.RoleSuperAdmin,
	"super-admin":  model.RoleSuperAdmin,
	"super admin":  model.RoleSuperAdmin,
	"admin":        model.RoleAdmin,
	"doctor":       model.RoleDoctor,
	"pharmacist":   model.RolePharmacist,
	"pathologist":  model.RolePathologist,
	"reception":    model.RoleReception,
	"receptionist": model.RoleReception,
	"front_desk":   model.RoleReception,
}

var (
	idPaths        = resolve.Keys("_id", "id", "userId", "user_id")
	rolePaths      = resolve.Chain(resolve.Keys("role", "userRole", "user_role", "type"), resolve.Under("metadata", "role"))
	firstNamePaths = resolve.Chain(resolve.Keys("firstName", "first_name", "givenName", "fname"), resolve.Under("name", "first", "given"))
	lastNamePaths  = resolve.Chain(resolve.Keys("lastName", "last_name", "familyName", "lname"), resolve.Under("name", "last", "family"))
	dobPaths       = resolve.Chain(resolve.Keys("dateOfBirth", "dob", "date_of_birth", "birthDate"), resolve.Under("metadata", "dateOfBirth", "dob"))
	emailPaths     = resolve.Chain(resolve.Keys("email", "emailAddress"), resolve.Under("contact", "email"))
	phonePaths     = resolve.Chain(resolve.Keys("phone", "phoneNumber", "phone_number", "mobile"), resolve.Under("contact", "phone"))
	createdAtPaths = resolve.Keys("createdAt", "created_at", "dateJoined")
)

// ParseRole maps free-form role input onto the closed Role set.
func ParseRole(v interface{}) model.Role {
	key := strings.ToLower(strings.TrimSpace(coerce.String(v)))
	if role, ok := roleAliases[key]; ok {
		return role
	}
	return model.RoleUnknown
}

// ParseIdentity canonicalizes a user record. It never fails; missing fields
// stay empty and an unrecognized role becomes RoleUnknown.
func ParseIdentity(raw model.JSONMap) model.UserIdentity {
	u := model.UserIdentity{
		ID:          resolve.String(raw, "", idPaths...),
		Role:        ParseRole(resolve.FirstOr(raw, nil, rolePaths...)),
		FirstName:   resolve.String(raw, "", firstNamePaths...),
		LastName:    resolve.String(raw, "", lastNamePaths...),
		DateOfBirth: resolve.Time(raw, dobPaths...),
		Email:       resolve.String(raw, "", emailPaths...),
		Phone:       resolve.String(raw, "", phonePaths...),
		Country:     resolve.String(raw, "", resolve.Key("country"), resolve.Key("address", "country")),
		State:       resolve.String(raw, "", resolve.Key("state"), resolve.Key("address", "state")),
		City:        resolve.String(raw, "", resolve.Key("city"), resolve.Key("address", "city")),
		CreatedAt:   resolve.Time(raw, createdAtPaths...),
	}

	if u.FirstName == "" && u.LastName == "" {
		u.FirstName, u.LastName = SplitName(resolve.String(raw, "", resolve.Key("name"), resolve.Key("fullName")))
	}
	return u
}

// SplitName splits a full name at the first space.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

// ComposeRoleProfile wraps identity in a profile for target. It fails with a
// RoleMismatch error when the identity declares another role. Admin profiles
// carry no extras.
func ComposeRoleProfile(identity model.UserIdentity, target model.Role, extras model.ProfileExtras) (model.RoleProfile, error) {
	if !target.HasProfile() {
		return model.RoleProfile{}, errors.BadRequest("unsupported profile role "+string(target), nil)
	}
	if identity.Role != target {
		return model.RoleProfile{}, errors.NewRoleMismatch(string(target), string(identity.Role))
	}
	if !target.UsesClinicalExtras() {
		extras = model.ProfileExtras{}
	}
	return model.RoleProfile{
		Role:          target,
		Identity:      identity,
		ProfileExtras: extras,
	}, nil
}

// ParseExtras reads the clinical profile attributes from a raw record.
func ParseExtras(raw model.JSONMap) model.ProfileExtras {
	return model.ProfileExtras{
		Specialization: resolve.String(raw, "",
			resolve.Key("specialization"), resolve.Key("speciality"), resolve.Key("specialty"),
			resolve.Key("metadata", "specialization")),
		LicenseNumber: resolve.String(raw, "",
			resolve.Key("licenseNumber"), resolve.Key("license_number"), resolve.Key("licenseNo"),
			resolve.Key("registrationNumber"), resolve.Key("metadata", "licenseNumber")),
		Department: resolve.String(raw, "",
			resolve.Key("department"), resolve.Key("dept"), resolve.Key("metadata", "department")),
	}
}

// ParseRoleProfile canonicalizes a profile record. The identity is read from
// a nested "user" object when present, otherwise from the record itself.
func ParseRoleProfile(raw model.JSONMap, target model.Role) (model.RoleProfile, error) {
	identity := ParseIdentity(userObject(raw))
	return ComposeRoleProfile(identity, target, ParseExtras(raw))
}

func userObject(raw model.JSONMap) model.JSONMap {
	if user, ok := resolve.Map(raw, resolve.Key("user"), resolve.Key("userId")); ok {
		merged := make(model.JSONMap, len(user))
		for k, v := range user {
			merged[k] = v
		}
		// profile documents often keep the id on the outer record
		if _, found := resolve.First(merged, idPaths...); !found {
			if v, ok := resolve.First(raw, idPaths...); ok {
				merged["id"] = v
			}
		}
		return merged
	}
	return raw
}

// SerializeIdentity produces the flat wire form of an identity.
func SerializeIdentity(u model.UserIdentity) model.JSONMap {
	out := model.JSONMap{
		"role":      string(u.Role),
		"firstName": u.FirstName,
		"lastName":  u.LastName,
	}
	wire.PutString(out, "id", u.ID)
	wire.PutString(out, "email", u.Email)
	wire.PutString(out, "phone", u.Phone)
	wire.PutString(out, "country", u.Country)
	wire.PutString(out, "state", u.State)
	wire.PutString(out, "city", u.City)
	if u.DateOfBirth != nil {
		out["dateOfBirth"] = coerce.DateString(*u.DateOfBirth)
	}
	if u.CreatedAt != nil {
		out["createdAt"] = coerce.TimestampString(*u.CreatedAt)
	}
	return out
}

// SerializeRoleProfile merges identity fields and profile extras into one flat record.
func SerializeRoleProfile(p model.RoleProfile) model.JSONMap {
	out := SerializeIdentity(p.Identity)
	out["role"] = string(p.Role)
	wire.PutString(out, "specialization", p.Specialization)
	wire.PutString(out, "licenseNumber", p.LicenseNumber)
	wire.PutString(out, "department", p.Department)
	return out
}
