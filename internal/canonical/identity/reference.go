package identity

import (
	"github.com/jwalitptl/admin-records/internal/canonical/wire"
	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/coerce"
	"github.com/jwalitptl/admin-records/pkg/resolve"
)

// ParseReference resolves a relationship field that may be an embedded object
// or a bare id. fallbackName is used when the value itself carries no name
// (typically a sibling "doctorName" key). For embedded objects and a role with
// a profile variant, the object is also composed into a RoleProfile; embedded
// records that omit their role are assumed to have the field's role, and ones
// that declare any other role, recognized or not, keep only id and name.
func ParseReference(v interface{}, fallbackName string, role model.Role) model.Reference {
	if obj, ok := coerce.Map(v); ok {
		ref := model.Reference{Kind: model.ReferenceEmbedded}

		user := userObject(obj)
		ident := ParseIdentity(user)
		ref.ID = ident.ID
		ref.DisplayName = ident.FullName()
		if ref.DisplayName == "" {
			ref.DisplayName = fallbackName
		}

		if role.HasProfile() {
			if _, declared := resolve.First(user, rolePaths...); !declared {
				ident.Role = role
			}
			if profile, err := ComposeRoleProfile(ident, role, ParseExtras(obj)); err == nil {
				ref.Profile = &profile
			}
		}
		return ref
	}

	if id := coerce.String(v); id != "" {
		return model.Reference{Kind: model.ReferenceID, ID: id, DisplayName: fallbackName}
	}

	if fallbackName != "" {
		return model.Reference{Kind: model.ReferenceNone, DisplayName: fallbackName}
	}
	return model.Reference{Kind: model.ReferenceNone}
}

// ReferenceValue returns the first candidate holding either an object or a
// non-blank string, so "doctor": {} loses to a later "doctorId": "d1".
func ReferenceValue(raw model.JSONMap, keys ...string) interface{} {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if obj, isMap := coerce.Map(v); isMap {
			if len(obj) > 0 {
				return obj
			}
			continue
		}
		if coerce.String(v) != "" {
			return v
		}
	}
	return nil
}

// SerializeReference writes the reference as "<prefix>Id" and "<prefix>Name".
// Backends accept the id on writes; the embedded object is never echoed back.
func SerializeReference(out model.JSONMap, prefix string, ref model.Reference) {
	wire.PutString(out, prefix+"Id", ref.ID)
	wire.PutString(out, prefix+"Name", ref.DisplayName)
}
