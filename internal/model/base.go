package model

// JSONMap represents a generic JSON object as decoded by encoding/json.
type JSONMap = map[string]interface{}

// Placeholder rendered by display accessors when a value is absent
const Placeholder = "--"

// ReferenceKind tells how a related record arrived on the wire
type ReferenceKind string

const (
	ReferenceNone     ReferenceKind = "none"
	ReferenceEmbedded ReferenceKind = "embedded"
	ReferenceID       ReferenceKind = "id"
)

// Reference is a relationship field that the backend sends either as a full
// embedded object or as a bare identifier string.
type Reference struct {
	Kind        ReferenceKind `json:"kind"`
	ID          string        `json:"id,omitempty"`
	DisplayName string        `json:"displayName,omitempty"`
	Profile     *RoleProfile  `json:"profile,omitempty"`
}

// IsZero reports whether the reference points at nothing.
func (r Reference) IsZero() bool {
	return r.ID == "" && r.DisplayName == "" && r.Profile == nil
}
