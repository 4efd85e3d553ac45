package model

import (
	"strings"
	"time"
)

// Role is the closed set of user roles known to the admin front end
type Role string

const (
	RoleSuperAdmin  Role = "superadmin"
	RoleAdmin       Role = "admin"
	RoleDoctor      Role = "doctor"
	RolePharmacist  Role = "pharmacist"
	RolePathologist Role = "pathologist"
	RoleReception   Role = "reception"
	RoleUnknown     Role = "unknown"
)

// Roles lists every recognized role except RoleUnknown.
var Roles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleDoctor,
	RolePharmacist,
	RolePathologist,
	RoleReception,
}

// HasProfile reports whether the role has a RoleProfile variant.
func (r Role) HasProfile() bool {
	switch r {
	case RoleDoctor, RolePharmacist, RolePathologist, RoleAdmin:
		return true
	}
	return false
}

// UsesClinicalExtras reports whether profiles of this role carry
// specialization, license and department.
func (r Role) UsesClinicalExtras() bool {
	switch r {
	case RoleDoctor, RolePharmacist, RolePathologist:
		return true
	}
	return false
}

// UserIdentity is the canonical person behind any account
type UserIdentity struct {
	ID          string     `json:"id"`
	Role        Role       `json:"role"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Country     string     `json:"country"`
	State       string     `json:"state"`
	City        string     `json:"city"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// FullName joins the name parts that are present.
func (u UserIdentity) FullName() string {
	return JoinName(u.FirstName, u.LastName)
}

// Age is AgeAt evaluated now.
func (u UserIdentity) Age() int {
	return u.AgeAt(time.Now())
}

// AgeAt returns completed years at now, or 0 without a date of birth.
func (u UserIdentity) AgeAt(now time.Time) int {
	if u.DateOfBirth == nil {
		return 0
	}
	return AgeAt(*u.DateOfBirth, now)
}

// AgeAt subtracts birth year from the current year and takes one off when the
// birthday has not come round yet this year.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// JoinName concatenates non-blank name parts with single spaces.
func JoinName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// ProfileExtras are the role-specific attributes of a clinical profile
type ProfileExtras struct {
	Specialization string `json:"specialization,omitempty"`
	LicenseNumber  string `json:"licenseNumber,omitempty"`
	Department     string `json:"department,omitempty"`
}

// RoleProfile wraps an identity whose role matches Role. Build it through
// identity.ComposeRoleProfile so the role invariant holds.
type RoleProfile struct {
	Role     Role         `json:"role"`
	Identity UserIdentity `json:"identity"`
	ProfileExtras
}
