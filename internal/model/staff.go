package model

import (
	"time"
)

type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusInactive StaffStatus = "inactive"
	StaffStatusOnLeave  StaffStatus = "on-leave"
)

// MetaPrefix marks Staff.Extra keys that came from the backend's metadata object
const MetaPrefix = "meta_"

// Staff is the canonical staff member
type Staff struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Designation    string                 `json:"designation,omitempty"`
	Department     string                 `json:"department,omitempty"`
	StaffCode      string                 `json:"staffCode,omitempty"`
	Email          string                 `json:"email,omitempty"`
	Phone          string                 `json:"phone,omitempty"`
	Gender         string                 `json:"gender,omitempty"`
	Status         StaffStatus            `json:"status"`
	Shift          string                 `json:"shift,omitempty"`
	Experience     float64                `json:"experience"`
	Roles          []string               `json:"roles"`
	Qualifications []string               `json:"qualifications"`
	Tags           []string               `json:"tags"`
	JoinedAt       *time.Time             `json:"joinedAt,omitempty"`
	LastActive     *time.Time             `json:"lastActive,omitempty"`
	Notes          map[string]string      `json:"notes"`
	Extra          map[string]interface{} `json:"extra"`
}

// DisplayID is the staff code, or the internal id when no code exists.
func (s Staff) DisplayID() string {
	if s.StaffCode != "" {
		return s.StaffCode
	}
	return s.ID
}

func (s Staff) IsIdentified() bool {
	return s.ID != ""
}
