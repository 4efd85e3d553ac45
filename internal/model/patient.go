package model

import (
	"fmt"
	"strings"
	"time"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

// Address is the patient's postal address. Line keeps a free-text address
// when the backend sent one instead of structured parts.
type Address struct {
	HouseNo string `json:"houseNo,omitempty"`
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
	Country string `json:"country,omitempty"`
	Line    string `json:"line,omitempty"`
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// String renders the address on one line, preferring the free-text form.
func (a Address) String() string {
	if a.Line != "" {
		return a.Line
	}
	parts := make([]string, 0, 6)
	for _, p := range []string{a.HouseNo, a.Street, a.City, a.State, a.Pincode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// VitalsSummary is the latest vitals carried on a patient record
type VitalsSummary struct {
	Weight *float64 `json:"weight,omitempty"`
	Height *float64 `json:"height,omitempty"`
	BMI    *float64 `json:"bmi,omitempty"`
	BP     string   `json:"bp,omitempty"`
	Pulse  *float64 `json:"pulse,omitempty"`
	Temp   *float64 `json:"temp,omitempty"`
	Oxygen *float64 `json:"oxygen,omitempty"`
}

func (v VitalsSummary) IsZero() bool {
	return v.Weight == nil && v.Height == nil && v.BMI == nil && v.BP == "" &&
		v.Pulse == nil && v.Temp == nil && v.Oxygen == nil
}

// Patient is the canonical patient entity
type Patient struct {
	ID                string        `json:"id"`
	PatientCode       string        `json:"patientCode,omitempty"`
	FirstName         string        `json:"firstName"`
	LastName          string        `json:"lastName"`
	Age               int           `json:"age"`
	Gender            string        `json:"gender,omitempty"`
	BloodGroup        string        `json:"bloodGroup,omitempty"`
	Phone             string        `json:"phone,omitempty"`
	Email             string        `json:"email,omitempty"`
	Address           Address       `json:"address"`
	Vitals            VitalsSummary `json:"vitals"`
	InsuranceProvider string        `json:"insuranceProvider,omitempty"`
	InsuranceNumber   string        `json:"insuranceNumber,omitempty"`
	InsuranceExpiry   *time.Time    `json:"insuranceExpiry,omitempty"`
	Avatar            string        `json:"avatar,omitempty"`
	DateOfBirth       *time.Time    `json:"dateOfBirth,omitempty"`
	LastVisit         *time.Time    `json:"lastVisit,omitempty"`
	Doctor            Reference     `json:"doctor"`
	MedicalHistory    []string      `json:"medicalHistory"`
	Allergies         []string      `json:"allergies"`
	Notes             string        `json:"notes,omitempty"`
	Status            PatientStatus `json:"status"`
	CreatedAt         *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time    `json:"updatedAt,omitempty"`
}

// FullName joins first and last name.
func (p Patient) FullName() string {
	return JoinName(p.FirstName, p.LastName)
}

// DisplayID is the patient-facing code, or the internal id when no code exists.
func (p Patient) DisplayID() string {
	if p.PatientCode != "" {
		return p.PatientCode
	}
	return p.ID
}

// IsIdentified reports whether the record resolved an id.
func (p Patient) IsIdentified() bool {
	return p.ID != ""
}

func (p Patient) WeightDisplay() string { return formatOptional(p.Vitals.Weight, 1) }
func (p Patient) HeightDisplay() string { return formatOptional(p.Vitals.Height, 0) }
func (p Patient) BMIDisplay() string    { return formatOptional(p.Vitals.BMI, 1) }
func (p Patient) PulseDisplay() string  { return formatOptional(p.Vitals.Pulse, 0) }
func (p Patient) TempDisplay() string   { return formatOptional(p.Vitals.Temp, 1) }
func (p Patient) OxygenDisplay() string { return formatOptional(p.Vitals.Oxygen, 0) }

func (p Patient) BPDisplay() string {
	if p.Vitals.BP == "" {
		return Placeholder
	}
	return p.Vitals.BP
}

func formatOptional(v *float64, decimals int) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}
