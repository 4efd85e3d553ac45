// Package patient reconciles backend patient documents into model.Patient and
// back. Vitals may live in a nested "vitals" object or in legacy flat keys,
// the patient code in any of three places, and the doctor as an embedded
// object or a bare id.
package patient

import (
	"math"
	"strings"
	"time"

	"github.com/jwalitptl/admin-records/internal/canonical/identity"
	"github.com/jwalitptl/admin-records/internal/canonical/wire"
	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/coerce"
	"github.com/jwalitptl/admin-records/pkg/resolve"
)

// Sub-list keys tried when history or allergies arrive as an object
var conditionKeys = []string{"currentConditions", "current_conditions", "conditions", "items"}

var (
	idPaths          = resolve.Keys("_id", "id", "patientId", "patient_id")
	patientCodePaths = resolve.Chain(resolve.Keys("patientCode", "patient_code"), resolve.Under("metadata", "patientCode", "patient_code"))
	firstNamePaths   = resolve.Chain(resolve.Keys("firstName", "first_name"), resolve.Under("metadata", "firstName"))
	lastNamePaths    = resolve.Chain(resolve.Keys("lastName", "last_name"), resolve.Under("metadata", "lastName"))
	agePaths         = resolve.Chain(resolve.Keys("age"), resolve.Under("metadata", "age"))
	genderPaths      = resolve.Chain(resolve.Keys("gender", "sex"), resolve.Under("metadata", "gender"))
	bloodGroupPaths  = resolve.Chain(resolve.Keys("bloodGroup", "blood_group"), resolve.Under("metadata", "bloodGroup"), resolve.Under("vitals", "bloodGroup"))
	phonePaths       = resolve.Chain(resolve.Keys("phone", "phoneNumber", "mobile"), resolve.Under("contact", "phone"), resolve.Under("metadata", "phone"))
	emailPaths       = resolve.Chain(resolve.Keys("email"), resolve.Under("contact", "email"), resolve.Under("metadata", "email"))
	dobPaths         = resolve.Chain(resolve.Keys("dateOfBirth", "dob", "date_of_birth"), resolve.Under("metadata", "dateOfBirth"))
	lastVisitPaths   = resolve.Chain(resolve.Keys("lastVisit", "last_visit", "lastVisitDate"), resolve.Under("metadata", "lastVisit"))
	avatarPaths      = resolve.Chain(resolve.Keys("avatar", "profileImage", "photo"), resolve.Under("metadata", "avatar"))
	historyPaths     = resolve.Chain(resolve.Keys("medicalHistory", "medical_history"), resolve.Under("metadata", "medicalHistory"))
	allergyPaths     = resolve.Chain(resolve.Keys("allergies"), resolve.Under("medicalHistory", "allergies"), resolve.Under("metadata", "allergies"))
	notesPaths       = resolve.Chain(resolve.Keys("notes", "remarks"), resolve.Under("metadata", "notes"))

	insuranceProviderPaths = resolve.Chain(resolve.Keys("insuranceProvider"), resolve.Under("insurance", "provider"), resolve.Under("metadata", "insuranceProvider"))
	insuranceNumberPaths   = resolve.Chain(resolve.Keys("insuranceNumber", "policyNumber"), resolve.Under("insurance", "policyNumber", "number"), resolve.Under("metadata", "insuranceNumber"))
	insuranceExpiryPaths   = resolve.Chain(resolve.Keys("insuranceExpiry"), resolve.Under("insurance", "expiry", "validTill"))

	// nested vitals object first, legacy flat keys after
	weightPaths = resolve.Chain(resolve.Under("vitals", "weight"), resolve.Keys("weight"))
	heightPaths = resolve.Chain(resolve.Under("vitals", "height"), resolve.Keys("height"))
	bmiPaths    = resolve.Chain(resolve.Under("vitals", "bmi"), resolve.Keys("bmi"))
	bpPaths     = resolve.Chain(resolve.Under("vitals", "bp", "bloodPressure"), resolve.Keys("bp", "bloodPressure"))
	pulsePaths  = resolve.Chain(resolve.Under("vitals", "pulse", "heartRate"), resolve.Keys("pulse", "heartRate"))
	tempPaths   = resolve.Chain(resolve.Under("vitals", "temp", "temperature"), resolve.Keys("temp", "temperature"))
	oxygenPaths = resolve.Chain(resolve.Under("vitals", "oxygen", "spo2", "oxygenSaturation"), resolve.Keys("oxygen", "spo2", "oxygenSaturation"))
)

// Canonicalize is CanonicalizeAt evaluated now.
func Canonicalize(raw model.JSONMap) model.Patient {
	return CanonicalizeAt(raw, time.Now())
}

// CanonicalizeAt builds a patient from any backend shape. now is only used to
// derive the age from the date of birth when the record carries no age.
func CanonicalizeAt(raw model.JSONMap, now time.Time) model.Patient {
	p := model.Patient{
		ID:                resolve.String(raw, "", idPaths...),
		PatientCode:       resolve.String(raw, "", patientCodePaths...),
		FirstName:         resolve.String(raw, "", firstNamePaths...),
		LastName:          resolve.String(raw, "", lastNamePaths...),
		Gender:            strings.ToLower(resolve.String(raw, "", genderPaths...)),
		BloodGroup:        strings.ToUpper(resolve.String(raw, "", bloodGroupPaths...)),
		Phone:             resolve.String(raw, "", phonePaths...),
		Email:             resolve.String(raw, "", emailPaths...),
		Address:           canonicalizeAddress(raw),
		Vitals:            canonicalizeVitals(raw),
		InsuranceProvider: resolve.String(raw, "", insuranceProviderPaths...),
		InsuranceNumber:   resolve.String(raw, "", insuranceNumberPaths...),
		InsuranceExpiry:   resolve.Time(raw, insuranceExpiryPaths...),
		Avatar:            resolve.String(raw, "", avatarPaths...),
		DateOfBirth:       resolve.Time(raw, dobPaths...),
		LastVisit:         resolve.Time(raw, lastVisitPaths...),
		MedicalHistory:    resolve.Strings(raw, conditionKeys, historyPaths...),
		Allergies:         resolve.Strings(raw, []string{"known", "items"}, allergyPaths...),
		Notes:             resolve.String(raw, "", notesPaths...),
		Status:            parseStatus(resolve.String(raw, "", resolve.Key("status"))),
		CreatedAt:         resolve.Time(raw, resolve.Keys("createdAt", "created_at")...),
		UpdatedAt:         resolve.Time(raw, resolve.Keys("updatedAt", "updated_at")...),
	}

	if p.FirstName == "" && p.LastName == "" {
		p.FirstName, p.LastName = identity.SplitName(resolve.String(raw, "", resolve.Key("name"), resolve.Key("fullName")))
	}

	p.Age = resolve.Int(raw, 0, agePaths...)
	if p.Age <= 0 && p.DateOfBirth != nil {
		p.Age = model.AgeAt(*p.DateOfBirth, now)
	}

	doctorName := resolve.String(raw, "", resolve.Keys("doctorName", "doctor_name", "assignedDoctorName")...)
	p.Doctor = identity.ParseReference(
		identity.ReferenceValue(raw, "doctor", "doctorId", "doctor_id", "assignedDoctor"),
		doctorName,
		model.RoleDoctor,
	)

	return p
}

func parseStatus(s string) model.PatientStatus {
	if strings.EqualFold(s, string(model.PatientStatusInactive)) {
		return model.PatientStatusInactive
	}
	return model.PatientStatusActive
}

func canonicalizeAddress(raw model.JSONMap) model.Address {
	var a model.Address

	if obj, ok := resolve.Map(raw, resolve.Key("address")); ok {
		a = model.Address{
			HouseNo: resolve.String(obj, "", resolve.Keys("houseNo", "house_no", "houseNumber", "flat")...),
			Street:  resolve.String(obj, "", resolve.Keys("street", "line1", "area")...),
			City:    resolve.String(obj, "", resolve.Keys("city", "district")...),
			State:   resolve.String(obj, "", resolve.Keys("state")...),
			Pincode: resolve.String(obj, "", resolve.Keys("pincode", "pinCode", "zip", "postalCode")...),
			Country: resolve.String(obj, "", resolve.Keys("country")...),
			Line:    resolve.String(obj, "", resolve.Keys("line", "fullAddress", "text")...),
		}
	} else {
		a.Line = resolve.String(raw, "", resolve.Key("address"))
	}

	// legacy flat keys fill whatever the nested object left out
	if a.City == "" {
		a.City = resolve.String(raw, "", resolve.Key("city"))
	}
	if a.State == "" {
		a.State = resolve.String(raw, "", resolve.Key("state"))
	}
	if a.Pincode == "" {
		a.Pincode = resolve.String(raw, "", resolve.Keys("pincode", "pinCode", "zip")...)
	}
	if a.Country == "" {
		a.Country = resolve.String(raw, "", resolve.Key("country"))
	}
	return a
}

func canonicalizeVitals(raw model.JSONMap) model.VitalsSummary {
	v := model.VitalsSummary{
		Weight: resolve.FloatPtr(raw, weightPaths...),
		Height: resolve.FloatPtr(raw, heightPaths...),
		BMI:    resolve.FloatPtr(raw, bmiPaths...),
		Pulse:  resolve.FloatPtr(raw, pulsePaths...),
		Temp:   resolve.FloatPtr(raw, tempPaths...),
		Oxygen: resolve.FloatPtr(raw, oxygenPaths...),
	}

	if bp, ok := resolve.First(raw, bpPaths...); ok {
		v.BP = wire.BPReading(bp)
	}

	if v.BMI == nil && v.Weight != nil && v.Height != nil && *v.Height > 0 {
		m := *v.Height / 100
		bmi := math.Round(*v.Weight/(m*m)*10) / 10
		v.BMI = &bmi
	}
	return v
}

// Serialize rebuilds the backend's nested patient document. Optional keys and
// the address, vitals and metadata objects are left out when empty so a
// partial update never blanks fields on the stored document.
func Serialize(p model.Patient) model.JSONMap {
	out := model.JSONMap{
		"firstName": p.FirstName,
		"lastName":  p.LastName,
		"status":    string(p.Status),
	}
	if out["status"] == "" {
		out["status"] = string(model.PatientStatusActive)
	}

	wire.PutString(out, "id", p.ID)
	wire.PutString(out, "gender", p.Gender)
	wire.PutString(out, "bloodGroup", p.BloodGroup)
	wire.PutString(out, "phone", p.Phone)
	wire.PutString(out, "email", p.Email)
	wire.PutString(out, "avatar", p.Avatar)
	wire.PutString(out, "notes", p.Notes)
	if p.Age > 0 {
		out["age"] = p.Age
	}
	wire.PutStrings(out, "medicalHistory", p.MedicalHistory)
	wire.PutStrings(out, "allergies", p.Allergies)
	wire.PutDate(out, "dateOfBirth", p.DateOfBirth)
	wire.PutTimestamp(out, "lastVisit", p.LastVisit)
	wire.PutTimestamp(out, "createdAt", p.CreatedAt)
	wire.PutTimestamp(out, "updatedAt", p.UpdatedAt)

	if !p.Address.IsZero() {
		out["address"] = serializeAddress(p.Address)
	}
	if !p.Vitals.IsZero() {
		out["vitals"] = serializeVitals(p.Vitals)
	}

	meta := model.JSONMap{}
	wire.PutString(meta, "patientCode", p.PatientCode)
	wire.PutString(meta, "insuranceProvider", p.InsuranceProvider)
	wire.PutString(meta, "insuranceNumber", p.InsuranceNumber)
	wire.PutMap(out, "metadata", meta)
	if p.InsuranceExpiry != nil {
		out["insurance"] = model.JSONMap{"expiry": coerce.DateString(*p.InsuranceExpiry)}
	}

	identity.SerializeReference(out, "doctor", p.Doctor)
	return out
}

func serializeAddress(a model.Address) model.JSONMap {
	out := model.JSONMap{}
	wire.PutString(out, "houseNo", a.HouseNo)
	wire.PutString(out, "street", a.Street)
	wire.PutString(out, "city", a.City)
	wire.PutString(out, "state", a.State)
	wire.PutString(out, "pincode", a.Pincode)
	wire.PutString(out, "country", a.Country)
	wire.PutString(out, "line", a.Line)
	return out
}

func serializeVitals(v model.VitalsSummary) model.JSONMap {
	out := model.JSONMap{}
	wire.PutFloat(out, "weight", v.Weight)
	wire.PutFloat(out, "height", v.Height)
	wire.PutFloat(out, "bmi", v.BMI)
	wire.PutString(out, "bp", v.BP)
	wire.PutFloat(out, "pulse", v.Pulse)
	wire.PutFloat(out, "temp", v.Temp)
	wire.PutFloat(out, "oxygen", v.Oxygen)
	return out
}
