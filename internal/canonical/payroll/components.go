package payroll

import (
	"sort"
	"strings"

	"github.com/jwalitptl/admin-records/internal/canonical/identity"
	"github.com/jwalitptl/admin-records/internal/canonical/wire"
	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/coerce"
	"github.com/jwalitptl/admin-records/pkg/resolve"
)

var componentTypes = map[string]model.ComponentType{
	"earning":        model.ComponentEarning,
	"earnings":       model.ComponentEarning,
	"allowance":      model.ComponentEarning,
	"deduction":      model.ComponentDeduction,
	"deductions":     model.ComponentDeduction,
	"reimbursement":  model.ComponentReimbursement,
	"reimbursements": model.ComponentReimbursement,
}

// ParseComponentType falls back to def for anything unrecognized.
func ParseComponentType(v interface{}, def model.ComponentType) model.ComponentType {
	if t, ok := componentTypes[strings.ToLower(coerce.String(v))]; ok {
		return t
	}
	return def
}

// CanonicalizeComponent reads one salary line. def is the type implied by the
// list the line came from; an explicit type on the line wins.
func CanonicalizeComponent(raw model.JSONMap, def model.ComponentType) model.SalaryComponent {
	c := model.SalaryComponent{
		Name:         resolve.String(raw, "", resolve.Keys("name", "label", "title", "componentName")...),
		Type:         ParseComponentType(resolve.FirstOr(raw, nil, resolve.Keys("type", "componentType")...), def),
		Amount:       resolve.Float(raw, 0, resolve.Keys("amount", "value")...),
		IsPercentage: resolve.Bool(raw, false, resolve.Keys("isPercentage", "percentage")...),
		Taxable:      resolve.Bool(raw, false, resolve.Keys("taxable", "isTaxable")...),
		Statutory:    resolve.Bool(raw, false, resolve.Keys("statutory", "isStatutory")...),
		Formula:      resolve.String(raw, "", resolve.Key("formula")),
		Description:  resolve.String(raw, "", resolve.Keys("description", "remarks")...),
	}
	if strings.EqualFold(resolve.String(raw, "", resolve.Key("calculationType")), "percentage") {
		c.IsPercentage = true
	}
	return c
}

func SerializeComponent(c model.SalaryComponent) model.JSONMap {
	out := model.JSONMap{
		"name":         c.Name,
		"type":         string(c.Type),
		"amount":       c.Amount,
		"isPercentage": c.IsPercentage,
		"taxable":      c.Taxable,
		"statutory":    c.Statutory,
	}
	wire.PutString(out, "formula", c.Formula)
	wire.PutString(out, "description", c.Description)
	return out
}

// components reads a component list. Besides an array of objects, older
// documents send an object keyed by component name with bare amounts. The
// first present candidate decides the shape.
func components(raw model.JSONMap, def model.ComponentType, paths ...resolve.Path) []model.SalaryComponent {
	out := []model.SalaryComponent{}

	v, ok := resolve.First(raw, paths...)
	if !ok {
		return out
	}

	if items, isList := coerce.List(v); isList {
		for _, item := range items {
			if obj, ok := coerce.Map(item); ok {
				out = append(out, CanonicalizeComponent(obj, def))
			}
		}
		return out
	}

	if obj, isMap := coerce.Map(v); isMap {
		names := make([]string, 0, len(obj))
		for name := range obj {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if amount, ok := coerce.FloatOK(obj[name]); ok {
				out = append(out, model.SalaryComponent{Name: name, Type: def, Amount: amount})
			}
		}
	}
	return out
}

func serializeComponents(list []model.SalaryComponent) []interface{} {
	out := make([]interface{}, len(list))
	for i, c := range list {
		out[i] = SerializeComponent(c)
	}
	return out
}

// leaveAliases maps legacy flat leave counters onto leave types.
var leaveAliases = map[string]string{
	"casualLeave":  "casual",
	"casualLeaves": "casual",
	"sickLeave":    "sick",
	"sickLeaves":   "sick",
	"earnedLeave":  "earned",
	"earnedLeaves": "earned",
	"unpaidLeave":  "unpaid",
	"unpaidLeaves": "unpaid",
}

func CanonicalizeAttendance(raw model.JSONMap) model.AttendanceSummary {
	a := model.AttendanceSummary{
		WorkingDays:   resolve.Float(raw, 0, resolve.Keys("workingDays", "totalWorkingDays", "totalDays")...),
		PresentDays:   resolve.Float(raw, 0, resolve.Keys("presentDays", "daysPresent", "present")...),
		AbsentDays:    resolve.Float(raw, 0, resolve.Keys("absentDays", "daysAbsent", "absent")...),
		HalfDays:      resolve.Float(raw, 0, resolve.Keys("halfDays", "halfDay")...),
		LateDays:      resolve.Float(raw, 0, resolve.Keys("lateDays", "lateArrivals", "late")...),
		OvertimeHours: resolve.Float(raw, 0, resolve.Keys("overtimeHours", "overtime", "otHours")...),
		Leaves:        coerce.FloatMap(resolve.FirstOr(raw, nil, resolve.Keys("leaves", "leaveBreakdown", "leaveDetails")...)),
	}

	if len(a.Leaves) == 0 {
		for key, leaveType := range leaveAliases {
			if days, ok := coerce.FloatOK(raw[key]); ok {
				a.Leaves[leaveType] += days
			}
		}
	}
	return a
}

func SerializeAttendance(a model.AttendanceSummary) model.JSONMap {
	leaves := make(model.JSONMap, len(a.Leaves))
	for k, v := range a.Leaves {
		leaves[k] = v
	}
	return model.JSONMap{
		"workingDays":   a.WorkingDays,
		"presentDays":   a.PresentDays,
		"absentDays":    a.AbsentDays,
		"halfDays":      a.HalfDays,
		"lateDays":      a.LateDays,
		"overtimeHours": a.OvertimeHours,
		"leaves":        leaves,
	}
}

func CanonicalizeStatutory(raw model.JSONMap) model.StatutoryCompliance {
	return model.StatutoryCompliance{
		PFNumber:        resolve.String(raw, "", resolve.Keys("pfNumber", "pf_number", "pfAccountNumber")...),
		UAN:             resolve.String(raw, "", resolve.Keys("uan", "uanNumber")...),
		ESINumber:       resolve.String(raw, "", resolve.Keys("esiNumber", "esi_number")...),
		PANNumber:       resolve.String(raw, "", resolve.Keys("panNumber", "pan_number", "pan")...),
		PFApplicable:    resolve.Bool(raw, false, resolve.Keys("pfApplicable", "isPFApplicable")...),
		ESIApplicable:   resolve.Bool(raw, false, resolve.Keys("esiApplicable", "isESIApplicable")...),
		PTApplicable:    resolve.Bool(raw, false, resolve.Keys("ptApplicable", "isPTApplicable")...),
		TDSApplicable:   resolve.Bool(raw, false, resolve.Keys("tdsApplicable", "isTDSApplicable")...),
		PFEmployee:      resolve.Float(raw, 0, resolve.Keys("pfEmployee", "employeePF", "pfEmployeeContribution")...),
		PFEmployer:      resolve.Float(raw, 0, resolve.Keys("pfEmployer", "employerPF", "pfEmployerContribution")...),
		ESIEmployee:     resolve.Float(raw, 0, resolve.Keys("esiEmployee", "employeeESI", "esiEmployeeContribution")...),
		ESIEmployer:     resolve.Float(raw, 0, resolve.Keys("esiEmployer", "employerESI", "esiEmployerContribution")...),
		ProfessionalTax: resolve.Float(raw, 0, resolve.Keys("professionalTax", "pt")...),
		TDS:             resolve.Float(raw, 0, resolve.Keys("tds", "incomeTax")...),
	}
}

func SerializeStatutory(s model.StatutoryCompliance) model.JSONMap {
	out := model.JSONMap{
		"pfApplicable":    s.PFApplicable,
		"esiApplicable":   s.ESIApplicable,
		"ptApplicable":    s.PTApplicable,
		"tdsApplicable":   s.TDSApplicable,
		"pfEmployee":      s.PFEmployee,
		"pfEmployer":      s.PFEmployer,
		"esiEmployee":     s.ESIEmployee,
		"esiEmployer":     s.ESIEmployer,
		"professionalTax": s.ProfessionalTax,
		"tds":             s.TDS,
	}
	wire.PutString(out, "pfNumber", s.PFNumber)
	wire.PutString(out, "uan", s.UAN)
	wire.PutString(out, "esiNumber", s.ESINumber)
	wire.PutString(out, "panNumber", s.PANNumber)
	return out
}

// ParseLoanType treats anything mentioning an advance as one; the rest are loans.
func ParseLoanType(v interface{}) model.LoanType {
	if strings.Contains(strings.ToLower(coerce.String(v)), "advance") {
		return model.LoanTypeAdvance
	}
	return model.LoanTypeLoan
}

func CanonicalizeLoan(raw model.JSONMap) model.LoanAdvance {
	return model.LoanAdvance{
		ID:          resolve.String(raw, "", resolve.Keys("_id", "id", "loanId")...),
		Type:        ParseLoanType(resolve.FirstOr(raw, nil, resolve.Keys("type", "loanType")...)),
		Amount:      resolve.Float(raw, 0, resolve.Keys("amount", "principal", "totalAmount")...),
		Installment: resolve.Float(raw, 0, resolve.Keys("installment", "emi", "monthlyDeduction")...),
		Remaining:   resolve.Float(raw, 0, resolve.Keys("remaining", "remainingBalance", "balance", "outstanding")...),
		Date:        resolve.Time(raw, resolve.Keys("date", "issuedOn", "disbursedOn")...),
		Description: resolve.String(raw, "", resolve.Keys("description", "purpose", "remarks")...),
	}
}

func SerializeLoan(l model.LoanAdvance) model.JSONMap {
	loanType := l.Type
	if loanType == "" {
		loanType = model.LoanTypeLoan
	}
	out := model.JSONMap{
		"type":        string(loanType),
		"amount":      l.Amount,
		"installment": l.Installment,
		"remaining":   l.Remaining,
	}
	wire.PutString(out, "id", l.ID)
	wire.PutTimestamp(out, "date", l.Date)
	wire.PutString(out, "description", l.Description)
	return out
}

// CanonicalizeBank returns nil when the document names no bank details.
func CanonicalizeBank(raw model.JSONMap) *model.BankDetails {
	b := model.BankDetails{
		BankName:      resolve.String(raw, "", resolve.Keys("bankName", "bank_name", "bank")...),
		AccountNumber: resolve.String(raw, "", resolve.Keys("accountNumber", "account_number", "accountNo")...),
		IFSC:          strings.ToUpper(resolve.String(raw, "", resolve.Keys("ifsc", "ifscCode", "ifsc_code")...)),
		AccountHolder: resolve.String(raw, "", resolve.Keys("accountHolder", "accountHolderName", "account_holder")...),
	}
	if b.IsZero() {
		return nil
	}
	return &b
}

func SerializeBank(b model.BankDetails) model.JSONMap {
	out := model.JSONMap{}
	wire.PutString(out, "bankName", b.BankName)
	wire.PutString(out, "accountNumber", b.AccountNumber)
	wire.PutString(out, "ifsc", b.IFSC)
	wire.PutString(out, "accountHolder", b.AccountHolder)
	return out
}

// AuditStep names where one workflow step lives on the wire: a nested
// object, or the flat actor/timestamp/reason keys older documents use.
type AuditStep struct {
	object    string
	actorKey  string
	atKey     string
	reasonKey string
}

var (
	SubmissionStep = AuditStep{object: "submission", actorKey: "submittedBy", atKey: "submittedAt", reasonKey: "submissionNotes"}
	ApprovalStep   = AuditStep{object: "approval", actorKey: "approvedBy", atKey: "approvedAt", reasonKey: "approvalNotes"}
	RejectionStep  = AuditStep{object: "rejection", actorKey: "rejectedBy", atKey: "rejectedAt", reasonKey: "rejectionReason"}
)

// CanonicalizeAudit reads one workflow step; nil when the step never happened.
func CanonicalizeAudit(raw model.JSONMap, step AuditStep) *model.AuditEntry {
	var e model.AuditEntry

	if obj, ok := resolve.Map(raw, resolve.Key(step.object)); ok {
		e = model.AuditEntry{
			Actor:  actor(identity.ReferenceValue(obj, "actor", "by", "user")),
			At:     resolve.Time(obj, resolve.Keys("at", "date", "timestamp")...),
			Reason: resolve.String(obj, "", resolve.Keys("reason", "notes", "comments")...),
		}
	} else {
		e = model.AuditEntry{
			Actor:  actor(identity.ReferenceValue(raw, step.actorKey)),
			At:     resolve.Time(raw, resolve.Key(step.atKey)),
			Reason: resolve.String(raw, "", resolve.Key(step.reasonKey)),
		}
	}

	if e.Actor == "" && e.At == nil && e.Reason == "" {
		return nil
	}
	return &e
}

// actor prefers a person's name over their id when the backend embeds the user.
func actor(v interface{}) string {
	ref := identity.ParseReference(v, "", model.RoleUnknown)
	if ref.DisplayName != "" {
		return ref.DisplayName
	}
	return ref.ID
}

// SerializeAudit writes the step in the flat form every backend version reads.
func SerializeAudit(out model.JSONMap, step AuditStep, e *model.AuditEntry) {
	if e == nil {
		return
	}
	wire.PutString(out, step.actorKey, e.Actor)
	wire.PutTimestamp(out, step.atKey, e.At)
	wire.PutString(out, step.reasonKey, e.Reason)
}
