// Package payroll reconciles payroll slips. Every monetary field comes out as
// a finite number: anything absent or unparsable on the wire is 0.
package payroll

import (
	"strings"

	"github.com/jwalitptl/admin-records/internal/canonical/identity"
	"github.com/jwalitptl/admin-records/internal/canonical/wire"
	"github.com/jwalitptl/admin-records/internal/model"
	"github.com/jwalitptl/admin-records/pkg/coerce"
	"github.com/jwalitptl/admin-records/pkg/resolve"
)

var statusAliases = map[string]model.PayrollStatus{
	"draft":      model.PayrollStatusDraft,
	"pending":    model.PayrollStatusPending,
	"submitted":  model.PayrollStatusPending,
	"processing": model.PayrollStatusPending,
	"approved":   model.PayrollStatusApproved,
	"rejected":   model.PayrollStatusRejected,
	"paid":       model.PayrollStatusPaid,
	"disbursed":  model.PayrollStatusPaid,
}

var (
	idPaths          = resolve.Keys("_id", "id", "payrollId", "payroll_id")
	staffNamePaths   = resolve.Chain(resolve.Keys("staffName", "employeeName", "staff_name"), resolve.Under("staff", "name", "fullName"))
	staffCodePaths   = resolve.Chain(resolve.Keys("staffCode", "employeeCode", "staff_code", "employee_code"), resolve.Under("staff", "staffCode", "employeeCode", "employeeId"))
	departmentPaths  = resolve.Chain(resolve.Keys("department", "dept"), resolve.Under("staff", "department"))
	designationPaths = resolve.Chain(resolve.Keys("designation"), resolve.Under("staff", "designation"))

	monthPaths = resolve.Chain(resolve.Keys("payPeriodMonth", "month"), resolve.Under("payPeriod", "month"))
	yearPaths  = resolve.Chain(resolve.Keys("payPeriodYear", "year"), resolve.Under("payPeriod", "year"))
	startPaths = resolve.Chain(resolve.Keys("payPeriodStart", "periodStart"), resolve.Under("payPeriod", "start", "startDate"))
	endPaths   = resolve.Chain(resolve.Keys("payPeriodEnd", "periodEnd"), resolve.Under("payPeriod", "end", "endDate"))

	basicPaths          = resolve.Chain(resolve.Keys("basicSalary", "basic_salary", "basic"), resolve.Under("salaryStructure", "basic", "basicSalary"))
	earningsPaths       = resolve.Chain(resolve.Keys("earnings", "allowances"), resolve.Under("salaryStructure", "earnings", "allowances"))
	deductionsPaths     = resolve.Chain(resolve.Keys("deductions"), resolve.Under("salaryStructure", "deductions"))
	reimbursementsPaths = resolve.Chain(resolve.Keys("reimbursements"), resolve.Under("salaryStructure", "reimbursements"))
	attendancePaths     = resolve.Keys("attendance", "attendanceSummary")
	statutoryPaths      = resolve.Keys("statutory", "statutoryCompliance", "compliance")
	loansPaths          = resolve.Keys("loans", "loansAndAdvances", "advances")
	bankPaths           = resolve.Keys("bankDetails", "bank_details", "bankAccount")

	overtimePayPaths   = resolve.Keys("overtimePay", "overtime_pay", "overtimeAmount")
	bonusPaths         = resolve.Keys("bonus")
	incentivesPaths    = resolve.Keys("incentives", "incentive")
	arrearsPaths       = resolve.Keys("arrears")
	lossOfPayPaths     = resolve.Keys("lossOfPay", "loss_of_pay", "lop", "lopAmount")
	paymentMethodPaths = resolve.Keys("paymentMethod", "paymentMode")
	paymentDatePaths   = resolve.Keys("paymentDate", "paidOn", "paidAt")
	revisionPaths      = resolve.Keys("revision", "revisionNumber", "version")
	revisedByPaths     = resolve.Keys("revisedBy", "lastRevisedBy")
	revisedAtPaths     = resolve.Keys("revisedAt", "lastRevisedAt")
)

// ParseStatus maps backend spellings onto the closed status set; anything
// unrecognized is a draft.
func ParseStatus(v interface{}) model.PayrollStatus {
	if s, ok := statusAliases[strings.ToLower(coerce.String(v))]; ok {
		return s
	}
	return model.PayrollStatusDraft
}

func Canonicalize(raw model.JSONMap) model.Payroll {
	p := model.Payroll{
		ID:             resolve.String(raw, "", idPaths...),
		StaffName:      resolve.String(raw, "", staffNamePaths...),
		StaffCode:      resolve.String(raw, "", staffCodePaths...),
		Department:     resolve.String(raw, "", departmentPaths...),
		Designation:    resolve.String(raw, "", designationPaths...),
		PayPeriodMonth: resolve.Int(raw, 0, monthPaths...),
		PayPeriodYear:  resolve.Int(raw, 0, yearPaths...),
		PayPeriodStart: resolve.Time(raw, startPaths...),
		PayPeriodEnd:   resolve.Time(raw, endPaths...),
		Status:         ParseStatus(resolve.FirstOr(raw, nil, resolve.Key("status"))),
		BasicSalary:    resolve.Float(raw, 0, basicPaths...),
		Earnings:       components(raw, model.ComponentEarning, earningsPaths...),
		Deductions:     components(raw, model.ComponentDeduction, deductionsPaths...),
		Reimbursements: components(raw, model.ComponentReimbursement, reimbursementsPaths...),
		Attendance:     CanonicalizeAttendance(nestedOrSelf(raw, attendancePaths...)),
		Statutory:      CanonicalizeStatutory(nestedOrSelf(raw, statutoryPaths...)),
		Loans:          loans(raw),
		OvertimePay:    resolve.Float(raw, 0, overtimePayPaths...),
		Bonus:          resolve.Float(raw, 0, bonusPaths...),
		Incentives:     resolve.Float(raw, 0, incentivesPaths...),
		Arrears:        resolve.Float(raw, 0, arrearsPaths...),
		LossOfPay:      resolve.Float(raw, 0, lossOfPayPaths...),
		PaymentMethod:  resolve.String(raw, "", paymentMethodPaths...),
		PaymentDate:    resolve.Time(raw, paymentDatePaths...),
		Bank:           CanonicalizeBank(nestedOrSelf(raw, bankPaths...)),
		Submission:     CanonicalizeAudit(raw, SubmissionStep),
		Approval:       CanonicalizeAudit(raw, ApprovalStep),
		Rejection:      CanonicalizeAudit(raw, RejectionStep),
		Revision:       resolve.Int(raw, 0, revisionPaths...),
		RevisedBy:      resolve.String(raw, "", revisedByPaths...),
		RevisedAt:      resolve.Time(raw, revisedAtPaths...),
		Tags:           resolve.Strings(raw, nil, resolve.Key("tags")),
		Metadata:       metadata(raw),
		CreatedAt:      resolve.Time(raw, resolve.Keys("createdAt", "created_at")...),
		UpdatedAt:      resolve.Time(raw, resolve.Keys("updatedAt", "updated_at")...),
		Selected:       resolve.Bool(raw, false, resolve.Keys("selected", "isSelected")...),
	}

	staff := identity.ParseReference(identity.ReferenceValue(raw, "staffId", "staff_id", "employeeId", "staff"), "", model.RoleUnknown)
	p.StaffID = staff.ID
	if p.StaffName == "" {
		p.StaffName = staff.DisplayName
	}

	// month and year fall back to the period start
	if p.PayPeriodStart != nil {
		if p.PayPeriodMonth == 0 {
			p.PayPeriodMonth = int(p.PayPeriodStart.Month())
		}
		if p.PayPeriodYear == 0 {
			p.PayPeriodYear = p.PayPeriodStart.Year()
		}
	}
	return p
}

// nestedOrSelf returns the first nested object found, or raw itself for
// documents that keep the block's fields top-level.
func nestedOrSelf(raw model.JSONMap, paths ...resolve.Path) model.JSONMap {
	if obj, ok := resolve.Map(raw, paths...); ok {
		return obj
	}
	return raw
}

func loans(raw model.JSONMap) []model.LoanAdvance {
	out := []model.LoanAdvance{}
	for _, item := range resolve.List(raw, loansPaths...) {
		if obj, ok := coerce.Map(item); ok {
			out = append(out, CanonicalizeLoan(obj))
		}
	}
	return out
}

// metadata is carried through verbatim. Canonical fields are never read from
// it, so whatever it holds survives a round trip unchanged.
func metadata(raw model.JSONMap) map[string]interface{} {
	out := map[string]interface{}{}
	if meta, ok := resolve.Map(raw, resolve.Key("metadata")); ok {
		for k, v := range meta {
			out[k] = v
		}
	}
	return out
}

// Serialize flattens the pay period and writes the workflow steps as flat
// keys. Monetary fields and component lists are always written; optional
// blocks are written only when set. grossSalary, totalDeductions and
// netSalary are computed for the backend's listing views and ignored on read.
// Selected is never written.
func Serialize(p model.Payroll) model.JSONMap {
	status := p.Status
	if status == "" {
		status = model.PayrollStatusDraft
	}

	out := model.JSONMap{
		"staffName":       p.StaffName,
		"payPeriodMonth":  p.PayPeriodMonth,
		"payPeriodYear":   p.PayPeriodYear,
		"status":          string(status),
		"basicSalary":     p.BasicSalary,
		"earnings":        serializeComponents(p.Earnings),
		"deductions":      serializeComponents(p.Deductions),
		"reimbursements":  serializeComponents(p.Reimbursements),
		"overtimePay":     p.OvertimePay,
		"bonus":           p.Bonus,
		"incentives":      p.Incentives,
		"arrears":         p.Arrears,
		"lossOfPay":       p.LossOfPay,
		"revision":        p.Revision,
		"grossSalary":     p.GrossEarnings(),
		"totalDeductions": p.TotalDeductions(),
		"netSalary":       p.NetPay(),
	}

	wire.PutString(out, "id", p.ID)
	wire.PutString(out, "staffId", p.StaffID)
	wire.PutString(out, "staffCode", p.StaffCode)
	wire.PutString(out, "department", p.Department)
	wire.PutString(out, "designation", p.Designation)
	wire.PutTimestamp(out, "payPeriodStart", p.PayPeriodStart)
	wire.PutTimestamp(out, "payPeriodEnd", p.PayPeriodEnd)
	wire.PutString(out, "paymentMethod", p.PaymentMethod)
	wire.PutTimestamp(out, "paymentDate", p.PaymentDate)
	wire.PutString(out, "revisedBy", p.RevisedBy)
	wire.PutTimestamp(out, "revisedAt", p.RevisedAt)
	wire.PutStrings(out, "tags", p.Tags)
	wire.PutTimestamp(out, "createdAt", p.CreatedAt)
	wire.PutTimestamp(out, "updatedAt", p.UpdatedAt)

	if !p.Attendance.IsZero() {
		out["attendance"] = SerializeAttendance(p.Attendance)
	}
	if !p.Statutory.IsZero() {
		out["statutory"] = SerializeStatutory(p.Statutory)
	}
	if len(p.Loans) > 0 {
		loans := make([]interface{}, len(p.Loans))
		for i, l := range p.Loans {
			loans[i] = SerializeLoan(l)
		}
		out["loans"] = loans
	}
	if p.Bank != nil && !p.Bank.IsZero() {
		out["bankDetails"] = SerializeBank(*p.Bank)
	}

	SerializeAudit(out, SubmissionStep, p.Submission)
	SerializeAudit(out, ApprovalStep, p.Approval)
	SerializeAudit(out, RejectionStep, p.Rejection)

	if len(p.Metadata) > 0 {
		meta := make(model.JSONMap, len(p.Metadata))
		for k, v := range p.Metadata {
			meta[k] = v
		}
		out["metadata"] = meta
	}
	return out
}
