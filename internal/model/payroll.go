package model

import (
	"fmt"
	"time"
)

type PayrollStatus string

const (
	PayrollStatusDraft    PayrollStatus = "draft"
	PayrollStatusPending  PayrollStatus = "pending"
	PayrollStatusApproved PayrollStatus = "approved"
	PayrollStatusRejected PayrollStatus = "rejected"
	PayrollStatusPaid     PayrollStatus = "paid"
)

type ComponentType string

const (
	ComponentEarning       ComponentType = "earning"
	ComponentDeduction     ComponentType = "deduction"
	ComponentReimbursement ComponentType = "reimbursement"
)

type LoanType string

const (
	LoanTypeLoan    LoanType = "loan"
	LoanTypeAdvance LoanType = "advance"
)

var monthAbbreviations = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// SalaryComponent is one line of earnings, deductions or reimbursements.
// When IsPercentage is set, Amount is a percentage of basic salary.
type SalaryComponent struct {
	Name         string        `json:"name"`
	Type         ComponentType `json:"type"`
	Amount       float64       `json:"amount"`
	IsPercentage bool          `json:"isPercentage"`
	Taxable      bool          `json:"taxable"`
	Statutory    bool          `json:"statutory"`
	Formula      string        `json:"formula,omitempty"`
	Description  string        `json:"description,omitempty"`
}

// Value resolves the component against basic salary.
func (c SalaryComponent) Value(basic float64) float64 {
	if c.IsPercentage {
		return basic * c.Amount / 100
	}
	return c.Amount
}

// AttendanceSummary counts days for the pay period. Leaves is keyed by leave type.
type AttendanceSummary struct {
	WorkingDays   float64            `json:"workingDays"`
	PresentDays   float64            `json:"presentDays"`
	AbsentDays    float64            `json:"absentDays"`
	HalfDays      float64            `json:"halfDays"`
	LateDays      float64            `json:"lateDays"`
	OvertimeHours float64            `json:"overtimeHours"`
	Leaves        map[string]float64 `json:"leaves"`
}

func (a AttendanceSummary) IsZero() bool {
	return a.WorkingDays == 0 && a.PresentDays == 0 && a.AbsentDays == 0 && a.HalfDays == 0 &&
		a.LateDays == 0 && a.OvertimeHours == 0 && len(a.Leaves) == 0
}

// TotalLeaves sums every leave type.
func (a AttendanceSummary) TotalLeaves() float64 {
	var total float64
	for _, d := range a.Leaves {
		total += d
	}
	return total
}

// StatutoryCompliance holds statutory identifiers, applicability and the computed contributions.
type StatutoryCompliance struct {
	PFNumber        string  `json:"pfNumber,omitempty"`
	UAN             string  `json:"uan,omitempty"`
	ESINumber       string  `json:"esiNumber,omitempty"`
	PANNumber       string  `json:"panNumber,omitempty"`
	PFApplicable    bool    `json:"pfApplicable"`
	ESIApplicable   bool    `json:"esiApplicable"`
	PTApplicable    bool    `json:"ptApplicable"`
	TDSApplicable   bool    `json:"tdsApplicable"`
	PFEmployee      float64 `json:"pfEmployee"`
	PFEmployer      float64 `json:"pfEmployer"`
	ESIEmployee     float64 `json:"esiEmployee"`
	ESIEmployer     float64 `json:"esiEmployer"`
	ProfessionalTax float64 `json:"professionalTax"`
	TDS             float64 `json:"tds"`
}

func (s StatutoryCompliance) IsZero() bool {
	return s == StatutoryCompliance{}
}

// EmployeeContributions is what the statutory block takes out of net pay.
func (s StatutoryCompliance) EmployeeContributions() float64 {
	return s.PFEmployee + s.ESIEmployee + s.ProfessionalTax + s.TDS
}

type LoanAdvance struct {
	ID          string     `json:"id,omitempty"`
	Type        LoanType   `json:"type"`
	Amount      float64    `json:"amount"`
	Installment float64    `json:"installment"`
	Remaining   float64    `json:"remaining"`
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description,omitempty"`
}

type BankDetails struct {
	BankName      string `json:"bankName,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	AccountHolder string `json:"accountHolder,omitempty"`
}

func (b BankDetails) IsZero() bool {
	return b == BankDetails{}
}

// AuditEntry records who moved a payroll through a workflow step, and when.
type AuditEntry struct {
	Actor  string     `json:"actor,omitempty"`
	At     *time.Time `json:"at,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

// Payroll is the canonical payroll slip of one staff member for one period.
type Payroll struct {
	ID             string                 `json:"id"`
	StaffID        string                 `json:"staffId"`
	StaffName      string                 `json:"staffName"`
	StaffCode      string                 `json:"staffCode,omitempty"`
	Department     string                 `json:"department,omitempty"`
	Designation    string                 `json:"designation,omitempty"`
	PayPeriodMonth int                    `json:"payPeriodMonth"`
	PayPeriodYear  int                    `json:"payPeriodYear"`
	PayPeriodStart *time.Time             `json:"payPeriodStart,omitempty"`
	PayPeriodEnd   *time.Time             `json:"payPeriodEnd,omitempty"`
	Status         PayrollStatus          `json:"status"`
	BasicSalary    float64                `json:"basicSalary"`
	Earnings       []SalaryComponent      `json:"earnings"`
	Deductions     []SalaryComponent      `json:"deductions"`
	Reimbursements []SalaryComponent      `json:"reimbursements"`
	Attendance     AttendanceSummary      `json:"attendance"`
	Statutory      StatutoryCompliance    `json:"statutory"`
	Loans          []LoanAdvance          `json:"loans"`
	OvertimePay    float64                `json:"overtimePay"`
	Bonus          float64                `json:"bonus"`
	Incentives     float64                `json:"incentives"`
	Arrears        float64                `json:"arrears"`
	LossOfPay      float64                `json:"lossOfPay"`
	PaymentMethod  string                 `json:"paymentMethod,omitempty"`
	PaymentDate    *time.Time             `json:"paymentDate,omitempty"`
	Bank           *BankDetails           `json:"bankDetails,omitempty"`
	Submission     *AuditEntry            `json:"submission,omitempty"`
	Approval       *AuditEntry            `json:"approval,omitempty"`
	Rejection      *AuditEntry            `json:"rejection,omitempty"`
	Revision       int                    `json:"revision"`
	RevisedBy      string                 `json:"revisedBy,omitempty"`
	RevisedAt      *time.Time             `json:"revisedAt,omitempty"`
	Tags           []string               `json:"tags"`
	Metadata       map[string]interface{} `json:"metadata"`
	CreatedAt      *time.Time             `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time             `json:"updatedAt,omitempty"`

	// Selected is list-view state and never leaves the client
	Selected bool `json:"-"`
}

// PayPeriodDisplay renders "Mar 2025", or "13/2025" when the month is out of range.
func (p Payroll) PayPeriodDisplay() string {
	if p.PayPeriodMonth < 1 || p.PayPeriodMonth > 12 {
		return fmt.Sprintf("%d/%d", p.PayPeriodMonth, p.PayPeriodYear)
	}
	return fmt.Sprintf("%s %d", monthAbbreviations[p.PayPeriodMonth-1], p.PayPeriodYear)
}

// GrossEarnings is basic salary plus every earning and variable pay.
func (p Payroll) GrossEarnings() float64 {
	total := p.BasicSalary + p.OvertimePay + p.Bonus + p.Incentives + p.Arrears
	for _, c := range p.Earnings {
		total += c.Value(p.BasicSalary)
	}
	return total
}

// TotalDeductions covers deduction components, statutory contributions,
// loss of pay and loan installments.
func (p Payroll) TotalDeductions() float64 {
	total := p.LossOfPay + p.Statutory.EmployeeContributions()
	for _, c := range p.Deductions {
		total += c.Value(p.BasicSalary)
	}
	for _, l := range p.Loans {
		total += l.Installment
	}
	return total
}

// TotalReimbursements is paid on top of net salary and is not taxed.
func (p Payroll) TotalReimbursements() float64 {
	var total float64
	for _, c := range p.Reimbursements {
		total += c.Value(p.BasicSalary)
	}
	return total
}

func (p Payroll) NetPay() float64 {
	return p.GrossEarnings() - p.TotalDeductions() + p.TotalReimbursements()
}

func (p Payroll) IsIdentified() bool {
	return p.ID != ""
}
