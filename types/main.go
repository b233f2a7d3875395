package types

type AccountType = string

var (
	AccountAsset     AccountType = "asset"
	AccountLiability AccountType = "liability"
	AccountEquity    AccountType = "equity"
	AccountRevenue   AccountType = "revenue"
	AccountExpense   AccountType = "expense"
)

// SubTypesByType lists the sub-classifications allowed under each account type.
var SubTypesByType = map[AccountType][]string{
	AccountAsset:     {"cash", "bank", "accounts_receivable", "inventory", "fixed_asset", "other_asset"},
	AccountLiability: {"accounts_payable", "tax_payable", "payroll_payable", "loan", "other_liability"},
	AccountEquity:    {"capital", "retained_earnings", "opening_balance", "drawings"},
	AccountRevenue:   {"operating_revenue", "other_revenue"},
	AccountExpense:   {"payroll_expense", "operating_expense", "tax_expense", "other_expense"},
}

// DebitNormal reports whether balances of the given account type grow on the
// debit side.
func DebitNormal(t AccountType) bool {
	return t == AccountAsset || t == AccountExpense
}

type EntryStatus = string

var (
	EntryDraft  EntryStatus = "draft"
	EntryPosted EntryStatus = "posted"
	EntryVoid   EntryStatus = "void"
)

type EntrySource = string

var (
	SourceManual   EntrySource = "manual"
	SourceInvoice  EntrySource = "invoice"
	SourcePayroll  EntrySource = "payroll"
	SourceOpening  EntrySource = "opening"
	SourceReversal EntrySource = "reversal"
)

type PeriodStatus = string

var (
	PeriodOpen   PeriodStatus = "open"
	PeriodClosed PeriodStatus = "closed"
	PeriodLocked PeriodStatus = "locked"
)

type FiscalYearStatus = string

var (
	FiscalYearOpen   FiscalYearStatus = "open"
	FiscalYearClosed FiscalYearStatus = "closed"
)

type FilingType = string

var (
	FilingMonthlyWIT  FilingType = "monthly_wit"
	FilingAnnualWIT   FilingType = "annual_wit"
	FilingINSSMonthly FilingType = "inss_monthly"
)

type FilingStatus = string

var (
	FilingPending FilingStatus = "pending"
	FilingOverdue FilingStatus = "overdue"
	FilingFiled   FilingStatus = "filed"
)

type PayrollRunStatus = string

var (
	PayrollRunDraft PayrollRunStatus = "draft"
	PayrollRunPaid  PayrollRunStatus = "paid"
)

type EmployeeStatus = string

var (
	EmployeeActive     EmployeeStatus = "active"
	EmployeeTerminated EmployeeStatus = "terminated"
)

type OrderBy = string

var (
	OrderByAsc  OrderBy = "asc"
	OrderByDesc OrderBy = "desc"
)
