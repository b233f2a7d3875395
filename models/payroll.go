package models

// Read models for data owned by collaborating subsystems (payroll, employee
// directory, company settings, holiday service). The ledger/tax core only
// ever SELECTs from these tables; it never writes them.

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/haree-hq/haree/types"
)

type PayrollRun struct {
	ID       int64                  `json:"id" gorm:"primaryKey"`
	TenantID string                 `json:"tenant_id" gorm:"index"`
	PayDate  time.Time              `json:"pay_date" gorm:"index"`
	Status   types.PayrollRunStatus `json:"status"`
}

func (PayrollRun) TableName() string {
	return "payroll_runs"
}

// PayrollRecord carries the per-employee result of a payroll run with
// explicit typed amounts. The tax engine aggregates these fields directly
// and never inspects free-text deduction descriptions.
type PayrollRecord struct {
	ID                   int64           `json:"id" gorm:"primaryKey"`
	TenantID             string          `json:"tenant_id" gorm:"index"`
	PayrollRunID         int64           `json:"payroll_run_id" gorm:"index"`
	EmployeeID           int64           `json:"employee_id" gorm:"index"`
	TotalGrossPay        decimal.Decimal `json:"total_gross_pay" gorm:"type:numeric;default:0"`
	WITWithheld          decimal.Decimal `json:"wit_withheld" gorm:"type:numeric;default:0"`
	INSSEmployeeWithheld decimal.Decimal `json:"inss_employee_withheld" gorm:"type:numeric;default:0"`
	INSSEmployerAmount   decimal.Decimal `json:"inss_employer_amount" gorm:"type:numeric;default:0"`
}

func (PayrollRecord) TableName() string {
	return "payroll_records"
}

type Employee struct {
	ID         int64                `json:"id" gorm:"primaryKey"`
	TenantID   string               `json:"tenant_id" gorm:"index"`
	FirstName  string               `json:"first_name"`
	LastName   string               `json:"last_name"`
	HireDate   time.Time            `json:"hire_date"`
	IsResident bool                 `json:"is_resident" gorm:"default:true"`
	Status     types.EmployeeStatus `json:"status"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type CompanyProfile struct {
	ID                int64  `json:"id" gorm:"primaryKey"`
	TenantID          string `json:"tenant_id" gorm:"uniqueIndex"`
	LegalName         string `json:"legal_name"`
	TradingName       string `json:"trading_name"`
	TINNumber         string `json:"tin_number"`
	RegisteredAddress string `json:"registered_address"`
}

func (CompanyProfile) TableName() string {
	return "company_profiles"
}

// HolidayOverride adds to or removes from the country default holiday
// calendar for one tenant. IsHoliday=false cancels a default.
type HolidayOverride struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	TenantID  string    `json:"tenant_id" gorm:"index:idx_holiday_overrides_tenant_year"`
	Year      int       `json:"year" gorm:"index:idx_holiday_overrides_tenant_year"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	IsHoliday bool      `json:"is_holiday" gorm:"default:true"`
}

func (HolidayOverride) TableName() string {
	return "holiday_overrides"
}
