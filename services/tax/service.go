package tax

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/haree-hq/haree/models"
	"github.com/haree-hq/haree/types"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// PeriodLayout is the YYYY-MM form used for monthly tax periods.
const PeriodLayout = "2006-01"

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type CompanySummary struct {
	LegalName         string `json:"legal_name"`
	TradingName       string `json:"trading_name"`
	TINNumber         string `json:"tin_number"`
	RegisteredAddress string `json:"registered_address"`
}

type WITRow struct {
	EmployeeID   int64           `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	IsResident   bool            `json:"is_resident"`
	GrossWages   decimal.Decimal `json:"gross_wages"`
	WITWithheld  decimal.Decimal `json:"wit_withheld"`
}

type MonthlyWITReturn struct {
	Period        string          `json:"period"`
	Company       CompanySummary  `json:"company"`
	Rows          []WITRow        `json:"rows"`
	EmployeeCount int             `json:"employee_count"`
	TotalWages    decimal.Decimal `json:"total_wages"`
	TotalWIT      decimal.Decimal `json:"total_wit"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// GenerateMonthlyWITReturn aggregates paid payroll for the YYYY-MM period
// per employee and computes the wage income tax withholding due. Employees
// with no pay in the period are skipped. Deterministic for a given payroll
// data set; re-running after backdated payroll corrections produces a
// different return, and nothing triggers that automatically.
func (s *Service) GenerateMonthlyWITReturn(tenantID, period string) (*MonthlyWITReturn, error) {
	from, to, err := monthWindow(period)
	if err != nil {
		return nil, err
	}

	gross, err := s.grossByEmployee(tenantID, from, to)
	if err != nil {
		return nil, err
	}
	employees, err := s.employees(tenantID)
	if err != nil {
		return nil, err
	}
	company, err := s.company(tenantID)
	if err != nil {
		return nil, err
	}

	ret := &MonthlyWITReturn{
		Period:      period,
		Company:     company,
		Rows:        []WITRow{},
		TotalWages:  decimal.Zero,
		TotalWIT:    decimal.Zero,
		GeneratedAt: time.Now(),
	}

	for _, id := range sortedKeys(gross) {
		wages := gross[id].Round(2)
		if wages.IsZero() {
			continue
		}
		employee, ok := employees[id]
		if !ok {
			return nil, fmt.Errorf("payroll record references employee %d: %w", id, ErrEmployeeNotFound)
		}

		wit := ComputeWIT(wages, employee.IsResident)
		ret.Rows = append(ret.Rows, WITRow{
			EmployeeID:   id,
			EmployeeName: employee.FullName(),
			IsResident:   employee.IsResident,
			GrossWages:   wages,
			WITWithheld:  wit,
		})
		ret.TotalWages = ret.TotalWages.Add(wages)
		ret.TotalWIT = ret.TotalWIT.Add(wit)
	}

	ret.EmployeeCount = len(ret.Rows)
	return ret, nil
}

type INSSRow struct {
	EmployeeID           int64           `json:"employee_id"`
	EmployeeName         string          `json:"employee_name"`
	ContributionBase     decimal.Decimal `json:"contribution_base"`
	EmployeeContribution decimal.Decimal `json:"employee_contribution"`
	EmployerContribution decimal.Decimal `json:"employer_contribution"`
}

type MonthlyINSSReturn struct {
	Period        string          `json:"period"`
	Company       CompanySummary  `json:"company"`
	Rows          []INSSRow       `json:"rows"`
	EmployeeCount int             `json:"employee_count"`
	TotalBase     decimal.Decimal `json:"total_base"`
	TotalEmployee decimal.Decimal `json:"total_employee"`
	TotalEmployer decimal.Decimal `json:"total_employer"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// GenerateMonthlyINSSReturn aggregates the period's paid payroll into INSS
// contribution rows. The contribution base is the gross wage; for legacy
// records that carry only the withheld figure the base is reconstructed by
// dividing out the rate, which is lossy when the stored figure was rounded.
func (s *Service) GenerateMonthlyINSSReturn(tenantID, period string) (*MonthlyINSSReturn, error) {
	from, to, err := monthWindow(period)
	if err != nil {
		return nil, err
	}

	records, err := s.paidRecords(tenantID, from, to)
	if err != nil {
		return nil, err
	}
	employees, err := s.employees(tenantID)
	if err != nil {
		return nil, err
	}
	company, err := s.company(tenantID)
	if err != nil {
		return nil, err
	}

	bases := make(map[int64]decimal.Decimal)
	for _, record := range records {
		base := record.TotalGrossPay
		if base.IsZero() && !record.INSSEmployeeWithheld.IsZero() {
			base = ReconstructContributionBase(record.INSSEmployeeWithheld)
		}
		bases[record.EmployeeID] = bases[record.EmployeeID].Add(base)
	}

	ret := &MonthlyINSSReturn{
		Period:        period,
		Company:       company,
		Rows:          []INSSRow{},
		TotalBase:     decimal.Zero,
		TotalEmployee: decimal.Zero,
		TotalEmployer: decimal.Zero,
		GeneratedAt:   time.Now(),
	}

	for _, id := range sortedKeys(bases) {
		base := bases[id].Round(2)
		if base.IsZero() {
			continue
		}
		employee, ok := employees[id]
		if !ok {
			return nil, fmt.Errorf("payroll record references employee %d: %w", id, ErrEmployeeNotFound)
		}

		emp, er := ComputeINSS(base)
		ret.Rows = append(ret.Rows, INSSRow{
			EmployeeID:           id,
			EmployeeName:         employee.FullName(),
			ContributionBase:     base,
			EmployeeContribution: emp,
			EmployerContribution: er,
		})
		ret.TotalBase = ret.TotalBase.Add(base)
		ret.TotalEmployee = ret.TotalEmployee.Add(emp)
		ret.TotalEmployer = ret.TotalEmployer.Add(er)
	}

	ret.EmployeeCount = len(ret.Rows)
	return ret, nil
}

type AnnualWITRow struct {
	EmployeeID   int64           `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	IsResident   bool            `json:"is_resident"`
	TotalWages   decimal.Decimal `json:"total_wages"`
	TotalWIT     decimal.Decimal `json:"total_wit"`
	MonthsPaid   int             `json:"months_paid"`
}

type AnnualWITReturn struct {
	TaxYear       int             `json:"tax_year"`
	Company       CompanySummary  `json:"company"`
	Rows          []AnnualWITRow  `json:"rows"`
	EmployeeCount int             `json:"employee_count"`
	TotalWages    decimal.Decimal `json:"total_wages"`
	TotalWIT      decimal.Decimal `json:"total_wit"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// GenerateAnnualWITReturn sums each employee's twelve monthly WIT figures.
// The resident threshold is monthly, so the annual tax is the sum of the
// months, not 10% of annual wages over $6,000.
func (s *Service) GenerateAnnualWITReturn(tenantID string, taxYear int) (*AnnualWITReturn, error) {
	monthly, err := s.grossByEmployeeMonth(tenantID, taxYear)
	if err != nil {
		return nil, err
	}
	employees, err := s.employees(tenantID)
	if err != nil {
		return nil, err
	}
	company, err := s.company(tenantID)
	if err != nil {
		return nil, err
	}

	ret := &AnnualWITReturn{
		TaxYear:     taxYear,
		Company:     company,
		Rows:        []AnnualWITRow{},
		TotalWages:  decimal.Zero,
		TotalWIT:    decimal.Zero,
		GeneratedAt: time.Now(),
	}

	for _, id := range sortedKeys(monthly) {
		employee, ok := employees[id]
		if !ok {
			return nil, fmt.Errorf("payroll record references employee %d: %w", id, ErrEmployeeNotFound)
		}

		row := AnnualWITRow{
			EmployeeID:   id,
			EmployeeName: employee.FullName(),
			IsResident:   employee.IsResident,
			TotalWages:   decimal.Zero,
			TotalWIT:     decimal.Zero,
		}
		for _, wages := range monthly[id] {
			wages = wages.Round(2)
			if wages.IsZero() {
				continue
			}
			row.TotalWages = row.TotalWages.Add(wages)
			row.TotalWIT = row.TotalWIT.Add(ComputeWIT(wages, employee.IsResident))
			row.MonthsPaid++
		}
		if row.MonthsPaid == 0 {
			continue
		}

		ret.Rows = append(ret.Rows, row)
		ret.TotalWages = ret.TotalWages.Add(row.TotalWages)
		ret.TotalWIT = ret.TotalWIT.Add(row.TotalWIT)
	}

	ret.EmployeeCount = len(ret.Rows)
	return ret, nil
}

type CertificateLine struct {
	Period      string          `json:"period"`
	GrossWages  decimal.Decimal `json:"gross_wages"`
	WITWithheld decimal.Decimal `json:"wit_withheld"`
}

type EmployeeWITCertificate struct {
	TaxYear      int               `json:"tax_year"`
	Company      CompanySummary    `json:"company"`
	EmployeeID   int64             `json:"employee_id"`
	EmployeeName string            `json:"employee_name"`
	IsResident   bool              `json:"is_resident"`
	Lines        []CertificateLine `json:"lines"`
	TotalWages   decimal.Decimal   `json:"total_wages"`
	TotalWIT     decimal.Decimal   `json:"total_wit"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// GenerateEmployeeWITCertificate builds the annual wage and withholding
// certificate for one employee.
func (s *Service) GenerateEmployeeWITCertificate(tenantID string, taxYear int, employeeID int64) (*EmployeeWITCertificate, error) {
	var employee models.Employee
	err := s.DB.Where("tenant_id = ? AND id = ?", tenantID, employeeID).First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}

	monthly, err := s.grossByEmployeeMonth(tenantID, taxYear)
	if err != nil {
		return nil, err
	}
	company, err := s.company(tenantID)
	if err != nil {
		return nil, err
	}

	cert := &EmployeeWITCertificate{
		TaxYear:      taxYear,
		Company:      company,
		EmployeeID:   employee.ID,
		EmployeeName: employee.FullName(),
		IsResident:   employee.IsResident,
		Lines:        []CertificateLine{},
		TotalWages:   decimal.Zero,
		TotalWIT:     decimal.Zero,
		GeneratedAt:  time.Now(),
	}

	months := monthly[employeeID]
	for month := 1; month <= 12; month++ {
		period := fmt.Sprintf("%d-%02d", taxYear, month)
		wages := months[period].Round(2)
		if wages.IsZero() {
			continue
		}
		wit := ComputeWIT(wages, employee.IsResident)
		cert.Lines = append(cert.Lines, CertificateLine{Period: period, GrossWages: wages, WITWithheld: wit})
		cert.TotalWages = cert.TotalWages.Add(wages)
		cert.TotalWIT = cert.TotalWIT.Add(wit)
	}

	return cert, nil
}

// --- payroll aggregation helpers ---

func monthWindow(period string) (time.Time, time.Time, error) {
	start, err := time.Parse(PeriodLayout, period)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period %q: %w", period, err)
	}
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
}

func (s *Service) paidRecords(tenantID string, from, to time.Time) ([]models.PayrollRecord, error) {
	var runIDs []int64
	err := s.DB.Model(&models.PayrollRun{}).
		Where("tenant_id = ? AND status = ? AND pay_date >= ? AND pay_date <= ?",
			tenantID, types.PayrollRunPaid, from, to).
		Pluck("id", &runIDs).Error
	if err != nil {
		return nil, err
	}
	if len(runIDs) == 0 {
		return nil, nil
	}

	var records []models.PayrollRecord
	err = s.DB.Where("tenant_id = ? AND payroll_run_id IN ?", tenantID, runIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) grossByEmployee(tenantID string, from, to time.Time) (map[int64]decimal.Decimal, error) {
	records, err := s.paidRecords(tenantID, from, to)
	if err != nil {
		return nil, err
	}

	gross := make(map[int64]decimal.Decimal)
	for _, record := range records {
		gross[record.EmployeeID] = gross[record.EmployeeID].Add(record.TotalGrossPay)
	}
	return gross, nil
}

// grossByEmployeeMonth buckets a year's paid gross pay per employee per
// YYYY-MM period, keyed by each run's pay date.
func (s *Service) grossByEmployeeMonth(tenantID string, year int) (map[int64]map[string]decimal.Decimal, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0).Add(-time.Nanosecond)

	var runs []models.PayrollRun
	err := s.DB.Where("tenant_id = ? AND status = ? AND pay_date >= ? AND pay_date <= ?",
		tenantID, types.PayrollRunPaid, from, to).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return map[int64]map[string]decimal.Decimal{}, nil
	}

	runMonth := make(map[int64]string, len(runs))
	runIDs := make([]int64, 0, len(runs))
	for _, run := range runs {
		runMonth[run.ID] = run.PayDate.Format(PeriodLayout)
		runIDs = append(runIDs, run.ID)
	}

	var records []models.PayrollRecord
	err = s.DB.Where("tenant_id = ? AND payroll_run_id IN ?", tenantID, runIDs).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	monthly := make(map[int64]map[string]decimal.Decimal)
	for _, record := range records {
		month := runMonth[record.PayrollRunID]
		if monthly[record.EmployeeID] == nil {
			monthly[record.EmployeeID] = make(map[string]decimal.Decimal)
		}
		monthly[record.EmployeeID][month] = monthly[record.EmployeeID][month].Add(record.TotalGrossPay)
	}
	return monthly, nil
}

func (s *Service) employees(tenantID string) (map[int64]models.Employee, error) {
	var all []models.Employee
	if err := s.DB.Where("tenant_id = ?", tenantID).Find(&all).Error; err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Employee, len(all))
	for _, e := range all {
		byID[e.ID] = e
	}
	return byID, nil
}

func (s *Service) company(tenantID string) (CompanySummary, error) {
	var profile models.CompanyProfile
	err := s.DB.Where("tenant_id = ?", tenantID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Company details are owned by the settings collaborator; a
		// missing profile degrades the header, not the figures.
		return CompanySummary{}, nil
	}
	if err != nil {
		return CompanySummary{}, err
	}

	return CompanySummary{
		LegalName:         profile.LegalName,
		TradingName:       profile.TradingName,
		TINNumber:         profile.TINNumber,
		RegisteredAddress: profile.RegisteredAddress,
	}, nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
