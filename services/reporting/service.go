// Package reporting aggregates posted journal activity into the statement
// reports: trial balance, income statement and balance sheet. Reports are
// derived on every call and never persisted.
package reporting

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/haree-hq/haree/models"
	"github.com/haree-hq/haree/types"
)

// Rounding tolerance for the balanced check.
var balanceTolerance = decimal.NewFromFloat(0.01)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type TrialBalanceRow struct {
	AccountCode   string          `json:"account_code"`
	AccountName   string          `json:"account_name"`
	DebitBalance  decimal.Decimal `json:"debit_balance"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
}

type TrialBalanceReport struct {
	AsOfDate    time.Time         `json:"as_of_date"`
	FiscalYear  int               `json:"fiscal_year"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	IsBalanced  bool              `json:"is_balanced"`
}

// GenerateTrialBalance nets every active account's posted activity up to and
// including asOfDate onto its normal side. The balanced flag is computed
// from the totals, never stored.
func (s *Service) GenerateTrialBalance(tenantID string, asOfDate time.Time, fiscalYear int) (*TrialBalanceReport, error) {
	accounts, activity, err := s.accountActivity(tenantID, time.Time{}, asOfDate)
	if err != nil {
		return nil, err
	}

	report := &TrialBalanceReport{
		AsOfDate:    asOfDate,
		FiscalYear:  fiscalYear,
		Rows:        make([]TrialBalanceRow, 0, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, account := range accounts {
		sums := activity[account.ID]
		row := TrialBalanceRow{
			AccountCode:   account.Code,
			AccountName:   account.Name,
			DebitBalance:  decimal.Zero,
			CreditBalance: decimal.Zero,
		}

		balance := sums.Debit.Sub(sums.Credit)
		if balance.IsZero() {
			continue
		}
		if balance.IsPositive() {
			row.DebitBalance = balance
		} else {
			row.CreditBalance = balance.Neg()
		}

		report.TotalDebit = report.TotalDebit.Add(row.DebitBalance)
		report.TotalCredit = report.TotalCredit.Add(row.CreditBalance)
		report.Rows = append(report.Rows, row)
	}

	report.IsBalanced = report.TotalDebit.Sub(report.TotalCredit).Abs().LessThan(balanceTolerance)
	return report, nil
}

type AccountAmount struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Amount      decimal.Decimal `json:"amount"`
}

type IncomeStatementReport struct {
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	FiscalYear   int             `json:"fiscal_year"`
	Revenue      []AccountAmount `json:"revenue"`
	Expenses     []AccountAmount `json:"expenses"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetIncome    decimal.Decimal `json:"net_income"`
}

func (s *Service) GenerateIncomeStatement(tenantID string, periodStart, periodEnd time.Time, fiscalYear int) (*IncomeStatementReport, error) {
	accounts, activity, err := s.accountActivity(tenantID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	report := &IncomeStatementReport{
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		FiscalYear:   fiscalYear,
		Revenue:      []AccountAmount{},
		Expenses:     []AccountAmount{},
		TotalRevenue: decimal.Zero,
		TotalExpense: decimal.Zero,
	}

	for _, account := range accounts {
		sums := activity[account.ID]

		switch account.Type {
		case types.AccountRevenue:
			amount := sums.Credit.Sub(sums.Debit)
			if amount.IsZero() {
				continue
			}
			report.Revenue = append(report.Revenue, AccountAmount{account.Code, account.Name, amount})
			report.TotalRevenue = report.TotalRevenue.Add(amount)
		case types.AccountExpense:
			amount := sums.Debit.Sub(sums.Credit)
			if amount.IsZero() {
				continue
			}
			report.Expenses = append(report.Expenses, AccountAmount{account.Code, account.Name, amount})
			report.TotalExpense = report.TotalExpense.Add(amount)
		}
	}

	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpense)
	return report, nil
}

type BalanceSheetReport struct {
	AsOfDate         time.Time       `json:"as_of_date"`
	FiscalYear       int             `json:"fiscal_year"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"total_assets"`
	TotalLiabilities decimal.Decimal `json:"total_liabilities"`
	TotalEquity      decimal.Decimal `json:"total_equity"`
}

// GenerateBalanceSheet reports asset/liability/equity positions as of a
// date. Earnings to date (revenue minus expense) are folded into equity as
// a Current Year Earnings line, so Assets = Liabilities + Equity holds
// exactly when the underlying postings balance.
func (s *Service) GenerateBalanceSheet(tenantID string, asOfDate time.Time, fiscalYear int) (*BalanceSheetReport, error) {
	accounts, activity, err := s.accountActivity(tenantID, time.Time{}, asOfDate)
	if err != nil {
		return nil, err
	}

	report := &BalanceSheetReport{
		AsOfDate:         asOfDate,
		FiscalYear:       fiscalYear,
		Assets:           []AccountAmount{},
		Liabilities:      []AccountAmount{},
		Equity:           []AccountAmount{},
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	earnings := decimal.Zero

	for _, account := range accounts {
		sums := activity[account.ID]

		switch account.Type {
		case types.AccountAsset:
			amount := sums.Debit.Sub(sums.Credit)
			if amount.IsZero() {
				continue
			}
			report.Assets = append(report.Assets, AccountAmount{account.Code, account.Name, amount})
			report.TotalAssets = report.TotalAssets.Add(amount)
		case types.AccountLiability:
			amount := sums.Credit.Sub(sums.Debit)
			if amount.IsZero() {
				continue
			}
			report.Liabilities = append(report.Liabilities, AccountAmount{account.Code, account.Name, amount})
			report.TotalLiabilities = report.TotalLiabilities.Add(amount)
		case types.AccountEquity:
			amount := sums.Credit.Sub(sums.Debit)
			if amount.IsZero() {
				continue
			}
			report.Equity = append(report.Equity, AccountAmount{account.Code, account.Name, amount})
			report.TotalEquity = report.TotalEquity.Add(amount)
		case types.AccountRevenue:
			earnings = earnings.Add(sums.Credit.Sub(sums.Debit))
		case types.AccountExpense:
			earnings = earnings.Sub(sums.Debit.Sub(sums.Credit))
		}
	}

	if !earnings.IsZero() {
		report.Equity = append(report.Equity, AccountAmount{
			AccountCode: "3999",
			AccountName: "Current Year Earnings",
			Amount:      earnings,
		})
		report.TotalEquity = report.TotalEquity.Add(earnings)
	}

	return report, nil
}

type activitySums struct {
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// accountActivity loads the active accounts and a per-account debit/credit
// aggregate over posted entries in the window, in two grouped queries
// instead of a query per account.
func (s *Service) accountActivity(tenantID string, from, to time.Time) ([]models.Account, map[int64]activitySums, error) {
	var accounts []models.Account
	err := s.DB.Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Order("code asc").
		Find(&accounts).Error
	if err != nil {
		return nil, nil, err
	}

	// Keyed on the posting timestamp: a voided entry that was posted stays
	// in the aggregate and its posted reversal cancels it, so closed-period
	// figures never shift retroactively.
	tx := s.DB.Model(&models.JournalLine{}).
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.entry_id").
		Where("journal_entries.tenant_id = ? AND journal_entries.posted_at IS NOT NULL", tenantID).
		Where("journal_entries.date <= ?", to)
	if !from.IsZero() {
		tx = tx.Where("journal_entries.date >= ?", from)
	}

	var rows []activitySums
	err = tx.Select("journal_lines.account_id as account_id",
		"COALESCE(SUM(journal_lines.debit), 0) as debit",
		"COALESCE(SUM(journal_lines.credit), 0) as credit").
		Group("journal_lines.account_id").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	activity := make(map[int64]activitySums, len(rows))
	for _, row := range rows {
		activity[row.AccountID] = row
	}
	return accounts, activity, nil
}
