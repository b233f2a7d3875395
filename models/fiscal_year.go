package models

import (
	"time"

	"github.com/volatiletech/null"

	"github.com/haree-hq/haree/types"
)

type FiscalYear struct {
	ID                    int64                  `json:"id" gorm:"primaryKey"`
	TenantID              string                 `json:"tenant_id" gorm:"index:idx_fiscal_years_tenant_year,unique"`
	Year                  int                    `json:"year" gorm:"index:idx_fiscal_years_tenant_year,unique"`
	Status                types.FiscalYearStatus `json:"status"`
	OpeningBalancesPosted bool                   `json:"opening_balances_posted" gorm:"default:false"`
	OpeningBalanceEntryID null.Int64             `json:"opening_balance_entry_id" gorm:"type:bigint"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

func (FiscalYear) TableName() string {
	return "fiscal_years"
}

type FiscalPeriod struct {
	ID           int64              `json:"id" gorm:"primaryKey"`
	TenantID     string             `json:"tenant_id" gorm:"index"`
	FiscalYearID int64              `json:"fiscal_year_id" gorm:"index"`
	PeriodNumber int                `json:"period_number"`
	StartDate    time.Time          `json:"start_date"`
	EndDate      time.Time          `json:"end_date"`
	Status       types.PeriodStatus `json:"status"`
	ClosedBy     null.String        `json:"closed_by" gorm:"type:text"`
	ClosedAt     null.Time          `json:"closed_at" gorm:"type:timestamp"`
	LockedBy     null.String        `json:"locked_by" gorm:"type:text"`
	LockedAt     null.Time          `json:"locked_at" gorm:"type:timestamp"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func (FiscalPeriod) TableName() string {
	return "fiscal_periods"
}

// Contains reports whether d falls inside the period, inclusive of both ends.
func (p *FiscalPeriod) Contains(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(p.StartDate) && !day.After(p.EndDate)
}
