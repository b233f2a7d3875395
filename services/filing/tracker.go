package filing

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/haree-hq/haree/config"
	"github.com/haree-hq/haree/models"
	"github.com/haree-hq/haree/services/audit"
	"github.com/haree-hq/haree/types"
)

var (
	ErrFilingNotFound     = errors.New("tax filing not found")
	ErrFilingAlreadyFiled = errors.New("filing already marked as filed")
)

// Tracker persists filing snapshots and their lifecycle. It is the sole
// writer of TaxFiling rows.
type Tracker struct {
	DB       *gorm.DB
	DueDates *DueDateCalculator
	Audit    *audit.Service
}

func NewTracker(db *gorm.DB, audit *audit.Service) *Tracker {
	return &Tracker{DB: db, DueDates: NewDueDateCalculator(db), Audit: audit}
}

type Totals struct {
	Wages        decimal.Decimal `json:"wages"`
	WIT          decimal.Decimal `json:"wit"`
	INSSEmployee decimal.Decimal `json:"inss_employee"`
	INSSEmployer decimal.Decimal `json:"inss_employer"`
}

type SaveFilingParams struct {
	Type          types.FilingType `json:"type" validate:"required"`
	Period        string           `json:"period" validate:"required"`
	DataSnapshot  []byte           `json:"data_snapshot"`
	Totals        Totals           `json:"totals"`
	EmployeeCount int              `json:"employee_count"`
	UserID        string           `json:"user_id"`
}

// SaveFiling upserts the filing keyed on (tenant, type, period): repeated
// regeneration overwrites the snapshot in place, never duplicates. A filing
// already marked filed is refused: regenerating it would silently fork
// the stored snapshot from the return that was actually submitted.
func (t *Tracker) SaveFiling(tenantID string, params SaveFilingParams) (*models.TaxFiling, error) {
	dueDate, err := t.dueDateFor(tenantID, params.Type, params.Period)
	if err != nil {
		return nil, err
	}

	status := types.FilingPending
	if time.Now().After(dueDate.AddDate(0, 0, 1).Add(-time.Nanosecond)) {
		status = types.FilingOverdue
	}

	filing := models.TaxFiling{
		TenantID:          tenantID,
		Type:              params.Type,
		Period:            params.Period,
		Status:            status,
		DueDate:           dueDate,
		DataSnapshot:      params.DataSnapshot,
		EmployeeCount:     params.EmployeeCount,
		TotalWages:        params.Totals.Wages,
		TotalWIT:          params.Totals.WIT,
		TotalINSSEmployee: params.Totals.INSSEmployee,
		TotalINSSEmployer: params.Totals.INSSEmployer,
		GeneratedBy:       params.UserID,
	}

	err = t.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.TaxFiling
		err := tx.Where("tenant_id = ? AND type = ? AND period = ?", tenantID, params.Type, params.Period).
			First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil && existing.Status == types.FilingFiled {
			config.Logger.WithField("tenant_id", tenantID).
				WithField("type", params.Type).
				WithField("period", params.Period).
				Warn("refusing to overwrite a filed tax filing")
			return ErrFilingAlreadyFiled
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "type"}, {Name: "period"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "due_date", "data_snapshot", "employee_count",
				"total_wages", "total_wit", "total_inss_employee",
				"total_inss_employer", "generated_by", "updated_at",
			}),
		}).Create(&filing).Error
	})
	if err != nil {
		return nil, err
	}

	var saved models.TaxFiling
	err = t.DB.Where("tenant_id = ? AND type = ? AND period = ?", tenantID, params.Type, params.Period).
		First(&saved).Error
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

type MarkAsFiledParams struct {
	SubmissionMethod string `json:"submission_method" validate:"required"`
	ReceiptNumber    string `json:"receipt_number"`
	Notes            string `json:"notes"`
	UserID           string `json:"user_id"`
}

func (t *Tracker) MarkAsFiled(tenantID string, filingID int64, params MarkAsFiledParams) (*models.TaxFiling, error) {
	filing, err := t.GetFiling(tenantID, filingID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":            types.FilingFiled,
		"filed_date":        null.TimeFrom(time.Now()),
		"filed_by":          null.StringFrom(params.UserID),
		"submission_method": null.StringFrom(params.SubmissionMethod),
	}
	if params.ReceiptNumber != "" {
		updates["receipt_number"] = null.StringFrom(params.ReceiptNumber)
	}
	if params.Notes != "" {
		updates["notes"] = null.StringFrom(params.Notes)
	}

	if err := t.DB.Model(filing).Updates(updates).Error; err != nil {
		return nil, err
	}

	t.Audit.Log(tenantID, "tax.filing.filed", fmt.Sprintf("%d", filing.ID), map[string]interface{}{
		"type":   filing.Type,
		"period": filing.Period,
		"method": params.SubmissionMethod,
	}, "info")

	return filing, nil
}

func (t *Tracker) GetFiling(tenantID string, filingID int64) (*models.TaxFiling, error) {
	var filing models.TaxFiling
	err := t.DB.Where("id = ? AND tenant_id = ?", filingID, tenantID).First(&filing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFilingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &filing, nil
}

// Obligation kinds enumerated by GetFilingsDueSoon. The two INSS kinds
// share one filing record (type inss_monthly) but have distinct due dates.
const (
	ObligationMonthlyWIT    = "monthly_wit"
	ObligationINSSStatement = "inss_statement"
	ObligationINSSPayment   = "inss_payment"
	ObligationAnnualWIT     = "annual_wit"
)

type UpcomingFiling struct {
	Kind         string             `json:"kind"`
	FilingType   types.FilingType   `json:"filing_type"`
	Period       string             `json:"period"`
	DueDate      time.Time          `json:"due_date"`
	DaysUntilDue int                `json:"days_until_due"`
	Status       types.FilingStatus `json:"status"`
	FilingID     null.Int64         `json:"filing_id"`
}

// StatusNotGenerated marks an obligation with no stored filing yet.
const StatusNotGenerated types.FilingStatus = "not_generated"

// GetFilingsDueSoon enumerates the statutory obligations falling due in the
// next monthsWindow months (monthly WIT, INSS statement and payment, plus
// the prior year's annual WIT return while in Q1) with holiday-adjusted
// due dates and the current status of any stored filing, ordered by due
// date.
func (t *Tracker) GetFilingsDueSoon(tenantID string, monthsWindow int) ([]UpcomingFiling, error) {
	if monthsWindow < 1 {
		monthsWindow = 1
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var upcoming []UpcomingFiling
	annualSeen := make(map[int]bool)

	for i := 0; i < monthsWindow; i++ {
		dueMonth := firstOfMonth.AddDate(0, i, 0)
		period := dueMonth.AddDate(0, -1, 0).Format("2006-01")

		witBase, err := MonthlyWITBase(period)
		if err != nil {
			return nil, err
		}
		stmtBase, err := INSSStatementBase(period)
		if err != nil {
			return nil, err
		}
		payBase, err := INSSPaymentBase(period)
		if err != nil {
			return nil, err
		}

		obligations := []UpcomingFiling{
			{Kind: ObligationMonthlyWIT, FilingType: types.FilingMonthlyWIT, Period: period, DueDate: witBase},
			{Kind: ObligationINSSStatement, FilingType: types.FilingINSSMonthly, Period: period, DueDate: stmtBase},
			{Kind: ObligationINSSPayment, FilingType: types.FilingINSSMonthly, Period: period, DueDate: payBase},
		}

		// The prior year's annual return is due March 31; surface it
		// while the window passes through the first quarter.
		if dueMonth.Month() <= time.March && !annualSeen[dueMonth.Year()-1] {
			annualSeen[dueMonth.Year()-1] = true
			obligations = append(obligations, UpcomingFiling{
				Kind:       ObligationAnnualWIT,
				FilingType: types.FilingAnnualWIT,
				Period:     fmt.Sprintf("%d", dueMonth.Year()-1),
				DueDate:    AnnualWITBase(dueMonth.Year() - 1),
			})
		}

		upcoming = append(upcoming, obligations...)
	}

	for i := range upcoming {
		adjusted, err := t.DueDates.AdjustToNextBusinessDay(tenantID, upcoming[i].DueDate)
		if err != nil {
			return nil, err
		}
		upcoming[i].DueDate = adjusted
		upcoming[i].DaysUntilDue = int(adjusted.Sub(today).Hours() / 24)

		filing, err := t.findFiling(tenantID, upcoming[i].FilingType, upcoming[i].Period)
		if err != nil {
			return nil, err
		}
		if filing == nil {
			upcoming[i].Status = StatusNotGenerated
		} else {
			upcoming[i].Status = filing.Status
			upcoming[i].FilingID = null.Int64From(filing.ID)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})

	return upcoming, nil
}

type StatusSummary struct {
	Pending int64           `json:"pending"`
	Overdue int64           `json:"overdue"`
	Filed   int64           `json:"filed"`
	NextDue *UpcomingFiling `json:"next_due"`
}

// GetFilingStatusSummary counts stored filings by status and names the
// nearest unfiled obligation.
func (t *Tracker) GetFilingStatusSummary(tenantID string) (*StatusSummary, error) {
	summary := &StatusSummary{}

	type statusCount struct {
		Status types.FilingStatus
		Count  int64
	}
	var counts []statusCount
	err := t.DB.Model(&models.TaxFiling{}).
		Where("tenant_id = ?", tenantID).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	for _, c := range counts {
		switch c.Status {
		case types.FilingPending:
			summary.Pending = c.Count
		case types.FilingOverdue:
			summary.Overdue = c.Count
		case types.FilingFiled:
			summary.Filed = c.Count
		}
	}

	upcoming, err := t.GetFilingsDueSoon(tenantID, 3)
	if err != nil {
		return nil, err
	}
	for i := range upcoming {
		if upcoming[i].Status != types.FilingFiled {
			summary.NextDue = &upcoming[i]
			break
		}
	}

	return summary, nil
}

// RefreshOverdue flips pending filings whose due date has passed to
// overdue. Run nightly by the cron daemon so statuses do not go stale
// between saves.
func (t *Tracker) RefreshOverdue() (int64, error) {
	res := t.DB.Model(&models.TaxFiling{}).
		Where("status = ? AND due_date < ?", types.FilingPending, time.Now()).
		Update("status", types.FilingOverdue)
	return res.RowsAffected, res.Error
}

func (t *Tracker) findFiling(tenantID string, filingType types.FilingType, period string) (*models.TaxFiling, error) {
	var filing models.TaxFiling
	err := t.DB.Where("tenant_id = ? AND type = ? AND period = ?", tenantID, filingType, period).
		First(&filing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &filing, nil
}

func (t *Tracker) dueDateFor(tenantID string, filingType types.FilingType, period string) (time.Time, error) {
	var base time.Time
	var err error

	switch filingType {
	case types.FilingMonthlyWIT:
		base, err = MonthlyWITBase(period)
	case types.FilingINSSMonthly:
		base, err = INSSPaymentBase(period)
	case types.FilingAnnualWIT:
		var year int
		if _, err = fmt.Sscanf(period, "%d", &year); err != nil {
			return time.Time{}, fmt.Errorf("invalid annual period %q: %w", period, err)
		}
		base = AnnualWITBase(year)
	default:
		return time.Time{}, fmt.Errorf("unknown filing type %q", filingType)
	}
	if err != nil {
		return time.Time{}, err
	}

	return t.DueDates.AdjustToNextBusinessDay(tenantID, base)
}
