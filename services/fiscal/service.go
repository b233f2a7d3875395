// Package fiscal owns the fiscal year / period lifecycle. Periods move
// open -> closed -> locked; closed -> open is the single backward move.
// Transitions are compare-and-set updates guarded on the current status, so
// a racing transition observes the row after the fact, never mid-change.
package fiscal

import (
	"errors"
	"time"

	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/haree-hq/haree/models"
	"github.com/haree-hq/haree/types"
)

var (
	ErrInvalidPeriodTransition = errors.New("invalid period transition")
	ErrPeriodNotFound          = errors.New("fiscal period not found")
	ErrPeriodClosed            = errors.New("fiscal period is closed")
	ErrPeriodLocked            = errors.New("fiscal period is locked")
	ErrFiscalYearNotFound      = errors.New("fiscal year not found")
	ErrFiscalYearExists        = errors.New("fiscal year already exists")
	ErrNoPeriodForDate         = errors.New("no fiscal period covers the date")
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// CreateFiscalYear creates the year and its 12 monthly periods, all open,
// with contiguous month boundaries.
func (s *Service) CreateFiscalYear(tenantID string, year int) (*models.FiscalYear, error) {
	var count int64
	if err := s.DB.Model(&models.FiscalYear{}).
		Where("tenant_id = ? AND year = ?", tenantID, year).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrFiscalYearExists
	}

	fiscalYear := models.FiscalYear{
		TenantID: tenantID,
		Year:     year,
		Status:   types.FiscalYearOpen,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&fiscalYear).Error; err != nil {
			return err
		}

		for month := 1; month <= 12; month++ {
			start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)

			period := models.FiscalPeriod{
				TenantID:     tenantID,
				FiscalYearID: fiscalYear.ID,
				PeriodNumber: month,
				StartDate:    start,
				EndDate:      end,
				Status:       types.PeriodOpen,
			}
			if err := tx.Create(&period).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &fiscalYear, nil
}

func (s *Service) ClosePeriod(tenantID string, periodID int64, closedBy string) error {
	return s.transition(tenantID, periodID, types.PeriodOpen, types.PeriodClosed, map[string]interface{}{
		"closed_by": null.StringFrom(closedBy),
		"closed_at": null.TimeFrom(time.Now()),
	})
}

func (s *Service) ReopenPeriod(tenantID string, periodID int64, reopenedBy string) error {
	return s.transition(tenantID, periodID, types.PeriodClosed, types.PeriodOpen, map[string]interface{}{
		"closed_by": null.String{},
		"closed_at": null.Time{},
	})
}

// LockPeriod freezes a closed period permanently, typically after the
// statutory filing for it was submitted. There is no unlock.
func (s *Service) LockPeriod(tenantID string, periodID int64, lockedBy string) error {
	return s.transition(tenantID, periodID, types.PeriodClosed, types.PeriodLocked, map[string]interface{}{
		"locked_by": null.StringFrom(lockedBy),
		"locked_at": null.TimeFrom(time.Now()),
	})
}

// transition flips status from -> to in a single guarded UPDATE. Zero rows
// affected means the period either does not exist or is not in the expected
// state; the follow-up read tells the two apart.
func (s *Service) transition(tenantID string, periodID int64, from, to types.PeriodStatus, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	res := s.DB.Model(&models.FiscalPeriod{}).
		Where("id = ? AND tenant_id = ? AND status = ?", periodID, tenantID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetPeriod(tenantID, periodID); err != nil {
			return err
		}
		return ErrInvalidPeriodTransition
	}
	return nil
}

func (s *Service) GetPeriod(tenantID string, periodID int64) (*models.FiscalPeriod, error) {
	var period models.FiscalPeriod
	err := s.DB.Where("id = ? AND tenant_id = ?", periodID, tenantID).First(&period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (s *Service) GetYear(tenantID string, year int) (*models.FiscalYear, error) {
	var fiscalYear models.FiscalYear
	err := s.DB.Where("tenant_id = ? AND year = ?", tenantID, year).First(&fiscalYear).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFiscalYearNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fiscalYear, nil
}

func (s *Service) ListPeriods(tenantID string, fiscalYearID int64) ([]models.FiscalPeriod, error) {
	var periods []models.FiscalPeriod
	err := s.DB.Where("tenant_id = ? AND fiscal_year_id = ?", tenantID, fiscalYearID).
		Order("period_number asc").
		Find(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

// PeriodForDate returns the period whose date window covers d.
func (s *Service) PeriodForDate(tenantID string, d time.Time) (*models.FiscalPeriod, error) {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

	var period models.FiscalPeriod
	err := s.DB.Where("tenant_id = ? AND start_date <= ? AND end_date >= ?", tenantID, day, day).
		First(&period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoPeriodForDate
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// StatusError maps a non-open period status to its posting error.
func StatusError(status types.PeriodStatus) error {
	switch status {
	case types.PeriodClosed:
		return ErrPeriodClosed
	case types.PeriodLocked:
		return ErrPeriodLocked
	default:
		return nil
	}
}
