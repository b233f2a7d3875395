// Package filing tracks statutory tax filings and their holiday-adjusted
// due dates.
package filing

import (
	"fmt"
	"time"

	"github.com/emirpasic/gods/sets/hashset"
	"gorm.io/gorm"

	"github.com/haree-hq/haree/models"
)

const dayLayout = "2006-01-02"

// Statutory due-date bases, as day-of-month in the month after the period
// (annual WIT is due at the end of March the following year). Unadjusted;
// weekends and holidays push them forward.
const (
	monthlyWITDueDay    = 15
	inssStatementDueDay = 10
	inssPaymentDueDay   = 20
)

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

// Timor-Leste fixed-date public holidays. Movable feasts (Good Friday, Eid,
// Corpus Christi) vary by year and arrive as tenant overrides.
var countryHolidays = []fixedHoliday{
	{time.January, 1, "New Year's Day"},
	{time.March, 3, "Veterans Day"},
	{time.May, 1, "Labour Day"},
	{time.May, 20, "Restoration of Independence Day"},
	{time.August, 30, "Popular Consultation Day"},
	{time.November, 1, "All Saints Day"},
	{time.November, 2, "All Souls Day"},
	{time.November, 12, "National Youth Day"},
	{time.November, 28, "Proclamation of Independence Day"},
	{time.December, 7, "Memorial Day"},
	{time.December, 8, "Day of Our Lady of Immaculate Conception"},
	{time.December, 25, "Christmas Day"},
	{time.December, 31, "National Heroes Day"},
}

// DueDateCalculator shifts statutory base dates forward over weekends and
// holidays. Tenant holiday overrides are fetched once per (tenant, year)
// and memoized for the calculator's lifetime, so a computation batch does
// not re-read them; create one calculator per batch. Not safe for
// concurrent use.
type DueDateCalculator struct {
	DB    *gorm.DB
	cache map[holidayKey]*hashset.Set
}

type holidayKey struct {
	tenantID string
	year     int
}

func NewDueDateCalculator(db *gorm.DB) *DueDateCalculator {
	return &DueDateCalculator{DB: db, cache: make(map[holidayKey]*hashset.Set)}
}

// AdjustToNextBusinessDay advances date day by day while it falls on a
// weekend or on a holiday (country defaults plus tenant additions, minus
// tenant removals) until it lands on a business day.
func (c *DueDateCalculator) AdjustToNextBusinessDay(tenantID string, date time.Time) (time.Time, error) {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	for {
		holidays, err := c.holidaySet(tenantID, d.Year())
		if err != nil {
			return time.Time{}, err
		}
		if !isWeekend(d) && !holidays.Contains(d.Format(dayLayout)) {
			return d, nil
		}
		d = d.AddDate(0, 0, 1)
	}
}

func (c *DueDateCalculator) holidaySet(tenantID string, year int) (*hashset.Set, error) {
	key := holidayKey{tenantID, year}
	if set, ok := c.cache[key]; ok {
		return set, nil
	}

	set := hashset.New()
	for _, h := range countryHolidays {
		set.Add(time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC).Format(dayLayout))
	}

	var overrides []models.HolidayOverride
	err := c.DB.Where("tenant_id = ? AND year = ?", tenantID, year).Find(&overrides).Error
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		day := o.Date.Format(dayLayout)
		if o.IsHoliday {
			set.Add(day)
		} else {
			set.Remove(day)
		}
	}

	c.cache[key] = set
	return set, nil
}

func isWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}

// MonthlyWITBase returns the unadjusted due date for a YYYY-MM WIT period:
// the 15th of the following month.
func MonthlyWITBase(period string) (time.Time, error) {
	return monthlyBase(period, monthlyWITDueDay)
}

// INSSStatementBase returns the unadjusted due date of the monthly INSS
// remuneration statement: the 10th of the following month.
func INSSStatementBase(period string) (time.Time, error) {
	return monthlyBase(period, inssStatementDueDay)
}

// INSSPaymentBase returns the unadjusted due date of the monthly INSS
// contribution payment: the 20th of the following month.
func INSSPaymentBase(period string) (time.Time, error) {
	return monthlyBase(period, inssPaymentDueDay)
}

// AnnualWITBase returns the unadjusted due date of the annual WIT
// information return: March 31 of the following year.
func AnnualWITBase(taxYear int) time.Time {
	return time.Date(taxYear+1, time.March, 31, 0, 0, 0, 0, time.UTC)
}

func monthlyBase(period string, day int) (time.Time, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid period %q: %w", period, err)
	}
	next := start.AddDate(0, 1, 0)
	return time.Date(next.Year(), next.Month(), day, 0, 0, 0, 0, time.UTC), nil
}
