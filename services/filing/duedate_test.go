package filing

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/haree-hq/haree/config"
	"github.com/haree-hq/haree/models"
)

const testTenant = "tenant-1"

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.NewLoggerService()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.TaxFiling{}, &models.HolidayOverride{}))
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStatutoryBases(t *testing.T) {
	wit, err := MonthlyWITBase("2026-01")
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.February, 15), wit)

	stmt, err := INSSStatementBase("2026-01")
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.February, 10), stmt)

	pay, err := INSSPaymentBase("2026-01")
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.February, 20), pay)

	// December rolls into the next year.
	dec, err := MonthlyWITBase("2026-12")
	require.NoError(t, err)
	assert.Equal(t, day(2027, time.January, 15), dec)

	assert.Equal(t, day(2026, time.March, 31), AnnualWITBase(2025))

	_, err = MonthlyWITBase("not-a-period")
	assert.Error(t, err)
}

func TestAdjustToNextBusinessDay(t *testing.T) {
	c := NewDueDateCalculator(testDB(t))

	// 2026-02-15 is a Sunday.
	adjusted, err := c.AdjustToNextBusinessDay(testTenant, day(2026, time.February, 15))
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.February, 16), adjusted)
	assert.Equal(t, time.Monday, adjusted.Weekday())

	// A business day passes through untouched.
	adjusted, err = c.AdjustToNextBusinessDay(testTenant, day(2026, time.February, 10))
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.February, 10), adjusted)
}

func TestAdjustSkipsCountryHolidays(t *testing.T) {
	c := NewDueDateCalculator(testDB(t))

	// 2026-12-25 is a Friday and Christmas Day; the weekend follows it.
	adjusted, err := c.AdjustToNextBusinessDay(testTenant, day(2026, time.December, 25))
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.December, 28), adjusted)
}

func TestAdjustHonorsTenantOverrides(t *testing.T) {
	db := testDB(t)

	// Tenant adds a holiday on Monday 2026-02-16: the Sunday base now slides
	// to Tuesday.
	require.NoError(t, db.Create(&models.HolidayOverride{
		TenantID: testTenant, Year: 2026,
		Date: day(2026, time.February, 16), Name: "Municipal holiday", IsHoliday: true,
	}).Error)

	// Another tenant cancels Christmas Day.
	require.NoError(t, db.Create(&models.HolidayOverride{
		TenantID: "tenant-2", Year: 2026,
		Date: day(2026, time.December, 25), Name: "Working Christmas", IsHoliday: false,
	}).Error)

	c := NewDueDateCalculator(db)

	adjusted, err := c.AdjustToNextBusinessDay(testTenant, day(2026, time.February, 15))
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.February, 17), adjusted)

	adjusted, err = c.AdjustToNextBusinessDay("tenant-2", day(2026, time.December, 25))
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.December, 25), adjusted)

	// The override does not leak across tenants.
	adjusted, err = c.AdjustToNextBusinessDay(testTenant, day(2026, time.December, 25))
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.December, 28), adjusted)
}

func TestHolidaySetIsMemoized(t *testing.T) {
	db := testDB(t)
	c := NewDueDateCalculator(db)

	adjusted, err := c.AdjustToNextBusinessDay(testTenant, day(2026, time.February, 16))
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.February, 16), adjusted)

	// Overrides written after the first lookup are invisible to this
	// calculator; a fresh one sees them.
	require.NoError(t, db.Create(&models.HolidayOverride{
		TenantID: testTenant, Year: 2026,
		Date: day(2026, time.February, 16), IsHoliday: true,
	}).Error)

	adjusted, err = c.AdjustToNextBusinessDay(testTenant, day(2026, time.February, 16))
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.February, 16), adjusted)

	fresh := NewDueDateCalculator(db)
	adjusted, err = fresh.AdjustToNextBusinessDay(testTenant, day(2026, time.February, 16))
	require.NoError(t, err)
	assert.Equal(t, day(2026, time.February, 17), adjusted)
}
