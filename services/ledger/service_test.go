package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/haree-hq/haree/config"
	"github.com/haree-hq/haree/models"
	"github.com/haree-hq/haree/services/audit"
	"github.com/haree-hq/haree/services/coa"
	"github.com/haree-hq/haree/services/fiscal"
	"github.com/haree-hq/haree/types"
)

const testTenant = "tenant-1"

func testService(t *testing.T) *Service {
	t.Helper()
	config.NewLoggerService()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Account{},
		&models.JournalEntry{},
		&models.JournalLine{},
		&models.FiscalYear{},
		&models.FiscalPeriod{},
		&models.EntrySequence{},
	))

	accounts := coa.NewService(db)
	periods := fiscal.NewService(db)
	s := NewService(db, accounts, periods, audit.NewService(nil))

	_, err = accounts.InitializeDefaults(testTenant)
	require.NoError(t, err)
	_, err = periods.CreateFiscalYear(testTenant, time.Now().UTC().Year())
	require.NoError(t, err)

	return s
}

// pastPeriodDate returns a date in the current fiscal year that falls in a
// different month than today, so tests can close its period without locking
// themselves out of the current one.
func pastPeriodDate() time.Time {
	now := time.Now().UTC()
	month := time.January
	if now.Month() == time.January {
		month = time.February
	}
	return time.Date(now.Year(), month, 10, 0, 0, 0, 0, time.UTC)
}

func twoLines(debitCode, creditCode string, amount decimal.Decimal) []LineInput {
	return []LineInput{
		{AccountCode: debitCode, Debit: amount},
		{AccountCode: creditCode, Credit: amount},
	}
}

func TestCreateEntry(t *testing.T) {
	s := testService(t)
	year := time.Now().UTC().Year()

	entry, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date:        time.Now().UTC(),
		Description: "Office rent",
		Lines:       twoLines("5100", coa.CodeBank, decimal.NewFromInt(350)),
		CreatedBy:   "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, types.EntryDraft, entry.Status)
	assert.Equal(t, types.SourceManual, entry.Source)
	assert.Equal(t, fmt.Sprintf("JE-%d-000001", year), entry.EntryNumber)
	assert.True(t, entry.TotalDebit.Equal(decimal.NewFromInt(350)))
	assert.True(t, entry.TotalCredit.Equal(decimal.NewFromInt(350)))
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, 1, entry.Lines[0].LineNumber)
	assert.Equal(t, "Rent", entry.Lines[0].AccountName)

	second, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date:        time.Now().UTC(),
		Description: "Utilities",
		Lines:       twoLines("5110", coa.CodeBank, decimal.NewFromInt(80)),
		CreatedBy:   "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("JE-%d-000002", year), second.EntryNumber)
}

func TestCreateEntryValidation(t *testing.T) {
	s := testService(t)
	now := time.Now().UTC()

	_, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date: now, Description: "one line",
		Lines: []LineInput{{AccountCode: coa.CodeBank, Debit: decimal.NewFromInt(10)}},
	})
	assert.ErrorIs(t, err, ErrTooFewLines)

	_, err = s.CreateEntry(testTenant, CreateEntryParams{
		Date: now, Description: "unbalanced",
		Lines: []LineInput{
			{AccountCode: "5100", Debit: decimal.NewFromInt(100)},
			{AccountCode: coa.CodeBank, Credit: decimal.NewFromInt(90)},
		},
	})
	assert.ErrorIs(t, err, ErrUnbalancedEntry)

	_, err = s.CreateEntry(testTenant, CreateEntryParams{
		Date: now, Description: "both sides",
		Lines: []LineInput{
			{AccountCode: "5100", Debit: decimal.NewFromInt(10), Credit: decimal.NewFromInt(10)},
			{AccountCode: coa.CodeBank, Credit: decimal.NewFromInt(10)},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = s.CreateEntry(testTenant, CreateEntryParams{
		Date: now, Description: "negative",
		Lines: []LineInput{
			{AccountCode: "5100", Debit: decimal.NewFromInt(-10)},
			{AccountCode: coa.CodeBank, Credit: decimal.NewFromInt(-10)},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = s.CreateEntry(testTenant, CreateEntryParams{
		Date: now, Description: "sub-cent",
		Lines: []LineInput{
			{AccountCode: "5100", Debit: decimal.NewFromFloat(10.001)},
			{AccountCode: coa.CodeBank, Credit: decimal.NewFromFloat(10.001)},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = s.CreateEntry(testTenant, CreateEntryParams{
		Date: now, Description: "unknown account",
		Lines: twoLines("9999", coa.CodeBank, decimal.NewFromInt(10)),
	})
	assert.ErrorIs(t, err, coa.ErrAccountNotFound)

	require.NoError(t, s.Accounts.DeleteAccount(testTenant, "5110"))
	_, err = s.CreateEntry(testTenant, CreateEntryParams{
		Date: now, Description: "inactive account",
		Lines: twoLines("5110", coa.CodeBank, decimal.NewFromInt(10)),
	})
	assert.ErrorIs(t, err, coa.ErrInactiveAccount)

	_, err = s.CreateEntry(testTenant, CreateEntryParams{
		Date: time.Date(time.Now().UTC().Year()-1, time.June, 1, 0, 0, 0, 0, time.UTC),
		Description: "no fiscal year",
		Lines:       twoLines("5100", coa.CodeBank, decimal.NewFromInt(10)),
	})
	assert.ErrorIs(t, err, fiscal.ErrFiscalYearNotFound)
}

func TestPostEntry(t *testing.T) {
	s := testService(t)

	entry, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date:        time.Now().UTC(),
		Description: "Rent",
		Lines:       twoLines("5100", coa.CodeBank, decimal.NewFromInt(350)),
		CreatedBy:   "user-1",
	})
	require.NoError(t, err)

	posted, err := s.PostEntry(testTenant, entry.ID, "user-2")
	require.NoError(t, err)
	assert.Equal(t, types.EntryPosted, posted.Status)
	assert.Equal(t, "user-2", posted.PostedBy.String)
	assert.True(t, posted.PostedAt.Valid)

	_, err = s.PostEntry(testTenant, entry.ID, "user-2")
	assert.ErrorIs(t, err, ErrNotDraft)

	_, err = s.PostEntry(testTenant, 9999, "user-2")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestPostEntryClosedPeriod(t *testing.T) {
	s := testService(t)
	date := pastPeriodDate()

	entry, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date:        date,
		Description: "Backdated",
		Lines:       twoLines("5100", coa.CodeBank, decimal.NewFromInt(100)),
	})
	require.NoError(t, err)

	period, err := s.Periods.PeriodForDate(testTenant, date)
	require.NoError(t, err)
	require.NoError(t, s.Periods.ClosePeriod(testTenant, period.ID, "admin"))

	_, err = s.PostEntry(testTenant, entry.ID, "user-1")
	assert.ErrorIs(t, err, fiscal.ErrPeriodClosed)

	// AutoPost into the closed period fails the same way and stores nothing.
	_, err = s.CreateEntry(testTenant, CreateEntryParams{
		Date:        date,
		Description: "Backdated autopost",
		Lines:       twoLines("5100", coa.CodeBank, decimal.NewFromInt(100)),
		AutoPost:    true,
	})
	assert.ErrorIs(t, err, fiscal.ErrPeriodClosed)

	var count int64
	require.NoError(t, s.DB.Model(&models.JournalEntry{}).
		Where("tenant_id = ? AND description = ?", testTenant, "Backdated autopost").
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestVoidDraftEntry(t *testing.T) {
	s := testService(t)

	entry, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date:        time.Now().UTC(),
		Description: "Draft to void",
		Lines:       twoLines("5100", coa.CodeBank, decimal.NewFromInt(50)),
	})
	require.NoError(t, err)

	reversal, err := s.VoidEntry(testTenant, entry.ID, "typo", "user-1")
	require.NoError(t, err)
	assert.Nil(t, reversal, "voiding a draft creates no reversal")

	voided, err := s.GetEntry(testTenant, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EntryVoid, voided.Status)
	assert.Equal(t, "typo", voided.VoidReason.String)
	assert.False(t, voided.ReversalEntryID.Valid)

	_, err = s.VoidEntry(testTenant, entry.ID, "again", "user-1")
	assert.ErrorIs(t, err, ErrAlreadyVoid)
}

func TestVoidPostedEntryCreatesReversal(t *testing.T) {
	s := testService(t)
	amount := decimal.NewFromInt(275)

	entry, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date:        time.Now().UTC(),
		Description: "Posted then voided",
		Lines:       twoLines("5100", coa.CodeBank, amount),
		CreatedBy:   "user-1",
		AutoPost:    true,
	})
	require.NoError(t, err)
	require.Equal(t, types.EntryPosted, entry.Status)

	reversal, err := s.VoidEntry(testTenant, entry.ID, "duplicate posting", "user-2")
	require.NoError(t, err)
	require.NotNil(t, reversal)

	assert.Equal(t, types.SourceReversal, reversal.Source)
	assert.Equal(t, types.EntryPosted, reversal.Status)
	assert.True(t, reversal.TotalDebit.Equal(amount))
	assert.Contains(t, reversal.Description, entry.EntryNumber)

	full, err := s.GetEntry(testTenant, reversal.ID)
	require.NoError(t, err)
	require.Len(t, full.Lines, 2)
	// Debit and credit are swapped line for line.
	assert.Equal(t, "5100", full.Lines[0].AccountCode)
	assert.True(t, full.Lines[0].Credit.Equal(amount))
	assert.True(t, full.Lines[0].Debit.IsZero())
	assert.Equal(t, coa.CodeBank, full.Lines[1].AccountCode)
	assert.True(t, full.Lines[1].Debit.Equal(amount))

	voided, err := s.GetEntry(testTenant, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, types.EntryVoid, voided.Status)
	assert.Equal(t, reversal.ID, voided.ReversalEntryID.Int64)
}

// A second void racing on a stale read of the same posted entry must lose
// against the status guard instead of posting another reversal.
func TestVoidStaleStatusLosesGuard(t *testing.T) {
	s := testService(t)

	entry, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date:        time.Now().UTC(),
		Description: "Voided twice",
		Lines:       twoLines("5100", coa.CodeBank, decimal.NewFromInt(80)),
		AutoPost:    true,
	})
	require.NoError(t, err)

	stale, err := s.GetEntry(testTenant, entry.ID)
	require.NoError(t, err)

	_, err = s.VoidEntry(testTenant, entry.ID, "first", "user-1")
	require.NoError(t, err)

	// Replay the write with the snapshot taken before the first void.
	err = s.markVoid(s.DB, stale, "second", "user-2", null.Int64{})
	assert.ErrorIs(t, err, ErrAlreadyVoid)

	var reversals int64
	require.NoError(t, s.DB.Model(&models.JournalEntry{}).
		Where("tenant_id = ? AND source = ?", testTenant, types.SourceReversal).
		Count(&reversals).Error)
	assert.Equal(t, int64(1), reversals)

	voided, err := s.GetEntry(testTenant, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", voided.VoidReason.String)
}

// Posting in a period, closing it, then voiding: the reversal lands in the
// currently open period and the closed period's rows are left untouched.
func TestVoidAfterPeriodClose(t *testing.T) {
	s := testService(t)
	date := pastPeriodDate()

	entry, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date:        date,
		Description: "Salary run",
		Lines:       twoLines(coa.CodeSalariesExpense, coa.CodeSalariesPayable, decimal.NewFromInt(500)),
		AutoPost:    true,
	})
	require.NoError(t, err)

	originalPeriod, err := s.Periods.PeriodForDate(testTenant, date)
	require.NoError(t, err)
	require.NoError(t, s.Periods.ClosePeriod(testTenant, originalPeriod.ID, "admin"))

	reversal, err := s.VoidEntry(testTenant, entry.ID, "employee overpaid", "user-1")
	require.NoError(t, err)
	require.NotNil(t, reversal)

	currentPeriod, err := s.Periods.PeriodForDate(testTenant, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, currentPeriod.ID, reversal.FiscalPeriodID)
	assert.NotEqual(t, originalPeriod.ID, reversal.FiscalPeriodID)

	// Nothing new was written into the closed period.
	var inClosed int64
	require.NoError(t, s.DB.Model(&models.JournalEntry{}).
		Where("tenant_id = ? AND fiscal_period_id = ?", testTenant, originalPeriod.ID).
		Count(&inClosed).Error)
	assert.Equal(t, int64(1), inClosed)
}

func TestVoidLockedPeriodRejected(t *testing.T) {
	s := testService(t)
	date := pastPeriodDate()

	entry, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date:        date,
		Description: "Locked away",
		Lines:       twoLines("5100", coa.CodeBank, decimal.NewFromInt(10)),
		AutoPost:    true,
	})
	require.NoError(t, err)

	period, err := s.Periods.PeriodForDate(testTenant, date)
	require.NoError(t, err)
	require.NoError(t, s.Periods.ClosePeriod(testTenant, period.ID, "admin"))
	require.NoError(t, s.Periods.LockPeriod(testTenant, period.ID, "admin"))

	_, err = s.VoidEntry(testTenant, entry.ID, "too late", "user-1")
	assert.ErrorIs(t, err, fiscal.ErrPeriodLocked)
}

func TestListEntries(t *testing.T) {
	s := testService(t)
	now := time.Now().UTC()

	_, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date: now, Description: "draft one",
		Lines: twoLines("5100", coa.CodeBank, decimal.NewFromInt(10)),
	})
	require.NoError(t, err)
	_, err = s.CreateEntry(testTenant, CreateEntryParams{
		Date: now, Description: "posted one",
		Lines:    twoLines("5100", coa.CodeBank, decimal.NewFromInt(20)),
		AutoPost: true,
	})
	require.NoError(t, err)

	all, err := s.ListEntries(testTenant, EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	posted, err := s.ListEntries(testTenant, EntryFilter{Status: types.EntryPosted})
	require.NoError(t, err)
	require.Len(t, posted, 1)
	assert.Equal(t, "posted one", posted[0].Description)
	assert.Len(t, posted[0].Lines, 2)

	none, err := s.ListEntries("tenant-2", EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListEntriesRejectsUnknownOrderBy(t *testing.T) {
	s := testService(t)

	for _, orderBy := range []string{
		"ASC",
		"asc; --",
		"asc, (SELECT code FROM accounts WHERE tenant_id = 'tenant-2' LIMIT 1)",
	} {
		_, err := s.ListEntries(testTenant, EntryFilter{OrderBy: orderBy})
		assert.ErrorIs(t, err, ErrInvalidOrderBy, "order_by %q", orderBy)
	}

	_, err := s.ListEntries(testTenant, EntryFilter{OrderBy: types.OrderByAsc})
	require.NoError(t, err)
	_, err = s.ListEntries(testTenant, EntryFilter{OrderBy: types.OrderByDesc})
	require.NoError(t, err)
}

func TestPostOpeningBalances(t *testing.T) {
	s := testService(t)
	year := time.Now().UTC().Year()

	entry, err := s.PostOpeningBalances(testTenant, year, []LineInput{
		{AccountCode: coa.CodeBank, Debit: decimal.NewFromInt(10000)},
		{AccountCode: coa.CodeAccountsPayable, Credit: decimal.NewFromInt(2500)},
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, types.SourceOpening, entry.Source)
	assert.Equal(t, types.EntryPosted, entry.Status)
	require.Len(t, entry.Lines, 3)

	// The imbalance lands on Opening Balance Equity.
	balancing := entry.Lines[2]
	assert.Equal(t, coa.CodeOpeningBalance, balancing.AccountCode)
	assert.True(t, balancing.Credit.Equal(decimal.NewFromInt(7500)))

	var fiscalYear models.FiscalYear
	require.NoError(t, s.DB.Where("tenant_id = ? AND year = ?", testTenant, year).First(&fiscalYear).Error)
	assert.True(t, fiscalYear.OpeningBalancesPosted)
	assert.Equal(t, entry.ID, fiscalYear.OpeningBalanceEntryID.Int64)

	_, err = s.PostOpeningBalances(testTenant, year, []LineInput{
		{AccountCode: coa.CodeBank, Debit: decimal.NewFromInt(1)},
		{AccountCode: coa.CodeOpeningBalance, Credit: decimal.NewFromInt(1)},
	}, "user-1")
	assert.ErrorIs(t, err, ErrOpeningAlreadyPosted)
}

// A failed opening run must not burn the one-shot flag: the claim and the
// entry roll back together.
func TestPostOpeningBalancesFailureReleasesFlag(t *testing.T) {
	s := testService(t)
	year := time.Now().UTC().Year()
	lines := []LineInput{
		{AccountCode: coa.CodeBank, Debit: decimal.NewFromInt(1000)},
		{AccountCode: coa.CodeOpeningBalance, Credit: decimal.NewFromInt(1000)},
	}

	january := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	period, err := s.Periods.PeriodForDate(testTenant, january)
	require.NoError(t, err)
	require.NoError(t, s.Periods.ClosePeriod(testTenant, period.ID, "admin"))

	_, err = s.PostOpeningBalances(testTenant, year, lines, "user-1")
	assert.ErrorIs(t, err, fiscal.ErrPeriodClosed)

	var fiscalYear models.FiscalYear
	require.NoError(t, s.DB.Where("tenant_id = ? AND year = ?", testTenant, year).First(&fiscalYear).Error)
	assert.False(t, fiscalYear.OpeningBalancesPosted)

	require.NoError(t, s.Periods.ReopenPeriod(testTenant, period.ID, "admin"))

	entry, err := s.PostOpeningBalances(testTenant, year, lines, "user-1")
	require.NoError(t, err)
	assert.Equal(t, types.EntryPosted, entry.Status)
}

func TestCreateFromInvoice(t *testing.T) {
	s := testService(t)
	now := time.Now().UTC()

	inv := InvoiceData{
		InvoiceID:     "inv-1",
		InvoiceNumber: "INV-0001",
		Date:          now,
		Amount:        decimal.NewFromInt(1200),
		CustomerName:  "Cafe Dili",
		CreatedBy:     "user-1",
	}

	entry, err := s.CreateFromInvoice(testTenant, inv)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, types.SourceInvoice, entry.Source)
	assert.Equal(t, types.EntryPosted, entry.Status)
	assert.Equal(t, coa.CodeAccountsReceivable, entry.Lines[0].AccountCode)
	assert.Equal(t, coa.CodeSalesRevenue, entry.Lines[1].AccountCode)

	payment, err := s.CreateFromInvoicePayment(testTenant, inv)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, coa.CodeBank, payment.Lines[0].AccountCode)
	assert.Equal(t, coa.CodeAccountsReceivable, payment.Lines[1].AccountCode)

	// An uninitialized tenant is skipped, not failed.
	skipped, err := s.CreateFromInvoice("tenant-uninitialized", inv)
	require.NoError(t, err)
	assert.Nil(t, skipped)
}
