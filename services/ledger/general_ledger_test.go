package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haree-hq/haree/services/coa"
)

func postOn(t *testing.T, s *Service, date time.Time, description, debitCode, creditCode string, amount int64) {
	t.Helper()
	_, err := s.CreateEntry(testTenant, CreateEntryParams{
		Date:        date,
		Description: description,
		Lines:       twoLines(debitCode, creditCode, decimal.NewFromInt(amount)),
		AutoPost:    true,
	})
	require.NoError(t, err)
}

func TestGetEntriesForAccount(t *testing.T) {
	s := testService(t)
	now := time.Now().UTC()
	year := now.Year()

	bank, err := s.Accounts.GetByCode(testTenant, coa.CodeBank)
	require.NoError(t, err)

	d1 := time.Date(year, now.Month(), 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(year, now.Month(), 5, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(year, now.Month(), 9, 0, 0, 0, 0, time.UTC)

	postOn(t, s, d1, "Capital deposit", coa.CodeBank, "3010", 1000)
	postOn(t, s, d2, "Rent paid", "5100", coa.CodeBank, 200)
	postOn(t, s, d3, "Supplies", "5120", coa.CodeBank, 50)

	// A draft never shows in the ledger view.
	_, err = s.CreateEntry(testTenant, CreateEntryParams{
		Date:        d2,
		Description: "Draft deposit",
		Lines:       twoLines(coa.CodeBank, "3010", decimal.NewFromInt(999)),
	})
	require.NoError(t, err)

	ledger, err := s.GetEntriesForAccount(testTenant, bank.ID, d2, d3, 1, 50)
	require.NoError(t, err)

	// d1 activity is strictly before the range and lands in the opening.
	assert.True(t, ledger.OpeningBalance.Equal(decimal.NewFromInt(1000)),
		"opening %s", ledger.OpeningBalance)

	require.Len(t, ledger.Rows, 2)
	assert.Equal(t, "Rent paid", ledger.Rows[0].Description)
	assert.True(t, ledger.Rows[0].RunningBalance.Equal(decimal.NewFromInt(800)))
	assert.Equal(t, "Supplies", ledger.Rows[1].Description)
	assert.True(t, ledger.Rows[1].RunningBalance.Equal(decimal.NewFromInt(750)))

	assert.True(t, ledger.ClosingBalance.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, int64(2), ledger.TotalRows)
}

func TestGetEntriesForAccountCreditNormal(t *testing.T) {
	s := testService(t)
	now := time.Now().UTC()
	d := time.Date(now.Year(), now.Month(), 3, 0, 0, 0, 0, time.UTC)

	payable, err := s.Accounts.GetByCode(testTenant, coa.CodeSalariesPayable)
	require.NoError(t, err)

	postOn(t, s, d, "Accrue salaries", coa.CodeSalariesExpense, coa.CodeSalariesPayable, 700)

	ledger, err := s.GetEntriesForAccount(testTenant, payable.ID, d, d, 1, 50)
	require.NoError(t, err)
	require.Len(t, ledger.Rows, 1)

	// Liability balances grow on the credit side.
	assert.True(t, ledger.ClosingBalance.Equal(decimal.NewFromInt(700)))
}

func TestGetEntriesForAccountPagination(t *testing.T) {
	s := testService(t)
	now := time.Now().UTC()
	year := now.Year()

	bank, err := s.Accounts.GetByCode(testTenant, coa.CodeBank)
	require.NoError(t, err)

	for day := 1; day <= 4; day++ {
		d := time.Date(year, now.Month(), day, 0, 0, 0, 0, time.UTC)
		postOn(t, s, d, "Deposit", coa.CodeBank, "3010", 100)
	}

	from := time.Date(year, now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, now.Month(), 28, 0, 0, 0, 0, time.UTC)

	page2, err := s.GetEntriesForAccount(testTenant, bank.ID, from, to, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2.Rows, 2)
	assert.Equal(t, int64(4), page2.TotalRows)

	// The running balance carries the first page's 200 across the page break.
	assert.True(t, page2.Rows[0].RunningBalance.Equal(decimal.NewFromInt(300)))
	assert.True(t, page2.Rows[1].RunningBalance.Equal(decimal.NewFromInt(400)))

	_, err = s.GetEntriesForAccount(testTenant, 9999, from, to, 1, 50)
	assert.ErrorIs(t, err, coa.ErrAccountNotFound)
}
