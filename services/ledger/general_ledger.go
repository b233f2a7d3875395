package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/haree-hq/haree/models"
	"github.com/haree-hq/haree/types"
)

// The general ledger is a read-side projection over entries that have been
// posted. Voiding does not remove an entry from the projection; the posted
// reversal neutralizes it, so balances computed as of an earlier date never
// change retroactively. Nothing here is persisted; every call recomputes
// from the journal, so re-running is always safe.

type LedgerRow struct {
	Date           time.Time       `json:"date"`
	EntryID        int64           `json:"entry_id"`
	EntryNumber    string          `json:"entry_number"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

type AccountLedger struct {
	Account        models.Account  `json:"account"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Rows           []LedgerRow     `json:"rows"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Page           int             `json:"page"`
	PerPage        int             `json:"per_page"`
	TotalRows      int64           `json:"total_rows"`
}

const defaultLedgerPageSize = 100

// GetEntriesForAccount returns the account's transaction history over the
// date range with a running balance. The opening balance sums every posted
// line strictly before the range; balances accumulate on the account's
// normal side (debit-normal for asset/expense, credit-normal otherwise).
// Large histories are paged; the running balance stays correct across pages
// because the prefix before the requested page is aggregated, not loaded.
func (s *Service) GetEntriesForAccount(tenantID string, accountID int64, from, to time.Time, page, perPage int) (*AccountLedger, error) {
	account, err := s.Accounts.GetByID(tenantID, accountID)
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultLedgerPageSize
	}

	opening, err := s.sumBefore(tenantID, accountID, from)
	if err != nil {
		return nil, err
	}
	openingBalance := netBalance(account.Type, opening.Debit, opening.Credit)

	base := s.postedLines(tenantID, accountID).
		Where("journal_entries.date >= ? AND journal_entries.date <= ?", from, to)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (page - 1) * perPage

	// Balance at the top of the page: opening plus everything on earlier
	// pages, aggregated in SQL instead of walked row by row.
	pageStart := openingBalance
	if offset > 0 {
		prior := s.orderedLines(tenantID, accountID, from, to).Limit(offset)

		var prefix sums
		err := s.DB.Table("(?) as prior", prior).
			Select("COALESCE(SUM(debit), 0) as debit, COALESCE(SUM(credit), 0) as credit").
			Scan(&prefix).Error
		if err != nil {
			return nil, err
		}
		pageStart = pageStart.Add(netBalance(account.Type, prefix.Debit, prefix.Credit))
	}

	var raw []LedgerRow
	err = s.orderedLines(tenantID, accountID, from, to).
		Limit(perPage).Offset(offset).
		Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	running := pageStart
	for i := range raw {
		running = running.Add(netBalance(account.Type, raw[i].Debit, raw[i].Credit))
		raw[i].RunningBalance = running
	}

	return &AccountLedger{
		Account:        *account,
		From:           from,
		To:             to,
		OpeningBalance: openingBalance,
		Rows:           raw,
		ClosingBalance: running,
		Page:           page,
		PerPage:        perPage,
		TotalRows:      total,
	}, nil
}

type sums struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// postedLines selects lines of entries that reached the ledger. Keyed on the
// posting timestamp, not the current status: a voided entry that was posted
// stays in, a voided draft never had a posting timestamp.
func (s *Service) postedLines(tenantID string, accountID int64) *gorm.DB {
	return s.DB.Model(&models.JournalLine{}).
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.entry_id").
		Where("journal_entries.tenant_id = ? AND journal_entries.posted_at IS NOT NULL", tenantID).
		Where("journal_lines.account_id = ?", accountID)
}

func (s *Service) orderedLines(tenantID string, accountID int64, from, to time.Time) *gorm.DB {
	return s.postedLines(tenantID, accountID).
		Select("journal_entries.date as date",
			"journal_entries.id as entry_id",
			"journal_entries.entry_number as entry_number",
			"journal_entries.description as description",
			"journal_lines.debit as debit",
			"journal_lines.credit as credit").
		Where("journal_entries.date >= ? AND journal_entries.date <= ?", from, to).
		Order("journal_entries.date asc, journal_entries.id asc, journal_lines.line_number asc")
}

func (s *Service) sumBefore(tenantID string, accountID int64, before time.Time) (sums, error) {
	var result sums
	err := s.postedLines(tenantID, accountID).
		Where("journal_entries.date < ?", before).
		Select("COALESCE(SUM(journal_lines.debit), 0) as debit, COALESCE(SUM(journal_lines.credit), 0) as credit").
		Scan(&result).Error
	return result, err
}

// netBalance applies the account's sign convention to a debit/credit pair.
func netBalance(accountType types.AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if types.DebitNormal(accountType) {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}
