// Package ledger implements the double-entry journal: entry creation,
// posting, voiding and the derived per-account general ledger view.
//
// Invariants: every draft or posted entry balances to the cent; posted
// entries are immutable except for the transition to void; voiding never
// deletes, it flags the original and posts a reversing entry into the
// current open period so historical period totals are never rewritten.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/haree-hq/haree/config"
	"github.com/haree-hq/haree/models"
	"github.com/haree-hq/haree/services/audit"
	"github.com/haree-hq/haree/services/coa"
	"github.com/haree-hq/haree/services/fiscal"
	"github.com/haree-hq/haree/types"
)

var hundred = decimal.NewFromInt(100)

type Service struct {
	DB       *gorm.DB
	Accounts *coa.Service
	Periods  *fiscal.Service
	Audit    *audit.Service
}

func NewService(db *gorm.DB, accounts *coa.Service, periods *fiscal.Service, auditSvc *audit.Service) *Service {
	return &Service{DB: db, Accounts: accounts, Periods: periods, Audit: auditSvc}
}

type LineInput struct {
	AccountCode string          `json:"account_code" validate:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

type CreateEntryParams struct {
	Date        time.Time         `json:"date" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Source      types.EntrySource `json:"source"`
	Lines       []LineInput       `json:"lines"`
	CreatedBy   string            `json:"created_by"`
	AutoPost    bool              `json:"auto_post"`
}

// CreateEntry validates and stores a journal entry, draft by default or
// posted immediately when AutoPost is set. The entry number is allocated
// inside the storing transaction via an atomic counter increment.
func (s *Service) CreateEntry(tenantID string, params CreateEntryParams) (*models.JournalEntry, error) {
	entry, lines, err := s.buildEntry(tenantID, params)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.storeEntry(tx, entry, lines, params.AutoPost, params.CreatedBy)
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// buildEntry validates the lines, resolves accounts and finds the fiscal
// period. Nothing is written.
func (s *Service) buildEntry(tenantID string, params CreateEntryParams) (*models.JournalEntry, []models.JournalLine, error) {
	if len(params.Lines) < 2 {
		return nil, nil, ErrTooFewLines
	}
	if params.Source == "" {
		params.Source = types.SourceManual
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	lines := make([]models.JournalLine, 0, len(params.Lines))

	for i, in := range params.Lines {
		if err := validateLine(in); err != nil {
			return nil, nil, err
		}

		account, err := s.Accounts.ResolveActive(tenantID, in.AccountCode)
		if err != nil {
			return nil, nil, err
		}

		lines = append(lines, models.JournalLine{
			LineNumber:  i + 1,
			AccountID:   account.ID,
			AccountCode: account.Code,
			AccountName: account.Name,
			Debit:       in.Debit,
			Credit:      in.Credit,
		})
		totalDebit = totalDebit.Add(in.Debit)
		totalCredit = totalCredit.Add(in.Credit)
	}

	if !totalDebit.Equal(totalCredit) {
		return nil, nil, ErrUnbalancedEntry
	}

	fiscalYear, err := s.Periods.GetYear(tenantID, params.Date.Year())
	if err != nil {
		return nil, nil, err
	}
	period, err := s.Periods.PeriodForDate(tenantID, params.Date)
	if err != nil {
		return nil, nil, err
	}

	entry := &models.JournalEntry{
		TenantID:       tenantID,
		Date:           params.Date,
		Description:    params.Description,
		Source:         params.Source,
		Status:         types.EntryDraft,
		FiscalYearID:   fiscalYear.ID,
		FiscalPeriodID: period.ID,
		TotalDebit:     totalDebit,
		TotalCredit:    totalCredit,
		CreatedBy:      params.CreatedBy,
	}
	return entry, lines, nil
}

// storeEntry allocates the entry number and writes the entry and its lines
// in the caller's transaction.
func (s *Service) storeEntry(tx *gorm.DB, entry *models.JournalEntry, lines []models.JournalLine, autoPost bool, postedBy string) error {
	year := entry.Date.Year()
	number, err := nextEntryNumber(tx, entry.TenantID, year)
	if err != nil {
		return err
	}
	entry.EntryNumber = fmt.Sprintf("JE-%d-%06d", year, number)

	if autoPost {
		// Re-read the period inside the transaction; a close racing with
		// this create must win or lose atomically.
		current, err := periodInTx(tx, entry.TenantID, entry.FiscalPeriodID)
		if err != nil {
			return err
		}
		if err := fiscal.StatusError(current.Status); err != nil {
			return err
		}
		entry.Status = types.EntryPosted
		entry.PostedBy = null.StringFrom(postedBy)
		entry.PostedAt = null.TimeFrom(time.Now())
	}

	if err := tx.Create(entry).Error; err != nil {
		return err
	}

	for i := range lines {
		lines[i].EntryID = entry.ID
		if err := tx.Create(&lines[i]).Error; err != nil {
			return err
		}
	}
	entry.Lines = lines
	return nil
}

// PostEntry transitions a draft to posted. The owning period's status is
// verified in the same transaction that flips the entry, not from a stale
// read.
func (s *Service) PostEntry(tenantID string, entryID int64, postedBy string) (*models.JournalEntry, error) {
	var entry *models.JournalEntry

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = entryInTx(tx, tenantID, entryID)
		if err != nil {
			return err
		}
		if entry.Status != types.EntryDraft {
			if entry.Status == types.EntryVoid {
				return ErrAlreadyVoid
			}
			return ErrNotDraft
		}

		period, err := periodInTx(tx, tenantID, entry.FiscalPeriodID)
		if err != nil {
			return err
		}
		if err := fiscal.StatusError(period.Status); err != nil {
			return err
		}

		entry.Status = types.EntryPosted
		entry.PostedBy = null.StringFrom(postedBy)
		entry.PostedAt = null.TimeFrom(time.Now())
		return tx.Model(entry).Updates(map[string]interface{}{
			"status":    entry.Status,
			"posted_by": entry.PostedBy,
			"posted_at": entry.PostedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// VoidEntry flags the entry void and, when it was posted, creates a
// reversing entry with swapped debit/credit columns posted into the current
// open period. The original period's totals are never altered retroactively.
func (s *Service) VoidEntry(tenantID string, entryID int64, reason, voidedBy string) (*models.JournalEntry, error) {
	entry, err := s.GetEntry(tenantID, entryID)
	if err != nil {
		return nil, err
	}

	switch entry.Status {
	case types.EntryVoid:
		return nil, ErrAlreadyVoid
	case types.EntryDraft, types.EntryPosted:
	default:
		return nil, ErrVoidDraftOnly
	}

	originalPeriod, err := s.Periods.GetPeriod(tenantID, entry.FiscalPeriodID)
	if err != nil {
		return nil, err
	}
	if originalPeriod.Status == types.PeriodLocked {
		return nil, fiscal.ErrPeriodLocked
	}

	// A draft never reached the general ledger; flagging it void is enough.
	if entry.Status == types.EntryDraft {
		err = s.markVoid(s.DB, entry, reason, voidedBy, null.Int64{})
		if err != nil {
			return nil, err
		}
		return nil, nil
	}

	now := time.Now()
	reversalYear, err := s.Periods.GetYear(tenantID, now.Year())
	if err != nil {
		return nil, err
	}
	reversalPeriod, err := s.Periods.PeriodForDate(tenantID, now)
	if err != nil {
		return nil, err
	}

	reversal := models.JournalEntry{
		TenantID:       tenantID,
		Date:           now,
		Description:    "Reversal of " + entry.EntryNumber + ": " + reason,
		Source:         types.SourceReversal,
		Status:         types.EntryPosted,
		FiscalYearID:   reversalYear.ID,
		FiscalPeriodID: reversalPeriod.ID,
		TotalDebit:     entry.TotalCredit,
		TotalCredit:    entry.TotalDebit,
		CreatedBy:      voidedBy,
		PostedBy:       null.StringFrom(voidedBy),
		PostedAt:       null.TimeFrom(now),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		current, err := periodInTx(tx, tenantID, reversalPeriod.ID)
		if err != nil {
			return err
		}
		if err := fiscal.StatusError(current.Status); err != nil {
			return err
		}

		number, err := nextEntryNumber(tx, tenantID, reversalYear.Year)
		if err != nil {
			return err
		}
		reversal.EntryNumber = fmt.Sprintf("JE-%d-%06d", reversalYear.Year, number)

		if err := tx.Create(&reversal).Error; err != nil {
			return err
		}
		for _, line := range entry.Lines {
			swapped := models.JournalLine{
				EntryID:     reversal.ID,
				LineNumber:  line.LineNumber,
				AccountID:   line.AccountID,
				AccountCode: line.AccountCode,
				AccountName: line.AccountName,
				Debit:       line.Credit,
				Credit:      line.Debit,
			}
			if err := tx.Create(&swapped).Error; err != nil {
				return err
			}
		}

		return s.markVoid(tx, entry, reason, voidedBy, null.Int64From(reversal.ID))
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Log(tenantID, "ledger.entry.void", entry.EntryNumber, map[string]interface{}{
		"reason":   reason,
		"reversal": reversal.EntryNumber,
	}, "info")

	return &reversal, nil
}

// markVoid flips the entry to void guarded on the status it was read at.
// Zero rows affected means another request got there first; the caller's
// transaction rolls back, so a racing void never posts a second reversal.
func (s *Service) markVoid(tx *gorm.DB, entry *models.JournalEntry, reason, voidedBy string, reversalID null.Int64) error {
	res := tx.Model(&models.JournalEntry{}).
		Where("id = ? AND tenant_id = ? AND status = ?", entry.ID, entry.TenantID, entry.Status).
		Updates(map[string]interface{}{
			"status":            types.EntryVoid,
			"voided_by":         null.StringFrom(voidedBy),
			"voided_at":         null.TimeFrom(time.Now()),
			"void_reason":       null.StringFrom(reason),
			"reversal_entry_id": reversalID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyVoid
	}
	return nil
}

func (s *Service) GetEntry(tenantID string, entryID int64) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := s.DB.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_number asc")
	}).Where("id = ? AND tenant_id = ?", entryID, tenantID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type EntryFilter struct {
	Status  types.EntryStatus `query:"status"`
	Source  types.EntrySource `query:"source"`
	From    time.Time         `query:"from"`
	To      time.Time         `query:"to"`
	OrderBy types.OrderBy     `query:"order_by"`
}

func (s *Service) ListEntries(tenantID string, filter EntryFilter) ([]models.JournalEntry, error) {
	// OrderBy is interpolated into the ORDER BY clause, so only the two
	// known directions may pass.
	switch filter.OrderBy {
	case "":
		filter.OrderBy = types.OrderByDesc
	case types.OrderByAsc, types.OrderByDesc:
	default:
		return nil, ErrInvalidOrderBy
	}

	tx := s.DB.Where("tenant_id = ?", tenantID).Order("date " + filter.OrderBy)

	if len(filter.Status) > 0 {
		tx = tx.Where("status = ?", filter.Status)
	}
	if len(filter.Source) > 0 {
		tx = tx.Where("source = ?", filter.Source)
	}
	if !filter.From.IsZero() {
		tx = tx.Where("date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		tx = tx.Where("date <= ?", filter.To)
	}

	var entries []models.JournalEntry
	if err := tx.Preload("Lines").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// PostOpeningBalances posts the one-off opening entry for a fiscal year.
// The given lines carry the opening asset/liability/equity balances; any
// imbalance lands on the Opening Balance Equity account. Runs once per year.
func (s *Service) PostOpeningBalances(tenantID string, year int, lines []LineInput, createdBy string) (*models.JournalEntry, error) {
	fiscalYear, err := s.Periods.GetYear(tenantID, year)
	if err != nil {
		return nil, err
	}
	if fiscalYear.OpeningBalancesPosted {
		return nil, ErrOpeningAlreadyPosted
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, in := range lines {
		if err := validateLine(in); err != nil {
			return nil, err
		}
		totalDebit = totalDebit.Add(in.Debit)
		totalCredit = totalCredit.Add(in.Credit)
	}

	if diff := totalDebit.Sub(totalCredit); !diff.IsZero() {
		balancing := LineInput{AccountCode: coa.CodeOpeningBalance}
		if diff.IsPositive() {
			balancing.Credit = diff
		} else {
			balancing.Debit = diff.Neg()
		}
		lines = append(lines, balancing)
	}

	entry, entryLines, err := s.buildEntry(tenantID, CreateEntryParams{
		Date:        time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		Description: fmt.Sprintf("Opening balances %d", year),
		Source:      types.SourceOpening,
		Lines:       lines,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return nil, err
	}

	// Claiming the flag and posting the entry commit or roll back together;
	// the guarded update makes the second of two concurrent runs lose.
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FiscalYear{}).
			Where("id = ? AND opening_balances_posted = ?", fiscalYear.ID, false).
			Update("opening_balances_posted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOpeningAlreadyPosted
		}

		if err := s.storeEntry(tx, entry, entryLines, true, createdBy); err != nil {
			return err
		}

		return tx.Model(&models.FiscalYear{}).
			Where("id = ?", fiscalYear.ID).
			Update("opening_balance_entry_id", null.Int64From(entry.ID)).Error
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func validateLine(in LineInput) error {
	hasDebit := !in.Debit.IsZero()
	hasCredit := !in.Credit.IsZero()
	if hasDebit == hasCredit {
		return ErrInvalidLine
	}
	if in.Debit.IsNegative() || in.Credit.IsNegative() {
		return ErrInvalidLine
	}
	if !in.Debit.Mul(hundred).Equal(in.Debit.Mul(hundred).Floor()) {
		return ErrInvalidLine
	}
	if !in.Credit.Mul(hundred).Equal(in.Credit.Mul(hundred).Floor()) {
		return ErrInvalidLine
	}
	return nil
}

// nextEntryNumber increments the per-tenant per-year counter and returns the
// new value. The upsert-increment is a single statement, so concurrent
// transactions serialize on the counter row and never share a number.
func nextEntryNumber(tx *gorm.DB, tenantID string, year int) (int64, error) {
	seq := models.EntrySequence{TenantID: tenantID, FiscalYear: year, NextNumber: 1}

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "fiscal_year"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"next_number": gorm.Expr("entry_sequences.next_number + 1"),
		}),
	}).Create(&seq).Error
	if err != nil {
		return 0, err
	}

	var current models.EntrySequence
	err = tx.Where("tenant_id = ? AND fiscal_year = ?", tenantID, year).First(&current).Error
	if err != nil {
		return 0, err
	}
	return current.NextNumber, nil
}

func entryInTx(tx *gorm.DB, tenantID string, entryID int64) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := tx.Where("id = ? AND tenant_id = ?", entryID, tenantID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func periodInTx(tx *gorm.DB, tenantID string, periodID int64) (*models.FiscalPeriod, error) {
	var period models.FiscalPeriod
	err := tx.Where("id = ? AND tenant_id = ?", periodID, tenantID).First(&period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiscal.ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// --- best-effort invoice integrations ---

type InvoiceData struct {
	InvoiceID     string
	InvoiceNumber string
	Date          time.Time
	Amount        decimal.Decimal
	CustomerName  string
	CreatedBy     string
}

// CreateFromInvoice posts Dr Accounts Receivable / Cr Sales Revenue for a
// sent invoice. The integration is best-effort: when the tenant has no
// chart of accounts yet the posting is skipped, and a caller must never
// fail its primary operation on a non-nil error from here; failures are
// already logged and counted for drift detection.
func (s *Service) CreateFromInvoice(tenantID string, inv InvoiceData) (*models.JournalEntry, error) {
	return s.invoiceEntry(tenantID, inv, "invoice.create",
		"Invoice "+inv.InvoiceNumber+" - "+inv.CustomerName,
		coa.CodeAccountsReceivable, coa.CodeSalesRevenue)
}

// CreateFromInvoicePayment posts Dr Bank / Cr Accounts Receivable for a
// received invoice payment. Same best-effort contract as CreateFromInvoice.
func (s *Service) CreateFromInvoicePayment(tenantID string, inv InvoiceData) (*models.JournalEntry, error) {
	return s.invoiceEntry(tenantID, inv, "invoice.payment",
		"Payment for invoice "+inv.InvoiceNumber+" - "+inv.CustomerName,
		coa.CodeBank, coa.CodeAccountsReceivable)
}

func (s *Service) invoiceEntry(tenantID string, inv InvoiceData, operation, description, debitCode, creditCode string) (*models.JournalEntry, error) {
	initialized, err := s.Accounts.IsInitialized(tenantID)
	if err != nil {
		s.Audit.SideEffectFailure(tenantID, operation, err)
		return nil, err
	}
	if !initialized {
		config.Logger.WithField("tenant_id", tenantID).
			WithField("invoice", inv.InvoiceNumber).
			Warn("skipping ledger posting: chart of accounts not initialized")
		return nil, nil
	}

	entry, err := s.CreateEntry(tenantID, CreateEntryParams{
		Date:        inv.Date,
		Description: description,
		Source:      types.SourceInvoice,
		Lines: []LineInput{
			{AccountCode: debitCode, Debit: inv.Amount},
			{AccountCode: creditCode, Credit: inv.Amount},
		},
		CreatedBy: inv.CreatedBy,
		AutoPost:  true,
	})
	if err != nil {
		s.Audit.SideEffectFailure(tenantID, operation, err)
		return nil, err
	}

	return entry, nil
}
