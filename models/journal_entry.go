package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/haree-hq/haree/types"
)

type JournalEntry struct {
	ID              int64             `json:"id" gorm:"primaryKey"`
	UUID            uuid.UUID         `json:"uuid" gorm:"type:uuid"`
	TenantID        string            `json:"tenant_id" gorm:"index:idx_entries_tenant_number,unique"`
	EntryNumber     string            `json:"entry_number" gorm:"index:idx_entries_tenant_number,unique"`
	Date            time.Time         `json:"date" gorm:"index"`
	Description     string            `json:"description"`
	Source          types.EntrySource `json:"source"`
	Status          types.EntryStatus `json:"status" gorm:"index"`
	FiscalYearID    int64             `json:"fiscal_year_id"`
	FiscalPeriodID  int64             `json:"fiscal_period_id"`
	TotalDebit      decimal.Decimal   `json:"total_debit" gorm:"type:numeric;default:0"`
	TotalCredit     decimal.Decimal   `json:"total_credit" gorm:"type:numeric;default:0"`
	CreatedBy       string            `json:"created_by"`
	PostedBy        null.String       `json:"posted_by" gorm:"type:text"`
	PostedAt        null.Time         `json:"posted_at" gorm:"type:timestamp"`
	VoidedBy        null.String       `json:"voided_by" gorm:"type:text"`
	VoidedAt        null.Time         `json:"voided_at" gorm:"type:timestamp"`
	VoidReason      null.String       `json:"void_reason" gorm:"type:text"`
	ReversalEntryID null.Int64        `json:"reversal_entry_id" gorm:"type:bigint"`
	Lines           []JournalLine     `json:"lines" gorm:"foreignKey:EntryID"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (JournalEntry) TableName() string {
	return "journal_entries"
}

func (e *JournalEntry) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == uuid.Nil {
		e.UUID = uuid.New()
	}
	return nil
}

// JournalLine is one side of a journal entry. Lines have no lifecycle of
// their own; they are written and read through their owning entry.
type JournalLine struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	EntryID     int64           `json:"entry_id" gorm:"index"`
	LineNumber  int             `json:"line_number"`
	AccountID   int64           `json:"account_id" gorm:"index"`
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Debit       decimal.Decimal `json:"debit" gorm:"type:numeric;default:0"`
	Credit      decimal.Decimal `json:"credit" gorm:"type:numeric;default:0"`
}

func (JournalLine) TableName() string {
	return "journal_lines"
}
