package models

// EntrySequence is the per-tenant, per-fiscal-year counter behind journal
// entry numbers. It is only ever touched through an atomic upsert-increment
// inside the transaction that creates the entry, so two concurrent creators
// can never observe the same value.
type EntrySequence struct {
	ID         int64  `json:"id" gorm:"primaryKey"`
	TenantID   string `json:"tenant_id" gorm:"uniqueIndex:idx_entry_sequences_tenant_year"`
	FiscalYear int    `json:"fiscal_year" gorm:"uniqueIndex:idx_entry_sequences_tenant_year"`
	NextNumber int64  `json:"next_number" gorm:"default:0"`
}

func (EntrySequence) TableName() string {
	return "entry_sequences"
}
