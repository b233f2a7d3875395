package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null"
	"gorm.io/gorm"

	"github.com/haree-hq/haree/types"
)

type TaxFiling struct {
	ID                int64              `json:"id" gorm:"primaryKey"`
	UUID              uuid.UUID          `json:"uuid" gorm:"type:uuid"`
	TenantID          string             `json:"tenant_id" gorm:"uniqueIndex:idx_filings_tenant_type_period"`
	Type              types.FilingType   `json:"type" gorm:"uniqueIndex:idx_filings_tenant_type_period"`
	Period            string             `json:"period" gorm:"uniqueIndex:idx_filings_tenant_type_period"`
	Status            types.FilingStatus `json:"status" gorm:"index"`
	DueDate           time.Time          `json:"due_date"`
	DataSnapshot      []byte             `json:"data_snapshot"`
	EmployeeCount     int                `json:"employee_count" gorm:"default:0"`
	TotalWages        decimal.Decimal    `json:"total_wages" gorm:"type:numeric;default:0"`
	TotalWIT          decimal.Decimal    `json:"total_wit" gorm:"type:numeric;default:0"`
	TotalINSSEmployee decimal.Decimal    `json:"total_inss_employee" gorm:"type:numeric;default:0"`
	TotalINSSEmployer decimal.Decimal    `json:"total_inss_employer" gorm:"type:numeric;default:0"`
	GeneratedBy       string             `json:"generated_by"`
	FiledDate         null.Time          `json:"filed_date" gorm:"type:timestamp"`
	FiledBy           null.String        `json:"filed_by" gorm:"type:text"`
	SubmissionMethod  null.String        `json:"submission_method" gorm:"type:text"`
	ReceiptNumber     null.String        `json:"receipt_number" gorm:"type:text"`
	Notes             null.String        `json:"notes" gorm:"type:text"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

func (TaxFiling) TableName() string {
	return "tax_filings"
}

func (f *TaxFiling) BeforeCreate(tx *gorm.DB) error {
	if f.UUID == uuid.Nil {
		f.UUID = uuid.New()
	}
	return nil
}
