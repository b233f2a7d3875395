package models

import (
	"time"

	"github.com/haree-hq/haree/types"
)

type Account struct {
	ID         int64             `json:"id" gorm:"primaryKey"`
	TenantID   string            `json:"tenant_id" gorm:"index:idx_accounts_tenant_code,unique"`
	Code       string            `json:"code" gorm:"index:idx_accounts_tenant_code,unique"`
	Name       string            `json:"name"`
	Type       types.AccountType `json:"type"`
	SubType    string            `json:"sub_type"`
	ParentCode string            `json:"parent_code"`
	Level      int               `json:"level" gorm:"default:0"`
	IsSystem   bool              `json:"is_system" gorm:"default:false"`
	IsActive   bool              `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// DebitNormal reports whether this account's balance grows on the debit side.
func (a *Account) DebitNormal() bool {
	return types.DebitNormal(a.Type)
}

// ValidSubType reports whether the account's sub-type belongs to its type.
func (a *Account) ValidSubType() bool {
	for _, s := range types.SubTypesByType[a.Type] {
		if s == a.SubType {
			return true
		}
	}
	return false
}
