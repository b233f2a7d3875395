// Package coa owns the tenant chart of accounts: hierarchical, typed
// account definitions every other part of the ledger core resolves against.
package coa

import (
	"errors"

	"gorm.io/gorm"

	"github.com/haree-hq/haree/models"
	"github.com/haree-hq/haree/types"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type CreateAccountParams struct {
	Code       string            `json:"code" validate:"required"`
	Name       string            `json:"name" validate:"required"`
	Type       types.AccountType `json:"type" validate:"required"`
	SubType    string            `json:"sub_type" validate:"required"`
	ParentCode string            `json:"parent_code"`
	IsSystem   bool              `json:"is_system"`
}

func (s *Service) CreateAccount(tenantID string, params CreateAccountParams) (*models.Account, error) {
	account := models.Account{
		TenantID:   tenantID,
		Code:       params.Code,
		Name:       params.Name,
		Type:       params.Type,
		SubType:    params.SubType,
		ParentCode: params.ParentCode,
		IsSystem:   params.IsSystem,
		IsActive:   true,
	}

	if !account.ValidSubType() {
		return nil, ErrInvalidSubType
	}

	if params.ParentCode != "" {
		parent, err := s.GetByCode(tenantID, params.ParentCode)
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.Type != params.Type {
			return nil, ErrParentTypeMismatch
		}
		account.Level = parent.Level + 1
	}

	var count int64
	if err := s.DB.Model(&models.Account{}).
		Where("tenant_id = ? AND code = ?", tenantID, params.Code).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateAccountCode
	}

	if err := s.DB.Create(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

type UpdateAccountParams struct {
	Name     *string            `json:"name"`
	SubType  *string            `json:"sub_type"`
	Type     *types.AccountType `json:"type"`
	IsActive *bool              `json:"is_active"`
}

// UpdateAccount patches an account. The code is immutable; system accounts
// reject type and sub-type changes.
func (s *Service) UpdateAccount(tenantID, code string, params UpdateAccountParams) (*models.Account, error) {
	account, err := s.GetByCode(tenantID, code)
	if err != nil {
		return nil, err
	}

	if account.IsSystem && (params.Type != nil || params.SubType != nil) {
		return nil, ErrSystemAccount
	}

	// Re-typing must keep the hierarchy consistent: the new type still has
	// to match the parent, and children would silently diverge.
	if params.Type != nil && *params.Type != account.Type {
		if account.ParentCode != "" {
			parent, err := s.GetByCode(tenantID, account.ParentCode)
			if err != nil {
				return nil, err
			}
			if parent.Type != *params.Type {
				return nil, ErrParentTypeMismatch
			}
		}

		var children int64
		err = s.DB.Model(&models.Account{}).
			Where("tenant_id = ? AND parent_code = ?", tenantID, account.Code).
			Count(&children).Error
		if err != nil {
			return nil, err
		}
		if children > 0 {
			return nil, ErrHasChildren
		}
	}

	if params.Name != nil {
		account.Name = *params.Name
	}
	if params.Type != nil {
		account.Type = *params.Type
	}
	if params.SubType != nil {
		account.SubType = *params.SubType
	}
	if params.IsActive != nil {
		account.IsActive = *params.IsActive
	}

	if !account.ValidSubType() {
		return nil, ErrInvalidSubType
	}

	if err := s.DB.Save(account).Error; err != nil {
		return nil, err
	}

	return account, nil
}

// DeleteAccount soft-deletes by deactivating. System accounts and accounts
// with posted activity are protected.
func (s *Service) DeleteAccount(tenantID, code string) error {
	account, err := s.GetByCode(tenantID, code)
	if err != nil {
		return err
	}

	if account.IsSystem {
		return ErrSystemAccount
	}

	var used int64
	err = s.DB.Model(&models.JournalLine{}).
		Joins("JOIN journal_entries ON journal_entries.id = journal_lines.entry_id").
		Where("journal_lines.account_id = ? AND journal_entries.posted_at IS NOT NULL", account.ID).
		Count(&used).Error
	if err != nil {
		return err
	}
	if used > 0 {
		return ErrAccountInUse
	}

	return s.DB.Model(account).Update("is_active", false).Error
}

type ListFilter struct {
	Type       types.AccountType `query:"type"`
	ActiveOnly bool              `query:"active_only"`
}

func (s *Service) ListAccounts(tenantID string, filter ListFilter) ([]models.Account, error) {
	tx := s.DB.Where("tenant_id = ?", tenantID).Order("code asc")

	if len(filter.Type) > 0 {
		tx = tx.Where("type = ?", filter.Type)
	}
	if filter.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}

	var accounts []models.Account
	if err := tx.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (s *Service) GetByCode(tenantID, code string) (*models.Account, error) {
	var account models.Account
	err := s.DB.Where("tenant_id = ? AND code = ?", tenantID, code).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Service) GetByID(tenantID string, id int64) (*models.Account, error) {
	var account models.Account
	err := s.DB.Where("tenant_id = ? AND id = ?", tenantID, id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ResolveActive returns the account for a code if it exists and is active.
func (s *Service) ResolveActive(tenantID, code string) (*models.Account, error) {
	account, err := s.GetByCode(tenantID, code)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrInactiveAccount
	}
	return account, nil
}

// IsInitialized reports whether the tenant has any accounts at all.
func (s *Service) IsInitialized(tenantID string) (bool, error) {
	var count int64
	if err := s.DB.Model(&models.Account{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// InitializeDefaults seeds the standard chart. Re-running is additive only:
// codes that already exist are left untouched, so the call is idempotent.
func (s *Service) InitializeDefaults(tenantID string) (int, error) {
	existing := make(map[string]bool)

	var codes []string
	if err := s.DB.Model(&models.Account{}).Where("tenant_id = ?", tenantID).Pluck("code", &codes).Error; err != nil {
		return 0, err
	}
	for _, c := range codes {
		existing[c] = true
	}

	created := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, account := range DefaultChart(tenantID) {
			if existing[account.Code] {
				continue
			}
			account := account
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}
