package coa

import "errors"

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrInactiveAccount      = errors.New("account is inactive")
	ErrDuplicateAccountCode = errors.New("account code already exists")
	ErrInvalidSubType       = errors.New("sub type does not belong to account type")
	ErrParentTypeMismatch   = errors.New("child account type must equal parent account type")
	ErrParentNotFound       = errors.New("parent account not found")
	ErrSystemAccount        = errors.New("system accounts cannot be deleted or re-typed")
	ErrHasChildren          = errors.New("account with child accounts cannot be re-typed")
	ErrAccountInUse         = errors.New("account has posted activity")
)
