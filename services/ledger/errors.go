package ledger

import "errors"

var (
	ErrUnbalancedEntry      = errors.New("entry is not balanced")
	ErrTooFewLines          = errors.New("entry needs at least two lines")
	ErrInvalidLine          = errors.New("line must carry exactly one of debit or credit, non-negative, max 2 decimal places")
	ErrEntryNotFound        = errors.New("journal entry not found")
	ErrInvalidOrderBy       = errors.New("order_by must be asc or desc")
	ErrNotDraft             = errors.New("entry is not a draft")
	ErrAlreadyVoid          = errors.New("entry is already void")
	ErrVoidDraftOnly        = errors.New("only draft or posted entries can be voided")
	ErrOpeningAlreadyPosted = errors.New("opening balances already posted for fiscal year")
)
