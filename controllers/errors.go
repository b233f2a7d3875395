package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/haree-hq/haree/config"
	"github.com/haree-hq/haree/controllers/helpers"
	"github.com/haree-hq/haree/services/coa"
	"github.com/haree-hq/haree/services/filing"
	"github.com/haree-hq/haree/services/fiscal"
	"github.com/haree-hq/haree/services/ledger"
	"github.com/haree-hq/haree/services/tax"
)

type errorCode struct {
	status int
	code   string
}

var serviceErrors = []struct {
	err error
	errorCode
}{
	{coa.ErrAccountNotFound, errorCode{404, "ledger.account.not_found"}},
	{coa.ErrInactiveAccount, errorCode{422, "ledger.account.inactive"}},
	{coa.ErrDuplicateAccountCode, errorCode{422, "ledger.account.duplicate_code"}},
	{coa.ErrInvalidSubType, errorCode{422, "ledger.account.invalid_sub_type"}},
	{coa.ErrParentTypeMismatch, errorCode{422, "ledger.account.parent_type_mismatch"}},
	{coa.ErrParentNotFound, errorCode{422, "ledger.account.parent_not_found"}},
	{coa.ErrSystemAccount, errorCode{422, "ledger.account.system_protected"}},
	{coa.ErrAccountInUse, errorCode{422, "ledger.account.in_use"}},
	{coa.ErrHasChildren, errorCode{422, "ledger.account.has_children"}},
	{ledger.ErrUnbalancedEntry, errorCode{422, "ledger.entry.unbalanced"}},
	{ledger.ErrTooFewLines, errorCode{422, "ledger.entry.too_few_lines"}},
	{ledger.ErrInvalidLine, errorCode{422, "ledger.entry.invalid_line"}},
	{ledger.ErrEntryNotFound, errorCode{404, "ledger.entry.not_found"}},
	{ledger.ErrInvalidOrderBy, errorCode{422, "ledger.query.invalid_order_by"}},
	{ledger.ErrNotDraft, errorCode{422, "ledger.entry.not_draft"}},
	{ledger.ErrAlreadyVoid, errorCode{422, "ledger.entry.already_void"}},
	{ledger.ErrVoidDraftOnly, errorCode{422, "ledger.entry.void_rejected"}},
	{ledger.ErrOpeningAlreadyPosted, errorCode{422, "ledger.opening_balances.already_posted"}},
	{fiscal.ErrPeriodClosed, errorCode{422, "fiscal.period.closed"}},
	{fiscal.ErrPeriodLocked, errorCode{422, "fiscal.period.locked"}},
	{fiscal.ErrInvalidPeriodTransition, errorCode{422, "fiscal.period.invalid_transition"}},
	{fiscal.ErrPeriodNotFound, errorCode{404, "fiscal.period.not_found"}},
	{fiscal.ErrNoPeriodForDate, errorCode{422, "fiscal.period.none_for_date"}},
	{fiscal.ErrFiscalYearNotFound, errorCode{404, "fiscal.year.not_found"}},
	{fiscal.ErrFiscalYearExists, errorCode{422, "fiscal.year.exists"}},
	{filing.ErrFilingNotFound, errorCode{404, "tax.filing.not_found"}},
	{filing.ErrFilingAlreadyFiled, errorCode{422, "tax.filing.already_filed"}},
	{tax.ErrEmployeeNotFound, errorCode{422, "tax.employee.not_found"}},
}

// serviceError translates business-rule failures into the dotted error
// codes the API speaks. Unknown errors are infrastructure faults.
func serviceError(c *fiber.Ctx, err error) error {
	for _, mapping := range serviceErrors {
		if errors.Is(err, mapping.err) {
			return c.Status(mapping.status).JSON(helpers.Errors{
				Errors: []string{mapping.code},
			})
		}
	}

	config.Logger.Errorf("internal error: %v", err)
	return c.Status(500).JSON(helpers.Errors{
		Errors: []string{"server.internal_error"},
	})
}
