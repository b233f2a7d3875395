package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/haree-hq/haree/controllers/helpers"
	"github.com/haree-hq/haree/services/ledger"
	"github.com/haree-hq/haree/types"
)

const dateLayout = "2006-01-02"

type LedgerController struct {
	Ledger *ledger.Service
}

type createEntryPayload struct {
	Date        string             `json:"date" validate:"required"`
	Description string             `json:"description" validate:"required"`
	Source      types.EntrySource  `json:"source"`
	Lines       []ledger.LineInput `json:"lines"`
	AutoPost    bool               `json:"auto_post"`
}

func (ct *LedgerController) CreateEntry(c *fiber.Ctx) error {
	tenantID, uid, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	errs := new(helpers.Errors)
	payload := new(createEntryPayload)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	date, err := time.Parse(dateLayout, payload.Date)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.entry.invalid_date"},
		})
	}

	entry, err := ct.Ledger.CreateEntry(tenantID, ledger.CreateEntryParams{
		Date:        date,
		Description: payload.Description,
		Source:      payload.Source,
		Lines:       payload.Lines,
		CreatedBy:   uid,
		AutoPost:    payload.AutoPost,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(entry)
}

func (ct *LedgerController) GetEntry(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.entry.invalid_id"},
		})
	}

	entry, err := ct.Ledger.GetEntry(tenantID, id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(entry)
}

func (ct *LedgerController) ListEntries(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	filter := new(ledger.EntryFilter)
	if err := c.QueryParser(filter); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_query"},
		})
	}

	entries, err := ct.Ledger.ListEntries(tenantID, *filter)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(entries)
}

func (ct *LedgerController) PostEntry(c *fiber.Ctx) error {
	tenantID, uid, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.entry.invalid_id"},
		})
	}

	entry, err := ct.Ledger.PostEntry(tenantID, id, uid)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(entry)
}

type voidEntryPayload struct {
	Reason string `json:"reason" validate:"required"`
}

func (ct *LedgerController) VoidEntry(c *fiber.Ctx) error {
	tenantID, uid, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	errs := new(helpers.Errors)
	payload := new(voidEntryPayload)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.entry.invalid_id"},
		})
	}

	reversal, err := ct.Ledger.VoidEntry(tenantID, id, payload.Reason, uid)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(fiber.Map{"reversal": reversal})
}

func (ct *LedgerController) GetAccountLedger(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	accountID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.account.invalid_id"},
		})
	}

	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.query.invalid_from"},
		})
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"ledger.query.invalid_to"},
		})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	perPage, _ := strconv.Atoi(c.Query("per_page", "100"))

	result, err := ct.Ledger.GetEntriesForAccount(tenantID, accountID, from, to, page, perPage)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(result)
}

type openingBalancesPayload struct {
	Year  int                `json:"year" validate:"required"`
	Lines []ledger.LineInput `json:"lines"`
}

func (ct *LedgerController) PostOpeningBalances(c *fiber.Ctx) error {
	tenantID, uid, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	errs := new(helpers.Errors)
	payload := new(openingBalancesPayload)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	entry, err := ct.Ledger.PostOpeningBalances(tenantID, payload.Year, payload.Lines, uid)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(entry)
}
