package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/haree-hq/haree/controllers/helpers"
	"github.com/haree-hq/haree/services/fiscal"
)

type FiscalController struct {
	Periods *fiscal.Service
}

type createFiscalYearPayload struct {
	Year int `json:"year" validate:"required"`
}

func (ct *FiscalController) CreateFiscalYear(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	errs := new(helpers.Errors)
	payload := new(createFiscalYearPayload)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	year, err := ct.Periods.CreateFiscalYear(tenantID, payload.Year)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(year)
}

func (ct *FiscalController) ListPeriods(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"fiscal.year.invalid"},
		})
	}

	fiscalYear, err := ct.Periods.GetYear(tenantID, year)
	if err != nil {
		return serviceError(c, err)
	}

	periods, err := ct.Periods.ListPeriods(tenantID, fiscalYear.ID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(fiber.Map{
		"fiscal_year": fiscalYear,
		"periods":     periods,
	})
}

func (ct *FiscalController) ClosePeriod(c *fiber.Ctx) error {
	return ct.transition(c, "close")
}

func (ct *FiscalController) ReopenPeriod(c *fiber.Ctx) error {
	return ct.transition(c, "reopen")
}

func (ct *FiscalController) LockPeriod(c *fiber.Ctx) error {
	return ct.transition(c, "lock")
}

func (ct *FiscalController) transition(c *fiber.Ctx, action string) error {
	tenantID, uid, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"fiscal.period.invalid_id"},
		})
	}

	switch action {
	case "close":
		err = ct.Periods.ClosePeriod(tenantID, id, uid)
	case "reopen":
		err = ct.Periods.ReopenPeriod(tenantID, id, uid)
	case "lock":
		err = ct.Periods.LockPeriod(tenantID, id, uid)
	}
	if err != nil {
		return serviceError(c, err)
	}

	period, err := ct.Periods.GetPeriod(tenantID, id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(period)
}
