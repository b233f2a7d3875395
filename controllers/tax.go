package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/haree-hq/haree/controllers/helpers"
	"github.com/haree-hq/haree/services/filing"
	"github.com/haree-hq/haree/services/tax"
)

type TaxController struct {
	Tax     *tax.Service
	Tracker *filing.Tracker
}

func (ct *TaxController) MonthlyWITReturn(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	ret, err := ct.Tax.GenerateMonthlyWITReturn(tenantID, c.Params("period"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(ret)
}

func (ct *TaxController) MonthlyINSSReturn(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	ret, err := ct.Tax.GenerateMonthlyINSSReturn(tenantID, c.Params("period"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(ret)
}

func (ct *TaxController) AnnualWITReturn(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"tax.year.invalid"},
		})
	}

	ret, err := ct.Tax.GenerateAnnualWITReturn(tenantID, year)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(ret)
}

func (ct *TaxController) EmployeeWITCertificate(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"tax.year.invalid"},
		})
	}
	employeeID, err := strconv.ParseInt(c.Params("employee_id"), 10, 64)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"tax.employee.invalid_id"},
		})
	}

	cert, err := ct.Tax.GenerateEmployeeWITCertificate(tenantID, year, employeeID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(cert)
}

func (ct *TaxController) SaveFiling(c *fiber.Ctx) error {
	tenantID, uid, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	errs := new(helpers.Errors)
	payload := new(filing.SaveFilingParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	payload.UserID = uid

	saved, err := ct.Tracker.SaveFiling(tenantID, *payload)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(saved)
}

func (ct *TaxController) MarkAsFiled(c *fiber.Ctx) error {
	tenantID, uid, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"tax.filing.invalid_id"},
		})
	}

	errs := new(helpers.Errors)
	payload := new(filing.MarkAsFiledParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	payload.UserID = uid

	updated, err := ct.Tracker.MarkAsFiled(tenantID, id, *payload)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(updated)
}

func (ct *TaxController) FilingsDueSoon(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	months, _ := strconv.Atoi(c.Query("months", "3"))

	upcoming, err := ct.Tracker.GetFilingsDueSoon(tenantID, months)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(upcoming)
}

func (ct *TaxController) FilingStatusSummary(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	summary, err := ct.Tracker.GetFilingStatusSummary(tenantID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(summary)
}
