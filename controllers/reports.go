package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/haree-hq/haree/controllers/helpers"
	"github.com/haree-hq/haree/services/reporting"
)

type ReportsController struct {
	Reports *reporting.Service
}

func (ct *ReportsController) TrialBalance(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	asOf, fiscalYear, err := reportDateParams(c, "as_of")
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"reports.query.invalid"},
		})
	}

	report, err := ct.Reports.GenerateTrialBalance(tenantID, asOf, fiscalYear)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(report)
}

func (ct *ReportsController) IncomeStatement(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"reports.query.invalid"},
		})
	}
	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"reports.query.invalid"},
		})
	}
	fiscalYear, _ := strconv.Atoi(c.Query("fiscal_year", strconv.Itoa(to.Year())))

	report, err := ct.Reports.GenerateIncomeStatement(tenantID, from, to, fiscalYear)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(report)
}

func (ct *ReportsController) BalanceSheet(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	asOf, fiscalYear, err := reportDateParams(c, "as_of")
	if err != nil {
		return c.Status(422).JSON(helpers.Errors{
			Errors: []string{"reports.query.invalid"},
		})
	}

	report, err := ct.Reports.GenerateBalanceSheet(tenantID, asOf, fiscalYear)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(report)
}

func reportDateParams(c *fiber.Ctx, name string) (time.Time, int, error) {
	asOf, err := time.Parse(dateLayout, c.Query(name))
	if err != nil {
		return time.Time{}, 0, err
	}
	fiscalYear, _ := strconv.Atoi(c.Query("fiscal_year", strconv.Itoa(asOf.Year())))
	return asOf, fiscalYear, nil
}
