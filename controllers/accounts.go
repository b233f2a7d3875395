package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/haree-hq/haree/controllers/helpers"
	"github.com/haree-hq/haree/services/coa"
)

type AccountsController struct {
	Accounts *coa.Service
}

func (ct *AccountsController) List(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	filter := new(coa.ListFilter)
	if err := c.QueryParser(filter); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_query"},
		})
	}

	accounts, err := ct.Accounts.ListAccounts(tenantID, *filter)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(accounts)
}

func (ct *AccountsController) Create(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	errs := new(helpers.Errors)
	payload := new(coa.CreateAccountParams)

	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	helpers.Validate(payload, errs)
	if errs.Size() > 0 {
		return c.Status(422).JSON(errs)
	}

	account, err := ct.Accounts.CreateAccount(tenantID, *payload)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(account)
}

func (ct *AccountsController) Update(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	payload := new(coa.UpdateAccountParams)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(500).JSON(helpers.Errors{
			Errors: []string{"server.method.invalid_message_body"},
		})
	}

	account, err := ct.Accounts.UpdateAccount(tenantID, c.Params("code"), *payload)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(200).JSON(account)
}

func (ct *AccountsController) Delete(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	if err := ct.Accounts.DeleteAccount(tenantID, c.Params("code")); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(204)
}

func (ct *AccountsController) InitializeDefaults(c *fiber.Ctx) error {
	tenantID, _, ok := CurrentTenant(c)
	if !ok {
		return unauthenticated(c)
	}

	created, err := ct.Accounts.InitializeDefaults(tenantID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"created": created})
}
