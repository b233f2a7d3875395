package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/haree-hq/haree/config"
	"github.com/haree-hq/haree/controllers"
	"github.com/haree-hq/haree/routes/middlewares"
	"github.com/haree-hq/haree/services/audit"
	"github.com/haree-hq/haree/services/coa"
	"github.com/haree-hq/haree/services/filing"
	"github.com/haree-hq/haree/services/fiscal"
	"github.com/haree-hq/haree/services/ledger"
	"github.com/haree-hq/haree/services/reporting"
	"github.com/haree-hq/haree/services/tax"
)

func SetupRouter(db *gorm.DB) *fiber.App {
	auditSvc := audit.NewService(config.InfluxDB)
	accounts := coa.NewService(db)
	periods := fiscal.NewService(db)
	ledgerSvc := ledger.NewService(db, accounts, periods, auditSvc)
	reports := reporting.NewService(db)
	taxSvc := tax.NewService(db)
	tracker := filing.NewTracker(db, auditSvc)

	accountsController := &controllers.AccountsController{Accounts: accounts}
	ledgerController := &controllers.LedgerController{Ledger: ledgerSvc}
	fiscalController := &controllers.FiscalController{Periods: periods}
	reportsController := &controllers.ReportsController{Reports: reports}
	taxController := &controllers.TaxController{Tax: taxSvc, Tracker: tracker}

	app := fiber.New()

	api := app.Group("/api/v2", middlewares.Authenticate)

	api.Get("/accounts", accountsController.List)
	api.Post("/accounts", accountsController.Create)
	api.Post("/accounts/defaults", accountsController.InitializeDefaults)
	api.Put("/accounts/:code", accountsController.Update)
	api.Delete("/accounts/:code", accountsController.Delete)

	api.Get("/ledger/entries", ledgerController.ListEntries)
	api.Post("/ledger/entries", ledgerController.CreateEntry)
	api.Get("/ledger/entries/:id", ledgerController.GetEntry)
	api.Post("/ledger/entries/:id/post", ledgerController.PostEntry)
	api.Post("/ledger/entries/:id/void", ledgerController.VoidEntry)
	api.Get("/ledger/accounts/:id/entries", ledgerController.GetAccountLedger)
	api.Post("/ledger/opening-balances", ledgerController.PostOpeningBalances)

	api.Post("/fiscal/years", fiscalController.CreateFiscalYear)
	api.Get("/fiscal/years/:year/periods", fiscalController.ListPeriods)
	api.Post("/fiscal/periods/:id/close", fiscalController.ClosePeriod)
	api.Post("/fiscal/periods/:id/reopen", fiscalController.ReopenPeriod)
	api.Post("/fiscal/periods/:id/lock", fiscalController.LockPeriod)

	api.Get("/reports/trial-balance", reportsController.TrialBalance)
	api.Get("/reports/income-statement", reportsController.IncomeStatement)
	api.Get("/reports/balance-sheet", reportsController.BalanceSheet)

	api.Get("/tax/wit/monthly/:period", taxController.MonthlyWITReturn)
	api.Get("/tax/inss/monthly/:period", taxController.MonthlyINSSReturn)
	api.Get("/tax/wit/annual/:year", taxController.AnnualWITReturn)
	api.Get("/tax/wit/certificates/:year/:employee_id", taxController.EmployeeWITCertificate)
	api.Post("/tax/filings", taxController.SaveFiling)
	api.Post("/tax/filings/:id/filed", taxController.MarkAsFiled)
	api.Get("/tax/filings/due-soon", taxController.FilingsDueSoon)
	api.Get("/tax/filings/summary", taxController.FilingStatusSummary)

	return app
}
