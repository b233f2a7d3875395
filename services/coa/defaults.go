package coa

import (
	_ "embed"

	yaml "gopkg.in/yaml.v2"

	"github.com/haree-hq/haree/models"
	"github.com/haree-hq/haree/types"
)

// Account codes the rest of the core posts against.
const (
	CodeAccountsReceivable = "1200"
	CodeAccountsPayable    = "2010"
	CodeWITPayable         = "2100"
	CodeINSSPayable        = "2200"
	CodeSalariesPayable    = "2300"
	CodeRetainedEarnings   = "3800"
	CodeOpeningBalance     = "3900"
	CodeSalesRevenue       = "4010"
	CodeCashOnHand         = "1010"
	CodeBank               = "1020"
	CodeSalariesExpense    = "5010"
	CodeINSSExpense        = "5020"
)

//go:embed defaults.yml
var defaultChartYAML []byte

type defaultAccount struct {
	Code    string            `yaml:"code"`
	Name    string            `yaml:"name"`
	Type    types.AccountType `yaml:"type"`
	SubType string            `yaml:"sub_type"`
	Parent  string            `yaml:"parent"`
	System  bool              `yaml:"system"`
}

type defaultChart struct {
	Accounts []defaultAccount `yaml:"accounts"`
}

// DefaultChart returns the standard Timor-Leste chart as unsaved models,
// in seed order (parents before children).
func DefaultChart(tenantID string) []models.Account {
	var chart defaultChart
	if err := yaml.Unmarshal(defaultChartYAML, &chart); err != nil {
		// The file is embedded at build time; a parse failure is a
		// programming error, not a runtime condition.
		panic(err)
	}

	accounts := make([]models.Account, 0, len(chart.Accounts))
	for _, d := range chart.Accounts {
		level := 0
		if d.Parent != "" {
			level = 1
		}
		accounts = append(accounts, models.Account{
			TenantID:   tenantID,
			Code:       d.Code,
			Name:       d.Name,
			Type:       d.Type,
			SubType:    d.SubType,
			ParentCode: d.Parent,
			Level:      level,
			IsSystem:   d.System,
			IsActive:   true,
		})
	}
	return accounts
}
