// Package tax computes Timor-Leste statutory payroll taxes: wage income
// tax (WIT) withholding and INSS social security contributions, and builds
// the monthly/annual returns filed from them.
package tax

import "github.com/shopspring/decimal"

var (
	// WIT is a flat 10% withholding. Residents get a $500 monthly
	// threshold before the rate applies; non-residents do not.
	WITRate                     = decimal.NewFromFloat(0.10)
	WITResidentMonthlyThreshold = decimal.NewFromInt(500)

	INSSEmployeeRate = decimal.NewFromFloat(0.04)
	INSSEmployerRate = decimal.NewFromFloat(0.06)
)

// ComputeWIT returns the monthly wage income tax for a gross wage figure,
// rounded to cents.
func ComputeWIT(grossWages decimal.Decimal, resident bool) decimal.Decimal {
	taxable := grossWages
	if resident {
		taxable = taxable.Sub(WITResidentMonthlyThreshold)
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}
	}
	return taxable.Mul(WITRate).Round(2)
}

// ComputeINSS returns the employee (4%) and employer (6%) contributions on
// a contribution base, rounded to cents.
func ComputeINSS(base decimal.Decimal) (employee, employer decimal.Decimal) {
	return base.Mul(INSSEmployeeRate).Round(2), base.Mul(INSSEmployerRate).Round(2)
}

// ReconstructContributionBase recovers the contribution base from a stored
// employee-withheld amount by dividing out the rate. When the stored figure
// was itself rounded to cents, the reconstructed base can differ from the
// true gross by up to $0.125; callers needing exactness must carry the
// gross figure instead.
func ReconstructContributionBase(employeeWithheld decimal.Decimal) decimal.Decimal {
	return employeeWithheld.Div(INSSEmployeeRate).Round(2)
}
