package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeWIT(t *testing.T) {
	cases := []struct {
		name     string
		gross    string
		resident bool
		want     string
	}{
		{"resident below threshold", "400", true, "0"},
		{"resident at threshold", "500", true, "0"},
		{"resident just above threshold", "500.01", true, "0"},
		{"resident above threshold", "1000", true, "50"},
		{"resident rounding", "833.33", true, "33.33"},
		{"non-resident flat from first dollar", "400", false, "40"},
		{"non-resident", "1000", false, "100"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gross := decimal.RequireFromString(c.gross)
			want := decimal.RequireFromString(c.want)
			got := ComputeWIT(gross, c.resident)
			assert.True(t, got.Equal(want), "ComputeWIT(%s, %v) = %s, want %s", c.gross, c.resident, got, want)
		})
	}
}

func TestComputeINSS(t *testing.T) {
	employee, employer := ComputeINSS(decimal.NewFromInt(1000))
	assert.True(t, employee.Equal(decimal.NewFromInt(40)))
	assert.True(t, employer.Equal(decimal.NewFromInt(60)))

	employee, employer = ComputeINSS(decimal.RequireFromString("733.33"))
	assert.True(t, employee.Equal(decimal.RequireFromString("29.33")), "employee %s", employee)
	assert.True(t, employer.Equal(decimal.RequireFromString("44")), "employer %s", employer)
}

func TestReconstructContributionBase(t *testing.T) {
	base := ReconstructContributionBase(decimal.NewFromInt(40))
	assert.True(t, base.Equal(decimal.NewFromInt(1000)))

	// A withheld figure that was rounded to cents reconstructs to a nearby
	// base, not necessarily the exact original gross.
	employee, _ := ComputeINSS(decimal.RequireFromString("733.33"))
	approx := ReconstructContributionBase(employee)
	diff := approx.Sub(decimal.RequireFromString("733.33")).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.125")), "diff %s", diff)
}
