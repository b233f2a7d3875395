package filing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haree-hq/haree/models"
	"github.com/haree-hq/haree/services/audit"
	"github.com/haree-hq/haree/types"
)

func testTracker(t *testing.T) *Tracker {
	t.Helper()
	return NewTracker(testDB(t), audit.NewService(nil))
}

func saveParams(filingType types.FilingType, period string) SaveFilingParams {
	return SaveFilingParams{
		Type:          filingType,
		Period:        period,
		DataSnapshot:  []byte(`{"rows":[]}`),
		EmployeeCount: 3,
		Totals: Totals{
			Wages: decimal.NewFromInt(3000),
			WIT:   decimal.NewFromInt(150),
		},
		UserID: "user-1",
	}
}

// currentPeriod is always pending when saved: its due date falls in the
// following month.
func currentPeriod() string {
	return time.Now().UTC().Format("2006-01")
}

func TestSaveFiling(t *testing.T) {
	tr := testTracker(t)

	saved, err := tr.SaveFiling(testTenant, saveParams(types.FilingINSSMonthly, currentPeriod()))
	require.NoError(t, err)

	assert.Equal(t, types.FilingPending, saved.Status)
	assert.Equal(t, 3, saved.EmployeeCount)
	assert.True(t, saved.TotalWages.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "user-1", saved.GeneratedBy)
	assert.NotZero(t, saved.UUID)
	assert.False(t, saved.FiledDate.Valid)
}

func TestSaveFilingDueDateIsAdjusted(t *testing.T) {
	tr := testTracker(t)

	// WIT for 2026-01 is due 2026-02-15, a Sunday, so the stored due date is
	// the following Monday.
	saved, err := tr.SaveFiling(testTenant, saveParams(types.FilingMonthlyWIT, "2026-01"))
	require.NoError(t, err)
	assert.Equal(t, "2026-02-16", saved.DueDate.Format("2006-01-02"))
}

func TestSaveFilingUpsertsInPlace(t *testing.T) {
	tr := testTracker(t)
	period := currentPeriod()

	first, err := tr.SaveFiling(testTenant, saveParams(types.FilingINSSMonthly, period))
	require.NoError(t, err)

	params := saveParams(types.FilingINSSMonthly, period)
	params.Totals.Wages = decimal.NewFromInt(4500)
	params.EmployeeCount = 4

	second, err := tr.SaveFiling(testTenant, params)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.TotalWages.Equal(decimal.NewFromInt(4500)))
	assert.Equal(t, 4, second.EmployeeCount)

	var count int64
	require.NoError(t, tr.DB.Model(&models.TaxFiling{}).
		Where("tenant_id = ?", testTenant).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSaveFilingOverdueWhenPastDue(t *testing.T) {
	tr := testTracker(t)

	saved, err := tr.SaveFiling(testTenant, saveParams(types.FilingMonthlyWIT, "2020-01"))
	require.NoError(t, err)
	assert.Equal(t, types.FilingOverdue, saved.Status)
}

func TestMarkAsFiled(t *testing.T) {
	tr := testTracker(t)
	period := currentPeriod()

	saved, err := tr.SaveFiling(testTenant, saveParams(types.FilingMonthlyWIT, period))
	require.NoError(t, err)

	filed, err := tr.MarkAsFiled(testTenant, saved.ID, MarkAsFiledParams{
		SubmissionMethod: "e-filing portal",
		ReceiptNumber:    "RC-2026-0042",
		UserID:           "user-2",
	})
	require.NoError(t, err)

	stored, err := tr.GetFiling(testTenant, filed.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FilingFiled, stored.Status)
	assert.True(t, stored.FiledDate.Valid)
	assert.Equal(t, "user-2", stored.FiledBy.String)
	assert.Equal(t, "e-filing portal", stored.SubmissionMethod.String)
	assert.Equal(t, "RC-2026-0042", stored.ReceiptNumber.String)

	// Regenerating a filed return is refused; the stored snapshot must match
	// what was submitted.
	_, err = tr.SaveFiling(testTenant, saveParams(types.FilingMonthlyWIT, period))
	assert.ErrorIs(t, err, ErrFilingAlreadyFiled)

	_, err = tr.MarkAsFiled(testTenant, 9999, MarkAsFiledParams{SubmissionMethod: "manual"})
	assert.ErrorIs(t, err, ErrFilingNotFound)
	_, err = tr.MarkAsFiled("tenant-2", saved.ID, MarkAsFiledParams{SubmissionMethod: "manual"})
	assert.ErrorIs(t, err, ErrFilingNotFound)
}

func TestGetFilingsDueSoon(t *testing.T) {
	tr := testTracker(t)

	upcoming, err := tr.GetFilingsDueSoon(testTenant, 2)
	require.NoError(t, err)
	require.NotEmpty(t, upcoming)

	for i, u := range upcoming {
		assert.Equal(t, StatusNotGenerated, u.Status)
		assert.False(t, u.FilingID.Valid)
		if i > 0 {
			assert.False(t, u.DueDate.Before(upcoming[i-1].DueDate), "not sorted at %d", i)
		}
	}

	// Each covered month contributes its three monthly obligations.
	kinds := make(map[string]int)
	for _, u := range upcoming {
		kinds[u.Kind]++
	}
	assert.Equal(t, 2, kinds[ObligationMonthlyWIT])
	assert.Equal(t, 2, kinds[ObligationINSSStatement])
	assert.Equal(t, 2, kinds[ObligationINSSPayment])

	// Once a filing is stored its status replaces not_generated.
	period := upcoming[0].Period
	filingType := upcoming[0].FilingType
	_, err = tr.SaveFiling(testTenant, saveParams(filingType, period))
	require.NoError(t, err)

	refreshed, err := tr.GetFilingsDueSoon(testTenant, 2)
	require.NoError(t, err)
	found := false
	for _, u := range refreshed {
		if u.FilingType == filingType && u.Period == period {
			found = true
			assert.NotEqual(t, StatusNotGenerated, u.Status)
			assert.True(t, u.FilingID.Valid)
		}
	}
	assert.True(t, found)
}

func TestGetFilingStatusSummary(t *testing.T) {
	tr := testTracker(t)

	_, err := tr.SaveFiling(testTenant, saveParams(types.FilingINSSMonthly, currentPeriod()))
	require.NoError(t, err)
	_, err = tr.SaveFiling(testTenant, saveParams(types.FilingMonthlyWIT, "2020-01"))
	require.NoError(t, err)
	filed, err := tr.SaveFiling(testTenant, saveParams(types.FilingMonthlyWIT, "2020-02"))
	require.NoError(t, err)
	_, err = tr.MarkAsFiled(testTenant, filed.ID, MarkAsFiledParams{SubmissionMethod: "manual", UserID: "user-1"})
	require.NoError(t, err)

	summary, err := tr.GetFilingStatusSummary(testTenant)
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.Pending)
	assert.Equal(t, int64(1), summary.Overdue)
	assert.Equal(t, int64(1), summary.Filed)
	require.NotNil(t, summary.NextDue)
	assert.NotEqual(t, types.FilingFiled, summary.NextDue.Status)
}

func TestRefreshOverdue(t *testing.T) {
	tr := testTracker(t)

	// A filing saved as pending whose due date has since passed.
	stale := models.TaxFiling{
		TenantID: testTenant,
		Type:     types.FilingMonthlyWIT,
		Period:   "2021-06",
		Status:   types.FilingPending,
		DueDate:  day(2021, time.July, 15),
	}
	require.NoError(t, tr.DB.Create(&stale).Error)

	fresh, err := tr.SaveFiling(testTenant, saveParams(types.FilingINSSMonthly, currentPeriod()))
	require.NoError(t, err)

	updated, err := tr.RefreshOverdue()
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	reloaded, err := tr.GetFiling(testTenant, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FilingOverdue, reloaded.Status)

	reloaded, err = tr.GetFiling(testTenant, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FilingPending, reloaded.Status)
}
