package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scheduleSum(schedule []Installment) decimal.Decimal {
	sum := decimal.Zero
	for _, inst := range schedule {
		sum = sum.Add(inst.Amount)
	}
	return sum
}

func TestBuildScheduleExactDivisor(t *testing.T) {
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	schedule := BuildSchedule(PlanEMI, dec("12000"), dec("2000"), dec("2500"), start, 4)

	require.Len(t, schedule, 4)
	for i, inst := range schedule {
		assert.Equal(t, i+1, inst.Number)
		assert.True(t, inst.Amount.Equal(dec("2500.00")), "installment %d amount %s", i+1, inst.Amount)
		assert.Equal(t, start.AddDate(0, i, 0), inst.DueDate)
		assert.False(t, inst.Paid)
	}
	assert.True(t, scheduleSum(schedule).Equal(dec("10000.00")))
}

func TestBuildScheduleLastAbsorbsRemainder(t *testing.T) {
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	schedule := BuildSchedule(PlanEMI, dec("10000"), decimal.Zero, dec("3000"), start, 4)

	require.Len(t, schedule, 4)
	for i := 0; i < 3; i++ {
		assert.True(t, schedule[i].Amount.Equal(dec("3000.00")))
	}
	assert.True(t, schedule[3].Amount.Equal(dec("1000.00")), "last %s", schedule[3].Amount)
	assert.True(t, scheduleSum(schedule).Equal(dec("10000.00")))
}

func TestBuildScheduleSingleInstallment(t *testing.T) {
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	schedule := BuildSchedule(PlanEMI, dec("2000"), decimal.Zero, dec("5000"), start, 1)

	require.Len(t, schedule, 1)
	assert.True(t, schedule[0].Amount.Equal(dec("2000.00")))
}

func TestBuildScheduleRecomputesOversizedCount(t *testing.T) {
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	// A stale count of 5 would leave the final installment at -2000;
	// the count is recomputed from the balance instead.
	schedule := BuildSchedule(PlanEMI, dec("10000"), dec("1000"), dec("4000"), start, 5)

	require.Len(t, schedule, 3)
	assert.True(t, schedule[0].Amount.Equal(dec("4000.00")))
	assert.True(t, schedule[1].Amount.Equal(dec("4000.00")))
	assert.True(t, schedule[2].Amount.Equal(dec("1000.00")))
	assert.True(t, scheduleSum(schedule).Equal(dec("9000.00")))
}

func TestBuildScheduleGuards(t *testing.T) {
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, BuildSchedule(PlanFinance, dec("10000"), decimal.Zero, dec("3000"), start, 4))
	assert.Nil(t, BuildSchedule(PlanEMI, dec("10000"), decimal.Zero, decimal.Zero, start, 4))
	assert.Nil(t, BuildSchedule(PlanEMI, dec("10000"), decimal.Zero, dec("3000"), time.Time{}, 4))
	assert.Nil(t, BuildSchedule(PlanEMI, dec("10000"), decimal.Zero, dec("3000"), start, 0))
	assert.Nil(t, BuildSchedule(PlanEMI, dec("1000"), dec("1000"), dec("500"), start, 2))
}

func TestScheduleSumInvariant(t *testing.T) {
	start := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		grand, down, monthly string
	}{
		{"12345.67", "345.67", "1000"},
		{"9999.99", "0", "777.77"},
		{"50000", "12500", "3333.33"},
	}

	for _, tc := range cases {
		grand, down, monthly := dec(tc.grand), dec(tc.down), dec(tc.monthly)
		count := InstallmentCount(grand, down, monthly)
		schedule := BuildSchedule(PlanEMI, grand, down, monthly, start, count)

		require.NotEmpty(t, schedule, "grand %s", tc.grand)
		assert.True(t, scheduleSum(schedule).Equal(RemainingBalance(grand, down)),
			"sum %s != balance %s", scheduleSum(schedule), RemainingBalance(grand, down))
	}
}
