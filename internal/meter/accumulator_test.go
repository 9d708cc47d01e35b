package meter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2025, time.January, 15, 11, 0, 0, 0, time.Local)

func TestAccumulator_OneHourAtConstantPower(t *testing.T) {
	a := NewAccumulator(t0)
	// 2000 W for exactly one hour at 0.12/kWh.
	res := a.Tick(t0.Add(time.Hour), 2000, 0.12)
	assert.InDelta(t, 0.24, res.CostIncrement, 1e-9)
	assert.InDelta(t, 0.24, res.CostToday, 1e-9)
}

func TestAccumulator_CostPerHourIsInstantaneous(t *testing.T) {
	a := NewAccumulator(t0)
	res := a.Tick(t0.Add(time.Minute), 2000, 0.12)
	// Independent of the one-minute interval.
	assert.InDelta(t, 0.24, res.CostPerHour, 1e-9)
	assert.InDelta(t, 0.004, res.CostIncrement, 1e-9)
}

func TestAccumulator_MonotonicWithinDay(t *testing.T) {
	a := NewAccumulator(t0)
	powers := []float64{500, 0, 1200, 300, 0, 2500}
	prev := 0.0
	now := t0
	for _, p := range powers {
		now = now.Add(time.Minute)
		res := a.Tick(now, p, 0.12)
		assert.GreaterOrEqual(t, res.CostToday, prev)
		prev = res.CostToday
	}
}

func TestAccumulator_MidnightResetDiscardsOnlyPreMidnightAccrual(t *testing.T) {
	start := time.Date(2025, time.January, 15, 23, 30, 0, 0, time.Local)
	a := NewAccumulator(start)

	res := a.Tick(start.Add(15*time.Minute), 2000, 0.06) // 23:45
	assert.InDelta(t, 0.03, res.CostToday, 1e-9)

	// Day rolls over mid-sequence; the new day starts from the first
	// post-midnight increment, not from zero persisting.
	res = a.Tick(start.Add(45*time.Minute), 2000, 0.06) // 00:15 next day
	assert.InDelta(t, 0.06, res.CostToday, 1e-9)
}

func TestAccumulator_MonthEstimate(t *testing.T) {
	a := NewAccumulator(t0)
	res := a.Tick(t0.Add(time.Hour), 2000, 0.12) // Jan 15 12:00, costToday 0.24
	// 0.24 over 12 elapsed hours projects to 0.48/day over 31 days.
	assert.InDelta(t, 14.88, res.MonthEstimate, 1e-9)
}

func TestAccumulator_MonthEstimateZeroAtMidnight(t *testing.T) {
	midnight := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.Local)
	a := NewAccumulator(midnight.Add(-time.Minute))
	res := a.Tick(midnight, 2000, 0.06)
	assert.Zero(t, res.MonthEstimate)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, daysInMonth(time.Date(2025, time.January, 10, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, 28, daysInMonth(time.Date(2025, time.February, 10, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, 29, daysInMonth(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, 30, daysInMonth(time.Date(2025, time.April, 10, 0, 0, 0, 0, time.Local)))
}
