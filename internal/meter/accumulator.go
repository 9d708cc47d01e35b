package meter

import "time"

// Accumulator integrates instantaneous power draw over elapsed wall-clock time
// into a running daily cost. It is owned by exactly one engine instance and
// mutated only through Tick.
type Accumulator struct {
	costToday  float64
	lastUpdate time.Time
	resetDate  string // "2006-01-02" key of the day costToday belongs to
}

// TickResult carries the figures computed by one integration step.
type TickResult struct {
	TotalPower    float64 // watts summed over the snapshot
	CostIncrement float64
	CostPerHour   float64 // instantaneous, independent of the elapsed interval
	CostToday     float64
	MonthEstimate float64
}

// NewAccumulator starts a fresh accumulator anchored at now; the first Tick
// integrates from this point.
func NewAccumulator(now time.Time) *Accumulator {
	return &Accumulator{lastUpdate: now, resetDate: dayKey(now)}
}

// Tick advances the accumulator to now. The rate resolved at tick time applies
// retroactively to the whole elapsed interval; a tariff boundary crossed
// mid-interval is not split. When the local calendar day has advanced, the
// daily total resets before the new increment is added, so the reset discards
// only pre-midnight accrual.
func (a *Accumulator) Tick(now time.Time, totalPower, rate float64) TickResult {
	dtHours := now.Sub(a.lastUpdate).Hours()
	increment := (totalPower / 1000) * dtHours * rate

	if key := dayKey(now); key != a.resetDate {
		a.costToday = 0
		a.resetDate = key
	}
	a.costToday += increment
	a.lastUpdate = now

	return TickResult{
		TotalPower:    totalPower,
		CostIncrement: increment,
		CostPerHour:   (totalPower / 1000) * rate,
		CostToday:     a.costToday,
		MonthEstimate: a.monthEstimate(now),
	}
}

// CostToday returns the running daily total.
func (a *Accumulator) CostToday() float64 { return a.costToday }

// monthEstimate projects today's accrual rate over the current month. The
// projection divides by hours elapsed since midnight and therefore swings
// wildly just after a daily reset; callers must tolerate that.
func (a *Accumulator) monthEstimate(now time.Time) float64 {
	hoursElapsed := float64(now.Hour()) + float64(now.Minute())/60
	if hoursElapsed <= 0 {
		return 0
	}
	dailyProjection := (a.costToday / hoursElapsed) * 24
	return dailyProjection * float64(daysInMonth(now))
}

func daysInMonth(t time.Time) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }
