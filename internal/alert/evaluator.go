package alert

import (
	"time"

	"github.com/homewatt/tariffwatch/internal/domain"
	"github.com/homewatt/tariffwatch/internal/meter"
)

// Evaluator re-checks the alert conditions on every tick. The cost and
// high-power checks are level-triggered: they fire whenever the value is
// nonzero, every tick, and leave threshold comparison to the downstream
// dispatcher. Only the tariff change is edge-triggered.
type Evaluator struct {
	// MinDevicePower is an optional watt floor for high-power device events.
	// Zero keeps the historical fire-for-every-active-device behavior.
	MinDevicePower float64

	lastTariff   domain.Tariff
	seenTariff   bool
	changesToday int
	changesDate  string
}

// Events is the set of notifications produced by one evaluation. Nil fields
// did not fire.
type Events struct {
	CostPerHour  *domain.CostAlertEvent
	DailyCost    *domain.DailyCostEvent
	HighPower    []domain.HighPowerEvent
	TariffChange *domain.TariffChangeEvent
}

// NewEvaluator returns an evaluator with no observed tariff; the first
// evaluation establishes the baseline without firing a change event.
func NewEvaluator(minDevicePower float64) *Evaluator {
	return &Evaluator{MinDevicePower: minDevicePower}
}

// ChangesToday reports how often the tariff flipped since local midnight.
func (e *Evaluator) ChangesToday() int { return e.changesToday }

// Evaluate runs all checks against the freshly computed tick values.
// devices must be the sorted nonzero-power snapshot used for the tick.
func (e *Evaluator) Evaluate(now time.Time, state domain.TariffState, res meter.TickResult, devices []domain.DeviceSnapshot) Events {
	var out Events

	if res.CostPerHour > 0 {
		out.CostPerHour = &domain.CostAlertEvent{
			CostPerHour: res.CostPerHour,
			TotalPower:  res.TotalPower,
		}
	}
	if res.CostToday > 0 {
		out.DailyCost = &domain.DailyCostEvent{CostToday: res.CostToday}
	}
	for _, d := range devices {
		if d.Power < e.MinDevicePower {
			continue
		}
		out.HighPower = append(out.HighPower, domain.HighPowerEvent{
			DeviceName:  d.Name,
			Power:       d.Power,
			CostPerHour: (d.Power / 1000) * state.Rate,
		})
	}
	out.TariffChange = e.checkTariffChange(now, state)
	return out
}

func (e *Evaluator) checkTariffChange(now time.Time, state domain.TariffState) *domain.TariffChangeEvent {
	if key := now.Format("2006-01-02"); key != e.changesDate {
		e.changesToday = 0
		e.changesDate = key
	}
	if !e.seenTariff {
		e.lastTariff = state.Tariff
		e.seenTariff = true
		return nil
	}
	if state.Tariff == e.lastTariff {
		return nil
	}
	prev := e.lastTariff
	e.lastTariff = state.Tariff
	e.changesToday++
	return &domain.TariffChangeEvent{
		PreviousTariff: prev,
		NewTariff:      state.Tariff,
		Rate:           state.Rate,
	}
}
