package engine

import "github.com/homewatt/tariffwatch/internal/alert"

func (e *Engine) publishEvents(ev alert.Events) {
	if ev.CostPerHour != nil {
		e.out.PublishEvent(EventCostPerHour, ev.CostPerHour)
	}
	if ev.DailyCost != nil {
		e.out.PublishEvent(EventDailyCost, ev.DailyCost)
	}
	for i := range ev.HighPower {
		e.out.PublishEvent(EventHighPower, &ev.HighPower[i])
	}
	if ev.TariffChange != nil {
		e.out.PublishEvent(EventTariffChange, ev.TariffChange)
	}
}
