package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/homewatt/tariffwatch/internal/alert"
	"github.com/homewatt/tariffwatch/internal/domain"
	"github.com/homewatt/tariffwatch/internal/meter"
	"github.com/homewatt/tariffwatch/internal/sink"
	"github.com/homewatt/tariffwatch/internal/tariff"
)

// DeviceSource supplies the per-tick power snapshot, filtered to devices with
// positive draw and sorted descending.
type DeviceSource interface {
	Snapshot() []domain.DeviceSnapshot
}

// SettingsSource loads the user-configured rates and seasons.
type SettingsSource interface {
	LoadSettings() (domain.Settings, error)
}

// OutputSink receives the per-tick named outputs and the alert events.
type OutputSink interface {
	PublishOutputs(sink.Outputs)
	PublishEvent(kind string, payload any)
}

// Event kinds as published to the event sink.
const (
	EventCostPerHour  = "cost_per_hour"
	EventDailyCost    = "daily_cost"
	EventHighPower    = "high_power"
	EventTariffChange = "tariff_change"
)

// Status is the read-model served by the HTTP status endpoint.
type Status struct {
	Tariff             domain.Tariff           `json:"tariff"`
	Season             string                  `json:"season"`
	Rate               float64                 `json:"rate"`
	Currency           string                  `json:"currency"`
	MinutesUntilChange int                     `json:"minutesUntilChange"`
	TariffChangesToday int                     `json:"tariffChangesToday"`
	Power              float64                 `json:"power"`
	CostPerHour        float64                 `json:"costPerHour"`
	CostToday          float64                 `json:"costToday"`
	MonthEstimate      float64                 `json:"monthEstimate"`
	Devices            []domain.DeviceSnapshot `json:"devices"`
}

// Engine is the single owner of all tariff and cost accounting state. A 60s
// ticker drives the pipeline: snapshot devices, resolve tariff, integrate
// cost, evaluate alerts, append history, publish. Settings changes trigger an
// out-of-band tariff refresh through Refresh without integrating.
type Engine struct {
	devices  DeviceSource
	settings SettingsSource
	out      OutputSink
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	seasons []domain.Season
	rates   domain.RateConfig
	state   domain.TariffState
	acc     *meter.Accumulator
	history *meter.HistoryBuffer
	eval    *alert.Evaluator
	status  Status

	refreshCh chan struct{}
}

// New builds an engine and resolves the initial tariff state. A settings load
// failure degrades to the previous (or default) values rather than blocking
// startup.
func New(devices DeviceSource, settings SettingsSource, out OutputSink, interval time.Duration, minDevicePower float64) *Engine {
	return NewWithClock(devices, settings, out, interval, minDevicePower, time.Now)
}

// NewWithClock is New with an injectable clock.
func NewWithClock(devices DeviceSource, settings SettingsSource, out OutputSink, interval time.Duration, minDevicePower float64, now func() time.Time) *Engine {
	e := &Engine{
		devices:   devices,
		settings:  settings,
		out:       out,
		interval:  interval,
		now:       now,
		history:   meter.NewHistoryBuffer(),
		eval:      alert.NewEvaluator(minDevicePower),
		refreshCh: make(chan struct{}, 1),
	}
	e.Reload()
	e.acc = meter.NewAccumulator(e.now())
	return e
}

// Run drives the tick loop until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", e.interval).Msg("engine running")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("engine stopped")
			return
		case <-ticker.C:
			e.Tick(e.now())
		case <-e.refreshCh:
			e.Reload()
		}
	}
}

// Refresh requests an out-of-cadence settings reload and tariff re-resolution.
// Safe to call from any goroutine; coalesces while a refresh is pending.
func (e *Engine) Refresh() {
	select {
	case e.refreshCh <- struct{}{}:
	default:
	}
}

// Tick runs one full evaluation cycle at the given time.
func (e *Engine) Tick(now time.Time) {
	devs := e.devices.Snapshot()
	total := 0.0
	for _, d := range devs {
		total += d.Power
	}

	e.mu.Lock()
	season, active, rate := e.resolveLocked(now)

	res := e.acc.Tick(now, total, rate)
	events := e.eval.Evaluate(now, e.state, res, devs)

	outputs := sink.Outputs{
		Tariff:                string(active),
		Rate:                  rate,
		Season:                e.state.SeasonName(),
		MinutesUntilChange:    tariff.MinutesUntilChange(season, active, now),
		PeakHoursRemaining:    tariff.PeakHoursRemaining(season, now),
		OffpeakHoursRemaining: tariff.OffpeakHoursRemaining(season, now),
		DailyAverageRate:      tariff.DailyAverageRate(season, e.rates),
		TariffChangesToday:    e.eval.ChangesToday(),
		Power:                 total,
		CostPerHour:           res.CostPerHour,
		CostToday:             res.CostToday,
		MonthEstimate:         res.MonthEstimate,
	}
	e.status = Status{
		Tariff:             active,
		Season:             e.state.SeasonName(),
		Rate:               rate,
		Currency:           e.rates.Currency,
		MinutesUntilChange: outputs.MinutesUntilChange,
		TariffChangesToday: outputs.TariffChangesToday,
		Power:              total,
		CostPerHour:        res.CostPerHour,
		CostToday:          res.CostToday,
		MonthEstimate:      res.MonthEstimate,
		Devices:            devs,
	}
	e.mu.Unlock()

	e.history.Append(domain.HistorySample{
		Timestamp:   now,
		Power:       total,
		CostPerHour: res.CostPerHour,
		CostToday:   res.CostToday,
	})

	// Output writes happen outside the lock; each failure is caught and
	// logged by the sink so a dead broker cannot stall accounting.
	e.out.PublishOutputs(outputs)
	e.publishEvents(events)
}

// Status returns the most recent tick's figures.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// History returns the charting samples, oldest first.
func (e *Engine) History() []domain.HistorySample {
	return e.history.Snapshot()
}

// Reload pulls settings and re-resolves the tariff state without integrating.
// Run calls this on every queued Refresh.
func (e *Engine) Reload() {
	s, err := e.settings.LoadSettings()
	if err != nil {
		log.Error().Err(err).Msg("settings load failed, keeping previous values")
		return
	}
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.seasons = s.Seasons
	e.rates = s.Rates()
	_, active, rate := e.resolveLocked(now)
	log.Info().
		Str("tariff", string(active)).
		Str("season", e.state.SeasonName()).
		Float64("rate", rate).
		Msg("tariff state refreshed")
}

// resolveLocked recomputes the derived tariff state for now. Callers hold mu.
func (e *Engine) resolveLocked(now time.Time) (*domain.Season, domain.Tariff, float64) {
	season := tariff.ResolveSeason(now, e.seasons)
	active := tariff.ResolveTariff(season, now)
	rate := e.rates.DayRate
	if active == domain.TariffNight {
		rate = e.rates.NightRate
	}
	e.state = domain.TariffState{Season: season, Tariff: active, Rate: rate}
	return season, active, rate
}
