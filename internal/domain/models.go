package domain

import "time"

// Tariff is the active price period.
type Tariff string

const (
	TariffDay   Tariff = "day"
	TariffNight Tariff = "night"
)

// Fallback rates used whenever the settings store has no values configured.
const (
	DefaultDayRate   = 0.12
	DefaultNightRate = 0.06
	DefaultCurrency  = "EUR"
)

// Season is a calendar date range with its own day/night boundaries.
// The range may wrap across the year end (StartMonth > EndMonth), e.g. Nov 1 - Mar 31.
// Season data is user-supplied and deliberately unvalidated; matching uses literal
// numeric comparison even for impossible dates like Feb 31.
type Season struct {
	Position   int    `db:"position" json:"-"`
	Name       string `db:"name" json:"name"`
	StartMonth int    `db:"start_month" json:"startMonth"`
	StartDay   int    `db:"start_day" json:"startDay"`
	EndMonth   int    `db:"end_month" json:"endMonth"`
	EndDay     int    `db:"end_day" json:"endDay"`
	DayStart   string `db:"day_start" json:"dayStart"` // "HH:MM", zero-padded
	DayEnd     string `db:"day_end" json:"dayEnd"`
}

// RateConfig holds the per-kWh prices for both tariffs.
type RateConfig struct {
	DayRate   float64 `json:"dayRate"`
	NightRate float64 `json:"nightRate"`
	Currency  string  `json:"currency"`
}

// Settings is the full user-configurable state served by the settings endpoints.
type Settings struct {
	Currency  string   `json:"currency"`
	DayRate   float64  `json:"dayRate"`
	NightRate float64  `json:"nightRate"`
	Seasons   []Season `json:"seasons"`
}

// SettingsPatch is a partial settings update; only non-nil fields are applied.
type SettingsPatch struct {
	Currency  *string   `json:"currency"`
	DayRate   *float64  `json:"dayRate"`
	NightRate *float64  `json:"nightRate"`
	Seasons   *[]Season `json:"seasons"`
}

// Rates returns the rate portion of the settings.
func (s Settings) Rates() RateConfig {
	return RateConfig{DayRate: s.DayRate, NightRate: s.NightRate, Currency: s.Currency}
}

// TariffState is derived every tick from the season list, the rates and the wall
// clock. It carries no identity of its own.
type TariffState struct {
	Season *Season `json:"season"`
	Tariff Tariff  `json:"tariff"`
	Rate   float64 `json:"rate"`
}

// SeasonName returns the active season's name, or "" when none is configured.
func (s TariffState) SeasonName() string {
	if s.Season == nil {
		return ""
	}
	return s.Season.Name
}

// DeviceSnapshot is one tracked device's power draw at snapshot time.
type DeviceSnapshot struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Power float64 `json:"power"` // watts
}

// HistorySample is one ring-buffer entry used for charting.
type HistorySample struct {
	Timestamp   time.Time `json:"timestamp"`
	Power       float64   `json:"power"`
	CostPerHour float64   `json:"costPerHour"`
	CostToday   float64   `json:"costToday"`
}

// CostAlertEvent fires on every tick with nonzero consumption. Threshold
// comparison against a user limit is the dispatcher's job, not ours.
type CostAlertEvent struct {
	CostPerHour float64 `json:"costPerHour"`
	TotalPower  float64 `json:"totalPower"`
}

// DailyCostEvent fires on every tick once any cost has accrued today.
type DailyCostEvent struct {
	CostToday float64 `json:"costToday"`
}

// HighPowerEvent fires once per qualifying device per tick.
type HighPowerEvent struct {
	DeviceName  string  `json:"deviceName"`
	Power       float64 `json:"power"`
	CostPerHour float64 `json:"costPerHour"`
}

// TariffChangeEvent is edge-triggered: emitted only when the resolved tariff
// differs from the previously observed one.
type TariffChangeEvent struct {
	PreviousTariff Tariff  `json:"previousTariff"`
	NewTariff      Tariff  `json:"newTariff"`
	Rate           float64 `json:"rate"`
}
