package tariff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homewatt/tariffwatch/internal/domain"
)

var winter = &domain.Season{
	Name: "Winter", StartMonth: 11, StartDay: 1, EndMonth: 3, EndDay: 31,
	DayStart: "06:00", DayEnd: "22:00",
}

var rates = domain.RateConfig{DayRate: 0.12, NightRate: 0.06, Currency: "EUR"}

func at(hour, min int) time.Time {
	return time.Date(2025, time.January, 15, hour, min, 0, 0, time.Local)
}

func TestResolveTariff_WindowBoundaries(t *testing.T) {
	assert.Equal(t, domain.TariffDay, ResolveTariff(winter, at(6, 0)), "inclusive start")
	assert.Equal(t, domain.TariffNight, ResolveTariff(winter, at(22, 0)), "exclusive end")
	assert.Equal(t, domain.TariffDay, ResolveTariff(winter, at(21, 59)))
	assert.Equal(t, domain.TariffNight, ResolveTariff(winter, at(5, 59)))
	assert.Equal(t, domain.TariffNight, ResolveTariff(winter, at(23, 30)))
}

func TestResolveTariff_NilSeasonDefaultsToDay(t *testing.T) {
	assert.Equal(t, domain.TariffDay, ResolveTariff(nil, at(3, 0)))
}

func TestResolveTariff_MissingWindowUsesDefaults(t *testing.T) {
	bare := &domain.Season{Name: "Bare"}
	assert.Equal(t, domain.TariffNight, ResolveTariff(bare, at(5, 59)))
	assert.Equal(t, domain.TariffDay, ResolveTariff(bare, at(6, 0)))
	assert.Equal(t, domain.TariffNight, ResolveTariff(bare, at(22, 0)))
}

func TestMinutesUntilChange(t *testing.T) {
	cases := []struct {
		name   string
		now    time.Time
		active domain.Tariff
		want   int
	}{
		{"morning day", at(8, 0), domain.TariffDay, 840},
		{"one minute before day end", at(21, 59), domain.TariffDay, 1},
		{"evening night wraps past midnight", at(22, 0), domain.TariffNight, 480},
		{"late night wraps", at(23, 30), domain.TariffNight, 390},
		{"early morning night", at(5, 0), domain.TariffNight, 60},
		{"one minute before day start", at(5, 59), domain.TariffNight, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := MinutesUntilChange(winter, c.active, c.now)
			assert.Equal(t, c.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.Less(t, got, 1440)
		})
	}
}

func TestPeakHoursRemaining(t *testing.T) {
	assert.InDelta(t, 16, PeakHoursRemaining(winter, at(5, 0)), 1e-9, "full window before dayStart")
	assert.InDelta(t, 8, PeakHoursRemaining(winter, at(14, 0)), 1e-9, "remainder inside window")
	assert.InDelta(t, 0, PeakHoursRemaining(winter, at(23, 0)), 1e-9, "window does not recur today")
	assert.InDelta(t, 16, PeakHoursRemaining(winter, at(6, 0)), 1e-9, "inclusive start boundary")
	assert.InDelta(t, 0, PeakHoursRemaining(winter, at(22, 0)), 1e-9, "exclusive end boundary")
}

func TestOffpeakHoursRemaining(t *testing.T) {
	// Window 06:00-22:00: morning block 6h, evening block 2h.
	assert.InDelta(t, 3, OffpeakHoursRemaining(winter, at(5, 0)), 1e-9, "rest of morning plus evening")
	assert.InDelta(t, 2, OffpeakHoursRemaining(winter, at(14, 0)), 1e-9, "evening block only")
	assert.InDelta(t, 1, OffpeakHoursRemaining(winter, at(23, 0)), 1e-9, "remainder of evening")
	assert.InDelta(t, 2, OffpeakHoursRemaining(winter, at(22, 0)), 1e-9, "full evening at day end")
	assert.InDelta(t, 8, OffpeakHoursRemaining(winter, at(0, 0)), 1e-9, "whole off-peak day at midnight")
}

func TestDailyAverageRate(t *testing.T) {
	// 16h at 0.12 plus 8h at 0.06 over 24h.
	assert.InDelta(t, 0.10, DailyAverageRate(winter, rates), 1e-9)
}

func TestDailyAverageRate_InvertedWindowPassesThrough(t *testing.T) {
	inverted := &domain.Season{Name: "Odd", DayStart: "22:00", DayEnd: "06:00"}
	// Peak share is -16h; the misconfiguration is not corrected.
	want := (-960*0.12 + 2400*0.06) / 1440
	assert.InDelta(t, want, DailyAverageRate(inverted, rates), 1e-9)
}

func TestResolversAreIdempotent(t *testing.T) {
	now := at(8, 0)
	first := ResolveSeason(now, []domain.Season{*winter})
	second := ResolveSeason(now, []domain.Season{*winter})
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.Equal(t, ResolveTariff(winter, now), ResolveTariff(winter, now))
	assert.Equal(t, MinutesUntilChange(winter, domain.TariffDay, now), MinutesUntilChange(winter, domain.TariffDay, now))
}

func TestWinterMorningScenario(t *testing.T) {
	seasons := []domain.Season{
		{Name: "Winter", StartMonth: 11, StartDay: 1, EndMonth: 3, EndDay: 31, DayStart: "06:00", DayEnd: "22:00"},
		{Name: "Summer", StartMonth: 4, StartDay: 1, EndMonth: 10, EndDay: 31, DayStart: "07:00", DayEnd: "23:00"},
	}
	now := at(8, 0) // Jan 15 08:00

	season := ResolveSeason(now, seasons)
	require.NotNil(t, season)
	assert.Equal(t, "Winter", season.Name)

	active := ResolveTariff(season, now)
	assert.Equal(t, domain.TariffDay, active)
	assert.Equal(t, 840, MinutesUntilChange(season, active, now))
	assert.InDelta(t, 0.12, rates.DayRate, 1e-9)
}
