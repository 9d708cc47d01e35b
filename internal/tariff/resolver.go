package tariff

import (
	"time"

	"github.com/homewatt/tariffwatch/internal/domain"
)

// Day-window boundaries applied when a season omits them.
const (
	DefaultDayStart = "06:00"
	DefaultDayEnd   = "22:00"
)

const minutesPerDay = 24 * 60

// ResolveTariff returns the active tariff for the given wall-clock time.
// The day window is [dayStart, dayEnd): inclusive start, exclusive end.
// Comparison is lexicographic on zero-padded "HH:MM" strings, which orders
// the same as the underlying times. A nil season means day tariff.
func ResolveTariff(season *domain.Season, now time.Time) domain.Tariff {
	if season == nil {
		return domain.TariffDay
	}
	start, end := dayWindow(season)
	clock := now.Format("15:04")
	if clock >= start && clock < end {
		return domain.TariffDay
	}
	return domain.TariffNight
}

// MinutesUntilChange returns how many minutes remain until the tariff flips.
// During the day window the answer is the distance to dayEnd; at night it is
// the distance to the next dayStart, wrapping past midnight when the evening
// off-peak block has already begun. The result is always in [0, 1440).
func MinutesUntilChange(season *domain.Season, active domain.Tariff, now time.Time) int {
	startMin, endMin := windowMinutes(season)
	nowMin := now.Hour()*60 + now.Minute()

	if active == domain.TariffDay {
		return endMin - nowMin
	}
	if nowMin >= endMin {
		return (minutesPerDay - nowMin) + startMin
	}
	return startMin - nowMin
}

// PeakHoursRemaining returns the day-tariff hours left before the next local
// midnight. The window does not recur within the same calendar day, so past
// dayEnd the answer is zero.
func PeakHoursRemaining(season *domain.Season, now time.Time) float64 {
	startMin, endMin := windowMinutes(season)
	nowMin := now.Hour()*60 + now.Minute()

	switch {
	case nowMin < startMin:
		return float64(endMin-startMin) / 60
	case nowMin < endMin:
		return float64(endMin-nowMin) / 60
	default:
		return 0
	}
}

// OffpeakHoursRemaining returns the night-tariff hours left before the next
// local midnight: the remaining morning block before dayStart, if any, plus
// whatever is left of the fixed evening block from dayEnd to midnight.
func OffpeakHoursRemaining(season *domain.Season, now time.Time) float64 {
	startMin, endMin := windowMinutes(season)
	nowMin := now.Hour()*60 + now.Minute()

	morning := 0
	if nowMin < startMin {
		morning = startMin - nowMin
	}
	evening := minutesPerDay - endMin
	if nowMin >= endMin {
		evening = minutesPerDay - nowMin
	}
	return float64(morning+evening) / 60
}

// DailyAverageRate is the time-weighted mean rate over a full day of this
// season. A season with dayEnd before dayStart produces a negative peak share;
// that misconfiguration is passed through, not corrected.
func DailyAverageRate(season *domain.Season, rates domain.RateConfig) float64 {
	startMin, endMin := windowMinutes(season)
	peakMin := endMin - startMin
	offpeakMin := minutesPerDay - peakMin
	return (float64(peakMin)*rates.DayRate + float64(offpeakMin)*rates.NightRate) / minutesPerDay
}

func dayWindow(season *domain.Season) (start, end string) {
	start, end = DefaultDayStart, DefaultDayEnd
	if season != nil && season.DayStart != "" {
		start = season.DayStart
	}
	if season != nil && season.DayEnd != "" {
		end = season.DayEnd
	}
	return start, end
}

func windowMinutes(season *domain.Season) (startMin, endMin int) {
	start, end := dayWindow(season)
	return clockMinutes(start, 6*60), clockMinutes(end, 22*60)
}

// clockMinutes converts a zero-padded "HH:MM" string to minutes since local
// midnight, falling back on unparsable input rather than erroring.
func clockMinutes(clock string, fallback int) int {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return fallback
	}
	return t.Hour()*60 + t.Minute()
}
