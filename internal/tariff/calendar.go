package tariff

import (
	"time"

	"github.com/homewatt/tariffwatch/internal/domain"
)

// ResolveSeason returns the first season in the ordered list whose date range
// contains the given date. Ambiguous overlapping seasons resolve by list order.
// When no season matches, the first configured season wins; with an empty list
// the result is nil and callers fall back to the day tariff.
func ResolveSeason(now time.Time, seasons []domain.Season) *domain.Season {
	if len(seasons) == 0 {
		return nil
	}
	month, day := int(now.Month()), now.Day()
	for i := range seasons {
		if seasonContains(&seasons[i], month, day) {
			return &seasons[i]
		}
	}
	return &seasons[0]
}

// seasonContains matches on (month, day) pairs compared lexicographically.
// A wrapping season (StartMonth > EndMonth) covers the union of start..year-end
// and year-start..end, so the two bounds combine with OR instead of AND.
func seasonContains(s *domain.Season, month, day int) bool {
	afterStart := month > s.StartMonth || (month == s.StartMonth && day >= s.StartDay)
	beforeEnd := month < s.EndMonth || (month == s.EndMonth && day <= s.EndDay)
	if s.StartMonth > s.EndMonth {
		return afterStart || beforeEnd
	}
	return afterStart && beforeEnd
}
