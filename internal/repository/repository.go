package repository

import (
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/homewatt/tariffwatch/internal/domain"
)

// Settings keys in the key/value table.
const (
	keyDayRate   = "dayRate"
	keyNightRate = "nightRate"
	keyCurrency  = "currency"
)

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

// DefaultSettings is what the engine runs on before anything is configured:
// the fallback rate pair and a Winter/Summer season split.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		Currency:  domain.DefaultCurrency,
		DayRate:   domain.DefaultDayRate,
		NightRate: domain.DefaultNightRate,
		Seasons: []domain.Season{
			{Position: 0, Name: "Winter", StartMonth: 11, StartDay: 1, EndMonth: 3, EndDay: 31, DayStart: "06:00", DayEnd: "22:00"},
			{Position: 1, Name: "Summer", StartMonth: 4, StartDay: 1, EndMonth: 10, EndDay: 31, DayStart: "07:00", DayEnd: "23:00"},
		},
	}
}

// LoadSettings reads the stored settings, substituting defaults for anything
// unset. Unparsable stored values also fall back rather than erroring.
func (r *Repos) LoadSettings() (domain.Settings, error) {
	s := DefaultSettings()

	var kvs []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := r.db.Select(&kvs, `SELECT key, value FROM settings`); err != nil {
		return s, err
	}
	for _, kv := range kvs {
		switch kv.Key {
		case keyDayRate:
			if v, err := strconv.ParseFloat(kv.Value, 64); err == nil {
				s.DayRate = v
			}
		case keyNightRate:
			if v, err := strconv.ParseFloat(kv.Value, 64); err == nil {
				s.NightRate = v
			}
		case keyCurrency:
			if kv.Value != "" {
				s.Currency = kv.Value
			}
		}
	}

	var seasons []domain.Season
	if err := r.db.Select(&seasons, `SELECT position, name, start_month, start_day, end_month, end_day, day_start, day_end FROM seasons ORDER BY position`); err != nil {
		return s, err
	}
	if len(seasons) > 0 {
		s.Seasons = seasons
	}
	return s, nil
}

// ApplyPatch persists the present fields of a partial settings update.
func (r *Repos) ApplyPatch(p domain.SettingsPatch) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if p.DayRate != nil {
		if err := upsert(tx, keyDayRate, strconv.FormatFloat(*p.DayRate, 'f', -1, 64)); err != nil {
			return err
		}
	}
	if p.NightRate != nil {
		if err := upsert(tx, keyNightRate, strconv.FormatFloat(*p.NightRate, 'f', -1, 64)); err != nil {
			return err
		}
	}
	if p.Currency != nil {
		if err := upsert(tx, keyCurrency, *p.Currency); err != nil {
			return err
		}
	}
	if p.Seasons != nil {
		if _, err := tx.Exec(`DELETE FROM seasons`); err != nil {
			return err
		}
		for i, season := range *p.Seasons {
			_, err := tx.Exec(
				`INSERT INTO seasons(position, name, start_month, start_day, end_month, end_day, day_start, day_end) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
				i, season.Name, season.StartMonth, season.StartDay, season.EndMonth, season.EndDay, season.DayStart, season.DayEnd)
			if err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func upsert(tx *sqlx.Tx, key, value string) error {
	_, err := tx.Exec(
		`INSERT INTO settings(key, value) VALUES ($1,$2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	return err
}
