package database

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

func Connect() (*sqlx.DB, error) {
	dsn := viper.GetString("DB_DSN")
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return db, Migrate(db)
}

// Migrate creates the settings tables when missing.
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS seasons (
			position    INT PRIMARY KEY,
			name        TEXT NOT NULL,
			start_month INT NOT NULL,
			start_day   INT NOT NULL,
			end_month   INT NOT NULL,
			end_day     INT NOT NULL,
			day_start   TEXT NOT NULL,
			day_end     TEXT NOT NULL
		);
	`)
	return err
}
