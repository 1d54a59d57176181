package database

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens the database for the given store driver: "sqlite" or "postgres".
func Connect(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "sqlite":
		db, err := sqlx.Connect("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("connect sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		return db, nil
	case "postgres":
		db, err := sqlx.Connect("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		db.SetMaxOpenConns(10)
		return db, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}
