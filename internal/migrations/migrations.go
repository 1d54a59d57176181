package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the tables backing the SQL record store. The DDL is shared by
// sqlite and postgres.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS hospitals (
            position INTEGER NOT NULL,
            hospital_id TEXT PRIMARY KEY,
            hospital_name TEXT NOT NULL,
            place TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            email TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS orders (
            position INTEGER NOT NULL,
            order_id TEXT NOT NULL,
            order_from TEXT NOT NULL DEFAULT '',
            order_received TEXT NOT NULL DEFAULT '',
            drug_name TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            received TEXT,
            confirmed TEXT,
            packed TEXT,
            dispatched TEXT,
            delivered TEXT,
            final_status TEXT NOT NULL DEFAULT '',
            UNIQUE(order_id, drug_name)
        );`,
		`CREATE TABLE IF NOT EXISTS inventory (
            position INTEGER NOT NULL,
            name TEXT PRIMARY KEY,
            quantity INTEGER NOT NULL,
            expiry_date TEXT NOT NULL DEFAULT '',
            price_per_unit TEXT NOT NULL DEFAULT '0'
        );`,
		`CREATE TABLE IF NOT EXISTS consumption (
            position INTEGER NOT NULL,
            name TEXT NOT NULL,
            usage_amount REAL NOT NULL DEFAULT 0
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
