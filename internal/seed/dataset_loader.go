package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"

	"drugtrack/m/domain"
	"drugtrack/m/internal/store"
)

// LoadInventory ingests the inventory CSV into an empty inventory table.
// A populated table is left alone so stock deducted by orders is not reset.
func LoadInventory(db *sqlx.DB, csvPath string, log *slog.Logger) (int, error) {
	if n, err := count(db, "inventory"); err != nil || n > 0 {
		return 0, err
	}
	items, err := store.ReadInventory(csvPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("inventory dataset not found", "path", csvPath)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read inventory dataset: %w", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("start inventory seed: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.Preparex(db.Rebind(`INSERT INTO inventory (position, name, quantity, expiry_date, price_per_unit) VALUES (?, ?, ?, ?, ?) ON CONFLICT (name) DO NOTHING`))
	if err != nil {
		return 0, fmt.Errorf("prepare inventory insert: %w", err)
	}
	defer stmt.Close()

	rows := 0
	for i, item := range items {
		if item.Name == "" {
			continue
		}
		expiry := ""
		if !item.ExpiryDate.IsZero() {
			expiry = item.ExpiryDate.Format(domain.DateLayout)
		}
		res, err := stmt.Exec(i, item.Name, item.Quantity, expiry, item.PricePerUnit.String())
		if err != nil {
			return 0, fmt.Errorf("insert inventory %s: %w", item.Name, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			log.Warn("duplicate inventory item skipped", "name", item.Name)
			continue
		}
		rows++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit inventory seed: %w", err)
	}
	log.Info("seeded inventory", "rows", rows)
	return rows, nil
}

// LoadConsumption ingests the consumption CSV into an empty consumption table.
func LoadConsumption(db *sqlx.DB, csvPath string, log *slog.Logger) (int, error) {
	if n, err := count(db, "consumption"); err != nil || n > 0 {
		return 0, err
	}
	records, err := store.ReadConsumption(csvPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn("consumption dataset not found", "path", csvPath)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read consumption dataset: %w", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("start consumption seed: %w", err)
	}
	defer tx.Rollback()
	stmt, err := tx.Preparex(db.Rebind(`INSERT INTO consumption (position, name, usage_amount) VALUES (?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("prepare consumption insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.Exec(i, rec.Name, rec.Usage); err != nil {
			return 0, fmt.Errorf("insert consumption %s: %w", rec.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit consumption seed: %w", err)
	}
	log.Info("seeded consumption", "rows", len(records))
	return len(records), nil
}

func count(db *sqlx.DB, table string) (int, error) {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
