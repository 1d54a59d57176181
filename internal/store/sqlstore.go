package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"drugtrack/m/domain"
)

// SQLStore keeps the tables in a SQL database (sqlite or postgres) created by
// the migrations package. Row order is preserved through a position column.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type hospitalRow struct {
	Position int64 `db:"position"`
	domain.Hospital
}

type orderRow struct {
	Position      int64          `db:"position"`
	OrderID       string         `db:"order_id"`
	OrderFrom     string         `db:"order_from"`
	OrderReceived string         `db:"order_received"`
	DrugName      string         `db:"drug_name"`
	Quantity      int64          `db:"quantity"`
	Received      sql.NullString `db:"received"`
	Confirmed     sql.NullString `db:"confirmed"`
	Packed        sql.NullString `db:"packed"`
	Dispatched    sql.NullString `db:"dispatched"`
	Delivered     sql.NullString `db:"delivered"`
	FinalStatus   string         `db:"final_status"`
}

type inventoryRow struct {
	Position     int64  `db:"position"`
	Name         string `db:"name"`
	Quantity     int64  `db:"quantity"`
	ExpiryDate   string `db:"expiry_date"`
	PricePerUnit string `db:"price_per_unit"`
}

func (s *SQLStore) Load(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot

	var hospitals []hospitalRow
	if err := s.db.SelectContext(ctx, &hospitals, `SELECT position, hospital_id, hospital_name, place, address, phone, email FROM hospitals ORDER BY position`); err != nil {
		return snap, fmt.Errorf("load hospitals: %w", err)
	}
	for _, h := range hospitals {
		snap.Hospitals = append(snap.Hospitals, h.Hospital)
	}

	var orders []orderRow
	if err := s.db.SelectContext(ctx, &orders, `SELECT position, order_id, order_from, order_received, drug_name, quantity, received, confirmed, packed, dispatched, delivered, final_status FROM orders ORDER BY position`); err != nil {
		return snap, fmt.Errorf("load orders: %w", err)
	}
	for _, row := range orders {
		line, err := row.line()
		if err != nil {
			return snap, fmt.Errorf("load order %s/%s: %w", row.OrderID, row.DrugName, err)
		}
		snap.Orders = append(snap.Orders, line)
	}

	var inventory []inventoryRow
	if err := s.db.SelectContext(ctx, &inventory, `SELECT position, name, quantity, expiry_date, price_per_unit FROM inventory ORDER BY position`); err != nil {
		return snap, fmt.Errorf("load inventory: %w", err)
	}
	for _, row := range inventory {
		item, err := row.item()
		if err != nil {
			return snap, fmt.Errorf("load inventory %s: %w", row.Name, err)
		}
		snap.Inventory = append(snap.Inventory, item)
	}
	return snap, nil
}

func (s *SQLStore) SaveOrders(ctx context.Context, lines []domain.OrderLine) error {
	rows := make([]orderRow, len(lines))
	for i, l := range lines {
		rows[i] = newOrderRow(int64(i), l)
	}
	return replaceAll(ctx, s.db, "orders", `INSERT INTO orders (position, order_id, order_from, order_received, drug_name, quantity, received, confirmed, packed, dispatched, delivered, final_status)
		VALUES (:position, :order_id, :order_from, :order_received, :drug_name, :quantity, :received, :confirmed, :packed, :dispatched, :delivered, :final_status)`, rows)
}

func (s *SQLStore) SaveHospitals(ctx context.Context, hospitals []domain.Hospital) error {
	rows := make([]hospitalRow, len(hospitals))
	for i, h := range hospitals {
		rows[i] = hospitalRow{Position: int64(i), Hospital: h}
	}
	return replaceAll(ctx, s.db, "hospitals", `INSERT INTO hospitals (position, hospital_id, hospital_name, place, address, phone, email)
		VALUES (:position, :hospital_id, :hospital_name, :place, :address, :phone, :email)`, rows)
}

// SaveInventory stores the four known columns; Extra is not kept by SQL backends.
func (s *SQLStore) SaveInventory(ctx context.Context, items []domain.InventoryItem) error {
	rows := make([]inventoryRow, len(items))
	for i, item := range items {
		rows[i] = newInventoryRow(int64(i), item)
	}
	return replaceAll(ctx, s.db, "inventory", `INSERT INTO inventory (position, name, quantity, expiry_date, price_per_unit)
		VALUES (:position, :name, :quantity, :expiry_date, :price_per_unit)`, rows)
}

func (s *SQLStore) Consumption(ctx context.Context) ([]domain.ConsumptionRecord, error) {
	var records []domain.ConsumptionRecord
	if err := s.db.SelectContext(ctx, &records, `SELECT name, usage_amount FROM consumption ORDER BY position`); err != nil {
		return nil, fmt.Errorf("load consumption: %w", err)
	}
	return records, nil
}

func replaceAll[T any](ctx context.Context, db *sqlx.DB, table, insert string, rows []T) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
			return fmt.Errorf("save %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	return nil
}

func newOrderRow(position int64, l domain.OrderLine) orderRow {
	return orderRow{
		Position:      position,
		OrderID:       l.OrderID,
		OrderFrom:     l.OrderFrom,
		OrderReceived: formatDate(l.OrderReceived),
		DrugName:      l.DrugName,
		Quantity:      l.Quantity,
		Received:      nullTimestamp(l.Received),
		Confirmed:     nullTimestamp(l.Confirmed),
		Packed:        nullTimestamp(l.Packed),
		Dispatched:    nullTimestamp(l.Dispatched),
		Delivered:     nullTimestamp(l.Delivered),
		FinalStatus:   string(l.FinalStatus),
	}
}

func (r orderRow) line() (domain.OrderLine, error) {
	line := domain.OrderLine{
		OrderID:   r.OrderID,
		OrderFrom: r.OrderFrom,
		DrugName:  r.DrugName,
		Quantity:  r.Quantity,
	}
	var err error
	if line.OrderReceived, err = parseDate(r.OrderReceived); err != nil {
		return line, err
	}
	stamps := []sql.NullString{r.Received, r.Confirmed, r.Packed, r.Dispatched, r.Delivered}
	for i, status := range domain.Statuses {
		at, err := parseTimestamp(stamps[i].String)
		if err != nil {
			return line, fmt.Errorf("%s: %w", status, err)
		}
		if at != nil {
			line.Stamp(status, *at)
		}
	}
	line.FinalStatus = domain.Status(r.FinalStatus)
	return line, nil
}

func newInventoryRow(position int64, item domain.InventoryItem) inventoryRow {
	return inventoryRow{
		Position:     position,
		Name:         item.Name,
		Quantity:     item.Quantity,
		ExpiryDate:   formatDate(item.ExpiryDate),
		PricePerUnit: item.PricePerUnit.String(),
	}
}

func (r inventoryRow) item() (domain.InventoryItem, error) {
	item := domain.InventoryItem{Name: r.Name, Quantity: r.Quantity}
	var err error
	if item.ExpiryDate, err = parseDate(r.ExpiryDate); err != nil {
		return item, err
	}
	if r.PricePerUnit != "" {
		if item.PricePerUnit, err = decimal.NewFromString(r.PricePerUnit); err != nil {
			return item, err
		}
	}
	return item, nil
}

func nullTimestamp(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTimestamp(t), Valid: true}
}
