package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"drugtrack/m/domain"
	"drugtrack/m/internal/database"
	"drugtrack/m/internal/migrations"
)

func openSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSQLStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	s := NewSQLStore(db)

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(snap.Orders)+len(snap.Hospitals)+len(snap.Inventory) != 0 {
		t.Fatalf("expected empty tables, got %+v", snap)
	}

	at := time.Date(2024, 5, 2, 14, 0, 0, 0, time.Local)
	lines := []domain.OrderLine{
		{OrderID: "ORD-2", OrderFrom: "City General", OrderReceived: time.Date(2024, 5, 2, 0, 0, 0, 0, time.Local), DrugName: "Ibuprofen", Quantity: 3},
		{OrderID: "ORD-1", OrderFrom: "City General", OrderReceived: time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local), DrugName: "Paracetamol", Quantity: 7},
	}
	lines[0].Stamp(domain.StatusConfirmed, at)
	lines[1].Stamp(domain.StatusReceived, at)
	inventory := []domain.InventoryItem{
		{Name: "Paracetamol", Quantity: 93, ExpiryDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), PricePerUnit: decimal.RequireFromString("2.00")},
		{Name: "Ibuprofen", Quantity: 77, PricePerUnit: decimal.RequireFromString("3.5"), Extra: map[string]string{"batch": "x"}},
	}
	hospitals := []domain.Hospital{{ID: "H1", Name: "City General", Phone: "555"}}

	if err := s.SaveOrders(ctx, lines); err != nil {
		t.Fatalf("save orders: %v", err)
	}
	if err := s.SaveInventory(ctx, inventory); err != nil {
		t.Fatalf("save inventory: %v", err)
	}
	if err := s.SaveHospitals(ctx, hospitals); err != nil {
		t.Fatalf("save hospitals: %v", err)
	}
	// Saving twice replaces rather than appends.
	if err := s.SaveOrders(ctx, lines); err != nil {
		t.Fatalf("save orders again: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Orders) != 2 || got.Orders[0].OrderID != "ORD-2" || got.Orders[1].OrderID != "ORD-1" {
		t.Fatalf("row order not preserved: %+v", got.Orders)
	}
	if got.Orders[0].Confirmed == nil || !got.Orders[0].Confirmed.Equal(at) || got.Orders[0].Received != nil {
		t.Fatalf("stamps not preserved: %+v", got.Orders[0])
	}
	if got.Orders[0].FinalStatus != domain.StatusConfirmed {
		t.Fatalf("final status = %s", got.Orders[0].FinalStatus)
	}
	if !got.Inventory[0].ExpiryDate.Equal(inventory[0].ExpiryDate) || !got.Inventory[1].ExpiryDate.IsZero() {
		t.Fatalf("expiry dates not preserved: %+v", got.Inventory)
	}
	if !got.Inventory[1].PricePerUnit.Equal(decimal.RequireFromString("3.50")) || got.Inventory[1].Extra != nil {
		t.Fatalf("unexpected inventory %+v", got.Inventory[1])
	}
	if len(got.Hospitals) != 1 || got.Hospitals[0] != hospitals[0] {
		t.Fatalf("unexpected hospitals %+v", got.Hospitals)
	}
}

func TestSQLStoreConsumption(t *testing.T) {
	db := openSQLite(t)
	if _, err := db.Exec(`INSERT INTO consumption (position, name, usage_amount) VALUES (1, 'Ibuprofen', 4.5), (0, 'Paracetamol', 12)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	records, err := NewSQLStore(db).Consumption(context.Background())
	if err != nil {
		t.Fatalf("consumption: %v", err)
	}
	if len(records) != 2 || records[0].Name != "Paracetamol" || records[1].Usage != 4.5 {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestSQLStoreKeepsStampInstantAcrossZones(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(openSQLite(t))

	at := time.Date(2024, 5, 1, 2, 0, 0, 0, time.FixedZone("PDT", -7*3600))
	line := domain.OrderLine{OrderID: "ORD-1", DrugName: "Paracetamol", Quantity: 1}
	line.Stamp(domain.StatusPacked, at)
	if err := s.SaveOrders(ctx, []domain.OrderLine{line}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p := got.Orders[0].Packed; p == nil || !p.Equal(at) {
		t.Fatalf("packed = %v, want instant %v", p, at)
	}
}
