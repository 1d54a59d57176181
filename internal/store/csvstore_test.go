package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"drugtrack/m/domain"
)

func testPaths(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		Orders:      filepath.Join(dir, "orders.csv"),
		Hospitals:   filepath.Join(dir, "hospitals.csv"),
		Inventory:   filepath.Join(dir, "data", "inventory_dataset.csv"),
		Consumption: filepath.Join(dir, "data", "consumption_dataset.csv"),
	}
}

func writeFixture(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCSVStoreLoadInitialisesTables(t *testing.T) {
	paths := testPaths(t)
	snap, err := NewCSVStore(paths).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Orders) != 0 || len(snap.Hospitals) != 0 || len(snap.Inventory) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
	for _, p := range []string{paths.Orders, paths.Hospitals} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s not created: %v", p, err)
		}
	}
	records, err := NewCSVStore(paths).Consumption(context.Background())
	if err != nil || len(records) != 0 {
		t.Fatalf("absent consumption should read empty: %v %v", records, err)
	}
}

func TestCSVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	paths := testPaths(t)
	writeFixture(t, paths.Inventory, "name,quantity,expiry_date,price_per_unit,batch\n"+
		"Paracetamol,120.0,2025-01-31,2.5,B-7\n"+
		"Ibuprofen,40,nan,3.50,B-9\n")
	writeFixture(t, paths.Consumption, "name,usage\nParacetamol,10.5\nIbuprofen,\n")
	s := NewCSVStore(paths)

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Inventory[0].Quantity != 120 || !snap.Inventory[0].PricePerUnit.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected inventory %+v", snap.Inventory[0])
	}
	if !snap.Inventory[1].ExpiryDate.IsZero() {
		t.Fatalf("blank expiry should be zero, got %v", snap.Inventory[1].ExpiryDate)
	}

	received := time.Date(2024, 5, 1, 9, 15, 0, 0, time.Local)
	packed := received.Add(3 * time.Hour)
	line := domain.OrderLine{
		OrderID:       "ORD-1",
		OrderFrom:     "City General",
		OrderReceived: time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local),
		DrugName:      "Paracetamol",
		Quantity:      12,
	}
	line.Stamp(domain.StatusPacked, packed)
	line.Stamp(domain.StatusReceived, received)

	snap.Inventory[0].Quantity = 108
	hospitals := []domain.Hospital{{ID: "H1", Name: "City General", Place: "Downtown", Email: "a@b.example"}}
	if err := s.SaveOrders(ctx, []domain.OrderLine{line}); err != nil {
		t.Fatalf("save orders: %v", err)
	}
	if err := s.SaveHospitals(ctx, hospitals); err != nil {
		t.Fatalf("save hospitals: %v", err)
	}
	if err := s.SaveInventory(ctx, snap.Inventory); err != nil {
		t.Fatalf("save inventory: %v", err)
	}

	got, err := NewCSVStore(paths).Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got.Orders) != 1 {
		t.Fatalf("orders = %d", len(got.Orders))
	}
	o := got.Orders[0]
	if o.Quantity != 12 || o.OrderFrom != "City General" || !o.OrderReceived.Equal(line.OrderReceived) {
		t.Fatalf("unexpected order %+v", o)
	}
	if o.Packed == nil || !o.Packed.Equal(packed) || o.Received == nil || !o.Received.Equal(received) {
		t.Fatalf("stamps not preserved: %+v", o)
	}
	if o.FinalStatus != domain.StatusReceived {
		t.Fatalf("recorded final status should win, got %s", o.FinalStatus)
	}
	if o.Confirmed != nil || o.Dispatched != nil || o.Delivered != nil {
		t.Fatalf("unset stamps should stay empty: %+v", o)
	}
	if got.Hospitals[0] != hospitals[0] {
		t.Fatalf("hospital mismatch %+v", got.Hospitals[0])
	}
	if got.Inventory[0].Quantity != 108 || got.Inventory[0].Extra["batch"] != "B-7" || got.Inventory[1].Extra["batch"] != "B-9" {
		t.Fatalf("inventory not preserved: %+v", got.Inventory)
	}

	tbl, err := Load(paths.Inventory)
	if err != nil {
		t.Fatalf("load raw: %v", err)
	}
	if len(tbl.Header) != 5 || tbl.Header[4] != "batch" {
		t.Fatalf("column order lost: %v", tbl.Header)
	}

	records, err := s.Consumption(ctx)
	if err != nil {
		t.Fatalf("consumption: %v", err)
	}
	if len(records) != 2 || records[0].Usage != 10.5 || records[1].Usage != 0 {
		t.Fatalf("unexpected consumption %+v", records)
	}
}

func TestCSVStoreMissingColumns(t *testing.T) {
	paths := testPaths(t)
	writeFixture(t, paths.Orders, "Order ID,Drug Name\nORD-1,Paracetamol\n")
	if _, err := NewCSVStore(paths).Load(context.Background()); err == nil {
		t.Fatalf("expected a missing column error")
	}
}

func TestCSVStoreRejectsBadQuantity(t *testing.T) {
	paths := testPaths(t)
	writeFixture(t, paths.Inventory, "name,quantity,expiry_date,price_per_unit\nParacetamol,12.5,,1\n")
	if _, err := NewCSVStore(paths).Load(context.Background()); err == nil {
		t.Fatalf("expected a fractional quantity to be rejected")
	}
}

func TestEncodeInventoryAppendsNewExtraColumns(t *testing.T) {
	items := []domain.InventoryItem{
		{Name: "A", Quantity: 1, Extra: map[string]string{"zone": "3", "batch": "x"}},
	}
	tbl := encodeInventory(items, nil)
	want := []string{"name", "quantity", "expiry_date", "price_per_unit", "batch", "zone"}
	if len(tbl.Header) != len(want) {
		t.Fatalf("header = %v", tbl.Header)
	}
	for i := range want {
		if tbl.Header[i] != want[i] {
			t.Fatalf("header = %v, want %v", tbl.Header, want)
		}
	}
	if tbl.Rows[0][4] != "x" || tbl.Rows[0][5] != "3" || tbl.Rows[0][3] != "0" {
		t.Fatalf("row = %v", tbl.Rows[0])
	}
}

func TestCSVStoreKeepsStampInstantAcrossZones(t *testing.T) {
	ctx := context.Background()
	paths := testPaths(t)
	s := NewCSVStore(paths)

	zone := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2024, 5, 1, 23, 45, 10, 0, zone)
	line := domain.OrderLine{OrderID: "ORD-1", OrderFrom: "City General", DrugName: "Paracetamol", Quantity: 1}
	line.Stamp(domain.StatusDelivered, at)
	if err := s.SaveOrders(ctx, []domain.OrderLine{line}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := NewCSVStore(paths).Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if d := got.Orders[0].Delivered; d == nil || !d.Equal(at) {
		t.Fatalf("delivered = %v, want instant %v", d, at)
	}
}
