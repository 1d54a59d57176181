package monitor

import (
	"testing"
	"time"

	"drugtrack/m/domain"
)

func names(items []domain.InventoryItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func equalNames(t *testing.T, got []domain.InventoryItem, want ...string) {
	t.Helper()
	g := names(got)
	if len(g) != len(want) {
		t.Fatalf("got %v want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("got %v want %v", g, want)
		}
	}
}

func TestLowStockIsStrictlyBelowThreshold(t *testing.T) {
	items := []domain.InventoryItem{
		{Name: "Paracetamol", Quantity: 49},
		{Name: "Ibuprofen", Quantity: 50},
		{Name: "Amoxicillin", Quantity: 0},
		{Name: "Cetirizine", Quantity: -3},
		{Name: "Insulin", Quantity: 500},
	}
	equalNames(t, LowStock(items, 50), "Paracetamol", "Amoxicillin", "Cetirizine")
	equalNames(t, LowStock(items, 0), "Cetirizine")
}

func TestNearExpiryIncludesBoundaryAndExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []domain.InventoryItem{
		{Name: "boundary", ExpiryDate: now.AddDate(0, 0, 90)},
		{Name: "past", ExpiryDate: now.AddDate(-1, 0, 0)},
		{Name: "later", ExpiryDate: now.AddDate(0, 0, 91)},
		{Name: "undated"},
		{Name: "soon", ExpiryDate: now.AddDate(0, 0, 10)},
	}
	equalNames(t, NearExpiry(items, now, 90), "boundary", "past", "soon")
}

func TestEvaluateUsesConfig(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.InventoryItem{
		{Name: "a", Quantity: 10, ExpiryDate: now.AddDate(1, 0, 0)},
		{Name: "b", Quantity: 100, ExpiryDate: now.AddDate(0, 0, 20)},
	}
	alerts := Evaluate(items, now, DefaultConfig())
	equalNames(t, alerts.LowStock, "a")
	equalNames(t, alerts.NearExpiry, "b")
	if alerts.Threshold != 50 || alerts.Horizon != 90 {
		t.Fatalf("unexpected config echo %+v", alerts)
	}

	alerts = Evaluate(items, now, Config{LowStockThreshold: 5, ExpiryHorizonDays: 7})
	if len(alerts.LowStock) != 0 || len(alerts.NearExpiry) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}
