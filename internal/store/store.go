// Package store persists the hospital, order and inventory tables and reads
// the display-only consumption dataset.
package store

import (
	"context"

	"drugtrack/m/domain"
)

// Store is the Record Store contract shared by the CSV and SQL backends.
// Saves overwrite the whole table; nothing is retried.
type Store interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	SaveOrders(ctx context.Context, lines []domain.OrderLine) error
	SaveHospitals(ctx context.Context, hospitals []domain.Hospital) error
	SaveInventory(ctx context.Context, items []domain.InventoryItem) error
	Consumption(ctx context.Context) ([]domain.ConsumptionRecord, error)
}
