// Package monitor derives stock alerts from an inventory snapshot.
package monitor

import (
	"time"

	"drugtrack/m/domain"
)

const (
	DefaultLowStockThreshold = 50
	DefaultExpiryHorizonDays = 90
)

type Config struct {
	LowStockThreshold int64
	ExpiryHorizonDays int
}

func DefaultConfig() Config {
	return Config{LowStockThreshold: DefaultLowStockThreshold, ExpiryHorizonDays: DefaultExpiryHorizonDays}
}

// Alerts holds both alert subsets for one snapshot.
type Alerts struct {
	LowStock   []domain.InventoryItem `json:"low_stock"`
	NearExpiry []domain.InventoryItem `json:"near_expiry"`
	Threshold  int64                  `json:"threshold"`
	Horizon    int                    `json:"horizon_days"`
}

// LowStock returns the items whose quantity is strictly below threshold.
func LowStock(items []domain.InventoryItem, threshold int64) []domain.InventoryItem {
	out := []domain.InventoryItem{}
	for _, item := range items {
		if item.Quantity < threshold {
			out = append(out, item)
		}
	}
	return out
}

// NearExpiry returns the items expiring on or before now plus horizonDays.
// Items already past expiry are included; items without a date are not.
func NearExpiry(items []domain.InventoryItem, now time.Time, horizonDays int) []domain.InventoryItem {
	limit := now.AddDate(0, 0, horizonDays)
	out := []domain.InventoryItem{}
	for _, item := range items {
		if item.ExpiryDate.IsZero() {
			continue
		}
		if !item.ExpiryDate.After(limit) {
			out = append(out, item)
		}
	}
	return out
}

func Evaluate(items []domain.InventoryItem, now time.Time, cfg Config) Alerts {
	return Alerts{
		LowStock:   LowStock(items, cfg.LowStockThreshold),
		NearExpiry: NearExpiry(items, now, cfg.ExpiryHorizonDays),
		Threshold:  cfg.LowStockThreshold,
		Horizon:    cfg.ExpiryHorizonDays,
	}
}
