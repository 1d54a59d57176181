package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	Name         string          `json:"name"`
	Quantity     int64           `json:"quantity"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	// Extra holds dataset columns beyond the four the workflow reads, keyed
	// by header name, so they survive a save.
	Extra map[string]string `json:"extra,omitempty"`
}
