// Package notify publishes order status changes to a message broker.
package notify

import (
	"context"
	"strings"
	"time"

	"drugtrack/m/domain"
)

// StatusEvent announces that a status was stamped on the lines of an order.
type StatusEvent struct {
	OrderID   string        `json:"order_id"`
	Hospital  string        `json:"hospital"`
	Status    domain.Status `json:"status"`
	Drugs     []string      `json:"drugs"`
	NewOrder  bool          `json:"new_order"`
	StampedAt time.Time     `json:"stamped_at"`
}

type Publisher interface {
	PublishStatus(ctx context.Context, ev StatusEvent) error
	Close() error
}

// RoutingKey is "order.status.<status>" in lower case.
func RoutingKey(status domain.Status) string {
	return "order.status." + strings.ToLower(string(status))
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) PublishStatus(context.Context, StatusEvent) error { return nil }
func (Noop) Close() error                                     { return nil }
