package workflow

import (
	"fmt"
	"time"

	"drugtrack/m/domain"
)

type Checkpoint struct {
	Status domain.Status `json:"status"`
	Done   bool          `json:"done"`
	At     *time.Time    `json:"at,omitempty"`
}

// Tracking is the progress view of one order. Header fields and checkpoints
// come from the order's first line.
type Tracking struct {
	OrderID       string             `json:"order_id"`
	OrderFrom     string             `json:"order_from"`
	OrderReceived time.Time          `json:"order_received"`
	FinalStatus   domain.Status      `json:"final_status"`
	Checkpoints   []Checkpoint       `json:"checkpoints"`
	Lines         []domain.OrderLine `json:"lines"`
}

func TrackOrder(snap domain.Snapshot, orderID string) (Tracking, error) {
	lines := linesOf(snap.Orders, orderID)
	if len(lines) == 0 {
		return Tracking{}, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}
	first := lines[0]
	t := Tracking{
		OrderID:       orderID,
		OrderFrom:     first.OrderFrom,
		OrderReceived: first.OrderReceived,
		FinalStatus:   first.FinalStatus,
		Lines:         lines,
	}
	for _, status := range domain.Statuses {
		at := first.StampOf(status)
		t.Checkpoints = append(t.Checkpoints, Checkpoint{Status: status, Done: at != nil, At: at})
	}
	return t, nil
}

// OrderIDs lists the distinct order ids in first-seen order.
func OrderIDs(snap domain.Snapshot) []string {
	seen := make(map[string]bool)
	ids := []string{}
	for _, l := range snap.Orders {
		if !seen[l.OrderID] {
			seen[l.OrderID] = true
			ids = append(ids, l.OrderID)
		}
	}
	return ids
}
