package domain

import "time"

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// OrderLine is one (order id, drug) pairing. An order is the set of lines
// sharing an OrderID.
type OrderLine struct {
	OrderID       string     `json:"order_id"`
	OrderFrom     string     `json:"order_from"`
	OrderReceived time.Time  `json:"order_received"`
	DrugName      string     `json:"drug_name"`
	Quantity      int64      `json:"quantity"`
	Received      *time.Time `json:"received,omitempty"`
	Confirmed     *time.Time `json:"confirmed,omitempty"`
	Packed        *time.Time `json:"packed,omitempty"`
	Dispatched    *time.Time `json:"dispatched,omitempty"`
	Delivered     *time.Time `json:"delivered,omitempty"`
	FinalStatus   Status     `json:"final_status,omitempty"`
}

// StampOf returns the timestamp recorded for status s, nil when unset.
func (l OrderLine) StampOf(s Status) *time.Time {
	switch s {
	case StatusReceived:
		return l.Received
	case StatusConfirmed:
		return l.Confirmed
	case StatusPacked:
		return l.Packed
	case StatusDispatched:
		return l.Dispatched
	case StatusDelivered:
		return l.Delivered
	}
	return nil
}

// Stamp records at as the time of status s and makes s the final status.
func (l *OrderLine) Stamp(s Status, at time.Time) {
	t := at
	switch s {
	case StatusReceived:
		l.Received = &t
	case StatusConfirmed:
		l.Confirmed = &t
	case StatusPacked:
		l.Packed = &t
	case StatusDispatched:
		l.Dispatched = &t
	case StatusDelivered:
		l.Delivered = &t
	default:
		return
	}
	l.FinalStatus = s
}
