package domain

import (
	"fmt"
	"strings"
)

// Status is one step of the order line lifecycle.
type Status string

const (
	StatusReceived   Status = "Received"
	StatusConfirmed  Status = "Confirmed"
	StatusPacked     Status = "Packed"
	StatusDispatched Status = "Dispatched"
	StatusDelivered  Status = "Delivered"
)

// Statuses lists every status in forward order.
var Statuses = []Status{StatusReceived, StatusConfirmed, StatusPacked, StatusDispatched, StatusDelivered}

// Rank is the position of s in the forward order, or -1 for an unknown status.
func (s Status) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Valid() bool { return s.Rank() >= 0 }

func ParseStatus(s string) (Status, error) {
	trimmed := strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(string(st), trimmed) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}
