package workflow

import (
	"errors"
	"testing"

	"drugtrack/m/domain"
)

func TestLenientAllowsOutOfOrderStatuses(t *testing.T) {
	e := NewEngine(Lenient{})
	snap := submit(t, e, fixture(), NewOrder{
		OrderID:  "ORD-1",
		Hospital: "City General",
		Items:    []Item{{Drug: "Paracetamol", Quantity: 1}},
		Status:   domain.StatusDelivered,
	}, testNow).Snapshot
	if snap.Orders[0].Received != nil || snap.Orders[0].Delivered == nil {
		t.Fatalf("delivered should be stamped alone: %+v", snap.Orders[0])
	}
	res, err := e.UpdateStatus(snap, "ORD-1", domain.StatusReceived, testNow)
	if err != nil {
		t.Fatalf("lenient policy refused a backwards status: %v", err)
	}
	if res.Lines[0].FinalStatus != domain.StatusReceived {
		t.Fatalf("final status = %s", res.Lines[0].FinalStatus)
	}
}

func TestForwardOnlyRejectsRegression(t *testing.T) {
	p := ForwardOnly{}
	line := domain.OrderLine{OrderID: "ORD-1", DrugName: "Paracetamol", FinalStatus: domain.StatusPacked}
	if err := p.Allow(line, domain.StatusConfirmed); !errors.Is(err, ErrStatusRegression) {
		t.Fatalf("expected regression error, got %v", err)
	}
	for _, next := range []domain.Status{domain.StatusPacked, domain.StatusDispatched, domain.StatusDelivered} {
		if err := p.Allow(line, next); err != nil {
			t.Fatalf("%s should be allowed: %v", next, err)
		}
	}
	if err := p.Allow(domain.OrderLine{}, domain.StatusReceived); err != nil {
		t.Fatalf("fresh line should accept any status: %v", err)
	}
}

func TestForwardOnlyGuardsWorkflowPaths(t *testing.T) {
	e := NewEngine(ForwardOnly{})
	snap := submit(t, e, fixture(), NewOrder{
		OrderID:  "ORD-1",
		Hospital: "City General",
		Items:    []Item{{Drug: "Paracetamol", Quantity: 1}},
		Status:   domain.StatusPacked,
	}, testNow).Snapshot

	if _, err := e.UpdateStatus(snap, "ORD-1", domain.StatusReceived, testNow); !errors.Is(err, ErrStatusRegression) {
		t.Fatalf("expected regression on update, got %v", err)
	}
	_, err := e.SubmitOrder(snap, NewOrder{
		OrderID:  "ORD-1",
		Hospital: "City General",
		Items:    []Item{{Drug: "Paracetamol", Quantity: 2}},
		Status:   domain.StatusConfirmed,
	}, testNow)
	if !errors.Is(err, ErrStatusRegression) {
		t.Fatalf("expected regression on resubmission, got %v", err)
	}
}
