package domain

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"Packed", "packed", " PACKED "} {
		s, err := ParseStatus(in)
		if err != nil || s != StatusPacked {
			t.Fatalf("ParseStatus(%q) = %q, %v", in, s, err)
		}
	}
	if _, err := ParseStatus("Shipped"); err == nil {
		t.Fatalf("expected an error for an unknown status")
	}
}

func TestStatusRank(t *testing.T) {
	for i, s := range Statuses {
		if s.Rank() != i || !s.Valid() {
			t.Fatalf("%s rank = %d", s, s.Rank())
		}
	}
	if Status("Lost").Valid() {
		t.Fatalf("unknown status reported valid")
	}
}

func TestStampSetsFinalStatus(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var l OrderLine
	l.Stamp(StatusDispatched, at)
	at = at.Add(time.Hour)
	if l.Dispatched == nil || !l.Dispatched.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("stamp should hold its own copy: %v", l.Dispatched)
	}
	if l.FinalStatus != StatusDispatched || l.StampOf(StatusReceived) != nil {
		t.Fatalf("unexpected line %+v", l)
	}
	l.Stamp(Status("Lost"), at)
	if l.FinalStatus != StatusDispatched {
		t.Fatalf("unknown status changed the line")
	}
}

func TestParseVerification(t *testing.T) {
	cases := map[string]VerificationStatus{
		"":         VerificationPending,
		"pending":  VerificationPending,
		"Verified": VerificationVerified,
		"REJECTED": VerificationRejected,
	}
	for in, want := range cases {
		got, err := ParseVerification(in)
		if err != nil || got != want {
			t.Fatalf("ParseVerification(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseVerification("maybe"); err == nil {
		t.Fatalf("expected an error")
	}
}
