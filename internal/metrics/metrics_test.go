package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.OrderSubmitted()
	r.OrderSubmitted()
	r.StatusUpdated("Packed")
	r.StatusUpdated("Packed")
	r.StatusUpdated("Received")
	r.HospitalAdmitted()
	r.HospitalRejected("duplicate")
	r.SaveFailed("orders")
	r.Alerts(4, 2)

	if got := testutil.ToFloat64(r.ordersSubmitted); got != 2 {
		t.Fatalf("orders submitted = %v", got)
	}
	if got := testutil.ToFloat64(r.statusUpdates.WithLabelValues("Packed")); got != 2 {
		t.Fatalf("status updates = %v", got)
	}
	if got := testutil.ToFloat64(r.hospitalRejections.WithLabelValues("duplicate")); got != 1 {
		t.Fatalf("rejections = %v", got)
	}
	if got := testutil.ToFloat64(r.saveFailures.WithLabelValues("orders")); got != 1 {
		t.Fatalf("save failures = %v", got)
	}
	if got := testutil.ToFloat64(r.lowStock); got != 4 {
		t.Fatalf("low stock gauge = %v", got)
	}
	if got := testutil.ToFloat64(r.nearExpiry); got != 2 {
		t.Fatalf("near expiry gauge = %v", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.OrderSubmitted()
	r.StatusUpdated("Received")
	r.HospitalAdmitted()
	r.HospitalRejected("pending")
	r.SaveFailed("inventory")
	r.Alerts(1, 1)
}
