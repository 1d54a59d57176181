// Package metrics exposes workflow counters and stock gauges to prometheus.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "drugtrack"

type Recorder struct {
	ordersSubmitted    prometheus.Counter
	statusUpdates      *prometheus.CounterVec
	hospitalsAdmitted  prometheus.Counter
	hospitalRejections *prometheus.CounterVec
	saveFailures       *prometheus.CounterVec
	lowStock           prometheus.Gauge
	nearExpiry         prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		ordersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "New-order submissions accepted by the workflow.",
		}),
		statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_updates_total",
			Help:      "Orders stamped with a status, by status.",
		}, []string{"status"}),
		hospitalsAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hospitals_admitted_total",
			Help:      "Hospitals added to the hospital table.",
		}),
		hospitalRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hospital_rejections_total",
			Help:      "Blocked hospital onboarding attempts, by reason.",
		}, []string{"reason"}),
		saveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_save_failures_total",
			Help:      "Failed table writes, by table.",
		}, []string{"table"}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_low_stock_items",
			Help:      "Inventory items below the low-stock threshold at the last evaluation.",
		}),
		nearExpiry: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_near_expiry_items",
			Help:      "Inventory items inside the expiry horizon at the last evaluation.",
		}),
	}
	reg.MustRegister(r.ordersSubmitted, r.statusUpdates, r.hospitalsAdmitted, r.hospitalRejections,
		r.saveFailures, r.lowStock, r.nearExpiry)
	return r
}

func (r *Recorder) OrderSubmitted() {
	if r == nil {
		return
	}
	r.ordersSubmitted.Inc()
}

func (r *Recorder) StatusUpdated(status string) {
	if r == nil {
		return
	}
	r.statusUpdates.WithLabelValues(status).Inc()
}

func (r *Recorder) HospitalAdmitted() {
	if r == nil {
		return
	}
	r.hospitalsAdmitted.Inc()
}

func (r *Recorder) HospitalRejected(reason string) {
	if r == nil {
		return
	}
	r.hospitalRejections.WithLabelValues(reason).Inc()
}

func (r *Recorder) SaveFailed(table string) {
	if r == nil {
		return
	}
	r.saveFailures.WithLabelValues(table).Inc()
}

func (r *Recorder) Alerts(lowStock, nearExpiry int) {
	if r == nil {
		return
	}
	r.lowStock.Set(float64(lowStock))
	r.nearExpiry.Set(float64(nearExpiry))
}
