// Package metrics exposes simulation counters as Prometheus collectors.
package metrics

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/viant/kaiten/model"
	"github.com/viant/kaiten/service/admission"
	"github.com/viant/kaiten/service/group"
	"github.com/viant/kaiten/service/ledger"
)

const namespace = "kaiten"

var (
	dishesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dishes_total",
			Help:      "Plates by colour and outcome (produced, sold, wasted).",
		},
		[]string{"color", "outcome"},
	)
	revenueCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Money paid by departing groups.",
		},
	)
	queueGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Groups waiting for a table by class.",
		},
		[]string{"class"},
	)
	guestsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seated_guests",
			Help:      "Guests currently seated, all and VIP only.",
		},
		[]string{"kind"},
	)
	visitsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_total",
			Help:      "Group lifecycle transitions by state.",
		},
		[]string{"state"},
	)
	visitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "visit_duration_seconds",
			Help:      "Time from arrival to departure by final state.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"state"},
	)
)

var registerMetrics sync.Once

// Register all metrics with reg; only the first call has an effect.
func Register(reg prometheus.Registerer) {
	registerMetrics.Do(func() {
		reg.MustRegister(dishesCounter, revenueCounter, queueGauge, guestsGauge, visitsCounter, visitDuration)
	})
}

// RecordDelta is a ledger change callback.
func RecordDelta(d ledger.Delta, _ ledger.Snapshot) {
	if d.Color.Valid() {
		color := d.Color.String()
		if d.Produced > 0 {
			dishesCounter.WithLabelValues(color, "produced").Add(float64(d.Produced))
		}
		if d.Sold > 0 {
			dishesCounter.WithLabelValues(color, "sold").Add(float64(d.Sold))
		}
		if d.Wasted > 0 {
			dishesCounter.WithLabelValues(color, "wasted").Add(float64(d.Wasted))
		}
	}
	if d.Revenue > 0 {
		revenueCounter.Add(float64(d.Revenue))
	}
}

// RecordQueue is an admission queue observer.
func RecordQueue(class admission.Class, length int) {
	queueGauge.WithLabelValues(class.String()).Set(float64(length))
}

// RecordGuests is a seating observer.
func RecordGuests(guests, vips int) {
	guestsGauge.WithLabelValues("all").Set(float64(guests))
	guestsGauge.WithLabelValues("vip").Set(float64(vips))
}

// RecordVisit is a group lifecycle listener.
func RecordVisit(_ model.GroupID, st group.State) {
	visitsCounter.WithLabelValues(st.String()).Inc()
}

// RecordVisitDuration observes how long an ended visit took, by final state.
func RecordVisitDuration(final group.State, d time.Duration) {
	visitDuration.WithLabelValues(final.String()).Observe(d.Seconds())
}

// Write encodes every metric family gathered from g in the text exposition format.
func Write(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err = encoder.Encode(family); err != nil {
			return err
		}
	}
	return nil
}
