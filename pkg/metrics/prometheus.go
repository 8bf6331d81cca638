package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the engine's Prometheus metrics. One instance per
// process; collectors are registered on the default registry.
type Recorder struct {
	signalsTotal *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	tickSeconds  prometheus.Histogram
	broadcasts   prometheus.Counter
	delivered    prometheus.Counter
}

// NewRecorder registers and returns the engine metrics.
func NewRecorder() *Recorder {
	return &Recorder{
		signalsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_signals_total",
				Help: "Signals emitted, by kind and symbol",
			},
			[]string{"kind", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinpulse_errors_total",
				Help: "Engine errors, by stage",
			},
			[]string{"stage"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "coinpulse_last_price",
				Help: "Last observed price per symbol",
			},
			[]string{"symbol"},
		),
		tickSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "coinpulse_tick_duration_seconds",
				Help:    "Monitor tick duration",
				Buckets: prometheus.DefBuckets,
			},
		),
		broadcasts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "coinpulse_broadcasts_total",
				Help: "Broadcast rounds performed",
			},
		),
		delivered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "coinpulse_broadcast_messages_total",
				Help: "Broadcast messages delivered",
			},
		),
	}
}

func (r *Recorder) RecordSignal(kind, symbol string) {
	r.signalsTotal.WithLabelValues(kind, symbol).Inc()
}

func (r *Recorder) RecordError(stage string) {
	r.errorsTotal.WithLabelValues(stage).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordTickDuration(seconds float64) {
	r.tickSeconds.Observe(seconds)
}

func (r *Recorder) RecordBroadcast(delivered int) {
	r.broadcasts.Inc()
	r.delivered.Add(float64(delivered))
}

// Nop is a no-op recorder for tests.
type Nop struct{}

func (Nop) RecordSignal(string, string)     {}
func (Nop) RecordError(string)              {}
func (Nop) RecordLastPrice(string, float64) {}
func (Nop) RecordTickDuration(float64)      {}
func (Nop) RecordBroadcast(int)             {}
