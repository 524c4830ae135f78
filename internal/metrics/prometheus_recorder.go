package metrics

import (
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "wristrelay"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	inbound        *prom.CounterVec
	decodeFailures *prom.CounterVec
	dropped        *prom.CounterVec
	outbound       *prom.CounterVec
	evictions      prom.Counter
	vibrations     *prom.CounterVec
	screenCloses   *prom.CounterVec
	freeBudget     prom.Gauge
	storedRecords  prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.inbound = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_messages_total",
			Help:      "Decoded inbound messages by kind",
		}, []string{"kind"})
		pr.decodeFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Inbound messages dropped because they could not be decoded",
		}, []string{"reason"})
		pr.dropped = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_id_messages_total",
			Help:      "Inbound messages ignored because their notification id is not stored",
		}, []string{"kind"})
		pr.outbound = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "outbound_messages_total",
			Help:      "Outbound sends by kind and result",
		}, []string{"kind", "result"})
		pr.evictions = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Records evicted to make room for new notifications",
		})
		pr.vibrations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "vibrations_total",
			Help:      "Vibrations started by kind",
		}, []string{"kind"})
		pr.screenCloses = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "screen_closes_total",
			Help:      "Notification screen closes by reason",
		}, []string{"reason"})
		pr.freeBudget = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "free_budget_bytes",
			Help:      "Unused notification memory budget",
		})
		pr.storedRecords = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_records",
			Help:      "Notifications currently held in the slot store",
		})
		reg.MustRegister(pr.inbound, pr.decodeFailures, pr.dropped, pr.outbound, pr.evictions,
			pr.vibrations, pr.screenCloses, pr.freeBudget, pr.storedRecords)
	})
	return pr
}

func (p *PrometheusRecorder) IncInbound(kind string) {
	if p == nil || p.inbound == nil {
		return
	}
	p.inbound.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncDecodeFailure(reason string) {
	if p == nil || p.decodeFailures == nil {
		return
	}
	p.decodeFailures.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncDropped(kind string) {
	if p == nil || p.dropped == nil {
		return
	}
	p.dropped.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncOutbound(kind string, result ResultLabel) {
	if p == nil || p.outbound == nil {
		return
	}
	p.outbound.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) AddEvictions(n int) {
	if p == nil || p.evictions == nil || n <= 0 {
		return
	}
	p.evictions.Add(float64(n))
}

func (p *PrometheusRecorder) IncVibration(kind string) {
	if p == nil || p.vibrations == nil {
		return
	}
	p.vibrations.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncScreenClose(reason string) {
	if p == nil || p.screenCloses == nil {
		return
	}
	p.screenCloses.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) SetFreeBudget(n int) {
	if p == nil || p.freeBudget == nil {
		return
	}
	p.freeBudget.Set(float64(n))
}

func (p *PrometheusRecorder) SetStoredRecords(n int) {
	if p == nil || p.storedRecords == nil {
		return
	}
	p.storedRecords.Set(float64(n))
}
