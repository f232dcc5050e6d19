package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStats is the default Stats implementation, backed by a
// dedicated prometheus.Registry so metric registration failures (e.g. in
// tests constructing multiple instances) never collide with the global
// default registry.
type PrometheusStats struct {
	registry *prometheus.Registry

	sent            *prometheus.CounterVec
	received        *prometheus.CounterVec
	replySkipped    *prometheus.CounterVec
	allocExhausted  *prometheus.CounterVec
	schedQueueDepth prometheus.Gauge
	taskFailed      prometheus.Counter
}

// NewPrometheusStats creates a PrometheusStats with its own registry and
// registers all collectors.
func NewPrometheusStats() *PrometheusStats {
	registry := prometheus.NewRegistry()

	s := &PrometheusStats{
		registry: registry,
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scosc_messages_sent_total",
			Help: "OSC messages sent, by address.",
		}, []string{"address"}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scosc_messages_received_total",
			Help: "OSC messages received, by address.",
		}, []string{"address"}),
		replySkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scosc_reply_skipped_total",
			Help: "Stale reply-queue items dropped by the skip policy, by address.",
		}, []string{"address"}),
		allocExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scosc_alloc_exhausted_total",
			Help: "ErrExhausted returns, by allocator kind.",
		}, []string{"kind"}),
		schedQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scosc_sched_queue_depth",
			Help: "Pending (not yet due) tasks in the timed dispatch queue.",
		}),
		taskFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scosc_sched_task_failed_total",
			Help: "Scheduler tasks that returned an error or panicked.",
		}),
	}

	registry.MustRegister(s.sent, s.received, s.replySkipped, s.allocExhausted, s.schedQueueDepth, s.taskFailed)
	return s
}

func (s *PrometheusStats) IncSent(address string)         { s.sent.WithLabelValues(address).Inc() }
func (s *PrometheusStats) IncReceived(address string)     { s.received.WithLabelValues(address).Inc() }
func (s *PrometheusStats) IncReplySkipped(address string) { s.replySkipped.WithLabelValues(address).Inc() }
func (s *PrometheusStats) IncAllocExhausted(kind string)  { s.allocExhausted.WithLabelValues(kind).Inc() }
func (s *PrometheusStats) SetSchedQueueDepth(n int)       { s.schedQueueDepth.Set(float64(n)) }
func (s *PrometheusStats) IncTaskFailed()                 { s.taskFailed.Inc() }

// Registry returns the underlying registry, for wiring into an HTTP
// exporter or a test assertion via prometheus/testutil.
func (s *PrometheusStats) Registry() *prometheus.Registry {
	return s.registry
}
