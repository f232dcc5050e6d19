package stats

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestIncSentIncrementsLabeledCounter(t *testing.T) {
	s := NewPrometheusStats()
	s.IncSent("/status")
	s.IncSent("/status")
	s.IncSent("/sync")

	require.Equal(t, float64(2), testutil.ToFloat64(s.sent.WithLabelValues("/status")))
	require.Equal(t, float64(1), testutil.ToFloat64(s.sent.WithLabelValues("/sync")))
}

func TestSetSchedQueueDepthSetsGauge(t *testing.T) {
	s := NewPrometheusStats()
	s.SetSchedQueueDepth(7)
	require.Equal(t, float64(7), testutil.ToFloat64(s.schedQueueDepth))

	s.SetSchedQueueDepth(3)
	require.Equal(t, float64(3), testutil.ToFloat64(s.schedQueueDepth))
}

func TestIncAllocExhaustedByKind(t *testing.T) {
	s := NewPrometheusStats()
	s.IncAllocExhausted("node")
	s.IncAllocExhausted("node")
	s.IncAllocExhausted("buffer")

	require.Equal(t, float64(2), testutil.ToFloat64(s.allocExhausted.WithLabelValues("node")))
	require.Equal(t, float64(1), testutil.ToFloat64(s.allocExhausted.WithLabelValues("buffer")))
}

func TestIndependentInstancesDoNotShareState(t *testing.T) {
	a := NewPrometheusStats()
	b := NewPrometheusStats()
	a.IncSent("/status")

	require.Equal(t, float64(1), testutil.ToFloat64(a.sent.WithLabelValues("/status")))
	require.Equal(t, float64(0), testutil.ToFloat64(b.sent.WithLabelValues("/status")))
}
