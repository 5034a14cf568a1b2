package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordLockOperation("acquire", "granted")
		m.RecordSweep(3)
		m.RecordPriceDecision("rejected")
		m.RecordHTTPRequest("GET", "/x", 200, time.Millisecond)
		m.RecordDBQuery("select", time.Millisecond, nil)
		m.RecordDBPoolStats(1, 1, 0, 0)
	})
	assert.Equal(t, "", m.ServiceName())
}

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())

	m.RecordLockOperation("acquire", "granted")
	m.RecordLockOperation("acquire", "granted")
	m.RecordLockOperation("acquire", "denied")
	m.RecordSweep(4)
	m.RecordSweep(0)
	m.RecordPriceDecision("pending_approval")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LockOperationsTotal.WithLabelValues("test", "acquire", "granted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LockOperationsTotal.WithLabelValues("test", "acquire", "denied")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SweptSlotsTotal.WithLabelValues("test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PriceDecisionsTotal.WithLabelValues("test", "pending_approval")))
}
