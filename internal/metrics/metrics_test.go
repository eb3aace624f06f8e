package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("test", reg)

	c.RecordFetch("sync", ResultOK)
	c.RecordFetch("sync", ResultOK)
	c.RecordFetch("async", ResultBlocked)
	c.RecordProxiesReturned("http", 3)
	c.RecordFetchDuration("sync", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.fetchesTotal.WithLabelValues("sync", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fetchesTotal.WithLabelValues("async", ResultBlocked)))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.proxiesReturned.WithLabelValues("http")))

	n, err := testutil.GatherAndCount(reg, "test_fetch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCollectorsWithNilRegistryDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("proxipy", nil)
		NewCollector("proxipy", nil)
	})
}
