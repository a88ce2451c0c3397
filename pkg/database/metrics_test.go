package database

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ prometheus.Collector = (*PoolStatsCollector)(nil)

// describe drains the collector's descriptors into a slice.
func describe(c *PoolStatsCollector) []*prometheus.Desc {
	ch := make(chan *prometheus.Desc, 32)
	c.Describe(ch)
	close(ch)

	var descs []*prometheus.Desc
	for d := range ch {
		descs = append(descs, d)
	}
	return descs
}

func TestNewPoolStatsCollector(t *testing.T) {
	// Describe must work before any pool activity, so a nil pool is enough
	// here. Collect is only safe with a live pool.
	c := NewPoolStatsCollector(nil, "electronics-admin")
	require.NotNil(t, c)
	assert.Equal(t, "electronics-admin", c.service)
}

func TestPoolStatsCollector_DescribesEveryStat(t *testing.T) {
	c := NewPoolStatsCollector(nil, "electronics-admin")

	descs := describe(c)

	assert.Len(t, descs, len(c.stats))
}

func TestPoolStatsCollector_MetricNames(t *testing.T) {
	c := NewPoolStatsCollector(nil, "electronics-admin")

	var all strings.Builder
	for _, d := range describe(c) {
		all.WriteString(d.String())
	}

	for _, name := range []string{
		"db_pool_acquired_connections",
		"db_pool_idle_connections",
		"db_pool_total_connections",
		"db_pool_max_connections",
		"db_pool_constructing_connections",
		"db_pool_acquire_count_total",
		"db_pool_acquire_duration_seconds_total",
		"db_pool_canceled_acquire_count_total",
		"db_pool_empty_acquire_count_total",
		"db_pool_new_connections_total",
		"db_pool_max_lifetime_destroy_total",
		"db_pool_max_idle_destroy_total",
	} {
		assert.Contains(t, all.String(), name)
	}
}
