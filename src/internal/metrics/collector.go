// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package metrics

import (
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
	"github.com/prometheus/client_golang/prometheus"
)

// CRLCacheCollector exports the counters of a CRL cache at scrape time.
type CRLCacheCollector struct {
	cache *revocation.CRLCache

	size, memory                      *prometheus.Desc
	hits, misses, evictions, cleanups *prometheus.Desc
}

// NewCRLCacheCollector creates a collector for cache.
func NewCRLCacheCollector(cache *revocation.CRLCache) *CRLCacheCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(Namespace, "crl_cache", name), help, nil, nil)
	}
	return &CRLCacheCollector{
		cache:     cache,
		size:      desc("entries", "Number of cached CRLs"),
		memory:    desc("memory_bytes", "Approximate memory held by cached CRLs"),
		hits:      desc("hits_total", "Total number of CRL cache hits"),
		misses:    desc("misses_total", "Total number of CRL cache misses"),
		evictions: desc("evictions_total", "Total number of CRL cache evictions"),
		cleanups:  desc("cleanups_total", "Total number of expired CRLs removed"),
	}
}

// Describe implements [prometheus.Collector].
func (c *CRLCacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
	ch <- c.memory
	ch <- c.hits
	ch <- c.misses
	ch <- c.evictions
	ch <- c.cleanups
}

// Collect implements [prometheus.Collector].
func (c *CRLCacheCollector) Collect(ch chan<- prometheus.Metric) {
	m := c.cache.Metrics()
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(m.Size))
	ch <- prometheus.MustNewConstMetric(c.memory, prometheus.GaugeValue, float64(m.TotalMemory))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(m.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(m.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(m.Evictions))
	ch <- prometheus.MustNewConstMetric(c.cleanups, prometheus.CounterValue, float64(m.Cleanups))
}

func init() {
	prometheus.MustRegister(NewCRLCacheCollector(revocation.Default))
}
