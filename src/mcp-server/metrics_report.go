// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/metrics"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/internal/x509/revocation"
)

// MetricsReport is the payload of get_verification_metrics.
type MetricsReport struct {
	Timestamp    string           `json:"timestamp"`
	Verification []metrics.Sample `json:"verification"`
	CRLCache     map[string]any   `json:"crl_cache"`
	SystemInfo   map[string]any   `json:"system_info"`
	MemoryUsage  map[string]any   `json:"memory_usage,omitempty"`
	GCStats      map[string]any   `json:"gc_stats,omitempty"`
}

// CollectMetricsReport gathers the verifier metrics from g and the state of
// cache. Memory and GC statistics are included when detailed is set.
func CollectMetricsReport(g prometheus.Gatherer, cache *revocation.CRLCache, detailed bool) (*MetricsReport, error) {
	samples, err := metrics.Snapshot(g)
	if err != nil {
		return nil, err
	}
	if samples == nil {
		samples = []metrics.Sample{}
	}

	cacheMetrics := cache.Metrics()
	cacheConfig := cache.Config()
	report := &MetricsReport{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Verification: samples,
		CRLCache: map[string]any{
			"size":             cacheMetrics.Size,
			"max_size":         int64(cacheConfig.MaxSize),
			"cleanup_interval": cacheConfig.CleanupInterval.String(),
			"total_memory_mb":  float64(cacheMetrics.TotalMemory) / (1024 * 1024),
			"hits":             cacheMetrics.Hits,
			"misses":           cacheMetrics.Misses,
			"evictions":        cacheMetrics.Evictions,
			"cleanups":         cacheMetrics.Cleanups,
			"hit_rate_percent": calculateHitRate(cacheMetrics.Hits, cacheMetrics.Misses),
		},
		SystemInfo: map[string]any{
			"go_version":    runtime.Version(),
			"go_os":         runtime.GOOS,
			"go_arch":       runtime.GOARCH,
			"num_cpu":       runtime.NumCPU(),
			"num_goroutine": runtime.NumGoroutine(),
		},
	}

	if detailed {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		report.MemoryUsage = map[string]any{
			"heap_alloc_mb":  float64(memStats.HeapAlloc) / (1024 * 1024),
			"heap_sys_mb":    float64(memStats.HeapSys) / (1024 * 1024),
			"heap_inuse_mb":  float64(memStats.HeapInuse) / (1024 * 1024),
			"heap_objects":   memStats.HeapObjects,
			"stack_inuse_mb": float64(memStats.StackInuse) / (1024 * 1024),
			"total_alloc_mb": float64(memStats.TotalAlloc) / (1024 * 1024),
			"sys_mb":         float64(memStats.Sys) / (1024 * 1024),
		}
		report.GCStats = map[string]any{
			"num_gc":            memStats.NumGC,
			"num_forced_gc":     memStats.NumForcedGC,
			"gc_cpu_fraction":   memStats.GCCPUFraction * 100,
			"gc_pause_total_ms": float64(memStats.PauseTotalNs) / 1e6,
		}
	}
	return report, nil
}

// JSON encodes the report with indentation.
func (r *MetricsReport) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics report: %w", err)
	}
	return data, nil
}

// Markdown renders the report as markdown tables.
func (r *MetricsReport) Markdown() string {
	var buf strings.Builder
	buf.WriteString("# Verification Metrics Report\n\n")
	if parsed, err := time.Parse(time.RFC3339, r.Timestamp); err == nil {
		fmt.Fprintf(&buf, "**Generated:** %s\n\n", parsed.Format("January 2, 2006 at 3:04 PM MST"))
	} else {
		fmt.Fprintf(&buf, "**Generated:** %s\n\n", r.Timestamp)
	}

	buf.WriteString("## Verification\n\n")
	if len(r.Verification) == 0 {
		buf.WriteString("No verifications recorded yet.\n\n")
	} else {
		rows := make([][]string, 0, len(r.Verification))
		for _, s := range r.Verification {
			rows = append(rows, []string{s.Name, formatLabels(s.Labels), formatValueForMarkdown(s.Value, s.Name)})
		}
		buf.WriteString(formatMarkdownTable([]string{"Metric", "Labels", "Value"}, rows))
	}

	buf.WriteString("## CRL Cache\n\n")
	buf.WriteString(formatMarkdownTable([]string{"Metric", "Value"}, fieldRows(r.CRLCache, []string{
		"Cache Size", "size",
		"Max Size", "max_size",
		"Cleanup Interval", "cleanup_interval",
		"Total Memory", "total_memory_mb",
		"Cache Hits", "hits",
		"Cache Misses", "misses",
		"Evictions", "evictions",
		"Cleanups", "cleanups",
		"Hit Rate", "hit_rate_percent",
	})))

	buf.WriteString("## System Information\n\n")
	buf.WriteString(formatMarkdownTable([]string{"Metric", "Value"}, fieldRows(r.SystemInfo, []string{
		"Go Version", "go_version",
		"Operating System", "go_os",
		"Architecture", "go_arch",
		"CPU Count", "num_cpu",
		"Goroutines", "num_goroutine",
	})))

	if r.MemoryUsage != nil {
		buf.WriteString("## Memory Usage\n\n")
		buf.WriteString(formatMarkdownTable([]string{"Metric", "Value"}, fieldRows(r.MemoryUsage, []string{
			"Heap Allocated", "heap_alloc_mb",
			"Heap System", "heap_sys_mb",
			"Heap In Use", "heap_inuse_mb",
			"Heap Objects", "heap_objects",
			"Stack In Use", "stack_inuse_mb",
			"Total Alloc", "total_alloc_mb",
			"System Memory", "sys_mb",
		})))
	}
	if r.GCStats != nil {
		buf.WriteString("## Garbage Collection\n\n")
		buf.WriteString(formatMarkdownTable([]string{"Metric", "Value"}, fieldRows(r.GCStats, []string{
			"GC Cycles", "num_gc",
			"Forced GC", "num_forced_gc",
			"GC CPU Fraction", "gc_cpu_fraction",
			"GC Pause Total", "gc_pause_total_ms",
		})))
	}
	return buf.String()
}

// fieldRows turns label/key pairs into rows for the keys present in data.
func fieldRows(data map[string]any, fieldPairs []string) [][]string {
	var rows [][]string
	for i := 0; i+1 < len(fieldPairs); i += 2 {
		if value, ok := data[fieldPairs[i+1]]; ok {
			rows = append(rows, []string{fieldPairs[i], formatValueForMarkdown(value, fieldPairs[i+1])})
		}
	}
	return rows
}

func formatMarkdownTable(header []string, rows [][]string) string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header(header)
	table.Bulk(rows)
	table.Render()
	buf.WriteString("\n")
	return buf.String()
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + labels[k]
	}
	return strings.Join(parts, ", ")
}

// formatValueForMarkdown formats a value for markdown display
func formatValueForMarkdown(value any, key string) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		if key == "size" || key == "max_size" {
			return fmt.Sprintf("%d entries", v)
		}
		return fmt.Sprintf("%d", v)
	case uint32:
		return fmt.Sprintf("%d", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	case float64:
		switch {
		case key == "gc_cpu_fraction" || key == "hit_rate_percent":
			return fmt.Sprintf("%.2f%%", v)
		case strings.HasSuffix(key, "_mb"):
			return fmt.Sprintf("%.2f MB", v)
		case strings.HasSuffix(key, "_ms"):
			return fmt.Sprintf("%.2f ms", v)
		case v == float64(int64(v)):
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.4f", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// calculateHitRate calculates the cache hit rate as a percentage
func calculateHitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total) * 100.0
}
