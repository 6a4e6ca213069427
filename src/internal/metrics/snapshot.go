// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package metrics

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Sample is one exported value.
type Sample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// Snapshot gathers the verifier metrics from g. Histograms contribute a
// _count and a _sum sample. A nil g selects the default gatherer.
func Snapshot(g prometheus.Gatherer) ([]Sample, error) {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, Namespace+"_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			var labels map[string]string
			if pairs := m.GetLabel(); len(pairs) > 0 {
				labels = make(map[string]string, len(pairs))
				for _, p := range pairs {
					labels[p.GetName()] = p.GetValue()
				}
			}
			switch {
			case m.GetCounter() != nil:
				out = append(out, Sample{Name: name, Labels: labels, Value: m.GetCounter().GetValue()})
			case m.GetGauge() != nil:
				out = append(out, Sample{Name: name, Labels: labels, Value: m.GetGauge().GetValue()})
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				out = append(out,
					Sample{Name: name + "_count", Labels: labels, Value: float64(h.GetSampleCount())},
					Sample{Name: name + "_sum", Labels: labels, Value: h.GetSampleSum()},
				)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
