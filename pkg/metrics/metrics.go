// Package metrics wraps a process-wide Prometheus registry behind a small
// name+labels API. Collectors are created lazily on first use; the label key
// set of a metric is fixed by its first caller.
package metrics

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

var (
	mu        sync.Mutex
	registry  = prometheus.NewRegistry()
	counters  = map[string]*prometheus.CounterVec{}
	gauges    = map[string]*prometheus.GaugeVec{}
	summaries = map[string]*prometheus.SummaryVec{}
)

// Inc increments a counter identified by name and label set.
func Inc(name string, labels map[string]string) {
	mu.Lock()
	defer mu.Unlock()
	vec, ok := counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name}, labelKeys(labels))
		if err := registry.Register(vec); err != nil {
			return
		}
		counters[name] = vec
	}
	vec.With(normalize(labels)).Inc()
}

// AddGauge adds delta to a gauge (negative delta decrements).
func AddGauge(name string, labels map[string]string, delta float64) {
	if g := gauge(name, labels); g != nil {
		g.With(normalize(labels)).Add(delta)
	}
}

// SetGauge sets a gauge to an absolute value.
func SetGauge(name string, labels map[string]string, v float64) {
	if g := gauge(name, labels); g != nil {
		g.With(normalize(labels)).Set(v)
	}
}

// ObserveSummary records one observation in a summary.
func ObserveSummary(name string, labels map[string]string, v float64) {
	mu.Lock()
	defer mu.Unlock()
	vec, ok := summaries[name]
	if !ok {
		vec = prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       name,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, labelKeys(labels))
		if err := registry.Register(vec); err != nil {
			return
		}
		summaries[name] = vec
	}
	vec.With(normalize(labels)).Observe(v)
}

// Reset drops every collector; tests use it to start from a clean registry.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = prometheus.NewRegistry()
	counters = map[string]*prometheus.CounterVec{}
	gauges = map[string]*prometheus.GaugeVec{}
	summaries = map[string]*prometheus.SummaryVec{}
}

// DumpProm renders the registry in the Prometheus text exposition format.
func DumpProm() string {
	mu.Lock()
	reg := registry
	mu.Unlock()
	mfs, err := reg.Gather()
	if err != nil {
		return ""
	}
	var sb strings.Builder
	enc := expfmt.NewEncoder(&sb, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return sb.String()
		}
	}
	return sb.String()
}

// Handler serves the registry over HTTP (wired by the monitoring service).
func Handler() http.Handler {
	mu.Lock()
	reg := registry
	mu.Unlock()
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func gauge(name string, labels map[string]string) *prometheus.GaugeVec {
	mu.Lock()
	defer mu.Unlock()
	vec, ok := gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name}, labelKeys(labels))
		if err := registry.Register(vec); err != nil {
			return nil
		}
		gauges[name] = vec
	}
	return vec
}

func labelKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalize(labels map[string]string) prometheus.Labels {
	out := prometheus.Labels{}
	for k, v := range labels {
		out[k] = v
	}
	return out
}
