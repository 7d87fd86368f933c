// Package metrics records solver run counters for node_exporter's textfile
// collector.
package metrics

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

// Result labels for solver runs.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
	ResultError  = "error"
)

const (
	runsName    = "geofunc_solver_runs_total"
	secondsName = "geofunc_solver_run_seconds"
)

// Recorder holds solver metrics on its own registry. Each CLI invocation is
// a separate process, so totals are carried across runs by loading the
// previous textfile before writing the next one.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	seconds  *runHistogram
}

// New creates a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: runsName,
			Help: "Solver invocations by result.",
		}, []string{"result"}),
		seconds: newRunHistogram(prometheus.ExponentialBuckets(0.5, 2, 12)),
	}
	r.registry.MustRegister(r.runs, r.seconds)
	return r
}

// ObserveRun records one solver run. A nil Recorder is a no-op.
func (r *Recorder) ObserveRun(result string, d time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(result).Inc()
	r.seconds.observe(d.Seconds())
}

// Load adds the totals found in a textfile written by WriteTextfile. A
// missing file is not an error.
func (r *Recorder) Load(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read metrics: %w", err)
	}
	defer f.Close()

	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(f)
	if err != nil {
		return fmt.Errorf("parse metrics %s: %w", path, err)
	}

	if mf, ok := families[runsName]; ok {
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "result" {
					r.runs.WithLabelValues(lp.GetValue()).Add(m.GetCounter().GetValue())
				}
			}
		}
	}
	if mf, ok := families[secondsName]; ok && len(mf.GetMetric()) > 0 {
		h := mf.GetMetric()[0].GetHistogram()
		buckets := make(map[float64]uint64, len(h.GetBucket()))
		for _, b := range h.GetBucket() {
			buckets[b.GetUpperBound()] = b.GetCumulativeCount()
		}
		r.seconds.add(h.GetSampleCount(), h.GetSampleSum(), buckets)
	}
	return nil
}

// WriteTextfile writes the current metrics to path in the text exposition
// format. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// runHistogram is a run-duration histogram whose totals can be seeded from
// a previous textfile.
type runHistogram struct {
	desc   *prometheus.Desc
	bounds []float64

	mu     sync.Mutex
	counts []uint64 // cumulative, one per bound
	count  uint64
	sum    float64
}

func newRunHistogram(bounds []float64) *runHistogram {
	return &runHistogram{
		desc:   prometheus.NewDesc(secondsName, "Wall time of solver invocations.", nil, nil),
		bounds: bounds,
		counts: make([]uint64, len(bounds)),
	}
}

func (h *runHistogram) observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, b := range h.bounds {
		if v <= b {
			h.counts[i]++
		}
	}
	h.count++
	h.sum += v
}

// add merges cumulative bucket counts keyed by upper bound. Bounds that do
// not match this histogram's layout are ignored; the +Inf bucket is implied
// by count.
func (h *runHistogram) add(count uint64, sum float64, buckets map[float64]uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, b := range h.bounds {
		h.counts[i] += buckets[b]
	}
	h.count += count
	h.sum += sum
}

func (h *runHistogram) Describe(ch chan<- *prometheus.Desc) { ch <- h.desc }

func (h *runHistogram) Collect(ch chan<- prometheus.Metric) {
	h.mu.Lock()
	defer h.mu.Unlock()
	buckets := make(map[float64]uint64, len(h.bounds))
	for i, b := range h.bounds {
		if !math.IsInf(b, 1) {
			buckets[b] = h.counts[i]
		}
	}
	ch <- prometheus.MustNewConstHistogram(h.desc, h.count, h.sum, buckets)
}
