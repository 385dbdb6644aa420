// Package metrics exposes framepipe pipeline counters as Prometheus
// metrics.
//
// The collector reads the pipeline's counter snapshot on every scrape, so
// registering it adds no overhead to the pipeline's hot paths.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(metrics.NewCollector(p))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/framepipe"
)

// Collector implements prometheus.Collector over a framepipe.Pipeline.
type Collector struct {
	pipeline *framepipe.Pipeline

	framesPresented   *prometheus.Desc
	framesRedisplayed *prometheus.Desc
	staleFrames       *prometheus.Desc
	queueEvictions    *prometheus.Desc
	pendingDropped    *prometheus.Desc
	workerTimeouts    *prometheus.Desc
	workerFailures    *prometheus.Desc
	retries           *prometheus.Desc
	abandonedRequests *prometheus.Desc
	presentErrors     *prometheus.Desc
	fps               *prometheus.Desc
}

// NewCollector creates a collector for the given pipeline.
func NewCollector(p *framepipe.Pipeline) *Collector {
	return &Collector{
		pipeline: p,
		framesPresented: prometheus.NewDesc(
			"framepipe_frames_presented_total",
			"Display ticks that showed a frame not shown before.",
			nil, nil,
		),
		framesRedisplayed: prometheus.NewDesc(
			"framepipe_frames_redisplayed_total",
			"Display ticks that re-showed the previous frame.",
			nil, nil,
		),
		staleFrames: prometheus.NewDesc(
			"framepipe_stale_frames_total",
			"Completed frames discarded because a newer frame was already selected.",
			nil, nil,
		),
		queueEvictions: prometheus.NewDesc(
			"framepipe_queue_evictions_total",
			"Frames evicted from the reassembly queue.",
			nil, nil,
		),
		pendingDropped: prometheus.NewDesc(
			"framepipe_pending_dropped_total",
			"Render requests dropped before assignment.",
			nil, nil,
		),
		workerTimeouts: prometheus.NewDesc(
			"framepipe_worker_timeouts_total",
			"Render attempts that exceeded the worker timeout.",
			nil, nil,
		),
		workerFailures: prometheus.NewDesc(
			"framepipe_worker_failures_total",
			"Render attempts that failed for any reason.",
			nil, nil,
		),
		retries: prometheus.NewDesc(
			"framepipe_retries_total",
			"Re-submissions of failed render requests.",
			nil, nil,
		),
		abandonedRequests: prometheus.NewDesc(
			"framepipe_abandoned_requests_total",
			"Requests dropped after exhausting the retry limit.",
			nil, nil,
		),
		presentErrors: prometheus.NewDesc(
			"framepipe_present_errors_total",
			"Presentation surface failures.",
			nil, nil,
		),
		fps: prometheus.NewDesc(
			"framepipe_fps",
			"Measured display rate over the rolling window.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.framesPresented
	ch <- c.framesRedisplayed
	ch <- c.staleFrames
	ch <- c.queueEvictions
	ch <- c.pendingDropped
	ch <- c.workerTimeouts
	ch <- c.workerFailures
	ch <- c.retries
	ch <- c.abandonedRequests
	ch <- c.presentErrors
	ch <- c.fps
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.pipeline.Stats()
	ch <- prometheus.MustNewConstMetric(c.framesPresented, prometheus.CounterValue, float64(s.FramesPresented))
	ch <- prometheus.MustNewConstMetric(c.framesRedisplayed, prometheus.CounterValue, float64(s.FramesRedisplayed))
	ch <- prometheus.MustNewConstMetric(c.staleFrames, prometheus.CounterValue, float64(s.StaleFrames))
	ch <- prometheus.MustNewConstMetric(c.queueEvictions, prometheus.CounterValue, float64(s.QueueEvictions))
	ch <- prometheus.MustNewConstMetric(c.pendingDropped, prometheus.CounterValue, float64(s.PendingDropped))
	ch <- prometheus.MustNewConstMetric(c.workerTimeouts, prometheus.CounterValue, float64(s.WorkerTimeouts))
	ch <- prometheus.MustNewConstMetric(c.workerFailures, prometheus.CounterValue, float64(s.WorkerFailures))
	ch <- prometheus.MustNewConstMetric(c.retries, prometheus.CounterValue, float64(s.Retries))
	ch <- prometheus.MustNewConstMetric(c.abandonedRequests, prometheus.CounterValue, float64(s.AbandonedRequests))
	ch <- prometheus.MustNewConstMetric(c.presentErrors, prometheus.CounterValue, float64(s.PresentErrors))
	ch <- prometheus.MustNewConstMetric(c.fps, prometheus.GaugeValue, c.pipeline.FPS())
}

var _ prometheus.Collector = (*Collector)(nil)
