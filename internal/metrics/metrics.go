// Package metrics exposes captcha render statistics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "captcha"

// Recorder counts renders and uploads.
type Recorder struct {
	renders  *prometheus.CounterVec
	failures *prometheus.CounterVec
	resizes  *prometheus.CounterVec
	uploads  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder creates a recorder and registers it with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Total number of rendered captchas.",
			}, []string{"preset"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_failures_total",
				Help:      "Total number of failed captcha renders.",
			}, []string{"preset"},
		),
		resizes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resize_retries_total",
				Help:      "Renders redrawn wider because the text overflowed.",
			}, []string{"preset"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Captcha uploads by result.",
			}, []string{"result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
				Name:      "render_duration_seconds",
				Help:      "Captcha render latencies in seconds.",
			}, []string{"preset"},
		),
	}
	reg.MustRegister(r.renders, r.failures, r.resizes, r.uploads, r.duration)
	return r
}

// ObserveRender records one render of preset that took d. passes is the
// number of drawing passes; anything above one counts as a resize retry.
func (r *Recorder) ObserveRender(preset string, d time.Duration, passes int, err error) {
	if err != nil {
		r.failures.WithLabelValues(preset).Inc()
		return
	}
	r.renders.WithLabelValues(preset).Inc()
	r.duration.WithLabelValues(preset).Observe(d.Seconds())
	if passes > 1 {
		r.resizes.WithLabelValues(preset).Inc()
	}
}

// ObserveUpload records the result of an upload.
func (r *Recorder) ObserveUpload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.uploads.WithLabelValues(result).Inc()
}
