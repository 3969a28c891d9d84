package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "joeprompts_renders_total",
		Help: "Template engine invocations by mode (fill, preview, annotated, extract, validate).",
	}, []string{"mode"})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "joeprompts_render_duration_seconds",
		Help:    "Time spent in the template engine per request.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	ValidationWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "joeprompts_validation_warnings_total",
		Help: "Placeholder warnings reported to clients.",
	})

	PromptsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "joeprompts_prompts_total",
		Help: "Total number of prompts in the database.",
	})
)
