package handlers

import (
	"bytes"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"
)

var (
	triggersTotal   *prometheus.CounterVec
	triggerDuration prometheus.Histogram
)

// InitMetrics registers the trigger metrics with the default registry.
// Call once at startup, before the first request.
func InitMetrics() {
	triggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pingrelay",
			Name:      "triggers_total",
			Help:      "Total number of trigger requests by response status.",
		},
		[]string{"status"},
	)
	triggerDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pingrelay",
			Name:      "trigger_duration_seconds",
			Help:      "Histogram of end-to-end trigger pipeline durations in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
	prometheus.MustRegister(triggersTotal, triggerDuration)
}

// Metrics exposes the default gatherer in the prometheus text format.
// Go runtime families are skipped unless ?full=1 is given.
func Metrics() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to gather metrics")
			return
		}

		full := len(ctx.QueryArgs().Peek("full")) > 0
		filtered := make([]*dto.MetricFamily, 0, len(metricFamilies))
		for _, mf := range metricFamilies {
			if !full && strings.HasPrefix(mf.GetName(), "go_") {
				continue
			}
			filtered = append(filtered, mf)
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range filtered {
			if err := encoder.Encode(mf); err != nil {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				ctx.SetBodyString("failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}
