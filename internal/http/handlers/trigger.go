package handlers

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"pingrelay/internal/trigger"
)

// TriggerPipeline is what the trigger endpoint needs from the
// orchestrator; the concrete *trigger.Pipeline satisfies it.
type TriggerPipeline interface {
	Trigger(ctx context.Context, token string, body []byte) trigger.Result
}

// Trigger handles POST /api/v1/events. The Authorization header is the
// raw API key (no scheme prefix); all validation and status mapping
// happens inside the pipeline, the handler only moves bytes.
func Trigger(p TriggerPipeline) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		token := string(ctx.Request.Header.Peek("Authorization"))

		res := p.Trigger(ctx, token, ctx.PostBody())

		ctx.SetStatusCode(res.Status)
		ctx.SetContentType("application/json")
		body, err := json.Marshal(res.Body)
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString(`{"error":"Internal server error."}`)
			return
		}
		ctx.SetBody(body)

		triggersTotal.WithLabelValues(strconv.Itoa(res.Status)).Inc()
		triggerDuration.Observe(time.Since(start).Seconds())
	}
}
