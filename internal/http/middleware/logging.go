package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// RequestLogger logs one structured line per request and tags the
// response with a correlation id.
func RequestLogger(log *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			requestID := uuid.NewString()
			ctx.Response.Header.Set("X-Request-ID", requestID)

			next(ctx)

			log.Info("request",
				zap.String("request_id", requestID),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_ip", ctx.RemoteAddr().String()),
			)
		}
	}
}
