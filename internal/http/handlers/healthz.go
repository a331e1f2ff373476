package handlers

import (
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"
)

// Healthz reports liveness. With a database handle it also pings the
// store, so orchestration can tell "process up" from "store reachable".
func Healthz(gdb *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if gdb != nil {
			sqlDB, err := gdb.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
				ctx.SetBodyString("database unreachable")
				return
			}
		}
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	}
}
