package handlers

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"pingrelay/internal/trigger"
)

func TestMain(m *testing.M) {
	InitMetrics()
	os.Exit(m.Run())
}

type stubPipeline struct {
	res      trigger.Result
	gotToken string
	gotBody  []byte
}

func (s *stubPipeline) Trigger(ctx context.Context, token string, body []byte) trigger.Result {
	s.gotToken = token
	s.gotBody = append([]byte(nil), body...)
	return s.res
}

func TestTriggerHandlerSuccess(t *testing.T) {
	stub := &stubPipeline{res: trigger.Result{Status: fasthttp.StatusOK, Body: trigger.SuccessResponse{
		Success:  true,
		Message:  "Event sent to channel.",
		Event:    "signup",
		Category: "users",
		SentDate: "2026-03-15T12:00:00Z",
	}}}

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI("/api/v1/events")
	ctx.Request.Header.Set("Authorization", "key-1")
	ctx.Request.SetBody([]byte(`{"event":"signup","category":"users"}`))

	Trigger(stub)(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	// The raw header value is the token; no Bearer scheme stripping.
	assert.Equal(t, "key-1", stub.gotToken)
	assert.JSONEq(t, `{"event":"signup","category":"users"}`, string(stub.gotBody))

	var body trigger.SuccessResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "signup", body.Event)
}

func TestTriggerHandlerError(t *testing.T) {
	stub := &stubPipeline{res: trigger.Result{Status: fasthttp.StatusUnauthorized, Body: trigger.ErrorResponse{
		Error:   "Unauthorized.",
		Message: "No API key provided.",
	}}}

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI("/api/v1/events")

	Trigger(stub)(ctx)

	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Empty(t, stub.gotToken)

	var body trigger.ErrorResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, "Unauthorized.", body.Error)
	assert.Equal(t, "No API key provided.", body.Message)
}

func TestTriggerHandlerOmitsEmptyOptionalFields(t *testing.T) {
	stub := &stubPipeline{res: trigger.Result{Status: fasthttp.StatusForbidden, Body: trigger.ErrorResponse{
		Error: "Quota exceeded for event signup in category users.",
	}}}

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI("/api/v1/events")

	Trigger(stub)(ctx)

	assert.JSONEq(t, `{"error":"Quota exceeded for event signup in category users."}`, string(ctx.Response.Body()))
}

func TestHealthzWithoutDatabase(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/healthz")

	Healthz(nil)(ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "ok", string(ctx.Response.Body()))
}
