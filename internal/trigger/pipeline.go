package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Pipeline sequences one trigger request end to end: credential check,
// envelope parse, event lookup, payload match, quota check, delivery,
// monitoring write. Steps run strictly in order; every terminal
// outcome except auth and parse failures writes exactly one monitoring
// entry before the result is returned.
type Pipeline struct {
	credentials CredentialStore
	events      EventStore
	store       MonitoringStore
	monitoring  *Recorder
	deliverer   Deliverer
	validate    *validator.Validate
	log         *zap.Logger

	// now is swapped in tests to pin the quota window.
	now func() time.Time
}

func New(credentials CredentialStore, events EventStore, monitoring MonitoringStore, deliverer Deliverer, log *zap.Logger) *Pipeline {
	return &Pipeline{
		credentials: credentials,
		events:      events,
		store:       monitoring,
		monitoring:  NewRecorder(monitoring, log),
		deliverer:   deliverer,
		validate:    validator.New(),
		log:         log,
		now:         time.Now,
	}
}

// Trigger runs the pipeline for one request. token is the raw
// Authorization header value (no scheme prefix); body is the unparsed
// request body. The returned Result carries the HTTP status and JSON
// body; collaborators never see the wire.
func (p *Pipeline) Trigger(ctx context.Context, token string, body []byte) Result {
	cred, res := p.checkCredential(ctx, token)
	if res != nil {
		return *res
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		p.log.Warn("trigger body does not parse", zap.Error(err), zap.String("owner_id", cred.OwnerID))
		return Result{Status: fasthttp.StatusBadRequest, Body: ErrorResponse{Error: "Invalid Body.", Details: err.Error()}}
	}
	if err := p.validate.Struct(&req); err != nil {
		p.log.Warn("trigger body fails validation", zap.Error(err), zap.String("owner_id", cred.OwnerID))
		return Result{Status: fasthttp.StatusBadRequest, Body: ErrorResponse{Error: "Invalid Body.", Details: err.Error()}}
	}

	event, err := p.events.FindEvent(ctx, cred.OwnerID, req.Event, req.Category)
	if errors.Is(err, ErrNotFound) {
		p.log.Warn("event not found",
			zap.String("event", req.Event),
			zap.String("category", req.Category),
			zap.String("owner_id", cred.OwnerID))
		return Result{Status: fasthttp.StatusNotFound, Body: ErrorResponse{
			Error:   "Event not found.",
			Message: fmt.Sprintf("Event %q not found in category %q.", req.Event, req.Category),
		}}
	}
	if err != nil {
		// No event context yet, so nothing to attach a monitoring row to.
		p.log.Error("event lookup failed", zap.Error(err), zap.String("owner_id", cred.OwnerID))
		return internalError()
	}

	fail := func(msg string) {
		p.monitoring.Record(ctx, Entry{
			OwnerID:      cred.OwnerID,
			CredentialID: cred.ID,
			EventID:      event.ID,
			CategoryID:   event.CategoryID,
			Payload:      req.Payload,
			Status:       StatusFailed,
			Error:        msg,
		})
	}

	if ok, msg := MatchPayload(event.Fields, req.Payload); !ok {
		p.log.Warn("payload not valid",
			zap.String("reason", msg),
			zap.String("owner_id", cred.OwnerID),
			zap.Uint("event_id", event.ID))
		fail("Payload not valid. " + msg)
		return Result{Status: fasthttp.StatusBadRequest, Body: ErrorResponse{Error: "Invalid Payload.", Message: msg}}
	}

	count, err := p.store.CountSentSince(ctx, cred.OwnerID, event.ID, MonthWindowStart(p.now()))
	if err != nil {
		p.log.Error("quota check failed", zap.Error(err), zap.String("owner_id", cred.OwnerID))
		fail("An internal server error occurred while checking quota.")
		return internalError()
	}
	if QuotaExceeded(count, cred.Plan) {
		quotaMsg := fmt.Sprintf("Quota exceeded for event %s in category %s.", req.Event, req.Category)
		p.log.Warn("quota exceeded",
			zap.Int64("count", count),
			zap.String("plan", cred.Plan.Name),
			zap.String("owner_id", cred.OwnerID),
			zap.Uint("event_id", event.ID))
		fail(quotaMsg)
		return Result{Status: fasthttp.StatusForbidden, Body: ErrorResponse{Error: quotaMsg}}
	}

	if res := p.deliver(ctx, cred, event, req, fail); res != nil {
		return *res
	}

	p.monitoring.Record(ctx, Entry{
		OwnerID:      cred.OwnerID,
		CredentialID: cred.ID,
		EventID:      event.ID,
		CategoryID:   event.CategoryID,
		Payload:      req.Payload,
		Status:       StatusSent,
	})

	return Result{Status: fasthttp.StatusOK, Body: SuccessResponse{
		Success:  true,
		Message:  "Event sent to channel.",
		Event:    req.Event,
		Category: req.Category,
		SentDate: p.now().UTC().Format(time.RFC3339),
	}}
}

// checkCredential resolves the bearer token. Failures here happen
// before any event context exists, so they are never recorded to
// monitoring; they only map to 401.
func (p *Pipeline) checkCredential(ctx context.Context, token string) (*Credential, *Result) {
	if token == "" {
		return nil, &Result{Status: fasthttp.StatusUnauthorized, Body: ErrorResponse{Error: "Unauthorized.", Message: "No API key provided."}}
	}

	cred, err := p.credentials.FindCredential(ctx, token)
	if errors.Is(err, ErrNotFound) {
		p.log.Warn("API key not found")
		return nil, &Result{Status: fasthttp.StatusUnauthorized, Body: ErrorResponse{Error: "Unauthorized.", Message: "API key not found on database."}}
	}
	if err != nil {
		p.log.Error("credential lookup failed", zap.Error(err))
		r := internalError()
		return nil, &r
	}
	if !cred.Active {
		p.log.Warn("API key is not active", zap.Uint("api_key_id", cred.ID), zap.String("owner_id", cred.OwnerID))
		return nil, &Result{Status: fasthttp.StatusUnauthorized, Body: ErrorResponse{Error: "Unauthorized.", Message: "API key is not active."}}
	}

	// Best-effort; a failed timestamp update must not block the request.
	if err := p.credentials.TouchCredential(ctx, cred.ID); err != nil {
		p.log.Warn("failed to update API key last-used timestamp", zap.Error(err), zap.Uint("api_key_id", cred.ID))
	}

	return cred, nil
}

// deliver resolves the owner's destination and makes the single send
// attempt. Returns nil on success; otherwise the terminal failure
// Result, with the monitoring entry already written via fail.
func (p *Pipeline) deliver(ctx context.Context, cred *Credential, event *Event, req Request, fail func(string)) *Result {
	const deliverFailed = "Failed to send DM. Please check monitoring for more details."

	destination, err := p.deliverer.ResolveDestination(ctx, cred.OwnerID)
	if errors.Is(err, ErrDestinationNotConfigured) {
		p.log.Warn("destination not configured", zap.String("owner_id", cred.OwnerID))
		fail("Failed to send DM. Discord user ID not configured.")
		return &Result{Status: fasthttp.StatusBadRequest, Body: ErrorResponse{Error: deliverFailed}}
	}
	if err != nil {
		p.log.Error("destination lookup failed", zap.Error(err), zap.String("owner_id", cred.OwnerID))
		fail("An internal server error occurred while resolving destination.")
		r := internalError()
		return &r
	}

	msg := Message{
		Title:       "Event Sent",
		Description: fmt.Sprintf("Event %s in category %s was sent to channel.", req.Event, req.Category),
	}
	for _, name := range event.Fields {
		msg.Fields = append(msg.Fields, Field{Name: name, Value: req.Payload[name]})
	}

	if err := p.deliverer.Send(ctx, destination, msg); err != nil {
		p.log.Error("delivery failed", zap.Error(err), zap.String("owner_id", cred.OwnerID), zap.Uint("event_id", event.ID))
		fail(err.Error())
		return &Result{Status: fasthttp.StatusBadRequest, Body: ErrorResponse{Error: deliverFailed}}
	}

	return nil
}

func internalError() Result {
	return Result{Status: fasthttp.StatusInternalServerError, Body: ErrorResponse{Error: "Internal server error."}}
}
