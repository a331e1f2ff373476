package trigger

import (
	"context"
	"errors"
	"time"

	"pingrelay/internal/plan"
)

// Monitoring entry statuses. Every trigger attempt ends as exactly one
// of these.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

var (
	// ErrNotFound is returned by stores when a credential or event
	// does not exist. Any other error is treated as infrastructure.
	ErrNotFound = errors.New("not found")

	// ErrDestinationNotConfigured is returned by a Deliverer when the
	// owner has no destination set up. This is a caller configuration
	// error, never retried.
	ErrDestinationNotConfigured = errors.New("destination not configured")
)

// Request is the wire envelope for POST /api/v1/events. Payload stays
// nil when the field is absent from the body, which the matcher treats
// differently from an empty object.
type Request struct {
	Event    string            `json:"event" validate:"required,min=1,max=255"`
	Category string            `json:"category" validate:"required,min=1,max=255"`
	Payload  map[string]string `json:"payload,omitempty" validate:"omitempty,dive,keys,min=1,max=255,endkeys,min=1,max=255"`
}

// Credential is the resolved form of a bearer token.
type Credential struct {
	ID      uint
	OwnerID string
	Active  bool
	Plan    plan.Plan
}

// CredentialStore resolves bearer tokens and tracks their usage.
type CredentialStore interface {
	// FindCredential returns ErrNotFound for unknown tokens.
	FindCredential(ctx context.Context, token string) (*Credential, error)
	// TouchCredential updates the last-used timestamp. Best-effort:
	// the pipeline logs a failure here and carries on.
	TouchCredential(ctx context.Context, id uint) error
}

// Event is an event definition resolved by name within a category.
type Event struct {
	ID           uint
	CategoryID   uint
	Name         string
	CategoryName string

	// Fields is the ordered set of expected payload field names
	// configured for this event (0-10 entries).
	Fields []string
}

// EventStore looks up event definitions scoped to their owner.
type EventStore interface {
	// FindEvent returns ErrNotFound when the event+category+owner
	// combination does not exist.
	FindEvent(ctx context.Context, ownerID, event, category string) (*Event, error)
}

// Entry is one monitoring record: a single trigger attempt and its
// outcome. Failed entries always carry a non-empty Error.
type Entry struct {
	OwnerID      string
	CredentialID uint
	EventID      uint
	CategoryID   uint
	Payload      map[string]string
	Status       string
	Error        string
}

// MonitoringStore is the append-only audit log the pipeline writes to
// and counts quota against.
type MonitoringStore interface {
	RecordMonitoring(ctx context.Context, e Entry) error
	// CountSentSince counts entries with status "sent" for this owner
	// and event created at or after since.
	CountSentSince(ctx context.Context, ownerID string, eventID uint, since time.Time) (int64, error)
}

// Field is one rendered payload entry on an outbound message.
type Field struct {
	Name  string
	Value string
}

// Message is the transport-agnostic notification the pipeline hands to
// a Deliverer.
type Message struct {
	Title       string
	Description string
	Fields      []Field
}

// Deliverer sends a single message to an owner's configured
// destination. Implementations make exactly one attempt; retry policy
// deliberately does not exist anywhere in the pipeline.
type Deliverer interface {
	// ResolveDestination returns ErrDestinationNotConfigured when the
	// owner never set one up.
	ResolveDestination(ctx context.Context, ownerID string) (string, error)
	Send(ctx context.Context, destination string, msg Message) error
}

// Result is the orchestrator's terminal output: the HTTP status and
// the JSON body to write. The orchestrator is the only place internal
// outcomes are mapped to the wire.
type Result struct {
	Status int
	Body   any
}

// SuccessResponse is the 200 body.
type SuccessResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Event    string `json:"event"`
	Category string `json:"category"`
	SentDate string `json:"sentDate"`
}

// ErrorResponse is the body for every non-200 outcome. Error is the
// stable machine-checkable string; Message and Details are
// human-readable and optional.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}
