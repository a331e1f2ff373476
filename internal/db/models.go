package db

import (
	"time"

	"gorm.io/datatypes"
)

// User is an owner account. The primary key is the opaque id handed
// out by the external identity provider; the pipeline never creates
// these rows, it only reads the plan off them.
type User struct {
	ID string `gorm:"primaryKey;size:255"`

	// Plan is the subscription tier name ("FREE" or "PRO"). Ceilings
	// live in the plan package, not here.
	Plan string `gorm:"size:4;not null;default:FREE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserSettings carries per-owner delivery configuration. DiscordUserID
// is the destination for deliveries; empty means not configured.
type UserSettings struct {
	ID uint `gorm:"primaryKey"`

	UserID string `gorm:"index;size:255;not null"`

	DiscordUserID string `gorm:"size:255"`
	Timezone      string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category groups event definitions. Names are unique per owner.
type Category struct {
	ID uint `gorm:"primaryKey"`

	Name   string `gorm:"size:255;not null;uniqueIndex:idx_category_name_user,priority:1"`
	UserID string `gorm:"size:255;not null;index;uniqueIndex:idx_category_name_user,priority:2"`

	Color string `gorm:"size:7;not null;default:#6991D2"` // hex color
	Emoji string `gorm:"size:10"`                         // optional emoji

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event is a trigger target. Names are unique per owner+category; the
// expected payload schema lives in PayloadField rows.
type Event struct {
	ID uint `gorm:"primaryKey"`

	Name        string `gorm:"size:255;not null;uniqueIndex:idx_event_name_category_user,priority:1"`
	Description string `gorm:"size:500"`

	CategoryID uint   `gorm:"not null;uniqueIndex:idx_event_name_category_user,priority:2;index"`
	UserID     string `gorm:"size:255;not null;uniqueIndex:idx_event_name_category_user,priority:3;index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PayloadField is one expected payload field name for an event. The
// set of rows for an event (at most 10, ordered by id) is the
// authoritative schema trigger payloads are checked against.
type PayloadField struct {
	ID uint `gorm:"primaryKey"`

	EventID uint   `gorm:"index;not null"`
	UserID  string `gorm:"size:255;not null"`

	Name string `gorm:"size:255;not null"`
}

// APIKey is a caller credential for the trigger endpoint. The token is
// stored as-is and compared by equality; keys are deactivated rather
// than deleted.
type APIKey struct {
	ID uint `gorm:"primaryKey"`

	UserID string `gorm:"index;size:255;not null"`

	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"size:500"`

	// Key is the actual bearer token value (should be unique).
	Key string `gorm:"uniqueIndex;size:255;not null"`

	Active bool `gorm:"default:true"`

	CreatedAt  time.Time
	LastUsedAt *time.Time

	// User is the owner of this API key.
	User User `gorm:"foreignKey:UserID"`
}

// MonitoringEntry is one audit record per trigger attempt. Append-only:
// the pipeline never updates or deletes these; only the retention
// worker removes old rows. Status is "sent" (no error) or "failed"
// (non-empty error).
type MonitoringEntry struct {
	ID uint `gorm:"primaryKey"`

	UserID     string `gorm:"index;size:255;not null"`
	APIKeyID   uint   `gorm:"not null"`
	EventID    uint   `gorm:"index;not null"`
	CategoryID uint   `gorm:"not null"`

	// Payload is the payload actually received on the request, kept
	// verbatim for auditing.
	Payload datatypes.JSONMap `gorm:"type:json"`

	Status string `gorm:"size:16;not null;index"`
	Error  string `gorm:"size:1000"`

	CreatedAt time.Time `gorm:"index"`
}

// UsageBucket stores pre-aggregated daily trigger counts per
// (owner, event) for fast usage reporting. Filled by the usage worker.
type UsageBucket struct {
	ID uint `gorm:"primaryKey"`

	UserID   string    `gorm:"uniqueIndex:idx_usage_bucket_unique,priority:1;size:255;not null"`
	EventID  uint      `gorm:"uniqueIndex:idx_usage_bucket_unique,priority:2;not null"`
	DayStart time.Time `gorm:"uniqueIndex:idx_usage_bucket_unique,priority:3;not null"` // start of the day (UTC)

	SentCount   int64 `gorm:"not null"`
	FailedCount int64 `gorm:"not null"`
}
