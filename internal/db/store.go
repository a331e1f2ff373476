package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"pingrelay/internal/plan"
	"pingrelay/internal/trigger"
)

// Store implements the trigger pipeline's store interfaces on top of
// GORM. Each method runs as an independent statement; the pipeline
// deliberately does not wrap a request in one transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindCredential resolves a bearer token to its API key row and the
// owner's plan. Returns trigger.ErrNotFound for unknown tokens;
// inactive keys are returned with Active=false so the caller can
// distinguish "unknown" from "deactivated".
func (s *Store) FindCredential(ctx context.Context, token string) (*trigger.Credential, error) {
	var key APIKey
	err := s.db.WithContext(ctx).Where("key = ?", token).Preload("User").First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, trigger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &trigger.Credential{
		ID:      key.ID,
		OwnerID: key.UserID,
		Active:  key.Active,
		Plan:    plan.ByName(key.User.Plan),
	}, nil
}

// TouchCredential stamps the key's last-used timestamp.
func (s *Store) TouchCredential(ctx context.Context, id uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&APIKey{}).Where("id = ?", id).Update("last_used_at", &now).Error
}

// FindEvent resolves an event by name within a category, scoped to the
// owner, together with its expected payload field names (in creation
// order). Returns trigger.ErrNotFound when the combination does not
// exist for this owner.
func (s *Store) FindEvent(ctx context.Context, ownerID, event, category string) (*trigger.Event, error) {
	var ev Event
	err := s.db.WithContext(ctx).
		Joins("JOIN categories ON categories.id = events.category_id").
		Where("events.name = ? AND categories.name = ? AND events.user_id = ?", event, category, ownerID).
		First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, trigger.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var fields []PayloadField
	if err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", ev.ID, ownerID).
		Order("id").
		Find(&fields).Error; err != nil {
		return nil, err
	}

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}

	return &trigger.Event{
		ID:           ev.ID,
		CategoryID:   ev.CategoryID,
		Name:         ev.Name,
		CategoryName: category,
		Fields:       names,
	}, nil
}

// RecordMonitoring appends one monitoring entry.
func (s *Store) RecordMonitoring(ctx context.Context, e trigger.Entry) error {
	payload := datatypes.JSONMap{}
	for k, v := range e.Payload {
		payload[k] = v
	}

	row := MonitoringEntry{
		UserID:     e.OwnerID,
		APIKeyID:   e.CredentialID,
		EventID:    e.EventID,
		CategoryID: e.CategoryID,
		Payload:    payload,
		Status:     e.Status,
		Error:      e.Error,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// CountSentSince counts successful deliveries for this owner and event
// created at or after since. Failed attempts never count against quota.
func (s *Store) CountSentSince(ctx context.Context, ownerID string, eventID uint, since time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&MonitoringEntry{}).
		Where("user_id = ? AND event_id = ? AND status = ? AND created_at >= ?", ownerID, eventID, trigger.StatusSent, since).
		Count(&n).Error
	return n, err
}

// DiscordUserID returns the owner's configured Discord destination, or
// "" when the owner has no settings row or never set one.
func (s *Store) DiscordUserID(ctx context.Context, ownerID string) (string, error) {
	var settings UserSettings
	err := s.db.WithContext(ctx).Where("user_id = ?", ownerID).Limit(1).Find(&settings).Error
	if err != nil {
		return "", err
	}
	return settings.DiscordUserID, nil
}
