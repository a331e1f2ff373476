package db

import (
	"errors"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pingrelay/internal/config"
)

// Connect opens a GORM database connection using APP_DATABASE_URL (PostgreSQL URL).
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := strings.TrimSpace(cfg.DatabaseURL)
	if dsn == "" {
		return nil, errors.New("APP_DATABASE_URL is required (PostgreSQL URL)")
	}
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil, errors.New("APP_DATABASE_URL must be a postgres:// or postgresql:// URL")
	}

	// PrepareStmt: true prevents the GORM postgres migrator from forcing simple protocol
	// for "SELECT * FROM table LIMIT 1", which would otherwise trigger "insufficient arguments".
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{PrepareStmt: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate auto-migrates the core tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&UserSettings{},
		&Category{},
		&Event{},
		&PayloadField{},
		&APIKey{},
		&MonitoringEntry{},
		&UsageBucket{},
	)
}

// EnsureBootstrapOwner seeds an owner, their Discord destination and an
// active API key from config so a fresh deployment can be triggered
// against without the management surface. Rows that already exist are
// left as-is; the destination is updated if it drifted from config.
func EnsureBootstrapOwner(db *gorm.DB, cfg *config.Config) error {
	if cfg.BootstrapOwnerID == "" || cfg.BootstrapAPIKey == "" {
		return nil
	}

	owner := &User{ID: cfg.BootstrapOwnerID}
	if err := db.FirstOrCreate(owner, User{ID: cfg.BootstrapOwnerID}).Error; err != nil {
		return err
	}

	if cfg.BootstrapDiscordUserID != "" {
		var settings UserSettings
		if err := db.Where("user_id = ?", owner.ID).Limit(1).Find(&settings).Error; err != nil {
			return err
		}
		if settings.ID == 0 {
			settings = UserSettings{UserID: owner.ID, DiscordUserID: cfg.BootstrapDiscordUserID}
			if err := db.Create(&settings).Error; err != nil {
				return err
			}
		} else if settings.DiscordUserID != cfg.BootstrapDiscordUserID {
			settings.DiscordUserID = cfg.BootstrapDiscordUserID
			if err := db.Save(&settings).Error; err != nil {
				return err
			}
		}
	}

	// Check if the key already exists (use Find so "not found" doesn't log as error).
	var existing APIKey
	if err := db.Where("key = ?", cfg.BootstrapAPIKey).Limit(1).Find(&existing).Error; err != nil {
		return err
	}
	if existing.ID != 0 {
		return nil
	}

	key := &APIKey{
		UserID:      owner.ID,
		Name:        "bootstrap",
		Description: "Seeded from environment on startup.",
		Key:         cfg.BootstrapAPIKey,
		Active:      true,
	}

	return db.Create(key).Error
}
