// Package bootstrap wires the storage dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"qawala/internal/cache"
	"qawala/internal/config"
	"qawala/internal/database"
	"qawala/internal/middleware"
	"qawala/internal/models"
	"qawala/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedBuiltIns loads the bundled course catalogue into an empty database.
	SeedBuiltIns bool
}

// InitRuntime connects to DB and Redis and optionally runs built-in seeding.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// May leave a nil client if Redis is unreachable.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureAdmin(context.Background(), cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap admin profile: %w", err)
	}

	if opts.SeedBuiltIns {
		if err := seedCatalogueIfEmpty(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in catalogue: %w", err)
		}
	}

	return db, r, nil
}

// EnsureAdmin promotes cfg.AdminUID to admin, creating its profile if needed.
// It does nothing when no admin UID is configured.
func EnsureAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	uid := strings.TrimSpace(cfg.AdminUID)
	if uid == "" {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		findErr := tx.First(&user, "uid = ?", uid).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			return tx.Create(&models.User{UID: uid, Email: email, Role: models.RoleAdmin}).Error
		case findErr != nil:
			return findErr
		default:
			updates := map[string]any{"role": models.RoleAdmin}
			if email != "" {
				updates["email"] = email
			}
			return tx.Model(&models.User{}).Where("uid = ?", uid).Updates(updates).Error
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("admin profile ensured", slog.String("uid", uid))
	return nil
}

func seedCatalogueIfEmpty(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.Course{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	cat, err := seed.DefaultCatalogue()
	if err != nil {
		return err
	}
	return seed.NewSeeder(db, seed.Options{}).SeedCatalogue(cat)
}
