package repository

import (
	"context"
	"errors"

	"qawala/internal/cache"
	"qawala/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository reads and writes the single site settings row.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, settings *models.SiteSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository returns a new SettingsRepository implementation.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns the stored settings, or the defaults when none were saved yet.
func (r *settingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := cache.Aside(ctx, cache.SettingsKey, &settings, cache.SettingsTTL, func() error {
		err := r.db.WithContext(ctx).Where("id = ?", models.SiteSettingsID).First(&settings).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = models.DefaultSiteSettings()
			return nil
		}
		if err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *models.SiteSettings) error {
	settings.ID = models.SiteSettingsID
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(settings).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.SettingsKey)
	return nil
}
