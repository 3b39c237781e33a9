package service

import (
	"context"

	"qawala/internal/models"
	"qawala/internal/repository"
	"qawala/internal/validation"
)

// SettingsService reads and writes the site settings.
type SettingsService struct {
	settings repository.SettingsRepository
	notifier ContentNotifier
}

func NewSettingsService(settings repository.SettingsRepository, notifier ContentNotifier) *SettingsService {
	return &SettingsService{settings: settings, notifier: notifier}
}

func (s *SettingsService) Get(ctx context.Context) (*models.SiteSettings, error) {
	return s.settings.Get(ctx)
}

func (s *SettingsService) Save(ctx context.Context, in models.SiteSettings) (*models.SiteSettings, error) {
	if err := validation.ValidateSettings(&in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.settings.Save(ctx, &in); err != nil {
		return nil, err
	}
	notifyContent(ctx, s.notifier, KindSettings, models.SiteSettingsID, ActionUpdated)
	return &in, nil
}
