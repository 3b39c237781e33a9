package service

import (
	"context"
	"strings"

	"qawala/internal/models"
	"qawala/internal/repository"
	"qawala/internal/validation"
)

// PageService manages custom pages.
type PageService struct {
	pages    repository.PageRepository
	notifier ContentNotifier
}

// PageInput is the editable part of a page.
type PageInput struct {
	Title          string `json:"title"`
	Slug           string `json:"slug"`
	Content        string `json:"content"`
	SEODescription string `json:"seo_description"`
}

func (in PageInput) apply(p *models.Page) {
	p.Title = strings.TrimSpace(in.Title)
	p.Slug = strings.TrimSpace(in.Slug)
	p.Content = in.Content
	p.SEODescription = strings.TrimSpace(in.SEODescription)
}

func NewPageService(pages repository.PageRepository, notifier ContentNotifier) *PageService {
	return &PageService{pages: pages, notifier: notifier}
}

func (s *PageService) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	return s.pages.GetBySlug(ctx, slug)
}

func (s *PageService) List(ctx context.Context) ([]*models.Page, error) {
	return s.pages.List(ctx)
}

func (s *PageService) Create(ctx context.Context, in PageInput) (*models.Page, error) {
	page := &models.Page{}
	in.apply(page)
	if err := validation.ValidatePage(page); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.pages.Create(ctx, page); err != nil {
		return nil, err
	}
	notifyContent(ctx, s.notifier, KindPage, page.ID, ActionCreated)
	return page, nil
}

func (s *PageService) Update(ctx context.Context, id string, in PageInput) (*models.Page, error) {
	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(page)
	if err := validation.ValidatePage(page); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.pages.Update(ctx, page); err != nil {
		return nil, err
	}
	notifyContent(ctx, s.notifier, KindPage, page.ID, ActionUpdated)
	return page, nil
}

func (s *PageService) Delete(ctx context.Context, id string) error {
	if err := s.pages.Delete(ctx, id); err != nil {
		return err
	}
	notifyContent(ctx, s.notifier, KindPage, id, ActionDeleted)
	return nil
}
