package service

import (
	"context"
	"strings"

	"qawala/internal/models"
	"qawala/internal/repository"
	"qawala/internal/validation"
)

// TestimonialService manages testimonials.
type TestimonialService struct {
	testimonials repository.TestimonialRepository
	notifier     ContentNotifier
}

// TestimonialInput is the editable part of a testimonial.
type TestimonialInput struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Quote string `json:"quote"`
	Stars int    `json:"stars"`
}

func (in TestimonialInput) apply(t *models.Testimonial) {
	t.Name = strings.TrimSpace(in.Name)
	t.Role = strings.TrimSpace(in.Role)
	t.Quote = strings.TrimSpace(in.Quote)
	t.Stars = in.Stars
	if t.Stars == 0 {
		t.Stars = 5
	}
}

func NewTestimonialService(testimonials repository.TestimonialRepository, notifier ContentNotifier) *TestimonialService {
	return &TestimonialService{testimonials: testimonials, notifier: notifier}
}

func (s *TestimonialService) List(ctx context.Context, limit int) ([]*models.Testimonial, error) {
	return s.testimonials.List(ctx, limit)
}

func (s *TestimonialService) Create(ctx context.Context, in TestimonialInput) (*models.Testimonial, error) {
	t := &models.Testimonial{}
	in.apply(t)
	if err := validation.ValidateTestimonial(t); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.testimonials.Create(ctx, t); err != nil {
		return nil, err
	}
	notifyContent(ctx, s.notifier, KindTestimonial, t.ID, ActionCreated)
	return t, nil
}

func (s *TestimonialService) Update(ctx context.Context, id string, in TestimonialInput) (*models.Testimonial, error) {
	t, err := s.testimonials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(t)
	if err := validation.ValidateTestimonial(t); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.testimonials.Update(ctx, t); err != nil {
		return nil, err
	}
	notifyContent(ctx, s.notifier, KindTestimonial, t.ID, ActionUpdated)
	return t, nil
}

func (s *TestimonialService) Delete(ctx context.Context, id string) error {
	if err := s.testimonials.Delete(ctx, id); err != nil {
		return err
	}
	notifyContent(ctx, s.notifier, KindTestimonial, id, ActionDeleted)
	return nil
}
