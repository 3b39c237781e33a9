package repository

import (
	"context"

	"qawala/internal/cache"
	"qawala/internal/models"

	"gorm.io/gorm"
)

// TestimonialRepository defines persistence operations for testimonials.
type TestimonialRepository interface {
	Create(ctx context.Context, t *models.Testimonial) error
	GetByID(ctx context.Context, id string) (*models.Testimonial, error)
	List(ctx context.Context, limit int) ([]*models.Testimonial, error)
	Update(ctx context.Context, t *models.Testimonial) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type testimonialRepository struct {
	db *gorm.DB
}

// NewTestimonialRepository returns a new TestimonialRepository implementation.
func NewTestimonialRepository(db *gorm.DB) TestimonialRepository {
	return &testimonialRepository{db: db}
}

func (r *testimonialRepository) Create(ctx context.Context, t *models.Testimonial) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.TestimonialsKey)
	return nil
}

func (r *testimonialRepository) GetByID(ctx context.Context, id string) (*models.Testimonial, error) {
	var t models.Testimonial
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, lookupError(err, "Testimonial", id)
	}
	return &t, nil
}

// List returns testimonials ordered by name. Only the full list is cached.
func (r *testimonialRepository) List(ctx context.Context, limit int) ([]*models.Testimonial, error) {
	var all []*models.Testimonial
	err := cache.Aside(ctx, cache.TestimonialsKey, &all, cache.TestimonialTTL, func() error {
		if err := r.db.WithContext(ctx).Order("name ASC").Find(&all).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *testimonialRepository) Update(ctx context.Context, t *models.Testimonial) error {
	if _, err := r.GetByID(ctx, t.ID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Omit("created_at").Save(t).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.TestimonialsKey)
	return nil
}

func (r *testimonialRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Testimonial{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Testimonial", id)
	}
	cache.Invalidate(ctx, cache.TestimonialsKey)
	return nil
}

func (r *testimonialRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Testimonial{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
