package repository

import (
	"context"

	"qawala/internal/cache"
	"qawala/internal/models"

	"gorm.io/gorm"
)

// PageRepository defines persistence operations for custom pages.
type PageRepository interface {
	Create(ctx context.Context, page *models.Page) error
	GetByID(ctx context.Context, id string) (*models.Page, error)
	GetBySlug(ctx context.Context, slug string) (*models.Page, error)
	List(ctx context.Context) ([]*models.Page, error)
	Update(ctx context.Context, page *models.Page) error
	Delete(ctx context.Context, id string) error
}

type pageRepository struct {
	db *gorm.DB
}

// NewPageRepository returns a new PageRepository implementation.
func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

func (r *pageRepository) Create(ctx context.Context, page *models.Page) error {
	if err := r.db.WithContext(ctx).Create(page).Error; err != nil {
		return writeError(err, "Page")
	}
	return nil
}

func (r *pageRepository) GetByID(ctx context.Context, id string) (*models.Page, error) {
	var page models.Page
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&page).Error; err != nil {
		return nil, lookupError(err, "Page", id)
	}
	return &page, nil
}

func (r *pageRepository) GetBySlug(ctx context.Context, slug string) (*models.Page, error) {
	var page models.Page
	err := cache.Aside(ctx, cache.PageKey(slug), &page, cache.PageTTL, func() error {
		if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&page).Error; err != nil {
			return lookupError(err, "Page", slug)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepository) List(ctx context.Context) ([]*models.Page, error) {
	var pages []*models.Page
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&pages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return pages, nil
}

func (r *pageRepository) Update(ctx context.Context, page *models.Page) error {
	var prev models.Page
	if err := r.db.WithContext(ctx).Select("slug").Where("id = ?", page.ID).First(&prev).Error; err != nil {
		return lookupError(err, "Page", page.ID)
	}
	if err := r.db.WithContext(ctx).Omit("created_at").Save(page).Error; err != nil {
		return writeError(err, "Page")
	}
	cache.Invalidate(ctx, cache.PageKey(prev.Slug), cache.PageKey(page.Slug))
	return nil
}

func (r *pageRepository) Delete(ctx context.Context, id string) error {
	var page models.Page
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&page).Error; err != nil {
		return lookupError(err, "Page", id)
	}
	if err := r.db.WithContext(ctx).Delete(&page).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.PageKey(page.Slug))
	return nil
}
