package repository

import (
	"context"

	"qawala/internal/cache"
	"qawala/internal/models"

	"gorm.io/gorm"
)

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	GetBySlug(ctx context.Context, slug string) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	TotalPrice(ctx context.Context) (float64, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository returns a new CourseRepository implementation.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return writeError(err, "Course")
	}
	cache.Invalidate(ctx, cache.CourseListKey)
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, lookupError(err, "Course", id)
	}
	return &course, nil
}

func (r *courseRepository) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	var course models.Course
	err := cache.Aside(ctx, cache.CourseKey(slug), &course, cache.CourseTTL, func() error {
		if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&course).Error; err != nil {
			return lookupError(err, "Course", slug)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context) ([]*models.Course, error) {
	var courses []*models.Course
	err := cache.Aside(ctx, cache.CourseListKey, &courses, cache.CourseTTL, func() error {
		if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&courses).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	var prev models.Course
	if err := r.db.WithContext(ctx).Select("slug").Where("id = ?", course.ID).First(&prev).Error; err != nil {
		return lookupError(err, "Course", course.ID)
	}
	if err := r.db.WithContext(ctx).Omit("created_at").Save(course).Error; err != nil {
		return writeError(err, "Course")
	}
	cache.InvalidateCourse(ctx, prev.Slug)
	cache.InvalidateCourse(ctx, course.Slug)
	return nil
}

func (r *courseRepository) Delete(ctx context.Context, id string) error {
	var course models.Course
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error; err != nil {
		return lookupError(err, "Course", id)
	}
	if err := r.db.WithContext(ctx).Delete(&course).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCourse(ctx, course.Slug)
	return nil
}

func (r *courseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// TotalPrice sums the list price of every course.
func (r *courseRepository) TotalPrice(ctx context.Context) (float64, error) {
	var total float64
	if err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Select("COALESCE(SUM(price), 0)").
		Scan(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}
