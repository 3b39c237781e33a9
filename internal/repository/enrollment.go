package repository

import (
	"context"

	"qawala/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentRepository stores course sign-ups keyed by (course, email).
type EnrollmentRepository interface {
	Upsert(ctx context.Context, enrollment *models.Enrollment) error
	ListByCourse(ctx context.Context, courseSlug string) ([]*models.Enrollment, error)
	Count(ctx context.Context) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository returns a new EnrollmentRepository implementation.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Upsert creates the enrollment or, when the email already enrolled in the course,
// overwrites the stored name and enrollment time.
func (r *enrollmentRepository) Upsert(ctx context.Context, enrollment *models.Enrollment) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "course_slug"}, {Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "enrolled_at"}),
		}).
		Create(enrollment).Error
	if err != nil {
		return models.NewWriteFailure(err)
	}
	return nil
}

func (r *enrollmentRepository) ListByCourse(ctx context.Context, courseSlug string) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("course_slug = ?", courseSlug).
		Order("enrolled_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return enrollments, nil
}

func (r *enrollmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Enrollment{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
