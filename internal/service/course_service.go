package service

import (
	"context"
	"strings"

	"qawala/internal/events"
	"qawala/internal/middleware"
	"qawala/internal/models"
	"qawala/internal/repository"
	"qawala/internal/validation"
)

// CourseService manages the course catalogue and enrollments.
type CourseService struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	notifier    ContentNotifier
	events      events.Publisher
}

// CourseInput is the editable part of a course.
type CourseInput struct {
	Slug        string                `json:"slug"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Instructor  string                `json:"instructor"`
	Price       float64               `json:"price"`
	Duration    string                `json:"duration"`
	Level       models.CourseLevel    `json:"level"`
	ImageURL    string                `json:"image_url"`
	Syllabus    []models.SyllabusItem `json:"syllabus"`
}

func (in CourseInput) apply(c *models.Course) {
	c.Slug = strings.TrimSpace(in.Slug)
	c.Title = strings.TrimSpace(in.Title)
	c.Description = in.Description
	c.Instructor = strings.TrimSpace(in.Instructor)
	c.Price = in.Price
	c.Duration = strings.TrimSpace(in.Duration)
	c.Level = in.Level
	c.ImageURL = strings.TrimSpace(in.ImageURL)
	c.Syllabus = in.Syllabus
}

// EnrollInput is the public enroll form.
type EnrollInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewCourseService(
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	notifier ContentNotifier,
	publisher events.Publisher,
) *CourseService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CourseService{
		courses:     courses,
		enrollments: enrollments,
		notifier:    notifier,
		events:      publisher,
	}
}

func (s *CourseService) List(ctx context.Context) ([]*models.Course, error) {
	return s.courses.List(ctx)
}

func (s *CourseService) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	return s.courses.GetBySlug(ctx, slug)
}

func (s *CourseService) Create(ctx context.Context, in CourseInput) (*models.Course, error) {
	course := &models.Course{}
	in.apply(course)
	if err := validation.ValidateCourse(course); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	notifyContent(ctx, s.notifier, KindCourse, course.ID, ActionCreated)
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id string, in CourseInput) (*models.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(course)
	if err := validation.ValidateCourse(course); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	notifyContent(ctx, s.notifier, KindCourse, course.ID, ActionUpdated)
	return course, nil
}

func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}
	notifyContent(ctx, s.notifier, KindCourse, id, ActionDeleted)
	return nil
}

// Enroll signs a visitor up for a course. Enrolling again with the same email
// overwrites the earlier enrollment.
func (s *CourseService) Enroll(ctx context.Context, courseSlug string, in EnrollInput) (*models.Enrollment, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.ValidateEnrollment(name, email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.courses.GetBySlug(ctx, courseSlug); err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{CourseSlug: courseSlug, Email: email, Name: name}
	if err := s.enrollments.Upsert(ctx, enrollment); err != nil {
		return nil, err
	}

	ev := events.NewEvent(events.TypeEnrollmentCreated, courseSlug, events.EnrollmentCreated{
		CourseSlug: courseSlug,
		Email:      email,
		Name:       name,
	})
	if err := s.events.Publish(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish enrollment event", "course", courseSlug, "error", err)
	}
	return enrollment, nil
}

func (s *CourseService) ListEnrollments(ctx context.Context, courseSlug string) ([]*models.Enrollment, error) {
	return s.enrollments.ListByCourse(ctx, courseSlug)
}
