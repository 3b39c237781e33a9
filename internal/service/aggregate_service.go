package service

import (
	"context"

	"qawala/internal/models"
	"qawala/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	homePostLimit        = 3
	homeCourseLimit      = 3
	homeTestimonialLimit = 3
	dashboardRecentPosts = 5
)

// AggregateService builds the composite home page and admin dashboard views.
type AggregateService struct {
	posts        repository.BlogPostRepository
	courses      repository.CourseRepository
	testimonials repository.TestimonialRepository
	enrollments  repository.EnrollmentRepository
	settings     repository.SettingsRepository
}

func NewAggregateService(
	posts repository.BlogPostRepository,
	courses repository.CourseRepository,
	testimonials repository.TestimonialRepository,
	enrollments repository.EnrollmentRepository,
	settings repository.SettingsRepository,
) *AggregateService {
	return &AggregateService{
		posts:        posts,
		courses:      courses,
		testimonials: testimonials,
		enrollments:  enrollments,
		settings:     settings,
	}
}

// Home loads the landing page sections concurrently.
func (s *AggregateService) Home(ctx context.Context) (*models.HomePage, error) {
	home := &models.HomePage{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		posts, err := s.posts.List(gctx, homePostLimit, 0)
		home.Posts = posts
		return err
	})
	g.Go(func() error {
		courses, err := s.courses.List(gctx)
		if len(courses) > homeCourseLimit {
			courses = courses[:homeCourseLimit]
		}
		home.Courses = courses
		return err
	})
	g.Go(func() error {
		testimonials, err := s.testimonials.List(gctx, homeTestimonialLimit)
		home.Testimonials = testimonials
		return err
	})
	g.Go(func() error {
		settings, err := s.settings.Get(gctx)
		if settings != nil {
			home.Settings = *settings
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return home, nil
}

// Dashboard loads the admin totals concurrently.
func (s *AggregateService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	d := &models.Dashboard{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.TotalCourses, err = s.courses.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalBlogs, err = s.posts.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalTestimonials, err = s.testimonials.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalEnrollments, err = s.enrollments.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalRevenue, err = s.courses.TotalPrice(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.RecentPosts, err = s.posts.List(gctx, dashboardRecentPosts, 0)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}
