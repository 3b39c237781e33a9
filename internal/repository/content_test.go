package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"qawala/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isCode(err error, code string) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func TestBlogPostRepository_DeleteKeepsOtherLikes(t *testing.T) {
	db := newTestDB(t)
	posts := NewBlogPostRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	doomed := &models.BlogPost{Title: "Old notes", Slug: "old-notes", Author: "QAWala", Content: "body"}
	kept := &models.BlogPost{Title: "Kept notes", Slug: "kept-notes", Author: "QAWala", Content: "body"}
	require.NoError(t, posts.Create(ctx, doomed))
	require.NoError(t, posts.Create(ctx, kept))
	require.NoError(t, likes.Create(ctx, doomed.ID, "u1"))
	require.NoError(t, likes.Create(ctx, kept.ID, "u1"))
	require.NoError(t, likes.Create(ctx, kept.ID, "u2"))

	require.NoError(t, posts.Delete(ctx, doomed.ID))

	counts, err := likes.CountMany(ctx, []string{doomed.ID, kept.ID})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{doomed.ID: 0, kept.ID: 2}, counts)
}

func TestBlogPostRepository_LikesCountAndDelete(t *testing.T) {
	db := newTestDB(t)
	posts := NewBlogPostRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	post := &models.BlogPost{Title: "Test design", Slug: "test-design", Author: "QAWala", Content: "body"}
	require.NoError(t, posts.Create(ctx, post))
	require.NotEmpty(t, post.ID)

	require.NoError(t, likes.Create(ctx, post.ID, "u1"))
	require.NoError(t, likes.Create(ctx, post.ID, "u2"))

	got, err := posts.GetBySlug(ctx, "test-design")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LikesCount)

	byID, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byID.LikesCount)

	list, err := posts.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].LikesCount)

	require.NoError(t, posts.Delete(ctx, post.ID))
	count, err := likes.Count(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = posts.GetBySlug(ctx, "test-design")
	assert.True(t, isCode(err, models.CodeNotFound))
}

func TestBlogPostRepository_SlugConflictAndOrdering(t *testing.T) {
	db := newTestDB(t)
	posts := NewBlogPostRepository(db)
	ctx := context.Background()

	older := &models.BlogPost{Title: "Old", Slug: "old-post", Author: "a", Content: "c", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.BlogPost{Title: "New", Slug: "new-post", Author: "a", Content: "c"}
	require.NoError(t, posts.Create(ctx, older))
	require.NoError(t, posts.Create(ctx, newer))

	dup := &models.BlogPost{Title: "Dup", Slug: "new-post", Author: "a", Content: "c"}
	err := posts.Create(ctx, dup)
	assert.True(t, isCode(err, models.CodeConflict))

	list, err := posts.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new-post", list[0].Slug)

	n, err := posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestBlogPostRepository_UpdateChangesSlug(t *testing.T) {
	posts := NewBlogPostRepository(newTestDB(t))
	ctx := context.Background()

	post := &models.BlogPost{Title: "T", Slug: "first-slug", Author: "a", Content: "c"}
	require.NoError(t, posts.Create(ctx, post))

	post.Slug = "second-slug"
	require.NoError(t, posts.Update(ctx, post))

	_, err := posts.GetBySlug(ctx, "first-slug")
	assert.True(t, isCode(err, models.CodeNotFound))
	got, err := posts.GetBySlug(ctx, "second-slug")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	missing := &models.BlogPost{ID: "nope", Slug: "x"}
	assert.True(t, isCode(posts.Update(ctx, missing), models.CodeNotFound))
}

func TestCourseRepository_TotalsAndSlug(t *testing.T) {
	courses := NewCourseRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, courses.Create(ctx, &models.Course{Slug: "manual-testing", Title: "Manual", Price: 99.5, Level: models.CourseLevelBeginner,
		Syllabus: []models.SyllabusItem{{Title: "Intro", Content: "Basics"}}}))
	require.NoError(t, courses.Create(ctx, &models.Course{Slug: "api-testing", Title: "API", Price: 150, Level: models.CourseLevelIntermediate}))

	total, err := courses.TotalPrice(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 249.5, total, 0.001)

	got, err := courses.GetBySlug(ctx, "manual-testing")
	require.NoError(t, err)
	require.Len(t, got.Syllabus, 1)
	assert.Equal(t, "Intro", got.Syllabus[0].Title)

	all, err := courses.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, courses.Delete(ctx, got.ID))
	n, err := courses.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEnrollmentRepository_UpsertByEmail(t *testing.T) {
	enrollments := NewEnrollmentRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, enrollments.Upsert(ctx, &models.Enrollment{CourseSlug: "api-testing", Email: "a@x.io", Name: "Asha"}))
	require.NoError(t, enrollments.Upsert(ctx, &models.Enrollment{CourseSlug: "api-testing", Email: "a@x.io", Name: "Asha K"}))
	require.NoError(t, enrollments.Upsert(ctx, &models.Enrollment{CourseSlug: "manual-testing", Email: "a@x.io", Name: "Asha"}))

	list, err := enrollments.ListByCourse(ctx, "api-testing")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha K", list[0].Name)

	n, err := enrollments.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestTestimonialRepository_OrderedByName(t *testing.T) {
	repo := NewTestimonialRepository(newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"Zara", "Amit", "Meera"} {
		require.NoError(t, repo.Create(ctx, &models.Testimonial{Name: name, Role: "QA", Quote: "Great course", Stars: 5}))
	}

	list, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Amit", list[0].Name)
	assert.Equal(t, "Meera", list[1].Name)

	assert.True(t, isCode(repo.Delete(ctx, "missing"), models.CodeNotFound))
}

func TestUserRepository_UpsertKeepsRole(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.UpsertProfile(ctx, &models.User{UID: "u1", Email: "a@x.io", DisplayName: "A"}))
	require.NoError(t, repo.SetRole(ctx, "u1", models.RoleAdmin))

	require.NoError(t, repo.UpsertProfile(ctx, &models.User{UID: "u1", Email: "b@x.io", DisplayName: "B", Role: models.RoleUser}))

	got, err := repo.GetByUID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "b@x.io", got.Email)
	assert.Equal(t, models.RoleAdmin, got.Role)

	assert.True(t, isCode(repo.SetRole(ctx, "ghost", models.RoleAdmin), models.CodeNotFound))
	_, err = repo.GetByUID(ctx, "ghost")
	assert.True(t, isCode(err, models.CodeNotFound))
}

func TestSettingsRepository_DefaultsThenSave(t *testing.T) {
	repo := NewSettingsRepository(newTestDB(t))
	ctx := context.Background()

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSiteSettings().SiteName, got.SiteName)

	got.HeroTitle = "Ship with confidence"
	require.NoError(t, repo.Save(ctx, got))
	got.HeroTitle = "Changed again"
	require.NoError(t, repo.Save(ctx, got))

	again, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Changed again", again.HeroTitle)
}
