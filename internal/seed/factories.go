// Package seed provides helpers to create demo data for the QAWala database.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"qawala/internal/models"
	"qawala/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Factory builds blog posts, readers and likes and persists them.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed))}
}

// Slugify lowercases s and joins its words with hyphens.
func Slugify(s string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}

// BuildPost returns an unsaved blog post with fake but valid content.
func (f *Factory) BuildPost(overrides ...func(*models.BlogPost)) *models.BlogPost {
	title := strings.TrimSuffix(gofakeit.Sentence(6), ".")
	post := &models.BlogPost{
		ID:              uuid.NewString(),
		Title:           title,
		Slug:            Slugify(title) + "-" + strings.ToLower(gofakeit.LetterN(6)),
		Author:          gofakeit.Name(),
		Content:         gofakeit.Paragraph(3, 4, 14, "\n\n"),
		SEODescription:  gofakeit.Sentence(14),
		FeatureImageURL: fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
	}
	for i := 0; i < 1+f.rng.Intn(3); i++ {
		post.FAQs = append(post.FAQs, models.FAQ{
			Question: gofakeit.Question(),
			Answer:   gofakeit.Sentence(12),
		})
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour + time.Duration(f.rng.Intn(24))*time.Hour
	post.CreatedAt = time.Now().Add(-back)
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePosts builds and persists n posts in batches.
func (f *Factory) CreatePosts(n int) ([]*models.BlogPost, error) {
	posts := make([]*models.BlogPost, 0, n)
	for i := 0; i < n; i++ {
		p := f.BuildPost()
		if err := validation.ValidateBlogPost(p); err != nil {
			return nil, fmt.Errorf("generated post %q is invalid: %w", p.Slug, err)
		}
		posts = append(posts, p)
	}
	if len(posts) == 0 {
		return posts, nil
	}
	if err := f.db.CreateInBatches(posts, 50).Error; err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

// CreateReaders persists n signed-up reader profiles.
func (f *Factory) CreateReaders(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, &models.User{
			UID:         "seed-" + uuid.NewString(),
			Email:       strings.ToLower(gofakeit.Email()),
			DisplayName: gofakeit.Name(),
			Role:        models.RoleUser,
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := f.db.CreateInBatches(users, 100).Error; err != nil {
		return nil, fmt.Errorf("create readers: %w", err)
	}
	return users, nil
}

// CreateLikes has a random subset of readers like each post and returns the
// number of like records written.
func (f *Factory) CreateLikes(posts []*models.BlogPost, readers []*models.User) (int, error) {
	if len(readers) == 0 {
		return 0, nil
	}
	var likes []models.Like
	for _, p := range posts {
		k := f.rng.Intn(len(readers) + 1)
		for _, idx := range f.rng.Perm(len(readers))[:k] {
			likes = append(likes, models.Like{PostID: p.ID, UserID: readers[idx].UID, CreatedAt: p.CreatedAt})
		}
	}
	if len(likes) == 0 {
		return 0, nil
	}
	if err := f.db.CreateInBatches(likes, 200).Error; err != nil {
		return 0, fmt.Errorf("create likes: %w", err)
	}
	return len(likes), nil
}
