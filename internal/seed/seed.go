package seed

import (
	_ "embed"
	"fmt"
	"log/slog"

	"qawala/internal/models"
	"qawala/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

// Options configures a seeding run.
type Options struct {
	NumPosts    int
	NumReaders  int
	MaxDays     int
	ShouldClean bool
	// RandomSeed makes generated data reproducible when non-zero.
	RandomSeed int64
}

// Catalogue is the fixed course and testimonial content shipped with the site.
type Catalogue struct {
	Courses      []models.Course      `yaml:"courses"`
	Testimonials []models.Testimonial `yaml:"testimonials"`
}

// ParseCatalogue decodes and validates a catalogue document.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	seen := make(map[string]struct{}, len(cat.Courses))
	for i := range cat.Courses {
		c := &cat.Courses[i]
		if err := validation.ValidateCourse(c); err != nil {
			return nil, fmt.Errorf("course %q: %w", c.Slug, err)
		}
		if _, dup := seen[c.Slug]; dup {
			return nil, fmt.Errorf("course %q listed twice", c.Slug)
		}
		seen[c.Slug] = struct{}{}
	}
	for i := range cat.Testimonials {
		t := &cat.Testimonials[i]
		if t.Stars == 0 {
			t.Stars = 5
		}
		if err := validation.ValidateTestimonial(t); err != nil {
			return nil, fmt.Errorf("testimonial from %q: %w", t.Name, err)
		}
	}
	return &cat, nil
}

// DefaultCatalogue returns the embedded catalogue.
func DefaultCatalogue() (*Catalogue, error) {
	return ParseCatalogue(catalogueYAML)
}

// Seeder populates a database with the catalogue and generated blog content.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	log     *slog.Logger
}

// NewSeeder creates a Seeder for db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts), log: slog.Default()}
}

// Factory exposes the underlying entity factory.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// ClearAll removes seeded content. Site settings and user profiles other than
// seeded readers are kept.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Like{},
			&models.Enrollment{},
			&models.BlogPost{},
			&models.Course{},
			&models.Testimonial{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		if err := tx.Where("uid LIKE ?", "seed-%").Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("clear readers: %w", err)
		}
		return nil
	})
}

// SeedCatalogue upserts courses by slug and testimonials by name.
func (s *Seeder) SeedCatalogue(cat *Catalogue) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range cat.Courses {
			c := cat.Courses[i]
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"title", "description", "instructor", "price", "duration", "level", "image_url", "syllabus", "updated_at",
				}),
			}).Create(&c).Error
			if err != nil {
				return fmt.Errorf("upsert course %q: %w", c.Slug, err)
			}
		}
		for i := range cat.Testimonials {
			t := cat.Testimonials[i]
			var existing models.Testimonial
			err := tx.Where(models.Testimonial{Name: t.Name}).
				Assign(models.Testimonial{Role: t.Role, Quote: t.Quote, Stars: t.Stars}).
				FirstOrCreate(&existing).Error
			if err != nil {
				return fmt.Errorf("upsert testimonial %q: %w", t.Name, err)
			}
		}
		return nil
	})
}

// Result summarises a seeding run.
type Result struct {
	Courses      int
	Testimonials int
	Posts        int
	Readers      int
	Likes        int
}

// Run seeds the embedded catalogue, then opts.NumPosts posts liked by opts.NumReaders readers.
func (s *Seeder) Run(opts Options) (*Result, error) {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	cat, err := DefaultCatalogue()
	if err != nil {
		return nil, err
	}
	if err := s.SeedCatalogue(cat); err != nil {
		return nil, err
	}
	res := &Result{Courses: len(cat.Courses), Testimonials: len(cat.Testimonials)}

	posts, err := s.factory.CreatePosts(opts.NumPosts)
	if err != nil {
		return nil, err
	}
	res.Posts = len(posts)

	readers, err := s.factory.CreateReaders(opts.NumReaders)
	if err != nil {
		return nil, err
	}
	res.Readers = len(readers)

	if res.Likes, err = s.factory.CreateLikes(posts, readers); err != nil {
		return nil, err
	}

	s.log.Info("seed complete",
		slog.Int("courses", res.Courses),
		slog.Int("testimonials", res.Testimonials),
		slog.Int("posts", res.Posts),
		slog.Int("readers", res.Readers),
		slog.Int("likes", res.Likes),
	)
	return res, nil
}
