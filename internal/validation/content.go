// Package validation holds input rules for admin content and public forms.
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"qawala/internal/models"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

var reservedSlugs = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"blogs":    {},
	"courses":  {},
	"pages":    {},
	"settings": {},
	"login":    {},
	"signup":   {},
	"ws":       {},
	"metrics":  {},
}

// ValidateSlug checks slug format and reserved names for posts and courses.
func ValidateSlug(slug string) error {
	return validateSlug(slug, 5)
}

// ValidatePageSlug allows short page slugs such as "faq".
func ValidatePageSlug(slug string) error {
	return validateSlug(slug, 2)
}

func validateSlug(slug string, min int) error {
	if len(slug) < min || len(slug) > 128 {
		return fmt.Errorf("slug must be %d-128 characters", min)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug can only contain lowercase letters, numbers, and hyphens")
	}
	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}
	if _, reserved := reservedSlugs[slug]; reserved {
		return fmt.Errorf("slug is reserved")
	}
	return nil
}

// ValidateEmail accepts a bare address ("a@b.c"), not a display-name form.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return fmt.Errorf("please enter a valid email address")
	}
	return nil
}

// ValidateOptionalURL allows "" or an absolute http(s) URL.
func ValidateOptionalURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be a valid URL", field)
	}
	return nil
}

func minLen(field, value string, n int) error {
	if len([]rune(strings.TrimSpace(value))) < n {
		return fmt.Errorf("%s must be at least %d characters", field, n)
	}
	return nil
}

func first(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ValidateEnrollment checks the public enroll form.
func ValidateEnrollment(name, email string) error {
	return first(
		minLen("name", name, 2),
		ValidateEmail(email),
	)
}

// ValidateBlogPost checks an admin blog post submission.
func ValidateBlogPost(p *models.BlogPost) error {
	return first(
		minLen("title", p.Title, 5),
		ValidateSlug(p.Slug),
		minLen("author", p.Author, 2),
		minLen("content", p.Content, 100),
		minLen("seo_description", p.SEODescription, 10),
		ValidateOptionalURL("feature_image_url", p.FeatureImageURL),
	)
}

// ValidatePage checks an admin page submission.
func ValidatePage(p *models.Page) error {
	return first(
		minLen("title", p.Title, 2),
		ValidatePageSlug(p.Slug),
		minLen("content", p.Content, 1),
	)
}

// ValidateCourse checks an admin course submission.
func ValidateCourse(c *models.Course) error {
	if err := first(
		minLen("title", c.Title, 5),
		ValidateSlug(c.Slug),
		minLen("description", c.Description, 20),
		minLen("instructor", c.Instructor, 3),
		minLen("duration", c.Duration, 1),
		ValidateOptionalURL("image_url", c.ImageURL),
	); err != nil {
		return err
	}
	if c.Price < 0 {
		return fmt.Errorf("price must be a positive number")
	}
	if !c.Level.Valid() {
		return fmt.Errorf("level must be Beginner, Intermediate or Advanced")
	}
	if len(c.Syllabus) == 0 {
		return fmt.Errorf("at least one syllabus item is required")
	}
	for i, item := range c.Syllabus {
		if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.Content) == "" {
			return fmt.Errorf("syllabus item %d needs a title and content", i+1)
		}
	}
	return nil
}

// ValidateTestimonial checks an admin testimonial submission.
func ValidateTestimonial(t *models.Testimonial) error {
	if err := first(
		minLen("name", t.Name, 2),
		minLen("role", t.Role, 2),
		minLen("quote", t.Quote, 10),
	); err != nil {
		return err
	}
	if t.Stars < 1 || t.Stars > 5 {
		return fmt.Errorf("stars must be between 1 and 5")
	}
	return nil
}

// ValidateSettings checks the admin settings form.
func ValidateSettings(s *models.SiteSettings) error {
	return first(
		minLen("site_name", s.SiteName, 1),
		minLen("hero_title", s.HeroTitle, 1),
		minLen("hero_subtitle", s.HeroSubtitle, 1),
		minLen("hero_description", s.HeroDescription, 1),
		ValidateOptionalURL("hero_image_url", s.HeroImageURL),
		ValidateOptionalURL("social_twitter", s.SocialTwitter),
		ValidateOptionalURL("social_linkedin", s.SocialLinkedin),
		ValidateOptionalURL("social_github", s.SocialGithub),
	)
}

// ValidateRole accepts the two known roles.
func ValidateRole(role string) error {
	if role != models.RoleAdmin && role != models.RoleUser {
		return fmt.Errorf("role must be %q or %q", models.RoleAdmin, models.RoleUser)
	}
	return nil
}
