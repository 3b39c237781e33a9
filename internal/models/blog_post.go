// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FAQ is a question/answer pair rendered under a blog post.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// BlogPost represents an article on the public blog.
type BlogPost struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	Title           string    `gorm:"not null" json:"title"`
	Slug            string    `gorm:"uniqueIndex;not null;size:128" json:"slug"`
	Author          string    `gorm:"not null" json:"author"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	SEODescription  string    `gorm:"column:seo_description" json:"seo_description"`
	FeatureImageURL string    `json:"feature_image_url,omitempty"`
	FAQs            []FAQ     `gorm:"serializer:json;type:text" json:"faqs,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int64     `gorm:"->;-:migration" json:"likes_count"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not supply an ID.
func (p *BlogPost) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
