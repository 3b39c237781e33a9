package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Page is a free-form content page served under its slug.
type Page struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	Slug           string    `gorm:"uniqueIndex;not null;size:128" json:"slug"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	SEODescription string    `gorm:"column:seo_description" json:"seo_description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *Page) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
