package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Testimonial is a student quote shown on the home page.
type Testimonial struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id" yaml:"-"`
	Name      string    `gorm:"not null;index" json:"name" yaml:"name"`
	Role      string    `json:"role" yaml:"role"`
	Quote     string    `gorm:"type:text;not null" json:"quote" yaml:"quote"`
	Stars     int       `gorm:"not null;default:5" json:"stars" yaml:"stars"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

func (t *Testimonial) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
