package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseLevel is the difficulty band shown on a course card.
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "Beginner"
	CourseLevelIntermediate CourseLevel = "Intermediate"
	CourseLevelAdvanced     CourseLevel = "Advanced"
)

// Valid reports whether l is one of the known levels.
func (l CourseLevel) Valid() bool {
	switch l {
	case CourseLevelBeginner, CourseLevelIntermediate, CourseLevelAdvanced:
		return true
	}
	return false
}

// SyllabusItem is one module of a course outline.
type SyllabusItem struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// Course represents a sellable training course.
type Course struct {
	ID          string         `gorm:"primaryKey;size:64" json:"id" yaml:"-"`
	Slug        string         `gorm:"uniqueIndex;not null;size:128" json:"slug" yaml:"slug"`
	Title       string         `gorm:"not null" json:"title" yaml:"title"`
	Description string         `gorm:"type:text" json:"description" yaml:"description"`
	Instructor  string         `json:"instructor" yaml:"instructor"`
	Price       float64        `gorm:"not null;default:0" json:"price" yaml:"price"`
	Duration    string         `json:"duration" yaml:"duration"`
	Level       CourseLevel    `gorm:"size:32;not null" json:"level" yaml:"level"`
	ImageURL    string         `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Syllabus    []SyllabusItem `gorm:"serializer:json;type:text" json:"syllabus" yaml:"syllabus"`
	CreatedAt   time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"-"`
}

func (c *Course) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Enrollment records a visitor signing up for a course. Email is unique per course;
// enrolling again with the same email overwrites the name.
type Enrollment struct {
	CourseSlug string    `gorm:"primaryKey;size:128" json:"course_slug"`
	Email      string    `gorm:"primaryKey;size:255" json:"email"`
	Name       string    `gorm:"not null" json:"name"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`
}
