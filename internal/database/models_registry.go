package database

import "qawala/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.BlogPost{},
		&models.Like{},
		&models.Page{},
		&models.Course{},
		&models.Enrollment{},
		&models.Testimonial{},
		&models.SiteSettings{},
	}
}
