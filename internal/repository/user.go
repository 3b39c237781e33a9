package repository

import (
	"context"

	"qawala/internal/cache"
	"qawala/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for user profiles.
type UserRepository interface {
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	UpsertProfile(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	SetRole(ctx context.Context, uid, role string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(uid), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
			return lookupError(err, "User", uid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertProfile creates the profile or refreshes email and display name. The role
// column is only written on insert.
func (r *userRepository) UpsertProfile(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "display_name", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.UserKey(user.UID))
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) SetRole(ctx context.Context, uid, role string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("uid = ?", uid).Update("role", role)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", uid)
	}
	cache.Invalidate(ctx, cache.UserKey(uid))
	return nil
}
