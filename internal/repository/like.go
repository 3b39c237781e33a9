package repository

import (
	"context"

	"qawala/internal/models"
	"qawala/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores one record per (post, user) like. The count of a post is
// always the number of its records; nothing else tracks it.
type LikeRepository interface {
	Exists(ctx context.Context, postID, userID string) (bool, error)
	Count(ctx context.Context, postID string) (int64, error)
	CountMany(ctx context.Context, postIDs []string) (map[string]int64, error)
	Create(ctx context.Context, postID, userID string) error
	Delete(ctx context.Context, postID, userID string) error
	DeleteByPost(ctx context.Context, postID string) error
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, postID, userID string) (bool, error) {
	defer observability.TrackQuery("exists", "likes")()
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, postID string) (int64, error) {
	defer observability.TrackQuery("count", "likes")()
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountMany counts likes for several posts in one query. Posts without likes map to 0.
func (r *likeRepository) CountMany(ctx context.Context, postIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}
	defer observability.TrackQuery("count_many", "likes")()

	var rows []struct {
		PostID string
		Total  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, id := range postIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}

// Create inserts the like stamped with the database clock; an existing record for
// the same key is left untouched.
func (r *likeRepository) Create(ctx context.Context, postID, userID string) error {
	defer observability.TrackQuery("create", "likes")()
	return r.db.WithContext(ctx).
		Model(&models.Like{}).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{
			"post_id":    postID,
			"user_id":    userID,
			"created_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

// Delete hard-deletes the like. Deleting a missing record is not an error.
func (r *likeRepository) Delete(ctx context.Context, postID, userID string) error {
	defer observability.TrackQuery("delete", "likes")()
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error
}

// DeleteByPost drops every like of postID. Run it inside the transaction that
// deletes the post.
func (r *likeRepository) DeleteByPost(ctx context.Context, postID string) error {
	defer observability.TrackQuery("delete_by_post", "likes")()
	return r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Like{}).Error
}
