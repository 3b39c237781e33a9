package repository

import (
	"context"

	"qawala/internal/cache"
	"qawala/internal/models"

	"gorm.io/gorm"
)

// likesCountColumn derives each post's like count at query time.
const likesCountColumn = "blog_posts.*, (SELECT COUNT(*) FROM likes WHERE likes.post_id = blog_posts.id) AS likes_count"

// BlogPostRepository defines the interface for blog post data operations
type BlogPostRepository interface {
	Create(ctx context.Context, post *models.BlogPost) error
	GetByID(ctx context.Context, id string) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	List(ctx context.Context, limit, offset int) ([]*models.BlogPost, error)
	Update(ctx context.Context, post *models.BlogPost) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type blogPostRepository struct {
	db *gorm.DB
}

// NewBlogPostRepository creates a new blog post repository
func NewBlogPostRepository(db *gorm.DB) BlogPostRepository {
	return &blogPostRepository{db: db}
}

func (r *blogPostRepository) Create(ctx context.Context, post *models.BlogPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return writeError(err, "Blog post")
	}
	return nil
}

func (r *blogPostRepository) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.WithContext(ctx).
		Select(likesCountColumn).
		Where("blog_posts.id = ?", id).
		First(&post).Error; err != nil {
		return nil, lookupError(err, "Blog post", id)
	}
	return &post, nil
}

// GetBySlug serves post content from cache; the like count is always read fresh.
func (r *blogPostRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := cache.Aside(ctx, cache.BlogKey(slug), &post, cache.BlogTTL, func() error {
		if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
			return lookupError(err, "Blog post", slug)
		}
		post.LikesCount = 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", post.ID).
		Count(&post.LikesCount).Error; err != nil {
		return nil, models.NewReadFailure(err)
	}
	return &post, nil
}

func (r *blogPostRepository) List(ctx context.Context, limit, offset int) ([]*models.BlogPost, error) {
	var posts []*models.BlogPost
	if err := r.db.WithContext(ctx).
		Select(likesCountColumn).
		Order("blog_posts.created_at DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *blogPostRepository) Update(ctx context.Context, post *models.BlogPost) error {
	var prev models.BlogPost
	if err := r.db.WithContext(ctx).Select("slug").Where("id = ?", post.ID).First(&prev).Error; err != nil {
		return lookupError(err, "Blog post", post.ID)
	}
	if err := r.db.WithContext(ctx).Omit("created_at").Save(post).Error; err != nil {
		return writeError(err, "Blog post")
	}
	cache.Invalidate(ctx, cache.BlogKey(prev.Slug), cache.BlogKey(post.Slug))
	return nil
}

// Delete removes the post and its likes in one transaction.
func (r *blogPostRepository) Delete(ctx context.Context, id string) error {
	var post models.BlogPost
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&post).Error; err != nil {
			return err
		}
		if err := NewLikeRepository(tx).DeleteByPost(ctx, id); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return lookupError(err, "Blog post", id)
	}
	cache.Invalidate(ctx, cache.BlogKey(post.Slug))
	return nil
}

func (r *blogPostRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BlogPost{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
