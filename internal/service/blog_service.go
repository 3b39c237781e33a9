package service

import (
	"context"
	"strings"

	"qawala/internal/models"
	"qawala/internal/repository"
	"qawala/internal/validation"
)

// BlogService manages blog posts.
type BlogService struct {
	posts    repository.BlogPostRepository
	notifier ContentNotifier
}

// BlogPostInput is the editable part of a blog post.
type BlogPostInput struct {
	Title           string       `json:"title"`
	Slug            string       `json:"slug"`
	Author          string       `json:"author"`
	Content         string       `json:"content"`
	SEODescription  string       `json:"seo_description"`
	FeatureImageURL string       `json:"feature_image_url"`
	FAQs            []models.FAQ `json:"faqs"`
}

func (in BlogPostInput) apply(p *models.BlogPost) {
	p.Title = strings.TrimSpace(in.Title)
	p.Slug = strings.TrimSpace(in.Slug)
	p.Author = strings.TrimSpace(in.Author)
	p.Content = in.Content
	p.SEODescription = strings.TrimSpace(in.SEODescription)
	p.FeatureImageURL = strings.TrimSpace(in.FeatureImageURL)
	p.FAQs = in.FAQs
}

func NewBlogService(posts repository.BlogPostRepository, notifier ContentNotifier) *BlogService {
	return &BlogService{posts: posts, notifier: notifier}
}

// List returns posts newest first, each with its current like count.
func (s *BlogService) List(ctx context.Context, limit, offset int) ([]*models.BlogPost, error) {
	return s.posts.List(ctx, limit, offset)
}

func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return s.posts.GetBySlug(ctx, slug)
}

func (s *BlogService) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *BlogService) Create(ctx context.Context, in BlogPostInput) (*models.BlogPost, error) {
	post := &models.BlogPost{}
	in.apply(post)
	if err := validation.ValidateBlogPost(post); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	notifyContent(ctx, s.notifier, KindBlog, post.ID, ActionCreated)
	return post, nil
}

func (s *BlogService) Update(ctx context.Context, id string, in BlogPostInput) (*models.BlogPost, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(post)
	if err := validation.ValidateBlogPost(post); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	notifyContent(ctx, s.notifier, KindBlog, post.ID, ActionUpdated)
	return post, nil
}

// Delete removes the post together with all of its likes.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	notifyContent(ctx, s.notifier, KindBlog, id, ActionDeleted)
	return nil
}
