// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"
	"fmt"

	"qawala/internal/events"
	"qawala/internal/featureflags"
	"qawala/internal/middleware"
	"qawala/internal/models"
	"qawala/internal/observability"
	"qawala/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// LikeNotifier receives the re-read count after every successful toggle.
type LikeNotifier interface {
	LikeCountChanged(ctx context.Context, postID string, count int64)
}

// ToggleResult is the outcome of a toggle. Count is the re-read store count and is
// only meaningful when Reconciled is true.
type ToggleResult struct {
	Liked      bool
	Count      int64
	Reconciled bool
}

// LikeService implements the like counter. The existence of a like record is the
// liked state and the count is always derived from the store.
type LikeService struct {
	likes    repository.LikeRepository
	notifier LikeNotifier
	events   events.Publisher
	flags    *featureflags.Manager
}

// NewLikeService wires a LikeService. notifier and publisher may be nil.
func NewLikeService(
	likes repository.LikeRepository,
	notifier LikeNotifier,
	publisher events.Publisher,
	flags *featureflags.Manager,
) *LikeService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &LikeService{
		likes:    likes,
		notifier: notifier,
		events:   publisher,
		flags:    flags,
	}
}

// GetLikeCount returns the number of like records for postID. No identity needed.
func (s *LikeService) GetLikeCount(ctx context.Context, postID string) (int64, error) {
	ctx, span := observability.StartSpan(ctx, "LikeService", "GetLikeCount", attribute.String("post.id", postID))
	count, err := s.likes.Count(ctx, postID)
	if err != nil {
		err = models.NewReadFailure(err)
	}
	observability.EndSpan(span, err)
	return count, err
}

// MaxBatchPosts caps how many posts one GetLikeCounts call may ask for.
const MaxBatchPosts = 100

// GetLikeCounts returns the like count of each post, for list views.
func (s *LikeService) GetLikeCounts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	if len(postIDs) > MaxBatchPosts {
		return nil, models.NewValidationError(fmt.Sprintf("at most %d posts per request", MaxBatchPosts))
	}
	ctx, span := observability.StartSpan(ctx, "LikeService", "GetLikeCounts", attribute.Int("post.count", len(postIDs)))
	counts, err := s.likes.CountMany(ctx, postIDs)
	if err != nil {
		err = models.NewReadFailure(err)
	}
	observability.EndSpan(span, err)
	return counts, err
}

// GetUserLikeState reports whether userID has liked postID. An anonymous caller
// (empty userID) gets false without a store read.
func (s *LikeService) GetUserLikeState(ctx context.Context, postID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	ctx, span := observability.StartSpan(ctx, "LikeService", "GetUserLikeState", attribute.String("post.id", postID))
	liked, err := s.likes.Exists(ctx, postID, userID)
	if err != nil {
		err = models.NewReadFailure(err)
	}
	observability.EndSpan(span, err)
	return liked, err
}

// Snapshot reads the count and, for a resolved viewer, the liked state.
func (s *LikeService) Snapshot(ctx context.Context, postID, userID string) (models.LikeSnapshot, error) {
	snap := models.LikeSnapshot{PostID: postID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.GetLikeCount(gctx, postID)
		snap.Count = count
		return err
	})
	g.Go(func() error {
		liked, err := s.GetUserLikeState(gctx, postID, userID)
		snap.Liked = liked
		return err
	})
	if err := g.Wait(); err != nil {
		return models.LikeSnapshot{PostID: postID}, err
	}
	return snap, nil
}

// ToggleLike flips userID's like on postID and returns the new liked state.
func (s *LikeService) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	res, err := s.Toggle(ctx, postID, userID)
	return res.Liked, err
}

// Toggle deletes the like if it exists and creates it otherwise, then re-reads the
// count from the store. An empty userID fails with Unauthenticated and touches nothing.
func (s *LikeService) Toggle(ctx context.Context, postID, userID string) (ToggleResult, error) {
	if userID == "" {
		observability.LikeToggles.WithLabelValues("unauthenticated").Inc()
		return ToggleResult{}, models.NewUnauthenticatedError("Sign in to like posts")
	}

	ctx, span := observability.StartSpan(ctx, "LikeService", "Toggle", attribute.String("post.id", postID))
	res, err := s.toggle(ctx, postID, userID)
	observability.EndSpan(span, err)
	if err != nil {
		observability.LikeToggles.WithLabelValues("failed").Inc()
		return ToggleResult{}, err
	}

	if res.Liked {
		observability.LikeToggles.WithLabelValues("liked").Inc()
	} else {
		observability.LikeToggles.WithLabelValues("unliked").Inc()
	}
	return res, nil
}

func (s *LikeService) toggle(ctx context.Context, postID, userID string) (ToggleResult, error) {
	exists, err := s.likes.Exists(ctx, postID, userID)
	if err != nil {
		return ToggleResult{}, models.NewWriteFailure(err)
	}

	res := ToggleResult{Liked: !exists}
	if exists {
		err = s.likes.Delete(ctx, postID, userID)
	} else {
		err = s.likes.Create(ctx, postID, userID)
	}
	if err != nil {
		return ToggleResult{}, models.NewWriteFailure(err)
	}

	// The mutation is committed; a failed re-read only leaves the count unknown.
	count, err := s.likes.Count(ctx, postID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "like count re-read failed", "post_id", postID, "error", err)
		return res, nil
	}
	res.Count = count
	res.Reconciled = true

	if s.notifier != nil && s.flags.On(featureflags.RealtimeLikes) {
		s.notifier.LikeCountChanged(ctx, postID, count)
	}
	if s.flags.Enabled(featureflags.LikeEvents, userID) {
		ev := events.NewEvent(events.TypeLikeToggled, postID, events.LikeToggled{
			PostID: postID,
			UserID: userID,
			Liked:  res.Liked,
			Count:  count,
		})
		if err := s.events.Publish(ctx, ev); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish like event", "post_id", postID, "error", err)
		}
	}
	return res, nil
}
