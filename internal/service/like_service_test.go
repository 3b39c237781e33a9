package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"qawala/internal/events"
	"qawala/internal/featureflags"
	"qawala/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memLikeRepo is an in-memory repository.LikeRepository with per-call failure hooks.
type memLikeRepo struct {
	mu    sync.Mutex
	likes map[string]map[string]bool

	existsErr error
	countErr  error
	createErr error
	deleteErr error

	writes int
}

func newMemLikeRepo() *memLikeRepo {
	return &memLikeRepo{likes: make(map[string]map[string]bool)}
}

func (r *memLikeRepo) Exists(_ context.Context, postID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsErr != nil {
		return false, r.existsErr
	}
	return r.likes[postID][userID], nil
}

func (r *memLikeRepo) Count(_ context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.likes[postID])), nil
}

func (r *memLikeRepo) CountMany(ctx context.Context, postIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(postIDs))
	for _, id := range postIDs {
		n, err := r.Count(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, nil
}

func (r *memLikeRepo) Create(_ context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.writes++
	if r.likes[postID] == nil {
		r.likes[postID] = make(map[string]bool)
	}
	r.likes[postID][userID] = true
	return nil
}

func (r *memLikeRepo) Delete(_ context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.writes++
	delete(r.likes[postID], userID)
	return nil
}

func (r *memLikeRepo) DeleteByPost(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.likes, postID)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	counts []int64
}

func (n *recordingNotifier) LikeCountChanged(_ context.Context, _ string, count int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counts = append(n.counts, count)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func TestLikeService_ToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemLikeRepo()
	svc := NewLikeService(repo, nil, nil, nil)

	before, err := svc.GetLikeCount(ctx, "p1")
	require.NoError(t, err)

	res, err := svc.Toggle(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.True(t, res.Reconciled)
	assert.Equal(t, before+1, res.Count)

	res, err = svc.Toggle(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, before, res.Count)

	liked, err := svc.GetUserLikeState(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeService_ReadsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemLikeRepo()
	svc := NewLikeService(repo, nil, nil, nil)
	_, err := svc.Toggle(ctx, "p1", "u1")
	require.NoError(t, err)
	writes := repo.writes

	for i := 0; i < 3; i++ {
		count, err := svc.GetLikeCount(ctx, "p1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		liked, err := svc.GetUserLikeState(ctx, "p1", "u1")
		require.NoError(t, err)
		assert.True(t, liked)
	}
	assert.Equal(t, writes, repo.writes)
}

func TestLikeService_CountEqualsDistinctLikers(t *testing.T) {
	ctx := context.Background()
	repo := newMemLikeRepo()
	svc := NewLikeService(repo, nil, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.Toggle(ctx, "p1", fmt.Sprintf("u%d", i))
		}(i)
	}
	wg.Wait()

	// u0..u4 unlike again
	for i := 0; i < 5; i++ {
		res, err := svc.Toggle(ctx, "p1", fmt.Sprintf("u%d", i))
		require.NoError(t, err)
		assert.False(t, res.Liked)
	}

	count, err := svc.GetLikeCount(ctx, "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 15, count)
}

func TestLikeService_UnauthenticatedToggleDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	repo := newMemLikeRepo()
	_ = repo.Create(ctx, "p1", "u1")
	writes := repo.writes
	pub := &recordingPublisher{}
	svc := NewLikeService(repo, nil, pub, featureflags.NewManager("like_events=on"))

	_, err := svc.Toggle(ctx, "p1", "")
	assertCode(t, err, models.CodeUnauthenticated)
	assert.True(t, errors.Is(err, models.ErrUnauthenticated))
	assert.Equal(t, writes, repo.writes)
	assert.Empty(t, pub.events)

	count, err := svc.GetLikeCount(ctx, "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLikeService_AnonymousStateIsNotLiked(t *testing.T) {
	repo := newMemLikeRepo()
	repo.existsErr = errors.New("must not be called")
	svc := NewLikeService(repo, nil, nil, nil)

	liked, err := svc.GetUserLikeState(context.Background(), "p1", "")
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeService_WriteFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("create fails", func(t *testing.T) {
		repo := newMemLikeRepo()
		repo.createErr = errors.New("connection reset")
		svc := NewLikeService(repo, nil, nil, nil)

		_, err := svc.Toggle(ctx, "p1", "u1")
		assertCode(t, err, models.CodeWriteFailure)
		assert.True(t, errors.Is(err, models.ErrTransientWriteFailure))

		count, err := svc.GetLikeCount(ctx, "p1")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("delete fails", func(t *testing.T) {
		repo := newMemLikeRepo()
		require.NoError(t, repo.Create(ctx, "p1", "u1"))
		repo.deleteErr = errors.New("deadline exceeded")
		svc := NewLikeService(repo, nil, nil, nil)

		_, err := svc.Toggle(ctx, "p1", "u1")
		assertCode(t, err, models.CodeWriteFailure)
		liked, err := svc.GetUserLikeState(ctx, "p1", "u1")
		require.NoError(t, err)
		assert.True(t, liked)
	})

	t.Run("membership read fails", func(t *testing.T) {
		repo := newMemLikeRepo()
		repo.existsErr = errors.New("timeout")
		svc := NewLikeService(repo, nil, nil, nil)

		_, err := svc.Toggle(ctx, "p1", "u1")
		assertCode(t, err, models.CodeWriteFailure)
		assert.Zero(t, repo.writes)
	})
}

func TestLikeService_ReadFailures(t *testing.T) {
	ctx := context.Background()
	repo := newMemLikeRepo()
	repo.countErr = errors.New("timeout")
	repo.existsErr = errors.New("timeout")
	svc := NewLikeService(repo, nil, nil, nil)

	_, err := svc.GetLikeCount(ctx, "p1")
	assertCode(t, err, models.CodeReadFailure)
	assert.True(t, errors.Is(err, models.ErrTransientReadFailure))

	_, err = svc.GetUserLikeState(ctx, "p1", "u1")
	assertCode(t, err, models.CodeReadFailure)

	_, err = svc.Snapshot(ctx, "p1", "u1")
	assertCode(t, err, models.CodeReadFailure)
}

func TestLikeService_GetLikeCounts(t *testing.T) {
	ctx := context.Background()
	repo := newMemLikeRepo()
	svc := NewLikeService(repo, nil, nil, nil)
	for _, uid := range []string{"u1", "u2"} {
		_, err := svc.Toggle(ctx, "p1", uid)
		require.NoError(t, err)
	}

	counts, err := svc.GetLikeCounts(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"p1": 2, "p2": 0}, counts)

	_, err = svc.GetLikeCounts(ctx, make([]string, MaxBatchPosts+1))
	assertCode(t, err, models.CodeValidation)

	repo.countErr = errors.New("timeout")
	_, err = svc.GetLikeCounts(ctx, []string{"p1"})
	assertCode(t, err, models.CodeReadFailure)
}

func TestLikeService_RecountFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	repo := newMemLikeRepo()
	repo.countErr = errors.New("replica lag")
	notifier := &recordingNotifier{}
	svc := NewLikeService(repo, notifier, nil, featureflags.NewManager("realtime_likes=on"))

	res, err := svc.Toggle(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.False(t, res.Reconciled)
	assert.Empty(t, notifier.counts)
}

func TestLikeService_Snapshot(t *testing.T) {
	ctx := context.Background()
	repo := newMemLikeRepo()
	svc := NewLikeService(repo, nil, nil, nil)
	_, err := svc.Toggle(ctx, "p1", "u1")
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, "p1", "u2")
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeSnapshot{PostID: "p1", Count: 2, Liked: true}, snap)

	snap, err = svc.Snapshot(ctx, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, models.LikeSnapshot{PostID: "p1", Count: 2, Liked: false}, snap)
}

func TestLikeService_NotifiesAndPublishesBehindFlags(t *testing.T) {
	ctx := context.Background()

	t.Run("flags off", func(t *testing.T) {
		notifier := &recordingNotifier{}
		pub := &recordingPublisher{}
		svc := NewLikeService(newMemLikeRepo(), notifier, pub, featureflags.NewManager(""))

		_, err := svc.Toggle(ctx, "p1", "u1")
		require.NoError(t, err)
		assert.Empty(t, notifier.counts)
		assert.Empty(t, pub.events)
	})

	t.Run("flags on", func(t *testing.T) {
		notifier := &recordingNotifier{}
		pub := &recordingPublisher{}
		svc := NewLikeService(newMemLikeRepo(), notifier, pub, featureflags.NewManager("realtime_likes=on,like_events=on"))

		_, err := svc.Toggle(ctx, "p1", "u1")
		require.NoError(t, err)
		_, err = svc.Toggle(ctx, "p1", "u2")
		require.NoError(t, err)

		assert.Equal(t, []int64{1, 2}, notifier.counts)
		require.Len(t, pub.events, 2)
		assert.Equal(t, events.TypeLikeToggled, pub.events[0].Type)
		assert.Equal(t, "p1", pub.events[0].Key)
		data, ok := pub.events[1].Data.(events.LikeToggled)
		require.True(t, ok)
		assert.Equal(t, events.LikeToggled{PostID: "p1", UserID: "u2", Liked: true, Count: 2}, data)
	})

	t.Run("publish failure is not a toggle failure", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("broker down")}
		svc := NewLikeService(newMemLikeRepo(), nil, pub, featureflags.NewManager("like_events=on"))

		res, err := svc.Toggle(ctx, "p1", "u1")
		require.NoError(t, err)
		assert.True(t, res.Liked)
	})
}

// The like button scenario from the product brief: p1 starts at 4 likes, u1 has
// not liked it, u1 toggles twice; then anonymous u2 tries to toggle.
func TestLikeService_PostScenario(t *testing.T) {
	ctx := context.Background()
	repo := newMemLikeRepo()
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Create(ctx, "p1", fmt.Sprintf("other-%d", i)))
	}
	svc := NewLikeService(repo, nil, nil, nil)

	snap, err := svc.Snapshot(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, snap.Count)
	assert.False(t, snap.Liked)

	liked, err := svc.ToggleLike(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.True(t, liked)
	snap, err = svc.Snapshot(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeSnapshot{PostID: "p1", Count: 5, Liked: true}, snap)

	liked, err = svc.ToggleLike(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.False(t, liked)
	snap, err = svc.Snapshot(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeSnapshot{PostID: "p1", Count: 4, Liked: false}, snap)

	_, err = svc.ToggleLike(ctx, "p1", "")
	assertCode(t, err, models.CodeUnauthenticated)
	count, err := svc.GetLikeCount(ctx, "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}
