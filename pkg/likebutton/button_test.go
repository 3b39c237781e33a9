package likebutton

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"qawala/internal/models"
	"qawala/pkg/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps likes in memory and can be told to fail or block.
type fakeStore struct {
	mu     sync.Mutex
	likes  map[string]bool
	calls  int
	writes int

	countErr  error
	likedErr  error
	toggleErr error
	block     chan struct{}
}

func newFakeStore(others int) *fakeStore {
	s := &fakeStore{likes: make(map[string]bool)}
	for i := 0; i < others; i++ {
		s.likes[string(rune('a'+i))] = true
	}
	return s
}

func (s *fakeStore) Count(_ context.Context, _ string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.countErr != nil {
		return 0, s.countErr
	}
	return int64(len(s.likes)), nil
}

func (s *fakeStore) Liked(_ context.Context, _ string, who identity.Snapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.likedErr != nil {
		return false, s.likedErr
	}
	return s.likes[who.UserID], nil
}

func (s *fakeStore) Toggle(ctx context.Context, _ string, who identity.Snapshot) (bool, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.toggleErr != nil {
		return false, s.toggleErr
	}
	s.writes++
	if s.likes[who.UserID] {
		delete(s.likes, who.UserID)
		return false, nil
	}
	s.likes[who.UserID] = true
	return true, nil
}

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *noticeLog) add(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *noticeLog) kinds() []NoticeKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]NoticeKind, 0, len(l.notices))
	for _, n := range l.notices {
		out = append(out, n.Kind)
	}
	return out
}

func signedIn(uid string) identity.Snapshot {
	return identity.Snapshot{State: identity.SignedIn, UserID: uid, Token: "token-" + uid}
}

func TestButton_LoadAndToggleScenario(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(4)
	log := &noticeLog{}
	b := New("p1", store, identity.NewStatic(signedIn("u1")), Options{OnNotice: log.add})
	defer b.Close()

	require.NoError(t, b.Load(ctx))
	assert.Equal(t, View{Count: 4, Liked: false, State: NotLiked}, b.View())

	require.NoError(t, b.Toggle(ctx))
	assert.Equal(t, View{Count: 5, Liked: true, State: Liked}, b.View())

	require.NoError(t, b.Toggle(ctx))
	assert.Equal(t, View{Count: 4, Liked: false, State: NotLiked}, b.View())
	assert.Empty(t, log.notices)
}

func TestButton_UnauthenticatedToggleMakesNoCall(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(4)
	log := &noticeLog{}
	b := New("p1", store, identity.NewStatic(identity.Snapshot{State: identity.SignedOut}), Options{OnNotice: log.add})
	defer b.Close()

	require.NoError(t, b.Load(ctx))
	assert.Equal(t, View{Count: 4, Liked: false, State: NotLiked}, b.View())
	calls := store.callCount()

	err := b.Toggle(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.Equal(t, calls, store.callCount())
	assert.Equal(t, View{Count: 4, Liked: false, State: NotLiked}, b.View())
	assert.Equal(t, []NoticeKind{NoticeSignIn}, log.kinds())
}

func TestButton_SignedOutSkipsLikedRead(t *testing.T) {
	store := newFakeStore(2)
	store.likedErr = errors.New("must not be called")
	b := New("p1", store, identity.NewStatic(identity.Snapshot{State: identity.SignedOut}), Options{})
	defer b.Close()

	require.NoError(t, b.Load(context.Background()))
	assert.Equal(t, View{Count: 2, State: NotLiked}, b.View())
}

func TestButton_RollbackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(4)
	log := &noticeLog{}
	b := New("p1", store, identity.NewStatic(signedIn("u1")), Options{OnNotice: log.add})
	defer b.Close()
	require.NoError(t, b.Load(ctx))

	store.toggleErr = errors.New("connection refused")
	err := b.Toggle(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransientWriteFailure))
	assert.Equal(t, View{Count: 4, Liked: false, State: NotLiked}, b.View())
	assert.Equal(t, []NoticeKind{NoticeWriteFailure}, log.kinds())

	count, _ := store.Count(ctx, "p1")
	assert.EqualValues(t, 4, count)
}

func TestButton_OptimisticDisplayWhileInFlight(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(4)
	b := New("p1", store, identity.NewStatic(signedIn("u1")), Options{})
	defer b.Close()
	require.NoError(t, b.Load(ctx))

	store.block = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- b.Toggle(ctx) }()

	require.Eventually(t, func() bool { return b.View().Busy }, time.Second, time.Millisecond)
	assert.Equal(t, View{Count: 5, Liked: true, State: Liked, Busy: true}, b.View())
	assert.ErrorIs(t, b.Toggle(ctx), ErrBusy)

	close(store.block)
	require.NoError(t, <-done)
	assert.Equal(t, View{Count: 5, Liked: true, State: Liked}, b.View())
}

func TestButton_TimedOutWriteRollsBack(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1)
	log := &noticeLog{}
	b := New("p1", store, identity.NewStatic(signedIn("u1")), Options{Timeout: 20 * time.Millisecond, OnNotice: log.add})
	defer b.Close()
	require.NoError(t, b.Load(ctx))

	store.block = make(chan struct{})
	defer close(store.block)

	err := b.Toggle(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransientWriteFailure))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, View{Count: 1, Liked: false, State: NotLiked}, b.View())
}

func TestButton_ReconcilesWithStoreCount(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(4)
	b := New("p1", store, identity.NewStatic(signedIn("u1")), Options{})
	defer b.Close()
	require.NoError(t, b.Load(ctx))

	// Someone else liked in the meantime; the re-read wins over local arithmetic.
	store.mu.Lock()
	store.likes["zz"] = true
	store.mu.Unlock()

	require.NoError(t, b.Toggle(ctx))
	assert.Equal(t, View{Count: 6, Liked: true, State: Liked}, b.View())
}

func TestButton_ReadFailureKeepsLastValue(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(3)
	log := &noticeLog{}
	b := New("p1", store, identity.NewStatic(signedIn("u1")), Options{OnNotice: log.add})
	defer b.Close()
	require.NoError(t, b.Load(ctx))

	store.countErr = errors.New("unavailable")
	err := b.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransientReadFailure))
	assert.EqualValues(t, 3, b.View().Count)
	assert.Equal(t, []NoticeKind{NoticeReadFailure}, log.kinds())
}

func TestButton_InitialReadFailureShowsZero(t *testing.T) {
	store := newFakeStore(3)
	store.countErr = errors.New("unavailable")
	store.likedErr = errors.New("unavailable")
	b := New("p1", store, identity.NewStatic(signedIn("u1")), Options{})
	defer b.Close()

	require.Error(t, b.Load(context.Background()))
	assert.Equal(t, View{Count: 0, Liked: false, State: Unknown}, b.View())
}

func TestButton_FollowsIdentity(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(0)
	store.likes["u1"] = true
	provider := identity.NewStatic(identity.Snapshot{State: identity.Resolving})
	b := New("p1", store, provider, Options{})
	defer b.Close()

	require.NoError(t, b.Load(ctx))
	assert.Equal(t, View{Count: 1, State: Unknown}, b.View())

	provider.Set(signedIn("u1"))
	assert.Equal(t, View{Count: 1, Liked: true, State: Liked}, b.View())

	provider.Set(signedIn("u2"))
	assert.Equal(t, View{Count: 1, Liked: false, State: NotLiked}, b.View())

	provider.Set(signedIn("u1"))
	provider.SignOut()
	assert.Equal(t, View{Count: 1, Liked: false, State: NotLiked}, b.View())

	b.Close()
	provider.Set(signedIn("u1"))
	assert.False(t, b.View().Liked)
}

func TestButton_SignOutDuringToggle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1)
	provider := identity.NewStatic(signedIn("u1"))
	b := New("p1", store, provider, Options{})
	defer b.Close()
	require.NoError(t, b.Load(ctx))

	store.block = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- b.Toggle(ctx) }()
	require.Eventually(t, func() bool { return b.View().Busy }, time.Second, time.Millisecond)

	provider.SignOut()
	close(store.block)
	require.NoError(t, <-done)

	// u1's like landed, but nobody signed in sees it as theirs.
	assert.Equal(t, View{Count: 2, Liked: false, State: NotLiked}, b.View())
	assert.True(t, store.likes["u1"])
}

func TestButton_UserSwitchDuringToggle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1)
	provider := identity.NewStatic(signedIn("u1"))
	b := New("p1", store, provider, Options{})
	defer b.Close()
	require.NoError(t, b.Load(ctx))

	store.block = make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- b.Toggle(ctx) }()
	require.Eventually(t, func() bool { return b.View().Busy }, time.Second, time.Millisecond)

	provider.Set(signedIn("u2"))
	close(store.block)
	require.NoError(t, <-done)

	assert.Equal(t, View{Count: 2, Liked: false, State: NotLiked}, b.View())
	store.mu.Lock()
	assert.True(t, store.likes["u1"])
	assert.False(t, store.likes["u2"])
	store.mu.Unlock()

	require.NoError(t, b.Toggle(ctx))
	assert.Equal(t, View{Count: 3, Liked: true, State: Liked}, b.View())
}

func TestButton_UserSwitchDuringFailedToggle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(1)
	store.likes["u2"] = true
	provider := identity.NewStatic(signedIn("u1"))
	b := New("p1", store, provider, Options{})
	defer b.Close()
	require.NoError(t, b.Load(ctx))
	assert.Equal(t, View{Count: 2, Liked: false, State: NotLiked}, b.View())

	store.block = make(chan struct{})
	store.toggleErr = errors.New("unavailable")
	done := make(chan error, 1)
	go func() { done <- b.Toggle(ctx) }()
	require.Eventually(t, func() bool { return b.View().Busy }, time.Second, time.Millisecond)

	provider.Set(signedIn("u2"))
	close(store.block)
	assert.True(t, errors.Is(<-done, ErrTransientWriteFailure))

	assert.Equal(t, View{Count: 2, Liked: true, State: Liked}, b.View())
}

func TestButton_ExpiredSessionOnToggle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(2)
	log := &noticeLog{}
	b := New("p1", store, identity.NewStatic(signedIn("u1")), Options{OnNotice: log.add})
	defer b.Close()
	require.NoError(t, b.Load(ctx))

	store.toggleErr = models.NewUnauthenticatedError("token revoked")
	err := b.Toggle(ctx)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.Equal(t, View{Count: 2, State: NotLiked}, b.View())
	assert.Equal(t, []NoticeKind{NoticeSignIn}, log.kinds())
}
