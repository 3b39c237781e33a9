// Package likebutton is the client-side controller behind a post's like button.
// It shows optimistic changes immediately and reconciles them with the store.
package likebutton

import (
	"context"
	"errors"
	"sync"
	"time"

	"qawala/internal/models"
	"qawala/pkg/identity"
)

// DefaultTimeout bounds each store call when Options.Timeout is zero.
const DefaultTimeout = 5 * time.Second

var (
	ErrUnauthenticated       = models.ErrUnauthenticated
	ErrTransientReadFailure  = models.ErrTransientReadFailure
	ErrTransientWriteFailure = models.ErrTransientWriteFailure

	// ErrBusy is returned when a toggle is already in flight.
	ErrBusy = errors.New("likebutton: toggle in progress")
)

// Store is the remote like counter. Implementations report failures by wrapping
// ErrUnauthenticated, ErrTransientReadFailure or ErrTransientWriteFailure; any
// other error is treated as transient.
type Store interface {
	Count(ctx context.Context, postID string) (int64, error)
	Liked(ctx context.Context, postID string, who identity.Snapshot) (bool, error)
	Toggle(ctx context.Context, postID string, who identity.Snapshot) (bool, error)
}

// State of the button.
type State int

const (
	Unknown State = iota
	NotLiked
	Liked
)

func (s State) String() string {
	switch s {
	case NotLiked:
		return "not_liked"
	case Liked:
		return "liked"
	default:
		return "unknown"
	}
}

// View is what the UI renders.
type View struct {
	Count int64
	Liked bool
	State State
	Busy  bool
}

// NoticeKind says which toast to show.
type NoticeKind int

const (
	NoticeSignIn NoticeKind = iota
	NoticeReadFailure
	NoticeWriteFailure
)

// Notice is a user-facing message raised by the controller.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// Options tune a Button.
type Options struct {
	Timeout  time.Duration
	OnNotice func(Notice)
}

type likeState struct {
	count int64
	liked bool
}

// Button controls one post's like button for one viewer.
type Button struct {
	postID   string
	store    Store
	provider identity.Provider
	timeout  time.Duration
	onNotice func(Notice)

	mu        sync.Mutex
	who       identity.Snapshot
	confirmed likeState
	displayed likeState
	known     bool
	busy      bool
	pending   identity.Snapshot

	unsubscribe func()
}

// New creates a Button and subscribes it to identity changes. Call Close to unsubscribe.
func New(postID string, store Store, provider identity.Provider, opts Options) *Button {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	b := &Button{
		postID:   postID,
		store:    store,
		provider: provider,
		timeout:  opts.Timeout,
		onNotice: opts.OnNotice,
		who:      provider.Current(),
	}
	b.unsubscribe = provider.Subscribe(b.identityChanged)
	return b
}

// Close stops following identity changes.
func (b *Button) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

// View returns the current render state.
func (b *Button) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

func (b *Button) viewLocked() View {
	v := View{Count: b.displayed.count, Liked: b.displayed.liked, Busy: b.busy}
	switch {
	case !b.known:
		v.State = Unknown
	case b.displayed.liked:
		v.State = Liked
	default:
		v.State = NotLiked
	}
	return v
}

// Load reads the public count and, when the viewer is known, their liked state.
// A failed read keeps the previous value and raises a read notice.
func (b *Button) Load(ctx context.Context) error {
	countErr := b.refreshCount(ctx)
	likedErr := b.refreshLiked(ctx, b.provider.Current())
	if countErr != nil {
		return countErr
	}
	return likedErr
}

func (b *Button) refreshCount(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	count, err := b.store.Count(cctx, b.postID)
	if err != nil {
		err = readFailure(err)
		b.notify(Notice{Kind: NoticeReadFailure, Message: "Could not load likes", Err: err})
		return err
	}

	b.mu.Lock()
	b.confirmed.count = count
	if !b.busy {
		b.displayed.count = count
	}
	b.mu.Unlock()
	return nil
}

// refreshLiked resolves the liked state for who. A resolving identity leaves the
// state unknown; a signed-out viewer has not liked anything.
func (b *Button) refreshLiked(ctx context.Context, who identity.Snapshot) error {
	switch {
	case who.State == identity.Resolving:
		b.mu.Lock()
		b.who = who
		b.mu.Unlock()
		return nil
	case !who.Resolved():
		b.mu.Lock()
		b.who = who
		b.confirmed.liked = false
		b.displayed.liked = false
		b.known = true
		b.mu.Unlock()
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	liked, err := b.store.Liked(cctx, b.postID, who)
	if err != nil {
		err = readFailure(err)
		b.notify(Notice{Kind: NoticeReadFailure, Message: "Could not load your like", Err: err})
		return err
	}

	// The viewer may have changed while the read was in flight.
	if !sameViewer(b.provider.Current(), who) {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.who = who
	b.confirmed.liked = liked
	if !b.busy || !sameViewer(b.pending, who) {
		b.displayed.liked = liked
	}
	b.known = true
	return nil
}

func (b *Button) identityChanged(who identity.Snapshot) {
	b.mu.Lock()
	prev := b.who
	b.mu.Unlock()

	if sameViewer(prev, who) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	_ = b.refreshLiked(ctx, who)
}

// Toggle flips the like. The display changes at once; on failure it is rolled back,
// on success it is replaced by the store's values.
func (b *Button) Toggle(ctx context.Context) error {
	who := b.provider.Current()
	if !who.Resolved() {
		b.notify(Notice{Kind: NoticeSignIn, Message: "You must be logged in to like a post.", Err: ErrUnauthenticated})
		return models.NewUnauthenticatedError("sign in to like posts")
	}

	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		return ErrBusy
	}
	b.busy = true
	b.pending = who
	before := b.displayed
	b.displayed.liked = !before.liked
	if before.liked {
		b.displayed.count--
	} else {
		b.displayed.count++
	}
	b.mu.Unlock()

	liked, err := b.write(ctx, who)
	current := b.provider.Current()
	switched := !sameViewer(current, who)
	if err != nil {
		b.mu.Lock()
		b.displayed.count = before.count
		if !switched {
			b.displayed.liked = before.liked
		}
		b.busy = false
		b.mu.Unlock()
		if switched {
			_ = b.refreshLiked(ctx, current)
		}
		if errors.Is(err, ErrUnauthenticated) {
			b.notify(Notice{Kind: NoticeSignIn, Message: "Your session has expired. Please sign in again.", Err: err})
		} else {
			b.notify(Notice{Kind: NoticeWriteFailure, Message: "There was a problem processing your request.", Err: err})
		}
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	count, countErr := b.store.Count(cctx, b.postID)
	cancel()

	b.mu.Lock()
	if switched {
		// The result belongs to who, not to the viewer now on screen.
		b.displayed.liked = false
		b.known = false
	} else {
		b.confirmed.liked = liked
		b.displayed.liked = liked
		b.known = true
	}
	if countErr == nil {
		b.confirmed.count = count
		b.displayed.count = count
	}
	b.busy = false
	b.mu.Unlock()

	if switched {
		_ = b.refreshLiked(ctx, current)
	}
	if countErr != nil {
		countErr = readFailure(countErr)
		b.notify(Notice{Kind: NoticeReadFailure, Message: "Could not refresh likes", Err: countErr})
	}
	return nil
}

func (b *Button) write(ctx context.Context, who identity.Snapshot) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	liked, err := b.store.Toggle(cctx, b.postID, who)
	if err == nil {
		return liked, nil
	}
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrTransientWriteFailure) {
		return false, err
	}
	return false, models.NewWriteFailure(err)
}

func sameViewer(a, b identity.Snapshot) bool {
	return a.State == b.State && a.UserID == b.UserID
}

func readFailure(err error) error {
	if errors.Is(err, ErrTransientReadFailure) {
		return err
	}
	return models.NewReadFailure(err)
}

func (b *Button) notify(n Notice) {
	if b.onNotice != nil {
		b.onNotice(n)
	}
}
