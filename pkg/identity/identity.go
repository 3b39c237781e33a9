// Package identity models the viewer's sign-in state as seen by a client.
package identity

import "sync"

// State is where identity resolution stands.
type State int

const (
	// Resolving means the provider has not decided yet whether anyone is signed in.
	Resolving State = iota
	SignedOut
	SignedIn
)

func (s State) String() string {
	switch s {
	case SignedOut:
		return "signed_out"
	case SignedIn:
		return "signed_in"
	default:
		return "resolving"
	}
}

// Snapshot is the identity at one point in time. Token is the bearer credential
// sent to the API and is empty unless State is SignedIn.
type Snapshot struct {
	State  State
	UserID string
	Token  string
}

// Resolved reports whether a user is signed in.
func (s Snapshot) Resolved() bool {
	return s.State == SignedIn && s.UserID != ""
}

// Provider hands out the current identity and notifies subscribers when it changes.
type Provider interface {
	Current() Snapshot
	// Subscribe registers fn for future changes and returns a function that removes it.
	Subscribe(fn func(Snapshot)) (unsubscribe func())
}

// Static is a Provider whose identity is set explicitly.
type Static struct {
	mu      sync.Mutex
	current Snapshot
	nextID  int
	subs    map[int]func(Snapshot)
}

// NewStatic returns a provider starting at snap.
func NewStatic(snap Snapshot) *Static {
	return &Static{current: snap, subs: make(map[int]func(Snapshot))}
}

func (p *Static) Current() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Static) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

// Set replaces the identity and notifies subscribers synchronously when it changed.
func (p *Static) Set(snap Snapshot) {
	if snap.State != SignedIn {
		snap.UserID = ""
		snap.Token = ""
	}

	p.mu.Lock()
	if p.current == snap {
		p.mu.Unlock()
		return
	}
	p.current = snap
	subs := make([]func(Snapshot), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// SignOut switches to the signed-out state.
func (p *Static) SignOut() {
	p.Set(Snapshot{State: SignedOut})
}
