// Package session tracks which user is signed in and tells subscribers when that changes.
package session

import (
	"sync"

	"task-manager/internal/domain"
)

// EventType identifies a session transition.
type EventType int

const (
	SignedIn EventType = iota
	SignedOut
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case SignedIn:
		return "signed_in"
	case SignedOut:
		return "signed_out"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners on sign-in and sign-out.
// User is the user signing in, or the one who just signed out.
type Event struct {
	Type EventType
	User domain.User
}

// Listener receives session events.
type Listener func(Event)

type subscription struct {
	id       uint64
	listener Listener
}

// Provider holds the current authenticated user.
type Provider struct {
	mu     sync.Mutex
	user   *domain.User
	subs   []subscription
	nextID uint64
	closed bool
}

// NewProvider creates a provider with nobody signed in.
func NewProvider() *Provider {
	return &Provider{}
}

// CurrentUser returns a copy of the signed-in user.
func (p *Provider) CurrentUser() (*domain.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.user == nil {
		return nil, false
	}
	u := *p.user
	return &u, true
}

// Subscribe registers a listener. The returned function removes it and is
// safe to call more than once.
func (p *Provider) Subscribe(listener Listener) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || listener == nil {
		return func() {}
	}

	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, subscription{id: id, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() { p.remove(id) })
	}
}

func (p *Provider) remove(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, sub := range p.subs {
		if sub.id == id {
			p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
			return
		}
	}
}

// SignIn makes user the current user and notifies listeners in
// subscription order before returning.
func (p *Provider) SignIn(user domain.User) {
	p.mu.Lock()
	u := user
	p.user = &u
	listeners := p.snapshot()
	p.mu.Unlock()

	publish(listeners, Event{Type: SignedIn, User: user})
}

// SignOut clears the current user. It is a no-op when nobody is signed in.
func (p *Provider) SignOut() {
	p.mu.Lock()
	if p.user == nil {
		p.mu.Unlock()
		return
	}
	previous := *p.user
	p.user = nil
	listeners := p.snapshot()
	p.mu.Unlock()

	publish(listeners, Event{Type: SignedOut, User: previous})
}

// Close drops every subscription. Later Subscribe calls are ignored.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.subs = nil
}

// snapshot must be called with mu held.
func (p *Provider) snapshot() []Listener {
	listeners := make([]Listener, len(p.subs))
	for i, sub := range p.subs {
		listeners[i] = sub.listener
	}
	return listeners
}

func publish(listeners []Listener, evt Event) {
	for _, l := range listeners {
		l(evt)
	}
}
