package quote

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrSuperseded is returned when a quote finished after a newer quote for
// the same session had already started. Its result must not be shown.
var ErrSuperseded = errors.New("quote superseded by a newer request")

// Ticket identifies one request within a Session.
type Ticket struct {
	seq uint64
	key string
}

// Session tracks the latest quote request for one consumer. Results from a
// request that is no longer the latest are discarded, and starting a new
// request cancels the context of the previous one.
type Session struct {
	mu     sync.Mutex
	seq    uint64
	key    string
	cancel context.CancelFunc
}

func NewSession() *Session {
	return &Session{}
}

// Begin starts a request for inputs identified by key and returns a context
// that is canceled as soon as a newer request begins.
func (s *Session) Begin(ctx context.Context, key string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	s.key = key
	s.cancel = cancel
	t := Ticket{seq: s.seq, key: key}
	s.mu.Unlock()

	return ctx, t
}

// Current reports whether t is still the latest request and its inputs are
// unchanged.
func (s *Session) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq == t.seq && s.key == t.key
}

// Finish releases the context of t if it is still the latest request.
func (s *Session) Finish(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == t.seq && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Do runs fn as the latest request of s. If another request began while fn
// was running, its result is dropped and ErrSuperseded is returned instead.
func Do[T any](ctx context.Context, s *Session, key string, fn func(context.Context) (T, error)) (T, error) {
	ctx, t := s.Begin(ctx, key)
	defer s.Finish(t)

	out, err := fn(ctx)
	if !s.Current(t) {
		var zero T
		return zero, ErrSuperseded
	}
	return out, err
}

// QuoteKey builds a session key from the inputs that identify a quote.
func QuoteKey(parts ...string) string {
	return strings.Join(parts, "|")
}

// Sessions hands out a shared Session per consumer id and forgets it once no
// request holds it.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*sessionRef
}

type sessionRef struct {
	session *Session
	refs    int
}

func NewSessions() *Sessions {
	return &Sessions{items: make(map[string]*sessionRef)}
}

// Acquire returns the Session for id. Every Acquire must be paired with a
// Release.
func (s *Sessions) Acquire(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.items[id]
	if !ok {
		ref = &sessionRef{session: NewSession()}
		s.items[id] = ref
	}
	ref.refs++
	return ref.session
}

func (s *Sessions) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, ok := s.items[id]
	if !ok {
		return
	}
	ref.refs--
	if ref.refs <= 0 {
		delete(s.items, id)
	}
}

// Len returns the number of sessions currently held.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
