// Package session tracks the signed-in user on the client and fans every
// session change out to subscribers. Collections, profile loads, and UI
// state all hang off these notifications.
package session

import (
	"context"
	"log"
	"sync"

	"github.com/blizx/zenith/internal/client/gateway"
	"github.com/blizx/zenith/internal/domain"
)

// Store holds the current session and its profile.
type Store struct {
	gw gateway.Gateway

	mu            sync.Mutex
	session       domain.Session
	profile       domain.Profile
	profileLoaded bool
	subscribers   []func(domain.Session)

	logf func(format string, args ...any)
}

// Option configures a Store.
type Option func(*Store)

// WithLogf overrides where non-fatal problems are reported.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Store) { s.logf = logf }
}

// New creates a store with no session.
func New(gw gateway.Gateway, opts ...Option) *Store {
	s := &Store{gw: gw, logf: log.Printf}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to be called, synchronously, with every wholesale
// session replacement: sign-in, sign-up, and sign-out. Subscriptions are
// permanent.
func (s *Store) Subscribe(fn func(domain.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Initialize asks the gateway whether a session already exists and, when
// one does, publishes it. Call once at startup before rendering anything.
func (s *Store) Initialize(ctx context.Context) error {
	session, err := s.gw.Session(ctx)
	if err != nil {
		return err
	}
	if session.Active() {
		s.publish(ctx, session)
	}
	return nil
}

// SignIn exchanges credentials for a session and publishes it. The error is
// returned verbatim for display next to the form.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	session, err := s.gw.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	s.publish(ctx, session)
	return nil
}

// SignUp registers an account and publishes its session.
func (s *Store) SignUp(ctx context.Context, email, password string) error {
	session, err := s.gw.SignUp(ctx, email, password)
	if err != nil {
		return err
	}
	s.publish(ctx, session)
	return nil
}

// SignOut revokes the session at the gateway and publishes the empty
// session. Subscribers run before SignOut returns, so local state is
// cleared by the time the caller regains control.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.gw.SignOut(ctx)
	s.publish(ctx, domain.Session{})
	return err
}

// RequestPasswordReset starts the reset flow for the given email.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	return s.gw.RequestPasswordReset(ctx, email)
}

// Session returns the current session. The zero session means signed out.
func (s *Store) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Profile returns the signed-in user's profile and whether the load has
// completed. A load that failed still reports true with an empty profile,
// so callers are never stuck waiting on it.
func (s *Store) Profile() (domain.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.profileLoaded
}

// publish replaces the stored session, loads the profile for active
// sessions, and notifies every subscriber in registration order.
func (s *Store) publish(ctx context.Context, session domain.Session) {
	var profile domain.Profile
	if session.Active() {
		loaded, err := s.gw.Profile(ctx, session.UserID)
		if err != nil {
			s.logf("load profile for %s: %v", session.UserID, err)
		} else {
			profile = loaded
		}
	}

	s.mu.Lock()
	s.session = session
	s.profile = profile
	s.profileLoaded = session.Active()
	subscribers := make([]func(domain.Session), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(session)
	}
}
