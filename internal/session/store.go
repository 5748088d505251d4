// Package session owns the client's view of whether, and as whom, the user
// is currently authenticated. The Store is process-wide singleton state:
// readable by any number of concurrent consumers, mutable only through its
// own operations.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/quehorrifico/mana-tomb-cli/internal/events"
	"github.com/quehorrifico/mana-tomb-cli/internal/manatomb"
)

// ErrAuthenticationFailed is returned when a login or register attempt is
// rejected. The session state is left at its prior value.
var ErrAuthenticationFailed = errors.New("session: authentication failed")

// Status describes the session lifecycle.
type Status int

const (
	// StatusUnknown is the state before the initial identity probe.
	StatusUnknown Status = iota

	// StatusLoading means an identity probe is in flight.
	StatusLoading

	// StatusAuthenticated means the backend confirmed a logged-in identity.
	StatusAuthenticated

	// StatusAnonymous means no valid session exists.
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "invalid"
	}
}

// Session is a snapshot of the authentication state. Identity is non-nil
// exactly when Status is StatusAuthenticated. Read-only to consumers.
type Session struct {
	Identity *manatomb.User
	Status   Status
}

// authAPI is the slice of the backend client the store needs.
type authAPI interface {
	Me(ctx context.Context) (*manatomb.User, error)
	Login(ctx context.Context, creds manatomb.Credentials) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, reg manatomb.Registration) (*manatomb.RegisterResult, error)
}

// Store is the single source of truth for the current identity.
//
// Session-mutating operations (Login, Logout, Register) are serialized
// through a single operation mutex, so the "last write wins" race between
// overlapping mutations cannot interleave partial state.
type Store struct {
	client     authAPI
	dispatcher *events.Dispatcher

	opMu sync.Mutex

	mu      sync.RWMutex
	session Session

	initGroup singleflight.Group
}

// NewStore creates a Store in StatusUnknown. The dispatcher may be nil when
// no observers are needed.
func NewStore(client authAPI, dispatcher *events.Dispatcher) *Store {
	return &Store{
		client:     client,
		dispatcher: dispatcher,
		session:    Session{Status: StatusUnknown},
	}
}

// Current returns the current session snapshot.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Initialize issues the one identity probe of the process lifetime and
// reports the settled session. Concurrent callers before the probe resolves
// share the in-flight result rather than issuing duplicate probes. After the
// first resolution the settled session is returned directly.
//
// A probe failure of any kind settles the session as anonymous. The probe
// holds the operation mutex, so it cannot interleave with Login, Logout or
// Register.
func (s *Store) Initialize(ctx context.Context) Session {
	cur := s.Current()
	if cur.Status == StatusAuthenticated || cur.Status == StatusAnonymous {
		return cur
	}

	v, _, _ := s.initGroup.Do("probe", func() (interface{}, error) {
		s.opMu.Lock()
		defer s.opMu.Unlock()

		// A mutation that completed while we waited for the lock already
		// settled the session; probing again could overwrite its result.
		if cur := s.Current(); cur.Status == StatusAuthenticated || cur.Status == StatusAnonymous {
			return cur, nil
		}

		s.setSession(Session{Status: StatusLoading})

		user, err := s.client.Me(ctx)
		if err != nil {
			slog.Debug("identity probe resolved anonymous", "error", err)
			next := Session{Status: StatusAnonymous}
			s.setSession(next)
			return next, nil
		}

		next := Session{Status: StatusAuthenticated, Identity: user}
		s.setSession(next)
		return next, nil
	})
	return v.(Session)
}

// Login submits credentials. On success the store re-probes /me so the
// identity matches the backend's canonical shape, then settles
// authenticated. On rejection the state is restored to its pre-call value
// and ErrAuthenticationFailed is returned.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	prev := s.Current()
	s.setSession(Session{Status: StatusLoading})

	if err := s.client.Login(ctx, manatomb.Credentials{Email: email, Password: password}); err != nil {
		s.setSession(prev)
		return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		s.setSession(prev)
		return fmt.Errorf("%w: identity probe after login: %v", ErrAuthenticationFailed, err)
	}

	s.setSession(Session{Status: StatusAuthenticated, Identity: user})
	return nil
}

// Logout requests server-side session termination and unconditionally
// clears local state. The client treats itself as logged out even when the
// server call fails; the failure is logged, not returned.
func (s *Store) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.client.Logout(ctx); err != nil {
		slog.Warn("server-side logout failed, clearing local session anyway", "error", err)
	}
	s.setSession(Session{Status: StatusAnonymous})
}

// Register creates a new account. The backend issues a session cookie on
// success, so the store re-probes and settles authenticated, mirroring
// Login. Returns the new account ID.
func (s *Store) Register(ctx context.Context, username, email, password string) (int, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	prev := s.Current()
	s.setSession(Session{Status: StatusLoading})

	result, err := s.client.Register(ctx, manatomb.Registration{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		s.setSession(prev)
		return 0, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		s.setSession(prev)
		return 0, fmt.Errorf("%w: identity probe after register: %v", ErrAuthenticationFailed, err)
	}
	if user.ID == 0 {
		user.ID = result.ID
	}

	s.setSession(Session{Status: StatusAuthenticated, Identity: user})
	return result.ID, nil
}

// setSession replaces the session snapshot and notifies observers
// synchronously, so every subscriber has seen the transition before the
// owning operation returns.
func (s *Store) setSession(next Session) {
	s.mu.Lock()
	s.session = next
	s.mu.Unlock()

	if s.dispatcher == nil {
		return
	}
	email := ""
	if next.Identity != nil {
		email = next.Identity.Email
	}
	s.dispatcher.Dispatch(events.NewSessionChanged(
		next.Status.String(), email, next.Status == StatusAuthenticated))
}
