package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNoCredential is returned when an operation needs a stored token.
var ErrNoCredential = errors.New("no credential stored")

// Credentials is the persisted credential slot.
type Credentials struct {
	Token    string `json:"token"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Profile holds the attributes the server reports for a credential.
type Profile struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Session is the credential context shared by every request-issuing call.
// Token is read fresh on every request, so a login or clear takes effect
// for the next call without rebuilding the client.
type Session struct {
	store  Store
	logger *slog.Logger

	mu      sync.RWMutex
	creds   Credentials
	onClear []func()
}

// New loads the stored credentials into a Session. A nil logger means
// slog.Default().
func New(store Store, logger *slog.Logger) (*Session, error) {
	if store == nil {
		return nil, errors.New("session store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	creds, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	return &Session{store: store, logger: logger, creds: creds}, nil
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds.Token
}

// Credentials returns a copy of the current credential slot.
func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Profile returns the cached username and role.
func (s *Session) Profile() Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Profile{Username: s.creds.Username, Role: s.creds.Role}
}

// Login replaces the credential slot. An empty token is refused.
func (s *Session) Login(c Credentials) error {
	if c.Token == "" {
		return ErrNoCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(c); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	s.creds = c

	s.logger.Info("session stored", "username", c.Username, "role", c.Role)
	return nil
}

// SaveProfile records p for token. It is a no-op when the stored token has
// changed since token was read, so a late validation never resurrects a
// cleared or replaced session.
func (s *Session) SaveProfile(token string, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" || s.creds.Token != token {
		return nil
	}
	if s.creds.Username == p.Username && s.creds.Role == p.Role {
		return nil
	}

	c := s.creds
	c.Username = p.Username
	c.Role = p.Role
	if err := s.store.Save(c); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	s.creds = c

	return nil
}

// Clear removes the credential slot and notifies OnClear listeners.
// Clearing an empty session is a no-op.
func (s *Session) Clear() error {
	s.mu.Lock()
	if s.creds == (Credentials{}) {
		s.mu.Unlock()
		return nil
	}

	err := s.store.Clear()
	s.creds = Credentials{}
	listeners := append([]func(){}, s.onClear...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}

	if err != nil {
		return fmt.Errorf("clearing session store: %w", err)
	}

	s.logger.Info("session cleared")
	return nil
}

// OnClear registers fn to run after every effective Clear. fn runs without
// the session lock held.
func (s *Session) OnClear(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onClear = append(s.onClear, fn)
}
