// Package session holds the client-side login state: the bearer token, the
// user it belongs to and its persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/auth"
	"github.com/wichananm65/fakturera/internal/client"
)

var ErrNotLoggedIn = errors.New("not logged in")

// API is the part of the API client a session needs.
type API interface {
	Login(ctx context.Context, username, password string) (client.LoginResult, error)
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

type Session struct {
	api   API
	store Store
	log   *zap.Logger

	mu    sync.RWMutex
	token string
	user  *auth.Identity
}

func New(api API, store Store, log *zap.Logger) *Session {
	return &Session{api: api, store: store, log: log}
}

// Restore loads a persisted token and verifies it. A token the server no
// longer accepts, or one that cannot be verified, is discarded; the session
// is then simply logged out. Only storage failures are returned.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	user, err := s.api.Verify(ctx, token)
	if err != nil {
		s.log.Info("stored session rejected", zap.Error(err))
		s.reset()
		return s.store.Clear()
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}

func (s *Session) Login(ctx context.Context, username, password string) error {
	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.store.Save(res.Token); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.mu.Lock()
	s.token = res.Token
	s.user = &res.User
	s.mu.Unlock()
	return nil
}

func (s *Session) Logout() error {
	s.reset()
	return s.store.Clear()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (auth.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return auth.Identity{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Session) reset() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}
