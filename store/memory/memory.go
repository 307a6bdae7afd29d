// Package memory provides in-process implementations of the persistence
// interfaces, used in tests and single-node development setups.
package memory

import (
	"context"
	"sync"

	auth "github.com/linguetta/linguetta-auth"
)

// UserStore is a mutex-guarded in-memory [auth.UserStore].
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*auth.User
	byEmail map[string]string
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*auth.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) GetByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrRecordNotFound
	}
	return copyUser(user), nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrRecordNotFound
	}
	return copyUser(s.byID[id]), nil
}

func (s *UserStore) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[user.ID] = copyUser(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *UserStore) Update(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[user.ID]
	if !ok {
		return auth.ErrRecordNotFound
	}
	delete(s.byEmail, existing.Email)
	s.byID[user.ID] = copyUser(user)
	s.byEmail[user.Email] = user.ID
	return nil
}

// copyUser deep-copies so callers cannot mutate store state through a
// returned pointer.
func copyUser(u *auth.User) *auth.User {
	c := *u
	c.Providers = append([]string(nil), u.Providers...)
	if u.GoogleLinkingRequestedAt != nil {
		t := *u.GoogleLinkingRequestedAt
		c.GoogleLinkingRequestedAt = &t
	}
	return &c
}

// RefreshTokenStore is a mutex-guarded in-memory [auth.RefreshTokenStore].
// Rows are held in insertion order; Active returns them newest first.
type RefreshTokenStore struct {
	mu   sync.RWMutex
	rows []auth.RefreshToken
}

// NewRefreshTokenStore creates an empty in-memory refresh token store.
func NewRefreshTokenStore() *RefreshTokenStore {
	return &RefreshTokenStore{}
}

func (s *RefreshTokenStore) Create(_ context.Context, token *auth.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, *token)
	return nil
}

func (s *RefreshTokenStore) Get(_ context.Context, id string) (*auth.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.rows {
		if s.rows[i].ID == id {
			c := s.rows[i]
			return &c, nil
		}
	}
	return nil, auth.ErrRecordNotFound
}

// Active returns all non-revoked rows newest first, for inspection in tests.
func (s *RefreshTokenStore) Active(_ context.Context) ([]auth.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]auth.RefreshToken, 0, len(s.rows))
	for i := len(s.rows) - 1; i >= 0; i-- {
		if !s.rows[i].Revoked {
			out = append(out, s.rows[i])
		}
	}
	return out, nil
}

func (s *RefreshTokenStore) ActiveForUser(_ context.Context, userID string) ([]auth.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []auth.RefreshToken
	for i := len(s.rows) - 1; i >= 0; i-- {
		if !s.rows[i].Revoked && s.rows[i].UserID == userID {
			out = append(out, s.rows[i])
		}
	}
	return out, nil
}

func (s *RefreshTokenStore) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].Revoked = true
			return nil
		}
	}
	return auth.ErrRecordNotFound
}

// PasswordResetStore is a mutex-guarded in-memory [auth.PasswordResetStore].
type PasswordResetStore struct {
	mu   sync.Mutex
	byID map[string]auth.PasswordReset
}

// NewPasswordResetStore creates an empty in-memory reset store.
func NewPasswordResetStore() *PasswordResetStore {
	return &PasswordResetStore{byID: make(map[string]auth.PasswordReset)}
}

func (s *PasswordResetStore) Create(_ context.Context, reset *auth.PasswordReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[reset.ID] = *reset
	return nil
}

func (s *PasswordResetStore) GetByToken(_ context.Context, token string) (*auth.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.byID {
		if row.Token == token {
			c := row
			return &c, nil
		}
	}
	return nil, auth.ErrRecordNotFound
}

func (s *PasswordResetStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return auth.ErrRecordNotFound
	}
	delete(s.byID, id)
	return nil
}
