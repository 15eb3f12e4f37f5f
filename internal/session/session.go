// Package session owns the per-chat bearer token and the serialized auth
// object. Both are only ever written wholesale (login) or cleared wholesale
// (logout, auth failure).
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Auth is what a successful login leaves behind.
type Auth struct {
	Token      string      `json:"-"`
	User       models.User `json:"user"`
	ExpiresAt  time.Time   `json:"expires_at"`
	LoggedInAt time.Time   `json:"logged_in_at"`
}

// Expired reports whether the token's exp claim has passed.
func (a *Auth) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && !now.Before(a.ExpiresAt)
}

// Store persists sessions keyed by chat id. Missing sessions read as
// ("", nil) and (nil, nil).
type Store interface {
	Token(ctx context.Context, chatID int64) (string, error)
	Auth(ctx context.Context, chatID int64) (*Auth, error)
	Save(ctx context.Context, chatID int64, auth *Auth) error
	Clear(ctx context.Context, chatID int64) error
}

// NewAuth builds the session record for a login result. Token claims are
// read without verification: they only tell the client when to stop sending
// the token, the server stays the authority.
func NewAuth(res *models.AuthResult, now time.Time) (*Auth, error) {
	if res == nil || res.Token == "" {
		return nil, errors.New("empty login result")
	}
	auth := &Auth{Token: res.Token, User: res.User, LoggedInAt: now}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(res.Token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			auth.ExpiresAt = exp.Time
		}
		if auth.User.ID == "" {
			if sub, err := claims.GetSubject(); err == nil {
				auth.User.ID = sub
			}
			if id, ok := claims["id"].(string); ok && auth.User.ID == "" {
				auth.User.ID = id
			}
		}
		if role, ok := claims["userType"].(string); ok && auth.User.Role == "" {
			auth.User.Role = models.ParseRole(role)
		}
	}
	if auth.User.Role == "" {
		auth.User.Role = models.RoleNeighbor
	}
	return auth, nil
}

// Manager hands out one Session per chat.
type Manager struct {
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

func (m *Manager) For(chatID int64) *Session {
	return &Session{chatID: chatID, store: m.store, now: m.now}
}

// Session is one chat's credentials. It satisfies api.Credentials.
type Session struct {
	chatID int64
	store  Store
	now    func() time.Time
}

func (s *Session) ChatID() int64 { return s.chatID }

func (s *Session) Token(ctx context.Context) (string, error) {
	return s.store.Token(ctx, s.chatID)
}

func (s *Session) Clear(ctx context.Context) error {
	return s.store.Clear(ctx, s.chatID)
}

// Auth returns the stored auth object, or nil when logged out or expired.
func (s *Session) Auth(ctx context.Context) (*Auth, error) {
	auth, err := s.store.Auth(ctx, s.chatID)
	if err != nil || auth == nil {
		return nil, err
	}
	if auth.Expired(s.now()) {
		if err := s.store.Clear(ctx, s.chatID); err != nil {
			return nil, fmt.Errorf("clear expired session: %w", err)
		}
		return nil, nil
	}
	return auth, nil
}

// Start stores a fresh login, replacing whatever was there.
func (s *Session) Start(ctx context.Context, res *models.AuthResult) (*Auth, error) {
	auth, err := NewAuth(res, s.now())
	if err != nil {
		return nil, err
	}
	if auth.Expired(s.now()) {
		return nil, errors.New("login token already expired")
	}
	if err := s.store.Save(ctx, s.chatID, auth); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return auth, nil
}

// Refresh replaces the cached profile, keeping the token.
func (s *Session) Refresh(ctx context.Context, user models.User) error {
	auth, err := s.Auth(ctx)
	if err != nil {
		return err
	}
	if auth == nil {
		return nil
	}
	token, err := s.store.Token(ctx, s.chatID)
	if err != nil {
		return err
	}
	auth.Token = token
	auth.User = user
	return s.store.Save(ctx, s.chatID, auth)
}
