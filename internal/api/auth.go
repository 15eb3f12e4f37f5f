package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

// Login exchanges credentials for a bearer token. It runs without a session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, Invalid("email", "Email is required")
	}
	if password == "" {
		return nil, Invalid("password", "Password is required")
	}

	var out models.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.Session(nil).Post(ctx, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &Error{Status: http.StatusOK, Message: "login response carried no token"}
	}
	return &out, nil
}

// Me fetches the current user's profile.
func (s *Session) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := s.Get(ctx, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UploadAvatar replaces the profile picture (or organization logo).
func (s *Session) UploadAvatar(ctx context.Context, file File) (*models.User, error) {
	file.Field = "profile_picture"
	var u models.User
	if err := s.Upload(ctx, http.MethodPut, "/users/me/profile-picture", NewForm().Attach(file), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout tells the server to drop the token. Failures are ignored by callers
// because the local session is cleared regardless.
func (s *Session) Logout(ctx context.Context) error {
	return s.Post(ctx, "/auth/logout", nil, nil)
}
