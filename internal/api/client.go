// Package api is the gateway to the Area Hood REST API. Every call is a
// single attempt carrying the bearer token of an explicit Session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Credentials is the single owner of a user's bearer token.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Observer receives one call per completed HTTP exchange. Status is 0 when
// the request never got an answer.
type Observer func(method, path string, status int, elapsed time.Duration)

type Client struct {
	baseURL        string
	http           *http.Client
	log            zerolog.Logger
	userAgent      string
	timeout        time.Duration
	onUnauthorized func(ctx context.Context, cred Credentials)
	observe        Observer
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout bounds each request. Zero keeps requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// OnUnauthorized registers the hook run after a 401/403 cleared the session.
func OnUnauthorized(fn func(ctx context.Context, cred Credentials)) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{},
		log:       zerolog.Nop(),
		userAgent: "areahood-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session binds the client to one user's credentials. A nil cred gives an
// anonymous session.
func (c *Client) Session(cred Credentials) *Session {
	return &Session{c: c, cred: cred}
}

type Session struct {
	c    *Client
	cred Credentials
}

func (s *Session) Get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return s.send(ctx, http.MethodGet, path, nil, "", out)
}

func (s *Session) Post(ctx context.Context, path string, body, out any) error {
	return s.sendJSON(ctx, http.MethodPost, path, body, out)
}

func (s *Session) Put(ctx context.Context, path string, body, out any) error {
	return s.sendJSON(ctx, http.MethodPut, path, body, out)
}

func (s *Session) Patch(ctx context.Context, path string, body, out any) error {
	return s.sendJSON(ctx, http.MethodPatch, path, body, out)
}

func (s *Session) Delete(ctx context.Context, path string, out any) error {
	return s.send(ctx, http.MethodDelete, path, nil, "", out)
}

// Upload sends form as multipart/form-data.
func (s *Session) Upload(ctx context.Context, method, path string, form *Form, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("encode form for %s: %w", path, err)
	}
	return s.send(ctx, method, path, body, contentType, out)
}

func (s *Session) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body for %s: %w", path, err)
		}
		payload = b
	}
	return s.send(ctx, method, path, payload, "application/json", out)
}

func (s *Session) send(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	raw, err := s.do(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := unwrap(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// do performs the exchange and returns the raw 2xx body.
func (s *Session) do(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	c := s.c
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	if contentType != "" && body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if s.cred != nil {
		token, err := s.cred.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read session token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.record(method, path, 0, elapsed)
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("areahood api request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.record(method, path, resp.StatusCode, elapsed)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Msg("areahood api request")

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return raw, nil
	case (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) && s.cred != nil:
		s.expire(ctx, path, resp.StatusCode)
		return nil, ErrUnauthorized
	default:
		return nil, decodeError(resp.StatusCode, raw)
	}
}

// expire is the last-resort fail-safe: wipe the session and hand control to
// the login flow.
func (s *Session) expire(ctx context.Context, path string, status int) {
	c := s.c
	// The request context may already be done; the wipe must still happen.
	cleanup := context.WithoutCancel(ctx)
	if err := s.cred.Clear(cleanup); err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("failed to clear session after auth failure")
	}
	c.log.Info().Str("path", path).Int("status", status).Msg("session cleared after auth failure")
	if c.onUnauthorized != nil {
		c.onUnauthorized(cleanup, s.cred)
	}
}

func (c *Client) record(method, path string, status int, elapsed time.Duration) {
	if c.observe == nil {
		return
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	c.observe(method, path, status, elapsed)
}
