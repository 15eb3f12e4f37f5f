// Package admin reads the platform-wide views behind the admin dashboard.
package admin

import (
	"context"
	"net/url"
	"strconv"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

// maxSyncPages bounds AllUsers/AllRentals.
const maxSyncPages = 50

type Client struct {
	s *api.Session
}

func New(s *api.Session) *Client {
	return &Client{s: s}
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *Client) Users(ctx context.Context, page, limit int) (models.Page[models.User], error) {
	return api.GetPage[models.User](ctx, c.s, "/admin/users", pageQuery(page, limit))
}

func (c *Client) Rentals(ctx context.Context, page, limit int) (models.Page[models.ActiveRental], error) {
	return api.GetPage[models.ActiveRental](ctx, c.s, "/admin/rentals", pageQuery(page, limit))
}

func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var s models.Stats
	if err := c.s.Get(ctx, "/admin/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AllUsers walks every page, for spreadsheet sync.
func (c *Client) AllUsers(ctx context.Context) ([]models.User, error) {
	return collect(ctx, c.Users)
}

// AllRentals walks every page, for spreadsheet sync.
func (c *Client) AllRentals(ctx context.Context) ([]models.ActiveRental, error) {
	return collect(ctx, c.Rentals)
}

func collect[T any](ctx context.Context, fetch func(context.Context, int, int) (models.Page[T], error)) ([]T, error) {
	var out []T
	for page := 1; page <= maxSyncPages; page++ {
		p, err := fetch(ctx, page, 100)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Items...)
		if !p.HasNext() {
			break
		}
	}
	return out, nil
}
