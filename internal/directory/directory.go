// Package directory reads the paginated public collections: marketplace
// listings, organizations, business listings and the community feed. Search,
// filtering and paging happen on the server; every query is a fresh call.
package directory

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

const DefaultLimit = 10

type Query struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// Values renders the query string. Page and limit are always sent, empty
// filters are not.
func (q Query) Values() url.Values {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		v.Set("category", c)
	}
	return v
}

// ViewState is what a directory screen shows. Exactly one applies.
type ViewState int

const (
	ViewItems ViewState = iota
	ViewEmpty
	ViewError
)

// View is the outcome of loading one page.
type View[T any] struct {
	Page models.Page[T]
	Err  error
}

func (v View[T]) State() ViewState {
	switch {
	case v.Err != nil:
		return ViewError
	case len(v.Page.Items) == 0:
		return ViewEmpty
	default:
		return ViewItems
	}
}

// Load runs fetch once and folds the result into a View.
func Load[T any](ctx context.Context, q Query, fetch func(context.Context, Query) (models.Page[T], error)) View[T] {
	page, err := fetch(ctx, q)
	if err != nil {
		return View[T]{Err: err}
	}
	return View[T]{Page: page}
}

type Client struct {
	s *api.Session
}

func New(s *api.Session) *Client {
	return &Client{s: s}
}

func (c *Client) Listings(ctx context.Context, q Query) (models.Page[models.Listing], error) {
	return api.GetPage[models.Listing](ctx, c.s, "/listings", q.Values())
}

func (c *Client) Listing(ctx context.Context, id string) (*models.Listing, error) {
	var l models.Listing
	if err := c.s.Get(ctx, "/listings/"+url.PathEscape(id), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) Organizations(ctx context.Context, q Query) (models.Page[models.Organization], error) {
	return api.GetPage[models.Organization](ctx, c.s, "/organizations", q.Values())
}

func (c *Client) BusinessListings(ctx context.Context, q Query) (models.Page[models.BusinessListing], error) {
	return api.GetPage[models.BusinessListing](ctx, c.s, "/business-listings", q.Values())
}

func (c *Client) BusinessListing(ctx context.Context, id string) (*models.BusinessListing, error) {
	var l models.BusinessListing
	if err := c.s.Get(ctx, "/business-listings/"+url.PathEscape(id), nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) Posts(ctx context.Context, q Query) (models.Page[models.Post], error) {
	return api.GetPage[models.Post](ctx, c.s, "/posts", q.Values())
}
