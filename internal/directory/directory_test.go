package directory

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

type staticCreds string

func (s staticCreds) Token(context.Context) (string, error) { return string(s), nil }
func (s staticCreds) Clear(context.Context) error           { return nil }

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return New(api.NewClient(server.URL).Session(staticCreds("tok")))
}

func TestQueryValues(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"defaults", Query{}, "limit=10&page=1"},
		{"search only", Query{Page: 2, Search: " drill "}, "limit=10&page=2&search=drill"},
		{"all", Query{Page: 3, Limit: 5, Search: "tent", Category: "outdoor"}, "category=outdoor&limit=5&page=3&search=tent"},
		{"blank category", Query{Category: "  "}, "limit=10&page=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Values().Encode(); got != tt.want {
				t.Errorf("Values() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListingsIssuesOneCallPerQuery(t *testing.T) {
	var calls int32
	var gotQuery string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		gotQuery = r.URL.RawQuery
		if r.URL.Path != "/listings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"data":{"listings":[{"_id":"l1","title":"Drill","pricePerDay":1500}],"pagination":{"page":2,"limit":10,"total":11,"pages":2}}}`))
	})

	view := Load(context.Background(), Query{Page: 2, Search: "drill"}, c.Listings)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls = %d, want 1", n)
	}
	if !strings.Contains(gotQuery, "search=drill") || !strings.Contains(gotQuery, "page=2") {
		t.Errorf("query = %s", gotQuery)
	}
	if view.State() != ViewItems {
		t.Fatalf("state = %v, err = %v", view.State(), view.Err)
	}
	if len(view.Page.Items) != 1 || view.Page.Items[0].PricePerDay != 1500 {
		t.Errorf("items = %+v", view.Page.Items)
	}
	if view.Page.HasNext() || !view.Page.HasPrev() {
		t.Errorf("paging = %+v", view.Page)
	}

	Load(context.Background(), Query{Page: 2, Search: "drill"}, c.Listings)
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("second load served from cache, calls = %d", n)
	}
}

func TestViewStatesAreExclusive(t *testing.T) {
	empty := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	failing := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom"}`))
	})

	if v := Load(context.Background(), Query{}, empty.Organizations); v.State() != ViewEmpty || v.Err != nil {
		t.Errorf("empty view: state %v err %v", v.State(), v.Err)
	}
	v := Load(context.Background(), Query{}, failing.BusinessListings)
	if v.State() != ViewError {
		t.Fatalf("error view: state %v", v.State())
	}
	if len(v.Page.Items) != 0 {
		t.Errorf("error view carries items: %+v", v.Page.Items)
	}
}

func TestCreateReviewChecksRating(t *testing.T) {
	var calls int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"You have already reviewed this business"}`))
	})

	for _, rating := range []int{0, 6} {
		_, err := c.CreateReview(context.Background(), "b1", rating, "ok")
		var verr *api.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("rating %d: err = %v", rating, err)
		}
	}
	if calls != 0 {
		t.Fatalf("invalid ratings reached the server")
	}

	_, err := c.CreateReview(context.Background(), "b1", 4, "great")
	var conflict *api.ConflictError
	if !errors.As(err, &conflict) || !strings.Contains(conflict.Message, "already reviewed") {
		t.Errorf("duplicate review err = %v", err)
	}
}

func TestCreateListingUploadsImages(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/listings" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if r.FormValue("title") != "Ladder" || r.FormValue("pricePerDay") != "2000" {
			t.Errorf("fields = %v", r.MultipartForm.Value)
		}
		if _, ok := r.MultipartForm.Value["deposit"]; ok {
			t.Error("zero deposit was sent")
		}
		files := r.MultipartForm.File["images"]
		if len(files) != 1 {
			t.Fatalf("images = %d", len(files))
		}
		f, _ := files[0].Open()
		body, _ := io.ReadAll(f)
		if string(body) != "jpeg" {
			t.Errorf("image body = %q", body)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"_id":"l9","title":"Ladder","price":2000}}`))
	})

	in := models.ListingInput{Title: "Ladder", Description: "6ft aluminium", PricePerDay: 2000}
	l, err := c.CreateListing(context.Background(), in, []api.File{{Name: "a.jpg", Content: strings.NewReader("jpeg")}})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	if l.ID != "l9" || l.Status != models.ListingActive {
		t.Errorf("listing = %+v", l)
	}
}

func TestCreateListingValidation(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid listing reached the server")
	})
	_, err := c.CreateListing(context.Background(), models.ListingInput{Title: "Ladder", Description: "x"}, nil)
	var verr *api.ValidationError
	if !errors.As(err, &verr) || verr.Fields[0].Field != "pricePerDay" {
		t.Errorf("err = %v", err)
	}
}

func TestCreatePostNeedsContent(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty post reached the server")
	})
	if _, err := c.CreatePost(context.Background(), "   ", nil); err == nil {
		t.Error("expected validation error")
	}
}

func TestOrganizationsNormalizesShapes(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/organizations" || r.URL.Query().Get("category") != "food" {
			t.Errorf("request = %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		w.Write([]byte(`{"organizations":[{"_id":"o1","organization_name":"Mama Put","logo":{"url":"https://img/logo.png"},"averageRating":4.5}],"pagination":{"page":1,"totalPages":1}}`))
	})

	view := Load(context.Background(), Query{Page: 1, Category: "food"}, c.Organizations)
	if view.State() != ViewItems {
		t.Fatalf("state = %v, err = %v", view.State(), view.Err)
	}
	o := view.Page.Items[0]
	if o.ID != "o1" || o.Name != "Mama Put" || o.Logo != "https://img/logo.png" || o.Rating != 4.5 {
		t.Errorf("organization = %+v", o)
	}
}

func TestUpdateListing(t *testing.T) {
	var calls int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPut || r.URL.Path != "/listings/l1" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"pricePerDay":2000`) {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte(`{"_id":"l1","title":"Drill","pricePerDay":2000}`))
	})
	ctx := context.Background()

	if _, err := c.UpdateListing(ctx, "l1", models.ListingInput{Title: "Drill", Description: "Cordless", PricePerDay: 0}); err == nil {
		t.Fatal("expected validation error for a zero price")
	}
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Fatalf("invalid update reached the server, calls = %d", n)
	}

	l, err := c.UpdateListing(ctx, "l1", models.ListingInput{Title: "Drill", Description: "Cordless", PricePerDay: 2000})
	if err != nil {
		t.Fatal(err)
	}
	if l.PricePerDay != 2000 {
		t.Errorf("listing = %+v", l)
	}
}
