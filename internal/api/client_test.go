package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

type fakeCreds struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (f *fakeCreds) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeCreds) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
	return nil
}

func TestSessionAttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"success":true,"data":{"_id":"u1","email":"ada@hood.ng","userType":"neighbor"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	me, err := client.Session(&fakeCreds{token: "tok-1"}).Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID missing")
	}
	if me.ID != "u1" || me.Email != "ada@hood.ng" {
		t.Errorf("unexpected user %+v", me)
	}
}

func TestUnauthorizedClearsSessionAndFiresHook(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"message":"jwt expired"}`))
		}))

		var hooked Credentials
		client := NewClient(server.URL, OnUnauthorized(func(_ context.Context, cred Credentials) {
			hooked = cred
		}))
		creds := &fakeCreds{token: "stale"}

		err := client.Session(creds).Get(context.Background(), "/rentals/active", nil, nil)
		server.Close()

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("status %d: err = %v, want ErrUnauthorized", status, err)
		}
		if creds.cleared != 1 || creds.token != "" {
			t.Errorf("status %d: session not cleared (cleared=%d token=%q)", status, creds.cleared, creds.token)
		}
		if hooked != creds {
			t.Errorf("status %d: unauthorized hook not fired with the session", status)
		}
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		check   func(error) bool
		message string
	}{
		{
			name:   "validation with field list",
			status: http.StatusUnprocessableEntity,
			body:   `{"errors":[{"path":"startDate","msg":"Start date is required"},{"path":"endDate","msg":"End date is required"}]}`,
			check: func(err error) bool {
				var v *ValidationError
				return errors.As(err, &v) && v.Fields[0].Field == "startDate"
			},
			message: "Start date is required",
		},
		{
			name:   "duplicate review",
			status: http.StatusConflict,
			body:   `{"message":"You have already reviewed this listing"}`,
			check: func(err error) bool {
				var c *ConflictError
				return errors.As(err, &c)
			},
			message: "You have already reviewed this listing",
		},
		{
			name:   "insufficient balance",
			status: http.StatusBadRequest,
			body:   `{"error":"Insufficient balance"}`,
			check: func(err error) bool {
				var c *ConflictError
				return errors.As(err, &c)
			},
			message: "Insufficient balance",
		},
		{
			name:   "server failure",
			status: http.StatusInternalServerError,
			body:   `oops`,
			check: func(err error) bool {
				var e *Error
				return errors.As(err, &e) && e.Status == 500
			},
			message: "Something went wrong on our side. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			creds := &fakeCreds{token: "t"}
			err := NewClient(server.URL).Session(creds).Post(context.Background(), "/x", map[string]string{}, nil)
			if !tt.check(err) {
				t.Fatalf("unexpected error type %T: %v", err, err)
			}
			if got := UserMessage(err); got != tt.message {
				t.Errorf("UserMessage = %q, want %q", got, tt.message)
			}
			if creds.cleared != 0 {
				t.Error("non-auth errors must not clear the session")
			}
		})
	}
}

func TestLoginRunsWithoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not carry a bearer token")
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid email or password"}`))
			return
		}
		w.Write([]byte(`{"token":"abc","user":{"_id":"u1","email":"ada@hood.ng"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	res, err := client.Login(context.Background(), "ada@hood.ng", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "abc" || res.User.ID != "u1" {
		t.Errorf("unexpected result %+v", res)
	}

	_, err = client.Login(context.Background(), "ada@hood.ng", "wrong")
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("bad credentials are not a session expiry")
	}
	if got := UserMessage(err); got != "Invalid email or password" {
		t.Errorf("UserMessage = %q", got)
	}

	if _, err := client.Login(context.Background(), " ", "x"); err == nil {
		t.Error("empty email should fail before dispatch")
	}
}

func TestGetPageNormalizesEnvelopes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantIDs   int
		wantPage  int
		wantPages int
	}{
		{"data plus pagination", `{"data":[{"_id":"1"},{"_id":"2"}],"pagination":{"page":2,"limit":2,"total":6,"totalPages":3}}`, 2, 2, 3},
		{"nested docs", `{"success":true,"data":{"docs":[{"_id":"1"}],"page":1,"totalDocs":9,"limit":5}}`, 1, 1, 2},
		{"bare array", `[{"_id":"1"},{"_id":"2"},{"_id":"3"}]`, 3, 2, 1},
		{"empty", `{"data":[]}`, 0, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			q := url.Values{"page": {"2"}, "limit": {"5"}}
			page, err := GetPage[models.Listing](context.Background(), NewClient(server.URL).Session(nil), "/listings", q)
			if err != nil {
				t.Fatalf("GetPage: %v", err)
			}
			if len(page.Items) != tt.wantIDs || page.Page != tt.wantPage || page.TotalPages != tt.wantPages {
				t.Errorf("got items=%d page=%d pages=%d", len(page.Items), page.Page, page.TotalPages)
			}
		})
	}
}

func TestUploadSendsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary=") {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse: %v", err)
		}
		if r.FormValue("title") != "Grill" {
			t.Errorf("title = %q", r.FormValue("title"))
		}
		f, hdr, err := r.FormFile("images")
		if err != nil {
			t.Fatalf("file: %v", err)
		}
		b, _ := io.ReadAll(f)
		if hdr.Filename != "grill.jpg" || string(b) != "jpeg-bytes" {
			t.Errorf("file %q = %q", hdr.Filename, b)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"_id":"l1","title":"Grill","images":[{"url":"https://cdn/grill.jpg"}]}}`))
	}))
	defer server.Close()

	form := NewForm().Set("title", "Grill").SetIf("condition", "").
		Attach(File{Field: "images", Name: "grill.jpg", Content: strings.NewReader("jpeg-bytes")})

	var l models.Listing
	err := NewClient(server.URL).Session(&fakeCreds{token: "t"}).Upload(context.Background(), http.MethodPost, "/listings", form, &l)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if l.ID != "l1" || len(l.Images) != 1 || l.Images[0] != "https://cdn/grill.jpg" {
		t.Errorf("unexpected listing %+v", l)
	}
}

func TestObserverAndTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	var observed []int
	client := NewClient(server.URL,
		WithTimeout(20*time.Millisecond),
		WithObserver(func(_, path string, status int, _ time.Duration) {
			if path != "/slow" {
				t.Errorf("observer path = %q", path)
			}
			observed = append(observed, status)
		}),
	)

	err := client.Session(nil).Get(context.Background(), "/slow", url.Values{"q": {"1"}}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if len(observed) != 1 || observed[0] != 0 {
		t.Errorf("observed = %v", observed)
	}
}
