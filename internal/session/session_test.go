package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestNewAuthReadsClaims(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	token := signedToken(t, jwt.MapClaims{
		"sub":      "u42",
		"userType": "organization",
		"exp":      now.Add(2 * time.Hour).Unix(),
	})

	auth, err := NewAuth(&models.AuthResult{Token: token}, now)
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	if auth.User.ID != "u42" || auth.User.Role != models.RoleOrganization {
		t.Errorf("user = %+v", auth.User)
	}
	if !auth.ExpiresAt.Equal(now.Add(2 * time.Hour)) {
		t.Errorf("expires = %v", auth.ExpiresAt)
	}
	if auth.Expired(now) || !auth.Expired(now.Add(3*time.Hour)) {
		t.Error("expiry check is wrong")
	}
}

func TestNewAuthOpaqueToken(t *testing.T) {
	auth, err := NewAuth(&models.AuthResult{Token: "opaque", User: models.User{ID: "u1"}}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !auth.ExpiresAt.IsZero() || auth.User.Role != models.RoleNeighbor {
		t.Errorf("unexpected auth %+v", auth)
	}
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "test"), mr
}

func TestStores(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]Store{
		"redis":  redisStore,
		"memory": NewMemoryStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sess := NewManager(store).For(7)

			if tok, _ := sess.Token(ctx); tok != "" {
				t.Fatalf("fresh session has token %q", tok)
			}

			auth, err := sess.Start(ctx, &models.AuthResult{Token: "tok", User: models.User{ID: "u1", Email: "ada@hood.ng", Role: models.RoleNeighbor}})
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if auth.Token != "tok" {
				t.Errorf("auth token = %q", auth.Token)
			}

			tok, err := sess.Token(ctx)
			if err != nil || tok != "tok" {
				t.Fatalf("Token = %q, %v", tok, err)
			}
			stored, err := sess.Auth(ctx)
			if err != nil || stored == nil || stored.User.Email != "ada@hood.ng" {
				t.Fatalf("Auth = %+v, %v", stored, err)
			}

			if err := sess.Refresh(ctx, models.User{ID: "u1", Email: "new@hood.ng", Role: models.RoleNeighbor}); err != nil {
				t.Fatalf("Refresh: %v", err)
			}
			if tok, _ := sess.Token(ctx); tok != "tok" {
				t.Errorf("refresh changed the token to %q", tok)
			}
			stored, _ = sess.Auth(ctx)
			if stored.User.Email != "new@hood.ng" {
				t.Errorf("refresh did not replace the profile: %+v", stored.User)
			}

			if err := sess.Clear(ctx); err != nil {
				t.Fatal(err)
			}
			if tok, _ := sess.Token(ctx); tok != "" {
				t.Errorf("token survived Clear: %q", tok)
			}
			if a, _ := sess.Auth(ctx); a != nil {
				t.Errorf("auth survived Clear: %+v", a)
			}
		})
	}
}

func TestRedisStoreExpiresWithToken(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	auth := &Auth{Token: "tok", ExpiresAt: time.Now().Add(time.Minute)}
	if err := store.Save(ctx, 1, auth); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	if tok, _ := store.Token(ctx, 1); tok != "" {
		t.Errorf("token outlived its expiry: %q", tok)
	}
	if a, _ := store.Auth(ctx, 1); a != nil {
		t.Errorf("auth outlived its expiry")
	}
}
