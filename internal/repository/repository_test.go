package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/areahoodnigeria/client-app-sub001/internal/config"
	"github.com/areahoodnigeria/client-app-sub001/internal/domain"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

func TestStateRepositories(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	defer Close(client)

	if err := Ping(context.Background(), client); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	repos := map[string]domain.StateRepository{
		"redis":  NewRedisStateRepository(client, "test"),
		"memory": NewMemoryStateRepository(),
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if s, err := repo.GetState(ctx, 5); err != nil || s != nil {
				t.Fatalf("empty repo returned %+v, %v", s, err)
			}

			state := domain.NewUserState(5, "rent_start_date")
			state.Set("listing_id", "l1")
			if err := repo.SetState(ctx, state); err != nil {
				t.Fatal(err)
			}

			got, err := repo.GetState(ctx, 5)
			if err != nil || got == nil {
				t.Fatalf("GetState = %+v, %v", got, err)
			}
			if got.CurrentStep != "rent_start_date" || got.Get("listing_id") != "l1" {
				t.Errorf("unexpected state %+v", got)
			}

			if err := repo.ClearState(ctx, 5); err != nil {
				t.Fatal(err)
			}
			if s, _ := repo.GetState(ctx, 5); s != nil {
				t.Errorf("state survived ClearState: %+v", s)
			}
		})
	}
}

func TestCheckoutRepositories(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisClient(config.RedisConfig{Address: mr.Addr()})
	defer Close(client)

	repos := map[string]interface {
		Put(context.Context, *models.Checkout, time.Duration) error
		Get(context.Context, string) (*models.Checkout, error)
		Delete(context.Context, string) error
	}{
		"redis":  NewRedisCheckoutRepository(client, "test"),
		"memory": NewMemoryCheckoutRepository(),
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := &models.Checkout{Reference: "AH-1", AmountMinor: 450000, RequestID: "r1", ChatID: 9}

			if err := repo.Put(ctx, c, time.Hour); err != nil {
				t.Fatal(err)
			}
			got, err := repo.Get(ctx, "AH-1")
			if err != nil || got == nil || got.AmountMinor != 450000 || got.ChatID != 9 {
				t.Fatalf("Get = %+v, %v", got, err)
			}
			if err := repo.Delete(ctx, "AH-1"); err != nil {
				t.Fatal(err)
			}
			if got, _ := repo.Get(ctx, "AH-1"); got != nil {
				t.Errorf("checkout survived Delete")
			}
		})
	}
}
