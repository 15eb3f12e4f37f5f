package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type fakeSource struct {
	users   []models.User
	rentals []models.ActiveRental
}

func (f fakeSource) AllUsers(context.Context) ([]models.User, error)           { return f.users, nil }
func (f fakeSource) AllRentals(context.Context) ([]models.ActiveRental, error) { return f.rentals, nil }

func TestSheetsService_WithMockAPI(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	srv, err := sheets.NewService(ctx, option.WithEndpoint(server.URL), option.WithoutAuthentication())
	if err != nil {
		t.Fatal(err)
	}
	s := newSheetsService(srv, "users_tid", "rentals_tid")

	t.Run("TestConnection", func(t *testing.T) {
		mux.HandleFunc("/v4/spreadsheets/users_tid/values/Users!A1", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.ValueRange{Values: [][]interface{}{{"ID"}}})
		})
		if err := s.TestConnection(ctx); err != nil {
			t.Errorf("TestConnection failed: %v", err)
		}
	})

	t.Run("SyncAll", func(t *testing.T) {
		var usersBody sheets.ValueRange
		mux.HandleFunc("/v4/spreadsheets/users_tid/values/Users!A1:G2", func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&usersBody)
			json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
		})
		mux.HandleFunc("/v4/spreadsheets/rentals_tid/values/Rentals!A1:L3", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
		})

		src := fakeSource{
			users:   []models.User{{ID: "u1", Name: "Ada Obi", Role: models.RoleNeighbor}},
			rentals: []models.ActiveRental{{ID: "a1"}, {ID: "a2"}},
		}
		res, err := s.SyncAll(ctx, src)
		if err != nil {
			t.Fatalf("SyncAll failed: %v", err)
		}
		if res.Users != 1 || res.Rentals != 2 {
			t.Errorf("result = %+v", res)
		}
		if len(usersBody.Values) != 2 || usersBody.Values[1][1] != "Ada Obi" {
			t.Errorf("users sheet values = %v", usersBody.Values)
		}
		if row, ok := s.getCachedRow("a2"); !ok || row != 3 {
			t.Errorf("row for a2 = %d, %v", row, ok)
		}
	})

	t.Run("WarmUpCache", func(t *testing.T) {
		mux.HandleFunc("/v4/spreadsheets/rentals_tid/values/Rentals!A:A", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.ValueRange{
				Values: [][]interface{}{{"ID"}, {"a1"}, {"a7"}},
			})
		})
		if err := s.WarmUpCache(ctx); err != nil {
			t.Fatalf("WarmUpCache failed: %v", err)
		}
		if row, ok := s.getCachedRow("a7"); !ok || row != 3 {
			t.Errorf("Expected row 3 for a7, got %d", row)
		}
		if _, ok := s.getCachedRow("a2"); ok {
			t.Error("stale cache entry survived warm-up")
		}
	})

	t.Run("UpsertRental_Append", func(t *testing.T) {
		mux.HandleFunc("/v4/spreadsheets/rentals_tid/values/Rentals!A:A:append", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.AppendValuesResponse{
				Updates: &sheets.UpdateValuesResponse{UpdatedRange: "Rentals!A10:L10"},
			})
		})
		if err := s.UpsertRental(ctx, models.ActiveRental{ID: "a9"}); err != nil {
			t.Fatalf("UpsertRental failed: %v", err)
		}
		if row, _ := s.getCachedRow("a9"); row != 10 {
			t.Errorf("Expected cached row 10, got %d", row)
		}
	})

	t.Run("UpsertRental_Update", func(t *testing.T) {
		var called int32
		mux.HandleFunc("/v4/spreadsheets/rentals_tid/values/Rentals!A3:L3", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&called, 1)
			json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
		})
		if err := s.UpsertRental(ctx, models.ActiveRental{ID: "a7"}); err != nil {
			t.Fatalf("UpsertRental failed: %v", err)
		}
		if atomic.LoadInt32(&called) != 1 {
			t.Error("row 3 was not rewritten")
		}
	})

	t.Run("UpdateEscrowStatus", func(t *testing.T) {
		var statusCalled, stampCalled int32
		mux.HandleFunc("/v4/spreadsheets/rentals_tid/values/Rentals!I3:J3", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&statusCalled, 1)
			json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
		})
		mux.HandleFunc("/v4/spreadsheets/rentals_tid/values/Rentals!L3:L3", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&stampCalled, 1)
			json.NewEncoder(w).Encode(sheets.UpdateValuesResponse{})
		})
		err := s.UpdateEscrowStatus(ctx, "a7", models.RentalActive, models.EscrowItemDelivered)
		if err != nil {
			t.Errorf("UpdateEscrowStatus failed: %v", err)
		}
		if atomic.LoadInt32(&statusCalled) != 1 || atomic.LoadInt32(&stampCalled) != 1 {
			t.Error("Expected both status and synced-at updates")
		}
		if err := s.UpdateEscrowStatus(ctx, "missing", models.RentalActive, models.EscrowFundsHeld); err == nil {
			t.Error("expected error for unknown rental")
		}
	})

	t.Run("SheetID", func(t *testing.T) {
		mux.HandleFunc("/v4/spreadsheets/rentals_tid", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sheets.Spreadsheet{
				Sheets: []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: "Rentals", SheetId: 999}}},
			})
		})
		id, err := s.SheetID(ctx, "rentals_tid", "Rentals")
		if err != nil {
			t.Errorf("SheetID failed: %v", err)
		}
		if id != 999 {
			t.Errorf("Expected 999, got %d", id)
		}
	})
}

func TestRowFromRange(t *testing.T) {
	tests := map[string]int{
		"Rentals!A10:L10": 10,
		"Rentals!A2":      2,
		"'Rentals'!B7:C9": 7,
	}
	for in, want := range tests {
		if got, ok := rowFromRange(in); !ok || got != want {
			t.Errorf("rowFromRange(%q) = %d, %v", in, got, ok)
		}
	}
	if _, ok := rowFromRange("Rentals"); ok {
		t.Error("range without a row parsed")
	}
}
