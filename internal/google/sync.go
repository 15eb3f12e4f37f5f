package google

import (
	"context"
	"fmt"

	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

// Source is where a full sync reads from.
type Source interface {
	AllUsers(ctx context.Context) ([]models.User, error)
	AllRentals(ctx context.Context) ([]models.ActiveRental, error)
}

// SyncResult counts what was written.
type SyncResult struct {
	Users   int
	Rentals int
}

// SyncAll rewrites both sheets from src.
func (s *SheetsService) SyncAll(ctx context.Context, src Source) (SyncResult, error) {
	var res SyncResult

	users, err := src.AllUsers(ctx)
	if err != nil {
		return res, fmt.Errorf("load users: %w", err)
	}
	if err := s.UpdateUsersSheet(ctx, users); err != nil {
		return res, fmt.Errorf("write users sheet: %w", err)
	}
	res.Users = len(users)

	rentals, err := src.AllRentals(ctx)
	if err != nil {
		return res, fmt.Errorf("load rentals: %w", err)
	}
	if err := s.UpdateRentalsSheet(ctx, rentals); err != nil {
		return res, fmt.Errorf("write rentals sheet: %w", err)
	}
	res.Rentals = len(rentals)
	return res, nil
}
