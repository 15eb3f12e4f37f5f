package rentals

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/areahoodnigeria/client-app-sub001/internal/metrics"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/rs/zerolog"
)

// ErrBusy is returned while another escrow transition is in flight.
var ErrBusy = errors.New("another action is still being processed")

// Tracker is one viewer's list of active rentals on one side. At most one
// transition runs at a time, and every successful transition is followed
// by a re-fetch so the list reflects the server.
type Tracker struct {
	c    *Client
	role Role
	log  zerolog.Logger

	mu         sync.Mutex
	processing string
	rentals    []models.ActiveRental
}

func NewTracker(c *Client, role Role, log zerolog.Logger) *Tracker {
	return &Tracker{c: c, role: role, log: log}
}

// Refresh re-reads the list from the server.
func (t *Tracker) Refresh(ctx context.Context) ([]models.ActiveRental, error) {
	list, err := t.c.Active(ctx, t.role)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.rentals = list
	t.mu.Unlock()
	return list, nil
}

// Rentals is the last fetched list.
func (t *Tracker) Rentals() []models.ActiveRental {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.ActiveRental, len(t.rentals))
	copy(out, t.rentals)
	return out
}

// Processing is the id of the rental whose transition is in flight, if any.
func (t *Tracker) Processing() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processing
}

func (t *Tracker) ConfirmHandover(ctx context.Context, id string) error {
	return t.run(ctx, id, KindHandover, t.c.ConfirmHandover)
}

func (t *Tracker) ConfirmReceipt(ctx context.Context, id string) error {
	return t.run(ctx, id, KindReceipt, t.c.ConfirmReceipt)
}

func (t *Tracker) CompleteRental(ctx context.Context, id string) error {
	return t.run(ctx, id, KindComplete, t.c.CompleteRental)
}

// Do dispatches an action kind from a rendered control.
func (t *Tracker) Do(ctx context.Context, kind Kind, id string) error {
	switch kind {
	case KindHandover:
		return t.ConfirmHandover(ctx, id)
	case KindReceipt:
		return t.ConfirmReceipt(ctx, id)
	case KindComplete:
		return t.CompleteRental(ctx, id)
	}
	return fmt.Errorf("unknown rental action %q", kind)
}

func (t *Tracker) run(ctx context.Context, id string, kind Kind, call func(context.Context, string) error) error {
	t.mu.Lock()
	if t.processing != "" {
		t.mu.Unlock()
		return ErrBusy
	}
	t.processing = id
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.processing = ""
		t.mu.Unlock()
	}()

	err := call(ctx, id)
	metrics.IncRentalTransition(string(kind), err)
	if err != nil {
		t.log.Warn().Err(err).Str("rental_id", id).Str("action", string(kind)).Msg("rental transition failed")
		return err
	}
	t.log.Info().Str("rental_id", id).Str("action", string(kind)).Msg("rental transition done")

	if _, err := t.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh after %s: %w", kind, err)
	}
	return nil
}
