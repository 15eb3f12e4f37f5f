package rentals

import (
	"context"
	"sync"

	"github.com/areahoodnigeria/client-app-sub001/internal/metrics"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/optimistic"
)

// Board is the lender's view of incoming requests. Decisions show up at once
// and are reverted if the server refuses them.
type Board struct {
	c        *Client
	statuses *optimistic.Map[string, models.RequestStatus]

	mu       sync.Mutex
	requests []models.RentalRequest
}

func NewBoard(c *Client) *Board {
	return &Board{c: c, statuses: optimistic.NewMap[string, models.RequestStatus]()}
}

// Load fetches the lender's requests and resets all local state.
func (b *Board) Load(ctx context.Context) ([]models.RentalRequest, error) {
	list, err := b.c.LenderRequests(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make(map[string]models.RequestStatus, len(list))
	for _, r := range list {
		statuses[r.ID] = r.Status
	}
	b.mu.Lock()
	b.requests = list
	b.statuses.Replace(statuses)
	b.mu.Unlock()
	return b.Requests(), nil
}

// Requests returns the loaded requests with local statuses applied.
func (b *Board) Requests() []models.RentalRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.RentalRequest, len(b.requests))
	for i, r := range b.requests {
		if s, ok := b.statuses.Get(r.ID); ok {
			r.Status = s
		}
		out[i] = r
	}
	return out
}

// Status is the status currently shown for a request.
func (b *Board) Status(id string) (models.RequestStatus, bool) {
	return b.statuses.Get(id)
}

// Accept marks the request accepted, then asks the server.
func (b *Board) Accept(ctx context.Context, id string) error {
	return b.decide(ctx, id, Decision{Status: models.RequestAccepted})
}

// Reject marks the request rejected, then asks the server.
func (b *Board) Reject(ctx context.Context, id, reason string) error {
	return b.decide(ctx, id, Decision{Status: models.RequestRejected, RejectionReason: reason})
}

func (b *Board) decide(ctx context.Context, id string, d Decision) error {
	err := b.statuses.Apply(id, d.Status, func() error {
		_, err := b.c.UpdateRequest(ctx, id, d)
		return err
	})
	metrics.IncRequestDecision(string(d.Status), err)
	return err
}
