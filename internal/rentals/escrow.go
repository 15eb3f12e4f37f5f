package rentals

import (
	"context"
	"net/url"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

// Actions returns the escrow controls a viewer gets on an active rental.
// Unknown escrow values yield nothing.
func Actions(r models.ActiveRental, role Role) []Action {
	switch r.EscrowStatus {
	case models.EscrowFundsHeld:
		if role == Lender {
			return []Action{{Kind: KindHandover, Label: "Confirm handover"}}
		}
	case models.EscrowItemDelivered:
		if role == Borrower {
			return []Action{{Kind: KindReceipt, Label: "Confirm receipt"}}
		}
	case models.EscrowFundsReleased:
		if role == Lender && r.Status == models.RentalActive {
			return []Action{{Kind: KindComplete, Label: "Mark as completed"}}
		}
	}
	return nil
}

// Active lists the viewer's rentals on one side.
func (c *Client) Active(ctx context.Context, role Role) ([]models.ActiveRental, error) {
	q := url.Values{"role": {string(role)}}
	page, err := api.GetPage[models.ActiveRental](ctx, c.s, "/rentals/active", q)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ConfirmHandover is the lender saying the item changed hands.
func (c *Client) ConfirmHandover(ctx context.Context, id string) error {
	return c.transition(ctx, id, "handover")
}

// ConfirmReceipt is the borrower saying they have the item. The server
// releases the escrowed funds.
func (c *Client) ConfirmReceipt(ctx context.Context, id string) error {
	return c.transition(ctx, id, "confirm-receipt")
}

// CompleteRental closes a rental whose funds were released.
func (c *Client) CompleteRental(ctx context.Context, id string) error {
	return c.transition(ctx, id, "complete")
}

func (c *Client) transition(ctx context.Context, id, step string) error {
	return c.s.Post(ctx, "/rentals/"+url.PathEscape(id)+"/"+step, nil, nil)
}
