// Package rentals wraps the rental request, payment verification and escrow
// endpoints and decides which controls each side of a rental may use.
package rentals

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

// Role is the viewer's side of a rental.
type Role string

const (
	Lender   Role = "lender"
	Borrower Role = "borrower"
)

// dateLayouts are the formats accepted from the date prompts. Requests
// always go out as models.DateLayout.
var dateLayouts = []string{models.DateLayout, "02/01/2006", "02.01.2006"}

// ParseDate reads a date typed by the user.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RequestForm is what the borrower fills in on a listing.
type RequestForm struct {
	StartDate string
	EndDate   string
	Message   string
}

// Validate runs the checks made before anything is sent.
func (f RequestForm) Validate() (start, end time.Time, err error) {
	if strings.TrimSpace(f.StartDate) == "" {
		return start, end, api.Invalid("startDate", "Please select a start date")
	}
	if strings.TrimSpace(f.EndDate) == "" {
		return start, end, api.Invalid("endDate", "Please select an end date")
	}
	start, ok := ParseDate(f.StartDate)
	if !ok {
		return start, end, api.Invalid("startDate", "Start date must look like 2024-05-31")
	}
	end, ok = ParseDate(f.EndDate)
	if !ok {
		return start, end, api.Invalid("endDate", "End date must look like 2024-05-31")
	}
	if end.Before(start) {
		return start, end, api.Invalid("endDate", "End date cannot be before the start date")
	}
	return start, end, nil
}

// Decision is the lender's answer to a request.
type Decision struct {
	Status          models.RequestStatus
	RejectionReason string
}

type Client struct {
	s *api.Session
}

func New(s *api.Session) *Client {
	return &Client{s: s}
}

// CreateRentalRequest validates the form and posts the request. An invalid
// form never reaches the network.
func (c *Client) CreateRentalRequest(ctx context.Context, listingID string, form RequestForm) (*models.RentalRequest, error) {
	if strings.TrimSpace(listingID) == "" {
		return nil, api.Invalid("listingId", "Pick a listing first")
	}
	start, end, err := form.Validate()
	if err != nil {
		return nil, err
	}
	body := map[string]string{
		"listingId": listingID,
		"startDate": start.Format(models.DateLayout),
		"endDate":   end.Format(models.DateLayout),
	}
	if msg := strings.TrimSpace(form.Message); msg != "" {
		body["message"] = msg
	}
	var req models.RentalRequest
	if err := c.s.Post(ctx, "/rentals/requests", body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateRequest records the lender's decision. A rejection without a reason
// is allowed.
func (c *Client) UpdateRequest(ctx context.Context, id string, d Decision) (*models.RentalRequest, error) {
	if d.Status != models.RequestAccepted && d.Status != models.RequestRejected {
		return nil, api.Invalid("status", "Only accept or reject a request")
	}
	body := map[string]string{"status": string(d.Status)}
	if reason := strings.TrimSpace(d.RejectionReason); reason != "" && d.Status == models.RequestRejected {
		body["rejectionReason"] = reason
	}
	var req models.RentalRequest
	if err := c.s.Patch(ctx, "/rentals/requests/"+url.PathEscape(id), body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// LenderRequests lists requests made on the viewer's items.
func (c *Client) LenderRequests(ctx context.Context) ([]models.RentalRequest, error) {
	return c.requests(ctx, "/rentals/requests/lender")
}

// BorrowerRequests lists the viewer's own requests.
func (c *Client) BorrowerRequests(ctx context.Context) ([]models.RentalRequest, error) {
	return c.requests(ctx, "/rentals/requests/borrower")
}

func (c *Client) requests(ctx context.Context, path string) ([]models.RentalRequest, error) {
	page, err := api.GetPage[models.RentalRequest](ctx, c.s, path, nil)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// VerifyPayment asks the server to confirm a completed checkout. On success
// the request comes back paid and an active rental exists.
func (c *Client) VerifyPayment(ctx context.Context, reference, requestID string) (*models.PaymentVerification, error) {
	if reference == "" || requestID == "" {
		return nil, api.Invalid("reference", "Missing payment reference")
	}
	body := map[string]string{"reference": reference, "requestId": requestID}
	var v models.PaymentVerification
	if err := c.s.Post(ctx, "/payments/verify", body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Kind names a control shown on a request or rental card.
type Kind string

const (
	KindAccept   Kind = "accept"
	KindReject   Kind = "reject"
	KindPay      Kind = "pay"
	KindPaid     Kind = "paid"
	KindHandover Kind = "handover"
	KindReceipt  Kind = "receipt"
	KindComplete Kind = "complete"
)

// Action is one control. Disabled controls are shown but do nothing.
type Action struct {
	Kind     Kind
	Label    string
	Disabled bool
}

// RequestActions returns the controls a viewer gets on a request card.
func RequestActions(req models.RentalRequest, role Role) []Action {
	switch {
	case role == Lender && req.Status.AwaitingDecision():
		return []Action{
			{Kind: KindAccept, Label: "Accept"},
			{Kind: KindReject, Label: "Reject"},
		}
	case role == Borrower && req.Status == models.RequestAccepted && !req.IsPaid:
		return []Action{{Kind: KindPay, Label: "Pay now"}}
	case role == Borrower && req.Status == models.RequestAccepted:
		return []Action{{Kind: KindPaid, Label: "Paid", Disabled: true}}
	}
	return nil
}
