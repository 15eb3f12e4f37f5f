package models

import "encoding/json"

// RequestStatus is the server-owned state of a rental request.
type RequestStatus string

const (
	RequestOpen      RequestStatus = "open"
	RequestPending   RequestStatus = "pending"
	RequestAccepted  RequestStatus = "accepted"
	RequestRejected  RequestStatus = "rejected"
	RequestCompleted RequestStatus = "completed"
)

// AwaitingDecision reports whether the lender may still accept or reject.
func (s RequestStatus) AwaitingDecision() bool {
	return s == RequestPending || s == RequestOpen
}

// RentalRequest is a borrower's proposal to rent a listing over a date range.
type RentalRequest struct {
	ID              string        `json:"id"`
	Listing         Ref           `json:"listing"`
	Borrower        Ref           `json:"borrower"`
	Lender          Ref           `json:"lender"`
	StartDate       Time          `json:"start_date"`
	EndDate         Time          `json:"end_date"`
	TotalPrice      float64       `json:"total_price"`
	Message         string        `json:"message,omitempty"`
	Status          RequestStatus `json:"status"`
	IsPaid          bool          `json:"is_paid"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	CreatedAt       Time          `json:"created_at"`
}

type rentalRequestWire struct {
	MongoID         string        `json:"_id"`
	ID              string        `json:"id"`
	Listing         Ref           `json:"listing"`
	Item            Ref           `json:"item"`
	Borrower        Ref           `json:"borrower"`
	Lender          Ref           `json:"lender"`
	Owner           Ref           `json:"owner"`
	StartDate       Time          `json:"startDate"`
	EndDate         Time          `json:"endDate"`
	TotalPrice      float64       `json:"totalPrice"`
	Message         string        `json:"message"`
	Status          RequestStatus `json:"status"`
	IsPaid          bool          `json:"isPaid"`
	RejectionReason string        `json:"rejectionReason"`
	CreatedAt       Time          `json:"createdAt"`
}

func (r *RentalRequest) UnmarshalJSON(b []byte) error {
	var w rentalRequestWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	listing := w.Listing
	if listing.ID == "" {
		listing = w.Item
	}
	lender := w.Lender
	if lender.ID == "" {
		lender = w.Owner
	}
	*r = RentalRequest{
		ID:              firstNonEmpty(w.MongoID, w.ID),
		Listing:         listing,
		Borrower:        w.Borrower,
		Lender:          lender,
		StartDate:       w.StartDate,
		EndDate:         w.EndDate,
		TotalPrice:      w.TotalPrice,
		Message:         w.Message,
		Status:          w.Status,
		IsPaid:          w.IsPaid,
		RejectionReason: w.RejectionReason,
		CreatedAt:       w.CreatedAt,
	}
	return nil
}

// RentalStatus tracks the physical side of an active rental.
type RentalStatus string

const (
	RentalActive    RentalStatus = "active"
	RentalReturned  RentalStatus = "returned"
	RentalCompleted RentalStatus = "completed"
)

// EscrowStatus tracks the money side of an active rental.
type EscrowStatus string

const (
	EscrowFundsHeld     EscrowStatus = "funds_held"
	EscrowItemDelivered EscrowStatus = "item_delivered"
	EscrowFundsReleased EscrowStatus = "funds_released"
)

// ActiveRental exists once a request has been paid.
type ActiveRental struct {
	ID           string       `json:"id"`
	Request      string       `json:"request,omitempty"`
	Listing      Ref          `json:"listing"`
	Borrower     Ref          `json:"borrower"`
	Lender       Ref          `json:"lender"`
	StartDate    Time         `json:"start_date"`
	EndDate      Time         `json:"end_date"`
	TotalAmount  float64      `json:"total_amount"`
	Status       RentalStatus `json:"status"`
	EscrowStatus EscrowStatus `json:"escrow_status"`
	CreatedAt    Time         `json:"created_at"`
}

type activeRentalWire struct {
	MongoID       string       `json:"_id"`
	ID            string       `json:"id"`
	RentalRequest Ref          `json:"rentalRequest"`
	Listing       Ref          `json:"listing"`
	Borrower      Ref          `json:"borrower"`
	Lender        Ref          `json:"lender"`
	StartDate     Time         `json:"startDate"`
	EndDate       Time         `json:"endDate"`
	TotalAmount   float64      `json:"totalAmount"`
	Status        RentalStatus `json:"status"`
	EscrowStatus  EscrowStatus `json:"escrow_status"`
	CreatedAt     Time         `json:"createdAt"`
}

func (a *ActiveRental) UnmarshalJSON(b []byte) error {
	var w activeRentalWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*a = ActiveRental{
		ID:           firstNonEmpty(w.MongoID, w.ID),
		Request:      w.RentalRequest.ID,
		Listing:      w.Listing,
		Borrower:     w.Borrower,
		Lender:       w.Lender,
		StartDate:    w.StartDate,
		EndDate:      w.EndDate,
		TotalAmount:  w.TotalAmount,
		Status:       w.Status,
		EscrowStatus: w.EscrowStatus,
		CreatedAt:    w.CreatedAt,
	}
	return nil
}

// PaymentVerification is the verify endpoint's answer.
type PaymentVerification struct {
	Request RentalRequest `json:"rentalRequest"`
	Rental  *ActiveRental `json:"rental,omitempty"`
}
