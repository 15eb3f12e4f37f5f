package models

import "encoding/json"

type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingInactive ListingStatus = "inactive"
)

// Listing is an item a neighbor offers for rent or sale.
type Listing struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	PricePerDay  float64       `json:"price_per_day"`
	PricePerWeek float64       `json:"price_per_week,omitempty"`
	Deposit      float64       `json:"deposit,omitempty"`
	Condition    string        `json:"condition,omitempty"`
	Images       []string      `json:"images"`
	Owner        Ref           `json:"owner"`
	Status       ListingStatus `json:"status"`
	CreatedAt    Time          `json:"created_at"`
}

type listingWire struct {
	MongoID      string        `json:"_id"`
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	PricePerDay  float64       `json:"pricePerDay"`
	PricePerWeek float64       `json:"pricePerWeek"`
	Price        float64       `json:"price"`
	Deposit      float64       `json:"deposit"`
	Condition    string        `json:"condition"`
	Images       []Image       `json:"images"`
	Owner        Ref           `json:"owner"`
	User         Ref           `json:"user"`
	Status       ListingStatus `json:"status"`
	CreatedAt    Time          `json:"createdAt"`
}

func (l *Listing) UnmarshalJSON(b []byte) error {
	var w listingWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	owner := w.Owner
	if owner.ID == "" {
		owner = w.User
	}
	price := w.PricePerDay
	if price == 0 {
		price = w.Price
	}
	status := w.Status
	if status == "" {
		status = ListingActive
	}
	*l = Listing{
		ID:           firstNonEmpty(w.MongoID, w.ID),
		Title:        firstNonEmpty(w.Title, w.Name),
		Description:  w.Description,
		Category:     w.Category,
		PricePerDay:  price,
		PricePerWeek: w.PricePerWeek,
		Deposit:      w.Deposit,
		Condition:    w.Condition,
		Images:       imageURLs(w.Images),
		Owner:        owner,
		Status:       status,
		CreatedAt:    w.CreatedAt,
	}
	return nil
}

// ListingInput is the owner's create/edit form.
type ListingInput struct {
	Title        string
	Description  string
	Category     string
	PricePerDay  float64
	PricePerWeek float64
	Deposit      float64
	Condition    string
}
