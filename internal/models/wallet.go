package models

import "encoding/json"

// Wallet mirrors the two balance fields settled by the server.
type Wallet struct {
	Balance        float64 `json:"wallet_balance"`
	PendingBalance float64 `json:"pending_balance"`
	Currency       string  `json:"currency,omitempty"`
}

type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ResolvedAccount is the server-proxied bank account lookup result.
type ResolvedAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	BankCode      string `json:"bank_code,omitempty"`
}

// Withdrawal is a payout request. Amount is in naira.
type Withdrawal struct {
	Amount        float64 `json:"amount"`
	BankCode      string  `json:"bank_code"`
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"account_name"`
}

type Transaction struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	Reference   string  `json:"reference,omitempty"`
	Description string  `json:"description,omitempty"`
	CreatedAt   Time    `json:"created_at"`
}

func (t *Transaction) UnmarshalJSON(b []byte) error {
	var w struct {
		MongoID     string  `json:"_id"`
		ID          string  `json:"id"`
		Type        string  `json:"type"`
		Amount      float64 `json:"amount"`
		Status      string  `json:"status"`
		Reference   string  `json:"reference"`
		Description string  `json:"description"`
		CreatedAt   Time    `json:"createdAt"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*t = Transaction{
		ID:          firstNonEmpty(w.MongoID, w.ID),
		Type:        w.Type,
		Amount:      w.Amount,
		Status:      w.Status,
		Reference:   w.Reference,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
	}
	return nil
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users         int     `json:"totalUsers"`
	Organizations int     `json:"totalOrganizations"`
	Listings      int     `json:"totalListings"`
	ActiveRentals int     `json:"activeRentals"`
	EscrowHeld    float64 `json:"escrowHeld"`
}
