package models

import "time"

// Checkout is the parameter set handed to the hosted payment widget.
// AmountMinor is in kobo.
type Checkout struct {
	Reference   string            `json:"reference"`
	PublicKey   string            `json:"public_key"`
	Email       string            `json:"email"`
	AmountMinor int64             `json:"amount"`
	Currency    string            `json:"currency"`
	RequestID   string            `json:"request_id"`
	ChatID      int64             `json:"chat_id"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
