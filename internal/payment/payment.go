// Package payment hands an accepted rental request to the hosted checkout
// widget and relays the widget's callback to the verify endpoint.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/config"
	"github.com/areahoodnigeria/client-app-sub001/internal/metrics"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/rentals"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrAlreadyPaid       = errors.New("this request has already been paid")
	ErrNotAccepted       = errors.New("the lender has not accepted this request yet")
	ErrNotConfigured     = errors.New("payments are not configured")
	ErrWidgetUnavailable = errors.New("the payment page is unavailable right now")
	ErrNoEmail           = errors.New("your account has no email address for the payment receipt")
	ErrUnknownReference  = errors.New("unknown or expired payment reference")
)

// PendingStore keeps checkouts between Start and the widget callback.
type PendingStore interface {
	Put(ctx context.Context, c *models.Checkout, ttl time.Duration) error
	Get(ctx context.Context, reference string) (*models.Checkout, error)
	Delete(ctx context.Context, reference string) error
}

// SessionFunc resolves the API session of the chat that opened a checkout.
type SessionFunc func(chatID int64) *api.Session

// MinorUnits converts naira to kobo.
func MinorUnits(naira float64) int64 {
	return int64(math.Round(naira * 100))
}

type Handoff struct {
	cfg      config.PaymentConfig
	store    PendingStore
	sessions SessionFunc
	log      zerolog.Logger
	now      func() time.Time
}

func NewHandoff(cfg config.PaymentConfig, store PendingStore, sessions SessionFunc, log zerolog.Logger) *Handoff {
	return &Handoff{cfg: cfg, store: store, sessions: sessions, log: log, now: time.Now}
}

// Start prepares the checkout for an accepted, unpaid request and returns it
// with the URL of the page that opens the widget. Nothing is sent to the
// verify endpoint here.
func (h *Handoff) Start(ctx context.Context, chatID int64, req models.RentalRequest, email string) (*models.Checkout, string, error) {
	c, url, err := h.start(ctx, chatID, req, email)
	metrics.IncPayment("start", err)
	return c, url, err
}

func (h *Handoff) start(ctx context.Context, chatID int64, req models.RentalRequest, email string) (*models.Checkout, string, error) {
	if req.IsPaid {
		return nil, "", ErrAlreadyPaid
	}
	if req.Status != models.RequestAccepted {
		return nil, "", ErrNotAccepted
	}
	if h.cfg.PublicKey == "" {
		return nil, "", ErrNotConfigured
	}
	if h.cfg.CheckoutBaseURL == "" {
		return nil, "", ErrWidgetUnavailable
	}
	amount := MinorUnits(req.TotalPrice)
	if amount <= 0 {
		return nil, "", api.Invalid("totalPrice", "This request has no amount to pay")
	}

	if strings.TrimSpace(email) == "" {
		// The cached profile may predate the email; ask once more.
		if me, err := h.sessions(chatID).Me(ctx); err == nil {
			email = me.Email
		} else {
			h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("profile re-fetch for checkout failed")
		}
	}
	if strings.TrimSpace(email) == "" {
		return nil, "", ErrNoEmail
	}

	c := &models.Checkout{
		Reference:   "AH-" + uuid.NewString(),
		PublicKey:   h.cfg.PublicKey,
		Email:       strings.TrimSpace(email),
		AmountMinor: amount,
		Currency:    h.cfg.Currency,
		RequestID:   req.ID,
		ChatID:      chatID,
		Metadata: map[string]string{
			"request_id": req.ID,
			"listing_id": req.Listing.ID,
			"chat_id":    strconv.FormatInt(chatID, 10),
		},
		CreatedAt: h.now(),
	}
	if err := h.store.Put(ctx, c, h.cfg.PendingTTL); err != nil {
		return nil, "", fmt.Errorf("store pending checkout: %w", err)
	}

	h.log.Info().
		Int64("chat_id", chatID).
		Str("request_id", req.ID).
		Str("reference", c.Reference).
		Int64("amount", c.AmountMinor).
		Msg("checkout started")

	return c, CheckoutURL(h.cfg.CheckoutBaseURL, c.Reference), nil
}

// CheckoutURL is where the payer opens the widget.
func CheckoutURL(base, reference string) string {
	return strings.TrimRight(base, "/") + "/checkout/" + reference
}

// Pending returns the stored checkout for a reference.
func (h *Handoff) Pending(ctx context.Context, reference string) (*models.Checkout, error) {
	c, err := h.store.Get(ctx, reference)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrUnknownReference
	}
	return c, nil
}

// Result is a verified payment.
type Result struct {
	Checkout     *models.Checkout
	Verification *models.PaymentVerification
}

// Complete verifies a checkout the widget reported as successful, using the
// payer's own session. The pending record is dropped only on success, so a
// failed verification can be retried by the payer.
func (h *Handoff) Complete(ctx context.Context, reference string) (*Result, error) {
	res, err := h.complete(ctx, reference)
	metrics.IncPayment("verify", err)
	return res, err
}

func (h *Handoff) complete(ctx context.Context, reference string) (*Result, error) {
	c, err := h.Pending(ctx, reference)
	if err != nil {
		return nil, err
	}
	v, err := rentals.New(h.sessions(c.ChatID)).VerifyPayment(ctx, c.Reference, c.RequestID)
	if err != nil {
		h.log.Warn().Err(err).Int64("chat_id", c.ChatID).Str("reference", reference).Msg("payment verification failed")
		return nil, err
	}
	if err := h.store.Delete(ctx, reference); err != nil {
		h.log.Warn().Err(err).Str("reference", reference).Msg("failed to drop pending checkout")
	}
	h.log.Info().Int64("chat_id", c.ChatID).Str("reference", reference).Str("request_id", c.RequestID).Msg("payment verified")
	return &Result{Checkout: c, Verification: v}, nil
}
