// Package wallet reads the balances the server settles and requests payouts.
// Amounts never change on the client; every figure comes from the API.
package wallet

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
)

// NUBANLength is the length of a Nigerian bank account number.
const NUBANLength = 10

type Client struct {
	s *api.Session
}

func New(s *api.Session) *Client {
	return &Client{s: s}
}

func (c *Client) Balance(ctx context.Context) (*models.Wallet, error) {
	var w models.Wallet
	if err := c.s.Get(ctx, "/wallet", nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) Banks(ctx context.Context) ([]models.Bank, error) {
	var banks []models.Bank
	if err := c.s.Get(ctx, "/wallet/banks", nil, &banks); err != nil {
		return nil, err
	}
	return banks, nil
}

// ValidAccountNumber reports whether s is a 10-digit NUBAN.
func ValidAccountNumber(s string) bool {
	if len(s) != NUBANLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResolveAccount looks up the account holder's name through the server.
func (c *Client) ResolveAccount(ctx context.Context, accountNumber, bankCode string) (*models.ResolvedAccount, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if !ValidAccountNumber(accountNumber) {
		return nil, api.Invalid("account_number", "Account number must be 10 digits")
	}
	if bankCode == "" {
		return nil, api.Invalid("bank_code", "Please pick a bank")
	}
	q := url.Values{"account_number": {accountNumber}, "bank_code": {bankCode}}
	var acc models.ResolvedAccount
	if err := c.s.Get(ctx, "/wallet/resolve-account", q, &acc); err != nil {
		return nil, err
	}
	if acc.BankCode == "" {
		acc.BankCode = bankCode
	}
	return &acc, nil
}

// Withdraw requests a payout. An amount above the available balance is
// refused by the server with a *api.ConflictError.
func (c *Client) Withdraw(ctx context.Context, w models.Withdrawal) (*models.Transaction, error) {
	switch {
	case w.Amount <= 0:
		return nil, api.Invalid("amount", "Enter an amount greater than zero")
	case !ValidAccountNumber(w.AccountNumber):
		return nil, api.Invalid("account_number", "Account number must be 10 digits")
	case w.BankCode == "":
		return nil, api.Invalid("bank_code", "Please pick a bank")
	}
	var tx models.Transaction
	if err := c.s.Post(ctx, "/wallet/withdraw", w, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *Client) Transactions(ctx context.Context, page, limit int) (models.Page[models.Transaction], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return api.GetPage[models.Transaction](ctx, c.s, "/wallet/transactions", q)
}

// ParseAmount reads a naira amount typed by the user, allowing thousands
// separators and a leading currency sign.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₦")
	s = strings.TrimPrefix(strings.ToUpper(s), "NGN")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// FormatNaira renders an amount as ₦1,234.50.
func FormatNaira(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "₦" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
