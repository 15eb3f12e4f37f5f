package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/payment"
)

// PaymentVerified tells the payer the money is in escrow.
func (b *Bot) PaymentVerified(ctx context.Context, res *payment.Result) {
	c := res.Checkout
	amount := naira(float64(c.AmountMinor) / 100)

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Payment of %s received.\n", amount)
	if res.Verification != nil {
		req := res.Verification.Request
		if req.Listing.Label() != "" {
			fmt.Fprintf(&sb, "🔑 %s · %s to %s\n", req.Listing.Label(), req.StartDate.Day(), req.EndDate.Day())
		}
		if r := res.Verification.Rental; r != nil {
			b.syncRental(ctx, *r)
		}
	}
	sb.WriteString("The money stays in escrow until you confirm you received the item under " + btnBorrowing + ".")

	b.reply(c.ChatID, sb.String())
	b.log.Info().Int64("chat_id", c.ChatID).Str("reference", c.Reference).Str("request_id", c.RequestID).Msg("payment confirmed to payer")
}

// PaymentFailed tells the payer verification did not go through.
func (b *Bot) PaymentFailed(ctx context.Context, c *models.Checkout, err error) {
	text := "⚠️ We could not confirm your payment: " + api.UserMessage(err)
	if email := b.config.App.ContactEmail; email != "" {
		text += "\nIf you were charged, contact " + email + " with reference " + c.Reference + "."
	} else {
		text += "\nIf you were charged, contact support with reference " + c.Reference + "."
	}
	b.reply(c.ChatID, text)
	b.log.Warn().Err(err).Int64("chat_id", c.ChatID).Str("reference", c.Reference).Msg("payment failure reported to payer")
}
