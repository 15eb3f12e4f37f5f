package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/rentals"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func escrowLabel(s models.EscrowStatus) string {
	switch s {
	case models.EscrowFundsHeld:
		return "🔒 Payment held in escrow"
	case models.EscrowItemDelivered:
		return "📦 Item handed over"
	case models.EscrowFundsReleased:
		return "💸 Payment released to the owner"
	default:
		return string(s)
	}
}

// rentalCard renders r with its transition buttons. While any transition is
// in flight (busy is its rental id) no card gets buttons.
func rentalCard(r models.ActiveRental, role rentals.Role, busy string) (string, *tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔑 %s\n", r.Listing.Label())
	if role == rentals.Lender {
		fmt.Fprintf(&sb, "👤 Borrower %s\n", r.Borrower.Label())
	} else {
		fmt.Fprintf(&sb, "🏠 Owner %s\n", r.Lender.Label())
	}
	fmt.Fprintf(&sb, "📅 %s to %s\n", r.StartDate.Day(), r.EndDate.Day())
	if r.TotalAmount > 0 {
		fmt.Fprintf(&sb, "💵 %s\n", naira(r.TotalAmount))
	}
	sb.WriteString(escrowLabel(r.EscrowStatus))
	if r.Status == models.RentalCompleted {
		sb.WriteString("\n🏁 Completed")
	}
	if busy != "" {
		if busy == r.ID {
			sb.WriteString("\n⏳ Processing…")
		}
		return sb.String(), nil
	}
	return sb.String(), inline(actionRow(rentals.Actions(r, role), r.ID))
}

func (b *Bot) showRentals(ctx context.Context, chatID int64, role rentals.Role) {
	if b.requireAuth(ctx, chatID) == nil {
		return
	}
	t := b.tracker(chatID, role)
	list, err := t.Refresh(ctx)
	if err != nil {
		b.fail(chatID, "rentals", err)
		return
	}
	if len(list) == 0 {
		if role == rentals.Lender {
			b.reply(chatID, "🤝 None of your items are out on rent right now.")
		} else {
			b.reply(chatID, "📦 You are not renting anything right now.")
		}
		return
	}

	title := "📦 Items you are renting"
	if role == rentals.Lender {
		title = "🤝 Your items out on rent"
	}
	b.reply(chatID, fmt.Sprintf("%s: %d", title, len(list)))
	busy := t.Processing()
	for _, r := range list {
		text, markup := rentalCard(r, role, busy)
		b.card(chatID, text, markup)
	}
}

// transitionRole is the side of the rental allowed to trigger kind.
func transitionRole(kind rentals.Kind) rentals.Role {
	if kind == rentals.KindReceipt {
		return rentals.Borrower
	}
	return rentals.Lender
}

var transitionDone = map[rentals.Kind]string{
	rentals.KindHandover: "Handover confirmed",
	rentals.KindReceipt:  "Receipt confirmed. The owner gets paid.",
	rentals.KindComplete: "Rental completed",
}

func (b *Bot) transition(ctx context.Context, chatID int64, messageID int, kind rentals.Kind, id string) string {
	if b.requireAuth(ctx, chatID) == nil {
		return ""
	}
	role := transitionRole(kind)
	t := b.tracker(chatID, role)

	err := t.Do(ctx, kind, id)
	if errors.Is(err, rentals.ErrBusy) {
		return "Please wait, the previous action is still being processed"
	}
	if err != nil {
		b.fail(chatID, string(kind), err)
		return ""
	}

	for _, r := range t.Rentals() {
		if r.ID == id {
			text, markup := rentalCard(r, role, "")
			b.edit(chatID, messageID, text, markup)
			b.syncRental(ctx, r)
			return transitionDone[kind]
		}
	}
	// Finished rentals drop out of the active list.
	b.edit(chatID, messageID, "✅ "+transitionDone[kind]+".", nil)
	return transitionDone[kind]
}

// syncRental mirrors a rental row to the admin spreadsheet when configured.
func (b *Bot) syncRental(ctx context.Context, r models.ActiveRental) {
	if b.sheets == nil {
		return
	}
	if err := b.sheets.UpsertRental(ctx, r); err != nil {
		b.log.Warn().Err(err).Str("rental_id", r.ID).Msg("failed to mirror rental to sheets")
	}
}
