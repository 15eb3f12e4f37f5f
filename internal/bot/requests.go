package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/domain"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/payment"
	"github.com/areahoodnigeria/client-app-sub001/internal/rentals"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func requestStatusLabel(s models.RequestStatus) string {
	switch s {
	case models.RequestPending, models.RequestOpen:
		return "⏳ Waiting for the owner"
	case models.RequestAccepted:
		return "✅ Accepted"
	case models.RequestRejected:
		return "❌ Rejected"
	case models.RequestCompleted:
		return "🏁 Completed"
	default:
		return string(s)
	}
}

var actionLabels = map[rentals.Kind]string{
	rentals.KindAccept:   "✅ Accept",
	rentals.KindReject:   "❌ Reject",
	rentals.KindPay:      "💳 Pay now",
	rentals.KindPaid:     "✔️ Paid",
	rentals.KindHandover: "🤝 Confirm handover",
	rentals.KindReceipt:  "📦 Confirm receipt",
	rentals.KindComplete: "🏁 Mark as completed",
}

// actionRow turns controls into one row of buttons keyed by the control kind.
func actionRow(actions []rentals.Action, id string) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	for _, a := range actions {
		label, ok := actionLabels[a.Kind]
		if !ok {
			label = a.Label
		}
		row = append(row, button(label, string(a.Kind), id))
	}
	return row
}

func requestCard(req models.RentalRequest, role rentals.Role) (string, *tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📨 %s\n", req.Listing.Label())
	if role == rentals.Lender {
		fmt.Fprintf(&sb, "👤 From %s\n", req.Borrower.Label())
	} else if req.Lender.Label() != "" {
		fmt.Fprintf(&sb, "🏠 Owner %s\n", req.Lender.Label())
	}
	fmt.Fprintf(&sb, "📅 %s to %s\n", req.StartDate.Day(), req.EndDate.Day())
	if req.TotalPrice > 0 {
		fmt.Fprintf(&sb, "💵 %s\n", naira(req.TotalPrice))
	}
	sb.WriteString(requestStatusLabel(req.Status))
	if req.Status == models.RequestAccepted {
		if req.IsPaid {
			sb.WriteString(" · paid")
		} else {
			sb.WriteString(" · awaiting payment")
		}
	}
	sb.WriteString("\n")
	if req.Message != "" {
		fmt.Fprintf(&sb, "💬 %s\n", truncate(req.Message, 300))
	}
	if req.Status == models.RequestRejected && req.RejectionReason != "" {
		fmt.Fprintf(&sb, "Reason: %s\n", req.RejectionReason)
	}
	return sb.String(), inline(actionRow(rentals.RequestActions(req, role), req.ID))
}

func (b *Bot) showIncoming(ctx context.Context, chatID int64) {
	if b.requireAuth(ctx, chatID) == nil {
		return
	}
	board := b.board(chatID)
	if _, err := board.Load(ctx); err != nil {
		b.fail(chatID, "incoming requests", err)
		return
	}
	reqs := board.Requests()
	if len(reqs) == 0 {
		b.reply(chatID, "📥 No one has asked to rent your items yet.")
		return
	}
	b.reply(chatID, fmt.Sprintf("📥 Requests for your listings: %d", len(reqs)))
	for _, req := range reqs {
		text, markup := requestCard(req, rentals.Lender)
		b.card(chatID, text, markup)
	}
}

func (b *Bot) showMyRequests(ctx context.Context, chatID int64) {
	if b.requireAuth(ctx, chatID) == nil {
		return
	}
	reqs, err := rentals.New(b.session(chatID)).BorrowerRequests(ctx)
	if err != nil {
		b.fail(chatID, "my requests", err)
		return
	}
	if len(reqs) == 0 {
		b.reply(chatID, "📤 You have not asked to rent anything yet. Browse the "+btnMarketplace+".")
		return
	}
	b.reply(chatID, fmt.Sprintf("📤 Your rental requests: %d", len(reqs)))
	for _, req := range reqs {
		text, markup := requestCard(req, rentals.Borrower)
		b.card(chatID, text, markup)
	}
}

// refreshRequestCard redraws a lender card from the board's local view.
func (b *Bot) refreshRequestCard(chatID int64, messageID int, board *rentals.Board, id, fallback string) {
	for _, req := range board.Requests() {
		if req.ID == id {
			text, markup := requestCard(req, rentals.Lender)
			b.edit(chatID, messageID, text, markup)
			return
		}
	}
	b.edit(chatID, messageID, fallback, nil)
}

func (b *Bot) accept(ctx context.Context, chatID int64, messageID int, id string) string {
	board := b.board(chatID)
	if err := board.Accept(ctx, id); err != nil {
		b.fail(chatID, "accept request", err)
		return ""
	}
	b.refreshRequestCard(chatID, messageID, board, id, "✅ Request accepted.")
	return "Accepted. The borrower can pay now."
}

func (b *Bot) startReject(ctx context.Context, chatID int64, messageID int, id string) string {
	b.states.StartForm(ctx, chatID, StateRejectReason, map[string]string{
		keyRequestID: id,
		keyMessageID: itoa(messageID),
	})
	b.send(chatID, "Tell the borrower why, or tap Skip:", skipKeyboard())
	return ""
}

func (b *Bot) handleRejectReason(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	if text == btnSkip {
		text = ""
	}
	id := state.Get(keyRequestID)
	board := b.board(chatID)
	err := board.Reject(ctx, id, text)
	b.states.ClearUserState(ctx, chatID)
	if err != nil {
		b.fail(chatID, "reject request", err)
		return
	}
	b.refreshRequestCard(chatID, state.GetInt(keyMessageID), board, id, "❌ Request rejected.")
	b.send(chatID, "Request rejected.", menuFor(b.auth(ctx, chatID)))
}

func (b *Bot) pay(ctx context.Context, chatID int64, messageID int, id string) string {
	a := b.requireAuth(ctx, chatID)
	if a == nil {
		return ""
	}
	reqs, err := rentals.New(b.session(chatID)).BorrowerRequests(ctx)
	if err != nil {
		b.fail(chatID, "pay", err)
		return ""
	}
	var req *models.RentalRequest
	for i := range reqs {
		if reqs[i].ID == id {
			req = &reqs[i]
			break
		}
	}
	if req == nil {
		return "This request is no longer available"
	}

	checkout, link, err := b.payments.Start(ctx, chatID, *req, a.User.Email)
	switch {
	case errors.Is(err, payment.ErrAlreadyPaid):
		text, markup := requestCard(*req, rentals.Borrower)
		b.edit(chatID, messageID, text, markup)
		return "This request is already paid"
	case errors.Is(err, payment.ErrNotAccepted):
		return "The owner has not accepted this request yet"
	case errors.Is(err, payment.ErrNotConfigured), errors.Is(err, payment.ErrWidgetUnavailable):
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("payment handoff unavailable")
		b.reply(chatID, "💳 Payments are unavailable right now. Please try again later.")
		return ""
	case errors.Is(err, payment.ErrNoEmail):
		b.reply(chatID, "✉️ Your account has no email address for the payment receipt. Add one in the Area Hood app, then try again.")
		return ""
	case err != nil:
		b.fail(chatID, "pay", err)
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💳 Pay %s for \"%s\"\n", naira(float64(checkout.AmountMinor)/100), req.Listing.Label())
	sb.WriteString("The money is held in escrow until you confirm you received the item.\n")
	if ttl := b.config.Payment.PendingTTL; ttl > 0 {
		fmt.Fprintf(&sb, "The link is valid for %d minutes.", int(ttl.Minutes()))
	}
	b.card(chatID, sb.String(), inline(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonURL("💳 Open checkout", link),
	)))
	return ""
}
