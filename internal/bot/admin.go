package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/admin"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/session"
)

// requireAdmin lets administrators through and answers everyone else.
func (b *Bot) requireAdmin(ctx context.Context, chatID int64) *session.Auth {
	a := b.requireAuth(ctx, chatID)
	if a == nil {
		return nil
	}
	if a.User.Role != models.RoleAdmin {
		b.send(chatID, "This section is for administrators.", menuFor(a))
		return nil
	}
	return a
}

func (b *Bot) showStats(ctx context.Context, chatID int64) {
	if b.requireAdmin(ctx, chatID) == nil {
		return
	}
	st, err := admin.New(b.session(chatID)).Stats(ctx)
	if err != nil {
		b.fail(chatID, "stats", err)
		return
	}
	b.reply(chatID, fmt.Sprintf("📈 Platform stats\n\n👥 Users: %d\n🏢 Organizations: %d\n📦 Listings: %d\n🔑 Active rentals: %d\n🔒 Held in escrow: %s",
		st.Users, st.Organizations, st.Listings, st.ActiveRentals, naira(st.EscrowHeld)))
}

func (b *Bot) showUsers(ctx context.Context, chatID int64, messageID, page int) {
	if b.requireAdmin(ctx, chatID) == nil {
		return
	}
	p, err := admin.New(b.session(chatID)).Users(ctx, page, b.pageSize())
	if err != nil {
		b.fail(chatID, "users", err)
		return
	}
	if len(p.Items) == 0 {
		b.edit(chatID, messageID, "👥 No users.", nil)
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Users (%d)\n", p.Total)
	for _, u := range p.Items {
		fmt.Fprintf(&sb, "\n%s · %s\n   %s", displayName(u.Name, u.ID), roleLabel(u.Role), u.Email)
	}
	sb.WriteString(pageFooter(p.Page, p.TotalPages))
	b.edit(chatID, messageID, sb.String(), inline(pager("users", p)))
}

func (b *Bot) showAllRentals(ctx context.Context, chatID int64, messageID, page int) {
	if b.requireAdmin(ctx, chatID) == nil {
		return
	}
	p, err := admin.New(b.session(chatID)).Rentals(ctx, page, b.pageSize())
	if err != nil {
		b.fail(chatID, "all rentals", err)
		return
	}
	if len(p.Items) == 0 {
		b.edit(chatID, messageID, "📑 No rentals yet.", nil)
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📑 Rentals (%d)\n", p.Total)
	for _, r := range p.Items {
		fmt.Fprintf(&sb, "\n%s · %s\n   %s → %s · %s to %s\n   %s",
			r.Listing.Label(), naira(r.TotalAmount),
			r.Lender.Label(), r.Borrower.Label(), r.StartDate.Day(), r.EndDate.Day(),
			escrowLabel(r.EscrowStatus))
	}
	sb.WriteString(pageFooter(p.Page, p.TotalPages))
	b.edit(chatID, messageID, sb.String(), inline(pager("arentals", p)))
}

func (b *Bot) syncSheets(ctx context.Context, chatID int64) {
	if b.requireAdmin(ctx, chatID) == nil {
		return
	}
	if b.sheets == nil {
		b.reply(chatID, "Google Sheets is not configured.")
		return
	}
	b.reply(chatID, "🔄 Syncing users and rentals…")
	res, err := b.sheets.SyncAll(ctx, admin.New(b.session(chatID)))
	if err != nil {
		b.fail(chatID, "sheets sync", err)
		return
	}
	b.log.Info().Int("users", res.Users).Int("rentals", res.Rentals).Msg("sheets synced")
	b.reply(chatID, fmt.Sprintf("✅ Synced %d users and %d rentals.", res.Users, res.Rentals))
}
