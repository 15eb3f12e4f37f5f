package bot

import (
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply keyboard labels.
const (
	btnHome        = "🏠 Home"
	btnAbout       = "ℹ️ About"
	btnContact     = "📞 Contact"
	btnLogin       = "🔑 Log in"
	btnLogout      = "🚪 Log out"
	btnProfile     = "👤 Profile"
	btnMarketplace = "🛒 Marketplace"
	btnBusinesses  = "🏢 Businesses"
	btnOrgs        = "🏘 Organizations"
	btnCommunity   = "📰 Community"
	btnIncoming    = "📥 Incoming requests"
	btnMyRequests  = "📤 My requests"
	btnLending     = "🤝 Lending"
	btnBorrowing   = "📦 Borrowing"
	btnMyListings  = "📋 My listings"
	btnNewListing  = "➕ New listing"
	btnWallet      = "💰 Wallet"
	btnExport      = "📊 Export"
	btnMyBusiness  = "🏪 My business"
	btnStats       = "📈 Stats"
	btnUsers       = "👥 Users"
	btnAllRentals  = "📑 All rentals"
	btnSync        = "🔄 Sync to Google Sheets"

	btnCancel = "❌ Cancel"
	btnSkip   = "⏭ Skip"
	btnDone   = "✅ Done"
)

func guestKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMarketplace),
			tgbotapi.NewKeyboardButton(btnBusinesses),
			tgbotapi.NewKeyboardButton(btnOrgs),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCommunity),
			tgbotapi.NewKeyboardButton(btnLogin),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAbout),
			tgbotapi.NewKeyboardButton(btnContact),
		),
	)
}

func neighborKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMarketplace),
			tgbotapi.NewKeyboardButton(btnBusinesses),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnOrgs),
			tgbotapi.NewKeyboardButton(btnCommunity),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnIncoming),
			tgbotapi.NewKeyboardButton(btnMyRequests),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLending),
			tgbotapi.NewKeyboardButton(btnBorrowing),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMyListings),
			tgbotapi.NewKeyboardButton(btnNewListing),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnWallet),
			tgbotapi.NewKeyboardButton(btnExport),
			tgbotapi.NewKeyboardButton(btnProfile),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLogout),
		),
	)
}

func organizationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnMyBusiness),
			tgbotapi.NewKeyboardButton(btnCommunity),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBusinesses),
			tgbotapi.NewKeyboardButton(btnOrgs),
			tgbotapi.NewKeyboardButton(btnWallet),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnExport),
			tgbotapi.NewKeyboardButton(btnProfile),
			tgbotapi.NewKeyboardButton(btnLogout),
		),
	)
}

func adminKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnStats),
			tgbotapi.NewKeyboardButton(btnUsers),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAllRentals),
			tgbotapi.NewKeyboardButton(btnSync),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnExport),
			tgbotapi.NewKeyboardButton(btnLogout),
		),
	)
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

func photosKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnDone),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
}

// menuFor picks the main keyboard for the logged in role.
func menuFor(a *session.Auth) tgbotapi.ReplyKeyboardMarkup {
	if a == nil {
		return guestKeyboard()
	}
	switch a.User.Role {
	case models.RoleAdmin:
		return adminKeyboard()
	case models.RoleOrganization:
		return organizationKeyboard()
	default:
		return neighborKeyboard()
	}
}

// button builds inline callback data as "action:arg".
func button(label, action, arg string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(label, action+":"+arg)
}

// pager is the prev/next row for paginated lists, or nil on a single page.
func pager[T any](action string, p models.Page[T]) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if p.HasPrev() {
		row = append(row, button("⬅️ Prev", action, itoa(p.Page-1)))
	}
	if p.HasNext() {
		row = append(row, button("Next ➡️", action, itoa(p.Page+1)))
	}
	return row
}

// inline assembles non-empty rows into a markup, or nil when there are none.
func inline(rows ...[]tgbotapi.InlineKeyboardButton) *tgbotapi.InlineKeyboardMarkup {
	var kept [][]tgbotapi.InlineKeyboardButton
	for _, r := range rows {
		if len(r) > 0 {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	m := tgbotapi.NewInlineKeyboardMarkup(kept...)
	return &m
}
