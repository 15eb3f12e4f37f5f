package bot

import (
	"context"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/domain"
	"github.com/areahoodnigeria/client-app-sub001/internal/rentals"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if msg.IsCommand() {
		b.metrics.CommandsProcessed.Inc()
		timer := prometheus.NewTimer(b.metrics.CommandDuration.WithLabelValues(msg.Command()))
		defer timer.ObserveDuration()
	}

	state := b.states.GetUserState(ctx, chatID)

	switch {
	case text == "/start" || text == "/home" || text == btnHome:
		b.states.ClearUserState(ctx, chatID)
		b.showHome(ctx, chatID)

	case text == "/cancel" || text == btnCancel:
		b.states.ClearUserState(ctx, chatID)
		b.send(chatID, "Cancelled.", menuFor(b.auth(ctx, chatID)))

	case text == "/about" || text == btnAbout:
		b.showAbout(chatID)

	case text == "/contact" || text == btnContact:
		b.showContact(chatID)

	case text == "/login" || text == btnLogin:
		b.startLogin(ctx, chatID)

	case text == "/logout" || text == btnLogout:
		b.logout(ctx, chatID)

	case text == "/profile" || text == btnProfile:
		b.states.ClearUserState(ctx, chatID)
		b.showProfile(ctx, chatID)

	case text == "/listings" || text == btnMarketplace:
		b.states.ClearUserState(ctx, chatID)
		b.showListings(ctx, chatID, 0, 1, "")

	case text == "/businesses" || text == btnBusinesses:
		b.states.ClearUserState(ctx, chatID)
		b.showBusinesses(ctx, chatID, 0, 1, "")

	case text == "/organizations" || text == btnOrgs:
		b.states.ClearUserState(ctx, chatID)
		b.showOrganizations(ctx, chatID, 0, 1, "")

	case text == "/feed" || text == btnCommunity:
		b.states.ClearUserState(ctx, chatID)
		b.showFeed(ctx, chatID, 0, 1)

	case text == "/requests" || text == btnIncoming:
		b.states.ClearUserState(ctx, chatID)
		b.showIncoming(ctx, chatID)

	case text == "/myrequests" || text == btnMyRequests:
		b.states.ClearUserState(ctx, chatID)
		b.showMyRequests(ctx, chatID)

	case text == "/lending" || text == btnLending:
		b.states.ClearUserState(ctx, chatID)
		b.showRentals(ctx, chatID, rentals.Lender)

	case text == "/borrowing" || text == btnBorrowing:
		b.states.ClearUserState(ctx, chatID)
		b.showRentals(ctx, chatID, rentals.Borrower)

	case text == "/mylistings" || text == btnMyListings:
		b.states.ClearUserState(ctx, chatID)
		b.showMyListings(ctx, chatID, 0, 1)

	case text == "/newlisting" || text == btnNewListing:
		b.startListing(ctx, chatID)

	case text == "/wallet" || text == btnWallet:
		b.states.ClearUserState(ctx, chatID)
		b.showWallet(ctx, chatID)

	case text == "/export" || text == btnExport:
		b.states.ClearUserState(ctx, chatID)
		b.export(ctx, chatID)

	case text == "/business" || text == btnMyBusiness:
		b.states.ClearUserState(ctx, chatID)
		b.showMyBusiness(ctx, chatID)

	case text == "/stats" || text == btnStats:
		b.showStats(ctx, chatID)

	case text == "/users" || text == btnUsers:
		b.showUsers(ctx, chatID, 0, 1)

	case text == "/rentals" || text == btnAllRentals:
		b.showAllRentals(ctx, chatID, 0, 1)

	case text == "/sync" || text == btnSync:
		b.syncSheets(ctx, chatID)

	case state != nil:
		b.handleInput(ctx, msg, state)

	default:
		b.send(chatID, "Sorry, I did not get that. Use the menu below.", menuFor(b.auth(ctx, chatID)))
	}
}

// handleInput feeds free text and photos to the form in progress.
func (b *Bot) handleInput(ctx context.Context, msg *tgbotapi.Message, state *domain.UserState) {
	text := strings.TrimSpace(msg.Text)

	switch state.CurrentStep {
	case StateLoginEmail:
		b.handleLoginEmail(ctx, msg.Chat.ID, text)
	case StateLoginPassword:
		b.handleLoginPassword(ctx, msg, state)
	case StateAvatar:
		b.handleAvatar(ctx, msg)

	case StateSearchListings:
		b.send(msg.Chat.ID, "🔍 Searching…", menuFor(b.auth(ctx, msg.Chat.ID)))
		b.showListings(ctx, msg.Chat.ID, 0, 1, text)
	case StateSearchBusinesses:
		b.send(msg.Chat.ID, "🔍 Searching…", menuFor(b.auth(ctx, msg.Chat.ID)))
		b.showBusinesses(ctx, msg.Chat.ID, 0, 1, text)
	case StateSearchOrgs:
		b.send(msg.Chat.ID, "🔍 Searching…", menuFor(b.auth(ctx, msg.Chat.ID)))
		b.showOrganizations(ctx, msg.Chat.ID, 0, 1, text)

	case StateRentStart:
		b.handleRentStart(ctx, msg.Chat.ID, text, state)
	case StateRentEnd:
		b.handleRentEnd(ctx, msg.Chat.ID, text, state)
	case StateRentMessage:
		b.handleRentMessage(ctx, msg.Chat.ID, text, state)
	case StateRejectReason:
		b.handleRejectReason(ctx, msg.Chat.ID, text, state)

	case StateListingTitle, StateListingDescription, StateListingCategory, StateListingPrice, StateListingDeposit:
		b.handleListingField(ctx, msg.Chat.ID, text, state)
	case StateListingPhotos:
		b.handleListingPhoto(ctx, msg, state)
	case StateListingEdit:
		b.handleListingEdit(ctx, msg.Chat.ID, text, state)

	case StateNewPost:
		b.handleNewPost(ctx, msg)

	case StateReviewComment:
		b.handleReviewComment(ctx, msg.Chat.ID, text, state)

	case StateBusinessEdit:
		b.handleBusinessEdit(ctx, msg.Chat.ID, text, state)
	case StateBusinessPhoto:
		b.handleBusinessPhoto(ctx, msg)

	case StateWithdrawAmount:
		b.handleWithdrawAmount(ctx, msg.Chat.ID, text, state)
	case StateWithdrawBank:
		b.handleWithdrawBank(ctx, msg.Chat.ID, text, state)
	case StateWithdrawAccount:
		b.handleWithdrawAccount(ctx, msg.Chat.ID, text, state)

	case StateBrowseListings, StateBrowseBusinesses, StateBrowseOrgs:
		b.send(msg.Chat.ID, "Sorry, I did not get that. Use the menu below.", menuFor(b.auth(ctx, msg.Chat.ID)))

	default:
		b.send(msg.Chat.ID, "Use the buttons above, or tap Cancel.", cancelKeyboard())
	}
}
