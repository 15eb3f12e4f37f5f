package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/rentals"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleCallbackQuery routes inline buttons. Data is "action:arg"; the
// handler's return value is shown as the callback notice.
func (b *Bot) handleCallbackQuery(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		b.answer(cq.ID, "")
		return
	}
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID
	action, arg, _ := strings.Cut(cq.Data, ":")

	var notice string
	switch action {
	case "listing":
		b.showListing(ctx, chatID, 0, arg)
	case "mkt":
		b.showListings(ctx, chatID, messageID, pageArg(arg), b.browseSearch(ctx, chatID, StateBrowseListings))
	case "myl":
		b.showMyListings(ctx, chatID, messageID, pageArg(arg))
	case "newlisting":
		b.startListing(ctx, chatID)
	case "lstatus":
		notice = b.toggleListing(ctx, chatID, messageID, arg)
	case "ldel":
		notice = b.confirmDeleteListing(chatID, messageID, arg)
	case "ldelok":
		notice = b.deleteListing(ctx, chatID, messageID, arg)
	case "ledit":
		notice = b.startListingEdit(ctx, chatID, messageID, arg)
	case "lfield":
		notice = b.pickListingField(ctx, chatID, messageID, arg)
	case "rent":
		notice = b.startRent(ctx, chatID, arg)
	case "search":
		b.startSearch(ctx, chatID, arg)

	case "biz":
		b.showBusiness(ctx, chatID, 0, arg)
	case "bizp":
		b.showBusinesses(ctx, chatID, messageID, pageArg(arg), b.browseSearch(ctx, chatID, StateBrowseBusinesses))
	case "orgp":
		b.showOrganizations(ctx, chatID, messageID, pageArg(arg), b.browseSearch(ctx, chatID, StateBrowseOrgs))
	case "reviews":
		b.showReviews(ctx, chatID, arg)
	case "review":
		notice = b.startReview(ctx, chatID, arg)
	case "rate":
		notice = b.rate(ctx, chatID, messageID, arg)
	case "bizedit":
		notice = b.startBusinessEdit(ctx, chatID, arg)
	case "bizphoto":
		notice = b.startBusinessPhoto(ctx, chatID)

	case "feed":
		b.showFeed(ctx, chatID, messageID, pageArg(arg))
	case "post":
		notice = b.startPost(ctx, chatID)

	case string(rentals.KindAccept):
		notice = b.accept(ctx, chatID, messageID, arg)
	case string(rentals.KindReject):
		notice = b.startReject(ctx, chatID, messageID, arg)
	case string(rentals.KindPay):
		notice = b.pay(ctx, chatID, messageID, arg)
	case string(rentals.KindPaid):
		notice = "This request is already paid"
	case string(rentals.KindHandover), string(rentals.KindReceipt), string(rentals.KindComplete):
		notice = b.transition(ctx, chatID, messageID, rentals.Kind(action), arg)

	case "withdraw":
		notice = b.startWithdraw(ctx, chatID)
	case "tx":
		b.showTransactions(ctx, chatID, messageID, pageArg(arg))
	case "bank":
		notice = b.pickBank(ctx, chatID, messageID, arg)
	case "wconfirm":
		notice = b.confirmWithdraw(ctx, chatID, messageID)

	case "avatar":
		notice = b.startAvatar(ctx, chatID)
	case "users":
		b.showUsers(ctx, chatID, messageID, pageArg(arg))
	case "arentals":
		b.showAllRentals(ctx, chatID, messageID, pageArg(arg))

	case "cancel":
		b.states.ClearUserState(ctx, chatID)
		b.edit(chatID, messageID, "Cancelled.", nil)
		b.send(chatID, "What next?", menuFor(b.auth(ctx, chatID)))

	default:
		b.log.Debug().Str("data", cq.Data).Int64("chat_id", chatID).Msg("unknown callback")
	}

	b.answer(cq.ID, notice)
}

func pageArg(arg string) int {
	page, err := strconv.Atoi(arg)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// browseSearch is the search term kept while paging through a directory.
func (b *Bot) browseSearch(ctx context.Context, chatID int64, step string) string {
	state := b.states.GetUserState(ctx, chatID)
	if state == nil || state.CurrentStep != step {
		return ""
	}
	return state.Get(keySearch)
}

func (b *Bot) startSearch(ctx context.Context, chatID int64, what string) {
	switch what {
	case "biz":
		b.states.StartForm(ctx, chatID, StateSearchBusinesses, nil)
		b.send(chatID, "🔍 Type a business name or category:", cancelKeyboard())
		return
	case "org":
		b.states.StartForm(ctx, chatID, StateSearchOrgs, nil)
		b.send(chatID, "🔍 Type an organization name:", cancelKeyboard())
		return
	}
	b.states.StartForm(ctx, chatID, StateSearchListings, nil)
	b.send(chatID, "🔍 What are you looking for?", cancelKeyboard())
}
