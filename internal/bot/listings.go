package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/directory"
	"github.com/areahoodnigeria/client-app-sub001/internal/domain"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/rentals"
	"github.com/areahoodnigeria/client-app-sub001/internal/wallet"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showListings(ctx context.Context, chatID int64, messageID, page int, search string) {
	search = strings.TrimSpace(search)
	b.states.StartForm(ctx, chatID, StateBrowseListings, map[string]string{keySearch: search})

	q := directory.Query{Page: page, Limit: b.pageSize(), Search: search}
	view := directory.Load(ctx, q, directory.New(b.session(chatID)).Listings)

	searchRow := []tgbotapi.InlineKeyboardButton{button("🔍 Search", "search", "listings")}
	switch view.State() {
	case directory.ViewError:
		b.fail(chatID, "listings", view.Err)
		return
	case directory.ViewEmpty:
		text := "🛒 Nothing is listed yet. Check back soon!"
		if search != "" {
			text = fmt.Sprintf("🛒 Nothing matches \"%s\".", search)
		}
		b.edit(chatID, messageID, text, inline(searchRow))
		return
	}

	p := view.Page
	var sb strings.Builder
	sb.WriteString("🛒 Marketplace")
	if search != "" {
		fmt.Fprintf(&sb, " · \"%s\"", search)
	}
	sb.WriteString("\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, l := range p.Items {
		fmt.Fprintf(&sb, "\n%d. %s · %s/day", (p.Page-1)*q.Limit+i+1, l.Title, naira(l.PricePerDay))
		if l.Category != "" {
			fmt.Fprintf(&sb, " · %s", l.Category)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(truncate(l.Title, 40), "listing", l.ID)))
	}
	sb.WriteString(pageFooter(p.Page, p.TotalPages))

	rows = append(rows, pager("mkt", p), searchRow)
	b.edit(chatID, messageID, sb.String(), inline(rows...))
}

// listingCard renders a listing with owner or renter controls.
func listingCard(l *models.Listing, owner bool) (string, *tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📦 %s\n", l.Title)
	if l.Category != "" {
		fmt.Fprintf(&sb, "🏷 %s\n", l.Category)
	}
	fmt.Fprintf(&sb, "💵 %s per day", naira(l.PricePerDay))
	if l.PricePerWeek > 0 {
		fmt.Fprintf(&sb, " · %s per week", naira(l.PricePerWeek))
	}
	sb.WriteString("\n")
	if l.Deposit > 0 {
		fmt.Fprintf(&sb, "🔒 Deposit %s\n", naira(l.Deposit))
	}
	if l.Condition != "" {
		fmt.Fprintf(&sb, "Condition: %s\n", l.Condition)
	}
	if l.Owner.Label() != "" {
		fmt.Fprintf(&sb, "👤 %s\n", l.Owner.Label())
	}
	if l.Status == models.ListingInactive {
		sb.WriteString("⏸ Not available right now\n")
	}
	if l.Description != "" {
		sb.WriteString("\n" + truncate(l.Description, 800))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if owner {
		toggle := "⏸ Pause"
		if l.Status == models.ListingInactive {
			toggle = "▶️ Make available"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			button("✏️ Edit", "ledit", l.ID),
			button(toggle, "lstatus", l.ID),
			button("🗑 Delete", "ldel", l.ID),
		))
	} else if l.Status != models.ListingInactive {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("📅 Request to rent", "rent", l.ID)))
	}
	if len(l.Images) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(fmt.Sprintf("🖼 Photos (%d)", len(l.Images)), l.Images[0]),
		))
	}
	return sb.String(), inline(rows...)
}

func (b *Bot) isOwner(ctx context.Context, chatID int64, owner models.Ref) bool {
	a := b.auth(ctx, chatID)
	return a != nil && owner.ID != "" && a.User.ID == owner.ID
}

func (b *Bot) showListing(ctx context.Context, chatID int64, messageID int, id string) {
	l, err := directory.New(b.session(chatID)).Listing(ctx, id)
	if err != nil {
		b.fail(chatID, "listing", err)
		return
	}
	text, markup := listingCard(l, b.isOwner(ctx, chatID, l.Owner))
	b.edit(chatID, messageID, text, markup)
}

func (b *Bot) toggleListing(ctx context.Context, chatID int64, messageID int, id string) string {
	c := directory.New(b.session(chatID))
	l, err := c.Listing(ctx, id)
	if err != nil {
		b.fail(chatID, "listing", err)
		return ""
	}
	next := models.ListingInactive
	if l.Status == models.ListingInactive {
		next = models.ListingActive
	}
	if err := c.SetListingStatus(ctx, id, next); err != nil {
		b.fail(chatID, "listing status", err)
		return ""
	}
	l.Status = next
	text, markup := listingCard(l, true)
	b.edit(chatID, messageID, text, markup)
	if next == models.ListingActive {
		return "Listing is available again"
	}
	return "Listing paused"
}

func (b *Bot) confirmDeleteListing(chatID int64, messageID int, id string) string {
	b.edit(chatID, messageID, "🗑 Delete this listing for good?", inline(tgbotapi.NewInlineKeyboardRow(
		button("Yes, delete", "ldelok", id),
		button("Keep it", "listing", id),
	)))
	return ""
}

func (b *Bot) deleteListing(ctx context.Context, chatID int64, messageID int, id string) string {
	if err := directory.New(b.session(chatID)).DeleteListing(ctx, id); err != nil {
		b.fail(chatID, "delete listing", err)
		return ""
	}
	b.edit(chatID, messageID, "🗑 Listing deleted.", nil)
	return "Deleted"
}

// Listing edit form: pick a field, then send its new value.

var listingFields = []struct {
	key, label string
}{
	{"title", "Title"},
	{"description", "Description"},
	{"price", "Price per day"},
	{"deposit", "Deposit"},
}

func (b *Bot) startListingEdit(ctx context.Context, chatID int64, messageID int, id string) string {
	if b.requireAuth(ctx, chatID) == nil {
		return ""
	}
	b.states.StartForm(ctx, chatID, StateListingEdit, map[string]string{keyListingID: id})
	var row []tgbotapi.InlineKeyboardButton
	for _, f := range listingFields {
		row = append(row, button(f.label, "lfield", f.key))
	}
	b.edit(chatID, messageID, "✏️ What do you want to change?", inline(
		row[:2], row[2:],
		tgbotapi.NewInlineKeyboardRow(button("Keep it", "cancel", "")),
	))
	return ""
}

func (b *Bot) pickListingField(ctx context.Context, chatID int64, messageID int, field string) string {
	state := b.states.GetUserState(ctx, chatID)
	if state == nil || state.CurrentStep != StateListingEdit || state.Get(keyListingID) == "" {
		return "This edit has expired"
	}
	label := ""
	for _, f := range listingFields {
		if f.key == field {
			label = f.label
		}
	}
	if label == "" {
		return ""
	}
	b.states.SetStep(ctx, chatID, StateListingEdit, map[string]string{keyField: field})
	b.edit(chatID, messageID, "✏️ Editing "+strings.ToLower(label)+".", nil)
	b.send(chatID, fmt.Sprintf("Send the new %s:", strings.ToLower(label)), cancelKeyboard())
	return ""
}

func listingInput(l *models.Listing) models.ListingInput {
	return models.ListingInput{
		Title:        l.Title,
		Description:  l.Description,
		Category:     l.Category,
		PricePerDay:  l.PricePerDay,
		PricePerWeek: l.PricePerWeek,
		Deposit:      l.Deposit,
		Condition:    l.Condition,
	}
}

func (b *Bot) handleListingEdit(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	field := state.Get(keyField)
	if field == "" {
		b.send(chatID, "Pick a field above, or tap Cancel.", cancelKeyboard())
		return
	}
	if text == "" {
		b.send(chatID, "The value cannot be empty:", cancelKeyboard())
		return
	}

	c := directory.New(b.session(chatID))
	l, err := c.Listing(ctx, state.Get(keyListingID))
	if err != nil {
		b.states.ClearUserState(ctx, chatID)
		b.fail(chatID, "listing", err)
		return
	}
	in := listingInput(l)
	switch field {
	case "title":
		in.Title = text
	case "description":
		in.Description = text
	case "price":
		v, ok := wallet.ParseAmount(text)
		if !ok || v <= 0 {
			b.send(chatID, "Enter a price above zero, for example 2500:", cancelKeyboard())
			return
		}
		in.PricePerDay = v
	case "deposit":
		v, ok := wallet.ParseAmount(text)
		if text == "0" {
			v, ok = 0, true
		}
		if !ok {
			b.send(chatID, "Enter an amount, for example 10000, or 0 for no deposit:", cancelKeyboard())
			return
		}
		in.Deposit = v
	}

	updated, err := c.UpdateListing(ctx, l.ID, in)
	b.states.ClearUserState(ctx, chatID)
	if err != nil {
		b.fail(chatID, "update listing", err)
		return
	}
	if updated.ID == "" {
		updated = l
	}
	b.send(chatID, "✅ Listing updated.", menuFor(b.auth(ctx, chatID)))
	body, markup := listingCard(updated, true)
	b.card(chatID, body, markup)
}

func (b *Bot) showMyListings(ctx context.Context, chatID int64, messageID, page int) {
	if b.requireAuth(ctx, chatID) == nil {
		return
	}
	q := directory.Query{Page: page, Limit: b.pageSize()}
	view := directory.Load(ctx, q, directory.New(b.session(chatID)).MyListings)

	newRow := []tgbotapi.InlineKeyboardButton{button("➕ New listing", "newlisting", "")}
	switch view.State() {
	case directory.ViewError:
		b.fail(chatID, "my listings", view.Err)
		return
	case directory.ViewEmpty:
		b.edit(chatID, messageID, "📋 You have not listed anything yet.", inline(newRow))
		return
	}

	p := view.Page
	var sb strings.Builder
	sb.WriteString("📋 My listings\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range p.Items {
		badge := "🟢"
		if l.Status == models.ListingInactive {
			badge = "⏸"
		}
		fmt.Fprintf(&sb, "\n%s %s · %s/day", badge, l.Title, naira(l.PricePerDay))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(truncate(l.Title, 40), "listing", l.ID)))
	}
	sb.WriteString(pageFooter(p.Page, p.TotalPages))
	rows = append(rows, pager("myl", p), newRow)
	b.edit(chatID, messageID, sb.String(), inline(rows...))
}

// Rental request form.

func (b *Bot) startRent(ctx context.Context, chatID int64, listingID string) string {
	if b.requireAuth(ctx, chatID) == nil {
		return ""
	}
	l, err := directory.New(b.session(chatID)).Listing(ctx, listingID)
	if err != nil {
		b.fail(chatID, "listing", err)
		return ""
	}
	if b.isOwner(ctx, chatID, l.Owner) {
		return "This is your own listing"
	}
	b.states.StartForm(ctx, chatID, StateRentStart, map[string]string{
		keyListingID:   l.ID,
		keyListingName: l.Title,
	})
	b.send(chatID, fmt.Sprintf("📅 Renting \"%s\" at %s/day.\nEnter the start date (YYYY-MM-DD or DD.MM.YYYY):", l.Title, naira(l.PricePerDay)), cancelKeyboard())
	return ""
}

func (b *Bot) handleRentStart(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	start, ok := rentals.ParseDate(text)
	if !ok {
		b.send(chatID, "I could not read that date. Use YYYY-MM-DD or DD.MM.YYYY:", cancelKeyboard())
		return
	}
	b.states.SetStep(ctx, chatID, StateRentEnd, map[string]string{keyStartDate: start.Format(models.DateLayout)})
	b.send(chatID, "Enter the end date:", cancelKeyboard())
}

func (b *Bot) handleRentEnd(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	form := rentals.RequestForm{StartDate: state.Get(keyStartDate), EndDate: text}
	_, end, err := form.Validate()
	if err != nil {
		b.send(chatID, "⚠️ "+api.UserMessage(err)+"\nEnter the end date again:", cancelKeyboard())
		return
	}
	b.states.SetStep(ctx, chatID, StateRentMessage, map[string]string{keyEndDate: end.Format(models.DateLayout)})
	b.send(chatID, "Add a note for the owner, or tap Skip:", skipKeyboard())
}

func (b *Bot) handleRentMessage(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	if text == btnSkip {
		text = ""
	}
	form := rentals.RequestForm{
		StartDate: state.Get(keyStartDate),
		EndDate:   state.Get(keyEndDate),
		Message:   text,
	}
	req, err := rentals.New(b.session(chatID)).CreateRentalRequest(ctx, state.Get(keyListingID), form)
	if err != nil {
		var verr *api.ValidationError
		if errors.As(err, &verr) && len(verr.Fields) > 0 && verr.Fields[0].Field == "startDate" {
			b.states.SetStep(ctx, chatID, StateRentStart, nil)
			b.send(chatID, "⚠️ "+api.UserMessage(err)+"\nEnter the start date again:", cancelKeyboard())
			return
		}
		b.states.ClearUserState(ctx, chatID)
		b.fail(chatID, "rental request", err)
		return
	}

	b.states.ClearUserState(ctx, chatID)
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Request sent for \"%s\"\n", state.Get(keyListingName))
	fmt.Fprintf(&sb, "📅 %s to %s\n", form.StartDate, form.EndDate)
	if req.TotalPrice > 0 {
		fmt.Fprintf(&sb, "💵 Total %s\n", naira(req.TotalPrice))
	}
	sb.WriteString("\nThe owner will review it. Follow it under " + btnMyRequests + ".")
	b.send(chatID, sb.String(), menuFor(b.auth(ctx, chatID)))
}

// New listing form.

func (b *Bot) startListing(ctx context.Context, chatID int64) {
	if b.requireAuth(ctx, chatID) == nil {
		return
	}
	b.states.StartForm(ctx, chatID, StateListingTitle, nil)
	b.send(chatID, "➕ What are you lending? Send a short title:", cancelKeyboard())
}

func (b *Bot) handleListingField(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	skip := text == btnSkip
	switch state.CurrentStep {
	case StateListingTitle:
		if text == "" {
			b.send(chatID, "The title cannot be empty:", cancelKeyboard())
			return
		}
		b.states.SetStep(ctx, chatID, StateListingDescription, map[string]string{keyTitle: text})
		b.send(chatID, "Describe the item (condition, what's included):", cancelKeyboard())

	case StateListingDescription:
		if text == "" {
			b.send(chatID, "The description cannot be empty:", cancelKeyboard())
			return
		}
		b.states.SetStep(ctx, chatID, StateListingCategory, map[string]string{keyDescription: text})
		b.send(chatID, "Category (for example Tools or Electronics), or tap Skip:", skipKeyboard())

	case StateListingCategory:
		if skip {
			text = ""
		}
		b.states.SetStep(ctx, chatID, StateListingPrice, map[string]string{keyCategory: text})
		b.send(chatID, "Price per day in naira:", cancelKeyboard())

	case StateListingPrice:
		price, ok := wallet.ParseAmount(text)
		if !ok || price <= 0 {
			b.send(chatID, "Enter a price above zero, for example 2500:", cancelKeyboard())
			return
		}
		b.states.SetStep(ctx, chatID, StateListingDeposit, map[string]string{keyPrice: formatFloat(price)})
		b.send(chatID, "Refundable deposit in naira, or tap Skip:", skipKeyboard())

	case StateListingDeposit:
		deposit := 0.0
		if !skip {
			v, ok := wallet.ParseAmount(text)
			if !ok || v < 0 {
				b.send(chatID, "Enter an amount, or tap Skip:", skipKeyboard())
				return
			}
			deposit = v
		}
		b.states.SetStep(ctx, chatID, StateListingPhotos, map[string]string{keyDeposit: formatFloat(deposit)})
		b.send(chatID, fmt.Sprintf("Send up to %d photos, then tap Done.", directory.MaxImages), photosKeyboard())
	}
}

func (b *Bot) handleListingPhoto(ctx context.Context, msg *tgbotapi.Message, state *domain.UserState) {
	chatID := msg.Chat.ID
	if strings.TrimSpace(msg.Text) == btnDone {
		b.finishListing(ctx, chatID, state)
		return
	}
	if len(msg.Photo) == 0 {
		b.send(chatID, "Send a photo, or tap Done.", photosKeyboard())
		return
	}

	photos := splitList(state.Get(keyPhotos))
	if len(photos) >= directory.MaxImages {
		b.send(chatID, fmt.Sprintf("You already added %d photos. Tap Done to publish.", directory.MaxImages), photosKeyboard())
		return
	}
	photos = append(photos, msg.Photo[len(msg.Photo)-1].FileID)
	b.states.SetStep(ctx, chatID, StateListingPhotos, map[string]string{keyPhotos: strings.Join(photos, ",")})
	b.send(chatID, fmt.Sprintf("📷 Photo %d of %d saved.", len(photos), directory.MaxImages), photosKeyboard())
}

func (b *Bot) finishListing(ctx context.Context, chatID int64, state *domain.UserState) {
	var files []api.File
	for _, id := range splitList(state.Get(keyPhotos)) {
		f, err := b.download(ctx, id)
		if err != nil {
			b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to download listing photo")
			b.reply(chatID, "⚠️ Could not read one of the photos. Send it again, or tap Done to publish without it.")
			b.states.SetStep(ctx, chatID, StateListingPhotos, map[string]string{keyPhotos: ""})
			return
		}
		files = append(files, f)
	}

	in := models.ListingInput{
		Title:       state.Get(keyTitle),
		Description: state.Get(keyDescription),
		Category:    state.Get(keyCategory),
		PricePerDay: state.GetFloat(keyPrice),
		Deposit:     state.GetFloat(keyDeposit),
	}
	l, err := directory.New(b.session(chatID)).CreateListing(ctx, in, files)
	b.states.ClearUserState(ctx, chatID)
	if err != nil {
		b.fail(chatID, "create listing", err)
		return
	}

	b.send(chatID, fmt.Sprintf("✅ \"%s\" is listed at %s/day.", l.Title, naira(l.PricePerDay)), menuFor(b.auth(ctx, chatID)))
	text, markup := listingCard(l, true)
	b.card(chatID, text, markup)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
