package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/directory"
	"github.com/areahoodnigeria/client-app-sub001/internal/domain"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showBusinesses(ctx context.Context, chatID int64, messageID, page int, search string) {
	search = strings.TrimSpace(search)
	b.states.StartForm(ctx, chatID, StateBrowseBusinesses, map[string]string{keySearch: search})

	q := directory.Query{Page: page, Limit: b.pageSize(), Search: search}
	view := directory.Load(ctx, q, directory.New(b.session(chatID)).BusinessListings)

	searchRow := []tgbotapi.InlineKeyboardButton{button("🔍 Search", "search", "biz")}
	switch view.State() {
	case directory.ViewError:
		b.fail(chatID, "businesses", view.Err)
		return
	case directory.ViewEmpty:
		text := "🏢 No businesses yet."
		if search != "" {
			text = fmt.Sprintf("🏢 No business matches \"%s\".", search)
		}
		b.edit(chatID, messageID, text, inline(searchRow))
		return
	}

	p := view.Page
	var sb strings.Builder
	sb.WriteString("🏢 Local businesses")
	if search != "" {
		fmt.Fprintf(&sb, " · \"%s\"", search)
	}
	sb.WriteString("\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range p.Items {
		fmt.Fprintf(&sb, "\n%s %s", models.Stars(l.AverageRating), l.Name)
		if l.Category != "" {
			fmt.Fprintf(&sb, " · %s", l.Category)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(truncate(l.Name, 40), "biz", l.ID)))
	}
	sb.WriteString(pageFooter(p.Page, p.TotalPages))
	rows = append(rows, pager("bizp", p), searchRow)
	b.edit(chatID, messageID, sb.String(), inline(rows...))
}

func (b *Bot) showOrganizations(ctx context.Context, chatID int64, messageID, page int, search string) {
	search = strings.TrimSpace(search)
	b.states.StartForm(ctx, chatID, StateBrowseOrgs, map[string]string{keySearch: search})

	q := directory.Query{Page: page, Limit: b.pageSize(), Search: search}
	view := directory.Load(ctx, q, directory.New(b.session(chatID)).Organizations)

	searchRow := []tgbotapi.InlineKeyboardButton{button("🔍 Search", "search", "org")}
	switch view.State() {
	case directory.ViewError:
		b.fail(chatID, "organizations", view.Err)
		return
	case directory.ViewEmpty:
		text := "🏘 No organizations yet."
		if search != "" {
			text = fmt.Sprintf("🏘 No organization matches \"%s\".", search)
		}
		b.edit(chatID, messageID, text, inline(searchRow))
		return
	}

	p := view.Page
	var sb strings.Builder
	sb.WriteString("🏘 Organizations")
	if search != "" {
		fmt.Fprintf(&sb, " · \"%s\"", search)
	}
	sb.WriteString("\n")
	for _, o := range p.Items {
		fmt.Fprintf(&sb, "\n%s %s", models.Stars(o.Rating), o.Name)
		if o.Category != "" {
			fmt.Fprintf(&sb, " · %s", o.Category)
		}
		if o.Phone != "" {
			fmt.Fprintf(&sb, "\n   ☎️ %s", o.Phone)
		}
		if o.Address != "" {
			fmt.Fprintf(&sb, "\n   📍 %s", truncate(o.Address, 80))
		}
	}
	sb.WriteString(pageFooter(p.Page, p.TotalPages))
	b.edit(chatID, messageID, sb.String(), inline(pager("orgp", p), searchRow))
}

func businessText(l *models.BusinessListing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏪 %s\n", l.Name)
	if l.Category != "" {
		fmt.Fprintf(&sb, "🏷 %s\n", l.Category)
	}
	fmt.Fprintf(&sb, "%s %.1f (%d reviews)\n", models.Stars(l.AverageRating), l.AverageRating, l.TotalReviews)
	if l.Description != "" {
		sb.WriteString("\n" + truncate(l.Description, 800) + "\n\n")
	}
	if l.Phone != "" {
		fmt.Fprintf(&sb, "☎️ %s\n", l.Phone)
	}
	if l.Email != "" {
		fmt.Fprintf(&sb, "✉️ %s\n", l.Email)
	}
	if l.Address != "" {
		fmt.Fprintf(&sb, "📍 %s\n", l.Address)
	}
	if l.Website != "" {
		fmt.Fprintf(&sb, "🌐 %s\n", l.Website)
	}
	if len(l.OperatingHours) > 0 {
		sb.WriteString("\n🕒 Opening hours\n")
		for _, h := range l.OperatingHours {
			sb.WriteString(h + "\n")
		}
	}
	return sb.String()
}

func (b *Bot) showBusiness(ctx context.Context, chatID int64, messageID int, id string) {
	l, err := directory.New(b.session(chatID)).BusinessListing(ctx, id)
	if err != nil {
		b.fail(chatID, "business", err)
		return
	}
	row := tgbotapi.NewInlineKeyboardRow(button("⭐ Reviews", "reviews", l.ID))
	if a := b.auth(ctx, chatID); a == nil || a.User.Role == models.RoleNeighbor {
		row = append(row, button("✍️ Write a review", "review", l.ID))
	}
	b.edit(chatID, messageID, businessText(l), inline(row))
}

func (b *Bot) showReviews(ctx context.Context, chatID int64, listingID string) {
	p, err := directory.New(b.session(chatID)).Reviews(ctx, listingID, directory.Query{Page: 1, Limit: b.pageSize()})
	if err != nil {
		b.fail(chatID, "reviews", err)
		return
	}
	if len(p.Items) == 0 {
		b.reply(chatID, "⭐ No reviews yet.")
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "⭐ Reviews (%d)\n", p.Total)
	for _, r := range p.Items {
		fmt.Fprintf(&sb, "\n%s %s · %s", models.Stars(float64(r.Rating)), r.Reviewer.Label(), r.CreatedAt.Day())
		if r.Comment != "" {
			fmt.Fprintf(&sb, "\n%s", truncate(r.Comment, 300))
		}
		sb.WriteString("\n")
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) startReview(ctx context.Context, chatID int64, listingID string) string {
	a := b.requireAuth(ctx, chatID)
	if a == nil {
		return ""
	}
	if a.User.Role != models.RoleNeighbor {
		return "Only neighbors can leave reviews"
	}
	b.states.StartForm(ctx, chatID, StateReviewRating, map[string]string{keyListingID: listingID})
	row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for i := 1; i <= 5; i++ {
		row = append(row, button(strconv.Itoa(i)+"⭐", "rate", strconv.Itoa(i)))
	}
	b.card(chatID, "How would you rate this business?", inline(row))
	return ""
}

func (b *Bot) rate(ctx context.Context, chatID int64, messageID int, arg string) string {
	state := b.states.GetUserState(ctx, chatID)
	if state == nil || state.CurrentStep != StateReviewRating {
		return "This review has expired"
	}
	rating, err := strconv.Atoi(arg)
	if err != nil || rating < 1 || rating > 5 {
		return "Pick 1 to 5 stars"
	}
	b.states.SetStep(ctx, chatID, StateReviewComment, map[string]string{keyRating: arg})
	b.edit(chatID, messageID, "Your rating: "+models.Stars(float64(rating)), nil)
	b.send(chatID, "Add a comment, or tap Skip:", skipKeyboard())
	return ""
}

func (b *Bot) handleReviewComment(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	if text == btnSkip {
		text = ""
	}
	_, err := directory.New(b.session(chatID)).CreateReview(ctx, state.Get(keyListingID), state.GetInt(keyRating), text)
	b.states.ClearUserState(ctx, chatID)
	if err != nil {
		b.fail(chatID, "review", err)
		return
	}
	b.send(chatID, "✅ Thanks for your review!", menuFor(b.auth(ctx, chatID)))
}

// Organization dashboard.

var businessFields = []struct {
	key, label string
}{
	{"name", "Name"},
	{"category", "Category"},
	{"description", "Description"},
	{"phone", "Phone"},
	{"address", "Address"},
}

func fieldLabel(key string) string {
	for _, f := range businessFields {
		if f.key == key {
			return f.label
		}
	}
	return key
}

func (b *Bot) showMyBusiness(ctx context.Context, chatID int64) {
	a := b.requireAuth(ctx, chatID)
	if a == nil {
		return
	}
	if a.User.Role != models.RoleOrganization {
		b.reply(chatID, "🏪 The business dashboard is for organization accounts.")
		return
	}
	l, err := directory.New(b.session(chatID)).MyBusinessListing(ctx)
	if err != nil {
		b.fail(chatID, "my business", err)
		return
	}
	var edit []tgbotapi.InlineKeyboardButton
	for _, f := range businessFields[:3] {
		edit = append(edit, button("✏️ "+f.label, "bizedit", f.key))
	}
	var edit2 []tgbotapi.InlineKeyboardButton
	for _, f := range businessFields[3:] {
		edit2 = append(edit2, button("✏️ "+f.label, "bizedit", f.key))
	}
	edit2 = append(edit2, button("🖼 Add photo", "bizphoto", ""))
	b.card(chatID, businessText(l), inline(
		edit,
		edit2,
		tgbotapi.NewInlineKeyboardRow(button("⭐ Reviews", "reviews", l.ID)),
	))
}

func (b *Bot) startBusinessEdit(ctx context.Context, chatID int64, field string) string {
	if b.requireAuth(ctx, chatID) == nil {
		return ""
	}
	b.states.StartForm(ctx, chatID, StateBusinessEdit, map[string]string{keyField: field})
	b.send(chatID, fmt.Sprintf("Send the new %s:", strings.ToLower(fieldLabel(field))), cancelKeyboard())
	return ""
}

func businessInput(l *models.BusinessListing) models.BusinessListingInput {
	return models.BusinessListingInput{
		Name:        l.Name,
		Category:    l.Category,
		Description: l.Description,
		Phone:       l.Phone,
		Address:     l.Address,
	}
}

func (b *Bot) handleBusinessEdit(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	if text == "" {
		b.send(chatID, "The value cannot be empty:", cancelKeyboard())
		return
	}
	c := directory.New(b.session(chatID))
	l, err := c.MyBusinessListing(ctx)
	if err != nil {
		b.states.ClearUserState(ctx, chatID)
		b.fail(chatID, "my business", err)
		return
	}
	in := businessInput(l)
	switch state.Get(keyField) {
	case "name":
		in.Name = text
	case "category":
		in.Category = text
	case "description":
		in.Description = text
	case "phone":
		in.Phone = text
	case "address":
		in.Address = text
	}
	b.updateBusiness(ctx, chatID, c, l.ID, in, nil)
}

func (b *Bot) startBusinessPhoto(ctx context.Context, chatID int64) string {
	if b.requireAuth(ctx, chatID) == nil {
		return ""
	}
	b.states.StartForm(ctx, chatID, StateBusinessPhoto, nil)
	b.send(chatID, "Send a photo of your business.", cancelKeyboard())
	return ""
}

func (b *Bot) handleBusinessPhoto(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if len(msg.Photo) == 0 {
		b.send(chatID, "Please send a photo, or tap Cancel.", cancelKeyboard())
		return
	}
	file, err := b.downloadPhoto(ctx, msg.Photo)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to download photo")
		b.reply(chatID, "⚠️ Could not read that photo. Please send it again.")
		return
	}
	c := directory.New(b.session(chatID))
	l, err := c.MyBusinessListing(ctx)
	if err != nil {
		b.states.ClearUserState(ctx, chatID)
		b.fail(chatID, "my business", err)
		return
	}
	b.updateBusiness(ctx, chatID, c, l.ID, businessInput(l), []api.File{file})
}

func (b *Bot) updateBusiness(ctx context.Context, chatID int64, c *directory.Client, id string, in models.BusinessListingInput, photos []api.File) {
	updated, err := c.UpdateBusinessListing(ctx, id, in, photos)
	b.states.ClearUserState(ctx, chatID)
	if err != nil {
		b.fail(chatID, "update business", err)
		return
	}
	b.send(chatID, "✅ Business profile updated.", menuFor(b.auth(ctx, chatID)))
	b.reply(chatID, businessText(updated))
}
