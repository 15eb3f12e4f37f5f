package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/areahoodnigeria/client-app-sub001/internal/wallet"
)

func (b *Bot) showHome(ctx context.Context, chatID int64) {
	app := b.config.App
	a := b.auth(ctx, chatID)

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏘 %s\n", app.Name)
	if app.Tagline != "" {
		sb.WriteString(app.Tagline + "\n")
	}
	sb.WriteString("\n")
	if a != nil {
		fmt.Fprintf(&sb, "Welcome back, %s!\n", displayName(a.User.Name, a.User.Email))
		sb.WriteString("Pick something from the menu below.")
	} else {
		sb.WriteString("Rent what you need from people nearby, discover local businesses and join your community feed.\n\n")
		sb.WriteString("Browse freely, or log in to rent, lend and get paid.")
	}
	b.send(chatID, sb.String(), menuFor(a))
}

func (b *Bot) showAbout(chatID int64) {
	app := b.config.App
	text := app.About
	if text == "" {
		text = app.Name + " connects neighbors so they can share, rent and support local businesses."
	}
	if app.Version != "" {
		text += "\n\nVersion " + app.Version
	}
	b.reply(chatID, "ℹ️ About "+app.Name+"\n\n"+text)
}

func (b *Bot) showContact(chatID int64) {
	app := b.config.App
	var sb strings.Builder
	sb.WriteString("📞 Contact us\n")
	if app.ContactEmail != "" {
		sb.WriteString("\n✉️ " + app.ContactEmail)
	}
	if app.ContactPhone != "" {
		sb.WriteString("\n☎️ " + app.ContactPhone)
	}
	if app.Address != "" {
		sb.WriteString("\n📍 " + app.Address)
	}
	if app.ContactEmail == "" && app.ContactPhone == "" && app.Address == "" {
		sb.WriteString("\nReach out through the Area Hood app.")
	}
	b.reply(chatID, sb.String())
}

func itoa(n int) string { return strconv.Itoa(n) }

func naira(v float64) string { return wallet.FormatNaira(v) }

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func displayName(name, fallback string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	if fallback != "" {
		return fallback
	}
	return "neighbor"
}

// pageFooter renders "Page 2 of 5" for multi-page lists.
func pageFooter(page, total int) string {
	if total <= 1 {
		return ""
	}
	return fmt.Sprintf("\nPage %d of %d", page, total)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
