package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/domain"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) promptLogin(chatID int64, text string) {
	b.send(chatID, "🔑 "+text+"\nTap \""+btnLogin+"\" or send /login.", guestKeyboard())
}

// SessionExpired is the api.OnUnauthorized hook. The session has already
// been cleared; this drops the chat's caches and asks for a new login.
func (b *Bot) SessionExpired(ctx context.Context, cred api.Credentials) {
	s, ok := cred.(*session.Session)
	if !ok {
		return
	}
	chatID := s.ChatID()
	b.states.ClearUserState(ctx, chatID)
	b.forget(chatID)
	b.log.Info().Int64("chat_id", chatID).Msg("session expired, login requested")
	b.promptLogin(chatID, "Your session has expired. Please log in again.")
}

func (b *Bot) startLogin(ctx context.Context, chatID int64) {
	if a := b.auth(ctx, chatID); a != nil {
		b.send(chatID, fmt.Sprintf("You are already logged in as %s.", displayName(a.User.Name, a.User.Email)), menuFor(a))
		return
	}
	b.states.StartForm(ctx, chatID, StateLoginEmail, nil)
	b.send(chatID, "Enter the email address of your Area Hood account:", cancelKeyboard())
}

func (b *Bot) handleLoginEmail(ctx context.Context, chatID int64, text string) {
	email := strings.TrimSpace(text)
	if !strings.Contains(email, "@") {
		b.send(chatID, "That does not look like an email address. Try again:", cancelKeyboard())
		return
	}
	b.states.SetStep(ctx, chatID, StateLoginPassword, map[string]string{keyEmail: email})
	b.send(chatID, "Now enter your password. I will delete the message right after reading it.", cancelKeyboard())
}

func (b *Bot) handleLoginPassword(ctx context.Context, msg *tgbotapi.Message, state *domain.UserState) {
	chatID := msg.Chat.ID
	if _, err := b.tg.Request(tgbotapi.NewDeleteMessage(chatID, msg.MessageID)); err != nil {
		b.log.Debug().Err(err).Int64("chat_id", chatID).Msg("failed to delete password message")
	}

	res, err := b.api.Login(ctx, state.Get(keyEmail), msg.Text)
	if err != nil {
		b.metrics.LoginsTotal.WithLabelValues("error").Inc()
		b.states.StartForm(ctx, chatID, StateLoginEmail, nil)
		b.log.Info().Err(err).Int64("chat_id", chatID).Msg("login failed")
		b.send(chatID, "⚠️ "+api.UserMessage(err)+"\nEnter your email to try again:", cancelKeyboard())
		return
	}

	a, err := b.sessions.For(chatID).Start(ctx, res)
	if err != nil {
		b.metrics.LoginsTotal.WithLabelValues("error").Inc()
		b.states.ClearUserState(ctx, chatID)
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to start session")
		b.send(chatID, "⚠️ Could not start your session. Please try again.", guestKeyboard())
		return
	}

	b.metrics.LoginsTotal.WithLabelValues("ok").Inc()
	b.states.ClearUserState(ctx, chatID)
	b.forget(chatID)
	b.log.Info().Int64("chat_id", chatID).Str("user_id", a.User.ID).Str("role", string(a.User.Role)).Msg("user logged in")
	b.send(chatID, fmt.Sprintf("✅ Welcome, %s!", displayName(a.User.Name, a.User.Email)), menuFor(a))
}

func (b *Bot) logout(ctx context.Context, chatID int64) {
	s := b.sessions.For(chatID)
	if a := b.auth(ctx, chatID); a != nil {
		if err := b.session(chatID).Logout(ctx); err != nil {
			b.log.Debug().Err(err).Int64("chat_id", chatID).Msg("server logout failed")
		}
	}
	if err := s.Clear(ctx); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to clear session")
	}
	b.states.ClearUserState(ctx, chatID)
	b.forget(chatID)
	b.send(chatID, "👋 You are logged out.", guestKeyboard())
}

func roleLabel(r models.Role) string {
	switch r {
	case models.RoleAdmin:
		return "Administrator"
	case models.RoleOrganization:
		return "Organization"
	default:
		return "Neighbor"
	}
}

func (b *Bot) showProfile(ctx context.Context, chatID int64) {
	a := b.requireAuth(ctx, chatID)
	if a == nil {
		return
	}
	s := b.session(chatID)
	u, err := s.Me(ctx)
	if err != nil {
		b.fail(chatID, "profile", err)
		return
	}
	if err := b.sessions.For(chatID).Refresh(ctx, *u); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to refresh stored profile")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 %s\n", displayName(u.Name, u.Email))
	fmt.Fprintf(&sb, "Role: %s\n", roleLabel(u.Role))
	if u.Email != "" {
		fmt.Fprintf(&sb, "Email: %s\n", u.Email)
	}
	if u.Phone != "" {
		fmt.Fprintf(&sb, "Phone: %s\n", u.Phone)
	}
	if u.Role != models.RoleAdmin {
		fmt.Fprintf(&sb, "Wallet: %s (in escrow: %s)\n", naira(u.WalletBalance), naira(u.PendingBalance))
	}

	label := "🖼 Change profile photo"
	if u.Role == models.RoleOrganization {
		label = "🖼 Change logo"
	}
	rows := [][]tgbotapi.InlineKeyboardButton{{button(label, "avatar", "")}}
	if u.Avatar != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("👀 Current photo", u.Avatar)))
	}
	b.card(chatID, sb.String(), inline(rows...))
}

func (b *Bot) startAvatar(ctx context.Context, chatID int64) string {
	if b.requireAuth(ctx, chatID) == nil {
		return ""
	}
	b.states.StartForm(ctx, chatID, StateAvatar, nil)
	b.send(chatID, "Send the new photo.", cancelKeyboard())
	return ""
}

func (b *Bot) handleAvatar(ctx context.Context, msg *tgbotapi.Message) {
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
	u, err := b.session(chatID).UploadAvatar(ctx, file)
	if err != nil {
		b.fail(chatID, "avatar", err)
		return
	}
	if err := b.sessions.For(chatID).Refresh(ctx, *u); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to refresh stored profile")
	}
	b.states.ClearUserState(ctx, chatID)
	b.send(chatID, "✅ Photo updated.", menuFor(b.auth(ctx, chatID)))
}
