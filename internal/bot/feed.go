package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/directory"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) showFeed(ctx context.Context, chatID int64, messageID, page int) {
	q := directory.Query{Page: page, Limit: b.pageSize()}
	view := directory.Load(ctx, q, directory.New(b.session(chatID)).Posts)

	postRow := []tgbotapi.InlineKeyboardButton{button("✍️ New post", "post", "")}
	switch view.State() {
	case directory.ViewError:
		b.fail(chatID, "feed", view.Err)
		return
	case directory.ViewEmpty:
		b.edit(chatID, messageID, "📰 The community feed is quiet. Be the first to post!", inline(postRow))
		return
	}

	p := view.Page
	var sb strings.Builder
	sb.WriteString("📰 Community\n")
	for _, post := range p.Items {
		fmt.Fprintf(&sb, "\n👤 %s · %s\n", post.Author.Label(), post.CreatedAt.Day())
		if post.Content != "" {
			sb.WriteString(truncate(post.Content, 400) + "\n")
		}
		if n := len(post.Images); n > 0 {
			fmt.Fprintf(&sb, "📷 %d photo(s)\n", n)
		}
		fmt.Fprintf(&sb, "❤️ %d  💬 %d\n", post.Likes, post.Comments)
	}
	sb.WriteString(pageFooter(p.Page, p.TotalPages))
	b.edit(chatID, messageID, sb.String(), inline(pager("feed", p), postRow))
}

func (b *Bot) startPost(ctx context.Context, chatID int64) string {
	if b.requireAuth(ctx, chatID) == nil {
		return ""
	}
	b.states.StartForm(ctx, chatID, StateNewPost, nil)
	b.send(chatID, "✍️ Write your post. You can also send a photo with a caption.", cancelKeyboard())
	return ""
}

func (b *Bot) handleNewPost(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	content := msg.Text
	var images []api.File
	if len(msg.Photo) > 0 {
		content = msg.Caption
		file, err := b.downloadPhoto(ctx, msg.Photo)
		if err != nil {
			b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to download photo")
			b.reply(chatID, "⚠️ Could not read that photo. Please send it again.")
			return
		}
		images = append(images, file)
	}

	_, err := directory.New(b.session(chatID)).CreatePost(ctx, content, images)
	if err != nil {
		b.fail(chatID, "post", err)
		return
	}
	b.states.ClearUserState(ctx, chatID)
	b.send(chatID, "✅ Posted to the community feed.", menuFor(b.auth(ctx, chatID)))
}
