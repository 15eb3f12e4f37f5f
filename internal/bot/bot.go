// Package bot is the Telegram front end of the Area Hood client. Each chat
// is one user; its bearer token lives in the session store and every API
// call goes through that chat's session.
package bot

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/config"
	"github.com/areahoodnigeria/client-app-sub001/internal/google"
	"github.com/areahoodnigeria/client-app-sub001/internal/payment"
	"github.com/areahoodnigeria/client-app-sub001/internal/rentals"
	"github.com/areahoodnigeria/client-app-sub001/internal/service"
	"github.com/areahoodnigeria/client-app-sub001/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type Deps struct {
	Config    *config.Config
	Messenger service.Messenger
	API       *api.Client
	Sessions  *session.Manager
	States    *service.StateService
	Payments  *payment.Handoff
	// Sheets is nil when the Google export is not configured.
	Sheets  *google.SheetsService
	Metrics *Metrics
	// HTTP downloads photos from Telegram's file server.
	HTTP *http.Client
	Log  zerolog.Logger
}

// viewIdle is how long a chat's rental views stay cached after last use.
const viewIdle = 30 * time.Minute

type trackerKey struct {
	chatID int64
	role   rentals.Role
}

type Bot struct {
	tg       service.Messenger
	config   *config.Config
	api      *api.Client
	sessions *session.Manager
	states   *service.StateService
	payments *payment.Handoff
	sheets   *google.SheetsService
	metrics  *Metrics
	http     *http.Client
	log      zerolog.Logger

	mu       sync.Mutex
	trackers map[trackerKey]*rentals.Tracker
	boards   map[int64]*rentals.Board
	seen     map[int64]time.Time
	swept    time.Time
	now      func() time.Time

	wg sync.WaitGroup
}

func NewBot(d Deps) *Bot {
	h := d.HTTP
	if h == nil {
		h = &http.Client{Timeout: 30 * time.Second}
	}
	return &Bot{
		tg:       d.Messenger,
		config:   d.Config,
		api:      d.API,
		sessions: d.Sessions,
		states:   d.States,
		payments: d.Payments,
		sheets:   d.Sheets,
		metrics:  d.Metrics,
		http:     h,
		log:      d.Log,
		trackers: make(map[trackerKey]*rentals.Tracker),
		boards:   make(map[int64]*rentals.Board),
		seen:     make(map[int64]time.Time),
		now:      time.Now,
	}
}

// Start handles updates until ctx is done or the channel closes, then waits
// for in-flight handlers.
func (b *Bot) Start(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.log.Info().Msg("bot stopping")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.HandleUpdate(ctx, u)
			}(update)
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			b.metrics.ErrorsTotal.Inc()
			b.log.Error().Interface("panic", r).Int("update_id", update.UpdateID).Msg("update handler panicked")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.metrics.CallbacksProcessed.Inc()
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Chat != nil:
		b.metrics.MessagesProcessed.Inc()
		b.handleMessage(ctx, update.Message)
	}
}

// session is the API session bound to the chat's stored token.
func (b *Bot) session(chatID int64) *api.Session {
	return b.api.Session(b.sessions.For(chatID))
}

// auth returns the chat's login or nil.
func (b *Bot) auth(ctx context.Context, chatID int64) *session.Auth {
	a, err := b.sessions.For(chatID).Auth(ctx)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to read session")
		return nil
	}
	return a
}

// requireAuth sends the login prompt when the chat is logged out.
func (b *Bot) requireAuth(ctx context.Context, chatID int64) *session.Auth {
	a := b.auth(ctx, chatID)
	if a == nil {
		b.promptLogin(chatID, "Please log in to continue.")
	}
	return a
}

func (b *Bot) tracker(chatID int64, role rentals.Role) *rentals.Tracker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.touch(chatID)
	key := trackerKey{chatID: chatID, role: role}
	t, ok := b.trackers[key]
	if !ok {
		log := b.log.With().Int64("chat_id", chatID).Str("role", string(role)).Logger()
		t = rentals.NewTracker(rentals.New(b.session(chatID)), role, log)
		b.trackers[key] = t
	}
	return t
}

func (b *Bot) board(chatID int64) *rentals.Board {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.touch(chatID)
	board, ok := b.boards[chatID]
	if !ok {
		board = rentals.NewBoard(rentals.New(b.session(chatID)))
		b.boards[chatID] = board
	}
	return board
}

// forget drops per-chat caches when the logged in user changes.
func (b *Bot) forget(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drop(chatID)
}

func (b *Bot) drop(chatID int64) {
	delete(b.seen, chatID)
	delete(b.boards, chatID)
	delete(b.trackers, trackerKey{chatID: chatID, role: rentals.Lender})
	delete(b.trackers, trackerKey{chatID: chatID, role: rentals.Borrower})
}

// touch marks chatID as active and, at most once per viewIdle, evicts the
// views of chats idle for longer than that. Chats with a transition in
// flight are kept. Callers hold b.mu.
func (b *Bot) touch(chatID int64) {
	now := b.now()
	b.seen[chatID] = now
	if now.Sub(b.swept) < viewIdle {
		return
	}
	b.swept = now
	for id, at := range b.seen {
		if now.Sub(at) <= viewIdle || b.busy(id) {
			continue
		}
		b.drop(id)
		b.log.Debug().Int64("chat_id", id).Msg("evicted idle rental views")
	}
}

func (b *Bot) busy(chatID int64) bool {
	for _, role := range []rentals.Role{rentals.Lender, rentals.Borrower} {
		if t, ok := b.trackers[trackerKey{chatID: chatID, role: role}]; ok && t.Processing() != "" {
			return true
		}
	}
	return false
}

func (b *Bot) send(chatID int64, text string, markup interface{}) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	sent, err := b.tg.Send(msg)
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
	return sent, err
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(chatID, text, nil)
}

// card sends text with optional inline buttons.
func (b *Bot) card(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if markup == nil {
		b.reply(chatID, text)
		return
	}
	b.send(chatID, text, *markup)
}

// edit rewrites a card in place. A nil markup removes its buttons.
func (b *Bot) edit(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if messageID == 0 {
		b.card(chatID, text, markup)
		return
	}
	cfg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if markup != nil {
		cfg.ReplyMarkup = markup
	}
	if _, err := b.tg.Send(cfg); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to edit message")
	}
}

func (b *Bot) answer(callbackID, text string) {
	if _, err := b.tg.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.log.Debug().Err(err).Msg("failed to answer callback")
	}
}

// fail reports err to the chat. Expired sessions were already handled by
// the unauthorized hook.
func (b *Bot) fail(chatID int64, action string, err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		return
	}
	b.metrics.ErrorsTotal.Inc()

	var verr *api.ValidationError
	var cerr *api.ConflictError
	if errors.As(err, &verr) || errors.As(err, &cerr) {
		b.log.Info().Err(err).Int64("chat_id", chatID).Str("action", action).Msg("request rejected")
	} else {
		b.log.Error().Err(err).Int64("chat_id", chatID).Str("action", action).Msg("request failed")
	}
	b.reply(chatID, "⚠️ "+api.UserMessage(err))
}

func (b *Bot) pageSize() int {
	return b.config.Pagination.PageSize
}
