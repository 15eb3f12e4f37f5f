package bot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/config"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/payment"
	"github.com/areahoodnigeria/client-app-sub001/internal/repository"
	"github.com/areahoodnigeria/client-app-sub001/internal/service"
	"github.com/areahoodnigeria/client-app-sub001/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const chatID int64 = 501

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeMessenger) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent), Chat: &tgbotapi.Chat{ID: chatID}}, nil
}

func (f *fakeMessenger) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeMessenger) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.example.com/" + fileID + ".jpg", nil
}

// texts returns the text of every sent or edited message.
func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeMessenger) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return m
		}
	}
	t.Fatal("no message sent")
	return tgbotapi.MessageConfig{}
}

func (f *fakeMessenger) edits() []tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeMessenger) callbackNotices() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

func countContaining(texts []string, sub string) int {
	n := 0
	for _, t := range texts {
		if strings.Contains(t, sub) {
			n++
		}
	}
	return n
}

func keyboardHas(markup interface{}, label string) bool {
	kb, ok := markup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok {
		return false
	}
	for _, row := range kb.Keyboard {
		for _, btn := range row {
			if btn.Text == label {
				return true
			}
		}
	}
	return false
}

func inlineButtons(markup interface{}) []tgbotapi.InlineKeyboardButton {
	kb, ok := markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		ptr, isPtr := markup.(*tgbotapi.InlineKeyboardMarkup)
		if !isPtr || ptr == nil {
			return nil
		}
		kb = *ptr
	}
	var out []tgbotapi.InlineKeyboardButton
	for _, row := range kb.InlineKeyboard {
		out = append(out, row...)
	}
	return out
}

func newTestBot(t *testing.T, h http.HandlerFunc, yaml string) (*Bot, *fakeMessenger) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	cfg, err := config.Parse([]byte("api:\n  base_url: " + server.URL + "\n" + yaml))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Exports.Path = t.TempDir()

	fm := &fakeMessenger{}
	var b *Bot
	client := api.NewClient(server.URL, api.OnUnauthorized(func(ctx context.Context, cred api.Credentials) {
		b.SessionExpired(ctx, cred)
	}))
	sessions := session.NewManager(session.NewMemoryStore())
	handoff := payment.NewHandoff(cfg.Payment, repository.NewMemoryCheckoutRepository(), func(id int64) *api.Session {
		return client.Session(sessions.For(id))
	}, zerolog.Nop())

	b = NewBot(Deps{
		Config:    cfg,
		Messenger: fm,
		API:       client,
		Sessions:  sessions,
		States:    service.NewStateService(repository.NewMemoryStateRepository(), zerolog.Nop()),
		Payments:  handoff,
		Metrics:   NewMetrics(prometheus.NewRegistry()),
		Log:       zerolog.Nop(),
	})
	return b, fm
}

func loginAs(t *testing.T, b *Bot, u models.User) {
	t.Helper()
	if _, err := b.sessions.For(chatID).Start(context.Background(), &models.AuthResult{Token: "tok-" + u.ID, User: u}); err != nil {
		t.Fatal(err)
	}
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 10,
		Chat:      &tgbotapi.Chat{ID: chatID},
		From:      &tgbotapi.User{ID: chatID},
		Text:      text,
	}}
}

func callbackUpdate(messageID int, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func noAPI(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected API call %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

var neighbor = models.User{ID: "u1", Name: "Ada Obi", Email: "ada@hood.ng", Role: models.RoleNeighbor}

func TestStartShowsMenuForRole(t *testing.T) {
	b, fm := newTestBot(t, noAPI(t), "")
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate("/start"))
	if m := fm.lastMessage(t); !keyboardHas(m.ReplyMarkup, btnLogin) || keyboardHas(m.ReplyMarkup, btnWallet) {
		t.Error("guest should get the login menu")
	}

	loginAs(t, b, neighbor)
	b.HandleUpdate(ctx, textUpdate("/start"))
	m := fm.lastMessage(t)
	if !keyboardHas(m.ReplyMarkup, btnWallet) || !keyboardHas(m.ReplyMarkup, btnLogout) {
		t.Error("neighbor should get the member menu")
	}
	if !strings.Contains(m.Text, "Welcome back, Ada Obi") {
		t.Errorf("home text = %q", m.Text)
	}
}

func TestLoginFlow(t *testing.T) {
	b, fm := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid email or password"}`))
			return
		}
		w.Write([]byte(`{"token":"tok-1","user":{"_id":"u1","first_name":"Ada","last_name":"Obi","email":"ada@hood.ng","userType":"neighbor"}}`))
	}, "")
	ctx := context.Background()

	b.HandleUpdate(ctx, textUpdate(btnLogin))
	b.HandleUpdate(ctx, textUpdate("ada@hood.ng"))
	b.HandleUpdate(ctx, textUpdate("wrong"))

	if m := fm.lastMessage(t); !strings.Contains(m.Text, "Invalid email or password") {
		t.Errorf("failed login text = %q", m.Text)
	}
	if st := b.states.GetUserState(ctx, chatID); st == nil || st.CurrentStep != StateLoginEmail {
		t.Fatalf("state after failed login = %+v", st)
	}

	b.HandleUpdate(ctx, textUpdate("ada@hood.ng"))
	b.HandleUpdate(ctx, textUpdate("secret"))

	token, _ := b.sessions.For(chatID).Token(ctx)
	if token != "tok-1" {
		t.Errorf("token = %q", token)
	}
	m := fm.lastMessage(t)
	if !strings.Contains(m.Text, "Welcome") || !keyboardHas(m.ReplyMarkup, btnLogout) {
		t.Errorf("welcome = %q", m.Text)
	}
	if st := b.states.GetUserState(ctx, chatID); st != nil {
		t.Errorf("state not cleared: %+v", st)
	}

	fm.mu.Lock()
	deleted := 0
	for _, c := range fm.requests {
		if d, ok := c.(tgbotapi.DeleteMessageConfig); ok && d.MessageID == 10 {
			deleted++
		}
	}
	fm.mu.Unlock()
	if deleted != 2 {
		t.Errorf("password messages deleted = %d, want 2", deleted)
	}
}

func TestExpiredSessionPromptsLoginOnce(t *testing.T) {
	b, fm := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, "")
	ctx := context.Background()
	loginAs(t, b, neighbor)

	b.HandleUpdate(ctx, textUpdate(btnWallet))

	if token, _ := b.sessions.For(chatID).Token(ctx); token != "" {
		t.Errorf("token survived a 401: %q", token)
	}
	texts := fm.texts()
	if n := countContaining(texts, "session has expired"); n != 1 {
		t.Errorf("expiry prompts = %d, texts = %q", n, texts)
	}
	if n := countContaining(texts, "⚠️"); n != 0 {
		t.Errorf("error shown on top of the login prompt: %q", texts)
	}
}

func TestRentFlowValidatesDates(t *testing.T) {
	var mu sync.Mutex
	var created map[string]any
	b, fm := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/listings/l1":
			w.Write([]byte(`{"_id":"l1","title":"Drill","pricePerDay":1500,"owner":{"_id":"u2","first_name":"Bola"}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/rentals/requests":
			mu.Lock()
			json.NewDecoder(r.Body).Decode(&created)
			mu.Unlock()
			w.Write([]byte(`{"_id":"r1","status":"pending","totalPrice":4500}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}, "")
	ctx := context.Background()
	loginAs(t, b, neighbor)

	b.HandleUpdate(ctx, callbackUpdate(3, "rent:l1"))
	b.HandleUpdate(ctx, textUpdate("2026-11-10"))
	b.HandleUpdate(ctx, textUpdate("2026-11-05"))

	if st := b.states.GetUserState(ctx, chatID); st == nil || st.CurrentStep != StateRentEnd {
		t.Fatalf("end before start should re-ask the end date, state = %+v", st)
	}

	b.HandleUpdate(ctx, textUpdate("12.11.2026"))
	b.HandleUpdate(ctx, textUpdate(btnSkip))

	mu.Lock()
	defer mu.Unlock()
	if created["listingId"] != "l1" || created["startDate"] != "2026-11-10" || created["endDate"] != "2026-11-12" {
		t.Errorf("request body = %v", created)
	}
	if _, ok := created["message"]; ok {
		t.Errorf("skipped message was sent: %v", created)
	}
	if m := fm.lastMessage(t); !strings.Contains(m.Text, "Request sent") || !strings.Contains(m.Text, "₦4,500.00") {
		t.Errorf("confirmation = %q", m.Text)
	}
}

func TestOwnerCannotRentOwnListing(t *testing.T) {
	b, fm := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id":"l1","title":"Drill","pricePerDay":1500,"owner":"u1"}`))
	}, "")
	ctx := context.Background()
	loginAs(t, b, neighbor)

	b.HandleUpdate(ctx, callbackUpdate(3, "rent:l1"))

	if st := b.states.GetUserState(ctx, chatID); st != nil {
		t.Errorf("owner started a rental form: %+v", st)
	}
	if notices := fm.callbackNotices(); len(notices) != 1 || notices[0] != "This is your own listing" {
		t.Errorf("notices = %q", notices)
	}
}

func TestAcceptUpdatesCard(t *testing.T) {
	b, fm := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/rentals/requests/lender":
			w.Write([]byte(`[{"_id":"r1","status":"pending","listing":{"_id":"l1","title":"Drill"},"borrower":{"_id":"u3","first_name":"Chi"},"startDate":"2026-11-10","endDate":"2026-11-12"}]`))
		case r.Method == http.MethodPatch && r.URL.Path == "/rentals/requests/r1":
			w.Write([]byte(`{"_id":"r1","status":"accepted"}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}, "")
	ctx := context.Background()
	loginAs(t, b, neighbor)

	b.HandleUpdate(ctx, textUpdate(btnIncoming))
	card := fm.lastMessage(t)
	var datas []string
	for _, btn := range inlineButtons(card.ReplyMarkup) {
		datas = append(datas, *btn.CallbackData)
	}
	if strings.Join(datas, ",") != "accept:r1,reject:r1" {
		t.Fatalf("lender buttons = %v", datas)
	}

	b.HandleUpdate(ctx, callbackUpdate(7, "accept:r1"))

	edits := fm.edits()
	if len(edits) != 1 || edits[0].MessageID != 7 || !strings.Contains(edits[0].Text, "✅ Accepted") {
		t.Fatalf("edits = %+v", edits)
	}
	if edits[0].ReplyMarkup != nil {
		t.Error("accepted card still offers accept/reject")
	}
	if notices := fm.callbackNotices(); len(notices) != 1 || !strings.HasPrefix(notices[0], "Accepted") {
		t.Errorf("notices = %q", notices)
	}
}

func TestRejectFailureKeepsPendingStatus(t *testing.T) {
	b, fm := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[{"_id":"r1","status":"pending","listing":{"_id":"l1","title":"Drill"}}]`))
		case http.MethodPatch:
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"Request already decided"}`))
		}
	}, "")
	ctx := context.Background()
	loginAs(t, b, neighbor)

	b.HandleUpdate(ctx, textUpdate(btnIncoming))
	b.HandleUpdate(ctx, callbackUpdate(7, "reject:r1"))
	b.HandleUpdate(ctx, textUpdate("Not available"))

	if s, _ := b.board(chatID).Status("r1"); s != models.RequestPending {
		t.Errorf("status after failed reject = %s", s)
	}
	if m := fm.lastMessage(t); m.Text != "⚠️ Request already decided" {
		t.Errorf("error text = %q", m.Text)
	}
}

const borrowerRequests = `[{"_id":"r1","status":"accepted","isPaid":false,"totalPrice":4500.5,"listing":{"_id":"l1","title":"Drill"}}]`

func TestPayOpensCheckout(t *testing.T) {
	b, fm := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rentals/requests/borrower" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			return
		}
		w.Write([]byte(borrowerRequests))
	}, "payment:\n  public_key: pk_test_1\n  checkout_base_url: https://pay.example.com/\n")
	ctx := context.Background()
	loginAs(t, b, neighbor)

	b.HandleUpdate(ctx, callbackUpdate(4, "pay:r1"))

	m := fm.lastMessage(t)
	if !strings.Contains(m.Text, "₦4,500.50") {
		t.Errorf("pay text = %q", m.Text)
	}
	buttons := inlineButtons(m.ReplyMarkup)
	if len(buttons) != 1 || buttons[0].URL == nil || !strings.HasPrefix(*buttons[0].URL, "https://pay.example.com/checkout/AH-") {
		t.Fatalf("checkout button = %+v", buttons)
	}

	ref := strings.TrimPrefix(*buttons[0].URL, "https://pay.example.com/checkout/")
	c, err := b.payments.Pending(ctx, ref)
	if err != nil {
		t.Fatal(err)
	}
	if c.AmountMinor != 450050 || c.ChatID != chatID || c.Email != neighbor.Email {
		t.Errorf("checkout = %+v", c)
	}
}

func TestPayWithoutGatewayKey(t *testing.T) {
	b, fm := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(borrowerRequests))
	}, "")
	ctx := context.Background()
	loginAs(t, b, neighbor)

	b.HandleUpdate(ctx, callbackUpdate(4, "pay:r1"))

	if m := fm.lastMessage(t); !strings.Contains(m.Text, "Payments are unavailable") {
		t.Errorf("text = %q", m.Text)
	}
}

func TestPaymentNotifications(t *testing.T) {
	b, fm := newTestBot(t, noAPI(t), "app:\n  contact_email: help@areahood.ng\n")
	ctx := context.Background()
	c := &models.Checkout{Reference: "AH-1", ChatID: chatID, AmountMinor: 450050}

	b.PaymentVerified(ctx, &payment.Result{Checkout: c, Verification: &models.PaymentVerification{}})
	if m := fm.lastMessage(t); !strings.Contains(m.Text, "₦4,500.50") || !strings.Contains(m.Text, "escrow") {
		t.Errorf("verified text = %q", m.Text)
	}

	b.PaymentFailed(ctx, c, &api.ConflictError{Status: 400, Message: "Transaction not found"})
	m := fm.lastMessage(t)
	if !strings.Contains(m.Text, "Transaction not found") || !strings.Contains(m.Text, "help@areahood.ng") || !strings.Contains(m.Text, "AH-1") {
		t.Errorf("failed text = %q", m.Text)
	}
}

func TestAdminSectionsNeedAdminRole(t *testing.T) {
	b, fm := newTestBot(t, noAPI(t), "")
	ctx := context.Background()
	loginAs(t, b, neighbor)

	for _, text := range []string{btnStats, btnUsers, btnSync} {
		b.HandleUpdate(ctx, textUpdate(text))
	}
	if n := countContaining(fm.texts(), "for administrators"); n != 3 {
		t.Errorf("admin refusals = %d", n)
	}
}

func TestMarketplacePaging(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	b, fm := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.RawQuery)
		mu.Unlock()
		w.Write([]byte(`{"listings":[{"_id":"l1","title":"Drill","pricePerDay":1500}],"pagination":{"page":1,"totalPages":3,"total":15}}`))
	}, "")
	ctx := context.Background()

	b.HandleUpdate(ctx, callbackUpdate(1, "search:listings"))
	b.HandleUpdate(ctx, textUpdate("drill"))
	b.HandleUpdate(ctx, callbackUpdate(9, "mkt:2"))

	mu.Lock()
	defer mu.Unlock()
	if len(queries) != 2 || !strings.Contains(queries[1], "search=drill") || !strings.Contains(queries[1], "page=2") {
		t.Errorf("queries = %q", queries)
	}
	edits := fm.edits()
	if len(edits) != 1 || edits[0].MessageID != 9 || !strings.Contains(edits[0].Text, "Drill") {
		t.Errorf("edits = %+v", edits)
	}
}

func TestWriteWorkbook(t *testing.T) {
	reqs := []models.RentalRequest{{
		ID:         "r1",
		Listing:    models.Ref{ID: "l1", Name: "Drill"},
		Borrower:   models.Ref{ID: "u3", Name: "Chi"},
		Status:     models.RequestAccepted,
		IsPaid:     true,
		TotalPrice: 4500,
	}}
	list := []models.ActiveRental{{ID: "a1", Listing: models.Ref{Name: "Drill"}, EscrowStatus: models.EscrowFundsHeld}}

	path := filepath.Join(t.TempDir(), "export.xlsx")
	if err := writeWorkbook(path, []sheet{requestsSheet("Incoming requests", reqs), rentalsSheet("Lending", list)}); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != "Incoming requests" || got[1] != "Lending" {
		t.Errorf("sheets = %v", got)
	}
	for cell, want := range map[string]string{"A1": "ID", "B2": "Drill", "C2": "Chi", "I2": "yes"} {
		if v, _ := f.GetCellValue("Incoming requests", cell); v != want {
			t.Errorf("%s = %q, want %q", cell, v, want)
		}
	}
	if v, _ := f.GetCellValue("Lending", "I2"); v != string(models.EscrowFundsHeld) {
		t.Errorf("escrow cell = %q", v)
	}
}

func TestMatchBanks(t *testing.T) {
	banks := []models.Bank{
		{Name: "Access Bank", Code: "044"},
		{Name: "Guaranty Trust Bank", Code: "058"},
		{Name: "Access Bank (Diamond)", Code: "063"},
	}
	got := matchBanks(banks, " access ")
	if len(got) != 2 || got[0].Code != "044" || got[1].Code != "063" {
		t.Errorf("matches = %+v", got)
	}
	if len(matchBanks(banks, "zenith")) != 0 {
		t.Error("unexpected match")
	}
}
