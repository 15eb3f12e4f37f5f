// Package web serves the payment checkout page and receives the widget's
// callback.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/config"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/payment"
	"github.com/areahoodnigeria/client-app-sub001/internal/wallet"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Payments is the part of payment.Handoff the server needs.
type Payments interface {
	Pending(ctx context.Context, reference string) (*models.Checkout, error)
	Complete(ctx context.Context, reference string) (*payment.Result, error)
}

// Notifier tells the payer's chat how the payment went.
type Notifier interface {
	PaymentVerified(ctx context.Context, res *payment.Result)
	PaymentFailed(ctx context.Context, c *models.Checkout, err error)
}

type Server struct {
	cfg      config.WebConfig
	appName  string
	payments Payments
	notify   Notifier
	log      zerolog.Logger
}

func NewServer(cfg config.WebConfig, appName string, payments Payments, notify Notifier, log zerolog.Logger) *Server {
	return &Server{cfg: cfg, appName: appName, payments: payments, notify: notify, log: log}
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	router.HandleFunc("/checkout/{reference}", s.checkout).Methods(http.MethodGet)
	router.HandleFunc("/payments/callback", s.callback).Methods(http.MethodPost)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:           s.cfg.Address,
		Handler:        s.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("address", s.cfg.Address).Msg("web server started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["reference"]
	c, err := s.payments.Pending(r.Context(), ref)
	if errors.Is(err, payment.ErrUnknownReference) {
		http.Error(w, "This payment link has expired. Start the payment again from the bot.", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("reference", ref).Msg("failed to load pending checkout")
		http.Error(w, "Payment is unavailable right now.", http.StatusInternalServerError)
		return
	}

	page := checkoutPage{
		AppName:   s.appName,
		ScriptURL: PaystackInlineURL,
		Key:       c.PublicKey,
		Email:     c.Email,
		Amount:    c.AmountMinor,
		Currency:  c.Currency,
		Reference: c.Reference,
		Metadata:  c.Metadata,
		Display:   wallet.FormatNaira(float64(c.AmountMinor) / 100),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := checkoutTemplate.Execute(w, page); err != nil {
		s.log.Error().Err(err).Str("reference", ref).Msg("failed to render checkout page")
	}
}

type callbackRequest struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type callbackResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	var body callbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil || body.Reference == "" {
		writeJSON(w, http.StatusBadRequest, callbackResponse{Status: "error", Message: "Missing payment reference"})
		return
	}

	log := s.log.With().Str("reference", body.Reference).Logger()

	if body.Status != "" && body.Status != "success" {
		log.Info().Str("status", body.Status).Msg("checkout closed without payment")
		writeJSON(w, http.StatusOK, callbackResponse{Status: body.Status, Message: "Payment was not completed"})
		return
	}

	// The browser may go away; verification must still finish.
	ctx := context.WithoutCancel(r.Context())

	res, err := s.payments.Complete(ctx, body.Reference)
	if errors.Is(err, payment.ErrUnknownReference) {
		writeJSON(w, http.StatusNotFound, callbackResponse{Status: "error", Message: err.Error()})
		return
	}
	if err != nil {
		if c, perr := s.payments.Pending(ctx, body.Reference); perr == nil {
			s.notify.PaymentFailed(ctx, c, err)
		}
		writeJSON(w, http.StatusBadGateway, callbackResponse{Status: "error", Message: api.UserMessage(err)})
		return
	}

	s.notify.PaymentVerified(ctx, res)
	writeJSON(w, http.StatusOK, callbackResponse{Status: "success", Message: "Payment confirmed. You can return to the chat."})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
