package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/bot"
	"github.com/areahoodnigeria/client-app-sub001/internal/config"
	"github.com/areahoodnigeria/client-app-sub001/internal/domain"
	"github.com/areahoodnigeria/client-app-sub001/internal/google"
	"github.com/areahoodnigeria/client-app-sub001/internal/logger"
	"github.com/areahoodnigeria/client-app-sub001/internal/metrics"
	"github.com/areahoodnigeria/client-app-sub001/internal/payment"
	"github.com/areahoodnigeria/client-app-sub001/internal/repository"
	"github.com/areahoodnigeria/client-app-sub001/internal/service"
	"github.com/areahoodnigeria/client-app-sub001/internal/session"
	"github.com/areahoodnigeria/client-app-sub001/internal/web"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional; without it sessions and checkouts live in memory
	// and are lost on restart.
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if err := repository.Ping(ctx, redisClient); err != nil {
			log.Warn().Err(err).Str("address", cfg.Redis.Address).Msg("redis unavailable, falling back to in-memory stores")
			redisClient = nil
		} else {
			defer repository.Close(redisClient)
			log.Info().Str("address", cfg.Redis.Address).Msg("redis connected")
		}
	}

	var (
		sessionStore session.Store
		stateRepo    domain.StateRepository
		checkouts    payment.PendingStore
	)
	if redisClient != nil {
		prefix := cfg.Redis.KeyPrefix
		sessionStore = session.NewRedisStore(redisClient, prefix)
		stateRepo = repository.NewRedisStateRepository(redisClient, prefix)
		checkouts = repository.NewRedisCheckoutRepository(redisClient, prefix)
	} else {
		sessionStore = session.NewMemoryStore()
		stateRepo = repository.NewMemoryStateRepository()
		checkouts = repository.NewMemoryCheckoutRepository()
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, log)
	}

	// The unauthorized hook needs the bot, which needs the client.
	var tgBot *bot.Bot
	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.RequestTimeout),
		api.WithUserAgent(cfg.API.UserAgent),
		api.WithLogger(log.With().Str("component", "api").Logger()),
		api.WithObserver(metrics.ObserveAPI),
		api.OnUnauthorized(func(ctx context.Context, cred api.Credentials) {
			if tgBot != nil {
				tgBot.SessionExpired(ctx, cred)
			}
		}),
	)
	sessions := session.NewManager(sessionStore)

	payments := payment.NewHandoff(cfg.Payment, checkouts, func(chatID int64) *api.Session {
		return client.Session(sessions.For(chatID))
	}, log.With().Str("component", "payment").Logger())

	var sheetsService *google.SheetsService
	if cfg.Google.Enabled() {
		sheetsService, err = google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.UsersSpreadsheetID, cfg.Google.RentalsSpreadsheetID)
		if err != nil {
			log.Warn().Err(err).Msg("google sheets unavailable, export disabled")
			sheetsService = nil
		} else if err := sheetsService.TestConnection(ctx); err != nil {
			ev := log.Warn().Err(err)
			if email, eerr := google.ServiceAccountEmail(cfg.Google.CredentialsFile); eerr == nil && email != "" {
				ev = ev.Str("share_with", email)
			}
			ev.Msg("google sheets connection test failed, export disabled")
			sheetsService = nil
		} else {
			if err := sheetsService.WarmUpCache(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to warm up sheets cache")
			}
			log.Info().Msg("google sheets service initialized")
		}
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to telegram")
	}
	botAPI.Debug = cfg.Telegram.Debug
	tgService := service.NewTelegramService(botAPI, log.With().Str("component", "telegram").Logger())

	tgBot = bot.NewBot(bot.Deps{
		Config:    cfg,
		Messenger: tgService,
		API:       client,
		Sessions:  sessions,
		States:    service.NewStateService(stateRepo, log),
		Payments:  payments,
		Sheets:    sheetsService,
		Metrics:   bot.NewMetrics(prometheus.DefaultRegisterer),
		Log:       log.With().Str("component", "bot").Logger(),
	})

	if cfg.Web.Enabled {
		srv := web.NewServer(cfg.Web, cfg.App.Name, payments, tgBot, log.With().Str("component", "web").Logger())
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Error().Err(err).Msg("checkout server stopped")
				stop()
			}
		}()
	} else if cfg.Payment.PublicKey != "" {
		log.Warn().Msg("payment key is set but the checkout server is disabled")
	}

	log.Info().
		Str("bot", tgService.UserName()).
		Str("api", cfg.API.BaseURL).
		Str("environment", cfg.App.Environment).
		Msg("bot started")

	go func() {
		<-ctx.Done()
		tgService.Stop()
	}()
	tgBot.Start(ctx, tgService.Updates(60))

	log.Info().Msg("bot stopped")
}

func startMetricsServer(ctx context.Context, port int, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	log.Info().Int("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server error")
	}
}
