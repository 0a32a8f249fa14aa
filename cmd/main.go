package main

import (
	"context"
	"errors"
	"net/http"
	"notdienst_bot/internal/config"
	"notdienst_bot/internal/infrastructure"
	"notdienst_bot/internal/interfaces"
	httpapi "notdienst_bot/internal/interfaces/http"
	"notdienst_bot/internal/repository"
	"notdienst_bot/internal/usecases"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterSweep    = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger settings come from the config, so fall back to the default
		fallback := infrastructure.NewLogger("info", false)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := infrastructure.NewLogger(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("bot stopped")
	}
	logger.Info().Msg("bot stopped")
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	messages, err := config.LoadMessages(cfg.MessagesFile, cfg.ChannelID)
	if err != nil {
		return err
	}

	retry := infrastructure.DefaultRetryPolicy(logger)

	telegram, err := infrastructure.NewTelegramClient(cfg.BotToken, retry, logger)
	if err != nil {
		return err
	}
	logger.Info().Str("bot", telegram.Username()).Str("channel", cfg.ChannelID).Msg("authorized on telegram")

	lookupHTTP := infrastructure.NewHTTPClient(infrastructure.DefaultHTTPTimeout)
	geocoder := infrastructure.NewOpenCageClient(cfg.OpenCageAPIKey, cfg.GeocodeCountry, lookupHTTP, retry, logger)
	directory := infrastructure.NewNotdienstClient(lookupHTTP, retry, logger)

	store, err := openUsageStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close usage store")
		}
	}()

	var (
		limiter      usecases.InboundLimiter
		limiterStats httpapi.LimiterStats
	)
	if cfg.InboundLimitEnabled() {
		inbound := infrastructure.NewMessageRateLimiter(cfg.InboundRate, cfg.InboundBurst)
		go inbound.Run(ctx, limiterSweep)
		limiter, limiterStats = inbound, inbound
		logger.Info().Float64("rate", cfg.InboundRate).Int("burst", cfg.InboundBurst).Msg("inbound flood protection enabled")
	}

	bot := usecases.NewPharmacyBot(usecases.BotDeps{
		Messenger:  telegram,
		Geocoder:   geocoder,
		Directory:  directory,
		Usage:      store,
		Limiter:    limiter,
		Messages:   messages,
		Channel:    cfg.ChannelID,
		GateSearch: cfg.GateSearch,
	}, logger)

	var srv *http.Server
	if cfg.HTTPEnabled() {
		srv, err = startAdminAPI(ctx, cfg, telegram, store, limiterStats, logger)
		if err != nil {
			return err
		}
	}

	poller := infrastructure.NewPoller(telegram, bot.HandleUpdate, logger)
	logger.Info().Msg("polling for updates")
	err = poller.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("admin API shutdown")
		}
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openUsageStore prefers Postgres, then SQLite, then a store that records
// nothing
func openUsageStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (interfaces.UsageStore, error) {
	switch {
	case cfg.DatabaseURL != "":
		pg, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("usage stats stored in postgres")
		return repository.NewUsageRepository(pg.Pool), nil

	case cfg.SQLitePath != "":
		lite, err := infrastructure.NewSQLiteClient(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("usage stats stored in sqlite")
		return repository.NewSQLiteUsageRepository(lite.DB), nil
	}

	logger.Info().Msg("no database configured, usage stats disabled")
	return repository.NoopUsageRepository{}, nil
}

func startAdminAPI(ctx context.Context, cfg config.Config, bot httpapi.BotIdentity, store interfaces.UsageStore, inbound httpapi.LimiterStats, logger zerolog.Logger) (*http.Server, error) {
	var auth *usecases.AuthUsecase
	if cfg.AuthEnabled() {
		auth = usecases.NewAuthUsecase(repository.NewUserRepository(), cfg.JWTSecret)
		if err := auth.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return nil, err
		}
	} else {
		logger.Info().Msg("JWT_SECRET or ADMIN_PASSWORD not set, stats API disabled")
	}

	apiLimiter := infrastructure.NewMessageRateLimiter(5, 10)
	go apiLimiter.Run(ctx, limiterSweep)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	h := httpapi.NewHandler(bot, auth, usecases.NewStatsUsecase(store), inbound, logger)
	httpapi.SetupRoutes(r, h, httpapi.NewMiddleware(auth, apiLimiter))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("admin API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("admin API failed")
		}
	}()
	return srv, nil
}
