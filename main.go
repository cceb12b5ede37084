package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CourierBot/config"
	"CourierBot/handler"
	"CourierBot/intake"
	"CourierBot/repo"
	"CourierBot/transport"

	"github.com/go-telegram/bot"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}
	setupLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	accounts, err := newAccountStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing account store")
	}

	tg := transport.NewTelegram()
	var (
		extractor handler.Extractor
		images    handler.ImageFetcher
	)
	if cfg.VisionEnabled() {
		vision, err := repo.NewGeminiVision(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("error creating vision client")
		}
		extractor, images = vision, repo.NewImageService(tg)
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, picture import disabled")
	}

	h := handler.NewHandler(
		tg,
		repo.NewProviderClient(cfg.ProviderBaseURL, cfg.ProviderTimeout),
		accounts,
		repo.NewSessionStore(cfg.SessionCapacity, cfg.SessionTTL),
		extractor,
		images,
		handler.Options{
			Vision:           intake.VisionPolicy{MaxCorrectableErrors: cfg.VisionMaxCorrectableErrors},
			FundsTopUpAmount: cfg.FundsTopUpAmount,
		},
	)

	opts := []bot.Option{
		bot.WithDefaultHandler(tg.Dispatch(h.Handle)),
		bot.WithWorkers(8),
	}
	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating bot")
	}
	tg.Bind(b)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Msg("bot started")
		b.Start(ctx)
		return nil
	})
	if cfg.HealthAddr != "" {
		e := newHealthServer()
		g.Go(func() error {
			if err := e.Start(cfg.HealthAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("stopped with error")
		return
	}
	log.Info().Msg("bot stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	}
}

// newAccountStore uses Firebase when it is configured and JSON files in the
// data directory otherwise.
func newAccountStore(ctx context.Context, cfg *config.Config) (handler.AccountStore, error) {
	if cfg.Firebase.Enabled() {
		log.Info().Msg("using Firebase account store")
		return repo.NewFirebaseConnector(ctx, cfg.Firebase.ServiceAccountKeyPath, cfg.Firebase.DatabaseURL)
	}
	log.Info().Str("dir", cfg.DataDir).Msg("using file account store")
	return repo.NewFileStore(cfg.DataDir)
}

func newHealthServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	return e
}
