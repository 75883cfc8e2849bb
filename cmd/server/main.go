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

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/theatre-booking-calendar/internal/clash"
	"github.com/iliyamo/theatre-booking-calendar/internal/config"
	"github.com/iliyamo/theatre-booking-calendar/internal/database"
	"github.com/iliyamo/theatre-booking-calendar/internal/handler"
	"github.com/iliyamo/theatre-booking-calendar/internal/logging"
	"github.com/iliyamo/theatre-booking-calendar/internal/mail"
	"github.com/iliyamo/theatre-booking-calendar/internal/middleware"
	"github.com/iliyamo/theatre-booking-calendar/internal/queue"
	"github.com/iliyamo/theatre-booking-calendar/internal/repository"
	"github.com/iliyamo/theatre-booking-calendar/internal/router"
	"github.com/iliyamo/theatre-booking-calendar/internal/service"
	"github.com/iliyamo/theatre-booking-calendar/internal/validation"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		logrus.WithError(err).Fatal("Server stopped")
	}
}

func run(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	retryCfg := config.LoadRetryConfig()
	mailCfg := config.LoadMailConfig()

	store, closeStore, err := openStore(ctx, cfg, retryCfg)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		logrus.Warn("Redis unreachable; running without cache and rate limit")
	} else {
		defer func() {
			if err := rdb.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close redis connection")
			}
		}()
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	sender, consumer := notificationSender(cfg, mailCfg, retryCfg)
	notifier := clash.NewNotifier(store, sender, clash.Config{
		From:         mail.Recipient{Email: mailCfg.SenderEmail, Name: mailCfg.SenderName},
		TemplateName: mailCfg.ClashTemplate,
		Location:     cfg.Location,
	})

	svc := service.NewBookingService(store, validation.New(), notifier, cache, cfg.Location)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, handler.NewBookingHandler(svc), handler.NewCalendarHandler(svc), router.Options{
		IdentitySecret: cfg.IdentitySecret,
		Cache:          cache,
		RateLimit:      middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	g, runCtx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			if err := consumer.Run(runCtx); err != nil {
				return fmt.Errorf("running email consumer: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		addr := ":" + cfg.Port
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "store": cfg.DBDriver}).Info("Starting HTTP server...")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-runCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logrus.Info("Shutting down HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("waiting for shutdown: %w", err)
	}
	logrus.Info("Shutdown complete.")
	return nil
}

// openStore returns the configured booking store and a func releasing it.
// SQL stores are created on first run and wrapped in the retry policy.
func openStore(ctx context.Context, cfg config.Config, retryCfg config.RetryConfig) (repository.Store, func(), error) {
	if cfg.DBDriver == config.DriverMemory {
		logrus.Warn("Using in-memory store; bookings are lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to db: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close db connection")
		}
	}
	if err := database.InitialiseDB(ctx, db); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("creating bookings table: %w", err)
	}
	return repository.NewRetryingStore(repository.NewBookingRepo(db), retryCfg), closeDB, nil
}

// notificationSender picks how clash emails leave the process. The queue
// transport also returns the consumer that drains the queue into the email
// API.
func notificationSender(cfg config.Config, mailCfg config.MailConfig, retryCfg config.RetryConfig) (mail.Sender, *queue.Consumer) {
	if cfg.NotifyTransport == config.TransportLog {
		return mail.LogSender{}, nil
	}
	if mailCfg.APIURL == "" {
		logrus.Warn("MAIL_API_URL not set; clash emails will only be logged")
		return mail.LogSender{}, nil
	}

	api := mail.NewHTTPSender(mailCfg, retryCfg)
	if cfg.NotifyTransport == config.TransportQueue {
		return queue.NewPublisher(cfg.RabbitURL, mailCfg.Queue), queue.NewConsumer(cfg.RabbitURL, mailCfg.Queue, api)
	}
	return api, nil
}
