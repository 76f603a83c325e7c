package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leaddialer/internal/config"
	"github.com/xavierca1/leaddialer/internal/entity"
	"github.com/xavierca1/leaddialer/internal/infra/callstore"
	"github.com/xavierca1/leaddialer/internal/infra/database"
	"github.com/xavierca1/leaddialer/internal/infra/http/handlers"
	"github.com/xavierca1/leaddialer/internal/infra/http/router"
	"github.com/xavierca1/leaddialer/internal/infra/integration/twilio"
	"github.com/xavierca1/leaddialer/internal/infra/mail"
	"github.com/xavierca1/leaddialer/internal/infra/queue"
	"github.com/xavierca1/leaddialer/internal/infra/sheets"
	"github.com/xavierca1/leaddialer/internal/infra/worker"
	"github.com/xavierca1/leaddialer/internal/logger"
	"github.com/xavierca1/leaddialer/internal/usecase"
	"github.com/xavierca1/leaddialer/internal/web"
)

const maxLiveSessions = 10000

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Lead sheet
	sheetClient, err := sheets.NewClient(ctx, cfg.Google.SheetID, cfg.Google.ServiceAccountEmail, cfg.Google.PrivateKey, zl)
	if err != nil {
		return err
	}
	leadRepo := sheets.NewLeadRepository(sheetClient, zl)

	if cfg.Google.BackfillIDs {
		n, err := leadRepo.BackfillIDs(ctx)
		if err != nil {
			return err
		}
		zl.Info("id backfill finished", zap.Int("rows", n))
	}

	// 2. Telephony
	twilioClient := twilio.NewClient(
		cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber, cfg.Twilio.Greeting, zl,
	)

	// 3. Call sessions: Postgres when configured, in-memory otherwise
	var (
		sessions entity.CallSessionRepository
		dbPinger handlers.Pinger
	)
	if cfg.DatabaseURL != "" {
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := database.NewCallSessionRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		sessions, dbPinger = repo, repo

		go worker.NewCallRetentionWorker(repo, cfg.CallLogRetention, zl).Start(ctx)
	} else {
		store, err := callstore.NewMemoryStore(maxLiveSessions, cfg.CallSessionTTL)
		if err != nil {
			return err
		}
		defer store.Close()
		sessions = store
	}

	// 4. Call events
	var (
		events queue.CallEventPublisher
		broker handlers.BrokerStatus
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		events, broker = queue.NewProducer(rabbitMQ.Ch), rabbitMQ

		var notifier queue.SummaryNotifier
		if cfg.Mail.Enabled() {
			notifier = mail.NewEmailSender(
				cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.SummaryTo,
			)
		}
		go func() {
			if err := queue.NewWorker(rabbitMQ.Ch, notifier, zl).Start(ctx, queue.QueueName); err != nil {
				zl.Error("call event worker", zap.Error(err))
			}
		}()
	}

	// 5. Service and HTTP
	svc := usecase.NewLeadService(leadRepo, twilioClient, sessions, events, cfg.CallbackURL(), zl)

	handler := router.New(router.Deps{
		Leads:        handlers.NewLeadHandler(svc, zl),
		Calls:        handlers.NewCallHandler(svc, twilioClient, zl),
		Health:       handlers.NewHealthHandler(sheetClient, dbPinger, broker, twilioClient.Configured(), cfg.OpenAIAPIKey != ""),
		UI:           web.Handler(),
		AllowOrigins: cfg.AllowOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr), zap.String("callback", cfg.CallbackURL()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
