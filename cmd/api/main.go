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
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/leadfunnel/internal/chatflow"
	"github.com/xavierca1/leadfunnel/internal/config"
	"github.com/xavierca1/leadfunnel/internal/infra/http/handlers"
	"github.com/xavierca1/leadfunnel/internal/infra/http/middleware"
	"github.com/xavierca1/leadfunnel/internal/infra/integration/stripe"
	"github.com/xavierca1/leadfunnel/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadfunnel/internal/infra/queue"
	"github.com/xavierca1/leadfunnel/internal/infra/worker"
	"github.com/xavierca1/leadfunnel/internal/logger"
	"github.com/xavierca1/leadfunnel/internal/usecase"
)

const (
	version         = "1.0.0"
	sessionTTL      = 30 * time.Minute
	taskTimeout     = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLogger, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat, "leadfunnel-api")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLogger.Sync()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := middleware.PrometheusRecorder{}

	// 1. Storage
	backend, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.repo.Close()

	store := usecase.NewLeadStore(backend.repo, usecase.ConflictPolicy(cfg.ConflictPolicy), cfg.ConflictRetries, logger)
	templates, err := usecase.LoadTemplates(cfg.TemplatesFile)
	if err != nil {
		return err
	}

	// 2. Gateways
	waClient := whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneID, logger)
	stripeClient := stripe.NewClient(cfg.StripeAPIURL, cfg.StripeSecretKey, logger)
	dispatchers := buildDispatchers(cfg, waClient, logger)
	sheet := buildSheet(ctx, cfg, logger)
	model := buildModel(ctx, cfg, logger)

	// 3. Notifications: RabbitMQ when configured, inline otherwise
	processor := usecase.NewNotificationProcessor(dispatchers, cfg.SalesEmail, cfg.SalesWhatsApp, logger)
	var (
		publisher usecase.NotificationPublisher = processor
		consumer  *queue.Worker
	)
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()

		publisher = queue.NewProducer(rabbitMQ.Ch, logger)
		consumer = queue.NewWorker(rabbitMQ.Ch, processor, logger)
		backend.checks["rabbitmq"] = func(context.Context) error {
			if rabbitMQ.Conn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		}
	}

	// 4. UseCases
	tasks := usecase.NewBackgroundTasks(taskTimeout, recorder, logger)
	engine := usecase.NewOutreachEngine(
		store,
		templates,
		dispatchers,
		cfg.DemoURL,
		usecase.PositiveResponseMode(cfg.PositiveResponseMode),
		usecase.LanguageFallback(cfg.LanguageFallback),
		recorder,
		logger,
	)
	intake := usecase.NewIntakeUseCase(store, tasks, sheet, publisher, recorder, logger)
	reports := usecase.NewReportUseCase(store)
	contact := usecase.ContactInfo{WhatsApp: cfg.ContactWhatsApp, Email: cfg.ContactEmail, Phone: cfg.ContactPhone}

	flow := chatflow.NewFlow(chatflow.ContactTargets{
		WhatsApp: cfg.ContactWhatsApp,
		Email:    cfg.ContactEmail,
		Phone:    cfg.ContactPhone,
	}, intake, tasks, cfg.TypingDelay, logger)
	sessions := chatflow.NewSessionStore(sessionTTL)
	limiter := handlers.NewRateLimiter(10, time.Minute)

	// 5. Handlers
	routes := routeHandlers{
		health: handlers.NewHealthHandler(version, backend.checks, map[string]bool{
			"stripe":   cfg.StripeSecretKey != "",
			"whatsapp": waClient.Configured(),
			"email":    cfg.MailHost != "",
			"gemini":   model != nil,
			"sheets":   sheet != nil,
		}),
		lead:         handlers.NewLeadHandler(intake, limiter, logger),
		chat:         handlers.NewChatHandler(usecase.NewAssistantUseCase(model, backend.plans, contact, recorder, logger), logger),
		flow:         handlers.NewFlowHandler(flow, sessions, logger),
		checkout:     handlers.NewCheckoutHandler(usecase.NewCheckoutUseCase(backend.plans, stripeClient, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, recorder, logger), logger),
		notification: handlers.NewNotificationHandler(usecase.NewNotifyUseCase(publisher, logger), logger),
		webhook: handlers.NewWebhookHandler(
			usecase.NewWebhookUseCase(store, engine, publisher, logger),
			cfg.StripeWebhookSecret,
			cfg.WhatsAppVerifyToken,
			cfg.WhatsAppAppSecret,
			logger,
		),
		admin: handlers.NewAdminHandler(store, engine, reports, intake, logger),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           newRouter(cfg, routes),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Background loops
	staleWorker := worker.NewStaleOutreachWorker(reports, middleware.SetLeadsAwaitingReply,
		cfg.StaleOutreachWindow, cfg.StaleOutreachInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreBackend),
			zap.Int("dispatchers", len(dispatchers)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		sessions.Run(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		limiter.Cleanup(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		staleWorker.Start(gctx)
		return nil
	})
	if consumer != nil {
		g.Go(func() error {
			return consumer.Run(gctx, queue.QueueName)
		})
	}

	err = g.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if werr := tasks.Wait(drainCtx); werr != nil {
		logger.Warn("background tasks still running at shutdown", zap.Error(werr))
	}

	logger.Info("server stopped")
	return err
}
