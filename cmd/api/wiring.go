package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/config"
	"github.com/xavierca1/leadfunnel/internal/entity"
	"github.com/xavierca1/leadfunnel/internal/infra/catalog"
	"github.com/xavierca1/leadfunnel/internal/infra/database"
	"github.com/xavierca1/leadfunnel/internal/infra/http/handlers"
	"github.com/xavierca1/leadfunnel/internal/infra/integration/gemini"
	"github.com/xavierca1/leadfunnel/internal/infra/integration/sheets"
	"github.com/xavierca1/leadfunnel/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadfunnel/internal/infra/kvstore"
	"github.com/xavierca1/leadfunnel/internal/infra/mail"
	"github.com/xavierca1/leadfunnel/internal/infra/memory"
	"github.com/xavierca1/leadfunnel/internal/usecase"
)

type storeBackend struct {
	repo   entity.LeadRepository
	plans  entity.PlanRepository
	checks map[string]handlers.HealthCheck
}

// openStore selects the lead backend. Postgres also serves the plan catalog,
// seeded from the YAML file; the other backends read plans from the file.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storeBackend, error) {
	plans, err := catalog.Load(cfg.PlansFile)
	if err != nil {
		return nil, err
	}

	b := &storeBackend{plans: plans, checks: map[string]handlers.HealthCheck{}}

	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		b.repo = database.NewLeadRepository(db)
		b.checks["postgres"] = db.PingContext

		if err := b.repo.Open(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("open postgres store: %w", err)
		}

		dbPlans := database.NewPlanRepository(db)
		seed, _ := plans.List(ctx)
		if err := dbPlans.Seed(ctx, seed); err != nil {
			db.Close()
			return nil, err
		}
		b.plans = dbPlans
		return b, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		b.repo = kvstore.NewLeadRepository(client, cfg.RedisLeadsKey, logger)
		b.checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}

	default:
		b.repo = memory.NewLeadRepository()
	}

	if err := b.repo.Open(ctx); err != nil {
		b.repo.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	return b, nil
}

// buildDispatchers registers a sender per outreach channel. LinkedIn has no
// API integration and is only logged for the operator to send by hand.
func buildDispatchers(cfg *config.Config, wa *whatsapp.Client, logger *zap.Logger) map[entity.Channel]usecase.Dispatcher {
	dispatchers := map[entity.Channel]usecase.Dispatcher{
		entity.ChannelLinkedIn: mail.NewLogSender(logger.Named("linkedin")),
	}
	if cfg.MailHost != "" {
		dispatchers[entity.ChannelEmail] = mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, logger)
	} else {
		logger.Warn("MAIL_HOST not set, email outreach disabled")
	}
	if wa.Configured() {
		dispatchers[entity.ChannelWhatsApp] = mail.NewWhatsAppSender(wa, logger)
	} else {
		logger.Warn("WhatsApp credentials not set, WhatsApp outreach disabled")
	}
	return dispatchers
}

func buildSheet(ctx context.Context, cfg *config.Config, logger *zap.Logger) usecase.LeadSheet {
	if cfg.SheetsSpreadsheetID == "" {
		return nil
	}
	sheet, err := sheets.NewLeadSheet(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsRange, logger)
	if err != nil {
		logger.Error("sheets client disabled", zap.Error(err))
		return nil
	}
	return sheet
}

func buildModel(ctx context.Context, cfg *config.Config, logger *zap.Logger) usecase.LanguageModel {
	if cfg.GeminiAPIKey == "" {
		return nil
	}
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger, gemini.Options{})
	if err != nil {
		logger.Error("gemini client disabled", zap.Error(err))
		return nil
	}
	return client
}
