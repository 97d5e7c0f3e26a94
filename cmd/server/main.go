package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/mediahub/mediahub/internal/api/http"
	"github.com/mediahub/mediahub/internal/application/access"
	"github.com/mediahub/mediahub/internal/application/activity"
	"github.com/mediahub/mediahub/internal/application/auth"
	"github.com/mediahub/mediahub/internal/application/dispute"
	appMediation "github.com/mediahub/mediahub/internal/application/mediation"
	"github.com/mediahub/mediahub/internal/application/party"
	"github.com/mediahub/mediahub/internal/application/settlement"
	"github.com/mediahub/mediahub/internal/application/user"
	"github.com/mediahub/mediahub/internal/config"
	domainMediation "github.com/mediahub/mediahub/internal/domain/mediation"
	"github.com/mediahub/mediahub/internal/infrastructure/aimediator"
	"github.com/mediahub/mediahub/internal/infrastructure/postgres"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, "internal/migrations"); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	disputeRepo := postgres.NewDisputeRepository(pool)
	partyRepo := postgres.NewPartyRepository(pool)
	mediationRepo := postgres.NewMediationRepository(pool)
	settlementRepo := postgres.NewSettlementRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)

	// AI mediator providers, in fallback order
	providers := []domainMediation.Adapter{}
	if cfg.OpenAIAPIKey != "" {
		providers = append(providers, aimediator.NewOpenAIProvider(aimediator.OpenAIConfig{
			ResponsesURL: cfg.MediatorURL,
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
		}))
	}
	providers = append(providers, aimediator.NewStaticProvider())
	adapter := aimediator.NewChain(providers, cfg.AdapterTimeout, logger)

	// services
	activitySvc := activity.NewService(activityRepo, logger)
	accessSvc := access.NewService(disputeRepo, partyRepo, mediationRepo, logger)
	disputeSvc := dispute.NewService(disputeRepo, partyRepo, accessSvc, activitySvc, logger)
	partySvc := party.NewService(partyRepo, disputeRepo, accessSvc, activitySvc, logger)
	mediationSvc := appMediation.NewService(mediationRepo, disputeRepo, disputeSvc, accessSvc, activitySvc, adapter, cfg.AdapterTimeout, logger)
	settlementSvc := settlement.NewService(settlementRepo, disputeRepo, accessSvc, activitySvc, logger)
	userSvc := user.NewService(userRepo, logger)
	authSvc := auth.NewService(userRepo, sessionRepo, cfg.SessionTTL, logger)

	// API server
	apiServer := httpapi.NewServer(disputeSvc, partySvc, mediationSvc, settlementSvc, activitySvc, authSvc, userSvc, cfg.SessionCookieName, cfg.SessionCookieSecure)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// expired auth sessions are reaped in the background
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := sessionRepo.DeleteExpired(context.Background()); err == nil && n > 0 {
				logger.Debug().Int("count", n).Msg("expired sessions deleted")
			}
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
