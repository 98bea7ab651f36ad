package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/config"
	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/repository"
	"github.com/prperemyshlev/wms-server/internal/service"
	"github.com/prperemyshlev/wms-server/internal/utils"
	"github.com/prperemyshlev/wms-server/pkg/database"
	"github.com/prperemyshlev/wms-server/pkg/messaging"
	"github.com/prperemyshlev/wms-server/pkg/observability"
)

func main() {
	interval := flag.Duration("interval", 0, "repeat the purge at this interval; run once when zero")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := observability.InitLogger(cfg.Env, "wms-housekeeping")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger, *interval); err != nil {
		logger.Error("housekeeping failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, interval time.Duration) error {
	postgres, err := database.NewPostgres(cfg.Postgres.DSN())
	if err != nil {
		return err
	}
	defer postgres.Close()

	var publisher service.EventPublisher
	if cfg.AMQP.URL != "" {
		mq, err := messaging.NewRabbitMQ(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer mq.Close()
		publisher = mq
	}

	repos := repository.NewRepositories(postgres)
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)
	maintenance := service.NewMaintenanceService(
		service.NewRefreshTokenService(repos.Token, jwtManager),
		service.NewAuditService(repos.Audit, publisher, logger),
		logger,
	)

	if _, err := maintenance.PurgeRefreshTokens(ctx, domain.SystemActor); err != nil || interval <= 0 {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("housekeeping stopped")
			return nil
		case <-ticker.C:
			if _, err := maintenance.PurgeRefreshTokens(ctx, domain.SystemActor); err != nil {
				logger.Warn("purge failed, retrying on next tick", zap.Error(err))
			}
		}
	}
}
