package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/config"
	"github.com/prperemyshlev/wms-server/pkg/database"
	"github.com/prperemyshlev/wms-server/pkg/messaging"
	"github.com/prperemyshlev/wms-server/pkg/observability"
)

const serviceName = "wms-server"

type Infrastructure interface {
	Postgres() *database.Postgres
	Redis() *database.Redis
	// RabbitMQ is nil when AMQP_URL is not configured
	RabbitMQ() *messaging.RabbitMQ
	Logger() *zap.Logger
	MetricsHandler() http.Handler
	MeterProvider() *metric.MeterProvider

	Shutdown(ctx context.Context) error
}

type infrastructure struct {
	postgres       *database.Postgres
	redis          *database.Redis
	rabbitmq       *messaging.RabbitMQ
	logger         *zap.Logger
	metricsHandler http.Handler
	meterProvider  *metric.MeterProvider
}

var _ Infrastructure = &infrastructure{}

func NewInfrastructure(ctx context.Context, cfg config.Config) (*infrastructure, error) {
	i := &infrastructure{}

	logger, err := observability.InitLogger(cfg.Env, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	i.logger = logger

	postgres, err := database.NewPostgres(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	i.postgres = postgres

	if err := postgres.Migrate(logger); err != nil {
		_ = i.postgres.Close()
		return nil, fmt.Errorf("failed to migrate PostgreSQL: %w", err)
	}

	redis, err := database.NewRedis(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		_ = i.postgres.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	i.redis = redis

	if cfg.AMQP.URL != "" {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			_ = i.postgres.Close()
			_ = i.redis.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		i.rabbitmq = rabbitmq
	} else {
		logger.Info("AMQP_URL not set, audit events will not be published")
	}

	meterProvider, metricsHandler, err := observability.InitTelemetry(serviceName)
	if err != nil {
		_ = i.closeConnections()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	i.meterProvider = meterProvider
	i.metricsHandler = metricsHandler

	return i, nil
}

func (i *infrastructure) Postgres() *database.Postgres {
	return i.postgres
}

func (i *infrastructure) Redis() *database.Redis {
	return i.redis
}

func (i *infrastructure) RabbitMQ() *messaging.RabbitMQ {
	return i.rabbitmq
}

func (i *infrastructure) Logger() *zap.Logger {
	return i.logger
}

func (i *infrastructure) MetricsHandler() http.Handler {
	return i.metricsHandler
}

func (i *infrastructure) MeterProvider() *metric.MeterProvider {
	return i.meterProvider
}

func (i *infrastructure) closeConnections() error {
	errs := []error{i.postgres.Close(), i.redis.Close()}
	if i.rabbitmq != nil {
		errs = append(errs, i.rabbitmq.Close())
	}
	return errors.Join(errs...)
}

func (i *infrastructure) Shutdown(ctx context.Context) error {
	errs := make(chan error, 2)

	go func() { errs <- i.closeConnections() }()
	go func() { errs <- observability.Shutdown(ctx, i.meterProvider, i.logger) }()

	return errors.Join(<-errs, <-errs)
}
