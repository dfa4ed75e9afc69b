package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/timeclock/internal/api/http"
	"github.com/spec-kit/timeclock/internal/api/http/handlers"
	"github.com/spec-kit/timeclock/internal/auth"
	"github.com/spec-kit/timeclock/internal/broker"
	"github.com/spec-kit/timeclock/internal/clock"
	"github.com/spec-kit/timeclock/internal/config"
	"github.com/spec-kit/timeclock/internal/events"
	"github.com/spec-kit/timeclock/internal/observability"
	"github.com/spec-kit/timeclock/internal/persistence"
	"github.com/spec-kit/timeclock/internal/presence"
	"github.com/spec-kit/timeclock/internal/repository"
	"github.com/spec-kit/timeclock/internal/repository/memory"
	"github.com/spec-kit/timeclock/internal/service"
	"github.com/spec-kit/timeclock/internal/storage"
	"github.com/spec-kit/timeclock/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err := observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type repositories struct {
	users      repository.UserRepository
	timesheets repository.TimesheetRepository
	messages   repository.MessageRepository
}

func serve(parent context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	var repos repositories
	if pool := pg.PoolHandle(); pool != nil {
		repos = repositories{
			users:      repository.NewUserRepository(pool),
			timesheets: repository.NewTimesheetRepository(pool),
			messages:   repository.NewMessageRepository(pool),
		}
	} else {
		store := memory.NewStore()
		repos = repositories{users: store.Users(), timesheets: store.Timesheets(), messages: store.Messages()}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	presenceStore := presence.NewRedisStore(redis.Client, redis.KeyPrefix)

	objects, err := newObjectStorage(ctx, cfg.Minio, logger)
	if err != nil {
		return err
	}

	clk := clock.NewSystem(cfg.App.Location())
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	accountService := service.NewAccountService(*cfg, service.AccountDependencies{
		UserRepo:   repos.users,
		Storage:    objects,
		Dispatcher: dispatcher,
		Clock:      clk,
		Logger:     logger,
	})
	statusService := service.NewStatusService(service.StatusDependencies{
		UserRepo:      repos.users,
		TimesheetRepo: repos.timesheets,
		Presence:      presenceStore,
		Dispatcher:    dispatcher,
		Clock:         clk,
		Metrics:       metrics,
		Logger:        logger,
	})
	hoursService := service.NewHoursService(service.HoursDependencies{
		UserRepo:      repos.users,
		TimesheetRepo: repos.timesheets,
		Clock:         clk,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo: repos.messages,
		UserRepo:    repos.users,
		Dispatcher:  dispatcher,
		Clock:       clk,
	})

	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))
	worker.StartPresenceWorker(service.NewPresenceProjector(dispatcher, presenceStore, statusService.MarkPresenceStale))

	if cfg.AMQP.Enabled() {
		rabbit, err := broker.NewRabbitMQClient(cfg.AMQP)
		if err != nil {
			return fmt.Errorf("failed to connect rabbitmq: %w", err)
		}
		exporter := broker.New(rabbit)
		defer exporter.Close() //nolint:errcheck
		worker.StartExportWorker(service.NewExportService(dispatcher, exporter, cfg.AMQP, logger))
		logger.Info("event export enabled",
			zap.String("timesheet_queue", cfg.AMQP.TimesheetQueue),
			zap.String("status_queue", cfg.AMQP.StatusQueue))
	}

	if err := statusService.SyncPresence(ctx); err != nil {
		logger.Warn("failed to seed presence board", zap.Error(err))
	}

	checks := []handlers.DependencyCheck{{Name: "redis", Ping: redis.Ping}}
	if pg.Enabled() {
		checks = append(checks, handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping, Required: true})
	}

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.MaxAvatarBytes + 64<<10,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Users:          handlers.NewUsersHandler(accountService),
		Status:         handlers.NewStatusHandler(statusService),
		Hours:          handlers.NewHoursHandler(hoursService),
		Messages:       handlers.NewMessagesHandler(messageService),
		Admin:          handlers.NewAdminHandler(accountService),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: auth.NewAuthMiddleware(accountService.TokenManager(), repos.users),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		errCh <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case sig := <-shutdownSignal():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}
	return app.Shutdown()
}

func newObjectStorage(ctx context.Context, cfg config.MinioConfig, logger *zap.Logger) (*storage.Storage, error) {
	if !cfg.Enabled() {
		logger.Warn("MINIO_ENDPOINT not provided; avatar uploads disabled")
		return nil, nil
	}
	client, err := storage.NewMinioClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init minio: %w", err)
	}
	objects := storage.NewStorage(client)
	if err := objects.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure avatar bucket: %w", err)
	}
	return objects, nil
}

func shutdownSignal() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
