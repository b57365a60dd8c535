package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/TahjibNil75/trackIT/internal/api/http"
	"github.com/TahjibNil75/trackIT/internal/api/http/handlers"
	"github.com/TahjibNil75/trackIT/internal/auth"
	"github.com/TahjibNil75/trackIT/internal/config"
	"github.com/TahjibNil75/trackIT/internal/events"
	"github.com/TahjibNil75/trackIT/internal/observability"
	"github.com/TahjibNil75/trackIT/internal/persistence"
	"github.com/TahjibNil75/trackIT/internal/repository"
	"github.com/TahjibNil75/trackIT/internal/service"
	"github.com/TahjibNil75/trackIT/internal/storage"
	"github.com/TahjibNil75/trackIT/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if pool == nil {
		logger.Fatal("POSTGRES_DSN is required to serve requests")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	gcsStore, err := storage.NewGCSStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}
	var objectStore storage.ObjectStore
	if gcsStore != nil {
		objectStore = gcsStore
		defer gcsStore.Close() //nolint:errcheck
	}

	metrics := observability.NewMetrics()

	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(logger, cfg.Notification)
	notifyWorker := worker.NewNotificationWorker(notifications, logger, 0)
	notifyWorker.Subscribe(dispatcher)
	notifyWorker.Start(ctx)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		UserRepo:       userRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: repository.NewAttachmentRepository(pool),
		HistoryRepo:    repository.NewTicketHistoryRepository(pool),
		Transactor:     repository.NewTransactor(pool),
		Uploader:       storage.NewUploader(objectStore, cfg.Storage.MaxUploadBytes),
		Dispatcher:     dispatcher,
		Logger:         logger,
		Options:        cfg.Tickets,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	var dashboardCache service.DashboardCache
	if cache := persistence.NewRedisCache(redis, cfg.App.Name+":"); cache != nil {
		dashboardCache = cache
	}
	analyticsService := service.NewAnalyticsService(service.AnalyticsDependencies{
		AnalyticsRepo: repository.NewAnalyticsRepository(pool),
		Cache:         dashboardCache,
		CacheTTL:      cfg.Analytics.CacheTTL(),
		Metrics:       metrics,
		Logger:        logger,
	})

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Storage.MaxUploadBytes) * 5,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Users:          handlers.NewUsersHandler(service.NewUserService(userRepo)),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	notifyWorker.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
