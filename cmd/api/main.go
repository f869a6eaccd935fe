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

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-service/internal/api/http"
	"github.com/spec-kit/complaint-service/internal/api/http/handlers"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/persistence"
	"github.com/spec-kit/complaint-service/internal/realtime"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/repository/memory"
	"github.com/spec-kit/complaint-service/internal/service"
	"github.com/spec-kit/complaint-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

type repositories struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	complaints  repository.ComplaintRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	repos := openRepositories(pg, cfg.Postgres, logger)

	var redis *persistence.Redis
	if cfg.Realtime.Backplane == config.BackplaneRedis {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	hub := realtime.NewHub(logger, metrics, cfg.Realtime.SendBuffer)

	var sink service.EventSink = hub
	var relay worker.Relay
	if redis != nil {
		redisRelay := realtime.NewRedisRelay(redis.Client, cfg.Realtime.RedisChannel, hub, logger)
		sink, relay = redisRelay, redisRelay
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:       repos.users,
		DepartmentRepo: repos.departments,
		TokenManager:   tokens,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo:  repos.complaints,
		UserRepo:       repos.users,
		DepartmentRepo: repos.departments,
		CommentRepo:    repos.comments,
		AttachmentRepo: repos.attachments,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
	})
	adminService := service.NewAdminService(service.AdminDependencies{
		ComplaintRepo:    repos.complaints,
		UserRepo:         repos.users,
		ComplaintService: complaintService,
	})
	catalogService := service.NewCatalogService(repos.departments)
	var seedService *service.SeedService
	if cfg.Seed.Enabled {
		seedService = service.NewSeedService(repos.departments, repos.users, cfg.Auth.BcryptCost, logger)
	}
	authenticator := auth.NewAuthenticator(tokens, repos.users)

	notifications := worker.NewNotificationWorker(
		service.NewNotificationService(dispatcher, sink, logger, metrics), relay, logger)
	notifications.Start(ctx)

	readiness := map[string]handlers.Pinger{}
	if pg.PoolHandle() != nil {
		readiness["postgres"] = pg
	}
	if redis != nil {
		readiness["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:          handlers.NewAuthHandler(authService),
		Complaints:    handlers.NewComplaintsHandler(complaintService),
		Admin:         handlers.NewAdminHandler(adminService),
		Catalog:       handlers.NewCatalogHandler(catalogService, seedService, logger),
		Authenticator: authenticator,
		AuthLimiter:   httptransport.NewRateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		Gatherer:      registry,
		SeedEnabled:   cfg.Seed.Enabled,
	})

	wsHandler := realtime.NewHandler(hub, authenticator, complaintService, cfg.App.CORSOrigins, logger)
	realtimeServer := &http.Server{
		Addr:              cfg.Realtime.Addr(),
		Handler:           realtime.NewMux(wsHandler, cfg.App.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("realtime listening", zap.String("addr", realtimeServer.Addr))
		if err := realtimeServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("realtime listen", zap.Error(err))
		}
	}()
	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	if err := realtimeServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("realtime shutdown", zap.Error(err))
	}
	hub.Close()
	cancel()
	notifications.Wait()
}

func openRepositories(pg *persistence.Postgres, cfg config.PostgresConfig, logger *zap.Logger) repositories {
	pool := pg.PoolHandle()
	if pool == nil {
		logger.Warn("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return repositories{
			users:       store.Users(),
			departments: store.Departments(),
			complaints:  store.Complaints(),
			comments:    store.Comments(),
			attachments: store.Attachments(),
		}
	}

	if cfg.RunMigrations {
		if err := persistence.RunMigrations(pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	return repositories{
		users:       repository.NewUserRepository(pool),
		departments: repository.NewDepartmentRepository(pool),
		complaints:  repository.NewComplaintRepository(pool),
		comments:    repository.NewCommentRepository(pool),
		attachments: repository.NewAttachmentRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
