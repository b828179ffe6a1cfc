// Command server starts the helpdesk portal HTTP API.
//
//	@title						Symetrix Helpdesk API
//	@version					1.0
//	@description				Session, directory, notification and ticket API of the Symetrix support portal.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	_ "github.com/akilawedasinghe/symetrix/docs"
	"github.com/akilawedasinghe/symetrix/internal/api"
	"github.com/akilawedasinghe/symetrix/internal/core/ports"
	"github.com/akilawedasinghe/symetrix/internal/core/service"
	"github.com/akilawedasinghe/symetrix/internal/core/session"
	"github.com/akilawedasinghe/symetrix/internal/infrastructure/db/memory"
	"github.com/akilawedasinghe/symetrix/internal/infrastructure/db/mongo"
	"github.com/akilawedasinghe/symetrix/internal/infrastructure/db/redis"
	"github.com/akilawedasinghe/symetrix/internal/infrastructure/http/handlers"
	"github.com/akilawedasinghe/symetrix/internal/infrastructure/queue"
	"github.com/akilawedasinghe/symetrix/internal/pkg/config"
	"github.com/akilawedasinghe/symetrix/pkg/logger"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const (
	activityFeedCapacity = 1000
	dedupTTL             = 24 * time.Hour
	ledgerSweepInterval  = time.Minute
	shutdownTimeout      = 10 * time.Second
)

// repositories bundles the persistence ports of the selected storage driver.
type repositories struct {
	users      ports.UserRepository
	tickets    ports.TicketRepository
	messages   ports.MessageRepository
	activities ports.ActivityRepository
}

// kv bundles the session-side stores of the selected session driver.
type kv struct {
	snapshots session.SnapshotStore
	limiter   ports.LoginLimiter
	dedup     service.DedupChecker
}

func main() {
	cfg := config.Load()

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "helpdesk",
		Env:     cfg.Env,
	})
	log := logger.For("main")
	log.Info().
		Str("version", version).
		Str("build_date", buildDate).
		Str("storage", cfg.StorageDriver).
		Str("sessions", cfg.SessionStore).
		Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := make(map[string]handlers.Check)

	repos, closeStorage, err := openStorage(ctx, cfg, checks)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer closeStorage()

	stores, closeKV, err := openKV(ctx, cfg, checks)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session store")
	}
	defer closeKV()

	if cfg.Auth.SeedDemoData {
		added, err := service.SeedDirectory(ctx, repos.users, cfg.Auth.SeedPassword, bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed directory")
		}
		log.Info().Int("added", added).Msg("demo directory seeded")
	}

	// --- Services ---
	notifications := service.NewNotificationService(cfg.Auth.SeedDemoData, cfg.TokenTTL, logger.For("notifications"))
	go notifications.Run(ctx, ledgerSweepInterval)
	activitySvc := service.NewActivityService(repos.activities, repos.tickets, stores.dedup, notifications, logger.For("activities"))

	dispatcher := queue.NewDispatcher(cfg.Dispatcher.Workers, activitySvc, logger.For("dispatcher"))
	dispatcher.Start(ctx)

	authSvc := service.NewAuthService(repos.users, cfg.JWTSecret, cfg.TokenTTL, logger.For("auth"),
		service.WithLoginLimiter(stores.limiter),
		service.WithActivityPublisher(dispatcher),
		service.WithSessionObserver(notifications),
		service.WithLatency(cfg.Auth.Latency),
	)
	ticketSvc := service.NewTicketService(repos.tickets, repos.messages, repos.activities, repos.users, dispatcher, logger.For("tickets"))
	knowledgeSvc := service.NewKnowledgeService(memory.NewArticleRepository(service.DemoArticles(time.Now().UTC())), logger.For("knowledge"))

	e := api.NewRouter(api.Dependencies{
		Log:              logger.For("http"),
		JWTSecret:        cfg.JWTSecret,
		AllowStaffSignup: cfg.Auth.AllowStaffSelfRegistration,
		AuthService:      authSvc,
		TicketService:    ticketSvc,
		KnowledgeService: knowledgeSvc,
		Ledgers:          notifications,
		Sessions:         stores.snapshots,
		HealthChecks:     checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("listening")
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	stop()
	dispatcher.Wait()
	log.Info().Msg("stopped")
}

// openStorage returns the repositories of cfg.StorageDriver and registers its
// readiness check.
func openStorage(ctx context.Context, cfg *config.Config, checks map[string]handlers.Check) (repositories, func(), error) {
	if cfg.StorageDriver != config.DriverMongo {
		return repositories{
			users:      memory.NewUserRepository(),
			tickets:    memory.NewTicketRepository(),
			messages:   memory.NewMessageRepository(),
			activities: memory.NewActivityRepository(activityFeedCapacity),
		}, func() {}, nil
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "helpdesk",
	})
	if err != nil {
		return repositories{}, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(ctx)
	}

	users := mongo.NewUserRepository(db)
	tickets := mongo.NewTicketRepository(db)
	messages := mongo.NewMessageRepository(db)
	activities := mongo.NewActivityRepository(db)
	if err := mongo.EnsureIndexes(ctx, users, tickets, messages, activities); err != nil {
		closeFn()
		return repositories{}, nil, err
	}

	checks["mongodb"] = handlers.MongoCheck(db)
	return repositories{users: users, tickets: tickets, messages: messages, activities: activities}, closeFn, nil
}

// openKV returns the session snapshot store, login limiter and activity
// dedup of cfg.SessionStore and registers its readiness check.
func openKV(ctx context.Context, cfg *config.Config, checks map[string]handlers.Check) (kv, func(), error) {
	if cfg.SessionStore != config.DriverRedis {
		return kv{
			snapshots: memory.NewSnapshotStore(cfg.TokenTTL),
			limiter:   memory.NewLoginLimiter(cfg.Auth.LoginMaxFailures, cfg.Auth.LoginLockout),
			dedup:     memory.NewDedupChecker(dedupTTL),
		}, func() {}, nil
	}

	client, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return kv{}, nil, err
	}

	checks["redis"] = handlers.RedisCheck(client)
	return kv{
		snapshots: redis.NewSnapshotStore(client, cfg.TokenTTL),
		limiter:   redis.NewLoginLimiter(client, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginLockout),
		dedup:     redis.NewDedupChecker(client),
	}, func() { _ = client.Close() }, nil
}
