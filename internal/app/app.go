package app

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/fixtures"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/repository/sqlite"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

// Runtime holds the opened backends for one process.
type Runtime struct {
	Config *config.Config
	Logger *zap.Logger
	Repos  repository.Repositories
	Redis  *persistence.Redis
	// Deps are probed by the readiness endpoint.
	Deps map[string]handlers.Pinger

	closers []func()
}

// Open connects the configured store, applies migrations when enabled and
// connects Redis when an address is set.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	rt := &Runtime{Config: cfg, Logger: logger, Deps: map[string]handlers.Pinger{}}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pg.Close)
		if cfg.Store.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				rt.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		rt.Repos = repository.NewPostgres(pg.PoolHandle())
		rt.Deps["postgres"] = pg
	case config.DriverSQLite:
		db, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		rt.closers = append(rt.closers, db.Close)
		if cfg.Store.RunMigrations {
			if err := persistence.RunSQLiteMigrations(ctx, db.DB, logger); err != nil {
				rt.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		rt.Repos = sqlite.New(db.DB)
		rt.Deps["sqlite"] = db
	case config.DriverMemory:
		rt.Repos = memory.New()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if redis := persistence.NewRedis(ctx, cfg.Redis, logger); redis != nil {
		rt.Redis = redis
		rt.closers = append(rt.closers, redis.Close)
		rt.Deps["redis"] = redis
	}
	return rt, nil
}

// Close releases backends in reverse order of opening.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

// Seed loads the fixture set (the embedded default or SEED_FILE) into the
// store. It reports whether anything was written.
func (rt *Runtime) Seed(ctx context.Context, force bool) (bool, error) {
	set, err := loadFixtures(rt.Config.Seed.File)
	if err != nil {
		return false, err
	}
	return fixtures.Apply(ctx, rt.Repos, set, force)
}

func loadFixtures(path string) (*fixtures.Set, error) {
	if path == "" {
		return fixtures.Default()
	}
	return fixtures.Load(path)
}

// Sinks returns the event sinks enabled by configuration.
func (rt *Runtime) Sinks() []events.Sink {
	if !rt.Redis.Enabled() {
		return nil
	}
	return []events.Sink{events.NewRedisStreamSink(rt.Redis.Client, rt.Config.Notification.Stream)}
}

// Server is the assembled HTTP application.
type Server struct {
	App     *fiber.App
	Tickets *service.TicketService
	Metrics *observability.Metrics
}

// ServerOptions carries everything NewServer wires together.
type ServerOptions struct {
	Config *config.Config
	Logger *zap.Logger
	Repos  repository.Repositories
	Deps   map[string]handlers.Pinger
	Sinks  []events.Sink
	// Clock overrides time.Now for the services.
	Clock service.Clock
}

// NewServer builds services, handlers and routes over the given repositories.
func NewServer(opts ServerOptions) *Server {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	repos := opts.Repos

	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := service.NewNotificationService(dispatcher, logger, opts.Sinks...)
	worker.StartNotificationWorker(notifications)

	assigner := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:      repos.Tickets,
		UserRepo:        repos.Users,
		HistoryRepo:     repos.History,
		Dispatcher:      dispatcher,
		Logger:          logger,
		Clock:           opts.Clock,
		EnforceCapacity: cfg.Assignment.EnforceCapacity,
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   repos.Tickets,
		CategoryRepo: repos.Categories,
		UserRepo:     repos.Users,
		HistoryRepo:  repos.History,
		TimeLogRepo:  repos.TimeLogs,
		Assigner:     assigner,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Clock:        opts.Clock,
		Options: service.TicketOptions{
			StrictTransitions: cfg.Tickets.StrictTransitions,
			DefaultSLAHours:   cfg.Tickets.DefaultSLAHours,
		},
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:       repos.Users,
		DepartmentRepo: repos.Departments,
	})
	users := service.NewUserService(service.UserDependencies{
		UserRepo:       repos.Users,
		DepartmentRepo: repos.Departments,
		CategoryRepo:   repos.Categories,
		RoleRepo:       repos.Roles,
		Logger:         logger,
	})
	metricsService := service.NewMetricsService(repos.Tickets)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, opts.Deps),
		Users:          handlers.NewUsersHandler(authService, users),
		Tickets:        handlers.NewTicketsHandler(tickets),
		Metrics:        handlers.NewMetricsHandler(metricsService, metrics),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.Users),
		EnforceAuth:    cfg.Auth.Enforce,
	})

	return &Server{App: app, Tickets: tickets, Metrics: metrics}
}
