package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"barrierbet/config"
	"barrierbet/database"
	"barrierbet/domain/interfaces"
	"barrierbet/domain/services"
	"barrierbet/infrastructure"
	"barrierbet/infrastructure/observability"
	"barrierbet/repository"
	"barrierbet/repository/sqlite"
	"barrierbet/server"

	log "github.com/sirupsen/logrus"
)

const (
	connectTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// storage is one opened storage engine with its repositories
type storage struct {
	users    interfaces.UserRepository
	sessions interfaces.GameSessionRepository
	history  interfaces.BalanceHistoryRepository
	ping     func(ctx context.Context) error
	close    func()
}

// app is the wired dependency graph shared by all commands
type app struct {
	cfg     *config.Config
	store   *storage
	nats    *infrastructure.NATSClient
	metrics *observability.MetricsProvider

	publisher  interfaces.EventPublisher
	ledger     interfaces.AccountLedger
	settlement interfaces.SessionSettlement
	auth       interfaces.AuthService
	users      interfaces.UserService
	stats      interfaces.StatsService
	admin      interfaces.AdminService
}

// newApp opens storage, connects the event bus and builds the services.
// Callers must call close when done.
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Get()
	a := &app{cfg: cfg}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	log.WithField("driver", cfg.StorageDriver).Info("Opening storage...")
	store, err := openStorage(connectCtx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	log.Info("Storage opened successfully")

	a.metrics = observability.NewMetricsProvider(cfg)
	if err := a.metrics.Initialize(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	publisher, err := a.connectEvents(connectCtx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.publisher = publisher

	hasher := infrastructure.NewBcryptHasher(0)
	identity := infrastructure.NewJWTIdentityProvider(cfg.JWTSecret, cfg.JWTTTL)

	a.ledger = services.NewAccountLedger(store.users, store.history, publisher, a.metrics, cfg.LedgerMaxAttempts)
	a.settlement = services.NewSessionSettlement(a.ledger, store.sessions, publisher)
	a.auth = services.NewAuthService(store.users, store.history, publisher, hasher, identity)
	a.users = services.NewUserService(store.users, store.sessions)
	a.stats = services.NewStatsService(store.sessions)
	a.admin = services.NewAdminService(store.users, store.sessions, a.ledger)

	return a, nil
}

// connectEvents builds the event publisher. Local handlers feed OTel metrics
// and the NATS bus is attached when servers are configured.
func (a *app) connectEvents(ctx context.Context) (interfaces.EventPublisher, error) {
	if a.cfg.NATSServers == "" && !a.cfg.OTelEnabled {
		log.Debug("No event consumers configured, events are dropped")
		return infrastructure.NewNoopEventPublisher(), nil
	}

	mapper := infrastructure.NewEventSubjectMapper()

	var bus infrastructure.MessagePublisher
	if a.cfg.NATSServers != "" {
		log.WithField("servers", a.cfg.NATSServers).Info("Connecting to NATS...")
		client := infrastructure.NewNATSClient(a.cfg.NATSServers)
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.nats = client
		if err := client.EnsureStream(infrastructure.DomainEventStream, mapper.GetAllSubjects()); err != nil {
			return nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}
		bus = client
		log.Info("NATS connection established successfully")
	}

	publisher := infrastructure.NewEventPublisher(bus, mapper)
	a.metrics.RegisterEventHandlers(publisher)
	return publisher, nil
}

// services returns the set the HTTP server delegates to
func (a *app) services() server.Services {
	return server.Services{
		Auth:       a.auth,
		Settlement: a.settlement,
		Ledger:     a.ledger,
		Users:      a.users,
		Stats:      a.stats,
		Admin:      a.admin,
	}
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.nats != nil {
		if err := a.nats.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
	if a.metrics != nil {
		if err := a.metrics.Shutdown(ctx); err != nil {
			log.WithError(err).Error("Error shutting down metrics provider")
		}
	}
	if a.store != nil {
		log.Info("Closing storage...")
		a.store.close()
	}
}

// openStorage opens the configured engine and brings its schema up to date
func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqliteStorage(db), nil

	case config.StorageDriverPostgres:
		databaseURL := cfg.GetDatabaseURL()
		if err := database.RunMigrationsWithURL(databaseURL); err != nil {
			return nil, err
		}
		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &storage{
			users:    repository.NewUserRepository(db),
			sessions: repository.NewGameSessionRepository(db),
			history:  repository.NewBalanceHistoryRepository(db),
			ping:     db.Ping,
			close:    db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func sqliteStorage(db *sql.DB) *storage {
	return &storage{
		users:    sqlite.NewUserStore(db),
		sessions: sqlite.NewGameSessionStore(db),
		history:  sqlite.NewBalanceHistoryStore(db),
		ping:     db.PingContext,
		close: func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Error("Error closing sqlite database")
			}
		},
	}
}
