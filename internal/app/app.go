package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/moimsport/matchfeed/external/footballdata"
	"github.com/moimsport/matchfeed/internal/config"
	"github.com/moimsport/matchfeed/internal/infrastructure/repository/postgres"
	"github.com/moimsport/matchfeed/internal/interfaces/httpapi"
	"github.com/moimsport/matchfeed/internal/platform/logging"
	"github.com/moimsport/matchfeed/internal/platform/resilience"
	"github.com/moimsport/matchfeed/internal/scheduler"
	"github.com/moimsport/matchfeed/internal/usecase"
)

// App bundles the HTTP server, the daily sync scheduler, and the shared
// database handle so the entrypoint can manage their lifecycles together.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler

	db *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	matchRepo := postgres.NewMatchRepository(db)

	footballClient := footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:    cfg.FootballDataBaseURL,
		Token:      cfg.FootballDataToken,
		Timeout:    cfg.FootballDataTimeout,
		MaxRetries: cfg.FootballDataMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballDataCircuitEnabled,
			FailureThreshold: cfg.FootballDataCircuitFailureCount,
			OpenTimeout:      cfg.FootballDataCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballDataCircuitHalfOpenMaxReq,
		},
	})

	location, err := time.LoadLocation(cfg.SyncTimezone)
	if err != nil {
		logger.Warn("invalid sync timezone, falling back to local",
			"timezone", cfg.SyncTimezone,
			"error", err,
		)
		location = time.Local
	}

	ingestionSvc := usecase.NewIngestionService(matchRepo, logger)
	syncSvc := usecase.NewSyncService(
		footballClient,
		ingestionSvc,
		cfg.SyncCompetitions,
		cfg.SyncWindowDays,
		location,
		logger,
	)
	querySvc := usecase.NewMatchQueryService(matchRepo)

	var sched *scheduler.Scheduler
	if cfg.SyncEnabled {
		sched, err = scheduler.New(syncSvc, cfg.SyncDailyHour, cfg.SyncDailyMinute, location, cfg.SyncPassTimeout, logger)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("build scheduler: %w", err)
		}
	}

	handler := httpapi.NewHandler(querySvc, syncSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:    server,
		Scheduler: sched,
		db:        db,
	}, nil
}

// Close releases resources not covered by server shutdown.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}

	return a.db.Close()
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(cfg.DBURL); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Connect("postgres", dsn, opts...)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
