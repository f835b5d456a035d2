// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"misintel/internal/adapter/social"
	"misintel/internal/adapter/storage"
	"misintel/internal/config"
	"misintel/internal/server"
	"misintel/internal/service/factcheck"
	"misintel/internal/service/monitor"
	"misintel/internal/service/scan"
	traceService "misintel/internal/service/trace"
	viralService "misintel/internal/service/viral"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.Environment)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize optional dependencies
	var scanStore scan.Store
	if cfg.Database.Enabled {
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize database")
		}
		defer db.Close()

		store := storage.NewScanStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure database schema")
		}
		scanStore = store
	}

	var natsConn *nats.Conn
	if cfg.NATS.Enabled {
		natsConn, err = initNATS(cfg.NATS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer natsConn.Close()
	}

	// Initialize the scoring engines. ML and verification providers are
	// optional external collaborators; none ship with the service.
	scorer := factcheck.NewScorer(nil, nil, log.Logger)

	tracker := viralService.NewTracker(viralService.TrackerConfig{
		ViralThreshold: cfg.Analysis.ViralThreshold,
		SpreadRate:     cfg.Analysis.SpreadRate,
	}, log.Logger)

	tracer := traceService.NewTracer(traceService.TracerConfig{
		Rand: demoRand(cfg.Monitor.DemoSeed),
	}, log.Logger)

	// Initialize the social monitor and its collectors
	mon := monitor.NewMonitor(monitor.MonitorConfig{
		MaxResults: cfg.Monitor.MaxResults,
	}, log.Logger)
	registerCollectors(mon, cfg)

	// Initialize the scan pipeline
	scanService := scan.NewService(
		mon,
		scorer,
		tracker,
		scanStore,
		natsConn,
		scan.ServiceConfig{
			EventsTopic:         cfg.Analysis.EventsTopic,
			HighRiskThreshold:   cfg.Analysis.HighRiskThreshold,
			MediumRiskThreshold: cfg.Analysis.MediumRiskThreshold,
		},
		log.Logger,
	)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		natsConn,
		scorer,
		tracker,
		tracer,
		scanService,
		cfg.Analysis.EventsTopic,
	)

	// Start HTTP server
	go func() {
		log.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info().Msg("shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// setupLogging configures the global logger
func setupLogging(environment string) {
	zerolog.TimeFieldFormat = time.RFC3339
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// registerCollectors wires the configured platform collectors into the
// monitor, falling back to the simulated source when none are available
func registerCollectors(mon *monitor.Monitor, cfg config.Config) {
	twitterConfig := social.TwitterConfig{
		BearerToken:    cfg.Twitter.BearerToken,
		ConsumerKey:    cfg.Twitter.ConsumerKey,
		ConsumerSecret: cfg.Twitter.ConsumerSecret,
		AccessToken:    cfg.Twitter.AccessToken,
		AccessSecret:   cfg.Twitter.AccessSecret,
	}

	if twitterConfig.Configured() {
		source, err := social.NewTwitterSource(twitterConfig, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("twitter collector unavailable")
		} else {
			mon.AddSource(source)
		}
	} else {
		log.Info().Msg("twitter credentials missing, collector disabled")
	}

	if cfg.Reddit.Enabled {
		mon.AddSource(social.NewRedditSource(social.RedditConfig{
			UserAgent: cfg.Reddit.UserAgent,
		}, log.Logger))
	}

	if len(mon.SourceNames()) == 0 {
		log.Info().Msg("no collectors configured, using simulated source")
		mon.AddSource(monitor.NewDemoSource(demoSeed(cfg.Monitor.DemoSeed)))
	}
}

// demoSeed resolves the configured seed, picking a time-based one when unset
func demoSeed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// demoRand builds the tracer randomness source from the configured seed
func demoRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(demoSeed(seed)))
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
