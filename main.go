package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/Billy-Davies-2/baseball-draft-sim/internal/clickhouse"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/config"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/dal"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/draft"
	grpcserver "github.com/Billy-Davies-2/baseball-draft-sim/internal/grpc"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/handlers"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/logger"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/pubsub"
	"github.com/Billy-Davies-2/baseball-draft-sim/internal/simulation"
)

// eventBus is what both NATS flavours provide
type eventBus interface {
	pubsub.Upstream
	Connected() bool
	Close()
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger first
	logger.Init(cfg.LogLevel)
	logger.Info("Starting baseball draft simulator", "environment", cfg.Environment)

	dataStore, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize data store", "error", err, "driver", cfg.DBDriver)
		os.Exit(1)
	}
	defer closeStore()

	bus, err := openEventBus(cfg)
	if err != nil {
		logger.Error("Failed to initialize NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()
	ps := pubsub.NewWithUpstream(bus)

	analytics, err := openAnalytics(cfg)
	if err != nil {
		logger.Error("Failed to initialize ClickHouse", "error", err, "address", cfg.ClickHouseAddr)
		os.Exit(1)
	}
	defer analytics.Close()

	engine := draft.NewEngine(draft.WithMaxRounds(cfg.MaxRounds))
	sim := simulation.NewService(dataStore,
		simulation.WithEngine(engine),
		simulation.WithPublisher(ps),
		simulation.WithRecorder(analytics),
		simulation.WithLanguage(cfg.LotteryLang),
	)

	// gRPC
	lis, err := net.Listen("tcp", "0.0.0.0:"+cfg.GRPCPort)
	if err != nil {
		logger.Error("Failed to listen for gRPC", "error", err, "port", cfg.GRPCPort)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	grpcserver.Register(grpcServer, grpcserver.NewServer(sim, ps))
	go func() {
		logger.Info("gRPC server starting", "address", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
		}
	}()

	// HTTP
	api := handlers.NewAPIHandlers(dataStore, sim, ps, analytics)
	api.AddCheck("nats", !cfg.IsDevelopment(), func(context.Context) error {
		if !bus.Connected() {
			return errors.New("not connected")
		}
		return nil
	})
	api.AddCheck("clickhouse", false, analytics.Ping)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           handlers.NewRouter(api, cfg.IsDevelopment()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown did not finish cleanly", "error", err)
	}
	grpcServer.GracefulStop()
}

func openStore(cfg config.Config) (dal.DraftDAL, func(), error) {
	switch cfg.DBDriver {
	case "sqlite":
		s, err := dal.NewSQLiteDAL(cfg.SQLiteFile)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		logger.Info("Connected to SQLite database", "file", cfg.SQLiteFile)
		return s, func() { s.Close() }, nil
	case "postgres":
		p, err := dal.NewPostgresDAL(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		logger.Info("Connected to Postgres database")
		return p, func() { p.Close() }, nil
	default:
		logger.Info("Using in-memory data store")
		return dal.NewMemoryDAL(), func() {}, nil
	}
}

// openEventBus uses embedded NATS in development, real NATS in production
func openEventBus(cfg config.Config) (eventBus, error) {
	if cfg.IsDevelopment() {
		logger.Info("Starting embedded NATS server for local development")
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATSSubject
		embedded, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			return nil, err
		}
		logger.Info("Embedded NATS server ready", "url", embedded.GetServerURL())
		return embedded, nil
	}

	logger.Info("Using NATS JetStream", "url", cfg.NATSURL)
	remote, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, err
	}
	return remote, nil
}

// openAnalytics keeps picks in memory during development and in ClickHouse otherwise
func openAnalytics(cfg config.Config) (clickhouse.Recorder, error) {
	if cfg.IsDevelopment() {
		logger.Info("Using in-memory pick analytics for local development (no ClickHouse server required)")
		return clickhouse.NewMemoryRecorder(), nil
	}
	c, err := clickhouse.NewClient(cfg.ClickHouseAddr, cfg.ClickHouseDB, cfg.ClickHouseUser, cfg.ClickHousePassword)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to ClickHouse", "address", cfg.ClickHouseAddr, "database", cfg.ClickHouseDB)
	return c, nil
}
