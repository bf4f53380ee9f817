package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/JericoFX/advance-manager/internal/actors"
	"github.com/JericoFX/advance-manager/internal/handlers"
	"github.com/JericoFX/advance-manager/internal/infrastructure/cache"
	"github.com/JericoFX/advance-manager/internal/infrastructure/config"
	"github.com/JericoFX/advance-manager/internal/infrastructure/database"
	"github.com/JericoFX/advance-manager/internal/infrastructure/hostbridge"
	"github.com/JericoFX/advance-manager/internal/infrastructure/logging"
	"github.com/JericoFX/advance-manager/internal/infrastructure/metrics"
	"github.com/JericoFX/advance-manager/internal/repositories"
	"github.com/JericoFX/advance-manager/internal/repositories/memory"
	"github.com/JericoFX/advance-manager/internal/repositories/postgres"
	"github.com/JericoFX/advance-manager/internal/services/authorization"
	"github.com/JericoFX/advance-manager/internal/services/coordinator"
	"github.com/JericoFX/advance-manager/internal/services/directory"
	"github.com/JericoFX/advance-manager/internal/services/jobs"
	"github.com/JericoFX/advance-manager/internal/services/ledger"
	"github.com/JericoFX/advance-manager/internal/services/ratelimit"
	"github.com/JericoFX/advance-manager/internal/session"
)

const (
	defaultEnv      = "dev"
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Get environment from ENV variable or use default
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	if err := config.InitConfig(env); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize config: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err == nil {
		err = cfg.Host.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// stores holds the repositories selected by STORE_DRIVER
type stores struct {
	businesses repositories.BusinessRepository
	employees  repositories.EmployeeRepository
	pg         *database.Postgres
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.Database.Driver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return &stores{
			businesses: memory.NewBusinessRepository(store),
			employees:  memory.NewEmployeeRepository(store),
		}, nil
	}

	pg, err := database.NewPostgres(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Database),
	)

	if cfg.Database.AutoMigrate {
		path, err := database.FindMigrationsPath()
		if err != nil {
			pg.Close()
			return nil, err
		}
		if err := pg.RunMigrations(path); err != nil {
			pg.Close()
			return nil, err
		}
		logger.Info("migrations applied", zap.String("path", path))
	}

	return &stores{
		businesses: postgres.NewPostgresBusinessRepository(pg.DB),
		employees:  postgres.NewPostgresEmployeeRepository(pg.DB),
		pg:         pg,
	}, nil
}

func newLimiter(cfg *config.Config, logger *zap.Logger) (ratelimit.Limiter, func()) {
	intervals := ratelimit.Intervals(cfg.RateLimit.Intervals)
	if cfg.RateLimit.Backend != config.RateLimitBackendRedis {
		return ratelimit.NewMemory(intervals, nil), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	logger.Info("using redis rate limiter", zap.String("addr", cfg.Redis.Addr))
	return ratelimit.NewRedis(client, intervals, logger), func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
}

// hostActors is where wallet and job changes are applied
type hostActors interface {
	actors.Wallet
	actors.Directory
}

func newHostBridge(cfg *config.Config, sessions *session.Registry, logger *zap.Logger) (hostActors, func(), error) {
	if cfg.Host.Addr == "" {
		logger.Warn("running standalone, wallet and job changes stay in-process")
		return sessions, func() {}, nil
	}

	conn, err := grpc.NewClient(cfg.Host.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create host client: %w", err)
	}
	logger.Info("applying wallet and job changes on host",
		zap.String("addr", cfg.Host.Addr),
		zap.Duration("timeout", cfg.Host.Timeout),
	)
	return hostbridge.New(conn, sessions, cfg.Host.Timeout, logger), func() {
		if err := conn.Close(); err != nil {
			logger.Warn("failed to close host connection", zap.Error(err))
		}
	}, nil
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if st.pg != nil {
		defer st.pg.Close()
	}

	// Metrics
	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	exporter := metrics.NewPrometheusExporter(collector, registry)

	// Job catalog
	catalog, err := jobs.NewFileSource(cfg.Jobs.File, logger)
	if err != nil {
		return err
	}
	defer catalog.Close()
	if cfg.Jobs.Watch {
		if err := catalog.Watch(ctx); err != nil {
			logger.Warn("job catalog watching disabled", zap.Error(err))
		}
	}
	jobAdapter := jobs.NewAdapter(catalog)

	// Services
	sessions := session.NewRegistry()
	host, closeHost, err := newHostBridge(cfg, sessions, logger)
	if err != nil {
		return err
	}
	defer closeHost()

	matrices := authorization.NewMatrixCache(cfg.Cache.MatrixMaxEntries, cfg.Cache.Metrics, logger)
	gate := authorization.NewGate(st.businesses, jobAdapter, matrices, sessions, logger)
	l := ledger.NewLedger(st.businesses)
	transfers := ledger.NewTransfers(l, host, logger, collector)
	dir := directory.New(st.businesses, st.employees, jobAdapter, host, directory.Config{
		EntryTTL:      cfg.Directory.EntryTTL,
		EnableMetrics: cfg.Cache.Metrics,
	}, logger)
	collector.RegisterCache("permission_matrix", matrices)
	collector.RegisterCache("employee_directory", dir)

	if err := dir.ReloadAll(ctx); err != nil {
		return fmt.Errorf("failed to load employee directory: %w", err)
	}

	reloader, err := directory.NewReloader(dir, cfg.Directory.ReloadInterval, logger)
	if err != nil {
		return err
	}
	reloader.Start()

	var notifier *cache.DirectoryNotifier
	if st.pg != nil && cfg.Directory.ListenNotify {
		notifier = cache.NewDirectoryNotifier(dir, st.pg.ConnectionString(), logger)
		if err := notifier.Start(ctx); err != nil {
			logger.Warn("directory notifications disabled, relying on scheduled reloads", zap.Error(err))
			notifier = nil
		}
	}

	limiter, closeLimiter := newLimiter(cfg, logger)
	defer closeLimiter()

	co := coordinator.New(coordinator.Dependencies{
		Businesses: st.businesses,
		Ledger:     l,
		Transfers:  transfers,
		Directory:  dir,
		Gate:       gate,
		Jobs:       jobAdapter,
		Limiter:    limiter,
		Sessions:   sessions,
		Recorder:   collector,
		Logger:     logger,
	})

	// gRPC
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(metrics.UnaryServerInterceptor(collector, exporter)))
	handlers.RegisterBusinessServiceServer(grpcServer, handlers.NewBusinessHandler(co, logger))
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(handlers.ServiceName, healthpb.HealthCheckResponse_SERVING)

	// Register reflection service (for grpcurl, etc.)
	reflection.Register(grpcServer)

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	// Metrics and health over HTTP
	mux := http.NewServeMux()
	promHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		exporter.Update()
		promHandler.ServeHTTP(w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if st.pg != nil {
			if err := st.pg.HealthCheck(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", listener.Addr().String()))
		if err := grpcServer.Serve(listener); err != nil {
			serverErrors <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		logger.Info("metrics server listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-serverErrors:
	case sig := <-sigChan:
		logger.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	healthServer.Shutdown()
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		logger.Info("gRPC server stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, forcing stop")
		grpcServer.Stop()
	}

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("failed to stop metrics server", zap.Error(err))
	}
	reloader.Stop(shutdownCtx)
	if notifier != nil {
		if err := notifier.Stop(); err != nil {
			logger.Warn("failed to stop directory notifier", zap.Error(err))
		}
	}
	cancel()

	logger.Info("shutdown complete")
	return runErr
}
