package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"go.uber.org/zap"

	"github.com/Tonooka01/sistema-analise/config"
	"github.com/Tonooka01/sistema-analise/db/migrations"
	"github.com/Tonooka01/sistema-analise/internal/auth"
	"github.com/Tonooka01/sistema-analise/internal/repositories/users"
	"github.com/Tonooka01/sistema-analise/internal/server"
	"github.com/Tonooka01/sistema-analise/pkg/database"
	"github.com/Tonooka01/sistema-analise/pkg/health"
	"github.com/Tonooka01/sistema-analise/pkg/ratelimit"
	"github.com/Tonooka01/sistema-analise/pkg/redis"
	"github.com/Tonooka01/sistema-analise/pkg/startup"
	"github.com/Tonooka01/sistema-analise/pkg/tracing"
	"github.com/Tonooka01/sistema-analise/pkg/tracing/exporters"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, flush, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer flush()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server stopped with error")
		flush()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (ectologger.Logger, func(), error) {
	zcfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zcfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	zcfg.Level = level

	zl, err := zcfg.Build()
	if err != nil {
		return nil, nil, err
	}
	zl = zl.With(zap.String("service", cfg.AppName), zap.String("version", cfg.AppVersion))
	return zapadapter.NewZapEctoLogger(zl, nil), func() { _ = zl.Sync() }, nil
}

func run(cfg *config.Config, logger ectologger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:    cfg.AppName,
		ServiceVersion: cfg.AppVersion,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLP: exporters.OTLPConfig{
			Endpoint: cfg.OTLPEndpoint,
			Protocol: cfg.OTLPProtocol,
			Insecure: cfg.OTLPInsecure,
		},
	}, logger)
	if err != nil {
		return err
	}

	var (
		db          database.DB
		redisClient *redis.Client
		httpServer  *http.Server
		checker     *health.Checker
	)

	boot := startup.New(logger, cfg.StartupMaxAttempts)

	boot.AddDependency(&startup.Func{
		Name: "database",
		OnStart: func(ctx context.Context) error {
			opened, err := database.Open(ctx, database.Config{
				Path:            cfg.DatabasePath,
				MaxOpenConns:    cfg.DatabaseMaxOpenConns,
				MaxIdleConns:    cfg.DatabaseMaxIdleConns,
				ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
				BusyTimeout:     cfg.DatabaseBusyTimeout,
			}, logger)
			if err != nil {
				return err
			}
			db = opened
			return nil
		},
		OnStop: func(context.Context) error {
			if db == nil {
				return nil
			}
			return db.Close()
		},
	})

	boot.AddDependency(&startup.Func{
		Name:     "migrations",
		Requires: []string{"database"},
		OnStart: func(ctx context.Context) error {
			var source fs.FS = migrations.FS
			if cfg.DatabaseMigrationsPath != "" {
				source = os.DirFS(cfg.DatabaseMigrationsPath)
			}
			ms := database.NewMigrationService(logger, &database.MigrationConfig{
				Version:      uint(cfg.DatabaseMigrationVersion),
				AutoRollback: cfg.DatabaseMigrationAutoRollback,
			}, source)
			if err := ms.Migrate(db); err != nil {
				return err
			}
			return users.NewRepository(db, logger).Bootstrap(ctx, cfg.AdminUsername, cfg.AdminPassword)
		},
	})

	if cfg.RedisEnabled {
		boot.AddDependency(&startup.Func{
			Name: "redis",
			OnStart: func(ctx context.Context) error {
				client, err := redis.NewClient(ctx, redis.Config{
					Host:     cfg.RedisHost,
					Port:     cfg.RedisPort,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				}, logger)
				if err != nil {
					return err
				}
				redisClient = client
				return nil
			},
			OnStop: func(context.Context) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Close()
			},
		})
	}

	serverDeps := []string{"migrations"}
	if cfg.RedisEnabled {
		serverDeps = append(serverDeps, "redis")
	}

	boot.AddDependency(&startup.Func{
		Name:     "http",
		Requires: serverDeps,
		OnStart: func(ctx context.Context) error {
			schema := database.NewSchema(db, logger, cfg.SchemaCacheTTL)
			checker = health.NewChecker(cfg.AppVersion).
				Critical("database", health.PingFunc(db.PingContext)).
				Advisory("snapshot", health.PingFunc(func(ctx context.Context) error {
					return snapshotLoaded(ctx, schema)
				}))

			var limiter ratelimit.Limiter = ratelimit.NewMemory(cfg.LoginRateLimit, cfg.LoginRateWindow)
			if redisClient != nil {
				limiter = ratelimit.NewRedis(redisClient, cfg.LoginRateLimit, cfg.LoginRateWindow)
				checker.Critical("redis", redisClient)
			}

			e := server.New(server.Options{
				ServiceName:    cfg.AppName,
				AdminUsername:  cfg.AdminUsername,
				StaticDir:      cfg.StaticDir,
				MetricsEnabled: cfg.MetricsEnabled,
				Session: auth.SessionConfig{
					Secret:     cfg.SessionSecret,
					CookieName: cfg.SessionCookieName,
					Secure:     cfg.SessionSecure,
				},
			}, server.Dependencies{
				DB:      db,
				Schema:  schema,
				Users:   users.NewRepository(db, logger),
				Limiter: limiter,
				Health:  checker,
				Logger:  logger,
			})

			httpServer = &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Port),
				Handler:           e,
				ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
				WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
				IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
				ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
				MaxHeaderBytes:    cfg.MaxHeaderBytes,
			}

			go func() {
				logger.Infof("listening on %s", httpServer.Addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.WithError(err).Error("http server failed")
					stop()
				}
			}()
			checker.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if httpServer == nil {
				return nil
			}
			if checker != nil {
				checker.SetReady(false)
			}
			return httpServer.Shutdown(ctx)
		},
	})

	if err := boot.Start(ctx); err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = boot.Stop(stopCtx)
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := boot.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// snapshotLoaded fails until the offline loader has written the contracts table.
func snapshotLoaded(ctx context.Context, schema *database.Schema) error {
	ok, err := schema.HasTable(ctx, "Contratos")
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("snapshot table Contratos not loaded")
	}
	return nil
}
