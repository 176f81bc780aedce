package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/config"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/internal/handlers"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/internal/repositories/company"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/internal/repositories/importsession"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/internal/repositories/person"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/internal/repositories/project"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/batchimport"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/database"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/events"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/httpclient"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/kafka"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/logging"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/redis"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/resolution"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/search"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/server"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/startup"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/tracing"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/tracing/exporters"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.AppName, cfg.LogLevel, cfg.PrettyLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Error("Console API stopped with an error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger ectologger.Logger) error {
	shutdownTracing, err := setupTracing(ctx, cfg)
	if err != nil {
		return err
	}

	db, err := database.Open(database.Config{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		User:            cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		return err
	}

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	sessionCache := importsession.NewRepository(redisClient, cfg.ImportSessionTTL, logger)

	searchService, err := search.NewService(
		person.NewRepository(db, logger),
		company.NewRepository(db, logger),
		project.NewRepository(db, logger),
		search.Config{
			PersonThreshold:  cfg.PersonSearchThreshold,
			CompanyThreshold: cfg.CompanySearchThreshold,
			ProjectThreshold: cfg.ProjectSearchThreshold,
			DefaultLimit:     cfg.SearchDefaultLimit,
			MinConfidence:    cfg.SearchMinConfidence,
		},
		logger,
	)
	if err != nil {
		return err
	}

	httpConfig := httpclient.DefaultConfig()
	httpConfig.Timeout = time.Duration(cfg.BatchImportTimeoutSeconds) * time.Second
	batchImport := batchimport.NewClient(cfg.BatchImportBaseURL, cfg.BatchImportToken, httpclient.NewClient(httpConfig, logger), logger)

	opts := []resolution.ServiceOption{
		resolution.WithLocks(importsession.NewLocks(redisClient, cfg.ImportSessionLock)),
	}
	if cfg.ImportSessionCache {
		opts = append(opts, resolution.WithCache(sessionCache))
	}

	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		opts = append(opts, resolution.WithNotifier(events.NewEmitter(producer, logger)))
	}

	var consumer *kafka.Consumer
	if cfg.KafkaConsumerEnabled && cfg.ImportSessionCache {
		invalidator := events.NewSessionInvalidator(sessionCache, logger)
		consumer = kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:       cfg.KafkaBrokers,
			Topic:         cfg.KafkaInputTopic,
			ConsumerGroup: cfg.KafkaConsumerGroup,
		}, logger, invalidator.Handle)
	}

	resolutionService := resolution.NewService(batchImport, batchImport, logger, opts...)

	health := handlers.NewHealthHandler(cfg.Version, map[string]handlers.Pinger{
		"database": handlers.PingerFunc(db.PingContext),
		"redis":    redisClient,
	})

	srv := server.New(server.Config{
		AppName:           cfg.AppName,
		Port:              cfg.Port,
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		AllowOrigins:      cfg.AllowOrigins,
		AllowMethods:      cfg.AllowMethods,
	}, logger)
	health.RegisterRoutes(srv.Echo())
	srv.Mount(
		handlers.NewSearchHandler(searchService, logger),
		handlers.NewImportHandler(resolutionService, logger),
	)

	var serverErrs <-chan error
	deps := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	deps.AddDependency(&startup.Dependency{
		Name: "database",
		StartFunc: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			return migrate(cfg, db, logger)
		},
		StopFunc: func(context.Context) error { return db.Close() },
	})
	deps.AddDependency(&startup.Dependency{
		Name:      "redis",
		StartFunc: redisClient.Ping,
		StopFunc:  func(context.Context) error { return redisClient.Close() },
	})
	if producer != nil {
		deps.AddDependency(&startup.Dependency{
			Name:     "kafka-producer",
			StopFunc: func(context.Context) error { return producer.Close() },
		})
	}
	if consumer != nil {
		deps.AddDependency(&startup.Dependency{
			Name:      "kafka-consumer",
			Needs:     []string{"redis"},
			StartFunc: consumer.Start,
			StopFunc:  func(context.Context) error { return consumer.Stop() },
		})
	}
	deps.AddDependency(&startup.Dependency{
		Name:  "http",
		Needs: []string{"database", "redis"},
		StartFunc: func(ctx context.Context) error {
			serverErrs = srv.Start(ctx)
			health.SetReady(true)
			return nil
		},
		StopFunc: func(ctx context.Context) error {
			health.SetReady(false)
			return srv.Shutdown(ctx)
		},
	})

	if err := deps.Start(ctx); err != nil {
		return err
	}
	logger.WithContext(ctx).Infof("%s %s started", cfg.AppName, cfg.Version)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err, ok := <-serverErrs:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := deps.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to stop dependencies cleanly")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Failed to flush traces")
	}
	return runErr
}

func setupTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter = &exporters.ConsoleExporter{}
	if cfg.TracingEnabled {
		otlp, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.TracingEndpoint,
			Protocol: cfg.TracingProtocol,
			Insecure: cfg.TracingInsecure,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		exporter = otlp
	}
	return tracing.Setup(cfg.AppName, exporter), nil
}

func migrate(cfg *config.Config, db *sqlx.DB, logger ectologger.Logger) error {
	if !cfg.DatabaseMigrationEnabled {
		return nil
	}

	if latest, err := database.LatestVersion(cfg.DatabaseMigrationFolderPath); err == nil {
		logger.Infof("Latest database migration is version %d", latest)
	}

	version := cfg.DatabaseMigrationVersion
	if version < 0 {
		version = 0
	}
	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(version),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	return migrations.Migrate(db.DB, cfg.DatabaseName)
}
