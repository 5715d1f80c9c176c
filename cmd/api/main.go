package main

import (
	"context"
	"log"
	"time"

	"dripmateapi/config"
	"dripmateapi/controllers"
	"dripmateapi/dbhelper"
	"dripmateapi/llm"
	"dripmateapi/logging"
	"dripmateapi/services"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4/middleware"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %s", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		log.Fatalf("logger: %s", err)
	}
	defer logger.Sync()

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Server.Env,
		Release:          "dripmateapi@2.0.0",
		Debug:            false,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		logger.Fatal("sentry.Init failed", zap.Error(err))
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	db := dbhelper.SetupDB(cfg.Database)
	registry := llm.NewRegistry(context.Background(), cfg.LLM, logger)

	awsService, err := services.NewAWSService(context.Background(), cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialize R2 presign client", zap.Error(err))
	}
	urlCache, err := services.NewURLCacheService(awsService, cfg.Storage.BucketName, logger)
	if err != nil {
		logger.Fatal("failed to initialize URL cache service", zap.Error(err))
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Broker.Address})
	defer asynqClient.Close()

	e := controllers.SetupServer(db, cfg, registry, awsService, urlCache, asynqClient, logger)
	e.Debug = cfg.Server.Env == "local"
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))

	logger.Info("starting DripMate API",
		zap.String("port", cfg.Server.Port),
		zap.String("default_provider", registry.Default().String()),
	)
	e.Logger.Fatal(e.Start(":" + cfg.Server.Port))
}
