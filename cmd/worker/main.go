package main

import (
	"context"
	"log"

	"dripmateapi/config"
	"dripmateapi/dbhelper"
	"dripmateapi/llm"
	"dripmateapi/logging"
	"dripmateapi/services"
	"dripmateapi/stylist"
	"dripmateapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
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

	if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Server.Env}); err != nil {
		logger.Fatal("sentry.Init failed", zap.Error(err))
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Broker.Address},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			tasks.QueueWardrobe: 7,
		}},
	)

	awsService, err := services.NewAWSService(context.Background(), cfg.Storage)
	if err != nil {
		logger.Fatal("[Queue] Failed to initialize AWS provider: S3", zap.Error(err))
	}
	app, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		// pushes are optional, the analysis still runs
		logger.Warn("firebase disabled", zap.Error(err))
		app = nil
	}

	registry := llm.NewRegistry(context.Background(), cfg.LLM, logger)
	provider, err := registry.Resolve("")
	if err != nil {
		logger.Fatal("default LLM provider is unavailable", zap.Error(err))
	}

	db := dbhelper.SetupDB(cfg.Database)
	deps := tasks.WardrobeAnalysisDeps{
		DB:          db,
		Analyzer:    stylist.NewVisionAnalyzer(provider, logger),
		AWSService:  awsService,
		BucketName:  cfg.Storage.BucketName,
		TmpDir:      cfg.Uploads.TmpDir,
		FirebaseApp: app,
		Logger:      logger,
	}

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeWardrobeAnalysis, func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleWardrobeAnalysisTask(ctx, t, deps)
	})

	logger.Info("starting wardrobe worker", zap.String("provider", provider.Kind().String()))
	if err := srv.Run(mux); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
