package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"fromprom-backend/internal/config"
	"fromprom-backend/internal/jobs"
	"fromprom-backend/internal/logger"
	"fromprom-backend/internal/repository/table"
	"fromprom-backend/internal/scheduler"
	"fromprom-backend/internal/service"
	"fromprom-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'reconcile-counters', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Fromprom Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()

	// Initialize Storage
	var store storage.Store
	if cfg.Dynamo.InMemory {
		logger.Info("Using in-memory store")
		store = storage.NewMemoryStore()
	} else {
		logger.Info("DynamoDB configuration", "region", cfg.Dynamo.Region, "table", cfg.Dynamo.TableName)
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Dynamo.Region))
		if err != nil {
			logger.Error("Failed to load AWS configuration", "error", err)
			log.Fatalf("Failed to load AWS configuration: %v", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.Dynamo.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Dynamo.Endpoint)
			}
		})
		store = storage.NewDynamoStore(client, cfg.Dynamo.TableName)
	}

	// Initialize Repositories
	accountRepo := table.NewAccountRepository(store)
	promptRepo := table.NewPromptRepository(store)
	interactionRepo := table.NewInteractionRepository(store)
	commentRepo := table.NewCommentRepository(store)

	// Initialize Services
	interactionSvc := service.NewInteractionService(interactionRepo, commentRepo, promptRepo, accountRepo)

	jobServices := &jobs.Services{
		Interaction: interactionSvc,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "reconcile-counters":
		jobRunner.ReconcileCounters()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - reconcile-counters\n")
		fmt.Printf("  - all-nightly\n")
		os.Exit(1)
	}
}
