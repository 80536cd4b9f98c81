package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	httpapi "fromprom-backend/internal/api/http"
	"fromprom-backend/internal/config"
	"fromprom-backend/internal/events"
	"fromprom-backend/internal/identity"
	"fromprom-backend/internal/logger"
	"fromprom-backend/internal/repository/table"
	"fromprom-backend/internal/search"
	"fromprom-backend/internal/service"
	"fromprom-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Fromprom Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())

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

	// Initialize Identity Resolver
	var resolver identity.Resolver
	switch cfg.Identity.Provider {
	case "firebase":
		resolver, err = identity.NewFirebaseResolver(ctx, cfg.Identity.FirebaseProjectID, cfg.Identity.FirebaseCredentials)
		if err != nil {
			logger.Error("Failed to initialize Firebase resolver", "error", err)
			log.Fatalf("Failed to initialize Firebase resolver: %v", err)
		}
	case "jwt":
		resolver = identity.NewJWTResolver(cfg.Identity.JWTSecret, time.Duration(cfg.Identity.JWTExpiryMinutes)*time.Minute)
	}

	// Initialize Event Publisher
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.TopicARN != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Dynamo.Region))
		if err != nil {
			logger.Error("Failed to load AWS configuration for SNS", "error", err)
			log.Fatalf("Failed to load AWS configuration for SNS: %v", err)
		}
		publisher = events.NewSNSPublisher(sns.NewFromConfig(awsCfg), cfg.Events.TopicARN)
		logger.Info("Event publishing enabled", "topic_arn", cfg.Events.TopicARN)
	}

	// Initialize Search Client
	var searcher search.Client = search.Disabled{}
	if cfg.Search.Endpoint != "" {
		searcher = search.NewHTTPClient(cfg.Search.Endpoint, cfg.Search.Index)
		logger.Info("Search enabled", "endpoint", cfg.Search.Endpoint, "index", cfg.Search.Index)
	}

	// Initialize Services
	emailSvc := service.NewSendGridEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	creditSvc := service.NewCreditService(accountRepo, cfg.Credit.MaxBalance, cfg.Credit.HistoryLimit, cfg.Credit.ConflictRetries)
	purchaseSvc := service.NewPurchaseService(creditSvc, accountRepo, emailSvc)
	cascadeSvc := service.NewCascadeService(store, promptRepo, interactionRepo, commentRepo)
	promptSvc := service.NewPromptService(promptRepo, publisher, searcher, cascadeSvc)
	interactionSvc := service.NewInteractionService(interactionRepo, commentRepo, promptRepo, accountRepo)
	userSvc := service.NewUserService(accountRepo, cascadeSvc)

	// Initialize HTTP handlers
	handler := httpapi.NewHandler(userSvc, creditSvc, purchaseSvc, promptSvc, interactionSvc, resolver)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
