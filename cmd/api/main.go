package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deepanshu089/suprathon/internal/config"
	"github.com/deepanshu089/suprathon/internal/handlers"
	"github.com/deepanshu089/suprathon/internal/repositories"
	"github.com/deepanshu089/suprathon/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	ctx := context.Background()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	jobRepo := repositories.NewJobPositionRepository(db)
	candidateRepo := repositories.NewCandidateRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)
	chatRepo := repositories.NewChatMessageRepository(db)
	log.Println("✅ Repositories initialized successfully")

	if n, err := jobRepo.EnsureDefaults(ctx); err != nil {
		log.Printf("⚠️  Failed to seed default job positions: %v\n", err)
	} else if n > 0 {
		log.Printf("🌱 Seeded %d default job positions\n", n)
	}

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}
	if n, err := storageService.PurgeStaged(); err != nil {
		log.Printf("⚠️  Failed to purge staged files: %v\n", err)
	} else if n > 0 {
		log.Printf("🧹 Removed %d leftover staged files\n", n)
	}
	extractor := services.NewDocumentExtractor(storageService)

	// Gemini backs embeddings whenever a key is present, and scoring when selected.
	var geminiService services.GeminiService
	if cfg.LLM.GeminiAPIKey != "" {
		geminiService, err = services.NewGeminiService(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel, cfg.LLM.GeminiEmbedModel)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
		}
		log.Println("✅ Gemini AI initialized successfully")
	}

	var llm services.LLMProvider
	switch cfg.LLM.Provider {
	case config.ProviderOpenRouter:
		llm = services.NewOpenRouterClient(
			cfg.LLM.OpenRouterAPIKey,
			cfg.LLM.OpenRouterBaseURL,
			cfg.LLM.OpenRouterModel,
			cfg.LLM.AppTitle,
			cfg.LLM.Referer,
		)
	default:
		llm = geminiService
	}
	scorer := services.NewScoringClient(llm)
	log.Printf("✅ Scoring client initialized (provider: %s)\n", cfg.LLM.Provider)

	// Initialize Qdrant
	var resumeIndex services.ResumeIndex
	if cfg.Qdrant.Enabled {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, 768)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		resumeIndex = services.NewResumeIndex(qdrantService, geminiService)
		log.Println("✅ Qdrant initialized successfully")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := services.NewScreeningMetrics(registry)

	retryPolicy := services.RetryPolicy{
		MaxAttempts:  cfg.Worker.RetryMaxAttempts,
		InitialDelay: cfg.Worker.RetryInitialDelay,
		MaxDelay:     cfg.Worker.RetryMaxDelay,
		Retryable:    services.ScoringRetryable,
	}

	screeningService := services.NewScreeningService(
		jobRepo,
		candidateRepo,
		analysisRepo,
		extractor,
		scorer,
		services.ScreeningOptions{
			Concurrency: cfg.Worker.Concurrency,
			Retry:       retryPolicy,
			Index:       resumeIndex,
			Metrics:     metrics,
		},
	)
	log.Println("✅ Screening service initialized")

	// Recruiter assistant; skill categorization falls back to keyword rules without a model.
	var chatService services.ChatService
	if llm != nil {
		chatService = services.NewChatService(llm, chatRepo, jobRepo, candidateRepo, retryPolicy)
		log.Println("✅ Chat assistant initialized")
	}
	skillCategorizer := services.NewSkillCategorizer(llm, analysisRepo)

	// Progress events
	publisher := services.NewNoopPublisher()
	if cfg.RabbitMQ.URL != "" {
		publisher, err = services.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("❌ Failed to initialize RabbitMQ: %v", err)
		}
	}

	// Initialize worker
	batchStore := services.NewBatchStore()
	worker := services.NewWorker(
		screeningService,
		batchStore,
		publisher,
		cfg.Worker.Concurrency,
		cfg.Worker.QueueSize,
	)
	worker.Start(ctx)

	// Initialize Handlers
	routes := handlers.Handlers{
		Batches: handlers.NewBatchHandler(
			jobRepo,
			batchStore,
			worker,
			cfg.Storage.MaxFileSize,
			cfg.Storage.MaxBatchFiles,
		),
		JobPositions: handlers.NewJobPositionHandler(jobRepo),
		Candidates:   handlers.NewCandidateHandler(candidateRepo, resumeIndex),
		Analyses:     handlers.NewAnalysisHandler(analysisRepo, skillCategorizer),
		Chat:         handlers.NewChatHandler(chatService),
	}
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	bodyLimit := cfg.Storage.MaxFileSize * int64(max(cfg.Storage.MaxBatchFiles, 1))
	app := fiber.New(fiber.Config{
		AppName:      "Resume Screening API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(bodyLimit),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")
	handlers.RegisterRoutes(api, routes)
	api.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Screening API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/batches",
				"GET /api/v1/batches/:id",
				"GET /api/v1/job-positions",
				"GET /api/v1/candidates",
				"GET /api/v1/candidates/search",
				"PATCH /api/v1/candidates/:id/status",
				"GET /api/v1/analyses/recent",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
		worker.Stop()
		if err := publisher.Close(); err != nil {
			log.Printf("⚠️  Failed to close publisher: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
