package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/24thNight/clarify-backend/internal/api"
	clarificationapi "github.com/24thNight/clarify-backend/internal/api/clarification"
	planapi "github.com/24thNight/clarify-backend/internal/api/plan"
	"github.com/24thNight/clarify-backend/internal/config"
	"github.com/24thNight/clarify-backend/internal/integration/generator"
	"github.com/24thNight/clarify-backend/internal/pkg/formatter"
	"github.com/24thNight/clarify-backend/internal/pkg/validator"
	"github.com/24thNight/clarify-backend/internal/repository"
	"github.com/24thNight/clarify-backend/internal/stream"
	"github.com/24thNight/clarify-backend/internal/usecase/clarify"
	planuc "github.com/24thNight/clarify-backend/internal/usecase/plan"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	// Run database migrations
	logger.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize repositories
	sessionRepo := repository.NewSessionPostgres(db)
	questionRepo := repository.NewQuestionPostgres(db)
	answerRepo := repository.NewAnswerPostgres(db)
	planRepo := repository.NewPlanPostgres(db)
	logger.Info("Repositories initialized")

	// Initialize generator connector (with mock support)
	var generatorConnector clarify.GeneratorConnector
	if cfg.EnableMocks {
		logger.Info("Using mock question generator")
		generatorConnector = generator.NewMockConnector(logger)
	} else {
		logger.Info("Using real question generator")
		generatorConnector = generator.NewConnector(cfg.GeneratorConnectorCfg, logger)
	}

	// Initialize shared components
	requestValidator := validator.New()
	hub := stream.NewHub(cfg.StreamCfg.SubscriberBuffer, logger)
	formatterFactory := formatter.NewFactory()

	// Initialize use cases
	planUC := planuc.NewUsecase(
		planRepo,
		requestValidator,
		cfg.PlanCacheCfg,
		formatterFactory,
		logger,
	)

	clarifyUC := clarify.NewUsecase(
		sessionRepo,
		questionRepo,
		answerRepo,
		requestValidator,
		generatorConnector,
		planUC,
		hub,
		cfg.StreamCfg,
		logger,
	)
	logger.Info("Use cases initialized")

	// Setup API handlers
	clarificationHandler := clarificationapi.NewHandler(clarifyUC)
	planHandler := planapi.NewHandler(planUC)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(clarificationHandler, planHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server. WriteTimeout stays zero because SSE responses are
	// written for as long as the question stream runs.
	server := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

func setupLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = lvl

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}
