// Docuvert is an HTTP service that converts uploaded PDFs into structured
// text. Each upload becomes a session: the PDF is rasterized into per-page
// images, a multimodal model extracts each page into the requested format,
// and completed pages can be aggregated into a single document. Durable
// per-page completion markers make processing resumable and idempotent.
package main

import (
	"context"
	"fmt"
	"os"

	"docuvert/aggregator"
	"docuvert/core"
	"docuvert/core/validation"
	"docuvert/db"
	"docuvert/extraction"
	"docuvert/logging"
	"docuvert/pipeline"
	"docuvert/server"
	"docuvert/shutdown"
	"docuvert/store"
	"docuvert/upload"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env if present; fall back to real environment variables.
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	logger, err := logging.NewLogger(isDevelopment, "docuvert.log")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer logger.Sync()

	// Service commands (install/uninstall/start/stop) exit here; running
	// under a service manager hands control to the service wrapper.
	if HandleServiceCommand(os.Args[1:]) {
		return core.ExitCodeSuccess
	}
	if ranAsService, err := RunAsService(); ranAsService {
		if err != nil {
			logger.Error("service run failed", zap.Error(err))
			return core.ExitCodeError
		}
		return core.ExitCodeSuccess
	}

	return runApp(logger)
}

// runApp wires the components and serves until shutdown. It is shared by
// the interactive path and the service wrapper.
func runApp(logger *logging.Logger) int {
	config, err := core.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", zap.Error(err))
		return core.ExitCodeError
	}

	result := validation.NewSuite(config).Validate()
	if !result.Success {
		logger.Error("startup validation failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Error(result.GetFirstError()),
		)
		return core.ExitCodeError
	}
	logger.Info("startup validation passed",
		zap.Int("checks", result.TotalSteps),
		zap.Duration("duration", result.Duration),
	)

	if err := db.RunMigrations(config.DatabasePath); err != nil {
		logger.Error("database migration failed", zap.Error(err))
		return core.ExitCodeError
	}
	conn, err := db.NewSQLiteConnectionWithDefaults(config.DatabasePath)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		return core.ExitCodeError
	}

	sessionStore, err := store.NewSessionStore(config.DataDir)
	if err != nil {
		logger.Error("failed to initialize session store", zap.Error(err))
		return core.ExitCodeError
	}

	client, err := extraction.NewVisionClient(config.OpenAIAPIKey, extraction.VisionClientConfig{
		Model:     config.VisionModel,
		BaseURL:   config.OpenAIBaseURL,
		MaxTokens: config.ExtractionTokens,
		Timeout:   config.AITimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to create vision client", zap.Error(err))
		return core.ExitCodeError
	}

	unit := extraction.NewUnit(sessionStore, client, extraction.UnitConfig{
		MaxImageDim: config.MaxImageDim,
	}, logger)

	registry := db.NewSessionRegistry(conn)
	progress := db.NewProgressStore(conn, logger)
	driver := pipeline.NewDriver(sessionStore, unit, progress, logger)
	agg := aggregator.NewAggregator(sessionStore, logger)
	converter := upload.NewExecConverter(config.ConverterScript, config.ConvertTimeout, logger)
	uploader := upload.NewHandler(sessionStore, converter, registry, config.MaxFileSize, logger)

	api := server.NewAPI(uploader, driver, agg, sessionStore, logger)
	serverConfig := server.DefaultServerConfig()
	serverConfig.Host = config.Host
	serverConfig.Port = config.Port
	srv := server.NewServer(serverConfig, api, logger)

	manager := shutdown.NewManager(logger)
	manager.Register("logger", 5, func(ctx context.Context) error {
		return logger.Sync()
	})
	manager.Register("http_server", 10, srv.Shutdown)
	manager.Register("database", 30, func(ctx context.Context) error {
		return conn.Close()
	})
	manager.Start()

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server failed", zap.Error(err))
			manager.Shutdown()
			os.Exit(core.ExitCodeError)
		}
	}()

	logger.Info("service started",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("data_dir", config.DataDir),
		zap.String("model", config.VisionModel),
	)

	manager.Wait()
	if err := manager.Shutdown(); err != nil {
		logger.Error("shutdown finished with errors", zap.Error(err))
		return core.ExitCodeError
	}
	code := manager.ExitCode()
	logger.Info("exiting", zap.Int("exit_code", code), zap.String("reason", core.ExitCodeName(code)))
	return code
}
