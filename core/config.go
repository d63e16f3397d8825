package core

import (
	"fmt"
	"os"
	"time"
)

// Config holds all configuration values for the extraction service.
type Config struct {
	// AI inference configuration
	OpenAIAPIKey  string // API key for the OpenAI-compatible endpoint (required)
	OpenAIBaseURL string // Optional base URL override (local or proxy endpoints)
	VisionModel   string // Multimodal model used for page extraction

	// Server configuration
	Host string
	Port int

	// Processing configuration
	DataDir          string        // Root directory for per-session namespaces
	ConverterScript  string        // External PDF-to-image conversion command
	ConvertTimeout   time.Duration // Ceiling for one conversion run
	AITimeout        time.Duration // Ceiling for one per-page inference call
	MaxFileSize      int64         // Upload size ceiling in bytes
	MaxImageDim      int           // Page rasters larger than this are downscaled before inference
	ExtractionTokens int           // Max completion tokens per page extraction

	// Session registry database
	DatabasePath string
}

// DefaultVisionModel is used when VISION_MODEL is not set.
const DefaultVisionModel = "gpt-4o-mini"

// DefaultMaxFileSize is the upload ceiling: 100 MB.
const DefaultMaxFileSize = 100 * 1024 * 1024

// LoadConfig loads configuration from environment variables with sensible
// defaults. Only OPENAI_API_KEY is required; everything else has a default
// suitable for a local deployment.
func LoadConfig() (*Config, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, NewValidationError("OPENAI_API_KEY", "must be set in the environment or .env file")
	}

	config := &Config{
		OpenAIAPIKey:  apiKey,
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		VisionModel:   GetEnvOrDefault("VISION_MODEL", DefaultVisionModel),

		Host: GetEnvOrDefault("HOST", "0.0.0.0"),
		Port: ParseIntEnv("PORT", 8080),

		DataDir:          GetEnvOrDefault("DATA_DIR", "./data"),
		ConverterScript:  GetEnvOrDefault("CONVERTER_SCRIPT", "./scripts/pdf_to_images.sh"),
		ConvertTimeout:   ParseDurationEnv("CONVERT_TIMEOUT", 5*time.Minute),
		AITimeout:        ParseDurationEnv("AI_TIMEOUT", 120*time.Second),
		MaxFileSize:      ParseInt64Env("MAX_FILE_SIZE", DefaultMaxFileSize),
		MaxImageDim:      ParseIntEnv("MAX_IMAGE_DIM", 2048),
		ExtractionTokens: ParseIntEnv("EXTRACTION_TOKENS", 4096),

		DatabasePath: GetEnvOrDefault("DATABASE_PATH", "./data/sessions.db"),
	}

	if config.Port < 1 || config.Port > 65535 {
		return nil, NewValidationError("PORT", fmt.Sprintf("must be between 1 and 65535, got %d", config.Port))
	}
	if config.MaxFileSize < 1 {
		return nil, NewValidationError("MAX_FILE_SIZE", "must be positive")
	}
	if config.MaxImageDim < 64 {
		return nil, NewValidationError("MAX_IMAGE_DIM", fmt.Sprintf("must be at least 64, got %d", config.MaxImageDim))
	}

	return config, nil
}
