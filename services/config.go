package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Provider selection for embeddings and completions.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config collects every tunable of the pipeline. Values come from the
// environment (optionally via a .env file) with the documented defaults.
type Config struct {
	Provider     string
	OpenAIAPIKey string
	GeminiAPIKey string

	ChatModel      string
	EmbeddingModel string
	Temperature    float64
	MaxTokens      int

	ChromaURL      string
	CollectionName string

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	MaxFileSize int // bytes

	WatchDir string
	Port     string

	UnidocLicenseKey string
}

// LoadConfig reads the configuration from the environment. A missing .env file
// is fine; missing API credentials for the selected provider are not.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		Provider:         getEnv("AI_PROVIDER", ProviderOpenAI),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		ChatModel:        getEnv("DEFAULT_MODEL", "gpt-4"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		Temperature:      getEnvFloat("TEMPERATURE", 0.7),
		MaxTokens:        getEnvInt("MAX_TOKENS", 4000),
		ChromaURL:        getEnv("CHROMA_URL", "http://localhost:8000"),
		CollectionName:   getEnv("CHROMA_COLLECTION", "max_documents"),
		ChunkSize:        getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 200),
		TopK:             getEnvInt("TOP_K", 5),
		MaxFileSize:      getEnvInt("MAX_FILE_SIZE_MB", 10) * 1024 * 1024,
		WatchDir:         os.Getenv("WATCH_DIR"),
		Port:             getEnv("PORT", "8080"),
		UnidocLicenseKey: os.Getenv("UNIDOC_LICENSE_KEY"),
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when AI_PROVIDER=%s", ProviderOpenAI)
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when AI_PROVIDER=%s", ProviderGemini)
		}
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.Provider)
	}

	if cfg.Temperature < 0 {
		cfg.Temperature = 0
	}
	if cfg.Temperature > 2 {
		cfg.Temperature = 2
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 4
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("CONFIG WARN: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("CONFIG WARN: %s=%q is not a number, using %g", key, v, fallback)
		return fallback
	}
	return f
}
