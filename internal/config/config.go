package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Qdrant   QdrantConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	RabbitMQ RabbitMQConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type LLMConfig struct {
	Provider          string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiEmbedModel  string
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string
	AppTitle          string
	Referer           string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Enabled    bool
}

type StorageConfig struct {
	UploadPath    string
	MaxFileSize   int64
	MaxBatchFiles int
}

type WorkerConfig struct {
	Concurrency       int
	QueueSize         int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "recruit_ai"),
		},
		LLM: LLMConfig{
			Provider:          getEnv("LLM_PROVIDER", ProviderGemini),
			GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
			GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			GeminiEmbedModel:  getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
			OpenRouterModel:   getEnv("OPENROUTER_MODEL", "mistralai/mixtral-8x7b-instruct"),
			OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			AppTitle:          getEnv("LLM_APP_TITLE", "AI Recruitment Platform"),
			Referer:           getEnv("LLM_REFERER", ""),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "candidate_resumes"),
			Enabled:    getEnvAsBool("QDRANT_ENABLED", false),
		},
		Storage: StorageConfig{
			UploadPath:    getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize:   getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			MaxBatchFiles: getEnvAsInt("MAX_BATCH_FILES", 50),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:         getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "1s"),
			RetryMaxDelay:     getEnvAsDuration("RETRY_MAX_DELAY", "10s"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      getEnv("RABBITMQ_URL", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "batch_updates"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.LLM.Provider)
		}
	case ProviderOpenRouter:
		if c.LLM.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for provider %q", c.LLM.Provider)
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}

	if c.Qdrant.Enabled && c.LLM.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required for resume embeddings when QDRANT_ENABLED is set")
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1")
	}
	if c.Worker.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
