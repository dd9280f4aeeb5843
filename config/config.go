package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Mil05h/calories-ai/models"
)

// Config holds everything the process needs, read once at startup.
type Config struct {
	ListenAddr string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret string

	// OpenAI-compatible chat-completions endpoint.
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	AWSRegion string
	S3Bucket  string
	S3BaseURL string
	SESSender string
}

// Load reads .env (when present) and the environment. Only JWT_SECRET is
// hard-required; everything else has a default or degrades a feature.
func Load() (*Config, error) {
	// .env is optional outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "calories"),
		DBPort:     getEnv("DB_PORT", "5432"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		LLMBaseURL: getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4o-mini"),
		AWSRegion:  getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:   os.Getenv("S3_BUCKET"),
		S3BaseURL:  os.Getenv("S3_BASE_URL"),
		SESSender:  os.Getenv("SES_EMAIL"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	return cfg, nil
}

// OpenDB connects to Postgres and migrates the schema.
func OpenDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.MealRecord{}); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
