package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Graph store behavior
	StoreTimeout time.Duration // per-operation timeout against the store

	// Scoring
	ScoringWorkers   int // max concurrent strength recomputes
	ScoringBatchSize int // followees per interaction-count round trip

	// Admin
	AdminToken string // required for destructive admin operations
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("ENV", "development"),
		Neo4jURI:         getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:        getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:    getEnv("NEO4J_PASSWORD", "password"),
		StoreTimeout:     time.Duration(getEnvInt("STORE_TIMEOUT_SECONDS", 15)) * time.Second,
		ScoringWorkers:   getEnvInt("SCORING_WORKERS", 4),
		ScoringBatchSize: getEnvInt("SCORING_BATCH_SIZE", 100),
		AdminToken:       getEnv("ADMIN_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.Neo4jPassword == "" {
		return fmt.Errorf("NEO4J_PASSWORD is required")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT_SECONDS must be positive")
	}
	if c.ScoringWorkers < 1 {
		return fmt.Errorf("SCORING_WORKERS must be at least 1")
	}
	if c.ScoringBatchSize < 1 {
		return fmt.Errorf("SCORING_BATCH_SIZE must be at least 1")
	}
	// Admin token is optional for development; destructive endpoints
	// are disabled when it is empty
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
