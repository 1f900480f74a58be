package config

import (
	"time"
)

// DatabaseConfig describes the Neo4j deployment reached over Bolt.
type DatabaseConfig struct {
	URI                   string        `yaml:"uri"`
	Username              string        `yaml:"username"`
	Password              string        `yaml:"password"`
	Database              string        `yaml:"database"`
	MaxPoolSize           int           `yaml:"max_pool_size"`
	ConnectTimeout        time.Duration `yaml:"connect_timeout"`
	MaxTransactionRetry   time.Duration `yaml:"max_transaction_retry"`
	AllowInsecureFallback bool          `yaml:"allow_insecure_fallback"`
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URI:                   getEnv("NEO4J_URI", ""),
		Username:              getEnv("NEO4J_USER", "neo4j"),
		Password:              getEnv("NEO4J_PASSWORD", ""),
		Database:              getEnv("NEO4J_DATABASE", ""),
		MaxPoolSize:           getEnvAsInt("NEO4J_MAX_POOL_SIZE", 50),
		ConnectTimeout:        getEnvAsDuration("NEO4J_CONNECT_TIMEOUT", 30*time.Second),
		MaxTransactionRetry:   getEnvAsDuration("NEO4J_MAX_TX_RETRY_TIME", 15*time.Second),
		AllowInsecureFallback: getEnvAsBool("NEO4J_ALLOW_INSECURE_FALLBACK", true),
	}
}
