package config

import (
	"os"
	"strconv"
)

type DecisionEngineConfig struct {
	Port        string
	APIKey      string
	PostgresCfg PostgresConfig
	RabbitMQCfg RabbitMQConfig
	RedisCfg    RedisConfig
	EngineCfg   EngineConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// EngineConfig holds the business parameters the engine needs at runtime.
// These are injected into services at construction instead of being looked
// up through a shared configuration table.
type EngineConfig struct {
	GSTRatePercent         float64
	QuoteValidityDays      int
	ClaimSLADays           int
	MaxRecommendations     int
	DefaultSlabRatePercent float64
	ConfigCacheTTLSeconds  int
}

func New() *DecisionEngineConfig {
	return &DecisionEngineConfig{
		Port:   getEnvOrDefault("PORT", "8084"),
		APIKey: getEnvOrDefault("API_KEY", ""),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "decision_engine"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		EngineCfg: EngineConfig{
			GSTRatePercent:         getEnvFloatOrDefault("GST_RATE", 18),
			QuoteValidityDays:      getEnvIntOrDefault("QUOTE_VALIDITY_DAYS", 30),
			ClaimSLADays:           getEnvIntOrDefault("CLAIM_SLA_DAYS", 15),
			MaxRecommendations:     getEnvIntOrDefault("MAX_RECOMMENDATIONS", 3),
			DefaultSlabRatePercent: getEnvFloatOrDefault("DEFAULT_SLAB_RATE", 2),
			ConfigCacheTTLSeconds:  getEnvIntOrDefault("CONFIG_CACHE_TTL", 60),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
