// internal/config/config.go

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Monitor     MonitorConfig
	Analysis    AnalysisConfig
	Twitter     TwitterConfig
	Reddit      RedditConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// MonitorConfig holds social monitor configuration
type MonitorConfig struct {
	MaxResults int
	DemoSeed   int64
}

// AnalysisConfig holds scoring configuration
type AnalysisConfig struct {
	ViralThreshold      int
	SpreadRate          float64
	HighRiskThreshold   float64
	MediumRiskThreshold float64
	EventsTopic         string
}

// TwitterConfig holds Twitter collector credentials
type TwitterConfig struct {
	BearerToken    string
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// RedditConfig holds Reddit collector configuration
type RedditConfig struct {
	Enabled   bool
	UserAgent string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvAsBool("DB_ENABLED", false),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "misintel"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", false),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Monitor: MonitorConfig{
			MaxResults: getEnvAsInt("MONITOR_MAX_RESULTS", 100),
			DemoSeed:   int64(getEnvAsInt("MONITOR_DEMO_SEED", 0)),
		},
		Analysis: AnalysisConfig{
			ViralThreshold:      getEnvAsInt("ANALYSIS_VIRAL_THRESHOLD", 10000),
			SpreadRate:          getEnvAsFloat("ANALYSIS_SPREAD_RATE", 1.25),
			HighRiskThreshold:   getEnvAsFloat("ANALYSIS_HIGH_RISK_THRESHOLD", 0.7),
			MediumRiskThreshold: getEnvAsFloat("ANALYSIS_MEDIUM_RISK_THRESHOLD", 0.5),
			EventsTopic:         getEnv("ANALYSIS_EVENTS_TOPIC", "alerts"),
		},
		Twitter: TwitterConfig{
			BearerToken:    getEnv("TWITTER_BEARER_TOKEN", ""),
			ConsumerKey:    getEnv("TWITTER_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("TWITTER_CONSUMER_SECRET", ""),
			AccessToken:    getEnv("TWITTER_ACCESS_TOKEN", ""),
			AccessSecret:   getEnv("TWITTER_ACCESS_SECRET", ""),
		},
		Reddit: RedditConfig{
			Enabled:   getEnvAsBool("REDDIT_ENABLED", true),
			UserAgent: getEnv("REDDIT_USER_AGENT", "misintel/1.0"),
		},
	}

	return config, nil
}

// Helper functions

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
