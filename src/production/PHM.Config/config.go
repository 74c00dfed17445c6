package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-this-secret-in-production"

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds all API service configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// Auth configuration
	Auth AuthConfig `json:"auth"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// CORS configuration
	CORS CORSConfig `json:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver     string `json:"driver"` // postgres or sqlite3
	Host       string `json:"host"`
	Port       int    `json:"port"`
	User       string `json:"user"`
	Password   string `json:"password"`
	DBName     string `json:"db_name"`
	SSLMode    string `json:"ssl_mode"`
	MaxConns   int    `json:"max_conns"`
	MinConns   int    `json:"min_conns"`
	SQLitePath string `json:"sqlite_path"`
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	JWTSecretKey        string        `json:"jwt_secret_key"`
	JWTIssuer           string        `json:"jwt_issuer"`
	AccessTokenDuration time.Duration `json:"access_token_duration"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout or stderr
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// MQTTConfig holds MQTT-related configuration
type MQTTConfig struct {
	BrokerHost  string        `json:"broker_host"`
	BrokerPort  int           `json:"broker_port"`
	BrokerUser  string        `json:"broker_user"`
	BrokerPass  string        `json:"broker_pass"`
	UseTLS      bool          `json:"use_tls"`
	CACertPath  string        `json:"ca_cert_path"`
	Topic       string        `json:"topic"`
	ClientID    string        `json:"client_id"`
	SharedGroup string        `json:"shared_group"`
	KeepAlive   time.Duration `json:"keep_alive"`
	PingTimeout time.Duration `json:"ping_timeout"`
}

// MongoConfig holds the optional raw-message archive configuration
type MongoConfig struct {
	URI        string `json:"uri"`
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

// Enabled reports whether an archive URI was configured
func (m MongoConfig) Enabled() bool {
	return m.URI != ""
}

// IngestorConfig holds configuration for the sensor ingestor service
type IngestorConfig struct {
	Server        ServerConfig  `json:"server"`
	MQTT          MQTTConfig    `json:"mqtt"`
	Logging       LoggingConfig `json:"logging"`
	Mongo         MongoConfig   `json:"mongo"`
	ApiServiceURL string        `json:"api_service_url"`
	Username      string        `json:"username"`
	Password      string        `json:"-"`
	BatchSize     int           `json:"batch_size"`
	BatchWindow   time.Duration `json:"batch_window"`
}

// SeederConfig holds configuration for the seed generator
type SeederConfig struct {
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
	HashCost int            `json:"hash_cost"`
}

func loadDotEnv() {
	// A missing .env is fine; variables may be set directly
	_ = godotenv.Load()
}

// LoadApiConfig loads configuration for the API service
func LoadApiConfig() (*Config, error) {
	loadDotEnv()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Database: loadDatabaseConfig(),
		Auth: AuthConfig{
			JWTSecretKey:        getEnv("JWT_SECRET_KEY", defaultJWTSecret),
			JWTIssuer:           getEnv("JWT_ISSUER", "phm-api-service"),
			AccessTokenDuration: getDuration("JWT_ACCESS_TOKEN_DURATION", 24*time.Hour),
		},
		Logging: loadLoggingConfig(),
		CORS: CORSConfig{
			AllowedOrigins:   getStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "OPTIONS"}),
			AllowedHeaders:   getStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			ExposedHeaders:   getStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length", "X-Request-ID"}),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getInt("CORS_MAX_AGE", 43200), // 12 hours
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadIngestorConfig loads configuration for the sensor ingestor service
func LoadIngestorConfig() (*IngestorConfig, error) {
	loadDotEnv()

	config := &IngestorConfig{
		Server: ServerConfig{
			Port:         getEnv("INGESTOR_PORT", "9003"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		MQTT: MQTTConfig{
			BrokerHost:  getEnv("BROKER_HOST", "localhost"),
			BrokerPort:  getInt("BROKER_PORT", 1883),
			BrokerUser:  getEnv("BROKER_USER", ""),
			BrokerPass:  getEnv("BROKER_PASS", ""),
			UseTLS:      getBool("BROKER_TLS", false),
			CACertPath:  getEnv("BROKER_CA_FILE", ""),
			Topic:       getEnv("MQTT_TOPIC", "sensors/+/healthlog"),
			ClientID:    getEnv("MQTT_CLIENT_ID", "phm-ingestor"),
			SharedGroup: getEnv("MQTT_SHARED_GROUP", ""),
			KeepAlive:   getDuration("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout: getDuration("MQTT_PING_TIMEOUT", 10*time.Second),
		},
		Logging: loadLoggingConfig(),
		Mongo: MongoConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Database:   getEnv("MONGODB_DATABASE", "phm"),
			Collection: getEnv("MONGODB_COLLECTION", "raw_readings"),
		},
		ApiServiceURL: getEnv("API_SERVICE_URL", "http://localhost:3000"),
		Username:      getEnv("INGESTOR_USERNAME", ""),
		Password:      getEnv("INGESTOR_PASSWORD", ""),
		BatchSize:     getInt("BATCH_SIZE", 100),
		BatchWindow:   getDuration("BATCH_WINDOW", time.Second),
	}

	if config.ApiServiceURL == "" {
		return nil, fmt.Errorf("API_SERVICE_URL is required")
	}
	if config.Username == "" || config.Password == "" {
		return nil, fmt.Errorf("INGESTOR_USERNAME and INGESTOR_PASSWORD are required")
	}
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("BATCH_SIZE must be positive")
	}

	return config, nil
}

// LoadSeederConfig loads configuration for the seed generator
func LoadSeederConfig() (*SeederConfig, error) {
	loadDotEnv()

	config := &SeederConfig{
		Database: loadDatabaseConfig(),
		Logging:  loadLoggingConfig(),
		HashCost: getInt("SEED_HASH_COST", 10),
	}

	if err := config.Database.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:     getEnv("DB_DRIVER", DriverPostgres),
		Host:       getEnv("POSTGRES_HOST", "localhost"),
		Port:       getInt("POSTGRES_PORT", 5432),
		User:       getEnv("POSTGRES_USER", ""),
		Password:   getEnv("POSTGRES_PASSWORD", ""),
		DBName:     getEnv("POSTGRES_DB", "plant_monitoring"),
		SSLMode:    getEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns:   getInt("POSTGRES_MAX_CONNS", 25),
		MinConns:   getInt("POSTGRES_MIN_CONNS", 5),
		SQLitePath: getEnv("SQLITE_PATH", "database/plant_monitoring.db"),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:        getEnv("LOG_LEVEL", "info"),
		Format:       getEnv("LOG_FORMAT", "text"),
		Output:       getEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: getBool("LOG_ENABLE_CALLER", false),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Auth.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}
	if c.Auth.JWTSecretKey == defaultJWTSecret {
		log.Println("WARNING: Using default JWT secret key. Change JWT_SECRET_KEY in production!")
	}
	if c.Auth.AccessTokenDuration <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_DURATION must be positive")
	}
	return nil
}

// Validate validates the database settings for the selected driver
func (d DatabaseConfig) Validate() error {
	switch d.Driver {
	case DriverPostgres:
		if d.User == "" {
			return fmt.Errorf("POSTGRES_USER is required")
		}
		if d.Password == "" {
			return fmt.Errorf("POSTGRES_PASSWORD is required")
		}
	case DriverSQLite:
		if d.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (expected %s or %s)", d.Driver, DriverPostgres, DriverSQLite)
	}
	return nil
}

// DSN returns the connection string for the configured driver
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// GetMQTTBrokerURL returns the MQTT broker URL
func (c *IngestorConfig) GetMQTTBrokerURL() string {
	scheme := "tcp"
	if c.MQTT.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.MQTT.BrokerHost, c.MQTT.BrokerPort)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return intValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Fatalf("invalid %s: %q (expected true/false or 1/0)", key, value)
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return duration
}

func getStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
