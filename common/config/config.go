package config

import (
	"os"
	"strconv"
	"time"
)

// GetEnv retrieves an environment variable or returns a default value.
// Every Load*Config function below goes through this single helper so
// the env-var-name-to-field mapping stays in one place per config
// struct (spec.md §6.2).
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// BrokerConfig holds the RabbitMQ connection settings shared by every
// service (spec.md §6.2).
type BrokerConfig struct {
	Host           string
	Port           string
	Username       string
	Password       string
	ConnectRetries int
	ConnectDelay   time.Duration
}

// LoadBrokerConfig reads RABBITMQ_* and BROKER_CONNECT_* from the
// environment, falling back to the documented defaults.
func LoadBrokerConfig() BrokerConfig {
	return BrokerConfig{
		Host:           GetEnv("RABBITMQ_HOST", "rabbitmq"),
		Port:           GetEnv("RABBITMQ_PORT", "5672"),
		Username:       GetEnv("RABBITMQ_USERNAME", "guest"),
		Password:       GetEnv("RABBITMQ_PASSWORD", "guest"),
		ConnectRetries: atoiDefault(GetEnv("BROKER_CONNECT_RETRIES", "10"), 10),
		ConnectDelay:   time.Duration(atoiDefault(GetEnv("BROKER_CONNECT_DELAY_MS", "5000"), 5000)) * time.Millisecond,
	}
}

// MySQLConfig holds the relational store target used by Admin and
// Employee. Two credential pairs are kept distinct per spec.md §6.2:
// the application role (reads/writes through the service's own
// business logic) and the root role (used by reconcilers applying
// replicated writes).
type MySQLConfig struct {
	Host         string
	Port         string
	Name         string
	AppUsername  string
	AppPassword  string
	RootUsername string
	RootPassword string
}

// LoadMySQLConfig reads MYSQL_DB_* from the environment. Host/Port/Name
// and the credential pairs have no defaults — they are deployment
// specific and a missing value should fail loudly at startup.
func LoadMySQLConfig() MySQLConfig {
	return MySQLConfig{
		Host:         GetEnv("MYSQL_DB_HOST", ""),
		Port:         GetEnv("MYSQL_DB_PORT", ""),
		Name:         GetEnv("MYSQL_DB_NAME", ""),
		AppUsername:  GetEnv("MYSQL_DB_APPLICATION_USERNAME", ""),
		AppPassword:  GetEnv("MYSQL_DB_APPLICATION_PASSWORD", ""),
		RootUsername: GetEnv("MYSQL_DB_ROOT_USERNAME", ""),
		RootPassword: GetEnv("MYSQL_DB_ROOT_PASSWORD", ""),
	}
}

// MongoConfig holds the document store target used by Auth and Synch.
type MongoConfig struct {
	Host         string
	Port         string
	Name         string
	AppUsername  string
	AppPassword  string
	RootUsername string
	RootPassword string
}

// LoadMongoConfig reads MONGO_DB_* from the environment.
func LoadMongoConfig() MongoConfig {
	return MongoConfig{
		Host:         GetEnv("MONGO_DB_HOST", "127.0.0.1"),
		Port:         GetEnv("MONGO_DB_PORT", "27017"),
		Name:         GetEnv("MONGO_DB_NAME", ""),
		AppUsername:  GetEnv("MONGO_DB_APPLICATION_USERNAME", ""),
		AppPassword:  GetEnv("MONGO_DB_APPLICATION_PASSWORD", ""),
		RootUsername: GetEnv("MONGO_DB_ROOT_USERNAME", ""),
		RootPassword: GetEnv("MONGO_DB_ROOT_PASSWORD", ""),
	}
}

// ObservabilityConfig holds the shared ambient settings every service
// loads regardless of which store/broker role it plays.
type ObservabilityConfig struct {
	LogLevel    string
	MetricsAddr string
	OTLPAddr    string
}

func LoadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:    GetEnv("LOG_LEVEL", "INFO"),
		MetricsAddr: GetEnv("METRICS_ADDR", ":9100"),
		OTLPAddr:    GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// RedisConfig holds the Synch service's brand/color cache target (C12).
type RedisConfig struct {
	Addr string
	TTL  time.Duration
}

func LoadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr: GetEnv("REDIS_ADDR", "127.0.0.1:6379"),
		TTL:  5 * time.Minute,
	}
}

func atoiDefault(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
