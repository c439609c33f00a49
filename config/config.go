package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App               AppConfig
	HTTP              ServerConfig
	MySQL             MySQLConfig
	Redis             RedisConfig
	Kafka             KafkaConfig
	Log               LogConfig
	InternalEndpoints InternalEndpointsConfig
	Esewa             EsewaConfig
	Khalti            KhaltiConfig
	Reservations      ReservationsConfig
	Jobs              JobsConfig
}

type AppConfig struct {
	ServiceName string
	APIKey      string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	CacheTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type LogConfig struct {
	Level string
}

type InternalEndpointsConfig struct {
	AuthGRPCAddr string
}

type EsewaConfig struct {
	ProductCode string
	SecretKey   string
	FormURL     string
	StatusURL   string
	HTTPTimeout time.Duration
}

type KhaltiConfig struct {
	SecretKey   string
	BaseURL     string
	WebsiteURL  string
	HTTPTimeout time.Duration
}

type ReservationsConfig struct {
	HoldDuration     time.Duration
	AttemptListLimit int32
}

type JobsConfig struct {
	SweepInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "reservations-service"),
			APIKey:      getEnv("APP_API_KEY", ""),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			CacheTTL: getSecondsEnv("REDIS_CACHE_TTL_SECONDS", 60*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: getListEnv("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_RESERVATION_EVENTS_TOPIC", "reservation-events"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		InternalEndpoints: InternalEndpointsConfig{
			AuthGRPCAddr: getEnv("AUTH_SERVICE_GRPC_ADDR", "localhost:9090"),
		},
		Esewa: EsewaConfig{
			ProductCode: getEnv("ESEWA_PRODUCT_CODE", "EPAYTEST"),
			SecretKey:   getEnv("ESEWA_SECRET_KEY", ""),
			FormURL:     getEnv("ESEWA_FORM_URL", "https://rc-epay.esewa.com.np/api/epay/main/v2/form"),
			StatusURL:   getEnv("ESEWA_STATUS_URL", "https://rc.esewa.com.np/api/epay/transaction/status/"),
			HTTPTimeout: getSecondsEnv("ESEWA_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Khalti: KhaltiConfig{
			SecretKey:   getEnv("KHALTI_SECRET_KEY", ""),
			BaseURL:     getEnv("KHALTI_BASE_URL", "https://dev.khalti.com"),
			WebsiteURL:  getEnv("KHALTI_WEBSITE_URL", ""),
			HTTPTimeout: getSecondsEnv("KHALTI_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Reservations: ReservationsConfig{
			HoldDuration:     getMinutesEnv("RESERVATIONS_HOLD_DURATION_MINUTES", 24*time.Hour),
			AttemptListLimit: int32(getIntEnv("RESERVATIONS_ATTEMPT_LIST_LIMIT", 20)),
		},
		Jobs: JobsConfig{
			SweepInterval: getSecondsEnv("RESERVATIONS_SWEEP_INTERVAL_SECONDS", 30*time.Second),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
