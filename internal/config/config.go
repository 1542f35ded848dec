package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Kiosk    KioskConfig
}

type ServerConfig struct {
	Port         string
	FrontendURL  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	TicketScanned string
}

type AuthConfig struct {
	// Secret used to sign and verify ticket tokens embedded in QR codes.
	TicketTokenSecret string
}

type KioskConfig struct {
	// Base URL of the scan service the kiosk talks to.
	ServerURL string
	// Path of the offline queue snapshot file.
	QueueFile string
	// When set, the offline queue is persisted to Redis under this key
	// instead of the snapshot file.
	QueueRedisKey string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":5000"),
			FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:5173"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:          getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/espace_comedie?parseTime=true"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 10),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				TicketScanned: getEnv("KAFKA_TOPIC_TICKET_SCANNED", "scanning.ticket.scanned"),
			},
		},
		Auth: AuthConfig{
			TicketTokenSecret: getEnv("TICKET_TOKEN_SECRET", ""),
		},
		Kiosk: KioskConfig{
			ServerURL:     getEnv("SCAN_SERVER_URL", "http://localhost:5000"),
			QueueFile:     getEnv("KIOSK_QUEUE_FILE", "offline-scans.json"),
			QueueRedisKey: getEnv("KIOSK_QUEUE_REDIS_KEY", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
