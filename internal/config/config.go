package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config はアプリケーション設定を表す
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	RabbitMQ RabbitMQConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig は通知配信の設定（Brokers が空なら無効）
type KafkaConfig struct {
	Brokers           []string
	NotificationTopic string
}

// RabbitMQConfig はメールキューの設定（URL が空なら無効）
type RabbitMQConfig struct {
	URL       string
	MailQueue string
}

// BookingConfig は予約と精算の設定
type BookingConfig struct {
	LockTTL           time.Duration
	LockRetries       int
	LockRetryInterval time.Duration
	PolicyCacheTTL    time.Duration
	ReconcileInterval time.Duration
	// ReconcileGrace はリコンサイラーが引き落としを再試行するまでの猶予
	ReconcileGrace time.Duration
	TimeZone       string
}

// LoadDotEnv は .env ファイルがあれば環境変数に読み込む
// 既に設定済みの変数が優先される
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load は環境変数から設定を読み込む
func Load() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getPositiveDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getPositiveDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "aeroclub"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:           getListEnv("KAFKA_BROKERS", nil),
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "club.notifications"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:       getEnv("RABBITMQ_URL", ""),
			MailQueue: getEnv("RABBITMQ_MAIL_QUEUE", "mail.outbound"),
		},
		Booking: BookingConfig{
			LockTTL:           getPositiveDurationEnv("BOOKING_LOCK_TTL", 10*time.Second),
			LockRetries:       getIntEnv("BOOKING_LOCK_RETRIES", 3),
			LockRetryInterval: getPositiveDurationEnv("BOOKING_LOCK_RETRY_INTERVAL", 100*time.Millisecond),
			PolicyCacheTTL:    getPositiveDurationEnv("BOOKING_POLICY_CACHE_TTL", 30*time.Second),
			ReconcileInterval: getPositiveDurationEnv("SETTLEMENT_RECONCILE_INTERVAL", time.Minute),
			ReconcileGrace:    getDurationEnv("SETTLEMENT_RECONCILE_GRACE", 30*time.Second),
			TimeZone:          getEnv("BOOKING_TIMEZONE", "UTC"),
		},
	}

	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		applyDatabaseURL(&cfg.Database, raw)
	}
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		applyRedisURL(&cfg.Redis, raw)
	}
	return cfg
}

// Location は予約のタイムゾーンを返す（解決できなければ UTC）
func (c *BookingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedisのアドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// applyDatabaseURL は postgres:// 形式のURLで個別設定を上書きする
// 解析できないURLは無視する
func applyDatabaseURL(c *DatabaseConfig, raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return
	}
	c.Host = u.Hostname()
	if p := u.Port(); p != "" {
		c.Port = p
	}
	if u.User != nil {
		c.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.Password = pw
		}
	}
	c.DBName = strings.TrimPrefix(u.Path, "/")
	c.SSLMode = "require"
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.SSLMode = mode
	}
}

func applyRedisURL(c *RedisConfig, raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return
	}
	c.Host = u.Hostname()
	if p := u.Port(); p != "" {
		c.Port = p
	}
	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			c.Password = pw
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getPositiveDurationEnv は0より大きい必要がある設定用の getDurationEnv
func getPositiveDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if d := getDurationEnv(key, defaultValue); d > 0 {
		return d
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
