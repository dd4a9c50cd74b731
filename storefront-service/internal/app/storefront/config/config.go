package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Драйверы хранилища слотов
const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

// Config содержит все настройки Storefront Service
type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Database    DatabaseConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	JWT         JWTConfig
	Catalog     CatalogConfig
	Persistence PersistenceConfig
	Session     SessionConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port         string   // Порт HTTP сервера
	AllowOrigins []string // Разрешённые origin для CORS
}

// StorageConfig выбор драйвера для слотов корзины и пользователя
type StorageConfig struct {
	Driver string // redis | postgres | mongo
}

// RedisConfig настройки Redis; используется как драйвер слотов и кеш каталога
type RedisConfig struct {
	Host      string
	Port      string
	Password  string
	DB        int
	KeyPrefix string        // Префикс ключей слотов
	SlotTTL   time.Duration // 0 - без истечения
}

// DatabaseConfig настройки PostgreSQL для драйвера postgres
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MongoDBConfig struct {
	URI      string
	Database string
}

// KafkaConfig публикация событий ORDER_CONFIRMED; KAFKA_BROKERS=off отключает публикацию
type KafkaConfig struct {
	Brokers        []string
	Topic          string
	PublishTimeout time.Duration
}

// JWTConfig подпись токенов сессий
type JWTConfig struct {
	Secret     string
	SessionTTL time.Duration
}

type CatalogConfig struct {
	URL          string
	Timeout      time.Duration
	CacheTTL     time.Duration
	WarmSchedule string // Пустое значение (CATALOG_WARM_SCHEDULE=off) отключает прогрев
}

// PersistenceConfig таймаут фонового сохранения корзины
type PersistenceConfig struct {
	SaveTimeout time.Duration
}

// SessionConfig вытеснение неактивных сессий из памяти
type SessionConfig struct {
	IdleTTL       time.Duration
	PruneSchedule string
}

type LogConfig struct {
	Level        string
	LogstashAddr string // Пустое значение - только stdout
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	var errs []string
	intVar := func(key string, def int) int {
		v, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}
	durationVar := func(key string, def time.Duration) time.Duration {
		v, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err.Error())
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8085"),
			AllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "")),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageRedis)),
		},
		Redis: RedisConfig{
			Host:      getEnv("REDIS_HOST", "localhost"),
			Port:      getEnv("REDIS_PORT", "6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        intVar("REDIS_DB", 3),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "storefront:"),
			SlotTTL:   durationVar("REDIS_SLOT_TTL", 30*24*time.Hour),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "storefront"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "storefront"),
		},
		Kafka: KafkaConfig{
			Brokers:        splitList(getEnvOptional("KAFKA_BROKERS", "localhost:9092")),
			Topic:          getEnv("KAFKA_TOPIC", "order_events"),
			PublishTimeout: durationVar("KAFKA_PUBLISH_TIMEOUT", 5*time.Second),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			SessionTTL: durationVar("JWT_SESSION_TTL", 30*24*time.Hour),
		},
		Catalog: CatalogConfig{
			URL:          getEnv("CATALOG_URL", "https://fakestoreapi.com"),
			Timeout:      durationVar("CATALOG_TIMEOUT", 10*time.Second),
			CacheTTL:     durationVar("CATALOG_CACHE_TTL", 10*time.Minute),
			WarmSchedule: getEnvOptional("CATALOG_WARM_SCHEDULE", "0 */5 * * * *"),
		},
		Persistence: PersistenceConfig{
			SaveTimeout: durationVar("PERSIST_SAVE_TIMEOUT", 2*time.Second),
		},
		Session: SessionConfig{
			IdleTTL:       durationVar("SESSION_IDLE_TTL", 30*time.Minute),
			PruneSchedule: getEnvOptional("SESSION_PRUNE_SCHEDULE", "0 * * * * *"),
		},
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: getEnv("LOGSTASH_ADDR", ""),
		},
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	switch cfg.Storage.Driver {
	case StorageRedis, StoragePostgres, StorageMongo:
	default:
		return nil, fmt.Errorf("invalid configuration: unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return intValue, nil
}

// getEnvDuration принимает формат time.ParseDuration ("30s", "5m")
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be a duration, got %q", key, value)
	}
	return d, nil
}

// getEnvOptional значение "off" означает пустую настройку (отключает задачу или Kafka)
func getEnvOptional(key, defaultValue string) string {
	value := getEnv(key, defaultValue)
	if strings.EqualFold(value, "off") {
		return ""
	}
	return value
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
