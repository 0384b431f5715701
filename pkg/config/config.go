package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Assignment store backends.
const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// Lock backends understood by the scheduler.
const (
	LockBackendMemory = "memory"
	LockBackendRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store       StoreConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Scheduler   SchedulerConfig
	Lock        LockConfig
	Idempotency IdempotencyConfig
	Metrics     MetricsConfig
}

// StoreConfig selects where assignments live. The memory backend keeps
// everything in process and resolves teachers and classes from the seeded
// id lists; an empty list accepts any id.
type StoreConfig struct {
	Backend        string
	MemoryTeachers []string
	MemoryClasses  []string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig describes how bearer tokens issued by the authentication service are verified.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the assignment service.
type SchedulerConfig struct {
	OperationTimeout time.Duration
	DefaultPageSize  int
	MaxPageSize      int
}

// LockConfig selects how per-teacher write serialisation is enforced.
type LockConfig struct {
	Backend       string
	TTL           time.Duration
	RetryInterval time.Duration
}

// IdempotencyConfig controls replay protection for create requests.
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = strings.TrimRight(v.GetString("API_PREFIX"), "/")

	store := strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND")))
	if store != StoreBackendMemory {
		store = StoreBackendPostgres
	}
	cfg.Store = StoreConfig{
		Backend:        store,
		MemoryTeachers: splitAndTrim(v.GetString("STORE_MEMORY_TEACHERS")),
		MemoryClasses:  splitAndTrim(v.GetString("STORE_MEMORY_CLASSES")),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		OperationTimeout: parseDuration(v.GetString("SCHEDULER_OPERATION_TIMEOUT"), 5*time.Second),
		DefaultPageSize:  v.GetInt("SCHEDULER_DEFAULT_PAGE_SIZE"),
		MaxPageSize:      v.GetInt("SCHEDULER_MAX_PAGE_SIZE"),
	}

	backend := strings.ToLower(strings.TrimSpace(v.GetString("LOCK_BACKEND")))
	if backend != LockBackendRedis {
		backend = LockBackendMemory
	}
	cfg.Lock = LockConfig{
		Backend:       backend,
		TTL:           parseDuration(v.GetString("LOCK_TTL"), 10*time.Second),
		RetryInterval: parseDuration(v.GetString("LOCK_RETRY_INTERVAL"), 25*time.Millisecond),
	}

	cfg.Idempotency = IdempotencyConfig{
		Enabled: v.GetBool("IDEMPOTENCY_ENABLED"),
		TTL:     parseDuration(v.GetString("IDEMPOTENCY_TTL"), 24*time.Hour),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "")

	v.SetDefault("STORE_BACKEND", StoreBackendPostgres)
	v.SetDefault("STORE_MEMORY_TEACHERS", "")
	v.SetDefault("STORE_MEMORY_CLASSES", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_OPERATION_TIMEOUT", "5s")
	v.SetDefault("SCHEDULER_DEFAULT_PAGE_SIZE", 20)
	v.SetDefault("SCHEDULER_MAX_PAGE_SIZE", 100)

	v.SetDefault("LOCK_BACKEND", LockBackendMemory)
	v.SetDefault("LOCK_TTL", "10s")
	v.SetDefault("LOCK_RETRY_INTERVAL", "25ms")

	v.SetDefault("IDEMPOTENCY_ENABLED", false)
	v.SetDefault("IDEMPOTENCY_TTL", "24h")

	v.SetDefault("ENABLE_METRICS", true)
}

// isMissingFile reports a missing .env; viper returns a filesystem error rather
// than ConfigFileNotFoundError when SetConfigFile is used.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
