package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBDriver      string        `yaml:"db_driver"`
	DatabaseURL   string        `yaml:"database_url"`
	DBMaxOpen     int           `yaml:"db_max_open_conns"`
	DBConnMaxIdle time.Duration `yaml:"db_conn_max_idle"`

	RedisAddr string        `yaml:"redis_addr"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`

	UseKafka         bool          `yaml:"use_kafka"`
	KafkaBrokers     []string      `yaml:"kafka_brokers"`
	KafkaTopicQuery  string        `yaml:"kafka_topic_queries"`
	SlowQueryLogTime time.Duration `yaml:"slow_query_threshold"`

	HTTPPort string `yaml:"http_port"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	QueryDefaultPerPage int  `yaml:"query_default_per_page"`
	QueryMaxPerPage     int  `yaml:"query_max_per_page"`
	QueryStrict         bool `yaml:"query_strict"`
}

// Defaults devuelve la configuración de desarrollo: SQLite en memoria y
// bus de eventos local.
func Defaults() Config {
	return Config{
		DBDriver:            "sqlite",
		DatabaseURL:         "file:hexaquery?mode=memory&cache=shared",
		DBMaxOpen:           10,
		DBConnMaxIdle:       5 * time.Minute,
		RedisAddr:           "localhost:6379",
		CacheTTL:            time.Minute,
		KafkaBrokers:        []string{"localhost:9092"},
		KafkaTopicQuery:     "query-events",
		SlowQueryLogTime:    500 * time.Millisecond,
		HTTPPort:            "8080",
		LogLevel:            "info",
		LogFormat:           "json",
		QueryDefaultPerPage: 15,
		QueryMaxPerPage:     100,
	}
}

// LoadConfig aplica, en orden, los valores por defecto, el YAML de
// CONFIG_FILE (si existe) y las variables de entorno.
func LoadConfig() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	var errs []string
	getInt := func(key string, fallback int) int {
		v := os.Getenv(key)
		if v == "" {
			return fallback
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q is not an integer", key, v))
			return fallback
		}
		return n
	}
	getDuration := func(key string, fallback time.Duration) time.Duration {
		v := os.Getenv(key)
		if v == "" {
			return fallback
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q is not a duration", key, v))
			return fallback
		}
		return d
	}
	getBool := func(key string, fallback bool) bool {
		v := os.Getenv(key)
		if v == "" {
			return fallback
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q is not a boolean", key, v))
			return fallback
		}
		return b
	}

	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.DBMaxOpen = getInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpen)
	cfg.DBConnMaxIdle = getDuration("DB_CONN_MAX_IDLE", cfg.DBConnMaxIdle)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.CacheTTL = getDuration("CACHE_TTL", cfg.CacheTTL)
	cfg.UseKafka = getBool("USE_KAFKA", cfg.UseKafka)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}
	cfg.KafkaTopicQuery = getEnv("KAFKA_TOPIC_QUERIES", cfg.KafkaTopicQuery)
	cfg.SlowQueryLogTime = getDuration("SLOW_QUERY_THRESHOLD", cfg.SlowQueryLogTime)
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.QueryDefaultPerPage = getInt("QUERY_DEFAULT_PER_PAGE", cfg.QueryDefaultPerPage)
	cfg.QueryMaxPerPage = getInt("QUERY_MAX_PER_PAGE", cfg.QueryMaxPerPage)
	cfg.QueryStrict = getBool("QUERY_STRICT", cfg.QueryStrict)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return nil
}
