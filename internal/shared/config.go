package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv          string
	LogLevel        string
	HTTPAddr        string
	MetricsAddr     string
	MySQLDSN        string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	CacheTTL        time.Duration
	AuthSecret      string
	DefaultCurrency string
	RateLimitRPS    int
	SeedWorkers     int
	CatalogFeedKey  string
}

// Load reads configuration from the environment. A .env file in the working
// directory (or the files named in ENV_FILE) is loaded first; variables
// already set in the environment win.
func Load() Config {
	if files := os.Getenv("ENV_FILE"); files != "" {
		if err := godotenv.Load(files); err != nil {
			log.Warn().Err(err).Str("file", files).Msg("env file not loaded")
		}
	} else {
		_ = godotenv.Load()
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		LogLevel:        env("LOG_LEVEL", "info"),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MetricsAddr:     env("METRICS_ADDR", ""),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotel?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		AuthSecret:      env("AUTH_SECRET", ""),
		DefaultCurrency: env("DEFAULT_CURRENCY", "CLP"),
		RateLimitRPS:    atoi("RATE_LIMIT_RPS", 5),
		SeedWorkers:     atoi("SEED_WORKERS", 4),
		CatalogFeedKey:  env("CATALOG_FEED_KEY", ""),
	}
	if c.AuthSecret == "" {
		log.Warn().Msg("AUTH_SECRET is empty; every authenticated route will answer 401")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
