package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	StorageURL    string
	StorageKey    string
	StorageBucket string
	StorageRPS    int

	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	ContactPhone        string
	ContactPhoneDisplay string
	CarouselInterval    time.Duration
	BookingRatePerMin   int
	UploadMaxEdge       int
	UploadMaxBytes      int64
	UploadConcurrency   int
	MigrationsDir       string
}

// Load reads the environment. A .env file in the working directory is
// applied first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/ayurveda?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		StorageURL:    env("STORAGE_URL", ""),
		StorageKey:    env("STORAGE_SERVICE_KEY", ""),
		StorageBucket: env("STORAGE_BUCKET", "images"),
		StorageRPS:    atoi("STORAGE_RPS", 5),

		JWTSecret:     env("JWT_SECRET", ""),
		AdminEmail:    env("ADMIN_EMAIL", ""),
		AdminPassword: env("ADMIN_PASSWORD", ""),

		ContactPhone:        env("CONTACT_PHONE", "966500000000"),
		ContactPhoneDisplay: env("CONTACT_PHONE_DISPLAY", "+966 50 000 0000"),
		CarouselInterval:    time.Duration(atoi("CAROUSEL_INTERVAL_MS", 5000)) * time.Millisecond,
		BookingRatePerMin:   atoi("BOOKING_RATE_PER_MIN", 10),
		UploadMaxEdge:       atoi("UPLOAD_MAX_EDGE", 2000),
		UploadMaxBytes:      int64(atoi("UPLOAD_MAX_MB", 10)) << 20,
		UploadConcurrency:   atoi("UPLOAD_CONCURRENCY", 2),
		MigrationsDir:       env("MIGRATIONS_DIR", "migrations"),
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; admin sign-in is disabled")
	}
	if c.StorageURL == "" || c.StorageKey == "" {
		log.Warn().Msg("STORAGE_URL or STORAGE_SERVICE_KEY is empty; image uploads are disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
