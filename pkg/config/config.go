package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int
	GRPCPort int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	// MySQLDSN is optional; without it confirmed orders are only logged.
	MySQLDSN    string
	WorkerCount int
	QueueSize   int

	CookieSecure    bool
	ShutdownTimeout time.Duration

	StoreAddress string
	StoreLat     float64
	StoreLon     float64
	ImagesDir    string
}

func Load() Config {
	return Config{
		AppEnv:          getEnv("APP_ENV", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPPort:        getEnvInt("HTTP_PORT", 8080),
		GRPCPort:        getEnvInt("GRPC_PORT", 50051),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CartTTL:         getEnvDuration("CART_TTL", 24*time.Hour),
		MySQLDSN:        getEnv("MYSQL_DSN", ""),
		WorkerCount:     max(getEnvInt("WORKER_COUNT", 4), 1),
		QueueSize:       max(getEnvInt("QUEUE_SIZE", 1000), 0),
		CookieSecure:    getEnvBool("COOKIE_SECURE", false),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		StoreAddress:    getEnv("STORE_ADDRESS", "Moscow, Vernadsky Avenue 78, building 4, 119454"),
		StoreLat:        getEnvFloat("STORE_LAT", 55.669980),
		StoreLon:        getEnvFloat("STORE_LON", 37.480400),
		ImagesDir:       getEnv("IMAGES_DIR", "web/images"),
	}
}

func (c Config) IsProd() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
