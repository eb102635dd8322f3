package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	JobSearch JobSearchConfig
	Alerts    AlertsConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	PoolMaxConns int32
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type JWTConfig struct {
	AccessSecret string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromAddr string
	FromName string
}

type JobSearchConfig struct {
	APIKey  string
	APIHost string
	BaseURL string
}

// AlertsConfig controls the alert check scheduler and queue. The circuit
// breaker threshold and cooldown are fixed constants in the usecase package.
type AlertsConfig struct {
	CronSchedule      string
	TestInterval      bool // fire every 10s instead of the cron schedule
	QueueConcurrency  int
	RequestsPerMinute int
	DirectRunDelay    time.Duration
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	// Missing .env is fine; deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, fallback string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return fallback
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     opt("APP_NAME", "velocity"),
		Environment: opt("APP_ENV", "development"),
		HTTPPort:    opt("HTTP_PORT", "8080"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     req("DB_HOST"),
		DBPort:     opt("DB_PORT", "5432"),
		DBName:     req("DB_NAME"),
		DBUser:     req("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE", "disable"),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", "localhost"),
		Port:     opt("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret: req("JWT_ACCESS_SECRET"),
	}

	cfg.SMTP = SMTPConfig{
		Host:     opt("SMTP_HOST", "smtp.gmail.com"),
		Username: req("EMAIL_USER"),
		Password: req("EMAIL_PASS"),
		FromAddr: opt("EMAIL_FROM", os.Getenv("EMAIL_USER")),
		FromName: opt("EMAIL_FROM_NAME", "Velocity Jobs"),
	}

	cfg.JobSearch = JobSearchConfig{
		APIKey:  req("RAPID_API_KEY"),
		APIHost: opt("RAPID_API_HOST", "jsearch.p.rapidapi.com"),
		BaseURL: opt("RAPID_API_BASE_URL", "https://jsearch.p.rapidapi.com"),
	}

	cfg.Alerts = AlertsConfig{
		CronSchedule: opt("ALERT_CRON_SCHEDULE", "0 */6 * * *"),
		TestInterval: strings.EqualFold(strings.TrimSpace(os.Getenv("ALERT_TEST_INTERVAL")), "10s"),
	}

	ints := []struct {
		key      string
		fallback int
		dst      func(int)
	}{
		{"DB_POOL_MAX_CONNS", 10, func(v int) { cfg.Database.PoolMaxConns = int32(v) }},
		{"SMTP_PORT", 587, func(v int) { cfg.SMTP.Port = v }},
		{"ALERT_QUEUE_CONCURRENCY", 2, func(v int) { cfg.Alerts.QueueConcurrency = v }},
		{"ALERT_REQUESTS_PER_MINUTE", 20, func(v int) { cfg.Alerts.RequestsPerMinute = v }},
		{"ALERT_DIRECT_RUN_DELAY_SECONDS", 5, func(v int) { cfg.Alerts.DirectRunDelay = time.Duration(v) * time.Second }},
	}
	for _, it := range ints {
		v, err := parseOptInt(it.key, it.fallback)
		if err != nil {
			return Config{}, err
		}
		it.dst(v)
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func parseOptInt(key string, fallback int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, s)
	}
	return v, nil
}
