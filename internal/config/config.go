package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	LogLevel    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	TokenSecret   string
	TokenStrategy string
	TokenTTL      time.Duration

	AdminEmail    string
	AdminPassword string

	LoginOTP        bool
	OTPTTL          time.Duration
	OTPMaxAttempts  int
	OTPResendWindow time.Duration
	ResetTTL        time.Duration

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	NotifyPollInterval time.Duration
	WorkerPoolSize     int
	NotifyBatchSize    int
	ShutdownTimeout    time.Duration

	CatalogFile string
}

const (
	defaultRunAddress         = ":8080"
	defaultLogLevel           = "info"
	defaultRedisAddr          = "localhost:6379"
	defaultTokenSecret        = "change-me-in-production"
	defaultTokenStrategy      = "jwt"
	defaultTokenTTL           = 24 * time.Hour
	defaultOTPTTL             = 5 * time.Minute
	defaultOTPMaxAttempts     = 5
	defaultOTPResendWindow    = 60 * time.Second
	defaultResetTTL           = 15 * time.Minute
	defaultNotifyPollInterval = 3 * time.Second
	defaultWorkerPoolSize     = 4
	defaultNotifyBatchSize    = 32
	defaultShutdownTimeout    = 10 * time.Second
	defaultEnvFile            = ".env"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	envFile := defaultEnvFile
	if v, ok := os.LookupEnv("ENV_FILE"); ok && v != "" {
		envFile = v
	}
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	return load(os.Args[1:], os.LookupEnv)
}

// loadEnvFile populates missing variables from dotenv file. Real environment wins.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		LogLevel:           getString(lookup, "LOG_LEVEL", defaultLogLevel),
		RedisAddr:          getString(lookup, "REDIS_ADDR", defaultRedisAddr),
		RedisPassword:      getString(lookup, "REDIS_PASSWORD", ""),
		RedisDB:            getInt(lookup, "REDIS_DB", 0),
		TokenSecret:        getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		TokenStrategy:      getString(lookup, "TOKEN_STRATEGY", defaultTokenStrategy),
		TokenTTL:           getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		AdminEmail:         getString(lookup, "ADMIN_EMAIL", ""),
		AdminPassword:      getString(lookup, "ADMIN_PASSWORD", ""),
		LoginOTP:           getBool(lookup, "LOGIN_OTP", false),
		OTPTTL:             getDuration(lookup, "OTP_TTL", defaultOTPTTL),
		OTPMaxAttempts:     getInt(lookup, "OTP_MAX_ATTEMPTS", defaultOTPMaxAttempts),
		OTPResendWindow:    getDuration(lookup, "OTP_RESEND_WINDOW", defaultOTPResendWindow),
		ResetTTL:           getDuration(lookup, "RESET_TTL", defaultResetTTL),
		TwilioAccountSID:   getString(lookup, "TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getString(lookup, "TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:   getString(lookup, "TWILIO_FROM_NUMBER", ""),
		NotifyPollInterval: getDuration(lookup, "NOTIFY_POLL_INTERVAL", defaultNotifyPollInterval),
		WorkerPoolSize:     getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		NotifyBatchSize:    getInt(lookup, "NOTIFY_BATCH_SIZE", defaultNotifyBatchSize),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		CatalogFile:        getString(lookup, "CATALOG_FILE", ""),
	}

	fs := flag.NewFlagSet("webpot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.NotifyPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for one-time codes")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.TokenStrategy, "token-strategy", cfg.TokenStrategy, "Token format: jwt or hmac")
	fs.BoolVar(&cfg.LoginOTP, "login-otp", cfg.LoginOTP, "Require one-time code after password login")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent notification workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between notification polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.NotifyBatchSize, "poll-batch", cfg.NotifyBatchSize, "Maximum orders per notification batch")
	fs.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "YAML file overriding service tier prices")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.NotifyPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read token secret file: %w", err)
		}
		cfg.TokenSecret = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}
	if cfg.NotifyBatchSize <= 0 {
		cfg.NotifyBatchSize = defaultNotifyBatchSize
	}
	if cfg.NotifyPollInterval <= 0 {
		cfg.NotifyPollInterval = defaultNotifyPollInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = defaultOTPTTL
	}
	if cfg.OTPMaxAttempts <= 0 {
		cfg.OTPMaxAttempts = defaultOTPMaxAttempts
	}
	if cfg.OTPResendWindow <= 0 {
		cfg.OTPResendWindow = defaultOTPResendWindow
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = defaultResetTTL
	}

	cfg.TokenStrategy = strings.ToLower(strings.TrimSpace(cfg.TokenStrategy))
	switch cfg.TokenStrategy {
	case "jwt", "hmac":
	default:
		return nil, fmt.Errorf("unknown token strategy %q", cfg.TokenStrategy)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return nil, fmt.Errorf("admin email and password must be provided together")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(lookup envLookup, key string, def bool) bool {
	if v, ok := lookup(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
