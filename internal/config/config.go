// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
)

type App struct {
	Env             string
	Port            string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	RateLimit       int
	CORSOrigins     []string
}

type Logger struct {
	Level               string
	OutputFileName      string
	OutputErrorFileName string
}

type Postgres struct {
	URL            string
	MigrationsPath string
	ConnectRetries int
}

type Redis struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL time.Duration
}

type RabbitMQ struct {
	URL          string
	ResultsQueue string
}

type Minio struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Telegram struct {
	Token        string
	DoctorChatID int64
}

type DeepSeek struct {
	APIKey  string
	BaseURL string
	Model   string
}

type Triage struct {
	BankPath string
	// ConfidenceThreshold overrides the bank's value when set.
	ConfidenceThreshold *float64
	// ReportFrom is the lowest classification that triggers a doctor report.
	ReportFrom string
	FontPath   string
}

type Config struct {
	App      App
	Logger   Logger
	Postgres Postgres
	Redis    Redis
	RabbitMQ RabbitMQ
	Minio    Minio
	Telegram Telegram
	DeepSeek DeepSeek
	Triage   Triage
}

// Load reads a .env file when present, then the process environment.
// Adapters whose address is empty are disabled by the caller.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	return &Config{
		App: App{
			Env:             GetEnvString("APP_ENV", "development"),
			Port:            GetEnvString("PORT", "8080"),
			ShutdownTimeout: GetEnvDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  GetEnvDuration("APP_REQUEST_TIMEOUT", 15*time.Second),
			RateLimit:       GetEnvInt("APP_RATE_LIMIT_PER_MINUTE", 120),
			CORSOrigins:     []string{GetEnvString("APP_CORS_ORIGIN", "*")},
		},
		Logger: Logger{
			Level:               GetEnvString("LOG_LEVEL", "info"),
			OutputFileName:      GetEnvString("LOG_OUTPUT_FILE", "./logs/triage.log"),
			OutputErrorFileName: GetEnvString("LOG_ERROR_OUTPUT_FILE", "./logs/triage-error.log"),
		},
		Postgres: Postgres{
			URL:            GetEnvString("DATABASE_URL", ""),
			MigrationsPath: GetEnvString("MIGRATIONS_PATH", "file://migrations"),
			ConnectRetries: GetEnvInt("DATABASE_CONNECT_RETRIES", 10),
		},
		Redis: Redis{
			Addr:       GetEnvString("REDIS_ADDR", ""),
			Password:   GetEnvString("REDIS_PASSWORD", ""),
			DB:         GetEnvInt("REDIS_DB", 0),
			SessionTTL: GetEnvDuration("REDIS_SESSION_TTL", 2*time.Hour),
		},
		RabbitMQ: RabbitMQ{
			URL:          GetEnvString("RABBITMQ_URL", ""),
			ResultsQueue: GetEnvString("RABBITMQ_RESULTS_QUEUE", "triage.results"),
		},
		Minio: Minio{
			Endpoint:  GetEnvString("MINIO_ENDPOINT", ""),
			AccessKey: GetEnvString("MINIO_ACCESS_KEY", ""),
			SecretKey: GetEnvString("MINIO_SECRET_KEY", ""),
			Bucket:    GetEnvString("MINIO_BUCKET", "triage-reports"),
			UseSSL:    GetEnvBool("MINIO_USE_SSL", false),
		},
		Telegram: Telegram{
			Token:        GetEnvString("TELEGRAM_BOT_TOKEN", ""),
			DoctorChatID: GetEnvInt64("DOCTOR_CHAT_ID", 0),
		},
		DeepSeek: DeepSeek{
			APIKey:  GetEnvString("DEEPSEEK_API_KEY", ""),
			BaseURL: GetEnvString("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
			Model:   GetEnvString("DEEPSEEK_MODEL", "deepseek-chat"),
		},
		Triage: Triage{
			BankPath:            GetEnvString("TRIAGE_BANK_PATH", ""),
			ConfidenceThreshold: LookupEnvFloat("TRIAGE_CONFIDENCE_THRESHOLD"),
			ReportFrom:          GetEnvString("TRIAGE_REPORT_FROM", "Alto"),
			FontPath:            GetEnvString("TRIAGE_FONT_PATH", ""),
		},
	}
}
