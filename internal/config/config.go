package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DatabaseConfig holds PostgreSQL connection settings and the roles assumed inside RLS scopes.
type DatabaseConfig struct {
	Host               string `env:"DB_HOST"`
	Port               string `env:"DB_PORT" envDefault:"5432"`
	User               string `env:"DB_USER"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME"`
	SSLMode            string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSec int    `env:"DB_CONN_MAX_LIFETIME_SEC" envDefault:"300"`
	AuthenticatedRole  string `env:"DB_AUTHENTICATED_ROLE" envDefault:"authenticated"`
	ServiceRole        string `env:"DB_SERVICE_ROLE" envDefault:"service_role"`
	MigrateOnStart     bool   `env:"DB_MIGRATE_ON_START" envDefault:"true"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

// AuthConfig selects how bearer tokens are verified.
// When OIDCIssuer is set the OIDC verifier is used, otherwise HS256 with JWTSecret.
type AuthConfig struct {
	JWTSecret    string        `env:"AUTH_JWT_SECRET"`
	JWTIssuer    string        `env:"AUTH_JWT_ISSUER"`
	JWTAudience  string        `env:"AUTH_JWT_AUDIENCE" envDefault:"authenticated"`
	OIDCIssuer   string        `env:"AUTH_OIDC_ISSUER"`
	OIDCClientID string        `env:"AUTH_OIDC_CLIENT_ID"`
	RoleCacheTTL time.Duration `env:"AUTH_ROLE_CACHE_TTL" envDefault:"60s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type KafkaConfig struct {
	Brokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	TopicPrefix string   `env:"KAFKA_TOPIC_PREFIX" envDefault:"club"`
}

type RabbitMQConfig struct {
	URL   string `env:"RABBITMQ_URL"`
	Queue string `env:"RABBITMQ_QUEUE" envDefault:"club.notifications"`
}

// MailConfig configures the MailerSend sender used by the notification worker.
type MailConfig struct {
	APIKey    string `env:"MAILERSEND_API_KEY"`
	FromEmail string `env:"MAIL_FROM_EMAIL" envDefault:"no-reply@club.local"`
	FromName  string `env:"MAIL_FROM_NAME" envDefault:"Club"`
	AppURL    string `env:"APP_PUBLIC_URL" envDefault:"http://localhost:3000"`
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
}

// GeneratorConfig points at an OpenAI-compatible responses endpoint.
type GeneratorConfig struct {
	URL     string        `env:"GENERATOR_URL" envDefault:"https://api.openai.com/v1/responses"`
	APIKey  string        `env:"GENERATOR_API_KEY"`
	Model   string        `env:"GENERATOR_MODEL" envDefault:"gpt-4o-mini"`
	Timeout time.Duration `env:"GENERATOR_TIMEOUT" envDefault:"30s"`
}

type CheckInConfig struct {
	Secret string        `env:"CHECKIN_SECRET"`
	TTL    time.Duration `env:"CHECKIN_TOKEN_TTL" envDefault:"720h"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string `env:"APP_HOST" envDefault:"localhost:8080"`
	Port      string `env:"PORT" envDefault:"8080"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Auth      AuthConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	RabbitMQ  RabbitMQConfig
	Mail      MailConfig
	Stripe    StripeConfig
	Generator GeneratorConfig
	CheckIn   CheckInConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence.
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CheckIn.Secret == "" {
		cfg.CheckIn.Secret = cfg.Auth.JWTSecret
	}
	return &cfg, nil
}
