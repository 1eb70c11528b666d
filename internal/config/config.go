package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Token strategies accepted by AUTH_TOKEN_STRATEGY
const (
	TokenStrategyPaseto = "paseto"
	TokenStrategyJWT    = "jwt"
)

// Email transports accepted by EMAIL_TRANSPORT
const (
	EmailTransportLog      = "log"
	EmailTransportSMTP     = "smtp"
	EmailTransportSendGrid = "sendgrid"
)

// Avatar stores accepted by AVATAR_STORE
const (
	AvatarStoreDB = "db"
	AvatarStoreS3 = "s3"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Email     EmailConfig
	Avatar    AvatarConfig
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"3003"`
	Env             string        `env:"APP_ENV" envDefault:"dev"` // dev or prod
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	TrustedOrigins  []string      `env:"TRUSTED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

type DatabaseConfig struct {
	Host           string `env:"DB_HOST" envDefault:"localhost"`
	Port           string `env:"DB_PORT" envDefault:"5432"`
	User           string `env:"DB_USER" envDefault:"postgres"`
	Password       string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName         string `env:"DB_NAME" envDefault:"taskmanager"`
	SSLMode        string `env:"DB_SSLMODE" envDefault:"disable"`
	ChannelBinding string `env:"DB_CHANNEL_BINDING"` // "require" for Neon DB, empty for local
	MaxOpenConns   int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns   int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type AuthConfig struct {
	TokenStrategy string `env:"AUTH_TOKEN_STRATEGY" envDefault:"paseto"`
	// PASETO symmetric key (must be 32 bytes for v4.local)
	PasetoKey string `env:"PASETO_KEY"`
	JWTSecret string `env:"JWT_SECRET"`
	// Zero keeps tokens valid until their session is revoked
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"0s"`
}

type RateLimitConfig struct {
	Enabled     bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	MaxRequests int           `env:"RATE_LIMIT_MAX" envDefault:"10"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
}

type EmailConfig struct {
	Transport      string        `env:"EMAIL_TRANSPORT" envDefault:"log"`
	From           string        `env:"EMAIL_FROM" envDefault:"no-reply@taskmanager.local"`
	SMTPHost       string        `env:"SMTP_HOST"`
	SMTPPort       string        `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser       string        `env:"SMTP_USER"`
	SMTPPassword   string        `env:"SMTP_PASS"`
	SendGridAPIKey string        `env:"SENDGRID_API_KEY"`
	QueueSize      int           `env:"EMAIL_QUEUE_SIZE" envDefault:"100"`
	SendTimeout    time.Duration `env:"EMAIL_SEND_TIMEOUT" envDefault:"10s"`
}

type AvatarConfig struct {
	MaxBytes    int64  `env:"AVATAR_MAX_BYTES" envDefault:"1000000"`
	MaxPixels   int    `env:"AVATAR_MAX_PIXELS" envDefault:"16777216"` // 4096x4096
	Store       string `env:"AVATAR_STORE" envDefault:"db"`
	S3Bucket    string `env:"AVATAR_S3_BUCKET"`
	S3Region    string `env:"AVATAR_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"AVATAR_S3_ENDPOINT"` // MinIO or localstack
	S3AccessKey string `env:"AVATAR_S3_ACCESS_KEY"`
	S3SecretKey string `env:"AVATAR_S3_SECRET_KEY"`
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads configuration from the current environment and validates it
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express
func (c *Config) Validate() error {
	var errs []error

	switch c.Auth.TokenStrategy {
	case TokenStrategyPaseto:
		if len(c.Auth.PasetoKey) != 32 {
			errs = append(errs, fmt.Errorf("PASETO_KEY must be exactly 32 bytes, got %d", len(c.Auth.PasetoKey)))
		}
	case TokenStrategyJWT:
		if len(c.Auth.JWTSecret) < 16 {
			errs = append(errs, errors.New("JWT_SECRET must be at least 16 bytes"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_TOKEN_STRATEGY %q", c.Auth.TokenStrategy))
	}

	if c.Auth.TokenTTL < 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must not be negative"))
	}

	switch c.Email.Transport {
	case EmailTransportLog:
	case EmailTransportSMTP:
		if c.Email.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for the smtp transport"))
		}
	case EmailTransportSendGrid:
		if c.Email.SendGridAPIKey == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required for the sendgrid transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_TRANSPORT %q", c.Email.Transport))
	}

	switch c.Avatar.Store {
	case AvatarStoreDB:
	case AvatarStoreS3:
		if c.Avatar.S3Bucket == "" {
			errs = append(errs, errors.New("AVATAR_S3_BUCKET is required for the s3 avatar store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AVATAR_STORE %q", c.Avatar.Store))
	}

	if c.Avatar.MaxBytes <= 0 {
		errs = append(errs, errors.New("AVATAR_MAX_BYTES must be positive"))
	}

	if c.Avatar.MaxPixels <= 0 {
		errs = append(errs, errors.New("AVATAR_MAX_PIXELS must be positive"))
	}

	return errors.Join(errs...)
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}
