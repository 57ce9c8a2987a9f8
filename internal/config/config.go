// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	Timezone                string `yaml:"timezone" env:"TIMEZONE" env-default:"UTC"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Auth                    `yaml:"auth"`
	Email                   `yaml:"email"`
	RabbitMQ                `yaml:"rabbitmq"`
	RateLimit               `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	RedisAddress      string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	RedisPassword     string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser         string        `yaml:"user"`
	RedisDB           int           `yaml:"db"`
	RedisMaxRetries   int           `yaml:"max_retries"`
	RedisDialTimeout  time.Duration `yaml:"dial_timeout"`
	RedisTimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Auth настройки провайдера идентификации: подпись токенов, время жизни и адреса перенаправления.
type Auth struct {
	JWTSecretKey    string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env-default:"1h"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env-default:"720h"`
	OTPTTL          time.Duration `yaml:"otp_ttl" env-default:"1h"`
	SiteURL         string        `yaml:"site_url" env:"SITE_URL" env-default:"http://localhost:8080"`
	RedirectURL     string        `yaml:"redirect_url" env:"AUTH_REDIRECT_URL"`
	SecureCookies   bool          `yaml:"secure_cookies"`
}

// Email настройки доставки писем.
type Email struct {
	// Delivery — "direct" (отправка из API) или "queue" (через RabbitMQ и mail-sender).
	Delivery string `yaml:"delivery" env:"EMAIL_DELIVERY" env-default:"direct"`
	// Provider — "resend" или "smtp".
	Provider     string `yaml:"provider" env:"EMAIL_PROVIDER" env-default:"resend"`
	From         string `yaml:"from" env:"EMAIL_FROM" env-default:"Planner App <noreply@planner.local>"`
	ResendAPIKey string `yaml:"resend_api_key" env:"RESEND_API_KEY"`
	ResendAPIURL string `yaml:"resend_api_url" env:"RESEND_API_URL" env-default:"https://api.resend.com"`
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     string `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser     string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass     string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// RabbitMQ настройки подключения к брокеру
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// RateLimit ограничение частоты отправки писем подтверждения.
type RateLimit struct {
	VerificationRPS   float64 `yaml:"verification_rps" env-default:"0.2"`
	VerificationBurst int     `yaml:"verification_burst" env-default:"3"`
}

// MustLoad функция для загрузки конфига, возвращает конфиг, сгенерированный из config/config.go
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if err := cfg.validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}
	return &cfg
}

func (c *Config) validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location возвращает часовой пояс приложения. MustLoad уже проверил
// Timezone, UTC возвращается только для конфига, собранного вручную.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// VerificationRedirect адрес, на который ведёт ссылка из письма подтверждения.
func (c *Config) VerificationRedirect() string {
	if c.RedirectURL != "" {
		return c.RedirectURL
	}
	return c.SiteURL
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Timezone: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Auth:\n"+
			"  AccessTokenTTL: %s\n"+
			"  RefreshTokenTTL: %s\n"+
			"  SiteURL: %s\n"+
			"Email:\n"+
			"  Delivery: %s\n"+
			"  Provider: %s\n",
		c.Env,
		c.Timezone,
		c.RedisAddress,
		c.RedisDB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AccessTokenTTL,
		c.RefreshTokenTTL,
		c.SiteURL,
		c.Delivery,
		c.Provider,
	)
}
