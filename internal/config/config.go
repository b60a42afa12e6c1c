// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	StaticDir               string `yaml:"static_dir" env-default:"./public"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Explainer               `yaml:"explainer"`
	PaymentProvider         `yaml:"payment_provider"`
	Notifications           `yaml:"notifications"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Explainer настройки генерации объяснений: ключ и модель внешнего
// LLM-провайдера и время жизни кэша готовых объяснений.
// Пустой APIKey означает работу на локальном детерминированном шаблоне.
type Explainer struct {
	APIKey      string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model       string        `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	BaseURL     string        `yaml:"base_url" env-default:"https://api.openai.com/v1"`
	CacheTTL    time.Duration `yaml:"cache_ttl" env-default:"24h"`
	CallTimeout time.Duration `yaml:"call_timeout" env-default:"30s"`
}

// PaymentProvider настройки платёжного провайдера: ключи, идентификатор
// тарифа подписки и адреса возврата после оформления.
type PaymentProvider struct {
	SecretKey     string `yaml:"secret_key" env:"STRIPE_SECRET_KEY"`
	PriceID       string `yaml:"price_id" env:"STRIPE_PRICE_ID"`
	WebhookSecret string `yaml:"webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	SuccessURL    string `yaml:"success_url" env-default:"http://localhost:8080/?checkout=success"`
	CancelURL     string `yaml:"cancel_url" env-default:"http://localhost:8080/?checkout=cancel"`
}

// Notifications настройки очереди уведомлений и SMTP для воркера-отправителя.
// Пустой RabbitURL отключает публикацию уведомлений.
type Notifications struct {
	RabbitURL string `yaml:"rabbit_url" env:"RABBITMQ_URL"`
	SMTPHost  string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort  string `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser  string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass  string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// MustLoad функция для загрузки конфига, путь берется из CONFIG_PATH.
// Перед чтением подхватывает переменные из локального .env, если он есть.
func MustLoad() *Config {
	_ = godotenv.Load()

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
	return &cfg
}
