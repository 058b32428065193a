package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	checkoutapp "github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/application"
	customersapp "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/application"
	fulfillmentapp "github.com/vuhk2k6/web-order-sub000/internal/domains/fulfillment/application"
)

// Event backends.
const (
	EventsLog      = "log"
	EventsSQS      = "sqs"
	EventsRabbitMQ = "rabbitmq"
)

// Idempotency backends.
const (
	IdempotencyPostgres = "postgres"
	IdempotencyRedis    = "redis"
	IdempotencyDynamoDB = "dynamodb"
	IdempotencyMemory   = "memory"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	RedisAddr         string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	DeliveryFee      int64
	AutoCreateTables bool
	AccrualBasis     checkoutapp.AccrualBasis

	GatewayName        string
	GatewayEndpoint    string
	GatewayTimeout     time.Duration
	PaymentRedirectURL string

	EventsBackend  string
	OrdersQueueURL string
	RabbitMQURL    string

	SessionTTL time.Duration

	IdempotencyBackend string
	IdempotencyTable   string
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:               envDefault("PORT", "8080"),
		PostgresDSN:        strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		TemporalAddress:    envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:  envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:   isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		DeliveryFee:        fulfillmentapp.DefaultDeliveryFee,
		AutoCreateTables:   isTruthy(os.Getenv("AUTO_CREATE_TABLES")),
		AccrualBasis:       checkoutapp.ParseAccrualBasis(os.Getenv("ACCRUAL_BASIS")),
		GatewayName:        strings.ToLower(envDefault("GATEWAY_NAME", "momo")),
		GatewayEndpoint:    strings.TrimSpace(os.Getenv("GATEWAY_ENDPOINT")),
		GatewayTimeout:     10 * time.Second,
		PaymentRedirectURL: strings.TrimSpace(os.Getenv("PAYMENT_REDIRECT_URL")),
		EventsBackend:      strings.ToLower(envDefault("EVENTS_BACKEND", EventsLog)),
		OrdersQueueURL:     strings.TrimSpace(os.Getenv("ORDERS_QUEUE_URL")),
		RabbitMQURL:        strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		SessionTTL:         customersapp.DefaultSessionTTL,
		IdempotencyBackend: strings.ToLower(strings.TrimSpace(os.Getenv("IDEMPOTENCY_BACKEND"))),
		IdempotencyTable:   envDefault("IDEMPOTENCY_TABLE", "checkout-idempotency"),
	}
	if raw := strings.TrimSpace(os.Getenv("DELIVERY_FEE")); raw != "" {
		fee, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || fee < 0 {
			return Config{}, fmt.Errorf("DELIVERY_FEE must be a non-negative integer")
		}
		cfg.DeliveryFee = fee
	}
	if raw := strings.TrimSpace(os.Getenv("GATEWAY_TIMEOUT_SECONDS")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("GATEWAY_TIMEOUT_SECONDS must be a positive integer")
		}
		cfg.GatewayTimeout = time.Duration(seconds) * time.Second
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}
	switch cfg.EventsBackend {
	case EventsLog:
	case EventsSQS:
		if cfg.OrdersQueueURL == "" {
			return Config{}, fmt.Errorf("ORDERS_QUEUE_URL is required when EVENTS_BACKEND=sqs")
		}
	case EventsRabbitMQ:
		if cfg.RabbitMQURL == "" {
			return Config{}, fmt.Errorf("RABBITMQ_URL is required when EVENTS_BACKEND=rabbitmq")
		}
	default:
		return Config{}, fmt.Errorf("EVENTS_BACKEND must be one of log, sqs, rabbitmq")
	}
	switch cfg.IdempotencyBackend {
	case "", IdempotencyPostgres, IdempotencyRedis, IdempotencyDynamoDB, IdempotencyMemory:
	default:
		return Config{}, fmt.Errorf("IDEMPOTENCY_BACKEND must be one of postgres, redis, dynamodb, memory")
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
