package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

const (
	BrokerNone  = "none"
	BrokerLog   = "log"
	BrokerKafka = "kafka"
	BrokerAMQP  = "amqp"

	GatewaySSLCommerz = "sslcommerz"
	GatewayFake       = "fake"
)

// Config carries environment-driven settings for the API, worker, and admin processes.
type Config struct {
	Port        string
	PostgresDSN string
	RedisURL    string

	EventsBroker string
	KafkaBrokers []string
	KafkaTopic   string
	AMQPURL      string
	AMQPExchange string

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	GatewayMode          string
	GatewayBaseURL       string
	GatewayStoreID       string
	GatewayStorePassword string
	GatewayTimeout       time.Duration

	PaymentCurrency   string
	PaymentPendingTTL time.Duration

	PublicBaseURL       string
	FrontendURL         string
	FrontendPaymentPath string

	SessionTTL time.Duration
}

// LoadConfig reads an optional .env file, then environment variables, applies defaults, and validates.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return configFromEnv()
}

func configFromEnv() (Config, error) {
	cfg := Config{
		Port:                 envDefault("PORT", "8080"),
		PostgresDSN:          strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisURL:             strings.TrimSpace(os.Getenv("REDIS_URL")),
		EventsBroker:         strings.ToLower(envDefault("EVENTS_BROKER", BrokerLog)),
		KafkaBrokers:         splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:           envDefault("KAFKA_TOPIC", "pet-adoption.events"),
		AMQPURL:              strings.TrimSpace(os.Getenv("AMQP_URL")),
		AMQPExchange:         envDefault("AMQP_EXCHANGE", "pet-adoption.events"),
		TemporalAddress:      envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:    envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:     isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		GatewayMode:          strings.ToLower(envDefault("GATEWAY_MODE", GatewayFake)),
		GatewayBaseURL:       envDefault("GATEWAY_BASE_URL", "https://sandbox.sslcommerz.com"),
		GatewayStoreID:       strings.TrimSpace(os.Getenv("GATEWAY_STORE_ID")),
		GatewayStorePassword: strings.TrimSpace(os.Getenv("GATEWAY_STORE_PASSWORD")),
		PaymentCurrency:      strings.ToUpper(envDefault("PAYMENT_CURRENCY", "BDT")),
		PublicBaseURL:        strings.TrimRight(envDefault("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		FrontendURL:          strings.TrimRight(envDefault("FRONTEND_URL", "http://localhost:3000"), "/"),
		FrontendPaymentPath:  envDefault("FRONTEND_PAYMENT_PATH", "/payment/status"),
	}

	var err error
	if cfg.GatewayTimeout, err = durationEnv("GATEWAY_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PaymentPendingTTL, err = durationEnv("PAYMENT_PENDING_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	hours, err := positiveIntEnv("SESSION_TTL_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = time.Duration(hours) * time.Hour

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	switch c.EventsBroker {
	case BrokerNone, BrokerLog:
	case BrokerKafka:
		if len(c.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required when EVENTS_BROKER=kafka"))
		}
	case BrokerAMQP:
		if c.AMQPURL == "" {
			errs = append(errs, errors.New("AMQP_URL is required when EVENTS_BROKER=amqp"))
		}
	default:
		errs = append(errs, fmt.Errorf("EVENTS_BROKER must be one of none, log, kafka, amqp; got %q", c.EventsBroker))
	}
	switch c.GatewayMode {
	case GatewayFake:
	case GatewaySSLCommerz:
		if c.GatewayStoreID == "" || c.GatewayStorePassword == "" {
			errs = append(errs, errors.New("GATEWAY_STORE_ID and GATEWAY_STORE_PASSWORD are required when GATEWAY_MODE=sslcommerz"))
		}
	default:
		errs = append(errs, fmt.Errorf("GATEWAY_MODE must be sslcommerz or fake; got %q", c.GatewayMode))
	}
	if len(c.PaymentCurrency) != 3 {
		errs = append(errs, fmt.Errorf("PAYMENT_CURRENCY must be a 3-letter code; got %q", c.PaymentCurrency))
	}
	if !strings.HasPrefix(c.FrontendPaymentPath, "/") {
		errs = append(errs, errors.New("FRONTEND_PAYMENT_PATH must start with '/'"))
	}
	return errors.Join(errs...)
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

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// durationEnv accepts Go durations ("45s") or bare seconds ("45").
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return d, nil
}

func positiveIntEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return n, nil
}
