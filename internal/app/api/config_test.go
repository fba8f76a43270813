package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	for _, key := range []string{"EVENTS_BROKER", "GATEWAY_MODE", "PAYMENT_PENDING_TTL", "SESSION_TTL_HOURS", "GATEWAY_TIMEOUT", "PAYMENT_CURRENCY"} {
		t.Setenv(key, "")
	}

	cfg, err := configFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BrokerLog, cfg.EventsBroker)
	assert.Equal(t, GatewayFake, cfg.GatewayMode)
	assert.Equal(t, "BDT", cfg.PaymentCurrency)
	assert.Equal(t, 30*time.Minute, cfg.PaymentPendingTTL)
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestConfigParsesOverrides(t *testing.T) {
	t.Setenv("EVENTS_BROKER", "Kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PAYMENT_PENDING_TTL", "900")
	t.Setenv("GATEWAY_TIMEOUT", "5s")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("PUBLIC_BASE_URL", "https://api.example.com/")

	cfg, err := configFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, cfg.PaymentPendingTTL)
	assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "https://api.example.com", cfg.PublicBaseURL)
}

func TestConfigValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown broker":        {"EVENTS_BROKER": "nats"},
		"kafka without brokers": {"EVENTS_BROKER": "kafka", "KAFKA_BROKERS": ""},
		"amqp without url":      {"EVENTS_BROKER": "amqp", "AMQP_URL": ""},
		"sslcommerz creds":      {"GATEWAY_MODE": "sslcommerz", "GATEWAY_STORE_ID": ""},
		"bad ttl":               {"PAYMENT_PENDING_TTL": "soon"},
		"bad session hours":     {"SESSION_TTL_HOURS": "-1"},
		"bad currency":          {"PAYMENT_CURRENCY": "TAKA"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := configFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestPaymentOptionsFollowGatewayMode(t *testing.T) {
	assert.Len(t, paymentOptions(Config{GatewayMode: GatewayFake}), 1)
	assert.Empty(t, paymentOptions(Config{GatewayMode: GatewaySSLCommerz}))
}
