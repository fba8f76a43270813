//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/clients/http/sslcommerz"
	pacttest "github.com/Apurer/pet-adoption-api/test/pact"
)

func sessionRequest(tranID string) sslcommerz.SessionRequest {
	return sslcommerz.SessionRequest{
		TransactionID:   tranID,
		TotalAmount:     "50.00",
		Currency:        "BDT",
		SuccessURL:      "http://api.test/payments/success/",
		FailURL:         "http://api.test/payments/fail/",
		CancelURL:       "http://api.test/payments/cancel/",
		CustomerName:    pacttest.AdopterUsername,
		CustomerEmail:   "pact-user@example.com",
		CustomerPhone:   "01700000000",
		ProductName:     "Wallet top-up",
		ProductCategory: "wallet",
		ProductProfile:  "non-physical-goods",
	}
}

func sessionForm(password string, req sslcommerz.SessionRequest) []byte {
	form := url.Values{}
	form.Set("store_id", pacttest.StoreID)
	form.Set("store_passwd", password)
	form.Set("total_amount", req.TotalAmount)
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TransactionID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("cus_name", req.CustomerName)
	form.Set("cus_email", req.CustomerEmail)
	form.Set("cus_phone", req.CustomerPhone)
	form.Set("product_name", req.ProductName)
	form.Set("product_category", req.ProductCategory)
	form.Set("product_profile", req.ProductProfile)
	form.Set("shipping_method", "NO")
	return []byte(form.Encode())
}

func TestSSLCommerzSessionContract(t *testing.T) {
	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.GatewayConsumerName,
		Provider: pacttest.GatewayProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	accepted := sessionRequest(pacttest.TransactionID)
	rejected := sessionRequest(pacttest.TransactionID + "-rejected")
	const wrongPassword = "not-the-password"

	pact.AddInteraction().
		Given(pacttest.StateGatewayAccepts).
		UponReceiving("a session request for a wallet top-up").
		WithRequest("POST", "/gwprocess/v4/api.php", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/x-www-form-urlencoded"))
			b.Body("application/x-www-form-urlencoded", sessionForm(pacttest.StorePassword, accepted))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.JSONBody(matchers.Map{
				"status":         matchers.S("SUCCESS"),
				"GatewayPageURL": matchers.Like(pacttest.GatewayPage),
				"sessionkey":     matchers.Like(pacttest.SessionKey),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateGatewayRejects).
		UponReceiving("a session request with bad store credentials").
		WithRequest("POST", "/gwprocess/v4/api.php", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/x-www-form-urlencoded"))
			b.Body("application/x-www-form-urlencoded", sessionForm(wrongPassword, rejected))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.JSONBody(matchers.Map{
				"status":       matchers.S("FAILED"),
				"failedreason": matchers.Like("Store Credential Error Or Store is De-active"),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		baseURL := fmt.Sprintf("http://%s:%d", hostOf(config), config.Port)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		good, err := sslcommerz.NewClient(baseURL, sslcommerz.Credentials{StoreID: pacttest.StoreID, StorePassword: pacttest.StorePassword}, nil)
		if err != nil {
			return err
		}
		resp, err := good.CreateSession(ctx, accepted)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		if resp.GatewayPageURL == "" || resp.SessionKey == "" {
			return fmt.Errorf("expected a gateway page and session key, got %+v", resp)
		}

		bad, err := sslcommerz.NewClient(baseURL, sslcommerz.Credentials{StoreID: pacttest.StoreID, StorePassword: wrongPassword}, nil)
		if err != nil {
			return err
		}
		if _, err := bad.CreateSession(ctx, rejected); !errors.Is(err, sslcommerz.ErrRejected) {
			return fmt.Errorf("expected ErrRejected, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

func hostOf(config pactconsumer.MockServerConfig) string {
	if config.Host == "" {
		return "localhost"
	}
	return config.Host
}
