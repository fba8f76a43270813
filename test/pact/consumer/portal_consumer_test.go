//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/pet-adoption-api/test/pact"
)

type petPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Fee    string `json:"fee"`
	Status string `json:"status"`
}

type adoptionPayload struct {
	ID        string `json:"id"`
	PetID     string `json:"pet"`
	AdoptedBy string `json:"adopted_by"`
	Fee       string `json:"fee"`
}

type topUpPayload struct {
	URL           string `json:"url"`
	TransactionID string `json:"transaction_id"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status      int
	problemType string
	title       string
}

func (e apiError) Error() string {
	return fmt.Sprintf("%s (%s, status %d)", e.title, e.problemType, e.status)
}

func TestAdoptionPortalContract(t *testing.T) {
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	money := func(example string) matchers.Matcher {
		return matchers.Term(example, `^\d+\.\d{2}$`)
	}
	problem := func(problemType, title string, status int) matchers.Map {
		return matchers.Map{
			"type":   matchers.S(problemType),
			"title":  matchers.S(title),
			"status": matchers.Like(status),
		}
	}
	bearer := matchers.S("Bearer " + pacttest.AdopterToken)

	pact.AddInteraction().
		Given(pacttest.StatePetApproved).
		UponReceiving("a request for an approved pet").
		WithRequest("GET", "/pets/"+pacttest.ApprovedPetID+"/").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":     matchers.S(pacttest.ApprovedPetID),
				"name":   matchers.Like(pacttest.PetName),
				"fee":    money(pacttest.PetFee),
				"status": matchers.Term("approved", "approved|adopted"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StatePetMissing).
		UponReceiving("a request for a pet that does not exist").
		WithRequest("GET", "/pets/"+pacttest.MissingPetID+"/").
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problem("/problems/not-found", "Resource Not Found", http.StatusNotFound))
		})

	pact.AddInteraction().
		Given(pacttest.StatePetPricey).
		UponReceiving("an adoption request the wallet cannot cover").
		WithRequest("POST", "/pets/"+pacttest.PriceyPetID+"/adopt/", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
		}).
		WillRespondWith(http.StatusBadRequest, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problem("/problems/insufficient-funds", "Insufficient Funds", http.StatusBadRequest))
		})

	pact.AddInteraction().
		Given(pacttest.StateWalletFunded).
		UponReceiving("an adoption request from a funded adopter").
		WithRequest("POST", "/pets/"+pacttest.ApprovedPetID+"/adopt/", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":         matchers.Like("0b7f3f8e-2c1d-4d55-9a57-1f1f0d0c0a01"),
				"pet":        matchers.S(pacttest.ApprovedPetID),
				"adopted_by": matchers.S(pacttest.AdopterID),
				"fee":        money(pacttest.PetFee),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateWalletFunded).
		UponReceiving("a wallet top-up request").
		WithRequest("POST", "/payments/initiate/", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer)
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(matchers.Map{"amount": matchers.S("50.00")})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"url":            matchers.Like("http://pact.test/payments/fake-checkout?tran_id=TXN20240309080507ABCDEF123456"),
				"transaction_id": matchers.Term("TXN20240309080507ABCDEF123456", `^TXN\d{14}[0-9A-F]+$`),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StatePetMissing).
		UponReceiving("a gateway success callback for an unknown transaction").
		WithRequest("POST", "/payments/success/", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/x-www-form-urlencoded"))
			b.Body("application/x-www-form-urlencoded", []byte("status=VALID&tran_id="+pacttest.UnknownTransaction))
		}).
		WillRespondWith(http.StatusBadRequest, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problem("/problems/not-found", "Resource Not Found", http.StatusBadRequest))
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newPortalClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		pet, err := client.GetPet(ctx, pacttest.ApprovedPetID)
		if err != nil {
			return fmt.Errorf("get pet: %w", err)
		}
		if pet.ID != pacttest.ApprovedPetID {
			return fmt.Errorf("expected pet %s, got %+v", pacttest.ApprovedPetID, pet)
		}

		if _, err := client.GetPet(ctx, pacttest.MissingPetID); err == nil {
			return fmt.Errorf("expected 404 for pet %s", pacttest.MissingPetID)
		} else if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusNotFound {
			return fmt.Errorf("expected not found, got %v", err)
		}

		if _, err := client.Adopt(ctx, pacttest.PriceyPetID, pacttest.AdopterToken); err == nil {
			return fmt.Errorf("expected the pricey adoption to be refused")
		} else if apiErr, ok := err.(apiError); !ok || apiErr.problemType != "/problems/insufficient-funds" {
			return fmt.Errorf("expected insufficient funds, got %v", err)
		}

		adoption, err := client.Adopt(ctx, pacttest.ApprovedPetID, pacttest.AdopterToken)
		if err != nil {
			return fmt.Errorf("adopt: %w", err)
		}
		if adoption.PetID != pacttest.ApprovedPetID || adoption.AdoptedBy != pacttest.AdopterID {
			return fmt.Errorf("unexpected adoption %+v", adoption)
		}

		topUp, err := client.TopUp(ctx, "50.00", pacttest.AdopterToken)
		if err != nil {
			return fmt.Errorf("top up: %w", err)
		}
		if topUp.URL == "" || !strings.HasPrefix(topUp.TransactionID, "TXN") {
			return fmt.Errorf("unexpected top-up answer %+v", topUp)
		}

		if err := client.Callback(ctx, "success", pacttest.UnknownTransaction); err == nil {
			return fmt.Errorf("expected the unknown callback to be rejected")
		} else if apiErr, ok := err.(apiError); !ok || apiErr.status != http.StatusBadRequest {
			return fmt.Errorf("expected 400, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type portalClient struct {
	baseURL    string
	httpClient *http.Client
}

func newPortalClient(config pactconsumer.MockServerConfig) *portalClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &portalClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *portalClient) GetPet(ctx context.Context, id string) (*petPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/pets/"+id+"/", nil)
	if err != nil {
		return nil, err
	}
	var pet petPayload
	if err := c.do(req, &pet); err != nil {
		return nil, err
	}
	return &pet, nil
}

func (c *portalClient) Adopt(ctx context.Context, petID, token string) (*adoptionPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pets/"+petID+"/adopt/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	var adoption adoptionPayload
	if err := c.do(req, &adoption); err != nil {
		return nil, err
	}
	return &adoption, nil
}

func (c *portalClient) TopUp(ctx context.Context, amount, token string) (*topUpPayload, error) {
	body := strings.NewReader(`{"amount":"` + amount + `"}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments/initiate/", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	var out topUpPayload
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Callback posts what the gateway would send to the given callback kind.
func (c *portalClient) Callback(ctx context.Context, kind, tranID string) error {
	form := url.Values{}
	form.Set("status", "VALID")
	form.Set("tran_id", tranID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments/"+kind+"/", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// The mock never redirects, but a real API answers 302 on a known transaction.
	client := *c.httpClient
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		var p problemDetail
		_ = json.NewDecoder(res.Body).Decode(&p)
		return apiError{status: res.StatusCode, problemType: p.Type, title: p.Title}
	}
	return nil
}

func (c *portalClient) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		var p problemDetail
		_ = json.NewDecoder(res.Body).Decode(&p)
		return apiError{status: res.StatusCode, problemType: strings.TrimSpace(p.Type), title: p.Title}
	}
	return json.NewDecoder(res.Body).Decode(out)
}
