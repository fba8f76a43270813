// Package sslcommerz is a minimal client for the SSLCommerz hosted checkout API.
package sslcommerz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	sessionPath    = "/gwprocess/v4/api.php"
	statusAccepted = "SUCCESS"
	maxErrorBody   = 512
)

var (
	// ErrRejected is returned when the gateway answered with a non-SUCCESS status.
	ErrRejected = errors.New("sslcommerz rejected the session")
)

// Credentials identify the merchant store.
type Credentials struct {
	StoreID       string
	StorePassword string
}

// Client posts session requests to the gateway.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
}

// SessionRequest is the subset of the session API the marketplace uses.
type SessionRequest struct {
	TransactionID   string
	TotalAmount     string
	Currency        string
	SuccessURL      string
	FailURL         string
	CancelURL       string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ProductName     string
	ProductCategory string
	ProductProfile  string
}

// SessionResponse is the JSON answer of the session API.
type SessionResponse struct {
	Status         string `json:"status"`
	GatewayPageURL string `json:"GatewayPageURL"`
	SessionKey     string `json:"sessionkey"`
	FailedReason   string `json:"failedreason"`
}

// HTTPError is a non-2xx response from the gateway.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sslcommerz http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("sslcommerz http error: status=%d body=%s", e.StatusCode, e.Body)
}

// NewClient builds a client. A nil httpClient gets a 10 second timeout.
func NewClient(baseURL string, creds Credentials, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("sslcommerz base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid sslcommerz base url: %w", err)
	}
	if strings.TrimSpace(creds.StoreID) == "" || strings.TrimSpace(creds.StorePassword) == "" {
		return nil, errors.New("sslcommerz store credentials are required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, creds: creds, http: httpClient}, nil
}

// CreateSession opens a hosted checkout. Only a SUCCESS status with a page URL is accepted;
// anything else comes back as ErrRejected carrying the gateway's reason.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*SessionResponse, error) {
	if c == nil || c.http == nil {
		return nil, errors.New("sslcommerz client not configured")
	}
	form := url.Values{}
	form.Set("store_id", c.creds.StoreID)
	form.Set("store_passwd", c.creds.StorePassword)
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

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sessionPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build sslcommerz request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call sslcommerz: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	var out SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sslcommerz response: %w", err)
	}
	if !strings.EqualFold(out.Status, statusAccepted) || strings.TrimSpace(out.GatewayPageURL) == "" {
		reason := strings.TrimSpace(out.FailedReason)
		if reason == "" {
			reason = "status " + out.Status
		}
		return &out, fmt.Errorf("%w: %s", ErrRejected, reason)
	}
	return &out, nil
}
