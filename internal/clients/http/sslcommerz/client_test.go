package sslcommerz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, Credentials{StoreID: "store", StorePassword: "secret"}, srv.Client())
	require.NoError(t, err)
	return client
}

func sampleRequest() SessionRequest {
	return SessionRequest{
		TransactionID: "TXN1",
		TotalAmount:   "100.00",
		Currency:      "BDT",
		SuccessURL:    "https://api.test/payments/success/",
		FailURL:       "https://api.test/payments/fail/",
		CancelURL:     "https://api.test/payments/cancel/",
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		CustomerPhone: "0123",
		ProductName:   "Wallet top-up",
	}
}

func TestCreateSessionPostsFormAndDecodesAcceptance(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, sessionPath, r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "store", r.PostForm.Get("store_id"))
		assert.Equal(t, "secret", r.PostForm.Get("store_passwd"))
		assert.Equal(t, "TXN1", r.PostForm.Get("tran_id"))
		assert.Equal(t, "100.00", r.PostForm.Get("total_amount"))
		assert.Equal(t, "NO", r.PostForm.Get("shipping_method"))
		assert.Equal(t, "https://api.test/payments/cancel/", r.PostForm.Get("cancel_url"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"SUCCESS","GatewayPageURL":"https://gw.test/pay/abc","sessionkey":"abc"}`))
	})

	resp, err := client.CreateSession(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "https://gw.test/pay/abc", resp.GatewayPageURL)
	assert.Equal(t, "abc", resp.SessionKey)
}

func TestCreateSessionRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"FAILED","failedreason":"Store Credential Error Or Store is De-active"}`))
	})

	_, err := client.CreateSession(context.Background(), sampleRequest())
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Store Credential Error")
}

func TestCreateSessionHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := client.CreateSession(context.Background(), sampleRequest())
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestCreateSessionHonoursContextDeadline(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.CreateSession(ctx, sampleRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewClientValidates(t *testing.T) {
	_, err := NewClient("", Credentials{StoreID: "a", StorePassword: "b"}, nil)
	require.Error(t, err)
	_, err = NewClient("https://sandbox.sslcommerz.com", Credentials{}, nil)
	require.Error(t, err)
}
