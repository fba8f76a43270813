package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/pet-adoption-api/internal/clients/http/sslcommerz"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
)

func TestSSLCommerzMapsRequestAndRejection(t *testing.T) {
	accept := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "12.50", r.PostForm.Get("total_amount"))
		assert.Equal(t, "Bob", r.PostForm.Get("cus_name"))
		assert.Equal(t, productName, r.PostForm.Get("product_name"))
		if accept {
			_, _ = w.Write([]byte(`{"status":"SUCCESS","GatewayPageURL":"https://gw.test/x","sessionkey":"k"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"FAILED","failedreason":"bad store"}`))
	}))
	defer srv.Close()

	client, err := sslcommerz.NewClient(srv.URL, sslcommerz.Credentials{StoreID: "s", StorePassword: "p"}, srv.Client())
	require.NoError(t, err)
	gw := NewSSLCommerz(client)
	req := ports.SessionRequest{Token: "TXN1", Amount: decimal.RequireFromString("12.5"), Currency: "BDT", Customer: ports.Customer{Name: "Bob"}}

	session, err := gw.CreateSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "https://gw.test/x", session.RedirectURL)

	accept = false
	_, err = gw.CreateSession(context.Background(), req)
	require.ErrorIs(t, err, ports.ErrGatewayRejected)
}

func TestFakeAcceptsEverything(t *testing.T) {
	session, err := NewFake("http://localhost:8080/").CreateSession(context.Background(), ports.SessionRequest{Token: "TXN 1"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/payments/fake-checkout?tran_id=TXN+1", session.RedirectURL)
}
