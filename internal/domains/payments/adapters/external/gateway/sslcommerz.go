// Package gateway adapts checkout providers to the payments Gateway port.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/pet-adoption-api/internal/clients/http/sslcommerz"
	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
)

const (
	productName     = "Wallet top-up"
	productCategory = "wallet"
	productProfile  = "non-physical-goods"
)

var _ ports.Gateway = (*SSLCommerz)(nil)

// SSLCommerz opens sessions through the SSLCommerz client.
type SSLCommerz struct {
	client *sslcommerz.Client
}

func NewSSLCommerz(client *sslcommerz.Client) *SSLCommerz {
	return &SSLCommerz{client: client}
}

func (g *SSLCommerz) CreateSession(ctx context.Context, req ports.SessionRequest) (*ports.Session, error) {
	resp, err := g.client.CreateSession(ctx, sslcommerz.SessionRequest{
		TransactionID:   req.Token,
		TotalAmount:     req.Amount.StringFixed(2),
		Currency:        req.Currency,
		SuccessURL:      req.SuccessURL,
		FailURL:         req.FailURL,
		CancelURL:       req.CancelURL,
		CustomerName:    req.Customer.Name,
		CustomerEmail:   req.Customer.Email,
		CustomerPhone:   req.Customer.Phone,
		ProductName:     productName,
		ProductCategory: productCategory,
		ProductProfile:  productProfile,
	})
	if err != nil {
		if errors.Is(err, sslcommerz.ErrRejected) {
			return nil, fmt.Errorf("%w: %w", ports.ErrGatewayRejected, err)
		}
		return nil, err
	}
	return &ports.Session{RedirectURL: resp.GatewayPageURL, SessionKey: resp.SessionKey}, nil
}
