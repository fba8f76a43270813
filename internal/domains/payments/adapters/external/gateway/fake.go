package gateway

import (
	"context"
	"net/url"
	"strings"

	"github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
)

var _ ports.Gateway = (*Fake)(nil)

// Fake accepts every session and points the browser at a local checkout page.
// Used when GATEWAY_MODE=fake.
type Fake struct {
	baseURL string
}

func NewFake(publicBaseURL string) *Fake {
	return &Fake{baseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (f *Fake) CreateSession(_ context.Context, req ports.SessionRequest) (*ports.Session, error) {
	return &ports.Session{
		RedirectURL: f.baseURL + "/payments/fake-checkout?tran_id=" + url.QueryEscape(req.Token),
		SessionKey:  "fake-" + req.Token,
	}, nil
}
