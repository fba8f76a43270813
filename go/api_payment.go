package petstoreserver

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	paymentmapper "github.com/Apurer/pet-adoption-api/internal/domains/payments/adapters/http/mapper"
	paymenttypes "github.com/Apurer/pet-adoption-api/internal/domains/payments/application/types"
	paymentdomain "github.com/Apurer/pet-adoption-api/internal/domains/payments/domain"
	paymentports "github.com/Apurer/pet-adoption-api/internal/domains/payments/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/auth"
)

// IdempotencyKeyHeader lets clients retry an initiation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentRedirect is where the browser lands after a gateway callback.
type PaymentRedirect struct {
	FrontendURL string
	Path        string
}

func (r PaymentRedirect) location(status paymentdomain.Status) string {
	q := url.Values{}
	q.Set("status", string(status))
	q.Set("message", paymentmapper.RedirectMessage(status))
	return strings.TrimRight(r.FrontendURL, "/") + r.Path + "?" + q.Encode()
}

// PaymentAPI serves wallet top-ups, gateway callbacks, and payment history.
type PaymentAPI struct {
	service      paymentports.Service
	redirect     PaymentRedirect
	fakeCheckout bool
}

// PaymentOption configures a PaymentAPI.
type PaymentOption func(*PaymentAPI)

// WithFakeCheckout serves the stand-in checkout page; only set it with the fake gateway.
func WithFakeCheckout() PaymentOption {
	return func(api *PaymentAPI) {
		api.fakeCheckout = true
	}
}

// NewPaymentAPI builds the payment handlers; the fake checkout route stays unregistered by default.
func NewPaymentAPI(service paymentports.Service, redirect PaymentRedirect, opts ...PaymentOption) PaymentAPI {
	api := PaymentAPI{service: service, redirect: redirect}
	for _, opt := range opts {
		opt(&api)
	}
	return api
}

// Post /payments/initiate/
func (api *PaymentAPI) Initiate(c *gin.Context) {
	var payload paymentmapper.InitiateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	input := payload.ToInput(principalFrom(c).UserID, c.GetHeader(IdempotencyKeyHeader))
	result, err := api.service.Initiate(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentmapper.FromInitiateResult(result))
}

// Post /payments/success/
func (api *PaymentAPI) Success(c *gin.Context) { api.callback(c, paymentdomain.OutcomeSuccess) }

// Post /payments/fail/
func (api *PaymentAPI) Fail(c *gin.Context) { api.callback(c, paymentdomain.OutcomeFail) }

// Post /payments/cancel/
func (api *PaymentAPI) Cancel(c *gin.Context) { api.callback(c, paymentdomain.OutcomeCancel) }

func (api *PaymentAPI) callback(c *gin.Context, outcome paymentdomain.Outcome) {
	var form paymentmapper.CallbackForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := api.service.HandleCallback(c.Request.Context(), form.ToInput(outcome))
	if err != nil {
		_ = c.Error(err)
		callbackResponder.RespondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, api.redirect.location(result.Status))
}

var fakeCheckoutPage = template.Must(template.New("checkout").Parse(`<!doctype html>
<html><head><title>Test checkout</title></head>
<body>
<h1>Test checkout</h1>
<p>Transaction {{.}}</p>
<form method="post" action="/payments/success/"><input type="hidden" name="tran_id" value="{{.}}"><input type="hidden" name="card_type" value="FAKE-VISA"><button>Pay</button></form>
<form method="post" action="/payments/fail/"><input type="hidden" name="tran_id" value="{{.}}"><button>Fail</button></form>
<form method="post" action="/payments/cancel/"><input type="hidden" name="tran_id" value="{{.}}"><button>Cancel</button></form>
</body></html>
`))

// Get /payments/fake-checkout
// Stands in for the hosted gateway page when GATEWAY_MODE=fake.
func (api *PaymentAPI) FakeCheckout(c *gin.Context) {
	token := strings.TrimSpace(c.Query("tran_id"))
	if token == "" {
		respondBindError(c, errMissingTransaction)
		return
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	_ = fakeCheckoutPage.Execute(c.Writer, token)
}

// Get /payments/
func (api *PaymentAPI) ListPayments(c *gin.Context) {
	page, size := pageParams(c)
	result, err := api.service.List(c.Request.Context(), paymentScope(c), paymenttypes.ListQuery{
		Token:    c.Query("transaction_id"),
		Method:   c.Query("payment_method"),
		Status:   c.Query("status"),
		PetID:    c.Query("pet"),
		Type:     c.Query("payment_type"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentmapper.FromPage(result, principalFrom(c).Can(auth.ViewAllPayments)))
}

// Get /payments/:paymentId/
func (api *PaymentAPI) GetPayment(c *gin.Context) {
	payment, err := api.service.Get(c.Request.Context(), paymentScope(c), c.Param("paymentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentmapper.FromDomain(payment, principalFrom(c).Can(auth.ViewAllPayments)))
}

func paymentScope(c *gin.Context) paymenttypes.Scope {
	p := principalFrom(c)
	return paymenttypes.Scope{UserID: p.UserID, All: p.Can(auth.ViewAllPayments)}
}
