// Package payment talks to the Razorpay and Stripe HTTP APIs and verifies
// Razorpay checkout signatures.
package payment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrNotConfigured      = errors.New("payment gateway is not configured")
	ErrGateway            = errors.New("payment gateway error")
)

const (
	GatewayRazorpay = "razorpay"
	GatewayStripe   = "stripe"
)

// GatewayOrder is the Razorpay order a checkout is opened against.
type GatewayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity,omitempty"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Verification struct {
	Success   bool   `json:"success"`
	PaymentID string `json:"paymentId"`
}

type Intent struct {
	ID           string `json:"-"`
	ClientSecret string `json:"clientSecret"`
}

type RazorpayGateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*GatewayOrder, error)
	Verify(ctx context.Context, orderID, paymentID, signature string) (*Verification, error)
}

type StripeGateway interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, userID uuid.UUID) (*Intent, error)
}

type Metrics interface {
	PaymentVerification(gateway string, ok bool)
	PaymentIntent(gateway string, ok bool)
}

type nopMetrics struct{}

func (nopMetrics) PaymentVerification(string, bool) {}
func (nopMetrics) PaymentIntent(string, bool)       {}

type options struct {
	httpClient *http.Client
	metrics    Metrics
	now        func() time.Time
}

type Option func(*options)

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func newOptions(opts []Option) options {
	o := options{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		metrics:    nopMetrics{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// recordIntent counts gateway attempts; rejected input never reaches the gateway.
func (o options) recordIntent(gateway string, err error) {
	if errors.Is(err, ErrInvalidAmount) {
		return
	}
	o.metrics.PaymentIntent(gateway, err == nil)
}

// minorUnits converts a major-unit amount (rupees, dollars) to the
// smallest currency unit, rounding half away from zero.
func minorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return amount.Shift(2).Round(0).IntPart(), nil
}
