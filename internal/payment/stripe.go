package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/config"
)

type Stripe struct {
	secretKey string
	baseURL   string
	opts      options
}

var _ StripeGateway = (*Stripe)(nil)

func NewStripe(cfg config.StripeConfig, opts ...Option) *Stripe {
	return &Stripe{
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		opts:      newOptions(opts),
	}
}

type stripeIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// CreatePaymentIntent opens a USD payment intent tagged with the buyer's id.
func (s *Stripe) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, userID uuid.UUID) (intent *Intent, err error) {
	defer func() { s.opts.recordIntent(GatewayStripe, err) }()

	if s.secretKey == "" {
		return nil, ErrNotConfigured
	}

	cents, err := minorUnits(amount)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(cents, 10))
	form.Set("currency", "usd")
	form.Set("metadata[userId]", userID.String())

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payment: failed to build stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp stripeIntent
	if err := do(ctx, s.opts.httpClient, "stripe.payment_intents.create", req, &resp); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("payment_intent_id", resp.ID).Int64("amount", cents).Msg("stripe payment intent created")
	return &Intent{ID: resp.ID, ClientSecret: resp.ClientSecret}, nil
}
