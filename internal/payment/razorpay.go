package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/config"
)

type Razorpay struct {
	keyID     string
	keySecret string
	baseURL   string
	opts      options
}

var _ RazorpayGateway = (*Razorpay)(nil)

func NewRazorpay(cfg config.RazorpayConfig, opts ...Option) *Razorpay {
	return &Razorpay{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		opts:      newOptions(opts),
	}
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateOrder opens an INR order for amount rupees.
func (r *Razorpay) CreateOrder(ctx context.Context, amount decimal.Decimal) (_ *GatewayOrder, err error) {
	defer func() { r.opts.recordIntent(GatewayRazorpay, err) }()

	if r.keyID == "" || r.keySecret == "" {
		return nil, ErrNotConfigured
	}

	paise, err := minorUnits(amount)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   paise,
		Currency: "INR",
		Receipt:  fmt.Sprintf("order_%d", r.opts.now().UnixMilli()),
	})
	if err != nil {
		return nil, fmt.Errorf("payment: failed to encode razorpay order: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, r.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payment: failed to build razorpay request: %w", err)
	}
	req.SetBasicAuth(r.keyID, r.keySecret)
	req.Header.Set("Content-Type", "application/json")

	var order GatewayOrder
	if err := do(ctx, r.opts.httpClient, "razorpay.orders.create", req, &order); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("razorpay_order_id", order.ID).
		Int64("amount", order.Amount).
		Msg("razorpay order created")
	return &order, nil
}

// Verify checks the checkout signature: hex(HMAC-SHA256(secret, orderID|paymentID)).
func (r *Razorpay) Verify(ctx context.Context, orderID, paymentID, signature string) (*Verification, error) {
	if r.keySecret == "" {
		return nil, ErrNotConfigured
	}

	ok := hmac.Equal([]byte(r.sign(orderID, paymentID)), []byte(signature))
	r.opts.metrics.PaymentVerification(GatewayRazorpay, ok)

	if !ok {
		zerolog.Ctx(ctx).Warn().
			Str("razorpay_order_id", orderID).
			Str("razorpay_payment_id", paymentID).
			Msg("razorpay signature mismatch")
		return nil, ErrVerificationFailed
	}
	return &Verification{Success: true, PaymentID: paymentID}, nil
}

func (r *Razorpay) sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(r.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
