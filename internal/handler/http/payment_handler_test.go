package http_test

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	storehttp "github.com/vasiliy-maslov/ecommerce-storefront/internal/handler/http"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

func TestPaymentHandler_RazorpayCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, newTestUser(user.RoleUser))

	env.razorpay.On("CreateOrder", mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString("299.99"))
	})).Return(&payment.GatewayOrder{ID: "order_1", Amount: 29999, Currency: "INR", Status: "created"}, nil).Once()

	rr := env.do(t, http.MethodPost, "/api/payment/razorpay/create-order", token, `{"amount": 299.99}`)

	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[payment.GatewayOrder](t, rr)
	assert.Equal(t, "order_1", got.ID)
	assert.Equal(t, int64(29999), got.Amount)
}

func TestPaymentHandler_RazorpayCreateOrder_Errors(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, newTestUser(user.RoleUser))

	rr := env.do(t, http.MethodPost, "/api/payment/razorpay/create-order", token, `{"amount": 0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	env.razorpay.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, payment.ErrGateway).Once()
	rr = env.do(t, http.MethodPost, "/api/payment/razorpay/create-order", token, `{"amount": 5}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestPaymentHandler_RazorpayVerify(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, newTestUser(user.RoleUser))

	env.razorpay.On("Verify", mock.Anything, "order_1", "pay_1", "good").
		Return(&payment.Verification{Success: true, PaymentID: "pay_1"}, nil).Once()
	env.razorpay.On("Verify", mock.Anything, "order_1", "pay_1", "bad").
		Return(nil, payment.ErrVerificationFailed).Once()

	rr := env.do(t, http.MethodPost, "/api/payment/razorpay/verify", token, storehttp.VerifyPaymentRequest{
		RazorpayOrderID: "order_1", RazorpayPaymentID: "pay_1", RazorpaySignature: "good",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"paymentId":"pay_1"}`, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/payment/razorpay/verify", token, storehttp.VerifyPaymentRequest{
		RazorpayOrderID: "order_1", RazorpayPaymentID: "pay_1", RazorpaySignature: "bad",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"Payment verification failed"}`, rr.Body.String())
}

func TestPaymentHandler_StripeIntent(t *testing.T) {
	env := newTestEnv(t)
	u := newTestUser(user.RoleUser)
	token := env.login(t, u)

	env.stripe.On("CreatePaymentIntent", mock.Anything, mock.Anything, u.ID).
		Return(&payment.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()

	rr := env.do(t, http.MethodPost, "/api/payment/stripe/create-payment-intent", token, `{"amount": 12.5}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"clientSecret":"pi_1_secret"}`, rr.Body.String())
}
