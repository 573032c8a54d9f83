package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/payment"
)

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

type VerificationFailedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PaymentHandler struct {
	razorpay payment.RazorpayGateway
	stripe   payment.StripeGateway
	validate *validator.Validate
}

func NewPaymentHandler(razorpay payment.RazorpayGateway, stripe payment.StripeGateway) *PaymentHandler {
	return &PaymentHandler{razorpay: razorpay, stripe: stripe, validate: newValidator()}
}

// RegisterRoutes expects router to be behind Authenticate.
func (h *PaymentHandler) RegisterRoutes(router chi.Router) {
	router.Post("/payment/razorpay/create-order", h.handleRazorpayCreateOrder)
	router.Post("/payment/razorpay/verify", h.handleRazorpayVerify)
	router.Post("/payment/stripe/create-payment-intent", h.handleStripeIntent)
}

func (h *PaymentHandler) handleRazorpayCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	o, err := h.razorpay.CreateOrder(r.Context(), req.Amount)
	if err != nil {
		respondWithServiceError(w, r, err, "failed to create razorpay order")
		return
	}
	respondWithJSON(w, r, http.StatusOK, o)
}

func (h *PaymentHandler) handleRazorpayVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	res, err := h.razorpay.Verify(r.Context(), req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		if errors.Is(err, payment.ErrVerificationFailed) {
			respondWithJSON(w, r, http.StatusBadRequest, VerificationFailedResponse{
				Success: false,
				Message: "Payment verification failed",
			})
			return
		}
		respondWithServiceError(w, r, err, "failed to verify payment")
		return
	}
	respondWithJSON(w, r, http.StatusOK, res)
}

func (h *PaymentHandler) handleStripeIntent(w http.ResponseWriter, r *http.Request) {
	u, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AmountRequest
	if !decodeJSON(w, r, h.validate, &req) {
		return
	}

	intent, err := h.stripe.CreatePaymentIntent(r.Context(), req.Amount, u.ID)
	if err != nil {
		respondWithServiceError(w, r, err, "failed to create stripe payment intent")
		return
	}
	respondWithJSON(w, r, http.StatusOK, intent)
}
