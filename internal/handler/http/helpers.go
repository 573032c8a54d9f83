package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/order"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/product"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
)

type ErrorResponse struct {
	Message   string `json:"message"`
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal server error","error":"internal"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondWithError(w http.ResponseWriter, r *http.Request, code int, errCode, message string) {
	resp := ErrorResponse{Message: message, Error: errCode}
	if code >= http.StatusInternalServerError {
		resp.RequestID = middleware.GetReqID(r.Context())
	}
	respondWithJSON(w, r, code, resp)
}

type apiError struct {
	status  int
	code    string
	message string
}

var internalError = apiError{http.StatusInternalServerError, "internal", "Internal server error"}

func classifyError(err error) apiError {
	switch {
	case errors.Is(err, product.ErrNotFound), errors.Is(err, cart.ErrProductNotFound):
		return apiError{http.StatusNotFound, "product_not_found", "Product not found"}
	case errors.Is(err, order.ErrNotFound):
		return apiError{http.StatusNotFound, "order_not_found", "Order not found"}
	case errors.Is(err, user.ErrNotFound):
		return apiError{http.StatusNotFound, "user_not_found", "User not found"}
	case errors.Is(err, cart.ErrInsufficientStock), errors.Is(err, order.ErrInsufficientStock):
		return apiError{http.StatusBadRequest, "insufficient_stock", "Insufficient stock"}
	case errors.Is(err, cart.ErrInvalidQuantity):
		return apiError{http.StatusBadRequest, "invalid_quantity", "Quantity must be positive"}
	case errors.Is(err, product.ErrInvalidProduct), errors.Is(err, order.ErrInvalidOrder):
		return apiError{http.StatusBadRequest, "invalid_input", err.Error()}
	case errors.Is(err, order.ErrInvalidStatus):
		return apiError{http.StatusBadRequest, "invalid_status", "Invalid order status"}
	case errors.Is(err, order.ErrInvalidStatusTransition):
		return apiError{http.StatusConflict, "invalid_status_transition", err.Error()}
	case errors.Is(err, order.ErrStatusConflict):
		return apiError{http.StatusConflict, "status_conflict", "Order status was changed by another request, reload and retry"}
	case errors.Is(err, user.ErrEmailExists):
		return apiError{http.StatusBadRequest, "email_exists", "User already exists"}
	case errors.Is(err, user.ErrInvalidCredentials):
		return apiError{http.StatusUnauthorized, "invalid_credentials", "Invalid credentials"}
	case errors.Is(err, auth.ErrInvalidToken):
		return apiError{http.StatusUnauthorized, "invalid_token", "Invalid or expired token"}
	case errors.Is(err, user.ErrBlocked):
		return apiError{http.StatusForbidden, "user_blocked", "Account is blocked"}
	case errors.Is(err, user.ErrCannotBlockAdmin):
		return apiError{http.StatusForbidden, "forbidden", "Admin users cannot be blocked"}
	case errors.Is(err, payment.ErrVerificationFailed):
		return apiError{http.StatusBadRequest, "verification_failed", "Payment verification failed"}
	case errors.Is(err, payment.ErrInvalidAmount):
		return apiError{http.StatusBadRequest, "invalid_amount", "Amount must be positive"}
	case errors.Is(err, payment.ErrNotConfigured):
		return apiError{http.StatusServiceUnavailable, "gateway_unavailable", "Payment gateway is not configured"}
	case errors.Is(err, payment.ErrGateway):
		return apiError{http.StatusBadGateway, "gateway_error", "Payment gateway error"}
	default:
		return internalError
	}
}

func mapErrorToStatusCode(err error) int {
	return classifyError(err).status
}

// respondWithServiceError logs err and writes the mapped response. Internal
// details never reach the client.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	e := classifyError(err)
	logger := hlog.FromRequest(r)
	if e.status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg(action)
	} else {
		logger.Debug().Err(err).Int("status", e.status).Msg(action)
	}
	respondWithError(w, r, e.status, e.code, e.message)
}

// decodeJSON decodes a strict JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports whether dst is usable.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		hlog.FromRequest(r).Debug().Err(err).Msg("failed to decode request body")
		respondWithError(w, r, http.StatusBadRequest, "invalid_payload", "Invalid request payload")
		return false
	}

	if err := v.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, r, http.StatusBadRequest, ValidationErrorResponse{
				Message: "Validation failed",
				Error:   "validation_failed",
				Details: formatValidationErrors(validationErrors),
			})
			return false
		}
		hlog.FromRequest(r).Error().Err(err).Type("validation_error_type", err).Msg("unexpected error type during validation")
		respondWithError(w, r, http.StatusInternalServerError, internalError.code, internalError.message)
		return false
	}
	return true
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "email":
			details[field] = "must be a valid email address"
		case "min", "gte":
			details[field] = fmt.Sprintf("must be at least %s", fe.Param())
		case "max", "lte":
			details[field] = fmt.Sprintf("must be at most %s", fe.Param())
		case "oneof":
			details[field] = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
		default:
			details[field] = "is invalid"
		}
	}
	return details
}

// newValidator reports JSON field names and understands decimal amounts.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}
