package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-storefront/internal/user"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type TokenParser interface {
	Parse(token string) (*auth.Identity, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type contextKey struct{ name string }

var userContextKey = &contextKey{"user"}

func withUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// currentUser returns the user loaded by Authenticate.
func currentUser(r *http.Request) (*user.User, bool) {
	u, ok := r.Context().Value(userContextKey).(*user.User)
	return u, ok && u != nil
}

func requireUser(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	u, ok := currentUser(r)
	if !ok {
		respondWithError(w, r, http.StatusUnauthorized, "missing_token", "Access token required")
	}
	return u, ok
}

type Authenticator struct {
	tokens TokenParser
	users  UserLookup
}

func NewAuthenticator(tokens TokenParser, users UserLookup) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate requires a valid bearer token for an existing, unblocked user.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respondWithError(w, r, http.StatusUnauthorized, "missing_token", "Access token required")
			return
		}

		identity, err := a.tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			respondWithServiceError(w, r, err, "token rejected")
			return
		}

		u, err := a.users.GetUserByID(r.Context(), identity.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				respondWithError(w, r, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
				return
			}
			respondWithServiceError(w, r, err, "failed to load authenticated user")
			return
		}
		if u.IsBlocked {
			respondWithServiceError(w, r, user.ErrBlocked, "blocked user rejected")
			return
		}

		ctx := withUser(r.Context(), u)
		logger := hlog.FromRequest(r).With().Stringer("user_id", u.ID).Logger()
		ctx = logger.WithContext(ctx)

		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(attribute.String("enduser.id", u.ID.String()))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := requireUser(w, r)
		if !ok {
			return
		}
		if !u.IsAdmin() {
			respondWithError(w, r, http.StatusForbidden, "forbidden", "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Tracing opens a server span per request, continuing any W3C trace context
// the caller sent.
func Tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer("github.com/vasiliy-maslov/ecommerce-storefront/internal/handler/http")
	prop := otel.GetTextMapPropagator()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.IsValid() {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("trace_id", sc.TraceID().String())
			})
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			span.SetName(r.Method + " " + rctx.RoutePattern())
			span.SetAttributes(attribute.String("http.route", rctx.RoutePattern()))
		}
		status := ww.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}

// RequestLogger attaches a request-scoped zerolog logger carrying the request
// id, and writes one access log line per request.
func RequestLogger(base zerolog.Logger) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		hlog.NewHandler(base),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if reqID := middleware.GetReqID(r.Context()); reqID != "" {
					hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
						return c.Str("request_id", reqID)
					})
				}
				next.ServeHTTP(w, r)
			})
		},
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("request completed")
		}),
	}
}
