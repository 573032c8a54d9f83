package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vasiliy-maslov/ecommerce-storefront/internal/payment"

const maxErrorBody = 4 << 10

// do sends req inside a client span and decodes a 2xx JSON body into out.
func do(ctx context.Context, c *http.Client, spanName string, req *http.Request, out any) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.Redacted()),
		),
	)
	defer span.End()

	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("%w: %s: %v", ErrGateway, spanName, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		span.SetStatus(codes.Error, resp.Status)
		return fmt.Errorf("%w: %s returned %d: %s", ErrGateway, spanName, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid response body")
		return fmt.Errorf("%w: %s: decode response: %v", ErrGateway, spanName, err)
	}
	return nil
}
