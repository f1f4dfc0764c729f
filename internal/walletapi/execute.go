package walletapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Aidin1998/wallet_system/pkg/errors"
	"github.com/Aidin1998/wallet_system/pkg/models"
)

// maxErrorBody caps how much of a failed response is read
const maxErrorBody = 64 << 10

// HeaderRequestID carries the per request correlation id
const HeaderRequestID = "X-Request-ID"

type request struct {
	operation string
	method    string
	path      []string
	query     url.Values
	body      any
	// scoped calls target one wallet and need walletID
	scoped   bool
	walletID string
	fallback string
	success  string
}

// execute runs one request and folds the outcome into an envelope, raising
// exactly one notification per failure and, for mutating calls, one per success.
func execute[T any](ctx context.Context, c *Client, r request) models.Response[T] {
	ctx, span := c.tracer.Start(ctx, "walletapi."+r.operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("wallet.operation", r.operation),
			attribute.String("http.request.method", r.method),
		))
	defer span.End()

	start := time.Now()
	data, err := roundTrip[T](ctx, c, r)
	c.metrics.Observe(r.operation, err == nil, time.Since(start))

	if err != nil {
		msg := failureMessage(err, r.fallback)
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		c.logger.Error("Wallet API call failed",
			zap.String("operation", r.operation),
			zap.String("kind", errors.KindOf(err)),
			zap.String("message", msg),
			zap.Error(err))
		c.notifier.NotifyError(msg)
		return models.Fail[T](msg)
	}

	if r.success != "" {
		c.notifier.NotifySuccess(r.success)
	}
	return models.OK(data)
}

func roundTrip[T any](ctx context.Context, c *Client, r request) (T, error) {
	var out T

	if r.scoped && strings.TrimSpace(r.walletID) == "" {
		return out, errors.Invalid.Explain("wallet id is required")
	}

	endpoint := c.endpoint(r.path, r.query)

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return out, errors.Encode.Explain("marshal %s body", r.operation).Wrap(err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return out, errors.Transport.Explain("build request").Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, uuid.NewString())
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.logger.Debug("API Request",
		zap.String("method", r.method),
		zap.String("url", req.URL.RequestURI()),
		zap.String("request_id", req.Header.Get(HeaderRequestID)))

	resp, err := c.http.Do(req)
	if err != nil {
		return out, errors.Transport.Explain("%s %s", r.method, req.URL.Path).Wrap(err)
	}
	defer resp.Body.Close()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug("API Response",
		zap.Int("status_code", resp.StatusCode),
		zap.String("url", req.URL.RequestURI()))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return out, errors.Status.Explain("%s", serverMessage(raw)).WithStatus(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, errors.Decode.Explain("decode %s response", r.operation).Wrap(err)
	}
	return out, nil
}

func (c *Client) endpoint(path []string, query url.Values) string {
	segments := make([]string, len(path))
	for i, p := range path {
		segments[i] = url.PathEscape(p)
	}
	u := c.baseURL.JoinPath(segments...)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// failureMessage prefers the message reported by the service
func failureMessage(err error, fallback string) string {
	var e *errors.Error
	if errors.As(err, &e) && e.Kind == errors.KindStatus && e.Message != "" {
		return e.Message
	}
	return fallback
}

// serverMessage extracts the "message" field of an error body. Validation
// errors report it as a list of strings.
func serverMessage(raw []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Message) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(body.Message, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var many []string
	if err := json.Unmarshal(body.Message, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return ""
}
