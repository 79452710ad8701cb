package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-webhooks/core"
)

const KindREST = "rest"

const (
	defaultRESTClientTimeout           = 30 * time.Second
	defaultRESTResponseBodyLimit int64 = 1 << 20 // 1 MiB
	DefaultUserAgent                   = "go-webhooks (https://github.com/goliatone/go-webhooks, 1.0)"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RESTDeliverer posts serialized payloads over HTTP. Any HTTP status is a
// successful delivery at this level; callers interpret the status code.
type RESTDeliverer struct {
	Client               HTTPDoer
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
}

func NewRESTDeliverer(client HTTPDoer) *RESTDeliverer {
	if client == nil {
		client = &http.Client{Timeout: defaultRESTClientTimeout}
	}
	return &RESTDeliverer{
		Client: client,
		DefaultHeaders: map[string]string{
			"User-Agent":   DefaultUserAgent,
			"Content-Type": "application/json",
		},
		MaxResponseBodyBytes: defaultRESTResponseBodyLimit,
	}
}

// NewRESTDelivererFromConfig applies the transport section of the config.
func NewRESTDelivererFromConfig(cfg core.TransportConfig) *RESTDeliverer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRESTClientTimeout
	}
	deliverer := NewRESTDeliverer(&http.Client{Timeout: timeout})
	if cfg.MaxResponseBodyBytes > 0 {
		deliverer.MaxResponseBodyBytes = cfg.MaxResponseBodyBytes
	}
	return deliverer
}

func (*RESTDeliverer) Kind() string {
	return KindREST
}

func (d *RESTDeliverer) Deliver(ctx context.Context, req core.DeliveryRequest) (core.DeliveryResponse, error) {
	if d == nil || d.Client == nil {
		return core.DeliveryResponse{}, transportError(
			"transport: rest deliverer requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"adapter": KindREST},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodPost
	}
	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		return core.DeliveryResponse{}, transportError(
			"transport: delivery endpoint is required",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			map[string]any{"adapter": KindREST},
		)
	}
	parsedURL, err := url.Parse(endpoint)
	if err != nil {
		return core.DeliveryResponse{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid delivery endpoint",
			http.StatusBadRequest,
			map[string]any{"adapter": KindREST, "endpoint": core.RedactEndpoint(endpoint)},
		)
	}

	query := parsedURL.Query()
	for key, value := range req.Query {
		if strings.TrimSpace(key) == "" {
			continue
		}
		query.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	parsedURL.RawQuery = query.Encode()

	requestCtx := ctx
	cancel := func() {}
	if req.Timeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, method, parsedURL.String(), bytes.NewReader(req.Body))
	if err != nil {
		return core.DeliveryResponse{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			http.StatusBadRequest,
			map[string]any{"adapter": KindREST, "method": method},
		)
	}
	for key, value := range d.DefaultHeaders {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	for key, value := range req.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if len(req.Body) == 0 {
		httpReq.Header.Del("Content-Type")
	}
	if key := strings.TrimSpace(req.Idempotency); key != "" && httpReq.Header.Get("Idempotency-Key") == "" {
		httpReq.Header.Set("Idempotency-Key", key)
	}

	startedAt := time.Now().UTC()
	httpRes, err := d.Client.Do(httpReq)
	if err != nil {
		return core.DeliveryResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			http.StatusBadGateway,
			map[string]any{"adapter": KindREST, "method": method, "endpoint": core.RedactEndpoint(endpoint)},
		)
	}
	defer httpRes.Body.Close()

	maxBodyBytes := d.MaxResponseBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultRESTResponseBodyLimit
	}
	body, err := io.ReadAll(io.LimitReader(httpRes.Body, maxBodyBytes+1))
	if err != nil {
		return core.DeliveryResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			http.StatusBadGateway,
			map[string]any{"adapter": KindREST, "status_code": httpRes.StatusCode},
		)
	}
	if int64(len(body)) > maxBodyBytes {
		return core.DeliveryResponse{}, transportError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", maxBodyBytes),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			map[string]any{
				"adapter":          KindREST,
				"status_code":      httpRes.StatusCode,
				"response_limit_b": maxBodyBytes,
			},
		)
	}

	metadata := map[string]any{
		"duration_ms": time.Since(startedAt).Milliseconds(),
		"kind":        KindREST,
	}
	if retryAfter, ok := parseRetryAfterSeconds(httpRes.Header.Get("Retry-After")); ok {
		metadata["retry_after"] = retryAfter
	}
	return core.DeliveryResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    flattenHeaders(httpRes.Header),
		Body:       body,
		Metadata:   metadata,
	}, nil
}

func flattenHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			flat[key] = ""
			continue
		}
		flat[key] = strings.Join(values, ",")
	}
	return flat
}

// parseRetryAfterSeconds accepts fractional seconds as sent by Discord.
func parseRetryAfterSeconds(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

var _ core.Deliverer = (*RESTDeliverer)(nil)
