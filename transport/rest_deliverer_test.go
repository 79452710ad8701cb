package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-webhooks/core"
)

func TestRESTDeliverer_SendsMethodHeadersQueryAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST method, got %s", r.Method)
		}
		if got := r.URL.Query().Get("wait"); got != "true" {
			t.Errorf("expected wait query value, got %q", got)
		}
		if got := r.Header.Get("X-Test"); got != "value" {
			t.Errorf("expected header value, got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("expected json content type, got %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("expected default user agent, got %q", got)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "idem-1" {
			t.Errorf("expected idempotency key header, got %q", got)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		if string(body) != `{"content":"hi"}` {
			t.Errorf("unexpected request body %q", string(body))
		}
		w.Header().Set("X-Server", "ok")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	deliverer := NewRESTDeliverer(server.Client())
	res, err := deliverer.Deliver(context.Background(), core.DeliveryRequest{
		Endpoint:    server.URL,
		Query:       map[string]string{"wait": "true"},
		Headers:     map[string]string{"X-Test": "value"},
		Body:        []byte(`{"content":"hi"}`),
		Timeout:     5 * time.Second,
		Idempotency: "idem-1",
	})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.StatusCode)
	}
	if res.Headers["X-Server"] != "ok" {
		t.Fatalf("expected response header")
	}
	if res.Metadata["kind"] != KindREST {
		t.Fatalf("expected rest kind metadata")
	}
}

func TestRESTDeliverer_NonSuccessStatusIsNotATransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "1.5")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"You are being rate limited.","retry_after":1.5}`))
	}))
	defer server.Close()

	res, err := NewRESTDeliverer(server.Client()).Deliver(context.Background(), core.DeliveryRequest{
		Endpoint: server.URL,
		Body:     []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("expected status to be returned without error, got %v", err)
	}
	if res.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", res.StatusCode)
	}
	retryAfter, ok := res.Metadata["retry_after"].(time.Duration)
	if !ok || retryAfter != 1500*time.Millisecond {
		t.Fatalf("expected retry_after 1.5s, got %#v", res.Metadata["retry_after"])
	}
}

func TestRESTDeliverer_ResponseLimitReturnsRichError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	defer server.Close()

	deliverer := NewRESTDeliverer(server.Client())
	deliverer.MaxResponseBodyBytes = 4

	_, err := deliverer.Deliver(context.Background(), core.DeliveryRequest{Method: http.MethodGet, Endpoint: server.URL})
	if err == nil {
		t.Fatalf("expected response body limit error")
	}
	if !strings.Contains(err.Error(), "response body exceeds limit of 4 bytes") {
		t.Fatalf("unexpected error: %v", err)
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", rich.Category)
	}
	if rich.TextCode != core.ErrorDeliveryFailed {
		t.Fatalf("expected %q text code, got %q", core.ErrorDeliveryFailed, rich.TextCode)
	}
	if rich.Code != http.StatusBadGateway {
		t.Fatalf("expected %d code, got %d", http.StatusBadGateway, rich.Code)
	}
}

func TestRESTDeliverer_ClientFailureIsExternal(t *testing.T) {
	deliverer := NewRESTDeliverer(doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}))
	_, err := deliverer.Deliver(context.Background(), core.DeliveryRequest{Endpoint: "https://example.com/hook"})
	if err == nil {
		t.Fatalf("expected transport failure")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryExternal {
		t.Fatalf("expected external category, got %q", rich.Category)
	}
}

func TestRESTDeliverer_MissingEndpointIsBadInput(t *testing.T) {
	_, err := NewRESTDeliverer(nil).Deliver(context.Background(), core.DeliveryRequest{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %q", rich.Category)
	}
}

func TestRESTDeliverer_NilReturnsRichError(t *testing.T) {
	var deliverer *RESTDeliverer
	_, err := deliverer.Deliver(context.Background(), core.DeliveryRequest{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.TextCode != core.ErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.ErrorInternal, rich.TextCode)
	}
}

func TestNewRESTDelivererFromConfig(t *testing.T) {
	deliverer := NewRESTDelivererFromConfig(core.TransportConfig{Timeout: 3 * time.Second, MaxResponseBodyBytes: 64})
	client, ok := deliverer.Client.(*http.Client)
	if !ok {
		t.Fatalf("expected http client implementation")
	}
	if client.Timeout != 3*time.Second {
		t.Fatalf("expected timeout 3s, got %s", client.Timeout)
	}
	if deliverer.MaxResponseBodyBytes != 64 {
		t.Fatalf("expected response limit 64, got %d", deliverer.MaxResponseBodyBytes)
	}

	defaulted := NewRESTDeliverer(nil)
	if defaulted.Client.(*http.Client).Timeout != defaultRESTClientTimeout {
		t.Fatalf("expected default timeout %s", defaultRESTClientTimeout)
	}
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }
