package core

import (
	stderrors "errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestNewValidationError_CarriesFieldErrors(t *testing.T) {
	err := NewValidationError("", goerrors.FieldError{Field: "embeds[0].title", Message: "must be at most 256 characters"})
	if err.TextCode != ErrorValidationFailed {
		t.Fatalf("expected validation text code, got %q", err.TextCode)
	}
	if err.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 code, got %d", err.Code)
	}
	if err.Message != "webhook payload validation failed" {
		t.Fatalf("expected default message, got %q", err.Message)
	}
	if len(err.ValidationErrors) != 1 || err.ValidationErrors[0].Field != "embeds[0].title" {
		t.Fatalf("expected field error to be kept, got %#v", err.ValidationErrors)
	}
	if !IsValidationFailed(err) {
		t.Fatalf("expected validation error to classify as validation failure")
	}
	if IsValidationFailed(stderrors.New("plain")) || IsValidationFailed(nil) {
		t.Fatalf("expected plain and nil errors not to classify as validation failures")
	}
}

func TestNewDeliveryError_MapsStatusCodes(t *testing.T) {
	cases := []struct {
		status   int
		category goerrors.Category
		textCode string
		code     int
	}{
		{status: http.StatusTooManyRequests, category: goerrors.CategoryRateLimit, textCode: ErrorRateLimited, code: http.StatusTooManyRequests},
		{status: http.StatusNotFound, category: goerrors.CategoryNotFound, textCode: ErrorNotFound, code: http.StatusNotFound},
		{status: http.StatusUnauthorized, category: goerrors.CategoryAuth, textCode: ErrorUnauthorized, code: http.StatusUnauthorized},
		{status: http.StatusForbidden, category: goerrors.CategoryAuth, textCode: ErrorUnauthorized, code: http.StatusForbidden},
		{status: http.StatusInternalServerError, category: goerrors.CategoryExternal, textCode: ErrorDeliveryFailed, code: http.StatusBadGateway},
		{status: 0, category: goerrors.CategoryExternal, textCode: ErrorDeliveryFailed, code: http.StatusBadGateway},
	}
	for _, tc := range cases {
		err := NewDeliveryError(nil, "delivery failed", tc.status, map[string]any{"destination": "discord"})
		if err.Category != tc.category {
			t.Fatalf("status %d: expected category %q, got %q", tc.status, tc.category, err.Category)
		}
		if err.TextCode != tc.textCode {
			t.Fatalf("status %d: expected text code %q, got %q", tc.status, tc.textCode, err.TextCode)
		}
		if err.Code != tc.code {
			t.Fatalf("status %d: expected code %d, got %d", tc.status, tc.code, err.Code)
		}
		if err.Metadata["destination"] != "discord" {
			t.Fatalf("status %d: expected metadata to be kept", tc.status)
		}
		if tc.status > 0 && err.Metadata["status_code"] != tc.status {
			t.Fatalf("status %d: expected status_code metadata", tc.status)
		}
	}
}

func TestNewDeliveryError_WrapsSource(t *testing.T) {
	source := stderrors.New("connection refused")
	err := NewDeliveryError(source, "delivery failed", 0, nil)
	if !stderrors.Is(err, source) {
		t.Fatalf("expected wrapped source to be reachable")
	}
}

func TestMapError_AssignsStableCodes(t *testing.T) {
	if MapError(nil) != nil {
		t.Fatalf("expected nil mapping for nil error")
	}

	mapped := MapError(stderrors.New("core: delivery endpoint is required"))
	if mapped.TextCode != ErrorBadInput {
		t.Fatalf("expected bad input text code, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 code, got %d", mapped.Code)
	}

	mapped = MapError(stderrors.New("destination throttled"))
	if mapped.TextCode != ErrorRateLimited {
		t.Fatalf("expected rate limited text code, got %q", mapped.TextCode)
	}
	if !IsRateLimited(mapped) {
		t.Fatalf("expected mapped error to classify as rate limited")
	}

	rich := goerrors.New("upstream", goerrors.CategoryExternal)
	mapped = MapError(rich)
	if mapped.TextCode != ErrorDeliveryFailed || mapped.Code != http.StatusBadGateway {
		t.Fatalf("expected envelope defaults on rich error, got %q/%d", mapped.TextCode, mapped.Code)
	}
}
