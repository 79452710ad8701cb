package ratelimit

import (
	"testing"
	"time"

	"github.com/goliatone/go-webhooks/core"
)

func TestThrottledError_ToServiceError(t *testing.T) {
	err := ThrottledError{
		Destination: "discord:1234",
		BucketKey:   "execute",
		RetryAfter:  3 * time.Second,
	}

	mapped := err.ToServiceError()
	if mapped == nil {
		t.Fatalf("expected mapped error")
	}
	if mapped.TextCode != core.ErrorRateLimited {
		t.Fatalf("expected %q text code, got %q", core.ErrorRateLimited, mapped.TextCode)
	}
	if mapped.Code != 429 {
		t.Fatalf("expected status code 429, got %d", mapped.Code)
	}
	if !core.IsRateLimited(mapped) {
		t.Fatalf("expected mapped error to classify as rate limited")
	}
}
