package cache

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestNew_DefaultsToTwentyFourHours(t *testing.T) {
	holder := New("value")
	if holder.Duration() != 24*time.Hour {
		t.Fatalf("expected default duration of 24h, got %s", holder.Duration())
	}
	if holder.Duration().Milliseconds() != 86_400_000 {
		t.Fatalf("expected 86400000ms, got %d", holder.Duration().Milliseconds())
	}
	if !holder.IsValid() {
		t.Fatalf("expected fresh holder to be valid")
	}
}

func TestExpiring_ValidUntilDurationElapses(t *testing.T) {
	clock := newFakeClock()
	holder := New(42, WithDuration(time.Minute), WithClock(clock.Now))

	if !holder.IsValid() || holder.IsInvalid() {
		t.Fatalf("expected holder to be valid immediately after creation")
	}
	clock.Advance(59 * time.Second)
	if !holder.IsValid() {
		t.Fatalf("expected holder to be valid before the window closes")
	}
	clock.Advance(time.Second)
	if holder.IsValid() {
		t.Fatalf("expected holder to be invalid once the full duration elapsed")
	}
	if !holder.IsInvalid() {
		t.Fatalf("expected IsInvalid to negate IsValid")
	}
}

func TestExpiring_ValueSurvivesExpiry(t *testing.T) {
	clock := newFakeClock()
	holder := New("payload", WithDuration(time.Millisecond), WithClock(clock.Now))
	clock.Advance(time.Hour)

	if holder.IsValid() {
		t.Fatalf("expected holder to be expired")
	}
	if holder.Value() != "payload" {
		t.Fatalf("expected value to remain available after expiry, got %q", holder.Value())
	}
}

func TestExpiring_RenewReturnsFreshCopy(t *testing.T) {
	clock := newFakeClock()
	original := New([]string{"a"}, WithDuration(time.Second), WithClock(clock.Now))
	createdAt := original.CreatedAt()
	clock.Advance(2 * time.Second)

	renewed := original.Renew()
	if !renewed.IsValid() {
		t.Fatalf("expected renewed holder to be valid")
	}
	if original.IsValid() {
		t.Fatalf("expected original holder to stay invalid")
	}
	if !original.CreatedAt().Equal(createdAt) {
		t.Fatalf("expected original creation time to be untouched")
	}
	if !renewed.CreatedAt().Equal(clock.Now()) {
		t.Fatalf("expected renewed creation time %s, got %s", clock.Now(), renewed.CreatedAt())
	}
	if renewed.Duration() != original.Duration() {
		t.Fatalf("expected renewed duration %s, got %s", original.Duration(), renewed.Duration())
	}
	if &renewed.Value()[0] != &original.Value()[0] {
		t.Fatalf("expected renewed holder to share the identical value")
	}
}

func TestExpiring_ZeroAndNegativeDurationsAreNeverValid(t *testing.T) {
	clock := newFakeClock()
	if New("x", WithDuration(0), WithClock(clock.Now)).IsValid() {
		t.Fatalf("expected zero duration holder to be invalid")
	}
	if New("x", WithDuration(-time.Second), WithClock(clock.Now)).IsValid() {
		t.Fatalf("expected negative duration holder to be invalid")
	}
}

func TestExpiring_RealClockWithTinyDuration(t *testing.T) {
	holder := New("x", WithDuration(5*time.Millisecond))
	time.Sleep(10 * time.Millisecond)
	if holder.IsValid() {
		t.Fatalf("expected holder to expire after sleeping past its duration")
	}
}

func TestExpiring_ZeroValueIsUsable(t *testing.T) {
	var holder Expiring[int]
	if holder.IsValid() {
		t.Fatalf("expected zero value holder to be invalid")
	}
	if holder.Renew().IsValid() {
		t.Fatalf("expected renewed zero value holder to keep a zero duration")
	}
}
