// Package cache provides a time boxed value holder and a keyed store built
// on top of it.
//
// An Expiring value never evicts itself: validity is advisory and callers
// decide what to do with stale values.
package cache

import "time"

// DefaultDuration is the validity window used when none is given.
const DefaultDuration = 24 * time.Hour

type Option func(*options)

type options struct {
	duration time.Duration
	now      func() time.Time
}

// WithDuration sets the validity window. Zero and negative values are kept
// as given, which makes the holder invalid from the start.
func WithDuration(d time.Duration) Option {
	return func(o *options) {
		o.duration = d
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Expiring pairs a value with its creation time and validity window.
// It is immutable; Renew returns a new holder.
type Expiring[T any] struct {
	value     T
	createdAt time.Time
	duration  time.Duration
	now       func() time.Time
}

func New[T any](value T, opts ...Option) Expiring[T] {
	o := options{duration: DefaultDuration, now: time.Now}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	return Expiring[T]{
		value:     value,
		createdAt: o.now(),
		duration:  o.duration,
		now:       o.now,
	}
}

// Value returns the stored value whether or not it is still valid.
func (e Expiring[T]) Value() T {
	return e.value
}

func (e Expiring[T]) CreatedAt() time.Time {
	return e.createdAt
}

func (e Expiring[T]) Duration() time.Duration {
	return e.duration
}

// ExpiresAt is the first instant at which the holder is invalid.
func (e Expiring[T]) ExpiresAt() time.Time {
	return e.createdAt.Add(e.duration)
}

// IsValid reports whether now - createdAt < duration.
func (e Expiring[T]) IsValid() bool {
	return e.clock()().Sub(e.createdAt) < e.duration
}

func (e Expiring[T]) IsInvalid() bool {
	return !e.IsValid()
}

// Renew returns a holder with the same value and duration, created now.
func (e Expiring[T]) Renew() Expiring[T] {
	now := e.clock()
	return Expiring[T]{
		value:     e.value,
		createdAt: now(),
		duration:  e.duration,
		now:       now,
	}
}

// clock covers the zero value, which has no clock set.
func (e Expiring[T]) clock() func() time.Time {
	if e.now == nil {
		return time.Now
	}
	return e.now
}
