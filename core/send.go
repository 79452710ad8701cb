package core

import (
	"context"
	"fmt"
)

// SendWithoutError calls sender.Send and folds every failure into false.
// Validation failures, transport errors, a nil sender and a panic raised by
// Send are all reported the same way. It never propagates an error.
func SendWithoutError[T any](ctx context.Context, sender Sender[T], data T) (ok bool) {
	if sender == nil {
		return false
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			ok = false
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}
	return sender.Send(ctx, data) == nil
}

// BestEffort wraps a Sender so failures are logged and dropped.
type BestEffort[T any] struct {
	sender Sender[T]
	logger Logger
}

func NewBestEffort[T any](sender Sender[T], logger Logger) *BestEffort[T] {
	return &BestEffort[T]{sender: sender, logger: logger}
}

// Send reports whether the payload was delivered.
func (b *BestEffort[T]) Send(ctx context.Context, data T) (ok bool) {
	if b == nil || b.sender == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			b.logFailure(ctx, fmt.Errorf("core: sender panicked: %v", recovered))
			ok = false
		}
	}()
	if err := b.sender.Send(ctx, data); err != nil {
		b.logFailure(ctx, err)
		return false
	}
	return true
}

func (b *BestEffort[T]) logFailure(ctx context.Context, err error) {
	if b.logger == nil {
		return
	}
	mapped := MapError(err)
	b.logger.WithContext(ctx).Warn("webhook send dropped",
		"error", err.Error(),
		"text_code", mapped.TextCode,
		"validation_failed", IsValidationFailed(err),
	)
}
