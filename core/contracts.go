package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Sender delivers a typed payload to a configured destination.
//
// Send returns a validation failure (see IsValidationFailed) when data does
// not satisfy the destination rules and surfaces every transport failure.
// Callers that prefer best-effort semantics use SendWithoutError.
type Sender[T any] interface {
	Send(ctx context.Context, data T) error
}

// SenderFunc adapts a plain function to Sender.
type SenderFunc[T any] func(ctx context.Context, data T) error

func (f SenderFunc[T]) Send(ctx context.Context, data T) error {
	if f == nil {
		return dependencyError("core: sender func is nil")
	}
	return f(ctx, data)
}

type DeliveryRequest struct {
	Method      string
	Endpoint    string
	Headers     map[string]string
	Query       map[string]string
	Body        []byte
	Metadata    map[string]any
	Timeout     time.Duration
	Idempotency string
	// RateLimitKey scopes the call for the rate limit policy. Zero value skips it.
	RateLimitKey RateLimitKey
}

type DeliveryResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// Deliverer is the transport primitive: move serialized bytes to an endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, req DeliveryRequest) (DeliveryResponse, error)
}

type DelivererFunc func(ctx context.Context, req DeliveryRequest) (DeliveryResponse, error)

func (f DelivererFunc) Deliver(ctx context.Context, req DeliveryRequest) (DeliveryResponse, error) {
	if f == nil {
		return DeliveryResponse{}, dependencyError("core: deliverer func is nil")
	}
	return f(ctx, req)
}

type RateLimitKey struct {
	Destination string
	BucketKey   string
}

func (k RateLimitKey) IsZero() bool {
	return k.Destination == "" && k.BucketKey == ""
}

type ResponseMeta struct {
	StatusCode int
	Headers    map[string]string
	RetryAfter *time.Duration
	Metadata   map[string]any
}

type RateLimitPolicy interface {
	BeforeCall(ctx context.Context, key RateLimitKey) error
	AfterCall(ctx context.Context, key RateLimitKey, res ResponseMeta) error
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

// AttemptAwareDelivery lets the worker pass the attempt number so the
// adapter can bound retries.
type AttemptAwareDelivery interface {
	NackForAttempt(ctx context.Context, opts JobNackOptions, attempt int) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
