package core

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	JobIDDeliver = "webhooks.deliver"

	paramEndpoint    = "endpoint"
	paramMethod      = "method"
	paramBody        = "body"
	paramHeaders     = "headers"
	paramQuery       = "query"
	paramDestination = "destination"
	paramBucketKey   = "bucket_key"
	paramTimeoutMS   = "timeout_ms"
)

// RequestEncoder validates and serializes a payload into a delivery request.
type RequestEncoder[T any] func(data T) (DeliveryRequest, error)

// AsyncSender validates synchronously and hands delivery to a job queue.
// Send returns once the job is enqueued; transport failures are handled by
// a DeliveryWorker.
type AsyncSender[T any] struct {
	enqueuer JobEnqueuer
	encode   RequestEncoder[T]
	newKey   func() string
}

func NewAsyncSender[T any](enqueuer JobEnqueuer, encode RequestEncoder[T]) *AsyncSender[T] {
	return &AsyncSender[T]{
		enqueuer: enqueuer,
		encode:   encode,
		newKey:   uuid.NewString,
	}
}

func (s *AsyncSender[T]) Send(ctx context.Context, data T) error {
	if s == nil || s.enqueuer == nil || s.encode == nil {
		return dependencyError("core: async sender requires enqueuer and encoder")
	}
	req, err := s.encode(data)
	if err != nil {
		return err
	}
	if strings.TrimSpace(req.Endpoint) == "" {
		return badInputError("core: delivery endpoint is required")
	}
	key := strings.TrimSpace(req.Idempotency)
	if key == "" {
		key = s.newKey()
	}
	msg := &JobExecutionMessage{
		JobID:          JobIDDeliver,
		ScriptPath:     JobIDDeliver,
		Parameters:     requestToParameters(req),
		IdempotencyKey: key,
		DedupPolicy:    "drop",
	}
	if err := s.enqueuer.Enqueue(ctx, msg); err != nil {
		return NewDeliveryError(err, "core: enqueue delivery job", 0, map[string]any{
			"job_id":          JobIDDeliver,
			"idempotency_key": key,
		})
	}
	return nil
}

type DeliveryWorker struct {
	dequeuer  JobDequeuer
	deliverer Deliverer
	hook      JobWorkerHook
	config    DeliveryConfig
	idle      time.Duration
	now       func() time.Time

	mu       sync.Mutex
	attempts map[string]int
}

type DeliveryStats struct {
	Delivered    int
	Retried      int
	DeadLettered int
}

func NewDeliveryWorker(dequeuer JobDequeuer, deliverer Deliverer, config DeliveryConfig) (*DeliveryWorker, error) {
	if dequeuer == nil {
		return nil, fmt.Errorf("core: delivery worker requires a dequeuer")
	}
	if deliverer == nil {
		return nil, fmt.Errorf("core: delivery worker requires a deliverer")
	}
	defaults := DefaultConfig().Delivery
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaults.InitialBackoff
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = defaults.MaxBackoff
	}
	return &DeliveryWorker{
		dequeuer:  dequeuer,
		deliverer: deliverer,
		config:    config,
		idle:      time.Second,
		now:       func() time.Time { return time.Now().UTC() },
		attempts:  map[string]int{},
	}, nil
}

func (w *DeliveryWorker) WithHook(hook JobWorkerHook) *DeliveryWorker {
	if w != nil {
		w.hook = hook
	}
	return w
}

// Run processes jobs until ctx is cancelled. It waits the idle interval only
// when the queue is empty or Dequeue fails; per job failures are retried by
// the queue, not by Run.
func (w *DeliveryWorker) Run(ctx context.Context) error {
	if w == nil || w.dequeuer == nil || w.deliverer == nil {
		return fmt.Errorf("core: delivery worker is not configured")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		delivery, err := w.dequeuer.Dequeue(ctx)
		if err == nil && delivery != nil {
			_, _ = w.process(ctx, delivery)
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.idle):
		}
	}
}

// RunOnce dequeues and processes a single job. An empty queue returns zero
// stats and no error.
func (w *DeliveryWorker) RunOnce(ctx context.Context) (DeliveryStats, error) {
	if w == nil || w.dequeuer == nil || w.deliverer == nil {
		return DeliveryStats{}, fmt.Errorf("core: delivery worker is not configured")
	}
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return DeliveryStats{}, err
	}
	if delivery == nil {
		return DeliveryStats{}, nil
	}
	return w.process(ctx, delivery)
}

func (w *DeliveryWorker) process(ctx context.Context, delivery JobDelivery) (DeliveryStats, error) {
	msg := delivery.Message()
	key := attemptKey(msg)
	attempt := w.nextAttempt(key)
	startedAt := w.now()
	event := JobWorkerEvent{Message: msg, Attempt: attempt, StartedAt: startedAt}
	w.emit(ctx, "start", event)

	err := w.deliver(ctx, msg)
	event.Duration = w.now().Sub(startedAt)
	if err == nil {
		w.clearAttempts(key)
		w.emit(ctx, "success", event)
		return DeliveryStats{Delivered: 1}, delivery.Ack(ctx)
	}

	event.Err = err
	if !isRetryable(err) || attempt >= w.config.MaxAttempts {
		w.clearAttempts(key)
		w.emit(ctx, "failure", event)
		nackErr := w.nack(ctx, delivery, JobNackOptions{
			DeadLetter: !w.config.DiscardOnMax,
			Requeue:    false,
			Reason:     err.Error(),
		}, attempt)
		return DeliveryStats{DeadLettered: 1}, joinErrors(err, nackErr)
	}

	event.Delay = w.backoff(attempt)
	w.emit(ctx, "retry", event)
	nackErr := w.nack(ctx, delivery, JobNackOptions{
		Delay:   event.Delay,
		Requeue: true,
		Reason:  err.Error(),
	}, attempt)
	return DeliveryStats{Retried: 1}, joinErrors(err, nackErr)
}

func (w *DeliveryWorker) deliver(ctx context.Context, msg *JobExecutionMessage) error {
	req, err := parametersToRequest(msg)
	if err != nil {
		return err
	}
	res, err := w.deliverer.Deliver(ctx, req)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return NewDeliveryError(nil,
			fmt.Sprintf("core: delivery returned status %d", res.StatusCode),
			res.StatusCode,
			map[string]any{"endpoint": RedactEndpoint(req.Endpoint)},
		)
	}
	return nil
}

func (w *DeliveryWorker) nack(ctx context.Context, delivery JobDelivery, opts JobNackOptions, attempt int) error {
	if aware, ok := delivery.(AttemptAwareDelivery); ok {
		return aware.NackForAttempt(ctx, opts, attempt)
	}
	return delivery.Nack(ctx, opts)
}

func (w *DeliveryWorker) emit(ctx context.Context, phase string, event JobWorkerEvent) {
	if w.hook == nil {
		return
	}
	switch phase {
	case "start":
		w.hook.OnStart(ctx, event)
	case "success":
		w.hook.OnSuccess(ctx, event)
	case "failure":
		w.hook.OnFailure(ctx, event)
	case "retry":
		w.hook.OnRetry(ctx, event)
	}
}

func (w *DeliveryWorker) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := float64(w.config.InitialBackoff)
	next := time.Duration(base * math.Pow(2, float64(attempt-1)))
	if next <= 0 || next > w.config.MaxBackoff {
		return w.config.MaxBackoff
	}
	return next
}

func (w *DeliveryWorker) nextAttempt(key string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts[key]++
	return w.attempts[key]
}

func (w *DeliveryWorker) clearAttempts(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attempts, key)
}

func attemptKey(msg *JobExecutionMessage) string {
	if msg == nil {
		return ""
	}
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		return key
	}
	return fmt.Sprint(msg.Parameters[paramEndpoint])
}

// isRetryable keeps payload problems out of the retry loop.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if IsValidationFailed(err) {
		return false
	}
	mapped := MapError(err)
	switch mapped.Code {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
		return false
	}
	return true
}

func requestToParameters(req DeliveryRequest) map[string]any {
	params := map[string]any{
		paramEndpoint: strings.TrimSpace(req.Endpoint),
		paramMethod:   deliveryMethod(req.Method),
		paramBody:     string(req.Body),
	}
	if len(req.Headers) > 0 {
		params[paramHeaders] = stringMapToAny(req.Headers)
	}
	if len(req.Query) > 0 {
		params[paramQuery] = stringMapToAny(req.Query)
	}
	if !req.RateLimitKey.IsZero() {
		params[paramDestination] = req.RateLimitKey.Destination
		params[paramBucketKey] = req.RateLimitKey.BucketKey
	}
	if req.Timeout > 0 {
		params[paramTimeoutMS] = req.Timeout.Milliseconds()
	}
	return params
}

func parametersToRequest(msg *JobExecutionMessage) (DeliveryRequest, error) {
	if msg == nil {
		return DeliveryRequest{}, badInputError("core: delivery job message is required")
	}
	params := msg.Parameters
	endpoint := strings.TrimSpace(stringParam(params, paramEndpoint))
	if endpoint == "" {
		return DeliveryRequest{}, badInputError("core: delivery job endpoint is required")
	}
	req := DeliveryRequest{
		Method:      deliveryMethod(stringParam(params, paramMethod)),
		Endpoint:    endpoint,
		Headers:     stringMapParam(params, paramHeaders),
		Query:       stringMapParam(params, paramQuery),
		Body:        []byte(stringParam(params, paramBody)),
		Idempotency: strings.TrimSpace(msg.IdempotencyKey),
		RateLimitKey: RateLimitKey{
			Destination: stringParam(params, paramDestination),
			BucketKey:   stringParam(params, paramBucketKey),
		},
	}
	switch timeout := params[paramTimeoutMS].(type) {
	case int64:
		req.Timeout = time.Duration(timeout) * time.Millisecond
	case int:
		req.Timeout = time.Duration(timeout) * time.Millisecond
	case float64:
		req.Timeout = time.Duration(timeout) * time.Millisecond
	}
	return req, nil
}

func stringParam(params map[string]any, key string) string {
	value, ok := params[key]
	if !ok || value == nil {
		return ""
	}
	if typed, ok := value.(string); ok {
		return typed
	}
	return fmt.Sprint(value)
}

// stringMapParam accepts both in-process maps and maps decoded from JSON.
func stringMapParam(params map[string]any, key string) map[string]string {
	switch typed := params[key].(type) {
	case map[string]string:
		return copyStringMap(typed)
	case map[string]any:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprint(v)
		}
		return out
	default:
		return map[string]string{}
	}
}

func stringMapToAny(in map[string]string) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func joinErrors(current error, next error) error {
	if current == nil {
		return next
	}
	if next == nil {
		return current
	}
	return fmt.Errorf("%w; %v", current, next)
}
