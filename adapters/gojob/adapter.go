// Package gojob runs webhook deliveries on go-job queues. It maps the core
// job contracts onto go-job enqueuers, dequeuers and worker hooks.
package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-webhooks/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

// RetryPolicy bounds the nack options handed to the underlying queue.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// RetryPolicyFromConfig derives queue bounds from the delivery config.
func RetryPolicyFromConfig(cfg core.DeliveryConfig) RetryPolicy {
	defaults := core.DefaultConfig().Delivery
	policy := RetryPolicy{
		MaxAttempts:     cfg.MaxAttempts,
		MaxDelay:        cfg.MaxBackoff,
		DeadLetterOnMax: !cfg.DiscardOnMax,
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = defaults.MaxBackoff
	}
	return policy
}

// NormalizeAttempt clamps the delay and stops requeueing once the attempt
// budget is spent. A nack that neither requeues nor dead letters drops the
// job.
func (p RetryPolicy) NormalizeAttempt(opts core.JobNackOptions, attempt int) core.JobNackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.DeadLetter {
		out.Requeue = false
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts && out.Requeue {
		out.Requeue = false
		out.DeadLetter = p.DeadLetterOnMax
	}
	if !out.Requeue {
		out.Delay = 0
	}
	return out
}

func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     copyParameters(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

func FromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     copyParameters(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

func ToNackOptions(opts core.JobNackOptions) queue.NackOptions {
	return queue.NackOptions{
		Delay:      opts.Delay,
		Requeue:    opts.Requeue,
		DeadLetter: opts.DeadLetter,
		Reason:     opts.Reason,
	}
}

// Enqueuer publishes delivery jobs onto a go-job queue.
type Enqueuer struct {
	enqueuer queue.Enqueuer
}

func NewEnqueuer(enqueuer queue.Enqueuer) *Enqueuer {
	return &Enqueuer{enqueuer: enqueuer}
}

func (a *Enqueuer) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if a == nil || a.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}
	return a.enqueuer.Enqueue(ctx, ToExecutionMessage(msg))
}

// Delivery wraps a dequeued go-job delivery and applies the retry policy on
// every nack.
type Delivery struct {
	delivery queue.Delivery
	policy   RetryPolicy
}

func NewDelivery(delivery queue.Delivery, policy RetryPolicy) *Delivery {
	return &Delivery{delivery: delivery, policy: policy}
}

func (d *Delivery) Message() *core.JobExecutionMessage {
	if d == nil || d.delivery == nil {
		return nil
	}
	return FromExecutionMessage(d.delivery.Message())
}

func (d *Delivery) Ack(ctx context.Context) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Ack(ctx)
}

func (d *Delivery) Nack(ctx context.Context, opts core.JobNackOptions) error {
	return d.NackForAttempt(ctx, opts, 0)
}

func (d *Delivery) NackForAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) error {
	if d == nil || d.delivery == nil {
		return fmt.Errorf("gojob: delivery is not configured")
	}
	return d.delivery.Nack(ctx, ToNackOptions(d.policy.NormalizeAttempt(opts, attempt)))
}

type Dequeuer struct {
	dequeuer queue.Dequeuer
	policy   RetryPolicy
}

func NewDequeuer(dequeuer queue.Dequeuer, policy RetryPolicy) *Dequeuer {
	return &Dequeuer{dequeuer: dequeuer, policy: policy}
}

func (a *Dequeuer) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	if a == nil || a.dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is not configured")
	}
	delivery, err := a.dequeuer.Dequeue(ctx)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, nil
	}
	return NewDelivery(delivery, a.policy), nil
}

// NewQueuedSender returns a sender that validates payloads in the caller and
// publishes the encoded request as a delivery job.
func NewQueuedSender[T any](enqueuer queue.Enqueuer, encode core.RequestEncoder[T]) *core.AsyncSender[T] {
	return core.NewAsyncSender[T](NewEnqueuer(enqueuer), encode)
}

// NewDeliveryWorker consumes delivery jobs from a go-job queue. Nacks are
// bounded by the same delivery config the worker retries with.
func NewDeliveryWorker(dequeuer queue.Dequeuer, deliverer core.Deliverer, cfg core.DeliveryConfig) (*core.DeliveryWorker, error) {
	if dequeuer == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	return core.NewDeliveryWorker(NewDequeuer(dequeuer, RetryPolicyFromConfig(cfg)), deliverer, cfg)
}

// WorkerHook forwards go-job worker events to a core hook, so the same
// observer can watch both in-process and go-job driven workers.
type WorkerHook struct {
	hook core.JobWorkerHook
}

func NewWorkerHook(hook core.JobWorkerHook) *WorkerHook {
	return &WorkerHook{hook: hook}
}

func (a *WorkerHook) OnStart(ctx context.Context, event worker.Event) {
	if a == nil || a.hook == nil {
		return
	}
	a.hook.OnStart(ctx, toWorkerEvent(event))
}

func (a *WorkerHook) OnSuccess(ctx context.Context, event worker.Event) {
	if a == nil || a.hook == nil {
		return
	}
	a.hook.OnSuccess(ctx, toWorkerEvent(event))
}

func (a *WorkerHook) OnFailure(ctx context.Context, event worker.Event) {
	if a == nil || a.hook == nil {
		return
	}
	a.hook.OnFailure(ctx, toWorkerEvent(event))
}

func (a *WorkerHook) OnRetry(ctx context.Context, event worker.Event) {
	if a == nil || a.hook == nil {
		return
	}
	a.hook.OnRetry(ctx, toWorkerEvent(event))
}

func toWorkerEvent(event worker.Event) core.JobWorkerEvent {
	message := event.Message
	if message == nil && event.Delivery != nil {
		message = event.Delivery.Message()
	}
	return core.JobWorkerEvent{
		Message:   FromExecutionMessage(message),
		Attempt:   event.Attempt,
		Delay:     event.Delay,
		Err:       event.Err,
		StartedAt: event.StartedAt,
		Duration:  event.Duration,
	}
}

func copyParameters(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var (
	_ core.JobEnqueuer          = (*Enqueuer)(nil)
	_ core.JobDelivery          = (*Delivery)(nil)
	_ core.AttemptAwareDelivery = (*Delivery)(nil)
	_ core.JobDequeuer          = (*Dequeuer)(nil)
	_ worker.Hook               = (*WorkerHook)(nil)
)
