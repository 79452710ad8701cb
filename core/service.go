package core

import (
	"context"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Service decorates a raw Deliverer with rate limiting, logging and metrics.
// It is itself a Deliverer and is what destination senders are built on.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	deliverer       Deliverer
	rateLimitPolicy RateLimitPolicy
	now             func() time.Time
}

// serviceError is implemented by errors that carry their own envelope, such
// as rate limit throttling errors.
type serviceError interface {
	ToServiceError() *goerrors.Error
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("webhooks", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("webhooks"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.now == nil {
		builder.now = func() time.Time { return time.Now().UTC() }
	}
	if builder.deliverer == nil {
		return nil, dependencyError("core: deliverer is required")
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, builder.errorMapper(err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, builder.errorMapper(err)
	}

	policy := builder.rateLimitPolicy
	if finalConfig.RateLimit.Disabled {
		policy = nil
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		deliverer:       builder.deliverer,
		rateLimitPolicy: policy,
		now:             builder.now,
	}, nil
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Logger() Logger {
	if s == nil || s.logger == nil {
		return glog.Nop()
	}
	return s.logger
}

func (s *Service) LoggerProvider() LoggerProvider {
	if s == nil {
		return nil
	}
	return s.loggerProvider
}

func (s *Service) Deliver(ctx context.Context, req DeliveryRequest) (res DeliveryResponse, err error) {
	if s == nil || s.deliverer == nil {
		return DeliveryResponse{}, dependencyError("core: service deliverer is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := s.clock()
	fields := map[string]any{
		"endpoint": RedactEndpoint(req.Endpoint),
		"method":   deliveryMethod(req.Method),
	}
	if key := req.RateLimitKey; !key.IsZero() {
		fields["destination"] = key.Destination
		fields["bucket_key"] = key.BucketKey
	}
	defer func() {
		if res.StatusCode > 0 {
			fields["status_code"] = res.StatusCode
		}
		s.observeOperation(ctx, startedAt, "deliver", err, fields)
	}()

	if strings.TrimSpace(req.Endpoint) == "" {
		return DeliveryResponse{}, badInputError("core: delivery endpoint is required")
	}
	if req.Timeout <= 0 && s.config.Transport.Timeout > 0 {
		req.Timeout = s.config.Transport.Timeout
	}

	limited := s.rateLimitPolicy != nil && !req.RateLimitKey.IsZero()
	if limited {
		if err := s.rateLimitPolicy.BeforeCall(ctx, req.RateLimitKey); err != nil {
			return DeliveryResponse{}, s.mapError(err)
		}
	}

	res, err = s.deliverer.Deliver(ctx, req)
	if limited && res.StatusCode > 0 {
		meta := ResponseMeta{
			StatusCode: res.StatusCode,
			Headers:    copyStringMap(res.Headers),
			Metadata:   copyAnyMap(res.Metadata),
		}
		if retryAfter, ok := res.Metadata["retry_after"].(time.Duration); ok && retryAfter > 0 {
			meta.RetryAfter = &retryAfter
		}
		if afterErr := s.rateLimitPolicy.AfterCall(ctx, req.RateLimitKey, meta); afterErr != nil {
			s.logWithLevel(ctx, "warn", "rate limit state update failed", map[string]any{
				"destination": req.RateLimitKey.Destination,
				"error":       afterErr.Error(),
			})
		}
	}
	if err != nil {
		return res, s.mapError(err)
	}
	return res, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if typed, ok := err.(serviceError); ok {
		return typed.ToServiceError()
	}
	if s.errorMapper != nil {
		if mapped := s.errorMapper(err); mapped != nil {
			return mapped
		}
	}
	return err
}

func (s *Service) clock() time.Time {
	if s == nil || s.now == nil {
		return time.Now().UTC()
	}
	return s.now()
}

func deliveryMethod(method string) string {
	method = strings.TrimSpace(strings.ToUpper(method))
	if method == "" {
		return http.MethodPost
	}
	return method
}

var _ Deliverer = (*Service)(nil)
