package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorBadInput         = "WEBHOOK_BAD_INPUT"
	ErrorValidationFailed = "WEBHOOK_VALIDATION_FAILED"
	ErrorDeliveryFailed   = "WEBHOOK_DELIVERY_FAILED"
	ErrorRateLimited      = "WEBHOOK_RATE_LIMITED"
	ErrorNotFound         = "WEBHOOK_NOT_FOUND"
	ErrorUnauthorized     = "WEBHOOK_UNAUTHORIZED"
	ErrorInternal         = "WEBHOOK_INTERNAL_ERROR"
)

// NewValidationError reports a payload that breaks destination rules.
func NewValidationError(message string, fields ...goerrors.FieldError) *goerrors.Error {
	if strings.TrimSpace(message) == "" {
		message = "webhook payload validation failed"
	}
	return goerrors.NewValidation(message, fields...).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorValidationFailed).
		WithSeverity(goerrors.SeverityError)
}

// NewDeliveryError reports a transport level failure. A nil source yields a
// fresh envelope.
func NewDeliveryError(source error, message string, statusCode int, metadata map[string]any) *goerrors.Error {
	category := goerrors.CategoryExternal
	textCode := ErrorDeliveryFailed
	code := http.StatusBadGateway
	switch {
	case statusCode == http.StatusTooManyRequests:
		category = goerrors.CategoryRateLimit
		textCode = ErrorRateLimited
		code = http.StatusTooManyRequests
	case statusCode == http.StatusNotFound:
		category = goerrors.CategoryNotFound
		textCode = ErrorNotFound
		code = http.StatusNotFound
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		category = goerrors.CategoryAuth
		textCode = ErrorUnauthorized
		code = statusCode
	}

	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, category)
	} else {
		err = goerrors.Wrap(source, category, message)
	}
	err = err.WithCode(code).WithTextCode(textCode)
	if len(metadata) > 0 || statusCode > 0 {
		fields := copyAnyMap(metadata)
		if statusCode > 0 {
			fields["status_code"] = statusCode
		}
		err.WithMetadata(fields)
	}
	return err
}

func dependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorInternal)
}

func badInputError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(ErrorBadInput)
}

// IsValidationFailed reports whether err carries a validation failure.
func IsValidationFailed(err error) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == ErrorValidationFailed || rich.Category == goerrors.CategoryValidation
}

func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == goerrors.CategoryRateLimit
}

// MapError normalizes any error into the webhook error envelope.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return ensureErrorEnvelope(rich)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "throttl"), strings.Contains(msg, "rate limit"):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryRateLimit).WithTextCode(ErrorRateLimited))
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryBadInput).WithTextCode(ErrorBadInput))
	}

	return ensureErrorEnvelope(goerrors.MapToError(err, goerrors.DefaultErrorMappers()))
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = httpStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryValidation:
		return ErrorValidationFailed
	case goerrors.CategoryBadInput:
		return ErrorBadInput
	case goerrors.CategoryNotFound:
		return ErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorUnauthorized
	case goerrors.CategoryRateLimit:
		return ErrorRateLimited
	case goerrors.CategoryExternal:
		return ErrorDeliveryFailed
	default:
		return ErrorInternal
	}
}

func httpStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
