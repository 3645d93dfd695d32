package chatmux

import (
	"fmt"
	"strings"
)

// SDKError is the base error type for transport failures surfaced by the
// bundled gollm transport. The adapter itself never returns these to the
// caller; they only appear embedded in an error result's content.
type SDKError struct {
	Message string
	Cause   error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SDKError) Unwrap() error {
	return e.Cause
}

// ProviderError is an error attributed to an upstream LLM provider.
type ProviderError struct {
	SDKError
	Provider   string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Provider, e.Message)
}

// Concrete provider error types.

type AuthenticationError struct{ ProviderError }
type AccessDeniedError struct{ ProviderError }
type NotFoundError struct{ ProviderError }
type RateLimitError struct{ ProviderError }
type ContextLengthError struct{ ProviderError }
type ServerError struct{ ProviderError }
type ContentFilterError struct{ ProviderError }

// RequestTimeoutError is a transport-level timeout, not attributable to a
// specific provider response.
type RequestTimeoutError struct{ SDKError }

// classifyError maps a raw transport error onto the typed hierarchy based on
// its message, which is all the underlying library exposes.
func classifyError(provider string, err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	base := func(status int) ProviderError {
		return ProviderError{
			SDKError:   SDKError{Message: msg, Cause: err},
			Provider:   provider,
			StatusCode: status,
		}
	}

	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key"):
		return &AuthenticationError{base(401)}
	case strings.Contains(lower, "403") || strings.Contains(lower, "forbidden"):
		return &AccessDeniedError{base(403)}
	case strings.Contains(lower, "404") || strings.Contains(lower, "not found"):
		return &NotFoundError{base(404)}
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		return &RateLimitError{base(429)}
	case strings.Contains(lower, "context length") || strings.Contains(lower, "too many tokens"):
		return &ContextLengthError{base(413)}
	case strings.Contains(lower, "500") || strings.Contains(lower, "internal server"):
		return &ServerError{base(500)}
	case strings.Contains(lower, "timeout"):
		return &RequestTimeoutError{SDKError{Message: msg, Cause: err}}
	case strings.Contains(lower, "content filter") || strings.Contains(lower, "safety"):
		return &ContentFilterError{base(0)}
	default:
		pe := base(0)
		return &pe
	}
}
