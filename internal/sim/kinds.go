package sim

import "net/http"

// Kind classifies a simulated failure. The empty Kind means success.
type Kind string

const (
	KindNone               Kind = ""
	KindRateLimit          Kind = "rate_limit"
	KindServiceUnavailable Kind = "service_unavailable"
	KindBreakerOpen        Kind = "circuit_breaker_open"
	KindServerError        Kind = "server_error"
	KindClientError        Kind = "client_error"
	KindTimeout            Kind = "timeout"
	KindNetworkFailure     Kind = "network_failure"
	KindValidation         Kind = "validation_error"
	KindUnexpected         Kind = "unexpected_error"
)

// StatusCode maps a failure kind to its HTTP status.
func (k Kind) StatusCode() int {
	switch k {
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindServiceUnavailable, KindBreakerOpen:
		return http.StatusServiceUnavailable
	case KindServerError, KindUnexpected:
		return http.StatusInternalServerError
	case KindClientError, KindValidation:
		return http.StatusBadRequest
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindNetworkFailure:
		return http.StatusGatewayTimeout
	default:
		return http.StatusOK
	}
}

// Message returns the human-readable message for an injected failure.
func (k Kind) Message() string {
	switch k {
	case KindRateLimit:
		return "Rate limit exceeded"
	case KindServiceUnavailable:
		return "Service temporarily unavailable"
	case KindBreakerOpen:
		return "Circuit breaker is open"
	case KindServerError:
		return "Internal server error (simulated)"
	case KindClientError:
		return "Bad request (simulated)"
	case KindTimeout:
		return "Request timeout (simulated)"
	case KindNetworkFailure:
		return "Network failure (simulated)"
	case KindValidation:
		return "Validation failed"
	case KindUnexpected:
		return "Unexpected error"
	default:
		return "OK"
	}
}
