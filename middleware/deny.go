package middleware

import (
	"net/http"
	"time"
)

// resolveMaxWait fills in the spec default when MaxWait is unset (its Go
// zero value), while letting a caller who wants explicit non-blocking
// max_wait_ms: 0 semantics opt in by passing a negative Duration — which
// TryAcquireTimeout treats identically to zero (try once, don't queue).
func resolveMaxWait(maxWait, def time.Duration) time.Duration {
	switch {
	case maxWait < 0:
		return 0
	case maxWait == 0:
		return def
	default:
		return maxWait
	}
}

// DenyHandler responds to a request a filter has rejected.
type DenyHandler func(w http.ResponseWriter, r *http.Request)

func textDeny(status int, body string) DenyHandler {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func defaultAccessDenied() DenyHandler {
	return textDeny(http.StatusForbidden, "Access denied")
}

func defaultLimitExceeded() DenyHandler {
	return textDeny(http.StatusTooManyRequests, "Limit exceeded")
}

func defaultUnderMaintenance() DenyHandler {
	return textDeny(http.StatusServiceUnavailable, "Undergoing maintenance")
}
