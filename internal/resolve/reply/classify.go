package reply

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Raw is a provider reply before classification.
type Raw struct {
	StatusCode int
	RetryAfter string
	Body       []byte
	Err        error // transport-level failure; other fields are unset
}

// Extractor decodes the expected payload from a 200 response body.
type Extractor[T any] func(body []byte) (T, error)

var throttlePatterns = []string{
	"rate limit",
	"too many requests",
	"slow down",
}

var governedPatterns = []string{
	"daily request count exceeded",
	"daily limit",
	"quota exceeded",
	"monthly quota",
}

// errorEnvelope is the provider's error body, e.g. {"error_code":50,"error":"Invalid key"}.
type errorEnvelope struct {
	Code    int    `json:"error_code"`
	Message string `json:"error"`
}

// Classify maps a raw reply onto exactly one Kind. It has no side effects.
func Classify[T any](raw Raw, extract Extractor[T]) Reply[T] {
	if raw.Err != nil {
		return TransportFailure[T](raw.Err.Error())
	}

	switch raw.StatusCode {
	case http.StatusTooManyRequests:
		return Throttled[T](fmt.Sprintf("rate limited (429), retry after: %s", raw.RetryAfter))
	case http.StatusForbidden:
		return Governed[T]("ip", "blocked (403)")
	}

	body := string(raw.Body)
	if raw.StatusCode != http.StatusOK {
		if scope, ok := matchGoverned(body); ok {
			return Governed[T](scope, truncate(body))
		}
		if matchThrottle(body) {
			return Throttled[T](fmt.Sprintf("throttle detected in response: %s", truncate(body)))
		}
		return TransportFailure[T](fmt.Sprintf("http %d: %s", raw.StatusCode, truncate(body)))
	}

	var env errorEnvelope
	if err := json.Unmarshal(raw.Body, &env); err == nil && env.Message != "" {
		if scope, ok := matchGoverned(env.Message); ok {
			return Governed[T](scope, env.Message)
		}
		if matchThrottle(env.Message) {
			return Throttled[T](env.Message)
		}
		return ShapeMismatch[T](fmt.Sprintf("provider error %d: %s", env.Code, env.Message))
	}

	payload, err := extract(raw.Body)
	if err != nil {
		return ShapeMismatch[T](err.Error())
	}
	return Success(payload)
}

func matchThrottle(msg string) bool {
	lower := strings.ToLower(msg)
	for _, p := range throttlePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func matchGoverned(msg string) (string, bool) {
	lower := strings.ToLower(msg)
	for _, p := range governedPatterns {
		if strings.Contains(lower, p) {
			return "quota", true
		}
	}
	return "", false
}

func truncate(s string) string {
	const max = 200
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
