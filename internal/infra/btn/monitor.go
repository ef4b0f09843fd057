package btn

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Status represents the health state of the provider as seen by this client.
type Status int

const (
	StatusHealthy   Status = iota // Provider is working normally
	StatusDegraded                // Provider is slow but working
	StatusThrottled               // Provider is rate limiting
	StatusBlocked                 // Provider has blocked this client
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusThrottled:
		return "throttled"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// MonitorStats holds monitoring statistics for the provider.
type MonitorStats struct {
	Status           string        `json:"status"`
	AverageLatency   time.Duration `json:"average_latency"`
	ThrottleCount429 int           `json:"throttle_count_429"`
	BlockCount403    int           `json:"block_count_403"`
	RequestsLastHour int           `json:"requests_last_hour"`
	RetryAfter       time.Duration `json:"retry_after"`
}

// Monitor tracks latency and rate limiting signals of provider replies.
type Monitor struct {
	mu sync.RWMutex

	latencies  []time.Duration
	maxSamples int

	status429Count   int
	status403Count   int
	lastThrottleTime time.Time
	backoff          time.Duration

	requests []time.Time

	slowThreshold time.Duration
	now           func() time.Time
}

// NewMonitor creates a monitor with default thresholds.
func NewMonitor() *Monitor {
	return &Monitor{
		latencies:     make([]time.Duration, 0, 50),
		maxSamples:    50,
		slowThreshold: 3 * time.Second,
		now:           time.Now,
	}
}

// RecordRequest records a completed request and its latency.
func (m *Monitor) RecordRequest(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latencies = append(m.latencies, latency)
	if len(m.latencies) > m.maxSamples {
		m.latencies = m.latencies[1:]
	}

	now := m.now()
	m.requests = append(m.requests, now)
	cutoff := now.Add(-time.Hour)
	i := 0
	for i < len(m.requests) && !m.requests[i].After(cutoff) {
		i++
	}
	m.requests = m.requests[i:]
}

// RecordThrottle records a 429 or 403 reply.
func (m *Monitor) RecordThrottle(statusCode int, retryAfter string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastThrottleTime = m.now()

	switch statusCode {
	case http.StatusTooManyRequests:
		m.status429Count++
		m.backoff = time.Minute
		if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
			m.backoff = time.Duration(secs) * time.Second
		}
	case http.StatusForbidden:
		m.status403Count++
		m.backoff = 10 * time.Minute
	}
}

// Status returns the current status of the provider.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

func (m *Monitor) statusLocked() Status {
	inBackoff := m.now().Sub(m.lastThrottleTime) < m.backoff

	if m.status403Count > 0 && inBackoff {
		return StatusBlocked
	}
	if m.status429Count > 0 && inBackoff {
		return StatusThrottled
	}
	if len(m.latencies) >= 10 && m.averageLocked() > m.slowThreshold {
		return StatusDegraded
	}
	return StatusHealthy
}

func (m *Monitor) averageLocked() time.Duration {
	if len(m.latencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range m.latencies {
		total += l
	}
	return total / time.Duration(len(m.latencies))
}

// Stats returns a snapshot of the monitor.
func (m *Monitor) Stats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var retryAfter time.Duration
	if remaining := m.backoff - m.now().Sub(m.lastThrottleTime); remaining > 0 {
		retryAfter = remaining
	}

	return MonitorStats{
		Status:           m.statusLocked().String(),
		AverageLatency:   m.averageLocked(),
		ThrottleCount429: m.status429Count,
		BlockCount403:    m.status403Count,
		RequestsLastHour: len(m.requests),
		RetryAfter:       retryAfter,
	}
}
