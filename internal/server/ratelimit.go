package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter bounds requests per minute and uploaded bytes per day for
// each client.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	maxDataPerDay     int64

	clients map[string]*clientUsage
}

// clientUsage tracks usage for one client.
type clientUsage struct {
	requestsLastMinute int
	dataToday          int64
	lastRequestTime    time.Time
	dayStart           time.Time
}

// NewRateLimiter creates a rate limiter. A zero limit disables that check.
func NewRateLimiter(requestsPerMinute int, maxDataPerDay int64) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		maxDataPerDay:     maxDataPerDay,
		clients:           make(map[string]*clientUsage),
	}
}

// Check reports whether a request of dataSize bytes from the client is
// allowed, and records it if so.
func (rl *RateLimiter) Check(clientID string, dataSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	usage, ok := rl.clients[clientID]
	if !ok {
		usage = &clientUsage{lastRequestTime: now, dayStart: now}
		rl.clients[clientID] = usage
	}

	if now.Sub(usage.lastRequestTime) >= time.Minute {
		usage.requestsLastMinute = 0
	}
	if now.Sub(usage.dayStart) >= 24*time.Hour {
		usage.dataToday = 0
		usage.dayStart = now
	}

	if rl.requestsPerMinute > 0 && usage.requestsLastMinute >= rl.requestsPerMinute {
		return &RateLimitError{
			Type:       "requests_per_minute",
			Limit:      int64(rl.requestsPerMinute),
			RetryAfter: time.Minute - now.Sub(usage.lastRequestTime),
		}
	}
	if rl.maxDataPerDay > 0 && usage.dataToday+dataSize > rl.maxDataPerDay {
		return &RateLimitError{
			Type:       "data_per_day",
			Limit:      rl.maxDataPerDay,
			RetryAfter: 24*time.Hour - now.Sub(usage.dayStart),
		}
	}

	usage.requestsLastMinute++
	usage.dataToday += dataSize
	usage.lastRequestTime = now
	return nil
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string
	Limit      int64
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)",
		e.Type, e.Limit, e.RetryAfter)
}
