// Package ratelimit guards the login endpoint against brute force attempts.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/Tonooka01/sistema-analise/pkg/metrics"
)

type Result struct {
	Allowed bool
	RetryIn time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Memory is a per-process sliding window limiter.
type Memory struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		limit:  limit,
		window: window,
		now:    time.Now,
		hits:   map[string][]time.Time{},
	}
}

func (m *Memory) Allow(_ context.Context, key string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-m.window)
	if now.Sub(m.lastSweep) >= m.window {
		m.sweep(cutoff)
		m.lastSweep = now
	}

	kept := m.hits[key][:0]
	for _, t := range m.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= m.limit {
		m.hits[key] = kept
		metrics.RateLimitRejections.WithLabelValues("memory").Inc()
		return Result{Allowed: false, RetryIn: kept[0].Add(m.window).Sub(now)}, nil
	}

	m.hits[key] = append(kept, now)
	return Result{Allowed: true}, nil
}

// sweep drops keys whose newest attempt is outside the window.
func (m *Memory) sweep(cutoff time.Time) {
	for key, hits := range m.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(m.hits, key)
		}
	}
}
