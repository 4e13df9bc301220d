// Package perf measures per-change latency. Diagnostics only: nothing here
// sits on the correctness path and its absence never blocks an apply.
package perf

import (
	"sync"
	"time"
)

// Monitor aggregates apply timings against a latency budget.
type Monitor struct {
	mu sync.Mutex

	budget time.Duration

	count      int
	succeeded  int
	failed     int
	total      time.Duration
	max        time.Duration
	violations int
	lastName   string
	lastTook   time.Duration
}

// NewMonitor creates a monitor flagging updates slower than budget.
func NewMonitor(budget time.Duration) *Monitor {
	return &Monitor{budget: budget}
}

// Budget returns the configured latency budget.
func (m *Monitor) Budget() time.Duration {
	return m.budget
}

// RecordUpdate logs one apply. Over-budget updates count as violations but
// are not failures.
func (m *Monitor) RecordUpdate(name string, took time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.count++
	if success {
		m.succeeded++
	} else {
		m.failed++
	}
	m.total += took
	if took > m.max {
		m.max = took
	}
	if m.budget > 0 && took > m.budget {
		m.violations++
	}
	m.lastName = name
	m.lastTook = took
}

// Stats is the aggregate view served to diagnostics consumers.
type Stats struct {
	Count            int     `json:"count"`
	Succeeded        int     `json:"succeeded"`
	Failed           int     `json:"failed"`
	AvgMs            float64 `json:"avg_ms"`
	MaxMs            float64 `json:"max_ms"`
	BudgetMs         float64 `json:"budget_ms"`
	BudgetViolations int     `json:"budget_violations"`
	LastOption       string  `json:"last_option,omitempty"`
	LastMs           float64 `json:"last_ms"`
}

func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{
		Count:            m.count,
		Succeeded:        m.succeeded,
		Failed:           m.failed,
		MaxMs:            ms(m.max),
		BudgetMs:         ms(m.budget),
		BudgetViolations: m.violations,
		LastOption:       m.lastName,
		LastMs:           ms(m.lastTook),
	}
	if m.count > 0 {
		st.AvgMs = ms(m.total) / float64(m.count)
	}
	return st
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
