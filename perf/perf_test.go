package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitorStats(t *testing.T) {
	m := NewMonitor(50 * time.Millisecond)

	m.RecordUpdate("accent_color", 10*time.Millisecond, true)
	m.RecordUpdate("menu_width", 30*time.Millisecond, true)
	m.RecordUpdate("bad_option", 20*time.Millisecond, false)

	st := m.Stats()
	assert.Equal(t, 3, st.Count)
	assert.Equal(t, 2, st.Succeeded)
	assert.Equal(t, 1, st.Failed)
	assert.InDelta(t, 20.0, st.AvgMs, 0.001)
	assert.InDelta(t, 30.0, st.MaxMs, 0.001)
	assert.Equal(t, 0, st.BudgetViolations)
	assert.Equal(t, "bad_option", st.LastOption)
}

func TestMonitorBudgetViolations(t *testing.T) {
	m := NewMonitor(50 * time.Millisecond)

	m.RecordUpdate("slow_option", 80*time.Millisecond, true)
	st := m.Stats()

	// Over budget is flagged, not failed.
	assert.Equal(t, 1, st.BudgetViolations)
	assert.Equal(t, 1, st.Succeeded)
	assert.InDelta(t, 50.0, st.BudgetMs, 0.001)
}

func TestMonitorEmpty(t *testing.T) {
	m := NewMonitor(50 * time.Millisecond)
	st := m.Stats()
	assert.Zero(t, st.Count)
	assert.Zero(t, st.AvgMs)
}
