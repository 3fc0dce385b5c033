package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks application activity.
type Metrics struct {
	// Actions
	actionCount   atomic.Uint64
	actionFailed  atomic.Uint64
	actionTotalNs atomic.Int64
	actionMaxNs   atomic.Int64

	// Scripts
	scriptCount   atomic.Uint64
	scriptFailed  atomic.Uint64
	scriptTotalNs atomic.Int64

	// Config reloads
	reloadCount  atomic.Uint64
	reloadFailed atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordAction records one handled action.
func (m *Metrics) RecordAction(duration time.Duration, failed bool) {
	ns := duration.Nanoseconds()
	m.actionCount.Add(1)
	m.actionTotalNs.Add(ns)
	if failed {
		m.actionFailed.Add(1)
	}

	// Update max (atomic compare-and-swap loop)
	for {
		old := m.actionMaxNs.Load()
		if ns <= old {
			break
		}
		if m.actionMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordScript records one script run.
func (m *Metrics) RecordScript(duration time.Duration, failed bool) {
	m.scriptCount.Add(1)
	m.scriptTotalNs.Add(duration.Nanoseconds())
	if failed {
		m.scriptFailed.Add(1)
	}
}

// RecordReload records one configuration reload.
func (m *Metrics) RecordReload(failed bool) {
	m.reloadCount.Add(1)
	if failed {
		m.reloadFailed.Add(1)
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	actionCount := m.actionCount.Load()
	scriptCount := m.scriptCount.Load()

	var avgActionNs int64
	if actionCount > 0 {
		avgActionNs = m.actionTotalNs.Load() / int64(actionCount)
	}

	var avgScriptNs int64
	if scriptCount > 0 {
		avgScriptNs = m.scriptTotalNs.Load() / int64(scriptCount)
	}

	return MetricsSnapshot{
		Uptime:       time.Since(m.startTime),
		ActionCount:  actionCount,
		ActionFailed: m.actionFailed.Load(),
		AvgActionNs:  avgActionNs,
		MaxActionNs:  m.actionMaxNs.Load(),
		ScriptCount:  scriptCount,
		ScriptFailed: m.scriptFailed.Load(),
		AvgScriptNs:  avgScriptNs,
		ReloadCount:  m.reloadCount.Load(),
		ReloadFailed: m.reloadFailed.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime       time.Duration
	ActionCount  uint64
	ActionFailed uint64
	AvgActionNs  int64
	MaxActionNs  int64
	ScriptCount  uint64
	ScriptFailed uint64
	AvgScriptNs  int64
	ReloadCount  uint64
	ReloadFailed uint64
}

// ActionFailureRate returns the percentage of failed actions.
func (s MetricsSnapshot) ActionFailureRate() float64 {
	if s.ActionCount == 0 {
		return 0
	}
	return float64(s.ActionFailed) / float64(s.ActionCount) * 100
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
