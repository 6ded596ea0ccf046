package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/appointments", "POST", 200, 5*time.Millisecond)
	m.RecordRequest("/appointments", "POST", 200, 7*time.Millisecond)
	m.RecordError("/appointments", "POST", "VALIDATION_FAILED")
	m.RecordRuleRejection("MAX_EVENTS_PER_DAY")
	m.RecordRuleRejection("MAX_EVENTS_PER_DAY")
	m.RecordRuleRejection("NO_OVERLAP")
	m.RecordReminderDispatch(3)
	m.RecordReminderDispatch(0) // empty sweeps are not counted

	snap := m.CurrentSnapshot()
	assert.Equal(t, int64(2), snap.Requests["/appointments|POST|200"])
	assert.Equal(t, int64(1), snap.Errors["/appointments|POST|VALIDATION_FAILED"])
	assert.Equal(t, int64(2), snap.RuleRejections["MAX_EVENTS_PER_DAY"])
	assert.Equal(t, int64(1), snap.RuleRejections["NO_OVERLAP"])
	assert.Equal(t, int64(3), snap.RemindersSent)
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, 0)
	m.RecordError("/x", "GET", "INTERNAL_ERROR")
	m.RecordRuleRejection("NO_OVERLAP")
	m.RecordReminderDispatch(1)
	assert.Zero(t, m.CurrentSnapshot().RemindersSent)
}

func TestSnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordRuleRejection("MAX_DAILY_HOURS")

	snap := m.CurrentSnapshot()
	snap.RuleRejections["MAX_DAILY_HOURS"] = 99

	assert.Equal(t, int64(1), m.CurrentSnapshot().RuleRejections["MAX_DAILY_HOURS"])
}
