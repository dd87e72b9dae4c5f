package cache

import (
	"time"

	"github.com/google/uuid"
)

// Metrics tracks one generation pass. SessionID ties log lines and JSON
// output from the same pass together.
type Metrics struct {
	SessionID    string
	TotalGroups  int
	CacheHits    int
	CacheMisses  int
	FilesWritten int

	StartTime     time.Time
	EndTime       time.Time
	TotalDuration time.Duration
	EmitDuration  time.Duration
}

// NewMetrics starts a metrics record for a pass.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionID: uuid.NewString(),
		StartTime: time.Now(),
	}
}

// Finish stamps the end of the pass.
func (m *Metrics) Finish() {
	m.EndTime = time.Now()
	m.TotalDuration = m.EndTime.Sub(m.StartTime)
}

// HitRate returns the cache hit rate as a percentage.
func (m *Metrics) HitRate() float64 {
	if m.TotalGroups == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(m.TotalGroups) * 100.0
}
