package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// Metrics keeps a rolling average of pipeline run durations, used by watch
// mode to report rebuild cost.
type Metrics struct {
	mu          sync.Mutex
	avgCounter  uint8
	samples     [AVG_COUNT]float64
	filled      uint8
	runs        int64
	failures    int64
	lastElapsed time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Update(elapsed time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.samples[m.avgCounter] = float64(elapsed) / float64(time.Millisecond)
	m.avgCounter++
	m.avgCounter %= AVG_COUNT
	if m.filled < AVG_COUNT {
		m.filled++
	}
	m.runs++
	if failed {
		m.failures++
	}
	m.lastElapsed = elapsed
}

// AverageMS is the mean duration of the last AVG_COUNT runs in milliseconds.
func (m *Metrics) AverageMS() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.filled == 0 {
		return 0
	}
	var total float64
	for i := uint8(0); i < m.filled; i++ {
		total += m.samples[i]
	}
	return total / float64(m.filled)
}

func (m *Metrics) Runs() (total int64, failed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs, m.failures
}

func (m *Metrics) Last() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastElapsed
}
