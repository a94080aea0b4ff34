package services

import "sync"

// progressTracker forwards batch progress to a caller callback. Values are
// clamped to [0,100] and never decrease.
type progressTracker struct {
	mu       sync.Mutex
	onUpdate func(float64)
	last     float64
	started  bool
}

func newProgressTracker(onUpdate func(float64)) *progressTracker {
	return &progressTracker{onUpdate: onUpdate}
}

func (p *progressTracker) report(value float64) {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started && value <= p.last {
		return
	}
	p.started = true
	p.last = value
	if p.onUpdate != nil {
		p.onUpdate(value)
	}
}

// phaseProgress returns the progress value for done of total units inside a phase
// spanning [base, base+span]. An empty phase counts as finished.
func phaseProgress(base, span float64, done, total int) float64 {
	if total <= 0 {
		return base + span
	}
	return base + float64(done)/float64(total)*span
}
