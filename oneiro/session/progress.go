package session

import (
	"math/rand"
	"time"
)

// progress is the simulated analysis indicator. It advances by a bounded
// random amount on each tick, clamped below completion until the analysis
// call actually resolves, so the UI never implies false completion. Guarded
// by the owning Session's mutex.
type progress struct {
	value   int
	visible bool
	gen     int // bumped by begin(); stale clear timers check it
}

func (p *progress) begin() {
	p.gen++
	p.value = 0
	p.visible = true
}

// advance moves the indicator forward by 5-14 points, never past ceiling
// and never backwards.
func (p *progress) advance(ceiling int) {
	next := p.value + 5 + rand.Intn(10)
	if next > ceiling {
		next = ceiling
	}
	if next > p.value {
		p.value = next
	}
}

func (p *progress) finish() {
	p.value = 100
}

func (p *progress) clear() {
	p.value = 0
	p.visible = false
}

// startProgressTicks advances the indicator on a fixed cadence while the
// session is analyzing. The ticker only ever mutates the progress value,
// never the interpretation or the transcript.
func (s *Session) startProgressTicks(epoch int) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.cfg.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.epoch == epoch && s.state == StateAnalyzing {
					s.progress.advance(s.cfg.ProgressCeiling)
				}
				s.mu.Unlock()
			}
		}
	}()
	return func() { close(done) }
}

// scheduleProgressClear hides the indicator a short moment after it was
// forced to 100%, unless the session was closed or a newer analysis has
// restarted the indicator meanwhile. Must be called with s.mu held.
func (s *Session) scheduleProgressClear(epoch int) {
	gen := s.progress.gen
	time.AfterFunc(s.cfg.ProgressClearDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch == epoch && s.progress.gen == gen {
			s.progress.clear()
		}
	})
}

// Progress reports the indicator value and whether it should be shown.
func (s *Session) Progress() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.value, s.progress.visible
}
