package verification

import (
	"time"

	"github.com/veristry/veristry/lib/metrics"
)

// Sweeper periodically moves every in-review request past its voting
// deadline through the auto-abstain and recompute path.
type Sweeper struct {
	sm       *StateMachine
	interval time.Duration

	stop chan chan struct{}
}

func NewSweeper(sm *StateMachine, interval time.Duration) *Sweeper {
	return &Sweeper{
		sm:       sm,
		interval: interval,
		stop:     make(chan chan struct{}),
	}
}

// Run blocks until Stop is called. One sweep runs immediately, then
// one per interval; a slow sweep delays the next tick instead of
// overlapping it.
func (s *Sweeper) Run() error {
	log.Info("sweeper started", "interval", s.interval)

	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case q := <-s.stop:
			log.Info("sweeper stopped")
			close(q)
			return nil
		}
	}
}

func (s *Sweeper) sweep() {
	begin := time.Now()
	swept, err := s.sm.SweepExpired(begin)
	if err != nil {
		log.Error("sweep pass failed", "error", err)
		return
	}

	metrics.Sweep.ObserveRun(swept, time.Since(begin).Seconds())

	if swept > 0 {
		log.Info("sweep pass finished", "swept", swept)
	}
}

func (s *Sweeper) Stop() {
	q := make(chan struct{})
	s.stop <- q
	<-q
}
