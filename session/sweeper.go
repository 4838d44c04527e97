package session

import (
	"context"
	"time"
)

// StartSweeper runs Sweep every SweepInterval until ctx is cancelled or
// Close is called. Starting an already running sweeper is a no-op.
// onSweep, when non-nil, receives the number of sessions each pass evicted.
func (s *Store) StartSweeper(ctx context.Context, onSweep func(evicted int)) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	if s.stop != nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.sweepLoop(ctx, s.stop, s.done, onSweep)
}

func (s *Store) sweepLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}, onSweep func(int)) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := s.Sweep()
			if onSweep != nil {
				onSweep(n)
			}
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the background sweeper and waits for it to exit. A pass that
// is already running finishes first; Close never waits on request traffic.
// Close is safe to call more than once and on a store whose sweeper never ran.
func (s *Store) Close() {
	s.sweepMu.Lock()
	stop, done := s.stop, s.done
	s.sweepMu.Unlock()

	if stop == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(stop)
	})
	<-done
}
