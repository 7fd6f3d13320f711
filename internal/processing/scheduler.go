package processing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler status strings surfaced to the presenter layer.
const (
	StatusIdle         = "idle"
	StatusRunning      = "running"
	StatusStopped      = "stopped"
	StatusNoRosterData = "stopped: no roster data"
)

// Scheduler drives periodic collection as a cooperative task. Cycles run
// sequentially on one goroutine and the processor's in-flight guard covers
// manual triggers, so a cycle can never overlap itself. Stop takes effect
// before the next tick; it never interrupts a cycle in progress.
type Scheduler struct {
	processor *Processor

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	status  string
	running bool
}

func NewScheduler(processor *Processor) *Scheduler {
	return &Scheduler{processor: processor, status: StatusIdle}
}

// Start begins periodic collection. Starting an already-running scheduler
// is a no-op.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true
	s.status = StatusRunning

	log.Info().Dur("interval", interval).Msg("Starting periodic collection")
	go s.loop(ctx, interval)
}

// Stop halts periodic collection before the next tick and waits for the
// loop goroutine to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	if s.status == StatusRunning {
		s.status = StatusStopped
	}
	s.mu.Unlock()
	log.Info().Msg("Periodic collection stopped")
}

// Running reports whether the periodic loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns the last scheduler status string.
func (s *Scheduler) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration) {
	defer func() {
		s.mu.Lock()
		s.running = false
		close(s.done)
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Collection without any roster data produces nothing
			// attributable; halt and require a roster collection first.
			if !s.processor.HasRosters() {
				log.Error().Msg("No roster data available; halting periodic collection")
				s.mu.Lock()
				s.status = StatusNoRosterData
				s.cancel()
				s.mu.Unlock()
				return
			}

			result, err := s.processor.RunCollectionCycle(ctx)
			if err != nil {
				if errors.Is(err, ErrCycleInFlight) {
					log.Debug().Msg("Skipping tick; cycle already in flight")
					continue
				}
				log.Error().Err(err).Msg("Collection cycle failed")
				continue
			}

			if len(result.MissingGuilds) > 0 || len(result.StaleGuilds) > 0 {
				if _, err := s.processor.CollectMissingGuilds(ctx); err != nil {
					log.Error().Err(err).Msg("Roster collection sweep failed")
				}
			}
		}
	}
}
