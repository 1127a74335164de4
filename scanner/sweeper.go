// Package scanner runs the periodic sweeps that expire overdue records.
package scanner

import (
	"errors"
	"log"
	"sync"
	"time"

	"orgbot/lifecycle"
	"orgbot/model"
)

// Expirer drives a record through its terminal transition. Satisfied by
// *lifecycle.Manager.
type Expirer interface {
	ExpireRecord(rec model.SanctionRecord, trigger model.ExpiryTrigger) error
}

// ExpiredSource yields the records whose expiry has passed.
type ExpiredSource interface {
	FindExpired(now time.Time, kinds ...model.RecordKind) ([]model.SanctionRecord, error)
}

// Sweeper scans the store on a fixed interval and expires overdue records
// of its kinds. It is owned by the scheduler: started once at init and
// stopped during graceful shutdown.
type Sweeper struct {
	name    string
	store   ExpiredSource
	manager Expirer
	kinds   []model.RecordKind

	interval time.Duration
	now      func() time.Time
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewSweeper(name string, store ExpiredSource, manager Expirer, interval time.Duration, kinds ...model.RecordKind) *Sweeper {
	return &Sweeper{
		name:     name,
		store:    store,
		manager:  manager,
		kinds:    kinds,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins ticking in the background.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.done:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for an in-flight tick to finish.
func (s *Sweeper) Stop() {
	close(s.done)
	s.wg.Wait()
}

// Sweep runs one tick. "now" is snapshotted once so every record expiring
// within the tick is judged against the same instant. A failing record
// never blocks the rest: errors are logged and the loop moves on.
func (s *Sweeper) Sweep() {
	now := s.now()
	records, err := s.store.FindExpired(now, s.kinds...)
	if err != nil {
		log.Printf("[%s] error finding expired records: %v", s.name, err)
		return
	}
	if len(records) == 0 {
		return
	}
	log.Printf("[%s] found %d expired record(s), removing...", s.name, len(records))

	for _, rec := range records {
		err := s.manager.ExpireRecord(rec, model.TriggerTimeout)
		switch {
		case err == nil:
		case errors.Is(err, lifecycle.ErrNotFound):
			// Lost the race with an early return or manual removal.
		default:
			log.Printf("[%s] failed to expire record %d (subject %s): %v", s.name, rec.ID, rec.SubjectID, err)
		}
	}
}
