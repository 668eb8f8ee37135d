package draft

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mangapages/internal/logging"
	"mangapages/pkg/models"
)

const DefaultDebounce = 450 * time.Millisecond

// Scheduler coalesces document changes into one trailing draft write.
// Every Schedule call restarts the timer; only the latest snapshot is saved.
type Scheduler struct {
	store Store
	delay time.Duration
	log   *logrus.Entry

	mu         sync.Mutex
	gen        uint64
	timer      *time.Timer
	pageID     string
	pending    *models.Document
	pendingGen uint64
	stopped    bool
	writes     int

	// writeMu serializes store calls; written holds the newest generation
	// saved or cleared per page so older snapshots are never written over it.
	writeMu sync.Mutex
	written map[string]uint64
}

func NewScheduler(store Store, delay time.Duration, logger logrus.FieldLogger) *Scheduler {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Scheduler{
		store:   store,
		delay:   delay,
		log:     logging.Component(logger, "draft"),
		written: map[string]uint64{},
	}
}

// Schedule records doc as the latest state of pageID and (re)arms the timer.
// A pending snapshot for a different page is written first.
func (s *Scheduler) Schedule(pageID string, doc *models.Document) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	var prevID string
	var prev *models.Document
	var prevGen uint64
	if s.pending != nil && s.pageID != pageID {
		prevID, prev, prevGen = s.pageID, s.pending, s.pendingGen
	}
	s.gen++
	gen := s.gen
	s.pageID = pageID
	s.pending = doc
	s.pendingGen = gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.fire(gen) })
	s.mu.Unlock()

	if prev != nil {
		s.write(prevID, prev, prevGen)
	}
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	pageID, doc := s.pageID, s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	s.write(pageID, doc, gen)
}

// Flush writes the pending snapshot immediately, if any.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	pageID, doc, gen := s.pageID, s.pending, s.pendingGen
	s.gen++
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if doc != nil {
		s.write(pageID, doc, gen)
	}
}

// Cancel drops the pending snapshot without writing it.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	s.gen++
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}

// Clear drops any pending snapshot and removes the stored draft of pageID.
// It waits for a write already in progress, and snapshots taken before the
// call are not written afterwards.
func (s *Scheduler) Clear(ctx context.Context, pageID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.gen++
	s.written[pageID] = s.gen
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	return s.store.Clear(ctx, pageID)
}

// Stop flushes and refuses further work.
func (s *Scheduler) Stop() {
	s.Flush()
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// Pending reports whether a write is waiting on the timer.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Writes is the number of store writes attempted so far.
func (s *Scheduler) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *Scheduler) write(pageID string, doc *models.Document, gen uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if gen <= s.written[pageID] {
		s.mu.Unlock()
		s.log.WithField("page", pageID).Debug("stale draft snapshot skipped")
		return
	}
	s.written[pageID] = gen
	s.writes++
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Save(ctx, pageID, doc); err != nil {
		s.log.WithError(err).WithField("page", pageID).Warn("draft write failed")
		return
	}
	s.log.WithField("page", pageID).Debug("draft saved")
}
