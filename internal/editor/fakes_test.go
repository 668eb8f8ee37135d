package editor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"mangapages/internal/draft"
	"mangapages/internal/logging"
	"mangapages/internal/remote"
	"mangapages/pkg/models"
)

type fakeRemote struct {
	mu sync.Mutex

	doc        *models.Document
	analyzed   *models.Document
	fetchErr   error
	analyzeErr error
	saveErr    error

	// gate, when set, blocks Analyze until it is closed.
	gate chan struct{}

	calls map[string]int
	saved []*models.Document
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{calls: make(map[string]int)}
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) Analyze(ctx context.Context, pageID string) (*models.Document, error) {
	f.mu.Lock()
	f.calls["analyze"]++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return f.analyzed.Clone(), nil
}

func (f *fakeRemote) Fetch(_ context.Context, pageID string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["fetch"]++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.doc == nil {
		return nil, fmt.Errorf("fetch: %w", remote.ErrNotFound)
	}
	return f.doc.Clone(), nil
}

func (f *fakeRemote) Save(_ context.Context, pageID string, doc *models.Document) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["save"]++
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, doc.Clone())
	f.doc = doc.Clone()
	return doc.Clone(), nil
}

// countingStore wraps a MemoryStore and counts writes.
type countingStore struct {
	*draft.MemoryStore
	mu     sync.Mutex
	writes int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: draft.NewMemoryStore("test")}
}

func (s *countingStore) Save(ctx context.Context, pageID string, doc *models.Document) error {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return s.MemoryStore.Save(ctx, pageID, doc)
}

func (s *countingStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func element(id string, t models.ElementType, b models.BBox) models.Element {
	return models.Element{
		ID:       id,
		Type:     t,
		Text:     models.Text{Raw: "text " + id},
		Geometry: models.Geometry{BBoxPct: b},
	}
}

func pageDoc(id, src string, els ...models.Element) *models.Document {
	return &models.Document{
		ID:         id,
		PageNumber: 4,
		Keywords:   []string{},
		Image:      models.Image{Src: src, NaturalWidth: 1000, NaturalHeight: 1500},
		Elements:   els,
		Meta:       models.Meta{Version: "1", Engine: "fake", CreatedAt: "2025-06-01T00:00:00Z"},
	}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newController(t *testing.T, store draft.Store, rc remote.Client, debounce time.Duration) *Controller {
	t.Helper()
	n := 0
	c := NewController(Options{
		PageID:   "p1",
		Drafts:   store,
		Remote:   rc,
		Debounce: debounce,
		Logger:   logging.Discard(),
		NewID: func() string {
			n++
			return fmt.Sprintf("new-%d", n)
		},
	})
	t.Cleanup(c.Close)
	return c
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// gatedStore holds every Save until release is closed.
type gatedStore struct {
	*draft.MemoryStore
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		MemoryStore: draft.NewMemoryStore("test"),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (g *gatedStore) Save(ctx context.Context, pageID string, doc *models.Document) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.MemoryStore.Save(ctx, pageID, doc)
}
