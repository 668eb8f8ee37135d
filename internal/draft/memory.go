package draft

import (
	"context"
	"encoding/json"
	"sync"

	"mangapages/pkg/models"
)

// MemoryStore keeps serialized drafts in a map. Values go through JSON so it
// behaves like the persistent store, including for corrupt entries.
type MemoryStore struct {
	mu        sync.RWMutex
	Namespace string
	values    map[string][]byte
}

func NewMemoryStore(namespace string) *MemoryStore {
	return &MemoryStore{Namespace: namespace, values: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, pageID string) (*models.Document, bool) {
	m.mu.RLock()
	b, ok := m.values[Key(m.Namespace, pageID)]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	var doc models.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

func (m *MemoryStore) Save(_ context.Context, pageID string, doc *models.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.values[Key(m.Namespace, pageID)] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, pageID string) error {
	m.mu.Lock()
	delete(m.values, Key(m.Namespace, pageID))
	m.mu.Unlock()
	return nil
}

// PutRaw stores raw bytes under a page key; used to plant corrupt drafts.
func (m *MemoryStore) PutRaw(pageID string, raw []byte) {
	m.mu.Lock()
	m.values[Key(m.Namespace, pageID)] = raw
	m.mu.Unlock()
}
