package store

import (
	"sync"

	"docchat/pkg/domain"
)

// MemoryStore keeps everything in-process. Used by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	corpora map[string]domain.Corpus
	events  map[string][]domain.UploadEvent
	order   []string // user IDs in registration order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]domain.User),
		corpora: make(map[string]domain.Corpus),
		events:  make(map[string][]domain.UploadEvent),
	}
}

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.ID]; !exists {
		m.order = append(m.order, u.ID)
	}
	m.users[u.ID] = u
	return nil
}

func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByIdentifier(identifier string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.UserName == identifier || u.Email == identifier {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) ListUserIDs() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.order))
	for _, id := range m.order {
		if _, ok := m.users[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MemoryStore) DeleteUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *MemoryStore) GetCorpus(ownerID string) (domain.Corpus, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.corpora[ownerID]
	return c, ok, nil
}

func (m *MemoryStore) PutCorpus(c domain.Corpus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.corpora[c.OwnerID] = c
	return nil
}

func (m *MemoryStore) DeleteCorpus(ownerID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.corpora[ownerID]
	delete(m.corpora, ownerID)
	return ok, nil
}

func (m *MemoryStore) AppendUploadEvent(e domain.UploadEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.OwnerID] = append(m.events[e.OwnerID], e)
	return nil
}

func (m *MemoryStore) ListUploadEvents(ownerID string, limit int) ([]domain.UploadEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.events[ownerID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}
	// newest first, matching the SQL-backed store
	out := make([]domain.UploadEvent, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
