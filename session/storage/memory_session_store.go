package storage

import (
	"github.com/freekieb7/nano/session"
	"github.com/puzpuzpuz/xsync/v3"
)

const MemorySessionStoreName = "memory"

// MemorySessionStore keeps sessions in process memory. Attributes are
// copied in and out so requests never share a map.
type MemorySessionStore struct {
	data *xsync.MapOf[string, map[string]any]
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		data: xsync.NewMapOf[string, map[string]any](),
	}
}

func (m *MemorySessionStore) Close() error {
	m.data.Clear()
	return nil
}

func (m *MemorySessionStore) Has(id string) bool {
	_, found := m.data.Load(id)
	return found
}

func (m *MemorySessionStore) Get(id string) (map[string]any, error) {
	data, found := m.data.Load(id)
	if !found {
		return nil, ErrSessionNotFound
	}

	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out, nil
}

func (m *MemorySessionStore) Save(s *session.Session) error {
	m.data.Store(s.ID(), s.All())
	return nil
}

func (m *MemorySessionStore) Delete(id string) error {
	m.data.Delete(id)
	return nil
}

func (m *MemorySessionStore) Len() int {
	return m.data.Size()
}
