package state

import (
	"sort"

	"basketincentives/storage"
)

// stagedDB buffers writes over a base database. Reads see the buffered
// values first. Nothing reaches the base until flush.
type stagedDB struct {
	base    storage.Database
	pending map[string][]byte // nil value marks a delete
}

func newStagedDB(base storage.Database) *stagedDB {
	return &stagedDB{base: base, pending: make(map[string][]byte)}
}

func (s *stagedDB) Put(key []byte, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.pending[string(key)] = stored
	return nil
}

func (s *stagedDB) Get(key []byte) ([]byte, error) {
	if value, ok := s.pending[string(key)]; ok {
		if value == nil {
			return nil, storage.ErrNotFound
		}
		return append([]byte(nil), value...), nil
	}
	return s.base.Get(key)
}

func (s *stagedDB) Delete(key []byte) error {
	s.pending[string(key)] = nil
	return nil
}

// Write folds a nested batch into the buffer.
func (s *stagedDB) Write(batch *storage.Batch) error {
	return batch.Replay(s)
}

func (s *stagedDB) Close() {}

func (s *stagedDB) flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.pending))
	for key := range s.pending {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	batch := storage.NewBatch()
	for _, key := range keys {
		if value := s.pending[key]; value != nil {
			batch.Put([]byte(key), value)
		} else {
			batch.Delete([]byte(key))
		}
	}
	return s.base.Write(batch)
}

// Update runs fn against a transactional view of the manager. Writes made
// through tx are committed in a single batch when fn returns nil and
// discarded otherwise. fn must only use tx; calling back into m blocks until
// Update returns.
func (m *Manager) Update(fn func(tx *Manager) error) error {
	if m == nil {
		return errManagerUnavailable
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := newStagedDB(m.db)
	if err := fn(&Manager{db: staged}); err != nil {
		return err
	}
	return staged.flush()
}
