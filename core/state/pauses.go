package state

import "strings"

var pausePrefix = []byte("pause/")

func pauseKey(key string) []byte {
	return prefixedKey(pausePrefix, []byte(strings.ToLower(strings.TrimSpace(key))))
}

// SetPaused records the pause flag for a module or asset key.
func (m *Manager) SetPaused(key string, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.put(pauseKey(key), paused)
}

// IsPaused reports the stored pause flag. Missing keys and read failures
// report false.
func (m *Manager) IsPaused(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var paused bool
	ok, err := m.get(pauseKey(key), &paused)
	return err == nil && ok && paused
}
