package store

import (
	"sync"

	"quizmatch/backend/internal/models"
)

// MemoryStore keeps lobby records and the registry in process memory.
// It is the store used when no DATABASE_URL is configured, and by tests.
// Mutate follows the same read-copy-commit-if-unchanged protocol as the
// external store rather than holding a lock across fn.
type MemoryStore struct {
	mu       sync.RWMutex
	lobbies  map[string]*models.Lobby
	registry map[string]bool
}

// NewMemoryStore initializes and returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lobbies:  make(map[string]*models.Lobby),
		registry: make(map[string]bool),
	}
}

func (s *MemoryStore) Get(id string) (*models.Lobby, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lobby, ok := s.lobbies[id]
	if !ok {
		return nil, ErrNotFound
	}
	return lobby.Clone(), nil
}

func (s *MemoryStore) CreateIfAbsent(lobby *models.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.lobbies[lobby.ID]; exists {
		return ErrAlreadyExists
	}
	stored := lobby.Clone()
	stored.Version = 1
	s.lobbies[lobby.ID] = stored
	return nil
}

func (s *MemoryStore) Mutate(id string, fn func(*models.Lobby) error) (*models.Lobby, error) {
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		s.mu.RLock()
		current, ok := s.lobbies[id]
		if !ok {
			s.mu.RUnlock()
			return nil, ErrNotFound
		}
		next := current.Clone()
		s.mu.RUnlock()

		readVersion := next.Version
		if err := fn(next); err != nil {
			return nil, err
		}
		next.Version = readVersion + 1

		if err := s.commit(id, readVersion, next); err != nil {
			if err == ErrConflict {
				continue
			}
			return nil, err
		}
		return next.Clone(), nil
	}
	return nil, ErrTransient
}

// commit installs next only if the stored version still matches the one
// observed at read time.
func (s *MemoryStore) commit(id string, readVersion int64, next *models.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.lobbies[id]
	if !ok {
		return ErrNotFound
	}
	if current.Version != readVersion {
		return ErrConflict
	}
	s.lobbies[id] = next
	return nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lobbies[id]; !ok {
		return ErrNotFound
	}
	delete(s.lobbies, id)
	return nil
}

func (s *MemoryStore) AddID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[id] = true
	return nil
}

func (s *MemoryStore) RemoveID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
	return nil
}

func (s *MemoryStore) ListIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.registry))
	for id := range s.registry {
		ids = append(ids, id)
	}
	return ids, nil
}
