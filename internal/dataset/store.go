package dataset

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces opaque dataset identifiers. Injectable so tests can
// use deterministic ids.
type IDGenerator func() string

// Store is the process-wide registry of uploaded datasets. Datasets are
// inserted once at upload and never mutated afterward, so concurrent reads
// only contend with concurrent uploads.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	genID    IDGenerator
}

func NewStore(genID IDGenerator) *Store {
	if genID == nil {
		genID = func() string { return uuid.New().String() }
	}
	return &Store{
		datasets: make(map[string]*Dataset),
		genID:    genID,
	}
}

// Add registers a dataset under a freshly generated id and returns the id.
func (s *Store) Add(d *Dataset) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.genID()
	s.datasets[id] = d
	return id
}

func (s *Store) Get(id string) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.datasets[id]
	return d, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}
