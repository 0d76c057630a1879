package imagestore

import (
	"context"
	"sync"

	"figment/internal/figures"
)

// MemoryStore backs tests and database-less local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	images map[string][]figures.DocumentImage
	texts  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		images: make(map[string][]figures.DocumentImage),
		texts:  make(map[string]string),
	}
}

func (s *MemoryStore) AddDocument(documentID, text string, images ...figures.DocumentImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[documentID] = text
	s.images[documentID] = append(s.images[documentID], images...)
}

func (s *MemoryStore) Images(_ context.Context, documentID string) ([]figures.DocumentImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	imgs := s.images[documentID]
	out := make([]figures.DocumentImage, len(imgs))
	copy(out, imgs)
	return out, nil
}

func (s *MemoryStore) DocumentText(_ context.Context, documentID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.texts[documentID]
	if !ok {
		return "", ErrNotFound
	}
	return text, nil
}
