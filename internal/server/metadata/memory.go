package metadata

import (
	"context"
	"sync"

	"github.com/bierclub/bier/internal/common"
)

// MemoryStore is an in-process Store for tests and local runs.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[int64]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[int64]string)}
}

func (s *MemoryStore) Create(ctx context.Context, userID int64, blobHex string) error {
	return s.Save(ctx, userID, blobHex)
}

func (s *MemoryStore) Load(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[userID]
	if !ok {
		return "", common.ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) Save(_ context.Context, userID int64, blobHex string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[userID] = blobHex
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, userID)
	return nil
}
