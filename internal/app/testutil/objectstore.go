package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeObjectStore hands out fixed URLs instead of talking to MinIO. PutBase,
// when set, is prefixed to presigned upload URLs so tests can point them at
// an httptest server.
type FakeObjectStore struct {
	PutBase string

	mu      sync.Mutex
	Deleted []string
}

func (s *FakeObjectStore) PresignPut(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	base := s.PutBase
	if base == "" {
		base = "https://store.test"
	}
	return base + "/" + key, nil
}

func (s *FakeObjectStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://store.test/" + key, nil
}

func (s *FakeObjectStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, key)
	return nil
}
