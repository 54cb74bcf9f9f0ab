package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryArchive keeps images in memory. Useful for tests and local dev.
type MemoryArchive struct {
	mu    sync.RWMutex
	blobs map[string]storedImage
}

type storedImage struct {
	data     []byte
	mimeType string
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{blobs: make(map[string]storedImage)}
}

func (s *MemoryArchive) Put(_ context.Context, key string, data []byte, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = storedImage{data: append([]byte(nil), data...), mimeType: mimeType}
	return nil
}

func (s *MemoryArchive) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("image not found")
	}
	return io.NopCloser(bytes.NewReader(blob.data)), nil
}

func (s *MemoryArchive) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// Len reports how many images are archived.
func (s *MemoryArchive) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
