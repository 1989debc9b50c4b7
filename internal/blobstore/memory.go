package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and demos. It is safe
// for concurrent use.
type MemoryStore struct {
	bucket string

	mu      sync.Mutex
	objects map[string][]byte

	// FailWith, when set, makes every Put fail with this error after any
	// progress already reported. Lets tests exercise transfer failures.
	FailWith error

	// ChunkSize controls how many bytes are consumed per progress tick.
	ChunkSize int
}

// NewMemoryStore creates an empty in-memory store for the named bucket.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:    bucket,
		objects:   make(map[string][]byte),
		ChunkSize: 32 * 1024,
	}
}

// Put consumes r in ChunkSize chunks, reporting progress per chunk, then
// stores the payload. Storing to an existing key overwrites it.
func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string, progress ProgressFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.FailWith != nil {
		return "", m.FailWith
	}

	// Read in fixed chunks so each chunk boundary yields one progress
	// tick. io.Copy would delegate to bytes.Buffer.ReadFrom and pick its
	// own chunk sizes.
	var buf bytes.Buffer
	pr := newProgressReader(r, size, progress)
	chunk := make([]byte, m.ChunkSize)
	for {
		n, err := pr.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read payload: %w", err)
		}
	}
	if int64(buf.Len()) != size {
		return "", fmt.Errorf("size mismatch: expected %d bytes, got %d", size, buf.Len())
	}

	m.mu.Lock()
	m.objects[key] = buf.Bytes()
	m.mu.Unlock()

	return m.URL(key), nil
}

// URL returns a synthetic but stable URL for a stored key.
func (m *MemoryStore) URL(key string) string {
	return fmt.Sprintf("mem://%s/%s", m.bucket, key)
}

// Object returns the stored payload for key, if any.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// Len reports how many objects are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var _ Store = (*MemoryStore)(nil)
