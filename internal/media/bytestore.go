// Package media maps opaque media content refs to raw bytes and to
// renderable resources scoped to a render pass.
package media

import "sync"

// ByteStore holds the raw media payloads loaded so far in a session,
// keyed by content ref. It only ever grows; pages fill it as they load
// so render-time resolution is synchronous.
type ByteStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewByteStore returns an empty store.
func NewByteStore() *ByteStore {
	return &ByteStore{blobs: make(map[string][]byte)}
}

// Put records the payload for a content ref. A later Put for the same
// ref overwrites; refs are content-addressed so payloads never differ.
func (s *ByteStore) Put(ref string, data []byte) {
	if ref == "" {
		return
	}
	s.mu.Lock()
	s.blobs[ref] = data
	s.mu.Unlock()
}

// Get returns the payload for a content ref, if loaded.
func (s *ByteStore) Get(ref string) ([]byte, bool) {
	s.mu.RLock()
	data, ok := s.blobs[ref]
	s.mu.RUnlock()
	return data, ok
}

// Len returns the number of loaded payloads.
func (s *ByteStore) Len() int {
	s.mu.RLock()
	n := len(s.blobs)
	s.mu.RUnlock()
	return n
}
