package archive

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// blobPrefix namespaces media payload keys in the blob store.
const blobPrefix = "media:"

// BlobStore holds raw media payloads keyed by content ref, backed by a
// Pebble database under the backup directory.
type BlobStore struct {
	db *pebble.DB
}

// OpenBlobs opens (or creates) the blob store at the given path.
func OpenBlobs(path string) (*BlobStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return &BlobStore{db: db}, nil
}

// Put stores one payload under its content ref.
func (b *BlobStore) Put(ref string, data []byte) error {
	if ref == "" {
		return errors.New("blob ref required")
	}
	if err := b.db.Set([]byte(blobPrefix+ref), data, pebble.Sync); err != nil {
		return fmt.Errorf("store blob %s: %w", ref, err)
	}
	return nil
}

// Get returns the payload for a content ref. An unknown ref is not an
// error; it reports ok=false and the caller degrades to a placeholder.
func (b *BlobStore) Get(ref string) ([]byte, bool, error) {
	value, closer, err := b.db.Get([]byte(blobPrefix + ref))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read blob %s: %w", ref, err)
	}
	out := make([]byte, len(value))
	copy(out, value)
	if err := closer.Close(); err != nil {
		return nil, false, fmt.Errorf("close blob read %s: %w", ref, err)
	}
	return out, true, nil
}

// Stats iterates the media namespace and reports payload count and
// total bytes.
func (b *BlobStore) Stats() (count int, size int64, err error) {
	iter, err := b.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(blobPrefix),
		UpperBound: []byte(blobPrefix + "\xff"),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("iterate blobs: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		count++
		size += int64(len(iter.Value()))
	}
	if err := iter.Error(); err != nil {
		return 0, 0, fmt.Errorf("blob iteration error: %w", err)
	}
	return count, size, nil
}

// Close closes the underlying database.
func (b *BlobStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
