package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tOgg1/scrollback/internal/logging"
)

// Resource is a renderable handle for one resolved media payload. Path
// points at a file materialized under the resolver's scratch directory;
// the handle stays valid until it is released or swept.
type Resource struct {
	ContentRef string
	MIME       string
	Path       string
}

// Resolver turns content refs into Resources backed by scratch files.
// It owns every handle it creates: a second resolution of the same ref
// reuses the existing handle, and Sweep/Close revoke handles so render
// passes cannot accumulate files without bound.
type Resolver struct {
	store *ByteStore

	mu      sync.Mutex
	dir     string
	handles map[string]*Resource
	closed  bool
}

// NewResolver creates a resolver over the given byte store with a fresh
// scratch directory.
func NewResolver(store *ByteStore) (*Resolver, error) {
	dir, err := os.MkdirTemp("", "scrollback-media-*")
	if err != nil {
		return nil, fmt.Errorf("create media scratch dir: %w", err)
	}
	return &Resolver{
		store:   store,
		dir:     dir,
		handles: make(map[string]*Resource),
	}, nil
}

// Resolve returns a handle for the ref, materializing the payload on
// first use. Missing bytes yield (nil, false); the caller renders a
// "not loaded" placeholder instead of failing.
func (r *Resolver) Resolve(ref, mime string) (*Resource, bool) {
	if ref == "" {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, false
	}
	if res, ok := r.handles[ref]; ok {
		return res, true
	}

	data, ok := r.store.Get(ref)
	if !ok {
		return nil, false
	}

	path := filepath.Join(r.dir, scratchName(ref, mime))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log := logging.Component("media")
		log.Warn().Err(err).Str("ref", ref).Msg("materialize media handle failed")
		return nil, false
	}

	res := &Resource{ContentRef: ref, MIME: mime, Path: path}
	r.handles[ref] = res
	return res, true
}

// Release revokes the handle for one ref, if held.
func (r *Resolver) Release(ref string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(ref)
}

// Sweep revokes every handle whose ref is not in the active set. Called
// after a render pass with the refs that pass still displays.
func (r *Resolver) Sweep(active map[string]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ref := range r.handles {
		if _, ok := active[ref]; !ok {
			r.release(ref)
		}
	}
}

// Close revokes all handles and removes the scratch directory. The
// resolver is unusable afterwards; dialog switches create a new one.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.handles = map[string]*Resource{}
	return os.RemoveAll(r.dir)
}

func (r *Resolver) release(ref string) {
	res, ok := r.handles[ref]
	if !ok {
		return
	}
	delete(r.handles, ref)
	_ = os.Remove(res.Path)
}

func scratchName(ref, mime string) string {
	safe := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		default:
			return '-'
		}
	}, ref)
	return safe + extensionFor(mime)
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
