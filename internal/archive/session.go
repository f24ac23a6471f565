package archive

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/logging"
	"github.com/tOgg1/scrollback/internal/media"
)

// Snapshot is a copy-on-read view of the session: the loaded message
// window in display order plus everything a render pass needs. Err is
// the transcript source's error channel; a failed page load lands here
// without disturbing the already-loaded window.
type Snapshot struct {
	BackupID     string
	Dialog       backup.Dialog
	Period       backup.Period
	Messages     []backup.Message
	Participants map[string]backup.Participant
	HasMore      bool
	Loading      bool
	Err          error
}

// Session holds the loaded window of one dialog's transcript and fills
// the shared byte store as pages arrive, so render-time media
// resolution never touches the disk. Older pages prepend to the window;
// nothing already loaded ever moves.
type Session struct {
	arch     *Archive
	store    *media.ByteStore
	backupID string
	dialog   backup.Dialog
	period   backup.Period
	pageSize int
	log      zerolog.Logger

	mu           sync.Mutex
	msgs         []backup.Message
	participants map[string]backup.Participant
	cursor       Cursor
	hasMore      bool
	loading      bool
	err          error
}

// OpenSession loads the dialog's participant set and newest page.
func OpenSession(ctx context.Context, arch *Archive, dialog backup.Dialog, pageSize int, store *media.ByteStore) (*Session, error) {
	meta, err := arch.Meta(ctx)
	if err != nil {
		return nil, err
	}
	participants, err := arch.Participants(ctx, dialog)
	if err != nil {
		return nil, err
	}

	s := &Session{
		arch:         arch,
		store:        store,
		backupID:     meta.ID,
		dialog:       dialog,
		period:       meta.Period,
		pageSize:     pageSize,
		log:          logging.WithBackup(meta.ID),
		participants: participants,
		hasMore:      true,
	}
	if err := s.FetchOlder(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// BackupID returns the backup identifier the session serves.
func (s *Session) BackupID() string {
	return s.backupID
}

// Store returns the shared byte store the session fills.
func (s *Session) Store() *media.ByteStore {
	return s.store
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]backup.Message, len(s.msgs))
	copy(msgs, s.msgs)

	return Snapshot{
		BackupID:     s.backupID,
		Dialog:       s.dialog,
		Period:       s.period,
		Messages:     msgs,
		Participants: s.participants,
		HasMore:      s.hasMore,
		Loading:      s.loading,
		Err:          s.err,
	}
}

// FetchOlder loads the next page of strictly older messages, prepends
// it to the window, and fills the byte store with the page's payloads.
// A failed fetch records the error and leaves the window intact; the
// session does not retry on its own.
func (s *Session) FetchOlder(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return errors.New("page load already in flight")
	}
	if !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	cursor := s.cursor
	s.mu.Unlock()

	page, next, more, err := s.arch.MessagesBefore(ctx, s.dialog, cursor, s.pageSize)
	if err != nil {
		s.log.Warn().Err(err).Msg("page load failed")
		s.mu.Lock()
		s.loading = false
		s.err = err
		s.mu.Unlock()
		return err
	}

	s.fillByteStore(page)

	s.mu.Lock()
	s.msgs = append(page, s.msgs...)
	s.cursor = next
	s.hasMore = more
	s.loading = false
	s.err = nil
	s.mu.Unlock()

	s.log.Debug().Int("page", len(page)).Bool("more", more).Msg("older page loaded")
	return nil
}

// LoadAll pages until the dialog's full transcript is in the window.
// Used by the exporter and the web preview, which render everything at
// once instead of paginating.
func (s *Session) LoadAll(ctx context.Context) error {
	for {
		s.mu.Lock()
		more := s.hasMore
		s.mu.Unlock()
		if !more {
			return nil
		}
		if err := s.FetchOlder(ctx); err != nil {
			return err
		}
	}
}

// fillByteStore copies the page's referenced payloads into the shared
// store. A blob missing from the archive is not an error: the message
// renders with a "not loaded" placeholder.
func (s *Session) fillByteStore(page []backup.Message) {
	for _, msg := range page {
		if msg.Media == nil || msg.Media.ContentRef == "" {
			continue
		}
		if _, ok := s.store.Get(msg.Media.ContentRef); ok {
			continue
		}
		data, ok, err := s.arch.Blobs().Get(msg.Media.ContentRef)
		if err != nil {
			s.log.Warn().Err(err).Str("ref", msg.Media.ContentRef).Msg("blob read failed")
			continue
		}
		if !ok {
			continue
		}
		s.store.Put(msg.Media.ContentRef, data)
	}
}
