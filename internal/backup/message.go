// Package backup defines the domain model for a captured chat backup:
// messages, media references, participants, dialogs, and the requested
// time period. Records are read-only once written; identity is the ID.
package backup

import (
	"errors"
	"strings"
	"time"
)

// Message validation errors.
var (
	ErrMissingID   = errors.New("message id required")
	ErrMissingTime = errors.New("message timestamp required")
)

// ServiceKind tags a service event carried in the transcript stream.
// The value is the capture-side action name; the viewer never renders
// service messages, but the archive keeps them verbatim.
type ServiceKind string

const (
	ServiceCreateGroup   ServiceKind = "create_group"
	ServiceEditTitle     ServiceKind = "edit_group_title"
	ServiceEditPhoto     ServiceKind = "edit_group_photo"
	ServiceInviteMembers ServiceKind = "invite_members"
	ServiceJoinByLink    ServiceKind = "join_group_by_link"
	ServicePinMessage    ServiceKind = "pin_message"
	ServicePhoneCall     ServiceKind = "phone_call"
)

// MediaKind classifies an attached media record.
type MediaKind string

const (
	// MediaPhoto is an inline photo; its MIME type is always PhotoMIME.
	MediaPhoto MediaKind = "photo"

	// MediaDocument is a generic file attachment; MIME comes from the
	// capture metadata.
	MediaDocument MediaKind = "document"

	// MediaUnsupported marks media the viewer cannot render (stickers,
	// voice notes, animations). Filtered from display, kept on disk.
	MediaUnsupported MediaKind = "unsupported"
)

// PhotoMIME is the fixed MIME type for photo media.
const PhotoMIME = "image/jpeg"

// Media references a media payload in the backup blob store.
type Media struct {
	// ContentRef is the opaque handle into the blob store. A ref that
	// resolves to nothing renders as a placeholder, never an error.
	ContentRef string `json:"content_ref"`

	// Kind classifies the record.
	Kind MediaKind `json:"kind"`

	// MIME is the payload content type (PhotoMIME for photos, capture
	// metadata for documents, empty for unsupported kinds).
	MIME string `json:"mime,omitempty"`
}

// IsImage reports whether the payload carries an image MIME type.
func (m Media) IsImage() bool {
	return strings.HasPrefix(m.MIME, "image/")
}

// Message is one transcript record: either a content message or, when
// Service is set, a service event. Content fields are meaningless on a
// service message. Messages are never mutated after creation.
type Message struct {
	// ID uniquely identifies the message within its dialog.
	ID string `json:"id"`

	// SenderID is empty for anonymous/system senders.
	SenderID string `json:"sender_id,omitempty"`

	// Time is the capture timestamp, second precision.
	Time time.Time `json:"time"`

	// Body is the optional text body.
	Body string `json:"body,omitempty"`

	// Media is the optional attached media reference.
	Media *Media `json:"media,omitempty"`

	// Service tags service events; empty for content messages.
	Service ServiceKind `json:"service,omitempty"`
}

// IsService reports whether the message is a service event.
func (m Message) IsService() bool {
	return m.Service != ""
}

// HasMedia reports whether the message carries a media reference.
func (m Message) HasMedia() bool {
	return m.Media != nil
}

// Validate checks the fields every archived message must carry.
func (m Message) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return ErrMissingID
	}
	if m.Time.IsZero() {
		return ErrMissingTime
	}
	return nil
}

// Participant is a dialog member. Thumbnail holds the compact legacy
// thumbnail blob from the capture, if any.
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Thumbnail   []byte `json:"thumbnail,omitempty"`
}
