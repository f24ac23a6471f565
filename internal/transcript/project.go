package transcript

import (
	"strings"
	"time"

	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/media"
)

// Fallback sender labels.
const (
	LabelAnonymous = "Anonymous"
	LabelUnknown   = "Unknown"
)

// Directive carries the derived, per-pass render state for one visible
// message. Directives are recomputed from scratch on every pass and
// never persisted.
type Directive struct {
	DateSeparator bool
	DateLabel     string
	SenderHeader  bool
	SenderLabel   string
	Initials      string
	AvatarURI     string
	Outgoing      bool
	MediaPath     string
	MediaMissing  bool
}

// Entry pairs a visible message with its directive.
type Entry struct {
	Message   backup.Message
	Directive Directive
}

// Project derives render directives for an already-filtered sequence in
// one forward pass. Two running accumulators decide the boundary
// markers: the calendar date (in loc) of the previous visible message,
// and its sender. The sender accumulator updates on every message,
// outgoing included, so a run of outgoing messages re-arms the header
// for the next incoming sender.
//
// resolver may be nil; media-carrying messages then project as missing.
func Project(msgs []backup.Message, viewerID string, participants map[string]backup.Participant, loc *time.Location, resolver *media.Resolver) []Entry {
	if loc == nil {
		loc = time.Local
	}

	entries := make([]Entry, 0, len(msgs))

	lastDate := ""
	lastSender := ""
	haveSender := false

	for _, msg := range msgs {
		var d Directive

		local := msg.Time.In(loc)
		date := local.Format("2006-01-02")
		if date != lastDate {
			d.DateSeparator = true
			d.DateLabel = local.Format("2 January 2006")
			lastDate = date
		}

		d.Outgoing = viewerID != "" && msg.SenderID == viewerID
		if !d.Outgoing && (!haveSender || msg.SenderID != lastSender) {
			d.SenderHeader = true
		}
		lastSender = msg.SenderID
		haveSender = true

		participant, known := participants[msg.SenderID]
		switch {
		case msg.SenderID == "":
			d.SenderLabel = LabelAnonymous
		case known && strings.TrimSpace(participant.DisplayName) != "":
			d.SenderLabel = participant.DisplayName
		default:
			d.SenderLabel = LabelUnknown
		}
		if known {
			d.AvatarURI = media.ThumbnailDataURI(participant.Thumbnail)
		}
		if d.AvatarURI == "" {
			d.Initials = initials(d.SenderLabel)
		}

		if msg.Media != nil {
			res, ok := (*media.Resource)(nil), false
			if resolver != nil {
				res, ok = resolver.Resolve(msg.Media.ContentRef, msg.Media.MIME)
			}
			if ok {
				d.MediaPath = res.Path
			} else {
				d.MediaMissing = true
			}
		}

		entries = append(entries, Entry{Message: msg, Directive: d})
	}

	return entries
}

// ActiveRefs collects the content refs the given entries still display,
// for use as a Resolver sweep set.
func ActiveRefs(entries []Entry) map[string]struct{} {
	active := make(map[string]struct{})
	for _, e := range entries {
		if e.Message.Media != nil && e.Directive.MediaPath != "" {
			active[e.Message.Media.ContentRef] = struct{}{}
		}
	}
	return active
}

func initials(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return "?"
	}
	out := make([]rune, 0, 2)
	for _, f := range fields {
		out = append(out, []rune(f)[0])
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}
