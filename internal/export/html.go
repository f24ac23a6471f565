// Package export serializes a filtered transcript into a standalone
// offline HTML document with resolvable media embedded inline.
package export

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/media"
)

// Default stamp layouts, overridable per document.
const (
	DefaultDateFormat = "2006-01-02"
	DefaultTimeFormat = "15:04"
)

// Unbounded period labels.
const (
	LabelAllTime = "all-time"
	LabelUnknown = "unknown"
)

// Document is the serializer input: the already-filtered, ordered
// transcript plus everything needed to render it self-contained.
type Document struct {
	Title        string
	Period       backup.Period
	Messages     []backup.Message
	Participants map[string]backup.Participant
	Bytes        *media.ByteStore
	Location     *time.Location
	DateFormat   string
	TimeFormat   string
}

// escaper covers the five markup metacharacters. Every user-controlled
// string passes through it before insertion; this is a security
// invariant, not formatting.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&#34;",
	"'", "&#39;",
)

func escape(s string) string {
	return escaper.Replace(s)
}

// Serialize writes the document as UTF-8 HTML. It is deterministic
// given its inputs plus the byte store contents: same transcript, same
// bytes, same document.
func (d Document) Serialize(w io.Writer) error {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	dateFormat := d.DateFormat
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	timeFormat := d.TimeFormat
	if timeFormat == "" {
		timeFormat = DefaultTimeFormat
	}

	title := escape(d.Title)
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", title)
	b.WriteString("<style>\n")
	b.WriteString(documentCSS)
	b.WriteString("</style>\n</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", title)
	fmt.Fprintf(&b, "<p class=\"period\">Period: %s to %s</p>\n",
		escape(FormatPeriodBound(d.Period.Start, loc, LabelAllTime, dateFormat)),
		escape(FormatPeriodBound(d.Period.End, loc, LabelUnknown, dateFormat)))

	for _, msg := range d.Messages {
		b.WriteString("<div class=\"message\">\n")
		fmt.Fprintf(&b, "<span class=\"sender\">%s</span>\n", escape(d.senderLabel(msg)))
		fmt.Fprintf(&b, "<span class=\"stamp\">%s</span>\n",
			msg.Time.In(loc).Format(dateFormat+" "+timeFormat))
		if msg.Body != "" {
			fmt.Fprintf(&b, "<p class=\"body\">%s</p>\n", escape(msg.Body))
		}
		if msg.Media != nil {
			b.WriteString(d.renderMedia(*msg.Media))
		}
		b.WriteString("</div>\n")
	}

	b.WriteString("</body>\n</html>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func (d Document) senderLabel(msg backup.Message) string {
	if msg.SenderID == "" {
		return "Anonymous"
	}
	if p, ok := d.Participants[msg.SenderID]; ok && strings.TrimSpace(p.DisplayName) != "" {
		return p.DisplayName
	}
	return "Unknown"
}

// renderMedia embeds resolvable images inline and degrades everything
// else to a textual placeholder. The MIME tag is trusted as recorded;
// payloads are not validated here.
func (d Document) renderMedia(m backup.Media) string {
	var data []byte
	ok := false
	if d.Bytes != nil {
		data, ok = d.Bytes.Get(m.ContentRef)
	}
	if !ok {
		return "<p class=\"media missing\">[media not loaded]</p>\n"
	}
	if m.IsImage() {
		return fmt.Sprintf("<img class=\"media\" src=\"data:%s;base64,%s\">\n",
			escape(m.MIME), base64.StdEncoding.EncodeToString(data))
	}
	return fmt.Sprintf("<p class=\"media\">[%s not shown]</p>\n", escape(m.MIME))
}

// FormatPeriodBound renders one period bound for display; a zero bound
// renders as the given unbounded label.
func FormatPeriodBound(sec int64, loc *time.Location, unbounded, dateFormat string) string {
	if sec == 0 {
		return unbounded
	}
	if loc == nil {
		loc = time.Local
	}
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	return time.Unix(sec, 0).In(loc).Format(dateFormat)
}

const documentCSS = `body { font-family: sans-serif; max-width: 48em; margin: 2em auto; }
.period { color: #666; }
.message { border-bottom: 1px solid #eee; padding: 0.6em 0; }
.sender { font-weight: bold; margin-right: 0.8em; }
.stamp { color: #999; font-size: 0.85em; }
.body { margin: 0.3em 0 0 0; white-space: pre-wrap; }
.media { margin-top: 0.3em; max-width: 100%; }
.media.missing { color: #999; font-style: italic; }
`
