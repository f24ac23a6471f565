package transcript

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/media"
)

var testZone = time.FixedZone("UTC+2", 2*60*60)

func testParticipants() map[string]backup.Participant {
	return map[string]backup.Participant{
		"me":    {ID: "me", DisplayName: "Viewer"},
		"alice": {ID: "alice", DisplayName: "Alice Archer"},
		"bob":   {ID: "bob", DisplayName: "Bob"},
	}
}

func TestProjectDateBoundary(t *testing.T) {
	// 2024-03-10 local midnight in the fixed zone.
	midnight := time.Date(2024, 3, 10, 0, 0, 0, 0, testZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "alice", Time: midnight.Add(-2 * time.Hour)},
		{ID: "2", SenderID: "alice", Time: midnight.Add(-1 * time.Minute)},
		{ID: "3", SenderID: "alice", Time: midnight.Add(1 * time.Minute)},
	}

	entries := Project(msgs, "me", testParticipants(), testZone, nil)

	require.Len(t, entries, 3)
	assert.True(t, entries[0].Directive.DateSeparator, "first message always opens a date group")
	assert.False(t, entries[1].Directive.DateSeparator, "same calendar date")
	assert.True(t, entries[2].Directive.DateSeparator, "crossed local midnight")
	assert.Equal(t, "10 March 2024", entries[2].Directive.DateLabel)
}

func TestProjectSenderHeaders(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, testZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "alice", Time: base},
		{ID: "2", SenderID: "alice", Time: base.Add(time.Minute)},
		{ID: "3", SenderID: "bob", Time: base.Add(2 * time.Minute)},
	}

	entries := Project(msgs, "me", testParticipants(), testZone, nil)

	require.Len(t, entries, 3)
	assert.True(t, entries[0].Directive.SenderHeader)
	assert.False(t, entries[1].Directive.SenderHeader)
	assert.True(t, entries[2].Directive.SenderHeader)
}

func TestProjectOutgoingResetsSenderRun(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, testZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "alice", Time: base},
		{ID: "2", SenderID: "me", Time: base.Add(time.Minute)},
		{ID: "3", SenderID: "alice", Time: base.Add(2 * time.Minute)},
	}

	entries := Project(msgs, "me", testParticipants(), testZone, nil)

	require.Len(t, entries, 3)
	assert.True(t, entries[0].Directive.SenderHeader)
	assert.True(t, entries[1].Directive.Outgoing)
	assert.False(t, entries[1].Directive.SenderHeader, "outgoing messages never show a header")
	assert.True(t, entries[2].Directive.SenderHeader, "outgoing run re-arms the header")
}

func TestProjectSenderLabels(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, testZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "alice", Time: base},
		{ID: "2", SenderID: "ghost", Time: base.Add(time.Minute)},
		{ID: "3", SenderID: "", Time: base.Add(2 * time.Minute)},
	}

	entries := Project(msgs, "me", testParticipants(), testZone, nil)

	require.Len(t, entries, 3)
	assert.Equal(t, "Alice Archer", entries[0].Directive.SenderLabel)
	assert.Equal(t, "AA", entries[0].Directive.Initials)
	assert.Equal(t, LabelUnknown, entries[1].Directive.SenderLabel)
	assert.Equal(t, LabelAnonymous, entries[2].Directive.SenderLabel)
	assert.False(t, entries[2].Directive.Outgoing)
}

func TestProjectAvatarFallsBackToInitials(t *testing.T) {
	participants := testParticipants()
	participants["alice"] = backup.Participant{
		ID:          "alice",
		DisplayName: "Alice Archer",
		Thumbnail:   media.CompactThumbnail([]byte{0xFF, 0xD8, 0xAA, 0xBB, 0xFF, 0xD9}),
	}
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, testZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "alice", Time: base},
		{ID: "2", SenderID: "bob", Time: base.Add(time.Minute)},
	}

	entries := Project(msgs, "me", participants, testZone, nil)

	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Directive.AvatarURI, "data:image/jpeg;base64,")
	assert.Empty(t, entries[0].Directive.Initials)
	assert.Empty(t, entries[1].Directive.AvatarURI)
	assert.Equal(t, "B", entries[1].Directive.Initials)
}

func TestProjectMediaResolution(t *testing.T) {
	store := media.NewByteStore()
	store.Put("ref-loaded", []byte{0xFF, 0xD8, 0xFF, 0xD9})
	resolver, err := media.NewResolver(store)
	require.NoError(t, err)
	defer resolver.Close()

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, testZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "alice", Time: base, Media: &backup.Media{ContentRef: "ref-loaded", Kind: backup.MediaPhoto, MIME: backup.PhotoMIME}},
		{ID: "2", SenderID: "alice", Time: base.Add(time.Minute), Media: &backup.Media{ContentRef: "ref-missing", Kind: backup.MediaPhoto, MIME: backup.PhotoMIME}},
	}

	entries := Project(msgs, "me", testParticipants(), testZone, resolver)

	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].Directive.MediaPath)
	assert.False(t, entries[0].Directive.MediaMissing)
	assert.Empty(t, entries[1].Directive.MediaPath)
	assert.True(t, entries[1].Directive.MediaMissing)

	active := ActiveRefs(entries)
	assert.Contains(t, active, "ref-loaded")
	assert.NotContains(t, active, "ref-missing")
}

func TestProjectDeterministic(t *testing.T) {
	base := time.Date(2024, 3, 9, 23, 50, 0, 0, testZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "alice", Time: base, Body: "hi"},
		{ID: "2", SenderID: "me", Time: base.Add(5 * time.Minute)},
		{ID: "3", SenderID: "bob", Time: base.Add(15 * time.Minute)},
	}

	first := Project(msgs, "me", testParticipants(), testZone, nil)
	second := Project(msgs, "me", testParticipants(), testZone, nil)

	assert.Equal(t, first, second)
}
