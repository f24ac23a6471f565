package webview

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/backup"
	"github.com/tOgg1/scrollback/internal/media"
)

var serverZone = time.FixedZone("UTC+1", 60*60)

func testSession(t *testing.T) *archive.Session {
	t.Helper()
	ctx := context.Background()

	arch, err := archive.Create(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = arch.Close() })

	dialog := backup.Dialog{Kind: backup.DialogUser, ID: "77", Name: "Webview Fixture"}
	require.NoError(t, arch.SetMeta(ctx, archive.Meta{ID: "backup-web", ImportedAt: "2026-01-01T00:00:00Z"}))
	require.NoError(t, arch.PutDialog(ctx, dialog))
	require.NoError(t, arch.PutParticipant(ctx, dialog, backup.Participant{ID: "77", DisplayName: "Walter Webb"}))

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, serverZone)
	msgs := []backup.Message{
		{ID: "1", SenderID: "77", Time: base, Body: `needs escaping: <script>&"'</script>`},
		{ID: "2", SenderID: "77", Time: base.Add(time.Minute), Body: "photo attached",
			Media: &backup.Media{ContentRef: "ref-photo", Kind: backup.MediaPhoto, MIME: backup.PhotoMIME}},
	}
	for _, msg := range msgs {
		written, err := arch.AppendMessage(ctx, dialog, msg)
		require.NoError(t, err)
		require.True(t, written)
	}
	require.NoError(t, arch.Blobs().Put("ref-photo", []byte{0xFF, 0xD8, 0xFF, 0xD9}))

	session, err := archive.OpenSession(ctx, arch, dialog, 50, media.NewByteStore())
	require.NoError(t, err)
	require.NoError(t, session.LoadAll(ctx))
	return session
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(Config{Location: serverZone}, testSession(t))
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

func TestTranscriptEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, body := get(t, ts, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	assert.Contains(t, body, "Webview Fixture")
	assert.Contains(t, body, "Walter Webb")
	assert.Contains(t, body, "photo attached")
	assert.Contains(t, body, "data:image/jpeg;base64,", "loaded photo inlined as a data URI")

	// Message text goes through the same escaping as the file export.
	assert.NotContains(t, body, `<script>&"'</script>`)
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestMediaEndpoint(t *testing.T) {
	ts := testServer(t)

	resp, body := get(t, ts, "/media/ref-photo")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, backup.PhotoMIME, resp.Header.Get("Content-Type"))
	assert.Equal(t, string([]byte{0xFF, 0xD8, 0xFF, 0xD9}), body)

	resp, _ = get(t, ts, "/media/no-such-ref")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := testServer(t)

	resp, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)

	// A request above means the counter is non-empty by now.
	resp, body = get(t, ts, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "scrollback_http_requests_total")
	assert.Contains(t, body, "scrollback_http_request_duration_seconds")
}
