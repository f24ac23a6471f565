// Package viewer renders a backup transcript as a scrollable,
// bottom-anchored terminal conversation view.
package viewer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tOgg1/scrollback/internal/archive"
	"github.com/tOgg1/scrollback/internal/export"
	"github.com/tOgg1/scrollback/internal/media"
	"github.com/tOgg1/scrollback/internal/transcript"
)

// Config carries the viewer's tunables from the CLI layer.
type Config struct {
	Theme      string
	ViewerID   string
	EdgeRows   int
	ExportDir  string
	DateFormat string
	TimeFormat string
	Location   *time.Location
}

type snapshotMsg struct{}

type fetchDoneMsg struct {
	ticket transcript.Ticket
	err    error
}

type exportDoneMsg struct {
	path string
	err  error
}

// Model is the conversation view: one session, one resolver, one pager.
type Model struct {
	cfg      Config
	session  *archive.Session
	resolver *media.Resolver
	pager    *transcript.Pager
	theme    Theme

	snap    archive.Snapshot
	entries []transcript.Entry
	lines   []string

	width  int
	height int

	// offset is the scroll position in scroll-reverse terms: 0 anchors
	// the newest line at the bottom; growing offset moves toward older
	// history.
	offset int

	status string
}

// NewModel builds the view over an already-open session.
func NewModel(cfg Config, session *archive.Session) (*Model, error) {
	theme := Theme(cfg.Theme)
	switch theme {
	case ThemeDefault, ThemeHighContrast:
	case "":
		theme = ThemeDefault
	default:
		return nil, fmt.Errorf("invalid theme %q", cfg.Theme)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	resolver, err := media.NewResolver(session.Store())
	if err != nil {
		return nil, err
	}

	pager := transcript.NewPager(session.BackupID())
	pager.SetEpsilon(cfg.EdgeRows)

	return &Model{
		cfg:      cfg,
		session:  session,
		resolver: resolver,
		pager:    pager,
		theme:    theme,
	}, nil
}

// Run opens the program on the alt screen and blocks until quit.
func Run(cfg Config, session *archive.Session) error {
	model, err := NewModel(cfg, session)
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// Close releases the media handles the view created.
func (m *Model) Close() error {
	return m.resolver.Close()
}

func (m *Model) Init() tea.Cmd {
	return refreshCmd()
}

func refreshCmd() tea.Cmd {
	return func() tea.Msg { return snapshotMsg{} }
}

func (m *Model) fetchCmd(ticket transcript.Ticket) tea.Cmd {
	return func() tea.Msg {
		err := m.session.FetchOlder(context.Background())
		return fetchDoneMsg{ticket: ticket, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.rebuild()
		return m, nil

	case snapshotMsg:
		m.snap = m.session.Snapshot()
		m.rebuild()
		if ticket, ok := m.pager.WarmInitial(len(m.snap.Messages)); ok && m.snap.HasMore {
			return m, m.fetchCmd(ticket)
		}
		return m, nil

	case fetchDoneMsg:
		if m.pager.Stale(typed.ticket) {
			// Late result for a backup no longer on screen: drop it.
			return m, nil
		}
		m.pager.Finish(typed.ticket)
		if typed.err != nil {
			m.status = "load failed: " + typed.err.Error()
		}
		return m, refreshCmd()

	case exportDoneMsg:
		if typed.err != nil {
			m.status = "export failed: " + typed.err.Error()
		} else {
			m.status = "exported to " + typed.path
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "k", "up":
		m.scroll(1)
	case "j", "down":
		m.scroll(-1)
	case "ctrl+u", "pgup":
		m.scroll(m.contentHeight())
	case "ctrl+d", "pgdown":
		m.scroll(-m.contentHeight())
	case "g":
		m.offset = m.maxOffset()
	case "G", "end":
		m.offset = 0
	case "e":
		return m, m.exportCmd()
	default:
		return m, nil
	}
	return m, m.maybeFetch()
}

func (m *Model) scroll(delta int) {
	m.offset += delta
	if m.offset < 0 {
		m.offset = 0
	}
	if max := m.maxOffset(); m.offset > max {
		m.offset = max
	}
}

func (m *Model) maxOffset() int {
	max := len(m.lines) - m.contentHeight()
	if max < 0 {
		return 0
	}
	return max
}

// maybeFetch feeds the pager the current viewport; the boundary sits at
// the oldest loaded line.
func (m *Model) maybeFetch() tea.Cmd {
	if !m.snap.HasMore {
		return nil
	}
	vp := transcript.Viewport{
		Offset:        m.offset,
		VisibleHeight: m.contentHeight(),
		TotalHeight:   len(m.lines),
	}
	ticket, ok := m.pager.Observe(vp)
	if !ok {
		return nil
	}
	return m.fetchCmd(ticket)
}

func (m *Model) exportCmd() tea.Cmd {
	snap := m.snap
	cfg := m.cfg
	return func() tea.Msg {
		filtered := transcript.Filter(snap.Messages)
		doc := export.Document{
			Title:        snap.Dialog.Name,
			Period:       snap.Period,
			Messages:     filtered,
			Participants: snap.Participants,
			Bytes:        m.session.Store(),
			Location:     cfg.Location,
			DateFormat:   cfg.DateFormat,
			TimeFormat:   cfg.TimeFormat,
		}

		var buf bytes.Buffer
		if err := doc.Serialize(&buf); err != nil {
			return exportDoneMsg{err: err}
		}
		name := export.Filename(snap.Dialog.Name, snap.Period, cfg.Location, cfg.DateFormat)
		sink := export.DirSink{Dir: cfg.ExportDir}
		path, err := sink.Save(context.Background(), name, export.HTMLMIME, buf.Bytes())
		return exportDoneMsg{path: path, err: err}
	}
}

// rebuild recomputes directives and display lines from the latest
// snapshot. Directives are never cached across passes.
func (m *Model) rebuild() {
	filtered := transcript.Filter(m.snap.Messages)
	m.entries = transcript.Project(filtered, m.cfg.ViewerID, m.snap.Participants, m.cfg.Location, m.resolver)
	m.resolver.Sweep(transcript.ActiveRefs(m.entries))
	m.lines = renderLines(m.entries, m.bodyWidth(), themePalette(m.theme), m.cfg.Location)
	if max := m.maxOffset(); m.offset > max {
		m.offset = max
	}
}

func (m *Model) bodyWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}

func (m *Model) contentHeight() int {
	h := m.height - 2 // header and footer rows
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) View() string {
	palette := themePalette(m.theme)
	header := m.renderHeader(palette)
	footer := m.renderFooter(palette)

	content := m.visibleLines()
	body := strings.Join(content, "\n")
	for i := len(content); i < m.contentHeight(); i++ {
		body = "\n" + body
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) visibleLines() []string {
	height := m.contentHeight()
	end := len(m.lines) - m.offset
	if end > len(m.lines) {
		end = len(m.lines)
	}
	start := end - height
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	return m.lines[start:end]
}

func (m *Model) renderHeader(palette Palette) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Accent)).Bold(true)
	title := m.snap.Dialog.Name
	if title == "" {
		title = "(loading)"
	}
	info := fmt.Sprintf("%d messages", len(m.entries))
	if m.snap.HasMore {
		info += " +"
	}
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Muted))
	return style.Render(truncate(title, m.bodyWidth()-len(info)-1)) + " " + mutedStyle.Render(info)
}

func (m *Model) renderFooter(palette Palette) string {
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Muted))
	left := "j/k scroll  g/G ends  e export  q quit"
	right := m.status
	if m.pager.State() == transcript.PagerLoading {
		right = "loading older messages..."
	} else if m.snap.Err != nil && right == "" {
		right = "load error: " + m.snap.Err.Error()
		mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Error))
	}
	line := left
	if right != "" {
		line += "  |  " + truncate(right, m.bodyWidth()-len(left)-5)
	}
	return mutedStyle.Render(line)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return string(runes[:1])
	}
	return string(runes[:max-1]) + "…"
}
