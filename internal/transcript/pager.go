package transcript

import "sync"

// PagerState is the pagination controller's current state.
type PagerState int

const (
	PagerIdle PagerState = iota
	PagerLoading
)

// Default pager tuning. Epsilon is the proximity threshold to the fetch
// boundary, in rows; InitialBatch is the loaded-message count at which
// the one-time warm trigger fires.
const (
	DefaultEpsilon      = 4
	DefaultInitialBatch = 50
)

// Viewport is one scroll observation, in scroll-reverse coordinates:
// the origin sits at the newest message and a growing offset moves
// toward older history, so the fetch boundary is the top of the
// content.
type Viewport struct {
	Offset        int
	VisibleHeight int
	TotalHeight   int
}

// Ticket identifies one issued fetch. Finish and Stale match tickets
// against the backup the pager currently serves, so a late result for a
// previously viewed backup is recognized and dropped.
type Ticket struct {
	BackupID string
	Seq      uint64
}

// Pager is the two-state pagination controller: it observes viewport
// positions and decides when exactly one "load older page" fetch may be
// in flight. It never performs the fetch itself.
type Pager struct {
	mu           sync.Mutex
	state        PagerState
	backupID     string
	seq          uint64
	warmed       bool
	epsilon      int
	initialBatch int
}

// NewPager returns an idle pager for the given backup with default
// tuning.
func NewPager(backupID string) *Pager {
	return &Pager{
		backupID:     backupID,
		epsilon:      DefaultEpsilon,
		initialBatch: DefaultInitialBatch,
	}
}

// SetEpsilon overrides the proximity threshold. Zero or negative keeps
// the default.
func (p *Pager) SetEpsilon(rows int) {
	if rows <= 0 {
		return
	}
	p.mu.Lock()
	p.epsilon = rows
	p.mu.Unlock()
}

// Observe reports a viewport position. It fires iff the position is
// within epsilon of the fetch boundary and no fetch is in flight; a
// fired trigger moves the pager to loading and returns the ticket the
// caller must later pass to Finish.
func (p *Pager) Observe(vp Viewport) (Ticket, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PagerIdle {
		return Ticket{}, false
	}
	if vp.Offset+vp.VisibleHeight < vp.TotalHeight-p.epsilon {
		return Ticket{}, false
	}
	return p.fire(), true
}

// WarmInitial fires at most once per backup, when the loaded message
// count reaches the initial-batch threshold, to warm the next page
// before the user scrolls.
func (p *Pager) WarmInitial(loaded int) (Ticket, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.warmed || p.state != PagerIdle || loaded < p.initialBatch {
		return Ticket{}, false
	}
	p.warmed = true
	return p.fire(), true
}

// Finish returns the pager to idle regardless of fetch outcome. Tickets
// from another backup are ignored: a Reset has already idled the pager
// and the result they carry must be discarded.
func (p *Pager) Finish(t Ticket) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t.BackupID != p.backupID {
		return
	}
	p.state = PagerIdle
}

// Stale reports whether the ticket belongs to a backup the pager no
// longer serves; the caller drops the fetched page instead of applying
// it.
func (p *Pager) Stale(t Ticket) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return t.BackupID != p.backupID
}

// Reset switches the pager to a new backup: outstanding tickets become
// stale, the state returns to idle, and the warm trigger re-arms.
func (p *Pager) Reset(backupID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.backupID = backupID
	p.state = PagerIdle
	p.warmed = false
}

// State returns the current state.
func (p *Pager) State() PagerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pager) fire() Ticket {
	p.state = PagerLoading
	p.seq++
	return Ticket{BackupID: p.backupID, Seq: p.seq}
}
