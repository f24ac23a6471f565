package backup

// Period is the requested capture window of a backup, in unix seconds.
// A zero bound means unbounded on that side.
type Period struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// OpenStart reports whether the window has no lower bound.
func (p Period) OpenStart() bool {
	return p.Start == 0
}

// OpenEnd reports whether the window has no upper bound.
func (p Period) OpenEnd() bool {
	return p.End == 0
}
