package pager

import (
	"log/slog"

	"versemate-tui/internal/canon"
)

// State describes where focus sits inside the current window.
type State int

const (
	Centered State = iota
	Drifted
	AtEdge
)

func (s State) String() string {
	switch s {
	case Centered:
		return "centered"
	case Drifted:
		return "drifted"
	case AtEdge:
		return "at-edge"
	}
	return "unknown"
}

// Pager keeps a window around the reading position and rebuilds it whenever
// focus reaches one of the edge slots. It is driven from a single goroutine
// (the UI update loop) and does no locking.
type Pager struct {
	size   int
	policy Policy
	idx    *canon.Index
	window Window
	focus  int
	ready  bool

	pending    canon.Entry
	hasPending bool
}

func New(size int, policy Policy) (*Pager, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	return &Pager{size: size, policy: policy}, nil
}

func (p *Pager) Size() int      { return p.size }
func (p *Pager) Policy() Policy { return p.policy }

// Ready reports whether a window has been built.
func (p *Pager) Ready() bool { return p.ready }

func (p *Pager) Index() *canon.Index { return p.idx }

func (p *Pager) Window() Window { return p.window }

func (p *Pager) FocusIndex() int { return p.focus }

// Current returns the focused entry, or the pending position while one is
// waiting for a canon.
func (p *Pager) Current() canon.Entry {
	if !p.ready || p.hasPending {
		return p.pending
	}
	return p.window.Slots[p.focus].Entry
}

func (p *Pager) State() State {
	switch {
	case !p.ready || p.focus == p.window.Center:
		return Centered
	case p.window.IsEdge(p.focus):
		return AtEdge
	default:
		return Drifted
	}
}

// SetIndex installs a new canon, replacing any previous one wholesale. A
// position requested while no canon was available is opened now; otherwise
// an existing window is rebuilt around the focused entry.
func (p *Pager) SetIndex(idx *canon.Index) {
	p.idx = idx
	if idx == nil {
		return
	}

	var target canon.Entry
	switch {
	case p.hasPending:
		target = p.pending
	case p.ready:
		target = p.window.Slots[p.focus].Entry
	default:
		target = idx.EntryAt(0)
	}
	e, err := idx.Clamp(target.Book, target.Chapter)
	if err != nil {
		slog.Debug("position not in new canon, starting over", slog.String("entry", target.String()))
		e = idx.EntryAt(0)
	}
	p.hasPending = false
	if err := p.open(e); err != nil {
		slog.Error("open after canon change failed", slog.String("entry", e.String()), slog.String("error", err.Error()))
	}
}

// Open rebuilds the window around e with focus on the center slot. Without a
// canon the position is remembered and ErrMetadataUnavailable returned; the
// previous window stays in place.
func (p *Pager) Open(e canon.Entry) error {
	if p.idx == nil {
		p.pending = e
		p.hasPending = true
		return canon.ErrMetadataUnavailable
	}
	return p.open(e)
}

func (p *Pager) open(e canon.Entry) error {
	w, err := Build(p.idx, e, p.size, p.policy)
	if err != nil {
		return err
	}
	p.window = w
	p.focus = w.Center
	p.ready = true
	return nil
}

// Focus moves focus to slot i (clamped into the window). Reaching an edge
// slot recenters the window on that slot's entry and reports true.
func (p *Pager) Focus(i int) bool {
	if !p.ready {
		return false
	}
	p.focus = max(0, min(i, p.size-1))
	if p.State() != AtEdge {
		return false
	}
	if p.idx == nil {
		return false
	}

	e := p.window.Slots[p.focus].Entry
	if err := p.open(e); err != nil {
		slog.Warn("recenter failed", slog.String("entry", e.String()), slog.String("error", err.Error()))
		return false
	}
	slog.Debug("recentered", slog.String("entry", e.String()))
	return true
}

// Step moves focus by delta slots.
func (p *Pager) Step(delta int) bool {
	return p.Focus(p.focus + delta)
}
