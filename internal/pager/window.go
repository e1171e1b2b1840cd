// Package pager builds the fixed-size window of chapters shown around the
// reading position and decides when that window has to be rebuilt.
package pager

import (
	"errors"
	"fmt"
	"strconv"

	"versemate-tui/internal/canon"
)

// ReaderSize is the window size of the reader and the CLI default.
const ReaderSize = 7

var ErrInvalidWindowSize = errors.New("window size must be odd and positive")

// Policy decides what fills slots that fall past either end of the canon.
type Policy int

const (
	// Circular wraps around: the slot before Genesis 1 is Revelation 22.
	Circular Policy = iota
	// Clamp repeats the first or last chapter instead of wrapping.
	Clamp
)

func (p Policy) String() string {
	switch p {
	case Circular:
		return "circular"
	case Clamp:
		return "clamp"
	}
	return "policy(" + strconv.Itoa(int(p)) + ")"
}

// ParsePolicy accepts "circular" (or "") and "clamp".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "circular":
		return Circular, nil
	case "clamp":
		return Clamp, nil
	}
	return Circular, fmt.Errorf("unknown boundary policy %q", s)
}

// Slot is one position of a Window. Key depends only on the position, so a
// view keyed by it survives rebuilds and only sees its Entry change.
type Slot struct {
	Key   string      `json:"key"`
	Entry canon.Entry `json:"entry"`
}

type Window struct {
	Slots  []Slot `json:"slots"`
	Center int    `json:"center"`
}

// SlotKey returns the positional key of slot i.
func SlotKey(i int) string {
	return "page-" + strconv.Itoa(i)
}

// Build returns a window of size slots centered on center.
func Build(idx *canon.Index, center canon.Entry, size int, policy Policy) (Window, error) {
	if err := checkSize(size); err != nil {
		return Window{}, err
	}
	if idx == nil {
		return Window{}, canon.ErrMetadataUnavailable
	}
	c, err := idx.Offset(center.Book, center.Chapter)
	if err != nil {
		return Window{}, err
	}

	half := size / 2
	last := idx.Len() - 1
	w := Window{Slots: make([]Slot, size), Center: half}
	for i := range w.Slots {
		off := c - half + i
		if policy == Clamp {
			off = max(0, min(off, last))
		}
		w.Slots[i] = Slot{Key: SlotKey(i), Entry: idx.EntryAt(off)}
	}
	return w, nil
}

func checkSize(size int) error {
	if size <= 0 || size%2 == 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWindowSize, size)
	}
	return nil
}

func (w Window) Len() int {
	return len(w.Slots)
}

func (w Window) At(i int) Slot {
	return w.Slots[i]
}

func (w Window) CenterEntry() canon.Entry {
	return w.Slots[w.Center].Entry
}

func (w Window) Entries() []canon.Entry {
	out := make([]canon.Entry, len(w.Slots))
	for i, s := range w.Slots {
		out[i] = s.Entry
	}
	return out
}

func (w Window) Keys() []string {
	out := make([]string, len(w.Slots))
	for i, s := range w.Slots {
		out[i] = s.Key
	}
	return out
}

// IsEdge reports whether slot i is the first or last slot.
func (w Window) IsEdge(i int) bool {
	return i == 0 || i == len(w.Slots)-1
}
