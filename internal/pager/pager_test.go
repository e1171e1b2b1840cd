package pager

import (
	"errors"
	"testing"

	"versemate-tui/internal/canon"
)

func openPager(t *testing.T, size int, at canon.Entry) *Pager {
	t.Helper()
	p, err := New(size, Circular)
	if err != nil {
		t.Fatal(err)
	}
	p.SetIndex(testIndex(t))
	if err := p.Open(at); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(4, Circular); !errors.Is(err, ErrInvalidWindowSize) {
		t.Errorf("err = %v", err)
	}
}

func TestPager_InitialState(t *testing.T) {
	p := openPager(t, 7, canon.Entry{Book: gen, Chapter: 5})
	if p.State() != Centered {
		t.Errorf("state = %v", p.State())
	}
	if p.FocusIndex() != 3 {
		t.Errorf("focus = %d", p.FocusIndex())
	}
	if p.Current() != (canon.Entry{Book: gen, Chapter: 5}) {
		t.Errorf("current = %v", p.Current())
	}
}

func TestPager_DriftWithoutRecenter(t *testing.T) {
	p := openPager(t, 7, canon.Entry{Book: gen, Chapter: 5})
	before := p.Window()

	if p.Step(1) {
		t.Fatal("one step should not recenter")
	}
	if p.State() != Drifted {
		t.Errorf("state = %v, want drifted", p.State())
	}
	if p.Current() != (canon.Entry{Book: gen, Chapter: 6}) {
		t.Errorf("current = %v", p.Current())
	}
	if p.Window().CenterEntry() != before.CenterEntry() {
		t.Error("window changed without reaching an edge")
	}
}

func TestPager_RecenterAtEdge(t *testing.T) {
	p := openPager(t, 7, canon.Entry{Book: gen, Chapter: 5})

	p.Step(1)
	p.Step(1)
	if !p.Step(1) {
		t.Fatal("reaching the last slot should recenter")
	}
	if p.State() != Centered {
		t.Errorf("state = %v, want centered", p.State())
	}
	if p.FocusIndex() != 3 {
		t.Errorf("focus = %d, want 3", p.FocusIndex())
	}
	want := canon.Entry{Book: gen, Chapter: 8}
	if p.Current() != want || p.Window().CenterEntry() != want {
		t.Errorf("current = %v, center = %v, want %v", p.Current(), p.Window().CenterEntry(), want)
	}
}

func TestPager_RecenterAcrossWrap(t *testing.T) {
	p := openPager(t, 7, canon.Entry{Book: gen, Chapter: 1})

	if !p.Focus(0) {
		t.Fatal("focusing slot 0 should recenter")
	}
	want := canon.Entry{Book: rev, Chapter: 20}
	if p.Current() != want {
		t.Errorf("current = %v, want %v", p.Current(), want)
	}
	if p.Window().At(6).Entry != (canon.Entry{Book: gen, Chapter: 1}) {
		t.Errorf("last slot = %v", p.Window().At(6).Entry)
	}
}

func TestPager_FocusClamped(t *testing.T) {
	p := openPager(t, 5, canon.Entry{Book: exo, Chapter: 10})
	p.Focus(99)
	if p.Current() != (canon.Entry{Book: exo, Chapter: 12}) {
		t.Errorf("current = %v", p.Current())
	}
}

func TestPager_OpenBeforeMetadata(t *testing.T) {
	p, err := New(7, Circular)
	if err != nil {
		t.Fatal(err)
	}

	at := canon.Entry{Book: exo, Chapter: 3}
	if err := p.Open(at); !errors.Is(err, canon.ErrMetadataUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if p.Ready() {
		t.Fatal("pager should not be ready")
	}
	if p.Step(1) {
		t.Error("step before ready should be a no-op")
	}

	p.SetIndex(testIndex(t))
	if !p.Ready() {
		t.Fatal("pager should be ready after SetIndex")
	}
	if p.Current() != at {
		t.Errorf("current = %v, want %v", p.Current(), at)
	}
}

func TestPager_RecenterDeferredWithoutIndex(t *testing.T) {
	p := openPager(t, 5, canon.Entry{Book: gen, Chapter: 10})
	before := p.Window()

	p.SetIndex(nil)
	if p.Step(2) {
		t.Fatal("recenter without a canon should be deferred")
	}
	if p.Window().CenterEntry() != before.CenterEntry() {
		t.Error("window rebuilt without a canon")
	}

	p.SetIndex(testIndex(t))
	if p.Window().CenterEntry() != (canon.Entry{Book: gen, Chapter: 12}) {
		t.Errorf("center after refresh = %v", p.Window().CenterEntry())
	}
}

func TestPager_SetIndexClampsToSmallerCanon(t *testing.T) {
	p := openPager(t, 7, canon.Entry{Book: gen, Chapter: 40})

	small, err := canon.Build([]canon.BookMetadata{{ID: 1, Name: "Genesis", Chapters: 10}})
	if err != nil {
		t.Fatal(err)
	}
	p.SetIndex(small)
	if p.Current() != (canon.Entry{Book: gen, Chapter: 10}) {
		t.Errorf("current = %v", p.Current())
	}
}

func TestPager_OpenWhileIndexRemovedWinsOnRefresh(t *testing.T) {
	p := openPager(t, 7, canon.Entry{Book: gen, Chapter: 10})

	p.SetIndex(nil)
	want := canon.Entry{Book: exo, Chapter: 7}
	if err := p.Open(want); !errors.Is(err, canon.ErrMetadataUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if p.Current() != want {
		t.Errorf("current while waiting = %v, want %v", p.Current(), want)
	}

	p.SetIndex(testIndex(t))
	if p.Current() != want {
		t.Errorf("current after refresh = %v, want %v", p.Current(), want)
	}
	if p.Window().CenterEntry() != want || p.State() != Centered {
		t.Errorf("window centered on %v, state %v", p.Window().CenterEntry(), p.State())
	}
}
