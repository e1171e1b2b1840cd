// Package canon flattens book metadata into the ordered, cyclic sequence of
// every (book, chapter) pair and maps positions in that sequence back and
// forth.
package canon

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrMetadataUnavailable means the book list has not arrived (or is
	// unusable) yet. Callers show a loading state and wait.
	ErrMetadataUnavailable = errors.New("book metadata unavailable")

	// ErrPositionNotFound means a (book, chapter) pair is not part of the canon.
	ErrPositionNotFound = errors.New("position not found in canon")
)

type Testament string

const (
	OldTestament Testament = "OT"
	NewTestament Testament = "NT"
)

// TestamentOf reports the testament of a book in the standard 66-book ordering.
func TestamentOf(bookID int) Testament {
	if bookID <= 39 {
		return OldTestament
	}
	return NewTestament
}

type BookMetadata struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Chapters  int       `json:"chapters"`
	Testament Testament `json:"testament,omitempty"`
}

// Entry is a single chapter of the canon.
type Entry struct {
	Book    int `json:"book"`
	Chapter int `json:"chapter"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%d:%d", e.Book, e.Chapter)
}

// Index is the flattened canon. It is never modified after Build; a refresh
// of the metadata produces a new Index.
type Index struct {
	books   []BookMetadata
	entries []Entry
	// starts[i] is the offset of chapter 1 of books[i].
	starts []int
	byID   map[int]int
}

// Build sorts books by ID and flattens them into an Index.
func Build(books []BookMetadata) (*Index, error) {
	if len(books) == 0 {
		return nil, ErrMetadataUnavailable
	}

	sorted := make([]BookMetadata, len(books))
	copy(sorted, books)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	total := 0
	byID := make(map[int]int, len(sorted))
	for i, b := range sorted {
		if b.ID <= 0 {
			return nil, fmt.Errorf("%w: book id %d", ErrMetadataUnavailable, b.ID)
		}
		if b.Chapters <= 0 {
			return nil, fmt.Errorf("%w: book %d has %d chapters", ErrMetadataUnavailable, b.ID, b.Chapters)
		}
		if _, dup := byID[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate book id %d", ErrMetadataUnavailable, b.ID)
		}
		if b.Testament == "" {
			sorted[i].Testament = TestamentOf(b.ID)
		}
		byID[b.ID] = i
		total += b.Chapters
	}

	idx := &Index{
		books:   sorted,
		entries: make([]Entry, 0, total),
		starts:  make([]int, len(sorted)),
		byID:    byID,
	}
	for i, b := range sorted {
		idx.starts[i] = len(idx.entries)
		for ch := 1; ch <= b.Chapters; ch++ {
			idx.entries = append(idx.entries, Entry{Book: b.ID, Chapter: ch})
		}
	}
	return idx, nil
}

// Len returns the number of chapters in the canon.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func (idx *Index) Books() []BookMetadata {
	out := make([]BookMetadata, len(idx.books))
	copy(out, idx.books)
	return out
}

func (idx *Index) Book(id int) (BookMetadata, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return BookMetadata{}, false
	}
	return idx.books[i], true
}

func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Name returns a display label such as "Genesis 5".
func (idx *Index) Name(e Entry) string {
	if b, ok := idx.Book(e.Book); ok {
		return fmt.Sprintf("%s %d", b.Name, e.Chapter)
	}
	return e.String()
}
