package canon

import "fmt"

// Normalize maps any integer offset into [0, n) using true modulo, so
// negative offsets wrap to the tail of the canon.
func Normalize(offset, n int) int {
	return ((offset % n) + n) % n
}

// Offset returns the position of (book, chapter) in the canon.
func (idx *Index) Offset(book, chapter int) (int, error) {
	i, ok := idx.byID[book]
	if !ok {
		return 0, fmt.Errorf("%w: book %d", ErrPositionNotFound, book)
	}
	if chapter < 1 || chapter > idx.books[i].Chapters {
		return 0, fmt.Errorf("%w: %s has no chapter %d", ErrPositionNotFound, idx.books[i].Name, chapter)
	}
	return idx.starts[i] + chapter - 1, nil
}

// EntryAt returns the entry at offset, wrapping around both ends.
func (idx *Index) EntryAt(offset int) Entry {
	return idx.entries[Normalize(offset, len(idx.entries))]
}

// Clamp pulls chapter into the valid range of a known book.
func (idx *Index) Clamp(book, chapter int) (Entry, error) {
	b, ok := idx.Book(book)
	if !ok {
		return Entry{}, fmt.Errorf("%w: book %d", ErrPositionNotFound, book)
	}
	if chapter < 1 {
		chapter = 1
	}
	if chapter > b.Chapters {
		chapter = b.Chapters
	}
	return Entry{Book: book, Chapter: chapter}, nil
}

func (idx *Index) Next(e Entry) Entry {
	return idx.step(e, 1)
}

func (idx *Index) Prev(e Entry) Entry {
	return idx.step(e, -1)
}

func (idx *Index) step(e Entry, delta int) Entry {
	off, err := idx.Offset(e.Book, e.Chapter)
	if err != nil {
		return e
	}
	return idx.EntryAt(off + delta)
}

// NextBook returns chapter 1 of the following book, wrapping after the last.
func (idx *Index) NextBook(e Entry) Entry {
	return idx.stepBook(e, 1)
}

// PrevBook returns chapter 1 of the preceding book, wrapping before the first.
func (idx *Index) PrevBook(e Entry) Entry {
	return idx.stepBook(e, -1)
}

func (idx *Index) stepBook(e Entry, delta int) Entry {
	i, ok := idx.byID[e.Book]
	if !ok {
		return e
	}
	b := idx.books[Normalize(i+delta, len(idx.books))]
	return Entry{Book: b.ID, Chapter: 1}
}
