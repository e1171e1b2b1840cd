package canon

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseReference reads references such as "Gen 5", "genesis 50:3",
// "1 John 2", "66 22" or "Revelation". The book is matched by numeric ID,
// full name, or name prefix (first match in canonical order, spaces and case
// ignored). The chapter is clamped into the book's range and defaults to 1.
// The returned verse is 0 when none was given.
func ParseReference(idx *Index, ref string) (Entry, int, error) {
	if idx == nil {
		return Entry{}, 0, ErrMetadataUnavailable
	}

	parts := strings.Fields(strings.TrimSpace(ref))
	if len(parts) == 0 {
		return Entry{}, 0, fmt.Errorf("empty reference")
	}

	chapter, verse := 1, 0
	bookParts := parts
	if len(parts) > 1 && startsWithDigit(parts[len(parts)-1]) {
		cv := strings.SplitN(parts[len(parts)-1], ":", 2)
		c, err := strconv.Atoi(cv[0])
		if err != nil {
			return Entry{}, 0, fmt.Errorf("invalid chapter %q", cv[0])
		}
		chapter = c
		if len(cv) == 2 {
			v, err := strconv.Atoi(cv[1])
			if err != nil {
				return Entry{}, 0, fmt.Errorf("invalid verse %q", cv[1])
			}
			verse = v
		}
		bookParts = parts[:len(parts)-1]
	}

	book, err := lookupBook(idx, strings.Join(bookParts, " "))
	if err != nil {
		return Entry{}, 0, err
	}
	e, err := idx.Clamp(book, chapter)
	if err != nil {
		return Entry{}, 0, err
	}
	return e, verse, nil
}

func lookupBook(idx *Index, name string) (int, error) {
	if id, err := strconv.Atoi(name); err == nil {
		if _, ok := idx.Book(id); ok {
			return id, nil
		}
		return 0, fmt.Errorf("%w: book %d", ErrPositionNotFound, id)
	}

	key := foldName(name)
	if key == "" {
		return 0, fmt.Errorf("%w: empty book name", ErrPositionNotFound)
	}
	for _, b := range idx.books {
		if foldName(b.Name) == key {
			return b.ID, nil
		}
	}
	for _, b := range idx.books {
		if strings.HasPrefix(foldName(b.Name), key) {
			return b.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: no book named %q", ErrPositionNotFound, name)
}

func foldName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
