package store

import (
	"errors"
	"fmt"

	"versemate-tui/internal/api"
	"versemate-tui/internal/canon"
)

// ErrNotCached is returned by GetChapter for chapters never saved offline.
var ErrNotCached = errors.New("chapter not cached")

// SaveBooks replaces the cached book list of a translation.
func (s *Store) SaveBooks(translation string, books []canon.BookMetadata) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM offline_books WHERE translation = ?", translation); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
INSERT INTO offline_books (translation, book_id, name, chapters, testament)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range books {
		if _, err := stmt.Exec(translation, b.ID, b.Name, b.Chapters, string(b.Testament)); err != nil {
			return fmt.Errorf("insert book %d: %w", b.ID, err)
		}
	}
	if err := s.touch(tx, booksKey(translation), int64(len(books))); err != nil {
		return err
	}
	return tx.Commit()
}

// Books returns the cached book list of a translation ordered by ID. An
// empty result means nothing is cached.
func (s *Store) Books(translation string) ([]canon.BookMetadata, error) {
	rows, err := s.db.Query(`
SELECT book_id, name, chapters, testament FROM offline_books
WHERE translation = ? ORDER BY book_id`, translation)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []canon.BookMetadata
	for rows.Next() {
		var b canon.BookMetadata
		var testament string
		if err := rows.Scan(&b.ID, &b.Name, &b.Chapters, &testament); err != nil {
			return nil, err
		}
		b.Testament = canon.Testament(testament)
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *Store) HasChapter(translation string, book, chapter int) bool {
	var n int
	err := s.db.QueryRow(`
SELECT COUNT(*) FROM offline_verses
WHERE version_key = ? AND book_id = ? AND chapter_number = ?`, translation, book, chapter).Scan(&n)
	return err == nil && n > 0
}

func (s *Store) GetChapter(translation string, book, chapter int) ([]api.Verse, error) {
	rows, err := s.db.Query(`
SELECT verse_number, text FROM offline_verses
WHERE version_key = ? AND book_id = ? AND chapter_number = ?
ORDER BY verse_number`, translation, book, chapter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var verses []api.Verse
	for rows.Next() {
		v := api.Verse{Translation: translation, Book: book, Chapter: chapter}
		if err := rows.Scan(&v.Verse, &v.Text); err != nil {
			return nil, err
		}
		verses = append(verses, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(verses) == 0 {
		return nil, fmt.Errorf("%s %d:%d: %w", translation, book, chapter, ErrNotCached)
	}
	return verses, nil
}

func (s *Store) PutChapter(translation string, book, chapter int, verses []api.Verse) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
INSERT OR REPLACE INTO offline_verses (version_key, book_id, chapter_number, verse_number, text)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var size int64
	for _, v := range verses {
		if _, err := stmt.Exec(translation, book, chapter, v.Verse, v.Text); err != nil {
			return fmt.Errorf("insert verse %d: %w", v.Verse, err)
		}
		size += int64(len(v.Text))
	}
	if err := s.touch(tx, chapterKey(translation, book, chapter), size); err != nil {
		return err
	}
	return tx.Commit()
}
