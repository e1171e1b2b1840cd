package store

import (
	"time"

	"versemate-tui/internal/canon"
)

// ToggleBookmark bookmarks the chapter, or removes the bookmark if it is
// already there. It reports whether the chapter is bookmarked afterwards.
func (s *Store) ToggleBookmark(e canon.Entry) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
DELETE FROM offline_bookmarks WHERE book_id = ? AND chapter_number = ?`, e.Book, e.Chapter)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return false, tx.Commit()
	}

	_, err = tx.Exec(`
INSERT INTO offline_bookmarks (book_id, chapter_number, created_at)
VALUES (?, ?, ?)`, e.Book, e.Chapter, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// Bookmarks returns the bookmarked chapters, newest first.
func (s *Store) Bookmarks() ([]canon.Entry, error) {
	rows, err := s.db.Query(`
SELECT book_id, chapter_number FROM offline_bookmarks
ORDER BY favorite_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []canon.Entry
	for rows.Next() {
		var e canon.Entry
		if err := rows.Scan(&e.Book, &e.Chapter); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
