package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// BooksChangedMsg reports that the books file was written, created or replaced.
type BooksChangedMsg struct {
	Path string
}

const debounceDelay = 500 * time.Millisecond

// Watch waits for the next change to path and reports it once the writes
// have settled. The directory is watched so editors that replace the file
// are seen too. Re-issue the command after each message. The command returns
// nil once ctx is done.
func Watch(ctx context.Context, path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			slog.Warn("watcher unavailable", slog.String("error", err.Error()))
			return nil
		}
		defer w.Close()

		target := filepath.Clean(path)
		if err := w.Add(filepath.Dir(target)); err != nil {
			slog.Warn("cannot watch books file", slog.String("path", target), slog.String("error", err.Error()))
			return nil
		}

		debounce := time.NewTimer(time.Hour)
		debounce.Stop()

		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				debounce.Reset(debounceDelay)
			case <-debounce.C:
				return BooksChangedMsg{Path: target}
			case <-ctx.Done():
				return nil
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				slog.Debug("watch error", slog.String("error", err.Error()))
			}
		}
	}
}
