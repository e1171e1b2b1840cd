// Package metadata loads the book list the canon is built from and keeps the
// current canon for the rest of the process.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"versemate-tui/internal/api"
	"versemate-tui/internal/canon"
	"versemate-tui/internal/store"
)

// Source provides book metadata. An empty result with a nil error means the
// source has nothing to offer.
type Source interface {
	Name() string
	Books(ctx context.Context) ([]canon.BookMetadata, error)
}

// RemoteSource asks the bolls.life API for the books of a translation.
type RemoteSource struct {
	Client      *api.Client
	Translation string
}

func (s RemoteSource) Name() string { return "remote:" + s.Translation }

func (s RemoteSource) Books(ctx context.Context) ([]canon.BookMetadata, error) {
	books, err := s.Client.GetBooks(ctx, s.Translation)
	if err != nil {
		return nil, err
	}
	return api.Books(books), nil
}

// FileSource reads a JSON array of {"id","name","chapters","testament"}.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Books(ctx context.Context) ([]canon.BookMetadata, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var books []canon.BookMetadata
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return books, nil
}

// BooksMaxAge is how long a cached book list is preferred over asking the API.
const BooksMaxAge = 7 * 24 * time.Hour

// StoreSource reads a translation's book list from the offline database.
// With MaxAge set, a list saved longer ago than that counts as absent.
type StoreSource struct {
	Store       *store.Store
	Translation string
	MaxAge      time.Duration
}

func (s StoreSource) Name() string {
	if s.MaxAge > 0 {
		return "store-fresh:" + s.Translation
	}
	return "store:" + s.Translation
}

func (s StoreSource) Books(ctx context.Context) ([]canon.BookMetadata, error) {
	if s.MaxAge > 0 {
		r, ok, err := s.Store.Resource("books:" + s.Translation)
		if err != nil {
			return nil, err
		}
		if !ok || time.Since(r.DownloadedAt) > s.MaxAge {
			return nil, nil
		}
	}
	return s.Store.Books(s.Translation)
}

// StandardSource is the built-in 66-book canon.
type StandardSource struct{}

func (StandardSource) Name() string { return "standard" }

func (StandardSource) Books(ctx context.Context) ([]canon.BookMetadata, error) {
	return canon.Standard(), nil
}

// Loader tries its sources in order and builds the canon from the first one
// that yields a usable book list.
type Loader struct {
	Sources []Source
	// Cache, when set, receives book lists that came from a RemoteSource.
	Cache       *store.Store
	Translation string
}

func (l *Loader) Load(ctx context.Context) (*canon.Index, error) {
	for _, src := range l.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		books, err := src.Books(ctx)
		if err != nil {
			slog.Warn("metadata source failed", slog.String("source", src.Name()), slog.String("error", err.Error()))
			continue
		}
		if len(books) == 0 {
			continue
		}
		idx, err := canon.Build(books)
		if err != nil {
			slog.Warn("metadata unusable", slog.String("source", src.Name()), slog.String("error", err.Error()))
			continue
		}

		if _, remote := src.(RemoteSource); remote && l.Cache != nil {
			if err := l.Cache.SaveBooks(l.Translation, idx.Books()); err != nil {
				slog.Warn("caching books failed", slog.String("error", err.Error()))
			}
		}
		slog.Info("canon loaded", slog.String("source", src.Name()),
			slog.Int("books", len(books)), slog.Int("chapters", idx.Len()))
		return idx, nil
	}
	return nil, canon.ErrMetadataUnavailable
}

// Catalog holds the canon shared by the process. It is replaced wholesale,
// never patched.
type Catalog struct {
	mu  sync.RWMutex
	idx *canon.Index
}

// Index returns the current canon, or nil while none has loaded.
func (c *Catalog) Index() *canon.Index {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.idx
}

func (c *Catalog) Replace(idx *canon.Index) {
	c.mu.Lock()
	c.idx = idx
	c.mu.Unlock()
}

// Load runs the loader and installs its result. On failure the previous
// canon, if any, is kept.
func (c *Catalog) Load(ctx context.Context, l *Loader) (*canon.Index, error) {
	idx, err := l.Load(ctx)
	if err != nil {
		return c.Index(), err
	}
	c.Replace(idx)
	return idx, nil
}

// NewLoader orders the sources the reader uses: an explicit books file, a
// recently cached list, the API, an older cached list, and finally the
// built-in canon. Nil dependencies drop their sources.
func NewLoader(booksFile string, st *store.Store, client *api.Client, translation string) *Loader {
	l := &Loader{Cache: st, Translation: translation}
	if booksFile != "" {
		l.Sources = append(l.Sources, FileSource{Path: booksFile})
	}
	switch {
	case st != nil && client != nil:
		l.Sources = append(l.Sources,
			StoreSource{Store: st, Translation: translation, MaxAge: BooksMaxAge},
			RemoteSource{Client: client, Translation: translation},
			StoreSource{Store: st, Translation: translation},
		)
	case st != nil:
		l.Sources = append(l.Sources, StoreSource{Store: st, Translation: translation})
	case client != nil:
		l.Sources = append(l.Sources, RemoteSource{Client: client, Translation: translation})
	}
	l.Sources = append(l.Sources, StandardSource{})
	return l
}
