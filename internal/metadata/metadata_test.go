package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"versemate-tui/internal/api"
	"versemate-tui/internal/canon"
	"versemate-tui/internal/store"
)

type staticSource struct {
	books []canon.BookMetadata
	err   error
	calls int
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Books(ctx context.Context) ([]canon.BookMetadata, error) {
	s.calls++
	return s.books, s.err
}

func writeBooksFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "books.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoader_FirstUsableSourceWins(t *testing.T) {
	failing := &staticSource{err: errors.New("offline")}
	empty := &staticSource{}
	broken := &staticSource{books: []canon.BookMetadata{{ID: 1, Name: "Genesis", Chapters: 0}}}
	good := &staticSource{books: []canon.BookMetadata{{ID: 1, Name: "Genesis", Chapters: 3}}}
	after := &staticSource{books: canon.Standard()}

	l := &Loader{Sources: []Source{failing, empty, broken, good, after}}
	idx, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3", idx.Len())
	}
	if after.calls != 0 {
		t.Error("sources after the winner should not be consulted")
	}
}

func TestLoader_NothingAvailable(t *testing.T) {
	l := &Loader{Sources: []Source{&staticSource{err: errors.New("offline")}}}
	if _, err := l.Load(context.Background()); !errors.Is(err, canon.ErrMetadataUnavailable) {
		t.Errorf("err = %v, want ErrMetadataUnavailable", err)
	}
}

func TestFileSource(t *testing.T) {
	path := writeBooksFile(t, `[{"id":2,"name":"Mark","chapters":16},{"id":1,"name":"Matthew","chapters":28,"testament":"NT"}]`)
	idx, err := (&Loader{Sources: []Source{FileSource{Path: path}}}).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 44 {
		t.Errorf("Len() = %d, want 44", idx.Len())
	}
	if idx.EntryAt(0) != (canon.Entry{Book: 1, Chapter: 1}) {
		t.Errorf("first entry = %v", idx.EntryAt(0))
	}
}

func TestFileSource_Malformed(t *testing.T) {
	path := writeBooksFile(t, `not json`)
	if _, err := (FileSource{Path: path}).Books(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNewLoader_RemoteIsCached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"bookid":1,"name":"Genesis","chapters":50},{"bookid":2,"name":"Exodus","chapters":40}]`)
	}))
	defer srv.Close()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	l := NewLoader("", st, api.NewClient(srv.URL), "KJV")
	idx, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 90 {
		t.Fatalf("Len() = %d, want 90", idx.Len())
	}

	cached, err := st.Books("KJV")
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 2 {
		t.Fatalf("cached books = %d, want 2", len(cached))
	}

	// Second load is served by the store even with the server gone.
	srv.Close()
	idx, err = NewLoader("", st, api.NewClient(srv.URL), "KJV").Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 90 {
		t.Errorf("Len() from cache = %d", idx.Len())
	}
}

func TestStoreSource_StaleListRefreshedFromRemote(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `[{"bookid":1,"name":"Genesis","chapters":50},{"bookid":2,"name":"Exodus","chapters":40}]`)
	}))
	defer srv.Close()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if err := st.SaveBooks("KJV", []canon.BookMetadata{{ID: 1, Name: "Genesis", Chapters: 50}}); err != nil {
		t.Fatal(err)
	}

	client := api.NewClient(srv.URL)
	l := &Loader{
		Cache:       st,
		Translation: "KJV",
		Sources: []Source{
			StoreSource{Store: st, Translation: "KJV", MaxAge: time.Nanosecond},
			RemoteSource{Client: client, Translation: "KJV"},
			StoreSource{Store: st, Translation: "KJV"},
		},
	}
	time.Sleep(time.Millisecond)
	idx, err := l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 || idx.Len() != 90 {
		t.Fatalf("hits = %d, Len() = %d; stale list should be refreshed", hits.Load(), idx.Len())
	}
	if books, _ := st.Books("KJV"); len(books) != 2 {
		t.Errorf("cache not updated: %d books", len(books))
	}

	// With the API gone the stale list still serves.
	srv.Close()
	if err := st.SaveBooks("KJV", []canon.BookMetadata{{ID: 1, Name: "Genesis", Chapters: 50}}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	idx, err = l.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 50 {
		t.Errorf("Len() from stale cache = %d, want 50", idx.Len())
	}
}

func TestNewLoader_FallsBackToStandard(t *testing.T) {
	idx, err := NewLoader(filepath.Join(t.TempDir(), "missing.json"), nil, nil, "KJV").Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 1189 {
		t.Errorf("Len() = %d, want 1189", idx.Len())
	}
}

func TestLoader_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader("", nil, nil, "KJV").Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestCatalog(t *testing.T) {
	var c Catalog
	if c.Index() != nil {
		t.Fatal("new catalog should be empty")
	}

	first, err := c.Load(context.Background(), NewLoader("", nil, nil, "KJV"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Index() != first {
		t.Fatal("catalog did not install the loaded canon")
	}

	failing := &Loader{Sources: []Source{&staticSource{err: errors.New("offline")}}}
	kept, err := c.Load(context.Background(), failing)
	if err == nil {
		t.Fatal("expected error")
	}
	if kept != first || c.Index() != first {
		t.Error("failed load replaced the canon")
	}
}
