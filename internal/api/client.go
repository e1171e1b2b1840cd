package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"versemate-tui/internal/canon"
)

const DefaultBaseURL = "https://bolls.life"

// ChapterCache is consulted before the network and filled after a network hit.
type ChapterCache interface {
	HasChapter(translation string, book, chapter int) bool
	GetChapter(translation string, book, chapter int) ([]Verse, error)
	PutChapter(translation string, book, chapter int, verses []Verse) error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      ChapterCache
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) SetCache(cache ChapterCache) {
	c.cache = cache
}

type Translation struct {
	ShortName string `json:"short_name"`
	FullName  string `json:"full_name"`
	Updated   int64  `json:"updated"`
	Dir       string `json:"dir,omitempty"`
}

type LanguageGroup struct {
	Language     string        `json:"language"`
	Translations []Translation `json:"translations"`
}

type Book struct {
	BookID     int    `json:"bookid"`
	ChronOrder int    `json:"chronorder"`
	Name       string `json:"name"`
	Chapters   int    `json:"chapters"`
}

type Verse struct {
	PK          int    `json:"pk"`
	Verse       int    `json:"verse"`
	Text        string `json:"text"`
	Translation string `json:"translation,omitempty"`
	Book        int    `json:"book,omitempty"`
	Chapter     int    `json:"chapter,omitempty"`
}

// Books converts the API book list into canon metadata.
func Books(books []Book) []canon.BookMetadata {
	out := make([]canon.BookMetadata, 0, len(books))
	for _, b := range books {
		out = append(out, canon.BookMetadata{
			ID:        b.BookID,
			Name:      b.Name,
			Chapters:  b.Chapters,
			Testament: canon.TestamentOf(b.BookID),
		})
	}
	return out
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// GetTranslations returns the English translations offered by the server.
func (c *Client) GetTranslations(ctx context.Context) ([]Translation, error) {
	var groups []LanguageGroup
	if err := c.getJSON(ctx, "/static/bolls/app/views/languages.json", &groups); err != nil {
		return nil, err
	}
	for _, g := range groups {
		if g.Language == "English" {
			return g.Translations, nil
		}
	}
	return nil, nil
}

func (c *Client) GetBooks(ctx context.Context, translation string) ([]Book, error) {
	var books []Book
	if err := c.getJSON(ctx, fmt.Sprintf("/get-books/%s/", translation), &books); err != nil {
		return nil, fmt.Errorf("get books %s: %w", translation, err)
	}
	return books, nil
}

func (c *Client) GetChapter(ctx context.Context, translation string, book, chapter int) ([]Verse, error) {
	if c.cache != nil && c.cache.HasChapter(translation, book, chapter) {
		verses, err := c.cache.GetChapter(translation, book, chapter)
		if err == nil {
			return verses, nil
		}
		slog.Warn("chapter cache read failed", slog.String("translation", translation),
			slog.Int("book", book), slog.Int("chapter", chapter), slog.String("error", err.Error()))
	}

	var verses []Verse
	if err := c.getJSON(ctx, fmt.Sprintf("/get-text/%s/%d/%d/", translation, book, chapter), &verses); err != nil {
		return nil, fmt.Errorf("get chapter %s %d:%d: %w", translation, book, chapter, err)
	}

	if c.cache != nil && len(verses) > 0 {
		if err := c.cache.PutChapter(translation, book, chapter, verses); err != nil {
			slog.Warn("chapter cache write failed", slog.String("error", err.Error()))
		}
	}
	return verses, nil
}
