package settings

import (
	"encoding/json"
	"os"
	"path/filepath"

	"versemate-tui/internal/pager"
)

type Settings struct {
	Translation    string `json:"translation"`
	CurrentBook    int    `json:"current_book"`
	CurrentChapter int    `json:"current_chapter"`
	Theme          string `json:"theme"`    // theme slug
	Boundary       string `json:"boundary"` // "circular" or "clamp"
	BooksFile      string `json:"books_file,omitempty"`
	APIBaseURL     string `json:"api_base_url,omitempty"`
}

func Default() Settings {
	return Settings{
		Translation:    "KJV",
		CurrentBook:    1,
		CurrentChapter: 1,
		Theme:          "catppuccin-mocha",
		Boundary:       "circular",
	}
}

// Policy returns the configured boundary policy, falling back to circular
// for unknown values.
func (s Settings) Policy() pager.Policy {
	p, err := pager.ParsePolicy(s.Boundary)
	if err != nil {
		return pager.Circular
	}
	return p
}

func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "versemate")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "versemate")
}

func configPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads the config file over the defaults. A missing or malformed file
// yields the defaults.
func Load() Settings {
	s := Default()
	data, err := os.ReadFile(configPath())
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Default()
	}
	return s
}

func Save(s Settings) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0o644)
}
