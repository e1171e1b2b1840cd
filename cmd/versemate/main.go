package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"versemate-tui/internal/api"
	"versemate-tui/internal/settings"
	"versemate-tui/internal/store"
	"versemate-tui/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "versemate",
		Short: "Read the Bible chapter by chapter in the terminal",
		Long: `versemate pages through the Bible a chapter at a time. The chapters
around the current one are kept ready, and paging past Revelation 22
continues at Genesis 1.`,
		SilenceUsage: true,
		RunE:         runReader,
	}
	rootCmd.PersistentFlags().Bool("debug", os.Getenv("DEBUG") != "", "Write debug logs to versemate.log")
	rootCmd.Flags().String("translation", "", "Translation to read (default from config)")
	rootCmd.Flags().String("books-file", "", "JSON file with the book list to page through")
	rootCmd.Flags().Bool("offline", false, "Do not contact the API")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "versemate %s\n", version)
		},
	}

	rootCmd.AddCommand(newWindowCmd(), newBooksCmd(), versionCmd)
	return rootCmd
}

// setupLogging sends slog output to a file when debugging, since the
// terminal belongs to the reader. Otherwise logs are dropped.
func setupLogging(cmd *cobra.Command) (func(), error) {
	debug, _ := cmd.Flags().GetBool("debug")
	if !debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() {}, nil
	}
	f, err := tea.LogToFile(filepath.Join(settings.Dir(), "versemate.log"), "versemate")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() { f.Close() }, nil
}

func runReader(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(settings.Dir(), 0o755); err != nil {
		return err
	}
	closeLog, err := setupLogging(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := settings.Load()
	if t, _ := cmd.Flags().GetString("translation"); t != "" {
		cfg.Translation = t
	}
	if f, _ := cmd.Flags().GetString("books-file"); f != "" {
		cfg.BooksFile = f
	}

	db, err := store.Open(store.DBPath())
	if err != nil {
		return fmt.Errorf("open offline store: %w", err)
	}
	defer db.Close()

	var client *api.Client
	if offline, _ := cmd.Flags().GetBool("offline"); !offline {
		client = api.NewClient(cfg.APIBaseURL)
		client.SetCache(db)
	}

	const minCols, minRows = 60, 16
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && (w < minCols || h < minRows) {
		fmt.Fprintf(os.Stderr, "terminal is %dx%d; versemate needs at least %dx%d\n", w, h, minCols, minRows)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model, err := ui.NewModel(ui.Options{Settings: cfg, Client: client, Store: db, Context: ctx})
	if err != nil {
		return err
	}
	slog.Info("starting reader", slog.String("translation", cfg.Translation),
		slog.Int("book", cfg.CurrentBook), slog.Int("chapter", cfg.CurrentChapter))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running reader: %w", err)
	}
	return nil
}
