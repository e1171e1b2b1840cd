package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"versemate-tui/internal/canon"
	"versemate-tui/internal/metadata"
	"versemate-tui/internal/pager"
	"versemate-tui/internal/settings"
	"versemate-tui/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type slotOutput struct {
	Key     string `json:"key"`
	Book    int    `json:"book"`
	Chapter int    `json:"chapter"`
	Name    string `json:"name"`
	Offset  int    `json:"offset"`
}

type windowOutput struct {
	Size   int          `json:"size"`
	Policy string       `json:"policy"`
	Center int          `json:"center"`
	Slots  []slotOutput `json:"slots"`
}

type bookOutput struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Chapters  int    `json:"chapters"`
	Testament string `json:"testament"`
	Offset    int    `json:"offset"`
}

var centerMark = lipgloss.NewStyle().Bold(true)

func newWindowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "window <reference>",
		Short: "Print the chapters paged around a reference",
		Example: `  versemate window Gen 50
  versemate window "Revelation 22" --size 5 --policy clamp`,
		Args: cobra.MinimumNArgs(1),
		RunE: runWindow,
	}
	cmd.Flags().Int("size", pager.ReaderSize, "Window size (odd)")
	cmd.Flags().String("policy", "", "Boundary policy: circular|clamp (default from config)")
	cmd.Flags().String("books-file", "", "JSON file with the book list")
	cmd.Flags().Bool("json", false, "Print machine-readable output")
	return cmd
}

func newBooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the books of the canon with their starting offsets",
		Args:  cobra.NoArgs,
		RunE:  runBooks,
	}
	cmd.Flags().String("books-file", "", "JSON file with the book list")
	cmd.Flags().Bool("json", false, "Print machine-readable output")
	return cmd
}

// loadIndex builds the canon from the books file, the offline cache if one
// exists, or the built-in book list. It never contacts the API.
func loadIndex(cmd *cobra.Command, cfg settings.Settings) (*canon.Index, error) {
	booksFile, _ := cmd.Flags().GetString("books-file")
	if booksFile == "" {
		booksFile = cfg.BooksFile
	}

	var db *store.Store
	if _, err := os.Stat(store.DBPath()); err == nil {
		if db, err = store.Open(store.DBPath()); err == nil {
			defer db.Close()
		}
	}
	return metadata.NewLoader(booksFile, db, nil, cfg.Translation).Load(cmd.Context())
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg := settings.Load()
	size, _ := cmd.Flags().GetInt("size")
	policyName, _ := cmd.Flags().GetString("policy")
	if policyName == "" {
		policyName = cfg.Boundary
	}
	policy, err := pager.ParsePolicy(policyName)
	if err != nil {
		return err
	}

	idx, err := loadIndex(cmd, cfg)
	if err != nil {
		return err
	}
	center, _, err := canon.ParseReference(idx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	w, err := pager.Build(idx, center, size, policy)
	if err != nil {
		return err
	}

	out := windowOutput{Size: size, Policy: policy.String(), Center: w.Center}
	for _, s := range w.Slots {
		off, _ := idx.Offset(s.Entry.Book, s.Entry.Chapter)
		out.Slots = append(out.Slots, slotOutput{
			Key:     s.Key,
			Book:    s.Entry.Book,
			Chapter: s.Entry.Chapter,
			Name:    idx.Name(s.Entry),
			Offset:  off,
		})
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for i, s := range out.Slots {
		line := fmt.Sprintf("  %-7s %5d  %s", s.Key, s.Offset, s.Name)
		if i == out.Center {
			line = centerMark.Render("> " + line[2:])
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func runBooks(cmd *cobra.Command, args []string) error {
	idx, err := loadIndex(cmd, settings.Load())
	if err != nil {
		return err
	}

	var out []bookOutput
	for _, b := range idx.Books() {
		off, _ := idx.Offset(b.ID, 1)
		out = append(out, bookOutput{
			ID:        b.ID,
			Name:      b.Name,
			Chapters:  b.Chapters,
			Testament: string(b.Testament),
			Offset:    off,
		})
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, b := range out {
		fmt.Fprintf(cmd.OutOrStdout(), "%3d  %-16s %2s %4d chapters  @%d\n", b.ID, b.Name, b.Testament, b.Chapters, b.Offset)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d books, %d chapters\n", len(out), idx.Len())
	return nil
}
