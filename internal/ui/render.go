package ui

import (
	"fmt"
	"regexp"
	"strings"

	"versemate-tui/internal/canon"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

func stripHTMLTags(s string) string {
	return htmlTag.ReplaceAllString(s, "")
}

// abbrev shortens a book name for the slot tabs: "Genesis" -> "Gen",
// "1 John" -> "1Jo".
func abbrev(name string) string {
	compact := []rune(strings.ReplaceAll(name, " ", ""))
	if len(compact) < 3 {
		return string(compact)
	}
	return string(compact[:3])
}

func (m Model) slotLabel(e canon.Entry) string {
	label := e.String()
	if idx := m.pager.Index(); idx != nil {
		if b, ok := idx.Book(e.Book); ok {
			label = fmt.Sprintf("%s %d", abbrev(b.Name), e.Chapter)
		}
	}
	if m.bookmarked[e] {
		label += "*"
	}
	return label
}

func (m Model) entryName(e canon.Entry) string {
	if idx := m.pager.Index(); idx != nil {
		return idx.Name(e)
	}
	return e.String()
}

func (m Model) renderBookmarks() string {
	if len(m.marks) == 0 {
		return m.styles.Help.Render("  No bookmarks yet. Press b on a chapter to add one.")
	}
	var sb strings.Builder
	for i, e := range m.marks {
		line := "  " + m.entryName(e)
		if i == m.markCursor {
			line = m.styles.ActiveTab.Render("> " + m.entryName(e))
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func (m Model) renderTabs() string {
	w := m.pager.Window()
	tabs := make([]string, w.Len())
	for i, s := range w.Slots {
		style := m.styles.Tab
		if i == m.pager.FocusIndex() {
			style = m.styles.ActiveTab
		}
		tabs[i] = style.Render(m.slotLabel(s.Entry))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) wrapWidth() int {
	return max(20, min(m.width-6, 80))
}

func (m Model) renderChapter(e canon.Entry) string {
	verses, ok := m.chapters[e]
	switch {
	case !ok && m.reader == nil:
		return m.styles.Help.Render("Chapter text unavailable offline.")
	case !ok:
		return m.styles.Help.Render("Loading " + m.slotLabel(e) + "...")
	case len(verses) == 0:
		return m.styles.Help.Render(m.entryName(e) + " is not saved for offline reading.")
	}

	width := m.wrapWidth()
	var sb strings.Builder
	for _, v := range verses {
		num := m.styles.VerseNum.Render(fmt.Sprintf("%3d", v.Verse))
		text := wordwrap.String(stripHTMLTags(v.Text), width)
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			prefix := "     "
			if i == 0 {
				prefix = num + "  "
			}
			sb.WriteString(prefix + m.styles.Text.Render(line) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
