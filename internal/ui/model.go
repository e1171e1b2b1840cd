package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"versemate-tui/internal/api"
	"versemate-tui/internal/canon"
	"versemate-tui/internal/metadata"
	"versemate-tui/internal/pager"
	"versemate-tui/internal/settings"
	"versemate-tui/internal/store"
	"versemate-tui/internal/theme"
	"versemate-tui/internal/watcher"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type viewMode int

const (
	modeReader viewMode = iota
	modeGoto
	modeBookmarks
)

// Translations cycled when the server list is unavailable.
var fallbackTranslations = []string{"KJV", "WEB", "YLT", "ASV"}

// slotView renders one pager slot. Views are keyed by slot key and reused
// across recenters; only their entry and content change.
type slotView struct {
	entry    canon.Entry
	viewport viewport.Model
}

// chapterReader supplies chapter text: the API client online, the offline
// store otherwise.
type chapterReader interface {
	GetChapter(ctx context.Context, translation string, book, chapter int) ([]api.Verse, error)
}

type offlineChapters struct{ st *store.Store }

func (o offlineChapters) GetChapter(ctx context.Context, translation string, book, chapter int) ([]api.Verse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return o.st.GetChapter(translation, book, chapter)
}

var errNoStore = errors.New("bookmarks need the offline store")

type Options struct {
	Settings settings.Settings
	Client   *api.Client // nil reads chapters from Store only
	Store    *store.Store
	Context  context.Context
}

type Model struct {
	ctx      context.Context
	client   *api.Client
	reader   chapterReader
	store    *store.Store
	catalog  *metadata.Catalog
	pager    *pager.Pager
	settings settings.Settings
	theme    theme.Theme
	styles   theme.Styles

	slots        map[string]*slotView
	chapters     map[canon.Entry][]api.Verse
	inflight     map[canon.Entry]bool
	translations []api.Translation

	bookmarked map[canon.Entry]bool
	marks      []canon.Entry
	markCursor int

	textInput textinput.Model
	spinner   spinner.Model
	mode      viewMode
	width     int
	height    int
	ready     bool
	err       error
}

type canonLoadedMsg struct {
	translation string
	idx         *canon.Index
	err         error
}
type chapterLoadedMsg struct {
	translation string
	entry       canon.Entry
	verses      []api.Verse
	err         error
}
type translationsLoadedMsg struct{ translations []api.Translation }

func NewModel(opts Options) (Model, error) {
	p, err := pager.New(pager.ReaderSize, opts.Settings.Policy())
	if err != nil {
		return Model{}, err
	}
	// No canon yet: the position is kept until the books arrive.
	_ = p.Open(canon.Entry{Book: opts.Settings.CurrentBook, Chapter: opts.Settings.CurrentChapter})

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Placeholder = "Go to (e.g. Gen 5, 1 John 2, 66 22)"
	ti.CharLimit = 50
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	var reader chapterReader
	switch {
	case opts.Client != nil:
		reader = opts.Client
	case opts.Store != nil:
		reader = offlineChapters{opts.Store}
	}

	bookmarked := make(map[canon.Entry]bool)
	if opts.Store != nil {
		marks, err := opts.Store.Bookmarks()
		if err != nil {
			slog.Warn("loading bookmarks failed", slog.String("error", err.Error()))
		}
		for _, e := range marks {
			bookmarked[e] = true
		}
	}

	th := theme.ByName(opts.Settings.Theme)
	return Model{
		ctx:        ctx,
		client:     opts.Client,
		reader:     reader,
		store:      opts.Store,
		bookmarked: bookmarked,
		catalog:    &metadata.Catalog{},
		pager:      p,
		settings:   opts.Settings,
		theme:      th,
		styles:     th.Styles(),
		slots:      make(map[string]*slotView),
		chapters:   make(map[canon.Entry][]api.Verse),
		inflight:   make(map[canon.Entry]bool),
		textInput:  ti,
		spinner:    sp,
		mode:       modeReader,
	}, nil
}

func (m Model) loader() *metadata.Loader {
	return metadata.NewLoader(m.settings.BooksFile, m.store, m.client, m.settings.Translation)
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		loadCanon(m.ctx, m.loader()),
		watcher.Watch(m.ctx, m.settings.BooksFile),
	}
	if m.client != nil {
		cmds = append(cmds, loadTranslations(m.ctx, m.client))
	}
	return tea.Batch(cmds...)
}

// loadCanon tags the result with the loader's translation so a load that was
// overtaken by a translation switch can be dropped.
func loadCanon(ctx context.Context, loader *metadata.Loader) tea.Cmd {
	return func() tea.Msg {
		idx, err := loader.Load(ctx)
		return canonLoadedMsg{translation: loader.Translation, idx: idx, err: err}
	}
}

func loadTranslations(ctx context.Context, client *api.Client) tea.Cmd {
	return func() tea.Msg {
		translations, err := client.GetTranslations(ctx)
		if err != nil {
			slog.Warn("loading translations failed", slog.String("error", err.Error()))
			return nil
		}
		return translationsLoadedMsg{translations}
	}
}

func loadChapter(ctx context.Context, reader chapterReader, translation string, e canon.Entry) tea.Cmd {
	return func() tea.Msg {
		verses, err := reader.GetChapter(ctx, translation, e.Book, e.Chapter)
		return chapterLoadedMsg{translation: translation, entry: e, verses: verses, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeGoto:
			return m.updateGoto(msg)
		case modeBookmarks:
			return m.updateBookmarks(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.saveSettings()
			return m, tea.Quit
		case "h", "left":
			m.pager.Step(-1)
			return m, m.syncWindow()
		case "l", "right":
			m.pager.Step(1)
			return m, m.syncWindow()
		case "[", "]":
			if idx := m.pager.Index(); idx != nil {
				cur := m.pager.Current()
				next := idx.NextBook(cur)
				if msg.String() == "[" {
					next = idx.PrevBook(cur)
				}
				_ = m.pager.Open(next)
			}
			return m, m.syncWindow()
		case "g":
			m.mode = modeGoto
			m.textInput.SetValue("")
			m.textInput.Focus()
			return m, textinput.Blink
		case "b":
			m.toggleBookmark()
			return m, nil
		case "B":
			m.openBookmarks()
			return m, nil
		case "t":
			m.theme = theme.Next(m.theme.Slug)
			m.styles = m.theme.Styles()
			m.settings.Theme = m.theme.Slug
			m.refreshSlots(true)
			return m, nil
		case "T":
			cmd := m.switchTranslation(m.nextTranslation())
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		for _, v := range m.slots {
			v.viewport.Width = m.width
			v.viewport.Height = m.bodyHeight()
		}
		m.refreshSlots(true)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case canonLoadedMsg:
		if msg.translation != m.settings.Translation {
			slog.Debug("dropping canon for stale translation", slog.String("translation", msg.translation))
			return m, nil
		}
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.err = msg.err
		}
		if msg.idx != nil {
			m.err = nil
			m.catalog.Replace(msg.idx)
			m.pager.SetIndex(msg.idx)
			return m, m.syncWindow()
		}
		return m, nil

	case watcher.BooksChangedMsg:
		slog.Info("books file changed", slog.String("path", msg.Path))
		return m, tea.Batch(
			loadCanon(m.ctx, m.loader()),
			watcher.Watch(m.ctx, m.settings.BooksFile),
		)

	case translationsLoadedMsg:
		m.translations = msg.translations

	case chapterLoadedMsg:
		if msg.translation != m.settings.Translation {
			return m, nil
		}
		delete(m.inflight, msg.entry)
		switch {
		case errors.Is(msg.err, store.ErrNotCached):
			m.chapters[msg.entry] = nil
		case msg.err != nil:
			m.err = msg.err
			return m, nil
		default:
			m.chapters[msg.entry] = msg.verses
		}
		for _, v := range m.slots {
			if v.entry == msg.entry {
				v.viewport.SetContent(m.renderChapter(msg.entry))
			}
		}
		return m, nil

	}

	if v := m.focusedView(); v != nil {
		v.viewport, cmd = v.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateGoto(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeReader
		m.textInput.Blur()
		return m, nil
	case "enter":
		e, _, err := canon.ParseReference(m.pager.Index(), m.textInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.mode = modeReader
		m.textInput.Blur()
		if err := m.pager.Open(e); err != nil {
			m.err = err
		}
		return m, m.syncWindow()
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m Model) updateBookmarks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "B", "q":
		m.mode = modeReader
	case "j", "down":
		if m.markCursor < len(m.marks)-1 {
			m.markCursor++
		}
	case "k", "up":
		if m.markCursor > 0 {
			m.markCursor--
		}
	case "enter":
		if len(m.marks) == 0 {
			return m, nil
		}
		m.mode = modeReader
		if err := m.pager.Open(m.marks[m.markCursor]); err != nil {
			m.err = err
		}
		return m, m.syncWindow()
	}
	return m, nil
}

func (m *Model) toggleBookmark() {
	if m.store == nil {
		m.err = errNoStore
		return
	}
	cur := m.pager.Current()
	on, err := m.store.ToggleBookmark(cur)
	if err != nil {
		m.err = err
		return
	}
	if on {
		m.bookmarked[cur] = true
	} else {
		delete(m.bookmarked, cur)
	}
	slog.Debug("bookmark toggled", slog.String("entry", cur.String()), slog.Bool("on", on))
}

func (m *Model) openBookmarks() {
	if m.store == nil {
		m.err = errNoStore
		return
	}
	marks, err := m.store.Bookmarks()
	if err != nil {
		m.err = err
		return
	}
	m.marks = marks
	m.markCursor = 0
	m.mode = modeBookmarks
}

// syncWindow points every slot view at its current entry and requests the
// chapters that are not loaded yet.
func (m *Model) syncWindow() tea.Cmd {
	if !m.pager.Ready() {
		return nil
	}
	w := m.pager.Window()
	var cmds []tea.Cmd
	for _, s := range w.Slots {
		v, ok := m.slots[s.Key]
		if !ok {
			v = &slotView{viewport: viewport.New(m.width, m.bodyHeight())}
			m.slots[s.Key] = v
		}
		if !ok || v.entry != s.Entry {
			v.entry = s.Entry
			v.viewport.SetContent(m.renderChapter(s.Entry))
			v.viewport.GotoTop()
		}
		if cmd := m.requestChapter(s.Entry); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	m.evictChapters(w)
	return tea.Batch(cmds...)
}

func (m *Model) requestChapter(e canon.Entry) tea.Cmd {
	if m.reader == nil || m.inflight[e] {
		return nil
	}
	if _, ok := m.chapters[e]; ok {
		return nil
	}
	m.inflight[e] = true
	return loadChapter(m.ctx, m.reader, m.settings.Translation, e)
}

// evictChapters keeps the chapter cache from growing past a few windows.
func (m *Model) evictChapters(w pager.Window) {
	if len(m.chapters) <= 3*w.Len() {
		return
	}
	keep := make(map[canon.Entry]bool, w.Len())
	for _, e := range w.Entries() {
		keep[e] = true
	}
	for e := range m.chapters {
		if !keep[e] {
			delete(m.chapters, e)
		}
	}
}

func (m *Model) refreshSlots(top bool) {
	for _, v := range m.slots {
		v.viewport.SetContent(m.renderChapter(v.entry))
		if top {
			v.viewport.GotoTop()
		}
	}
}

func (m Model) focusedView() *slotView {
	if !m.pager.Ready() {
		return nil
	}
	return m.slots[pager.SlotKey(m.pager.FocusIndex())]
}

func (m Model) nextTranslation() string {
	names := fallbackTranslations
	if len(m.translations) > 0 {
		names = make([]string, len(m.translations))
		for i, t := range m.translations {
			names[i] = t.ShortName
		}
	}
	for i, n := range names {
		if n == m.settings.Translation {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// switchTranslation drops loaded text and reloads the book list, since
// translations may differ in books and chapter counts.
func (m *Model) switchTranslation(translation string) tea.Cmd {
	m.settings.Translation = translation
	m.chapters = make(map[canon.Entry][]api.Verse)
	m.inflight = make(map[canon.Entry]bool)
	m.refreshSlots(true)
	return loadCanon(m.ctx, m.loader())
}

func (m Model) saveSettings() {
	s := m.settings
	if m.pager.Ready() {
		cur := m.pager.Current()
		s.CurrentBook, s.CurrentChapter = cur.Book, cur.Chapter
	}
	if err := settings.Save(s); err != nil {
		slog.Error("saving settings failed", slog.String("error", err.Error()))
	}
}

func (m Model) bodyHeight() int {
	return max(1, m.height-6)
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if !m.pager.Ready() {
		msg := fmt.Sprintf("\n  %s Loading books...", m.spinner.View())
		if m.err != nil {
			msg += "\n\n  " + m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
		}
		return msg
	}

	idx := m.pager.Index()
	cur := m.pager.Current()
	title := fmt.Sprintf("%s  %s", m.settings.Translation, cur)
	if idx != nil {
		title = fmt.Sprintf("%s  %s", m.settings.Translation, idx.Name(cur))
	}

	var header string
	switch m.mode {
	case modeGoto:
		header = m.styles.Header.Render("Go to reference") + "\n" + m.textInput.View()
	case modeBookmarks:
		header = m.styles.Header.Render("Bookmarks") + "\n"
	default:
		header = m.styles.Header.Render(title) + "\n" + m.renderTabs()
	}

	body := ""
	if m.mode == modeBookmarks {
		body = m.renderBookmarks()
	} else if v := m.focusedView(); v != nil {
		body = v.viewport.View()
	}

	help := "h/l: chapter | [/]: book | g: go to | b/B: bookmark/list | t: theme | T: translation | q: quit"
	if m.mode == modeBookmarks {
		help = "j/k: move | enter: open | esc: back"
	}
	if len(m.inflight) > 0 {
		help = m.spinner.View() + " " + help
	}
	var errorMsg string
	if m.err != nil {
		errorMsg = "\n" + m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return strings.Join([]string{header, body, m.styles.Help.Render(help) + errorMsg}, "\n")
}
