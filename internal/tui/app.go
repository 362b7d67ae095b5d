package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/tradewire/internal/browser"
	"github.com/matheuskafuri/tradewire/internal/logger"
	"github.com/matheuskafuri/tradewire/internal/news"
	"github.com/matheuskafuri/tradewire/internal/pipeline"
	"github.com/matheuskafuri/tradewire/internal/update"
)

const loadTimeout = 30 * time.Second

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeHome
	modeFilter
	modeHelp
	modeDigest
)

// Refresher is the part of the refresh cache the dashboard drives directly.
type Refresher interface {
	Invalidate()
	Peek() (news.Entry, bool)
}

type App struct {
	svc      *pipeline.Service
	cache    Refresher
	interval time.Duration
	version  string

	items  []pipeline.ClassifiedHeadline
	cursor int
	focus  focusPane
	mode   mode

	width  int
	height int

	spinner   spinner.Model
	filterBar filterBar

	onlyUrgent    bool
	loading       bool
	loadSeq       int
	fetchedAt     time.Time
	previewScroll int
	updateVersion string
	checkUpdate   bool
	err           error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Service     *pipeline.Service
	Cache       Refresher
	Interval    time.Duration
	Version     string
	Categories  []string
	OnlyUrgent  bool
	CheckUpdate bool
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	interval := opts.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	fb := newFilterBar(opts.Service.Categories(), opts.Service.DefaultCategories())
	if len(opts.Categories) > 0 {
		fb.selectOnly(opts.Categories)
	}

	return &App{
		svc:         opts.Service,
		cache:       opts.Cache,
		interval:    interval,
		version:     opts.Version,
		filterBar:   fb,
		onlyUrgent:  opts.OnlyUrgent,
		spinner:     sp,
		mode:        modeNormal,
		checkUpdate: opts.CheckUpdate,
	}
}

func (a *App) Init() tea.Cmd {
	a.loading = true
	cmds := []tea.Cmd{a.loadCmd(), a.spinner.Tick, tickCmd(a.interval)}
	if a.checkUpdate {
		cmds = append(cmds, checkUpdateCmd(a.version))
	}
	return tea.Batch(cmds...)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func checkUpdateCmd(version string) tea.Cmd {
	return func() tea.Msg {
		if r := update.Check(context.Background(), version); r != nil {
			return updateAvailableMsg{version: r.LatestVersion}
		}
		return nil
	}
}

// loadCmd captures the current filter state into the closure to avoid races.
func (a *App) loadCmd() tea.Cmd {
	a.loadSeq++
	seq := a.loadSeq
	svc := a.svc
	c := a.cache
	categories := a.filterBar.activeCategories()
	onlyUrgent := a.onlyUrgent
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		items, err := svc.GetFilteredHeadlines(ctx, categories, onlyUrgent)
		if err != nil {
			return headlinesErrMsg{seq: seq, err: err}
		}
		msg := headlinesLoadedMsg{seq: seq, items: items}
		if c != nil {
			if entry, ok := c.Peek(); ok {
				msg.fetchedAt = entry.FetchedAt
			}
		}
		return msg
	}
}

// reload re-runs the pipeline unless a load is already in flight.
func (a *App) reload() tea.Cmd {
	if a.loading {
		return nil
	}
	a.loading = true
	return tea.Batch(a.loadCmd(), a.spinner.Tick)
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case headlinesLoadedMsg:
		if msg.seq != a.loadSeq {
			return a, nil
		}
		a.loading = false
		a.items = msg.items
		a.fetchedAt = msg.fetchedAt
		if a.cursor >= len(a.items) {
			a.cursor = max(0, len(a.items)-1)
		}
		return a, nil

	case headlinesErrMsg:
		if msg.seq != a.loadSeq {
			return a, nil
		}
		a.loading = false
		a.err = msg.err
		logger.Get().Warnw("loading headlines failed", "error", msg.err)
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case tickMsg:
		return a, tea.Batch(a.reload(), tickCmd(a.interval))

	case updateAvailableMsg:
		a.updateVersion = msg.version
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.mode {
	case modeHome:
		return a.handleHomeKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeDigest:
		switch msg.String() {
		case "esc", "d", "w":
			a.mode = modeNormal
		case "h":
			a.mode = modeHome
		case "q":
			return a, tea.Quit
		}
		return a, nil
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.items)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if a.cursor < len(a.items) {
			return a, openBrowserCmd(a.items[a.cursor].URL)
		}
		return a, nil
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "u":
		a.onlyUrgent = !a.onlyUrgent
		a.cursor = 0
		return a, a.forceReload()
	case "r":
		if a.cache != nil {
			a.cache.Invalidate()
		}
		return a, a.forceReload()
	case "d":
		a.mode = modeDigest
		return a, nil
	case "h":
		a.mode = modeHome
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "w", "1", "esc":
		a.mode = modeNormal
	case "d", "2":
		a.mode = modeDigest
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeNormal
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		if a.filterBar.filterCursor > 0 {
			a.filterBar.filterCursor--
		}
		return a, nil
	case "right", "l":
		if a.filterBar.filterCursor < len(a.filterBar.categories)-1 {
			a.filterBar.filterCursor++
		}
		return a, nil
	case " ", "enter":
		a.filterBar.toggleCurrent()
		a.cursor = 0
		return a, a.forceReload()
	case "a":
		a.filterBar.toggleAll()
		a.cursor = 0
		return a, a.forceReload()
	case "u":
		a.onlyUrgent = !a.onlyUrgent
		a.cursor = 0
		return a, a.forceReload()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(msg.String()[0] - '1')
		if idx < len(a.filterBar.categories) {
			a.filterBar.toggle(a.filterBar.categories[idx])
			a.cursor = 0
			return a, a.forceReload()
		}
		return a, nil
	}
	return a, nil
}

// forceReload re-runs the pipeline even when a load is in flight. Results
// of the older load are dropped when they arrive.
func (a *App) forceReload() tea.Cmd {
	a.loading = true
	return tea.Batch(a.loadCmd(), a.spinner.Tick)
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  tradewire")
	}

	switch a.mode {
	case modeHome:
		urgent := pipeline.Summarize(a.items).Urgent
		return a.withBottomBar(renderHomeScreen(a.width, a.height, urgent, a.updateVersion), "w wire  d digest  q quit")
	case modeDigest:
		return a.withBottomBar(renderDigest(a.items, a.filterBar.categories, a.width, a.height), "w wire  h home  q quit")
	case modeHelp:
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	}

	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.45)
	previewWidth := a.width - listWidth - 1 // gap

	if contentHeight < 3 {
		contentHeight = 3
	}

	// Header
	headerLeft := headerStyle.Render("tradewire") + "  " + headerCountStyle.Render(fmt.Sprintf("%d Headlines Found", len(a.items)))
	if a.loading {
		headerLeft += " " + a.spinner.View()
	}
	headerRight := headerDateStyle.Render(time.Now().Format("Jan 2 15:04"))
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	filter := a.filterBar.render(a.width, a.onlyUrgent)

	innerListW := listWidth - 4 // border + padding
	listContent := renderList(a.items, a.cursor, contentHeight, innerListW)
	if len(a.items) == 0 && a.err != nil {
		listContent = lipglossCenter("Could not load headlines.", innerListW, contentHeight)
	}

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	var selected *pipeline.ClassifiedHeadline
	if a.cursor < len(a.items) {
		selected = &a.items[a.cursor]
	}
	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(selected, innerPreviewW, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(statusInfo{
		filterLabel: a.filterBar.activeLabel(),
		onlyUrgent:  a.onlyUrgent,
		fetchedAt:   a.fetchedAt,
		interval:    a.interval,
		refreshing:  a.loading,
		filtering:   a.mode == modeFilter,
	}, a.width)

	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("tradewire")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Navigate headlines\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open headline in browser\n" +
		"  r             Refresh now\n" +
		"  u             Toggle urgent only\n" +
		"  f             Category filter mode\n" +
		"  d             Digest\n\n" +
		dim.Render("Filter Mode") + "\n" +
		"  ←/→, h/l     Move between categories\n" +
		"  space/enter   Toggle category\n" +
		"  1-9           Toggle category by number\n" +
		"  a             Select all / none\n" +
		"  esc, f        Exit filter mode\n\n" +
		dim.Render("General") + "\n" +
		"  h             Home screen\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit\n\n" +
		dim.Render(refreshNotice(a.interval))

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
