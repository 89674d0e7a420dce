package tui

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mxchestnut/workshelf/internal/api"
	"github.com/mxchestnut/workshelf/internal/config"
	"github.com/mxchestnut/workshelf/internal/database"
	"github.com/mxchestnut/workshelf/internal/feed"
	"github.com/mxchestnut/workshelf/internal/onboarding"
	"github.com/mxchestnut/workshelf/internal/progress"
	"github.com/mxchestnut/workshelf/internal/prompts"
	"github.com/mxchestnut/workshelf/internal/reader"
	"github.com/mxchestnut/workshelf/internal/session"
	"github.com/mxchestnut/workshelf/pkg/models"
)

type View int

const (
	ViewLogin View = iota
	ViewOnboarding
	ViewFeed
	ViewGroups
	ViewGroupDetail
	ViewStore
	ViewBookDetail
	ViewBookshelf
	ViewReading
	ViewBeta
	ViewPrompts
	ViewModeration
	ViewHelp
)

type Model struct {
	cfg       *config.Config
	db        *database.DB
	sess      *session.Store
	client    *api.Client
	persister *progress.Persister
	assembler *feed.Assembler
	prompter  *prompts.Client
	logger    *log.Logger

	ctx        context.Context
	openCancel context.CancelFunc

	view     View
	prevView View
	width    int
	height   int
	err      error
	status   string
	loading  bool

	feedList   list.Model
	groupList  list.Model
	storeList  list.Model
	shelfList  list.Model
	betaList   list.Model
	reportList list.Model

	curGroup models.Group
	posts    []models.GroupPost
	curBook  models.Book
	widget   *reader.Widget

	loginInputs []textinput.Model
	loginFocus  int

	form       *onboarding.Form
	formInputs []textinput.Model
	formFocus  int
	formErrs   map[string]string

	searchInput textinput.Model
	searching   bool

	postInput textinput.Model
	composing bool

	genreInput textinput.Model
	seedInput  textinput.Model
	promptTab  int
	prompt     *models.Prompt
}

type sessionMsg struct {
	sess *models.Session
}

type feedLoadedMsg struct {
	entries []models.FeedEntry
}

type groupsLoadedMsg struct {
	groups []models.Group
}

type postsLoadedMsg struct {
	groupID string
	posts   []models.GroupPost
}

type postCreatedMsg struct {
	post models.GroupPost
}

type storeLoadedMsg struct {
	books []models.Book
}

type purchasedMsg struct {
	item models.ShelfItem
}

type shelfLoadedMsg struct {
	items []models.ShelfItem
	// fromCache marks a shelf served from the local database after a
	// network failure.
	fromCache bool
}

type betaLoadedMsg struct {
	reqs []models.BetaRequest
}

type betaClaimedMsg struct {
	req models.BetaRequest
}

type reportsLoadedMsg struct {
	reports []models.Report
}

type reportResolvedMsg struct {
	id string
}

type promptMsg struct {
	prompt *models.Prompt
}

type readerOpenedMsg struct {
	widget *reader.Widget
}

type readerFailedMsg struct {
	err error
}

type errorMsg struct {
	err error
}

type statusMsg string

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			MarginBottom(1)

	fieldErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	readerPageStyle = lipgloss.NewStyle().
			Padding(1, 2)
)

func New(ctx context.Context, cfg *config.Config, db *database.DB, sess *session.Store, client *api.Client, persister *progress.Persister, assembler *feed.Assembler, prompter *prompts.Client, logger *log.Logger) Model {
	m := Model{
		cfg:       cfg,
		db:        db,
		sess:      sess,
		client:    client,
		persister: persister,
		assembler: assembler,
		prompter:  prompter,
		logger:    logger,
		ctx:       ctx,
	}

	m.feedList = newList("Feed")
	m.groupList = newList("Groups")
	m.storeList = newList("Store")
	m.shelfList = newList("Bookshelf")
	m.betaList = newList("Beta Marketplace")
	m.reportList = newList("Moderation Queue")

	m.loginInputs = loginInputs()

	m.searchInput = textinput.New()
	m.searchInput.Placeholder = "search books"
	m.searchInput.CharLimit = 80

	m.postInput = textinput.New()
	m.postInput.Placeholder = "write a post"
	m.postInput.CharLimit = 500

	m.genreInput = textinput.New()
	m.genreInput.Placeholder = "genre (e.g. fantasy)"
	m.genreInput.CharLimit = 40

	m.seedInput = textinput.New()
	m.seedInput.Placeholder = "optional idea to build on"
	m.seedInput.CharLimit = 200

	if sess.Current() != nil {
		m.view = ViewFeed
	} else {
		m.view = ViewLogin
		m.loginInputs[0].Focus()
	}

	return m
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	return l
}

func loginInputs() []textinput.Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120

	return []textinput.Model{email, password}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen, textinput.Blink}
	if m.sess.Current() != nil {
		cmds = append(cmds, m.loadFeed())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := msg.Height - 4
		m.feedList.SetSize(msg.Width, listHeight)
		m.groupList.SetSize(msg.Width, listHeight)
		m.storeList.SetSize(msg.Width, listHeight)
		m.shelfList.SetSize(msg.Width, listHeight)
		m.betaList.SetSize(msg.Width, listHeight)
		m.reportList.SetSize(msg.Width, listHeight)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case sessionMsg:
		m.loading = false
		if err := m.sess.Put(*msg.sess); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.view = ViewFeed
		m.status = fmt.Sprintf("Welcome, %s", msg.sess.User.DisplayName)
		return m, m.loadFeed()

	case feedLoadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = feedItem{e}
		}
		m.feedList.SetItems(items)
		m.status = fmt.Sprintf("Loaded %d feed entries", len(msg.entries))
		return m, nil

	case groupsLoadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.groups))
		for i, g := range msg.groups {
			items[i] = groupItem{g}
		}
		m.groupList.SetItems(items)
		return m, nil

	case postsLoadedMsg:
		m.loading = false
		if msg.groupID == m.curGroup.ID {
			m.posts = msg.posts
		}
		return m, nil

	case postCreatedMsg:
		m.loading = false
		m.posts = append([]models.GroupPost{msg.post}, m.posts...)
		m.postInput.SetValue("")
		m.status = "Posted"
		return m, nil

	case storeLoadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.books))
		for i, b := range msg.books {
			items[i] = bookItem{b}
		}
		m.storeList.SetItems(items)
		return m, nil

	case purchasedMsg:
		m.loading = false
		m.status = fmt.Sprintf("Added %q to your bookshelf", msg.item.Book.Title)
		return m, m.loadShelf()

	case shelfLoadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.items))
		for i, it := range msg.items {
			items[i] = shelfItem{it}
		}
		m.shelfList.SetItems(items)
		if msg.fromCache {
			m.status = "Offline: showing cached bookshelf"
		}
		return m, nil

	case betaLoadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.reqs))
		for i, r := range msg.reqs {
			items[i] = betaItem{r}
		}
		m.betaList.SetItems(items)
		return m, nil

	case betaClaimedMsg:
		m.loading = false
		m.status = fmt.Sprintf("Claimed %q", msg.req.Title)
		return m, m.loadBeta()

	case reportsLoadedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.reports))
		for i, r := range msg.reports {
			items[i] = reportItem{r}
		}
		m.reportList.SetItems(items)
		return m, nil

	case reportResolvedMsg:
		m.loading = false
		m.status = "Report resolved"
		return m, m.loadReports()

	case promptMsg:
		m.loading = false
		m.prompt = msg.prompt
		m.status = "Prompt ready"
		return m, nil

	case readerOpenedMsg:
		m.loading = false
		m.widget = msg.widget
		m.err = nil
		m.view = ViewReading
		return m, nil

	case readerFailedMsg:
		// A book that fails to load never takes the page down; the detail
		// view shows an inline failure instead.
		m.loading = false
		m.err = msg.err
		m.status = ""
		return m, nil

	case errorMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil
	}

	return m.updateActiveList(msg)
}

func (m Model) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ViewFeed:
		m.feedList, cmd = m.feedList.Update(msg)
	case ViewGroups:
		m.groupList, cmd = m.groupList.Update(msg)
	case ViewStore:
		m.storeList, cmd = m.storeList.Update(msg)
	case ViewBookshelf:
		m.shelfList, cmd = m.shelfList.Update(msg)
	case ViewBeta:
		m.betaList, cmd = m.betaList.Update(msg)
	case ViewModeration:
		m.reportList, cmd = m.reportList.Update(msg)
	}
	return m, cmd
}

// switchView changes the main tab, kicking off that view's loader.
func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	m.err = nil
	m.status = ""
	switch v {
	case ViewFeed:
		return m, m.loadFeed()
	case ViewGroups:
		return m, m.loadGroups()
	case ViewStore:
		return m, m.loadStore("")
	case ViewBookshelf:
		return m, m.loadShelf()
	case ViewBeta:
		return m, m.loadBeta()
	case ViewModeration:
		return m, m.loadReports()
	}
	return m, nil
}

func (m Model) loadFeed() tea.Cmd {
	assembler := m.assembler
	ctx := m.ctx
	return func() tea.Msg {
		entries, err := assembler.Assemble(ctx)
		if err != nil {
			return errorMsg{err}
		}
		return feedLoadedMsg{entries}
	}
}

func (m Model) loadGroups() tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		groups, err := client.Groups(ctx)
		if err != nil {
			return errorMsg{err}
		}
		return groupsLoadedMsg{groups}
	}
}

func (m Model) loadPosts(groupID string) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		posts, err := client.GroupPosts(ctx, groupID)
		if err != nil {
			return errorMsg{err}
		}
		return postsLoadedMsg{groupID, posts}
	}
}

func (m Model) createPost(groupID, body string) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		post, err := client.CreateGroupPost(ctx, groupID, body)
		if err != nil {
			return errorMsg{err}
		}
		return postCreatedMsg{*post}
	}
}

func (m Model) loadStore(query string) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		books, err := client.StoreBooks(ctx, query)
		if err != nil {
			return errorMsg{err}
		}
		return storeLoadedMsg{books}
	}
}

func (m Model) purchase(bookID string) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		item, err := client.Purchase(ctx, bookID)
		if err != nil {
			return errorMsg{err}
		}
		return purchasedMsg{*item}
	}
}

// loadShelf fetches the bookshelf, falling back to the local cache when the
// backend is unreachable so the shelf stays readable offline.
func (m Model) loadShelf() tea.Cmd {
	client := m.client
	db := m.db
	logger := m.logger
	ctx := m.ctx
	return func() tea.Msg {
		items, err := client.Bookshelf(ctx)
		if err != nil {
			cached, cacheErr := db.CachedShelf()
			if cacheErr != nil || len(cached) == 0 {
				return errorMsg{err}
			}
			logger.Printf("tui: bookshelf fetch failed, using cache: %v", err)
			return shelfLoadedMsg{items: cached, fromCache: true}
		}
		if err := db.CacheShelf(items); err != nil {
			logger.Printf("tui: caching bookshelf: %v", err)
		}
		return shelfLoadedMsg{items: items}
	}
}

func (m Model) loadBeta() tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		reqs, err := client.BetaRequests(ctx, "")
		if err != nil {
			return errorMsg{err}
		}
		return betaLoadedMsg{reqs}
	}
}

func (m Model) claimBeta(id string) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		req, err := client.ClaimBetaRequest(ctx, id)
		if err != nil {
			return errorMsg{err}
		}
		return betaClaimedMsg{*req}
	}
}

func (m Model) loadReports() tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		reports, err := client.Reports(ctx)
		if err != nil {
			return errorMsg{err}
		}
		return reportsLoadedMsg{reports}
	}
}

func (m Model) resolveReport(id, action string) tea.Cmd {
	client := m.client
	ctx := m.ctx
	return func() tea.Msg {
		if err := client.ResolveReport(ctx, id, action); err != nil {
			return errorMsg{err}
		}
		return reportResolvedMsg{id}
	}
}

func (m Model) generatePrompt(genre, seed string) tea.Cmd {
	prompter := m.prompter
	ctx := m.ctx
	return func() tea.Msg {
		prompt, err := prompter.Generate(ctx, genre, seed)
		if err != nil {
			return errorMsg{err}
		}
		return promptMsg{prompt}
	}
}

// renderMarkdown renders body text through glamour, falling back to the raw
// string when rendering fails.
func (m Model) renderMarkdown(text string) string {
	width := m.width - 4
	if width < 20 || width > 100 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) statusBar() string {
	var s strings.Builder
	if m.loading {
		s.WriteString(statusStyle.Render("Working..."))
	} else if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.status != "" {
		s.WriteString(statusStyle.Render(m.status))
	}
	return s.String()
}
