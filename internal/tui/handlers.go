package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mxchestnut/workshelf/pkg/models"
)

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewLogin:
		return m.handleLoginKeys(msg)
	case ViewOnboarding:
		return m.handleOnboardingKeys(msg)
	case ViewFeed:
		return m.handleFeedKeys(msg)
	case ViewGroups:
		return m.handleGroupsKeys(msg)
	case ViewGroupDetail:
		return m.handleGroupDetailKeys(msg)
	case ViewStore:
		return m.handleStoreKeys(msg)
	case ViewBookDetail:
		return m.handleBookDetailKeys(msg)
	case ViewBookshelf:
		return m.handleShelfKeys(msg)
	case ViewReading:
		return m.handleReadingKeys(msg)
	case ViewBeta:
		return m.handleBetaKeys(msg)
	case ViewPrompts:
		return m.handlePromptsKeys(msg)
	case ViewModeration:
		return m.handleModerationKeys(msg)
	case ViewHelp:
		return m.handleHelpKeys(msg)
	}
	return m, nil
}

// handleGlobalKeys covers quit, help, logout and tab switching. The bool
// reports whether the key was consumed.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		model, cmd := m, tea.Quit
		return model, cmd, true

	case "1":
		model, cmd := m.switchView(ViewFeed)
		return model, cmd, true
	case "2":
		model, cmd := m.switchView(ViewGroups)
		return model, cmd, true
	case "3":
		model, cmd := m.switchView(ViewStore)
		return model, cmd, true
	case "4":
		model, cmd := m.switchView(ViewBookshelf)
		return model, cmd, true
	case "5":
		model, cmd := m.switchView(ViewBeta)
		return model, cmd, true
	case "6":
		m.view = ViewPrompts
		m.err = nil
		m.status = ""
		m.genreInput.Focus()
		m.promptTab = 0
		return m, nil, true
	case "7":
		user, err := m.sess.CurrentUser()
		if err != nil || !user.IsAdmin() {
			m.status = "Moderation is admin only"
			return m, nil, true
		}
		model, cmd := m.switchView(ViewModeration)
		return model, cmd, true

	case "?":
		m.prevView = m.view
		m.view = ViewHelp
		return m, nil, true

	case "ctrl+l":
		if err := m.sess.Clear(); err != nil {
			m.err = err
			return m, nil, true
		}
		m.view = ViewLogin
		m.loginInputs = loginInputs()
		m.loginInputs[0].Focus()
		m.loginFocus = 0
		m.status = "Logged out"
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) handleFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.feedList.FilterState() != list.Filtering {
		if model, cmd, ok := m.handleGlobalKeys(msg); ok {
			return model, cmd
		}
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadFeed()
		}
	}

	var cmd tea.Cmd
	m.feedList, cmd = m.feedList.Update(msg)
	return m, cmd
}

func (m Model) handleGroupsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.groupList.FilterState() != list.Filtering {
		if model, cmd, ok := m.handleGlobalKeys(msg); ok {
			return model, cmd
		}
		if msg.String() == "enter" {
			if i, ok := m.groupList.SelectedItem().(groupItem); ok {
				m.curGroup = i.group
				m.posts = nil
				m.view = ViewGroupDetail
				m.loading = true
				return m, m.loadPosts(i.group.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.groupList, cmd = m.groupList.Update(msg)
	return m, cmd
}

func (m Model) handleGroupDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.composing {
		switch msg.String() {
		case "esc":
			m.composing = false
			m.postInput.Blur()
			return m, nil
		case "enter":
			body := strings.TrimSpace(m.postInput.Value())
			if body == "" {
				return m, nil
			}
			m.composing = false
			m.postInput.Blur()
			m.loading = true
			return m, m.createPost(m.curGroup.ID, body)
		}
		var cmd tea.Cmd
		m.postInput, cmd = m.postInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = ViewGroups
		return m, nil
	case "c":
		m.composing = true
		m.postInput.Focus()
		return m, nil
	case "r":
		m.loading = true
		return m, m.loadPosts(m.curGroup.ID)
	}
	return m, nil
}

func (m Model) handleStoreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			m.loading = true
			return m, m.loadStore(strings.TrimSpace(m.searchInput.Value()))
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	if m.storeList.FilterState() != list.Filtering {
		if model, cmd, ok := m.handleGlobalKeys(msg); ok {
			return model, cmd
		}
		switch msg.String() {
		case "enter":
			if i, ok := m.storeList.SelectedItem().(bookItem); ok {
				m.curBook = i.book
				m.view = ViewBookDetail
				return m, nil
			}
		case "s":
			m.searching = true
			m.searchInput.Focus()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.storeList, cmd = m.storeList.Update(msg)
	return m, cmd
}

func (m Model) handleBookDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.err = nil
		m.view = ViewStore
		return m, nil
	case "b":
		// Disabled while a purchase is in flight.
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.purchase(m.curBook.ID)
	}
	return m, nil
}

func (m Model) handleShelfKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.shelfList.FilterState() != list.Filtering {
		if model, cmd, ok := m.handleGlobalKeys(msg); ok {
			return model, cmd
		}
		switch msg.String() {
		case "enter":
			if i, ok := m.shelfList.SelectedItem().(shelfItem); ok {
				if m.loading {
					return m, nil
				}
				m.loading = true
				m.status = fmt.Sprintf("Opening %q...", i.item.Book.Title)
				return m, m.openBook(i.item)
			}
		case "r":
			m.loading = true
			return m, m.loadShelf()
		}
	}

	var cmd tea.Cmd
	m.shelfList, cmd = m.shelfList.Update(msg)
	return m, cmd
}

func (m Model) handleBetaKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.betaList.FilterState() != list.Filtering {
		if model, cmd, ok := m.handleGlobalKeys(msg); ok {
			return model, cmd
		}
		switch msg.String() {
		case "enter":
			if i, ok := m.betaList.SelectedItem().(betaItem); ok {
				if i.req.Status != models.BetaStatusOpen {
					m.status = "Request is not open"
					return m, nil
				}
				m.loading = true
				return m, m.claimBeta(i.req.ID)
			}
		case "r":
			m.loading = true
			return m, m.loadBeta()
		}
	}

	var cmd tea.Cmd
	m.betaList, cmd = m.betaList.Update(msg)
	return m, cmd
}

func (m Model) handlePromptsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.genreInput.Blur()
		m.seedInput.Blur()
		m.view = ViewFeed
		return m, m.loadFeed()
	case "tab":
		m.promptTab = (m.promptTab + 1) % 2
		if m.promptTab == 0 {
			m.genreInput.Focus()
			m.seedInput.Blur()
		} else {
			m.genreInput.Blur()
			m.seedInput.Focus()
		}
		return m, nil
	case "enter":
		genre := strings.TrimSpace(m.genreInput.Value())
		if genre == "" {
			m.err = fmt.Errorf("enter a genre first")
			return m, nil
		}
		if m.loading {
			return m, nil
		}
		m.err = nil
		m.loading = true
		return m, m.generatePrompt(genre, strings.TrimSpace(m.seedInput.Value()))
	}

	var cmd tea.Cmd
	if m.promptTab == 0 {
		m.genreInput, cmd = m.genreInput.Update(msg)
	} else {
		m.seedInput, cmd = m.seedInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleModerationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.reportList.FilterState() != list.Filtering {
		if model, cmd, ok := m.handleGlobalKeys(msg); ok {
			return model, cmd
		}
		switch msg.String() {
		case "d":
			if i, ok := m.reportList.SelectedItem().(reportItem); ok {
				m.loading = true
				return m, m.resolveReport(i.report.ID, "dismiss")
			}
		case "x":
			if i, ok := m.reportList.SelectedItem().(reportItem); ok {
				m.loading = true
				return m, m.resolveReport(i.report.ID, "remove_content")
			}
		case "r":
			m.loading = true
			return m, m.loadReports()
		}
	}

	var cmd tea.Cmd
	m.reportList, cmd = m.reportList.Update(msg)
	return m, cmd
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		m.view = m.prevView
		return m, nil
	}
	return m, nil
}
