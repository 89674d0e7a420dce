package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
)

func (m Model) View() string {
	switch m.view {
	case ViewLogin:
		return m.renderLogin()
	case ViewOnboarding:
		return m.renderOnboarding()
	case ViewFeed:
		return m.renderListView(m.feedList, "enter: open • r: refresh • 1-7: tabs • ?: help • q: quit")
	case ViewGroups:
		return m.renderListView(m.groupList, "enter: open group • 1-7: tabs • ?: help • q: quit")
	case ViewGroupDetail:
		return m.renderGroupDetail()
	case ViewStore:
		return m.renderListView(m.storeList, "enter: details • s: search • 1-7: tabs • ?: help • q: quit")
	case ViewBookDetail:
		return m.renderBookDetail()
	case ViewBookshelf:
		return m.renderListView(m.shelfList, "enter: read • r: refresh • 1-7: tabs • ?: help • q: quit")
	case ViewReading:
		return m.renderReading()
	case ViewBeta:
		return m.renderListView(m.betaList, "enter: claim • r: refresh • 1-7: tabs • ?: help • q: quit")
	case ViewPrompts:
		return m.renderPrompts()
	case ViewModeration:
		return m.renderListView(m.reportList, "d: dismiss • x: remove content • r: refresh • ?: help • q: quit")
	case ViewHelp:
		return m.renderHelp()
	}
	return ""
}

func (m Model) renderListView(l list.Model, help string) string {
	var s strings.Builder

	s.WriteString(l.View())
	s.WriteString("\n")
	s.WriteString(m.statusBar())
	s.WriteString("\n")

	if m.view == ViewStore && m.searching {
		s.WriteString(m.searchInput.View())
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render(help))
	return s.String()
}

func (m Model) renderGroupDetail() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.curGroup.Name))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(fmt.Sprintf("%d members", m.curGroup.MemberCount)))
	s.WriteString("\n\n")

	if len(m.posts) == 0 {
		s.WriteString(helpStyle.Render("No posts yet"))
		s.WriteString("\n")
	}
	for _, post := range m.posts {
		s.WriteString(headingStyle.Render(fmt.Sprintf("%s • %s", post.Author, post.CreatedAt.Format("Jan 2, 2006 15:04"))))
		s.WriteString("\n")
		s.WriteString(m.renderMarkdown(post.Body))
		s.WriteString("\n\n")
	}

	if m.composing {
		s.WriteString(m.postInput.View())
		s.WriteString("\n")
	}

	s.WriteString(m.statusBar())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("c: compose • r: refresh • esc: back • q: quit"))
	return s.String()
}

func (m Model) renderBookDetail() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(m.curBook.Title))
	s.WriteString("\n")

	price := "free"
	if m.curBook.PriceCents > 0 {
		price = fmt.Sprintf("$%.2f", float64(m.curBook.PriceCents)/100)
	}
	s.WriteString(helpStyle.Render(fmt.Sprintf("%s | %s | %s", m.curBook.Author, m.curBook.Genre, price)))
	s.WriteString("\n\n")
	s.WriteString(m.renderMarkdown(m.curBook.Description))
	s.WriteString("\n\n")

	s.WriteString(m.statusBar())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("b: buy • esc: back • q: quit"))
	return s.String()
}

func (m Model) renderPrompts() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Writing Prompts"))
	s.WriteString("\n")
	s.WriteString(m.genreInput.View())
	s.WriteString("\n")
	s.WriteString(m.seedInput.View())
	s.WriteString("\n\n")

	if m.prompt != nil {
		s.WriteString(headingStyle.Render(fmt.Sprintf("Prompt (%s)", m.prompt.Genre)))
		s.WriteString("\n")
		s.WriteString(m.renderMarkdown(m.prompt.Text))
		s.WriteString("\n\n")
	}

	s.WriteString(m.statusBar())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("tab: switch field • enter: generate • esc: back • ctrl+c: quit"))
	return s.String()
}

func (m Model) renderHelp() string {
	help := `
Workshelf - Keyboard Shortcuts

Tabs:
  1            Feed
  2            Groups
  3            Store
  4            Bookshelf
  5            Beta marketplace
  6            Writing prompts
  7            Moderation (admin)

Lists:
  ↑/↓, j/k     Navigate
  /            Filter
  enter        Open selection
  r            Refresh

Reading:
  →, l, space  Next page
  ←, h         Previous page
  ], [         Next/previous chapter
  esc          Close book

General:
  ctrl+l       Log out
  ?            Show/hide this help
  q, ctrl+c    Quit
`
	return help + "\n" + helpStyle.Render("Press ? or esc to close help")
}
