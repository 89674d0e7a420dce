package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/mxchestnut/workshelf/internal/epub"
	"github.com/mxchestnut/workshelf/internal/reader"
	"github.com/mxchestnut/workshelf/pkg/models"
)

// openBook mounts the reader widget for a shelf item. The widget itself
// never touches the network: retrieval and parsing happen in the loader, and
// every position it reports is relayed through the persister. The fetch
// context is cancelled if the user navigates away before the book opens.
func (m *Model) openBook(item models.ShelfItem) tea.Cmd {
	if m.openCancel != nil {
		m.openCancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.openCancel = cancel

	client := m.client
	persister := m.persister
	cfg := m.cfg
	logger := m.logger
	book := item.Book

	loader := func(ctx context.Context) (*reader.Document, error) {
		data, err := client.FetchEpub(ctx, book.EpubURL)
		if err != nil {
			return nil, err
		}
		parsed, err := epub.Open(data)
		if err != nil {
			return nil, err
		}
		return buildDocument(parsed, cfg.UI.PageWidth)
	}

	widget, err := reader.New(reader.Options{
		Load:            loader,
		InitialLocation: item.Progress.LastLocation,
		PageWidth:       cfg.UI.PageWidth,
		PageHeight:      cfg.UI.PageHeight,
		OnProgress: func(location string, percentage int) {
			persister.Record(book.ID, location, percentage)
		},
		OnClose: func() {
			logger.Printf("tui: closed %q", book.Title)
		},
	})
	if err != nil {
		return func() tea.Msg { return readerFailedMsg{err} }
	}

	return func() tea.Msg {
		if err := widget.Open(ctx); err != nil {
			return readerFailedMsg{fmt.Errorf("opening %q: %w", book.Title, err)}
		}
		return readerOpenedMsg{widget}
	}
}

// buildDocument flattens a parsed epub into the reader's document form.
// Chapter markdown goes through glamour so headings, emphasis and links read
// as text on the page instead of literal markup.
func buildDocument(book *epub.Book, width int) (*reader.Document, error) {
	doc := &reader.Document{Title: book.Title}
	for i := range book.Chapters {
		ch := &book.Chapters[i]
		markdown, err := ch.Markdown()
		if err != nil {
			return nil, err
		}
		doc.Chapters = append(doc.Chapters, reader.DocChapter{
			Title:      ch.Title,
			Paragraphs: reader.SplitParagraphs(plainMarkdown(markdown, width)),
		})
	}
	return doc, nil
}

// plainMarkdown renders markdown as plain wrapped text. The notty style
// carries no ANSI sequences, so page lines stay measurable for pagination.
// Rendering failures fall back to the raw markdown.
func plainMarkdown(markdown string, width int) string {
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("notty"), glamour.WithWordWrap(width))
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

func (m Model) handleReadingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.widget == nil {
		m.view = ViewBookshelf
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.closeBook()
		return m, tea.Quit

	case "esc", "q":
		m.closeBook()
		m.view = ViewBookshelf
		return m, m.loadShelf()

	case "right", "l", " ", "n":
		m.widget.NextPage()
		return m, nil

	case "left", "h", "p":
		m.widget.PrevPage()
		return m, nil

	case "]":
		m.widget.JumpToChapter(m.widget.ChapterIndex() + 1)
		return m, nil

	case "[":
		m.widget.JumpToChapter(m.widget.ChapterIndex() - 1)
		return m, nil
	}
	return m, nil
}

// closeBook dismisses the widget and pushes the last position out right
// away, best effort.
func (m *Model) closeBook() {
	if m.openCancel != nil {
		m.openCancel()
		m.openCancel = nil
	}
	if m.widget != nil {
		m.widget.Close()
		m.widget = nil
		go m.persister.Flush(m.ctx)
	}
}

func (m Model) renderReading() string {
	if m.widget == nil {
		return errorStyle.Render("No book open") + "\n" + helpStyle.Render("esc: back")
	}

	var s strings.Builder

	current, total := m.widget.PageInfo()
	s.WriteString(titleStyle.Render(m.widget.Title()))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(fmt.Sprintf("%s | page %d/%d | %d%%", m.widget.ChapterTitle(), current, total, m.widget.Percentage())))
	s.WriteString("\n")
	s.WriteString(readerPageStyle.Render(strings.Join(m.widget.PageLines(), "\n")))
	s.WriteString("\n")
	s.WriteString(m.statusBar())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("→/l/space: next • ←/h: prev • ]/[: chapter • esc: close • ctrl+c: quit"))
	return s.String()
}
