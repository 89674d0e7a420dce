package reader

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Document is the widget's engine-agnostic view of a book: chapters of
// markdown paragraphs. Positions are defined against this linearized form,
// so location tokens survive a change of parsing engine or terminal size.
type Document struct {
	Title    string
	Chapters []DocChapter
}

type DocChapter struct {
	Title      string
	Paragraphs []string
}

// Loader produces the document for the widget. The widget never fetches or
// parses anything itself; hosts wrap their own retrieval in a Loader.
type Loader func(ctx context.Context) (*Document, error)

// SplitParagraphs breaks markdown into paragraphs on blank lines.
func SplitParagraphs(markdown string) []string {
	var paragraphs []string
	for _, block := range strings.Split(markdown, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}

// page is one screenful of wrapped lines. chapter and startPar identify the
// first paragraph shown; parOffset counts earlier pages starting at the same
// paragraph, so every page of a hard-split paragraph gets a distinct
// location token.
type page struct {
	chapter   int
	startPar  int
	parOffset int
	lines     []string
}

// paginate lays the document out into pages of at most height wrapped lines.
// Chapters always start on a fresh page.
func paginate(doc *Document, width, height int) []page {
	if width < 16 {
		width = 16
	}
	if height < 4 {
		height = 4
	}

	var pages []page
	for ci, ch := range doc.Chapters {
		cur := page{chapter: ci, startPar: 0}
		for pi, par := range ch.Paragraphs {
			lines := wrap(par, width)
			if len(cur.lines) > 0 && len(cur.lines)+1+len(lines) > height {
				pages = append(pages, cur)
				cur = page{chapter: ci, startPar: pi}
			}
			if len(cur.lines) > 0 {
				cur.lines = append(cur.lines, "")
			}
			// A paragraph longer than a page is split hard across pages.
			for len(lines) > 0 {
				space := height - len(cur.lines)
				if space <= 0 {
					pages = append(pages, cur)
					next := 0
					if cur.startPar == pi {
						next = cur.parOffset + 1
					}
					cur = page{chapter: ci, startPar: pi, parOffset: next}
					space = height
				}
				if space > len(lines) {
					space = len(lines)
				}
				cur.lines = append(cur.lines, lines[:space]...)
				lines = lines[space:]
			}
		}
		if len(cur.lines) > 0 || len(ch.Paragraphs) == 0 {
			pages = append(pages, cur)
		}
	}
	return pages
}

// wrap breaks a paragraph into lines at most width runes wide.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var b strings.Builder
	runes := 0
	for _, word := range words {
		wordRunes := utf8.RuneCountInString(word)
		if runes == 0 {
			b.WriteString(word)
			runes = wordRunes
			continue
		}
		if runes+1+wordRunes > width {
			lines = append(lines, b.String())
			b.Reset()
			b.WriteString(word)
			runes = wordRunes
			continue
		}
		b.WriteByte(' ')
		b.WriteString(word)
		runes += 1 + wordRunes
	}
	if b.Len() > 0 {
		lines = append(lines, b.String())
	}
	return lines
}
