package reader

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type State int

const (
	StateClosed State = iota
	StateOpening
	StateReady
	StateNavigating
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpening:
		return "opening"
	case StateReady:
		return "ready"
	case StateNavigating:
		return "navigating"
	}
	return "unknown"
}

var (
	ErrNoLoader = errors.New("reader: no loader configured")
	ErrClosed   = errors.New("reader: widget closed")
	ErrNotReady = errors.New("reader: widget not open")
)

// Options is the contract with the host page. The widget has no side effects
// beyond the two callbacks; persistence is entirely the host's concern.
type Options struct {
	Load Loader

	// InitialLocation is a token previously emitted through OnProgress.
	// Invalid or unresolvable tokens fall back to the content start.
	InitialLocation string

	PageWidth  int
	PageHeight int

	// OnProgress is invoked once per discrete navigation action with the
	// current location token and percentage, never on intermediate renders.
	OnProgress func(location string, percentage int)

	// OnClose is invoked exactly once when the widget is dismissed.
	OnClose func()
}

// Widget renders a document page by page and reports the current position to
// its host. States: Closed -> Opening -> Ready <-> Navigating -> Closed.
type Widget struct {
	opts  Options
	state State
	done  bool

	doc   *Document
	pages []page
	pos   int
}

func New(opts Options) (*Widget, error) {
	if opts.Load == nil {
		return nil, ErrNoLoader
	}
	return &Widget{opts: opts, state: StateClosed}, nil
}

func (w *Widget) State() State { return w.state }

// Open loads the document and settles at the resume point. On failure the
// widget stays Closed and no progress is ever reported.
func (w *Widget) Open(ctx context.Context) error {
	if w.done {
		return ErrClosed
	}
	if w.state != StateClosed {
		return fmt.Errorf("reader: open in state %s", w.state)
	}

	w.state = StateOpening
	doc, err := w.opts.Load(ctx)
	if err != nil {
		w.state = StateClosed
		return fmt.Errorf("loading content: %w", err)
	}
	if doc == nil || len(doc.Chapters) == 0 {
		w.state = StateClosed
		return errors.New("loading content: empty document")
	}

	w.doc = doc
	w.pages = paginate(doc, w.opts.PageWidth, w.opts.PageHeight)
	w.pos = w.resolve(w.opts.InitialLocation)
	w.state = StateReady

	w.emit()
	return nil
}

// resolve maps a location token to a page index, falling back to the start.
func (w *Widget) resolve(token string) int {
	if token == "" {
		return 0
	}
	chapter, paragraph, offset, ok := decodeLocation(token)
	if !ok || chapter >= len(w.doc.Chapters) {
		return 0
	}

	// Prefer the exact page of a split paragraph; an unknown offset rewinds
	// to the paragraph's first page rather than skipping past unread text.
	best := -1
	parStart := -1
	for i, p := range w.pages {
		if p.chapter > chapter {
			break
		}
		if p.chapter < chapter || p.startPar <= paragraph {
			best = i
		}
		if p.chapter == chapter && p.startPar == paragraph {
			if p.parOffset == offset {
				return i
			}
			if parStart < 0 {
				parStart = i
			}
		}
	}
	if parStart >= 0 {
		return parStart
	}
	if best < 0 {
		return 0
	}
	return best
}

// NextPage turns forward one page.
func (w *Widget) NextPage() {
	w.navigate(func() bool {
		if w.pos+1 >= len(w.pages) {
			return false
		}
		w.pos++
		return true
	})
}

// PrevPage turns back one page. Percentage drops accordingly; position is
// not a high-water mark.
func (w *Widget) PrevPage() {
	w.navigate(func() bool {
		if w.pos == 0 {
			return false
		}
		w.pos--
		return true
	})
}

// JumpToChapter moves to the first page of the given chapter.
func (w *Widget) JumpToChapter(chapter int) {
	w.navigate(func() bool {
		if chapter < 0 || w.doc == nil || chapter >= len(w.doc.Chapters) {
			return false
		}
		for i, p := range w.pages {
			if p.chapter == chapter {
				if w.pos == i {
					return false
				}
				w.pos = i
				return true
			}
		}
		return false
	})
}

// navigate runs one discrete navigation action. Moves that change position
// emit exactly one progress report; no-ops emit nothing.
func (w *Widget) navigate(move func() bool) {
	if w.state != StateReady {
		return
	}
	w.state = StateNavigating
	moved := move()
	w.state = StateReady
	if moved {
		w.emit()
	}
}

// Close dismisses the widget. OnClose fires exactly once; every later call
// on the widget is a no-op.
func (w *Widget) Close() {
	if w.done {
		return
	}
	w.done = true
	w.state = StateClosed
	w.doc = nil
	w.pages = nil
	if w.opts.OnClose != nil {
		w.opts.OnClose()
	}
}

func (w *Widget) emit() {
	if w.opts.OnProgress == nil {
		return
	}
	w.opts.OnProgress(w.Location(), w.Percentage())
}

// Location returns the token for the current page.
func (w *Widget) Location() string {
	if w.state == StateClosed || w.pos >= len(w.pages) {
		return ""
	}
	p := w.pages[w.pos]
	return encodeLocation(p.chapter, p.startPar, p.parOffset)
}

// Percentage is round(position / totalPositions * 100), clamped to [0, 100].
func (w *Widget) Percentage() int {
	if w.state == StateClosed || len(w.pages) == 0 {
		return 0
	}
	pct := int(math.Round(float64(w.pos) / float64(len(w.pages)) * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// PageLines returns the wrapped lines of the current page for rendering.
func (w *Widget) PageLines() []string {
	if w.state == StateClosed || w.pos >= len(w.pages) {
		return nil
	}
	return w.pages[w.pos].lines
}

// ChapterIndex returns the index of the chapter the current page belongs
// to, or -1 when nothing is open.
func (w *Widget) ChapterIndex() int {
	if w.state == StateClosed || w.pos >= len(w.pages) {
		return -1
	}
	return w.pages[w.pos].chapter
}

// ChapterTitle returns the title of the chapter the current page belongs to.
func (w *Widget) ChapterTitle() string {
	if w.state == StateClosed || w.doc == nil || w.pos >= len(w.pages) {
		return ""
	}
	return w.doc.Chapters[w.pages[w.pos].chapter].Title
}

// Title returns the document title.
func (w *Widget) Title() string {
	if w.doc == nil {
		return ""
	}
	return w.doc.Title
}

// TOC returns the chapter titles for table-of-contents jumps.
func (w *Widget) TOC() []string {
	if w.doc == nil {
		return nil
	}
	titles := make([]string, len(w.doc.Chapters))
	for i, ch := range w.doc.Chapters {
		titles[i] = ch.Title
	}
	return titles
}

// PageInfo returns the current page number (1-based) and the page count.
func (w *Widget) PageInfo() (current, total int) {
	if w.state == StateClosed {
		return 0, 0
	}
	return w.pos + 1, len(w.pages)
}
