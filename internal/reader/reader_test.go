package reader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDoc builds a document of short one-line paragraphs so page geometry is
// predictable: with height 4, two paragraphs fit per page.
func testDoc(chapters, paragraphs int) *Document {
	doc := &Document{Title: "Test Book"}
	for c := 0; c < chapters; c++ {
		ch := DocChapter{Title: fmt.Sprintf("Chapter %d", c+1)}
		for p := 0; p < paragraphs; p++ {
			ch.Paragraphs = append(ch.Paragraphs, fmt.Sprintf("Paragraph %d of chapter %d.", p+1, c+1))
		}
		doc.Chapters = append(doc.Chapters, ch)
	}
	return doc
}

func staticLoader(doc *Document) Loader {
	return func(ctx context.Context) (*Document, error) {
		return doc, nil
	}
}

type progressRecorder struct {
	locations   []string
	percentages []int
	closes      int
}

func (r *progressRecorder) onProgress(location string, percentage int) {
	r.locations = append(r.locations, location)
	r.percentages = append(r.percentages, percentage)
}

func (r *progressRecorder) onClose() {
	r.closes++
}

func newTestWidget(t *testing.T, doc *Document, initial string) (*Widget, *progressRecorder) {
	t.Helper()
	return newTestWidgetGeometry(t, doc, initial, 60, 4)
}

func newTestWidgetGeometry(t *testing.T, doc *Document, initial string, width, height int) (*Widget, *progressRecorder) {
	t.Helper()
	rec := &progressRecorder{}
	w, err := New(Options{
		Load:            staticLoader(doc),
		InitialLocation: initial,
		PageWidth:       width,
		PageHeight:      height,
		OnProgress:      rec.onProgress,
		OnClose:         rec.onClose,
	})
	require.NoError(t, err)
	return w, rec
}

func TestNewRequiresLoader(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrNoLoader)
}

func TestOpenReportsStartPosition(t *testing.T) {
	w, rec := newTestWidget(t, testDoc(3, 10), "")

	require.NoError(t, w.Open(context.Background()))

	assert.Equal(t, StateReady, w.State())
	require.Len(t, rec.percentages, 1)
	assert.Equal(t, 0, rec.percentages[0])
	assert.NotEmpty(t, rec.locations[0])
}

func TestOpenFailureStaysClosedAndSilent(t *testing.T) {
	rec := &progressRecorder{}
	w, err := New(Options{
		Load: func(ctx context.Context) (*Document, error) {
			return nil, errors.New("404 not found")
		},
		OnProgress: rec.onProgress,
		OnClose:    rec.onClose,
	})
	require.NoError(t, err)

	err = w.Open(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateClosed, w.State())
	assert.Empty(t, rec.percentages, "a failed load must never report progress")
}

func TestInvalidInitialLocationFallsBackToStart(t *testing.T) {
	for _, token := range []string{"garbage", "ws1:banana:7", "ws1:-1:0", "cfi(/6/4!/2)", "ws1:99:0"} {
		w, rec := newTestWidget(t, testDoc(2, 6), token)
		require.NoError(t, w.Open(context.Background()), "token %q", token)
		require.Len(t, rec.percentages, 1)
		assert.Equal(t, 0, rec.percentages[0], "token %q should resolve to the start", token)
	}
}

func TestProgressOncePerNavigation(t *testing.T) {
	w, rec := newTestWidget(t, testDoc(4, 10), "")
	require.NoError(t, w.Open(context.Background()))

	w.NextPage()
	w.NextPage()
	w.NextPage()
	assert.Len(t, rec.percentages, 4, "open + three page turns")

	// No-op moves emit nothing.
	before := len(rec.percentages)
	w.PrevPage()
	w.PrevPage()
	w.PrevPage()
	w.PrevPage() // already at the first page
	assert.Len(t, rec.percentages, before+3)
}

func TestPercentageBounds(t *testing.T) {
	w, rec := newTestWidget(t, testDoc(5, 8), "")
	require.NoError(t, w.Open(context.Background()))

	// Walk to the very end and back.
	_, total := w.PageInfo()
	for i := 0; i < total+5; i++ {
		w.NextPage()
	}
	for i := 0; i < total+5; i++ {
		w.PrevPage()
	}

	for _, pct := range rec.percentages {
		assert.GreaterOrEqual(t, pct, 0)
		assert.LessOrEqual(t, pct, 100)
	}
}

func TestForwardNavigationMonotonic(t *testing.T) {
	// 10 chapters x 20 short paragraphs is 100 pages at this geometry.
	w, rec := newTestWidget(t, testDoc(10, 20), "")
	require.NoError(t, w.Open(context.Background()))

	_, total := w.PageInfo()
	require.Equal(t, 100, total)

	for i := 0; i < 10; i++ {
		w.NextPage()
	}

	require.Len(t, rec.percentages, 11)
	for i := 1; i < len(rec.percentages); i++ {
		assert.Greater(t, rec.percentages[i], rec.percentages[i-1])
	}
	assert.Equal(t, 10, rec.percentages[len(rec.percentages)-1])
}

func TestBackwardNavigationLowersPercentage(t *testing.T) {
	w, rec := newTestWidget(t, testDoc(10, 20), "")
	require.NoError(t, w.Open(context.Background()))

	for i := 0; i < 10; i++ {
		w.NextPage()
	}
	atTen := rec.percentages[len(rec.percentages)-1]

	for i := 0; i < 5; i++ {
		w.PrevPage()
	}
	atFive := rec.percentages[len(rec.percentages)-1]

	assert.Less(t, atFive, atTen, "position is not a high-water mark")
}

func TestResumeRoundTrip(t *testing.T) {
	doc := testDoc(6, 12)

	w, rec := newTestWidget(t, doc, "")
	require.NoError(t, w.Open(context.Background()))
	for i := 0; i < 7; i++ {
		w.NextPage()
	}
	lastLoc := rec.locations[len(rec.locations)-1]
	lastPct := rec.percentages[len(rec.percentages)-1]
	w.Close()

	reopened, rec2 := newTestWidget(t, doc, lastLoc)
	require.NoError(t, reopened.Open(context.Background()))

	require.Len(t, rec2.percentages, 1)
	assert.Equal(t, lastPct, rec2.percentages[0])
	assert.Equal(t, lastLoc, rec2.locations[0])
}

func TestResumeRoundTripSplitParagraph(t *testing.T) {
	// A single paragraph far longer than one page: every page of it shares
	// the same chapter and paragraph, so the token must still distinguish
	// them for the round trip to hold.
	long := strings.TrimSpace(strings.Repeat("word ", 60))
	doc := &Document{Title: "Long", Chapters: []DocChapter{{Title: "One", Paragraphs: []string{long}}}}

	w, rec := newTestWidgetGeometry(t, doc, "", 20, 4)
	require.NoError(t, w.Open(context.Background()))

	_, total := w.PageInfo()
	require.Greater(t, total, 2, "the paragraph must span several pages")

	startLoc := rec.locations[0]
	require.Equal(t, 0, rec.percentages[0])

	w.NextPage()
	w.NextPage()
	midLoc := rec.locations[len(rec.locations)-1]
	midPct := rec.percentages[len(rec.percentages)-1]
	w.Close()

	assert.NotEqual(t, startLoc, midLoc, "each page of a split paragraph carries its own token")

	reopened, rec2 := newTestWidgetGeometry(t, doc, startLoc, 20, 4)
	require.NoError(t, reopened.Open(context.Background()))
	require.Len(t, rec2.percentages, 1)
	assert.Equal(t, 0, rec2.percentages[0], "resuming from the first page must not skip ahead")
	assert.Equal(t, startLoc, rec2.locations[0])
	reopened.Close()

	reopened, rec2 = newTestWidgetGeometry(t, doc, midLoc, 20, 4)
	require.NoError(t, reopened.Open(context.Background()))
	require.Len(t, rec2.percentages, 1)
	assert.Equal(t, midPct, rec2.percentages[0])
	assert.Equal(t, midLoc, rec2.locations[0])
}

func TestJumpToChapter(t *testing.T) {
	w, rec := newTestWidget(t, testDoc(4, 10), "")
	require.NoError(t, w.Open(context.Background()))

	w.JumpToChapter(2)
	assert.Equal(t, 2, w.ChapterIndex())
	assert.Len(t, rec.percentages, 2)

	// Jumping to the chapter already at the top of the screen is a no-op.
	w.JumpToChapter(2)
	assert.Len(t, rec.percentages, 2)

	// Out-of-range jumps are no-ops too.
	w.JumpToChapter(99)
	w.JumpToChapter(-1)
	assert.Len(t, rec.percentages, 2)
}

func TestCloseExactlyOnce(t *testing.T) {
	w, rec := newTestWidget(t, testDoc(3, 10), "")
	require.NoError(t, w.Open(context.Background()))
	w.NextPage()

	w.Close()
	assert.Equal(t, 1, rec.closes)
	assert.Equal(t, StateClosed, w.State())

	// Nothing fires after close.
	emitted := len(rec.percentages)
	w.NextPage()
	w.PrevPage()
	w.Close()
	assert.Equal(t, 1, rec.closes)
	assert.Len(t, rec.percentages, emitted)

	// A dismissed widget cannot be reopened.
	assert.ErrorIs(t, w.Open(context.Background()), ErrClosed)
}

func TestLocationTokenRoundTrip(t *testing.T) {
	token := encodeLocation(3, 17, 2)
	chapter, paragraph, offset, ok := decodeLocation(token)
	require.True(t, ok)
	assert.Equal(t, 3, chapter)
	assert.Equal(t, 17, paragraph)
	assert.Equal(t, 2, offset)
}

func TestDecodeLocationAcceptsOffsetlessToken(t *testing.T) {
	chapter, paragraph, offset, ok := decodeLocation("ws1:2:14")
	require.True(t, ok)
	assert.Equal(t, 2, chapter)
	assert.Equal(t, 14, paragraph)
	assert.Equal(t, 0, offset, "no offset means the paragraph start")
}

func TestDecodeLocationRejectsMalformed(t *testing.T) {
	for _, token := range []string{"", "ws1", "ws1:1", "ws2:1:2", "1:2:3", "ws1:x:y", "ws1:0:0:-1"} {
		_, _, _, ok := decodeLocation(token)
		assert.False(t, ok, "token %q", token)
	}
}

func TestWrapRespectsWidth(t *testing.T) {
	lines := wrap("the quick brown fox jumps over the lazy dog", 15)
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, len(line), 15)
	}
}

func TestWrapCountsRunesNotBytes(t *testing.T) {
	lines := wrap("héllo wörld égain", 11)
	require.Equal(t, []string{"héllo wörld", "égain"}, lines)
	for _, line := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(line), 11)
	}
}

func TestPaginateSplitsLongParagraph(t *testing.T) {
	long := ""
	for i := 0; i < 40; i++ {
		long += "word "
	}
	doc := &Document{Chapters: []DocChapter{{Title: "One", Paragraphs: []string{long}}}}

	pages := paginate(doc, 20, 4)
	require.Greater(t, len(pages), 1)
	for _, p := range pages {
		assert.LessOrEqual(t, len(p.lines), 4)
	}
}
