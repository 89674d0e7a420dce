package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/mxchestnut/workshelf/pkg/models"
)

type feedItem struct {
	entry models.FeedEntry
}

func (i feedItem) Title() string {
	return i.entry.Title
}

func (i feedItem) Description() string {
	return fmt.Sprintf("%s | %s | %s", i.entry.Author, i.entry.Kind, i.entry.PublishedAt.Format("Jan 2, 2006"))
}

func (i feedItem) FilterValue() string {
	return i.entry.Title + " " + i.entry.Author
}

type groupItem struct {
	group models.Group
}

func (i groupItem) Title() string {
	return i.group.Name
}

func (i groupItem) Description() string {
	return fmt.Sprintf("%d members | %s", i.group.MemberCount, i.group.Description)
}

func (i groupItem) FilterValue() string {
	return i.group.Name
}

type bookItem struct {
	book models.Book
}

func (i bookItem) Title() string {
	return i.book.Title
}

func (i bookItem) Description() string {
	price := "free"
	if i.book.PriceCents > 0 {
		price = fmt.Sprintf("$%.2f", float64(i.book.PriceCents)/100)
	}
	return fmt.Sprintf("%s | %s | %s", i.book.Author, i.book.Genre, price)
}

func (i bookItem) FilterValue() string {
	return i.book.Title + " " + i.book.Author
}

type shelfItem struct {
	item models.ShelfItem
}

func (i shelfItem) Title() string {
	return i.item.Book.Title
}

func (i shelfItem) Description() string {
	return fmt.Sprintf("%s | %d%% read", i.item.Book.Author, i.item.Progress.Percentage)
}

func (i shelfItem) FilterValue() string {
	return i.item.Book.Title + " " + i.item.Book.Author
}

type betaItem struct {
	req models.BetaRequest
}

func (i betaItem) Title() string {
	return i.req.Title
}

func (i betaItem) Description() string {
	return fmt.Sprintf("%s | %s | %dk words | %s", i.req.Author, i.req.Genre, i.req.WordCount/1000, i.req.Status)
}

func (i betaItem) FilterValue() string {
	return i.req.Title + " " + i.req.Genre
}

type reportItem struct {
	report models.Report
}

func (i reportItem) Title() string {
	return fmt.Sprintf("%s %s", i.report.TargetKind, i.report.TargetID)
}

func (i reportItem) Description() string {
	return fmt.Sprintf("by %s | %s | %s", i.report.Reporter, i.report.Status, i.report.Reason)
}

func (i reportItem) FilterValue() string {
	return i.report.Reason
}

var (
	_ list.Item = feedItem{}
	_ list.Item = groupItem{}
	_ list.Item = bookItem{}
	_ list.Item = shelfItem{}
	_ list.Item = betaItem{}
	_ list.Item = reportItem{}
)
