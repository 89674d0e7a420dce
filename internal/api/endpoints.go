package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mxchestnut/workshelf/pkg/models"
)

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.Session, error) {
	req := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var sess models.Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &sess, false); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	return &sess, nil
}

// Register creates an account and returns the fresh session.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	var sess models.Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &sess, false); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}
	return &sess, nil
}

// Feed returns the platform activity feed for the current user.
func (c *Client) Feed(ctx context.Context) ([]models.FeedEntry, error) {
	var entries []models.FeedEntry
	if err := c.do(ctx, http.MethodGet, "/feed", nil, &entries, true); err != nil {
		return nil, fmt.Errorf("loading feed: %w", err)
	}
	return entries, nil
}

func (c *Client) Groups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := c.do(ctx, http.MethodGet, "/groups", nil, &groups, true); err != nil {
		return nil, fmt.Errorf("loading groups: %w", err)
	}
	return groups, nil
}

func (c *Client) GroupPosts(ctx context.Context, groupID string) ([]models.GroupPost, error) {
	var posts []models.GroupPost
	path := fmt.Sprintf("/groups/%s/posts", url.PathEscape(groupID))
	if err := c.do(ctx, http.MethodGet, path, nil, &posts, true); err != nil {
		return nil, fmt.Errorf("loading group posts: %w", err)
	}
	return posts, nil
}

func (c *Client) CreateGroupPost(ctx context.Context, groupID, body string) (*models.GroupPost, error) {
	req := struct {
		Body string `json:"body"`
	}{body}

	var post models.GroupPost
	path := fmt.Sprintf("/groups/%s/posts", url.PathEscape(groupID))
	if err := c.do(ctx, http.MethodPost, path, req, &post, true); err != nil {
		return nil, fmt.Errorf("creating group post: %w", err)
	}
	return &post, nil
}

// StoreBooks lists books in the store, optionally filtered by a search query.
func (c *Client) StoreBooks(ctx context.Context, query string) ([]models.Book, error) {
	path := "/store/books"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}

	var books []models.Book
	if err := c.do(ctx, http.MethodGet, path, nil, &books, true); err != nil {
		return nil, fmt.Errorf("loading store books: %w", err)
	}
	return books, nil
}

func (c *Client) BookDetail(ctx context.Context, bookID string) (*models.Book, error) {
	var book models.Book
	path := fmt.Sprintf("/store/books/%s", url.PathEscape(bookID))
	if err := c.do(ctx, http.MethodGet, path, nil, &book, true); err != nil {
		return nil, fmt.Errorf("loading book: %w", err)
	}
	return &book, nil
}

// Purchase buys a book, adding it to the bookshelf.
func (c *Client) Purchase(ctx context.Context, bookID string) (*models.ShelfItem, error) {
	var item models.ShelfItem
	path := fmt.Sprintf("/store/books/%s/purchase", url.PathEscape(bookID))
	if err := c.do(ctx, http.MethodPost, path, nil, &item, true); err != nil {
		return nil, fmt.Errorf("purchasing book: %w", err)
	}
	return &item, nil
}

// Bookshelf returns the user's purchased books with their last persisted
// reading positions.
func (c *Client) Bookshelf(ctx context.Context) ([]models.ShelfItem, error) {
	var items []models.ShelfItem
	if err := c.do(ctx, http.MethodGet, "/bookshelf", nil, &items, true); err != nil {
		return nil, fmt.Errorf("loading bookshelf: %w", err)
	}
	return items, nil
}

// UpdateProgress relays the reader's latest position upstream. The bookshelf
// route is the single progress path; the store item id is never a progress
// key.
func (c *Client) UpdateProgress(ctx context.Context, bookID, lastLocation string, percentage int) error {
	req := struct {
		LastLocation string `json:"last_location"`
		Percentage   int    `json:"reading_progress"`
	}{lastLocation, percentage}

	path := fmt.Sprintf("/bookshelf/%s/progress", url.PathEscape(bookID))
	if err := c.do(ctx, http.MethodPost, path, req, nil, true); err != nil {
		return fmt.Errorf("updating progress: %w", err)
	}
	return nil
}

// BetaRequests lists beta-reader marketplace requests, optionally filtered
// by genre.
func (c *Client) BetaRequests(ctx context.Context, genre string) ([]models.BetaRequest, error) {
	path := "/beta/requests"
	if genre != "" {
		path += "?genre=" + url.QueryEscape(genre)
	}

	var reqs []models.BetaRequest
	if err := c.do(ctx, http.MethodGet, path, nil, &reqs, true); err != nil {
		return nil, fmt.Errorf("loading beta requests: %w", err)
	}
	return reqs, nil
}

func (c *Client) ClaimBetaRequest(ctx context.Context, id string) (*models.BetaRequest, error) {
	var req models.BetaRequest
	path := fmt.Sprintf("/beta/requests/%s/claim", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, path, nil, &req, true); err != nil {
		return nil, fmt.Errorf("claiming beta request: %w", err)
	}
	return &req, nil
}

// Reports returns the moderation queue. Admin only; the backend enforces it.
func (c *Client) Reports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := c.do(ctx, http.MethodGet, "/admin/reports", nil, &reports, true); err != nil {
		return nil, fmt.Errorf("loading reports: %w", err)
	}
	return reports, nil
}

func (c *Client) ResolveReport(ctx context.Context, id, action string) error {
	req := struct {
		Action string `json:"action"`
	}{action}

	path := fmt.Sprintf("/admin/reports/%s/resolve", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, path, req, nil, true); err != nil {
		return fmt.Errorf("resolving report: %w", err)
	}
	return nil
}
