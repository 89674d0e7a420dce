package models

import "time"

type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == "admin" {
			return true
		}
	}
	return false
}

// Session is the authenticated state handed around by injection.
// The token is opaque; this client never inspects it.
type Session struct {
	Token   string    `json:"token"`
	User    User      `json:"user"`
	SavedAt time.Time `json:"saved_at"`
}

type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	EpubURL     string `json:"epub_url"`
	PriceCents  int    `json:"price_cents"`
	Genre       string `json:"genre"`
}

// ReadingProgress is the current position within a book, not a high-water
// mark: navigating backward legitimately lowers the percentage.
type ReadingProgress struct {
	LastLocation string    `json:"last_location"`
	Percentage   int       `json:"reading_progress"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ShelfItem is a book on the user's bookshelf together with the last
// persisted reading position.
type ShelfItem struct {
	Book     Book            `json:"book"`
	Progress ReadingProgress `json:"progress"`
}

type FeedEntry struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"member_count"`
}

type GroupPost struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// BetaRequest is a beta-reader marketplace listing.
type BetaRequest struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	WordCount int       `json:"word_count"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	BetaStatusOpen    = "open"
	BetaStatusClaimed = "claimed"
	BetaStatusDone    = "done"
)

// Report is a moderation queue entry, visible only to admins.
type Report struct {
	ID         string    `json:"id"`
	TargetKind string    `json:"target_kind"`
	TargetID   string    `json:"target_id"`
	Reporter   string    `json:"reporter"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type Prompt struct {
	Text      string    `json:"text"`
	Genre     string    `json:"genre"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Interests   []string `json:"interests"`
}
