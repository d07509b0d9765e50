//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strconv"
	"strings"
	"time"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether the status is supported.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished:
		return true
	default:
		return false
	}
}

// ParsePostStatus normalizes a status string and reports whether it is supported.
func ParsePostStatus(value string) (PostStatus, bool) {
	status := PostStatus(strings.ToLower(strings.TrimSpace(value)))
	if status.Valid() {
		return status, true
	}
	return "", false
}

// PostListItem is the lightweight list representation of a post.
type PostListItem struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	AuthorName string     `json:"authorName"`
	Category   *Category  `json:"category"`
	Status     PostStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// PostDetail is the full representation of a post. Content is HTML already
// sanitized by the backend.
type PostDetail struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	AuthorName string     `json:"authorName"`
	Category   *Category  `json:"category"`
	Content    string     `json:"content"`
	Status     PostStatus `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// AuthorID parses the numeric id out of the anonymized "Author{id}" display
// name the backend exposes instead of a real ownership field. Returns 0 when
// the name does not follow that form; callers treat the result as advisory
// only, never as authorization.
func AuthorID(authorName string) int64 {
	rest, ok := strings.CutPrefix(authorName, "Author")
	if !ok || rest == "" {
		return 0
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// OwnedBy reports whether the anonymized author name maps to the given user
// id. Advisory only: the backend enforces real ownership on mutation.
func (p PostListItem) OwnedBy(userID int64) bool {
	return userID != 0 && AuthorID(p.AuthorName) == userID
}

// OwnedBy reports whether the anonymized author name maps to the given user id.
func (p PostDetail) OwnedBy(userID int64) bool {
	return userID != 0 && AuthorID(p.AuthorName) == userID
}

// PostInput is the create/update request body. Pointer fields are omitted
// from partial updates when nil.
type PostInput struct {
	Title      string     `json:"title"                validate:"required,min=3"`
	Content    string     `json:"content"              validate:"required"`
	Status     PostStatus `json:"status,omitempty"     validate:"omitempty,oneof=draft published"`
	CategoryID *int64     `json:"categoryId,omitempty"`
}

// PostStatusInput is the body of a status-only partial update.
type PostStatusInput struct {
	Status PostStatus `json:"status" validate:"required,oneof=draft published"`
}

// PostQuery holds list filters; zero values are omitted from the request.
type PostQuery struct {
	Page     int
	PageSize int
	Search   string
	Status   PostStatus
	Category string
	Ordering string
}
