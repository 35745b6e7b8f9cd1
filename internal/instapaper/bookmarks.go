// file: internal/instapaper/bookmarks.go
package instapaper

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Bookmark endpoints.
const (
	bookmarksListEndpoint           = "/bookmarks/list"
	bookmarksAddEndpoint            = "/bookmarks/add"
	bookmarksDeleteEndpoint         = "/bookmarks/delete"
	bookmarksStarEndpoint           = "/bookmarks/star"
	bookmarksUnstarEndpoint         = "/bookmarks/unstar"
	bookmarksArchiveEndpoint        = "/bookmarks/archive"
	bookmarksUnarchiveEndpoint      = "/bookmarks/unarchive"
	bookmarksMoveEndpoint           = "/bookmarks/move"
	bookmarksGetTextEndpoint        = "/bookmarks/get_text"
	bookmarksUpdateProgressEndpoint = "/bookmarks/update_read_progress"
)

// MaxListLimit is the largest page the list endpoint serves.
const MaxListLimit = 500

// ListBookmarksOptions filters ListBookmarks.
type ListBookmarksOptions struct {
	// Folder defaults to unread when zero.
	Folder FolderSelector
	// Limit caps the result count; zero leaves it to the API.
	Limit int
	// Have is a comma-separated list of "id:hash" pairs already held.
	Have string
}

// AddBookmarkOptions describes a bookmark to save. When PrivateSource is set
// the bookmark is private: Content is required and URL is not sent.
type AddBookmarkOptions struct {
	URL             string
	Title           string
	Description     string
	FolderID        int64
	ResolveFinalURL *bool
	Content         string
	PrivateSource   string
}

// PrivateBookmarkOptions are the optional fields of AddPrivateBookmark.
type PrivateBookmarkOptions struct {
	Title       string
	Description string
	FolderID    int64
}

func bookmarkIDParams(bookmarkID int64) url.Values {
	params := url.Values{}
	params.Set("bookmark_id", strconv.FormatInt(bookmarkID, 10))
	return params
}

func validateBookmarkID(bookmarkID int64) error {
	if bookmarkID <= 0 {
		return validationErrorf("bookmark_id must be a positive integer, got %d", bookmarkID)
	}
	return nil
}

// ListBookmarks lists bookmarks in a folder. Only items typed "bookmark" are
// returned; user and meta records in the response are dropped.
func (c *Client) ListBookmarks(ctx context.Context, opts ListBookmarksOptions) ([]Bookmark, error) {
	if opts.Limit < 0 || opts.Limit > MaxListLimit {
		return nil, validationErrorf("limit must be between 1 and %d, got %d", MaxListLimit, opts.Limit)
	}
	params := url.Values{}
	if !opts.Folder.IsZero() {
		params.Set("folder_id", opts.Folder.String())
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Have != "" {
		params.Set("have", opts.Have)
	}

	resp, err := c.request(ctx, bookmarksListEndpoint, params)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := decodeJSON(bookmarksListEndpoint, resp, &raw); err != nil {
		return nil, err
	}
	return parseBookmarkList(raw)
}

// parseBookmarkList accepts both the flat array form and the object form
// {"user":..., "bookmarks":[...], "highlights":[...]}.
func parseBookmarkList(raw json.RawMessage) ([]Bookmark, error) {
	var items []json.RawMessage
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, decodeErrorf("%s: decode array: %v", bookmarksListEndpoint, err)
		}
	case len(trimmed) > 0 && trimmed[0] == '{':
		var envelope struct {
			Bookmarks []json.RawMessage `json:"bookmarks"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, decodeErrorf("%s: decode object: %v", bookmarksListEndpoint, err)
		}
		items = envelope.Bookmarks
	default:
		return nil, decodeErrorf("%s: expected an array or object", bookmarksListEndpoint)
	}

	bookmarks := make([]Bookmark, 0, len(items))
	for i, item := range items {
		var record struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(item, &record); err != nil || record.Type != "bookmark" {
			continue
		}
		var b Bookmark
		if err := json.Unmarshal(item, &b); err != nil {
			return nil, decodeErrorf("%s: decode bookmark at index %d: %v", bookmarksListEndpoint, i, err)
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// AddBookmark saves a bookmark and returns it as stored.
func (c *Client) AddBookmark(ctx context.Context, opts AddBookmarkOptions) (*Bookmark, error) {
	params := url.Values{}
	if opts.PrivateSource != "" {
		if opts.Content == "" {
			return nil, validationErrorf("content is required for private bookmarks")
		}
		params.Set("is_private_from_source", opts.PrivateSource)
		params.Set("content", opts.Content)
	} else {
		if strings.TrimSpace(opts.URL) == "" {
			return nil, validationErrorf("url is required")
		}
		params.Set("url", opts.URL)
		if opts.ResolveFinalURL != nil {
			params.Set("resolve_final_url", boolParam(*opts.ResolveFinalURL))
		}
	}
	if opts.Title != "" {
		params.Set("title", opts.Title)
	}
	if opts.Description != "" {
		params.Set("description", opts.Description)
	}
	if opts.FolderID != 0 {
		params.Set("folder_id", strconv.FormatInt(opts.FolderID, 10))
	}

	resp, err := c.request(ctx, bookmarksAddEndpoint, params)
	if err != nil {
		return nil, err
	}
	return decodeFirst[Bookmark](bookmarksAddEndpoint, resp)
}

// AddPrivateBookmark saves content that has no URL, labelled by sourceLabel
// (for example "email" or "notebook").
func (c *Client) AddPrivateBookmark(ctx context.Context, content, sourceLabel string, opts PrivateBookmarkOptions) (*Bookmark, error) {
	if content == "" {
		return nil, validationErrorf("content is required for private bookmarks")
	}
	if strings.TrimSpace(sourceLabel) == "" {
		return nil, validationErrorf("source_label is required for private bookmarks")
	}
	return c.AddBookmark(ctx, AddBookmarkOptions{
		Title:         opts.Title,
		Description:   opts.Description,
		FolderID:      opts.FolderID,
		Content:       content,
		PrivateSource: sourceLabel,
	})
}

// DeleteBookmark permanently deletes a bookmark.
func (c *Client) DeleteBookmark(ctx context.Context, bookmarkID int64) error {
	if err := validateBookmarkID(bookmarkID); err != nil {
		return err
	}
	_, err := c.request(ctx, bookmarksDeleteEndpoint, bookmarkIDParams(bookmarkID))
	return err
}

// StarBookmark stars a bookmark.
func (c *Client) StarBookmark(ctx context.Context, bookmarkID int64) (*Bookmark, error) {
	return c.bookmarkAction(ctx, bookmarksStarEndpoint, bookmarkID)
}

// UnstarBookmark removes the star from a bookmark.
func (c *Client) UnstarBookmark(ctx context.Context, bookmarkID int64) (*Bookmark, error) {
	return c.bookmarkAction(ctx, bookmarksUnstarEndpoint, bookmarkID)
}

// ArchiveBookmark moves a bookmark to the archive.
func (c *Client) ArchiveBookmark(ctx context.Context, bookmarkID int64) (*Bookmark, error) {
	return c.bookmarkAction(ctx, bookmarksArchiveEndpoint, bookmarkID)
}

// UnarchiveBookmark moves a bookmark back to unread.
func (c *Client) UnarchiveBookmark(ctx context.Context, bookmarkID int64) (*Bookmark, error) {
	return c.bookmarkAction(ctx, bookmarksUnarchiveEndpoint, bookmarkID)
}

func (c *Client) bookmarkAction(ctx context.Context, endpoint string, bookmarkID int64) (*Bookmark, error) {
	if err := validateBookmarkID(bookmarkID); err != nil {
		return nil, err
	}
	resp, err := c.request(ctx, endpoint, bookmarkIDParams(bookmarkID))
	if err != nil {
		return nil, err
	}
	return decodeFirst[Bookmark](endpoint, resp)
}

// MoveBookmark moves a bookmark into a user folder.
func (c *Client) MoveBookmark(ctx context.Context, bookmarkID, folderID int64) (*Bookmark, error) {
	if err := validateBookmarkID(bookmarkID); err != nil {
		return nil, err
	}
	if folderID <= 0 {
		return nil, validationErrorf("folder_id must be a positive integer, got %d", folderID)
	}
	params := bookmarkIDParams(bookmarkID)
	params.Set("folder_id", strconv.FormatInt(folderID, 10))

	resp, err := c.request(ctx, bookmarksMoveEndpoint, params)
	if err != nil {
		return nil, err
	}
	return decodeFirst[Bookmark](bookmarksMoveEndpoint, resp)
}

// GetArticleText returns the processed article HTML of a bookmark.
func (c *Client) GetArticleText(ctx context.Context, bookmarkID int64) (string, error) {
	if err := validateBookmarkID(bookmarkID); err != nil {
		return "", err
	}
	resp, err := c.request(ctx, bookmarksGetTextEndpoint, bookmarkIDParams(bookmarkID))
	if err != nil {
		return "", err
	}
	return expectText(bookmarksGetTextEndpoint, resp)
}

// UpdateReadProgress records reading progress in [0, 1]. A zero timestamp
// means now.
func (c *Client) UpdateReadProgress(ctx context.Context, bookmarkID int64, progress float64, at time.Time) (*Bookmark, error) {
	if err := validateBookmarkID(bookmarkID); err != nil {
		return nil, err
	}
	if progress < 0 || progress > 1 {
		return nil, validationErrorf("progress must be between 0.0 and 1.0, got %v", progress)
	}
	if at.IsZero() {
		at = c.now()
	}
	params := bookmarkIDParams(bookmarkID)
	params.Set("progress", strconv.FormatFloat(progress, 'f', -1, 64))
	params.Set("progress_timestamp", strconv.FormatInt(at.Unix(), 10))

	resp, err := c.request(ctx, bookmarksUpdateProgressEndpoint, params)
	if err != nil {
		return nil, err
	}
	return decodeFirst[Bookmark](bookmarksUpdateProgressEndpoint, resp)
}

// SearchBookmarks lists bookmarks and keeps those whose title, URL or
// description contains query, case-insensitively.
func (c *Client) SearchBookmarks(ctx context.Context, query string, opts ListBookmarksOptions) ([]Bookmark, error) {
	if strings.TrimSpace(query) == "" {
		return nil, validationErrorf("query is required")
	}
	bookmarks, err := c.ListBookmarks(ctx, opts)
	if err != nil {
		return nil, err
	}
	return FilterBookmarks(bookmarks, query), nil
}

// FilterBookmarks returns the bookmarks whose title, URL or description
// contains query, case-insensitively, preserving order.
func FilterBookmarks(bookmarks []Bookmark, query string) []Bookmark {
	needle := strings.ToLower(query)
	matches := make([]Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if strings.Contains(strings.ToLower(b.Title), needle) ||
			strings.Contains(strings.ToLower(b.URL), needle) ||
			strings.Contains(strings.ToLower(b.Description), needle) {
			matches = append(matches, b)
		}
	}
	return matches
}

func boolParam(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
