// file: internal/instapaper/highlights.go
package instapaper

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Highlight endpoints.
const (
	highlightsAddEndpoint    = "/highlights/add"
	highlightsListEndpoint   = "/bookmarks/highlights"
	highlightsDeleteEndpoint = "/highlights/delete"
)

// AddHighlight saves text from a bookmark at the given position.
func (c *Client) AddHighlight(ctx context.Context, bookmarkID int64, text string, position int) (*Highlight, error) {
	if err := validateBookmarkID(bookmarkID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, validationErrorf("text is required")
	}
	if position < 0 {
		return nil, validationErrorf("position must not be negative, got %d", position)
	}
	params := bookmarkIDParams(bookmarkID)
	params.Set("text", text)
	params.Set("position", strconv.Itoa(position))

	resp, err := c.request(ctx, highlightsAddEndpoint, params)
	if err != nil {
		return nil, err
	}
	return decodeFirst[Highlight](highlightsAddEndpoint, resp)
}

// ListHighlights lists the highlights of a bookmark.
func (c *Client) ListHighlights(ctx context.Context, bookmarkID int64) ([]Highlight, error) {
	if err := validateBookmarkID(bookmarkID); err != nil {
		return nil, err
	}
	resp, err := c.request(ctx, highlightsListEndpoint, bookmarkIDParams(bookmarkID))
	if err != nil {
		return nil, err
	}
	var highlights []Highlight
	if err := decodeJSON(highlightsListEndpoint, resp, &highlights); err != nil {
		return nil, err
	}
	return highlights, nil
}

// DeleteHighlight deletes a highlight.
func (c *Client) DeleteHighlight(ctx context.Context, highlightID int64) error {
	if highlightID <= 0 {
		return validationErrorf("highlight_id must be a positive integer, got %d", highlightID)
	}
	params := url.Values{}
	params.Set("highlight_id", strconv.FormatInt(highlightID, 10))
	_, err := c.request(ctx, highlightsDeleteEndpoint, params)
	return err
}
