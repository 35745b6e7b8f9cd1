// file: internal/instapaper/folders.go
package instapaper

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// Folder endpoints.
const (
	foldersListEndpoint     = "/folders/list"
	foldersAddEndpoint      = "/folders/add"
	foldersDeleteEndpoint   = "/folders/delete"
	foldersSetOrderEndpoint = "/folders/set_order"
)

// ListFolders lists the user's folders.
func (c *Client) ListFolders(ctx context.Context) ([]Folder, error) {
	resp, err := c.request(ctx, foldersListEndpoint, nil)
	if err != nil {
		return nil, err
	}
	var folders []Folder
	if err := decodeJSON(foldersListEndpoint, resp, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// AddFolder creates a folder with the given title.
func (c *Client) AddFolder(ctx context.Context, title string) (*Folder, error) {
	if strings.TrimSpace(title) == "" {
		return nil, validationErrorf("title is required")
	}
	params := url.Values{}
	params.Set("title", title)

	resp, err := c.request(ctx, foldersAddEndpoint, params)
	if err != nil {
		return nil, err
	}
	return decodeFirst[Folder](foldersAddEndpoint, resp)
}

// DeleteFolder deletes a folder; its bookmarks return to unread.
func (c *Client) DeleteFolder(ctx context.Context, folderID int64) error {
	if folderID <= 0 {
		return validationErrorf("folder_id must be a positive integer, got %d", folderID)
	}
	params := url.Values{}
	params.Set("folder_id", strconv.FormatInt(folderID, 10))
	_, err := c.request(ctx, foldersDeleteEndpoint, params)
	return err
}

// ReorderFolders sets folder positions and returns the resulting folder list.
func (c *Client) ReorderFolders(ctx context.Context, order []FolderPosition) ([]Folder, error) {
	if len(order) == 0 {
		return nil, validationErrorf("folder_order must not be empty")
	}
	pairs := make([]string, len(order))
	for i, p := range order {
		if p.FolderID <= 0 {
			return nil, validationErrorf("folder_order[%d]: folder_id must be a positive integer, got %d", i, p.FolderID)
		}
		pairs[i] = strconv.FormatInt(p.FolderID, 10) + ":" + strconv.FormatInt(p.Position, 10)
	}
	params := url.Values{}
	params.Set("order", strings.Join(pairs, ","))

	resp, err := c.request(ctx, foldersSetOrderEndpoint, params)
	if err != nil {
		return nil, err
	}
	var folders []Folder
	if err := decodeJSON(foldersSetOrderEndpoint, resp, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}
