// file: internal/server/handlers.go
package server

import (
	"context"
	"strings"
	"time"

	"github.com/dkoosis/instapaper-mcp/internal/article"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper"
	"github.com/mark3labs/mcp-go/mcp"
)

// Content formats accepted by the article tools.
const (
	formatHTML = "html"
	formatText = "text"
)

type listArgs struct {
	Folder string `json:"folder"`
	Limit  int    `json:"limit"`
	Have   string `json:"have"`
}

// options resolves the folder selector and applies the default limit.
func (a listArgs) options() (instapaper.ListBookmarksOptions, error) {
	folder, err := instapaper.ParseFolderSelector(a.Folder)
	if err != nil {
		return instapaper.ListBookmarksOptions{}, err
	}
	limit := a.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	return instapaper.ListBookmarksOptions{Folder: folder, Limit: limit, Have: a.Have}, nil
}

type bookmarkIDArgs struct {
	BookmarkID int64 `json:"bookmark_id"`
}

type listBookmarksResult struct {
	Total     int                   `json:"total"`
	Bookmarks []instapaper.Bookmark `json:"bookmarks"`
}

func (s *Server) handleListBookmarks(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args listArgs
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	opts, err := args.options()
	if err != nil {
		return nil, err
	}
	bookmarks, err := s.api.ListBookmarks(ctx, opts)
	if err != nil {
		return nil, err
	}
	return listBookmarksResult{Total: len(bookmarks), Bookmarks: nonNil(bookmarks)}, nil
}

type searchResult struct {
	Query     string                `json:"query"`
	Results   int                   `json:"results"`
	Bookmarks []instapaper.Bookmark `json:"bookmarks"`
}

func (s *Server) handleSearchBookmarks(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		listArgs
		Query string `json:"query"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	opts, err := args.options()
	if err != nil {
		return nil, err
	}
	matches, err := s.api.SearchBookmarks(ctx, args.Query, opts)
	if err != nil {
		return nil, err
	}
	return searchResult{Query: args.Query, Results: len(matches), Bookmarks: nonNil(matches)}, nil
}

type articleArgs struct {
	BookmarkID int64  `json:"bookmark_id"`
	Format     string `json:"format"`
}

func validateFormat(format string) error {
	switch format {
	case "", formatHTML, formatText:
		return nil
	default:
		return invalidArgumentsf("format must be %q or %q, got %q", formatHTML, formatText, format)
	}
}

// articleContent fetches one article and renders it in format.
func (s *Server) articleContent(ctx context.Context, bookmarkID int64, format string) (string, error) {
	html, err := s.api.GetArticleText(ctx, bookmarkID)
	if err != nil {
		return "", err
	}
	if format == formatText {
		return article.PlainText(html)
	}
	return html, nil
}

func (s *Server) handleGetArticleContent(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args articleArgs
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	if err := validateFormat(args.Format); err != nil {
		return nil, err
	}
	return s.articleContent(ctx, args.BookmarkID, args.Format)
}

func (s *Server) handleListHighlights(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args bookmarkIDArgs
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	highlights, err := s.api.ListHighlights(ctx, args.BookmarkID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"highlights": nonNil(highlights)}, nil
}

type addBookmarkResult struct {
	Success    bool   `json:"success"`
	BookmarkID int64  `json:"bookmark_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

func (s *Server) handleAddBookmark(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		URL             string `json:"url"`
		Title           string `json:"title"`
		Description     string `json:"description"`
		FolderID        int64  `json:"folder_id"`
		ResolveFinalURL *bool  `json:"resolve_final_url"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	bookmark, err := s.api.AddBookmark(ctx, instapaper.AddBookmarkOptions{
		URL:             args.URL,
		Title:           args.Title,
		Description:     args.Description,
		FolderID:        args.FolderID,
		ResolveFinalURL: args.ResolveFinalURL,
	})
	if err != nil {
		return nil, err
	}
	return addBookmarkResult{
		Success:    true,
		BookmarkID: bookmark.BookmarkID,
		Title:      bookmark.Title,
		URL:        bookmark.URL,
	}, nil
}

type addPrivateBookmarkResult struct {
	Success       bool   `json:"success"`
	BookmarkID    int64  `json:"bookmark_id"`
	Title         string `json:"title"`
	PrivateSource string `json:"private_source"`
	Message       string `json:"message"`
}

func (s *Server) handleAddPrivateBookmark(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		Content     string `json:"content"`
		SourceLabel string `json:"source_label"`
		Title       string `json:"title"`
		Description string `json:"description"`
		FolderID    int64  `json:"folder_id"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	bookmark, err := s.api.AddPrivateBookmark(ctx, args.Content, args.SourceLabel, instapaper.PrivateBookmarkOptions{
		Title:       args.Title,
		Description: args.Description,
		FolderID:    args.FolderID,
	})
	if err != nil {
		return nil, err
	}
	privateSource := bookmark.PrivateSource
	if privateSource == "" {
		privateSource = args.SourceLabel
	}
	return addPrivateBookmarkResult{
		Success:       true,
		BookmarkID:    bookmark.BookmarkID,
		Title:         bookmark.Title,
		PrivateSource: privateSource,
		Message:       "Private bookmark saved successfully",
	}, nil
}

type messageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleDeleteBookmark(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args bookmarkIDArgs
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	if err := s.api.DeleteBookmark(ctx, args.BookmarkID); err != nil {
		return nil, err
	}
	return messageResult{Success: true, Message: "Bookmark deleted"}, nil
}

type bookmarkResult struct {
	Success  bool                 `json:"success"`
	Bookmark *instapaper.Bookmark `json:"bookmark"`
}

// bookmarkAction adapts a single-bookmark state change to a tool.
func (s *Server) bookmarkAction(action func(context.Context, int64) (*instapaper.Bookmark, error)) toolFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
		var args bookmarkIDArgs
		if err := bindArguments(request, &args); err != nil {
			return nil, err
		}
		bookmark, err := action(ctx, args.BookmarkID)
		if err != nil {
			return nil, err
		}
		return bookmarkResult{Success: true, Bookmark: bookmark}, nil
	}
}

func (s *Server) handleMoveBookmark(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		BookmarkID int64 `json:"bookmark_id"`
		FolderID   int64 `json:"folder_id"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	bookmark, err := s.api.MoveBookmark(ctx, args.BookmarkID, args.FolderID)
	if err != nil {
		return nil, err
	}
	return bookmarkResult{Success: true, Bookmark: bookmark}, nil
}

type progressArgs struct {
	BookmarkID int64    `json:"bookmark_id"`
	Progress   *float64 `json:"progress"`
}

func (s *Server) handleUpdateReadProgress(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args progressArgs
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	if args.Progress == nil {
		return nil, invalidArgumentsf("progress is required")
	}
	if _, err := s.api.UpdateReadProgress(ctx, args.BookmarkID, *args.Progress, time.Time{}); err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "progress": *args.Progress}, nil
}

func (s *Server) handleListFolders(ctx context.Context, _ mcp.CallToolRequest) (interface{}, error) {
	folders, err := s.api.ListFolders(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"folders": nonNil(folders)}, nil
}

func (s *Server) handleCreateFolder(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		Title string `json:"title"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	folder, err := s.api.AddFolder(ctx, strings.TrimSpace(args.Title))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "folder": folder}, nil
}

func (s *Server) handleDeleteFolder(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		FolderID int64 `json:"folder_id"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	if err := s.api.DeleteFolder(ctx, args.FolderID); err != nil {
		return nil, err
	}
	return messageResult{Success: true, Message: "Folder deleted"}, nil
}

func (s *Server) handleReorderFolders(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		FolderOrder []instapaper.FolderPosition `json:"folder_order"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	folders, err := s.api.ReorderFolders(ctx, args.FolderOrder)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "folders": nonNil(folders)}, nil
}

func (s *Server) handleAddHighlight(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		BookmarkID int64  `json:"bookmark_id"`
		Text       string `json:"text"`
		Position   int    `json:"position"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	highlight, err := s.api.AddHighlight(ctx, args.BookmarkID, args.Text, args.Position)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"success": true, "highlight": highlight}, nil
}

func (s *Server) handleDeleteHighlight(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		HighlightID int64 `json:"highlight_id"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	if err := s.api.DeleteHighlight(ctx, args.HighlightID); err != nil {
		return nil, err
	}
	return messageResult{Success: true, Message: "Highlight deleted"}, nil
}

// nonNil keeps empty lists serialized as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
