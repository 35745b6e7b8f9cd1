// file: internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper"
	"github.com/dkoosis/instapaper-mcp/internal/metrics"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// defaultListLimit applies when list_bookmarks or search_bookmarks omit limit.
const defaultListLimit = 25

// toolFunc produces a tool's output. A string is returned to the client as
// is; any other value is serialized as indented JSON.
type toolFunc func(ctx context.Context, request mcp.CallToolRequest) (interface{}, error)

var bookmarkIDsItems = map[string]interface{}{"type": "number"}

// registerTools registers every tool.
func (s *Server) registerTools() {
	// Discovery and reading.
	s.addTool(mcp.NewTool("list_bookmarks",
		mcp.WithDescription("List bookmarks from a folder. Retrieve unread, archived, or starred articles, or the contents of a folder by ID. This is the primary way to browse the reading list."),
		mcp.WithString("folder",
			mcp.Description(`Folder to list from: "unread" (default), "archive", "starred", or a folder_id`),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of bookmarks to return (1-500, default 25)"),
			mcp.Min(1),
			mcp.Max(instapaper.MaxListLimit),
		),
		mcp.WithString("have",
			mcp.Description(`Optional comma-separated "id:hash" pairs already held, for sync`),
		),
	), s.handleListBookmarks)

	s.addTool(mcp.NewTool("search_bookmarks",
		mcp.WithDescription("Find bookmarks whose title, URL, or description contains the query. Optionally restrict to a folder and cap the number of bookmarks scanned."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithString("folder",
			mcp.Description("Optional folder to search in (unread, archive, starred, or folder_id)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of bookmarks to search through (default 25)"),
			mcp.Min(1),
			mcp.Max(instapaper.MaxListLimit),
		),
	), s.handleSearchBookmarks)

	s.addTool(mcp.NewTool("get_article_content",
		mcp.WithDescription("Retrieve the full content of a single article. Returns processed HTML by default, or plain text when format is \"text\"."),
		mcp.WithNumber("bookmark_id",
			mcp.Required(),
			mcp.Description("ID of the bookmark to fetch content for"),
		),
		mcp.WithString("format",
			mcp.Description(`Output format: "html" (default) or "text"`),
			mcp.Enum(formatHTML, formatText),
		),
	), s.handleGetArticleContent)

	s.addTool(mcp.NewTool("get_articles_content_bulk",
		mcp.WithDescription("Fetch the content of several articles at once. Each article is returned with its content or its own error; one failure never hides the others."),
		mcp.WithArray("bookmark_ids",
			mcp.Required(),
			mcp.Description("Array of bookmark IDs to fetch content for"),
			mcp.Items(bookmarkIDsItems),
		),
		mcp.WithString("format",
			mcp.Description(`Output format: "html" (default) or "text"`),
			mcp.Enum(formatHTML, formatText),
		),
	), s.handleGetArticlesContentBulk)

	s.addTool(mcp.NewTool("list_highlights",
		mcp.WithDescription("List the highlights saved on an article."),
		mcp.WithNumber("bookmark_id",
			mcp.Required(),
			mcp.Description("ID of the bookmark"),
		),
	), s.handleListHighlights)

	// Bookmark actions.
	s.addTool(mcp.NewTool("add_bookmark",
		mcp.WithDescription("Save a web page to Instapaper for later reading. Returns the bookmark ID, title, and URL."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the article to save"),
		),
		mcp.WithString("title",
			mcp.Description("Optional title for the bookmark"),
		),
		mcp.WithString("description",
			mcp.Description("Optional description or notes about the article"),
		),
		mcp.WithNumber("folder_id",
			mcp.Description("Optional folder ID to save the bookmark in"),
		),
		mcp.WithBoolean("resolve_final_url",
			mcp.Description("Follow redirects and save the final URL (default true)"),
		),
	), s.handleAddBookmark)

	s.addTool(mcp.NewTool("add_private_bookmark",
		mcp.WithDescription("Save content that has no URL, such as emails, notes, clipped text, or generated summaries. Private bookmarks are never shared."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("HTML content of the private bookmark. Plain text is accepted."),
		),
		mcp.WithString("source_label",
			mcp.Required(),
			mcp.Description(`Where the content came from (e.g. "email", "notebook", "slack", "clipped-text", "generated")`),
		),
		mcp.WithString("title",
			mcp.Description("Optional title for the bookmark"),
		),
		mcp.WithString("description",
			mcp.Description("Optional description or notes"),
		),
		mcp.WithNumber("folder_id",
			mcp.Description("Optional folder ID to save the bookmark in"),
		),
	), s.handleAddPrivateBookmark)

	s.addTool(bookmarkIDTool("delete_bookmark", "Permanently delete a bookmark. This cannot be undone.", "ID of the bookmark to delete"), s.handleDeleteBookmark)
	s.addTool(bookmarkIDTool("star_bookmark", "Mark a bookmark as starred.", "ID of the bookmark to star"), s.bookmarkAction(s.api.StarBookmark))
	s.addTool(bookmarkIDTool("unstar_bookmark", "Remove the star from a bookmark.", "ID of the bookmark to unstar"), s.bookmarkAction(s.api.UnstarBookmark))
	s.addTool(bookmarkIDTool("archive_bookmark", "Move a bookmark to the archive.", "ID of the bookmark to archive"), s.bookmarkAction(s.api.ArchiveBookmark))
	s.addTool(bookmarkIDTool("unarchive_bookmark", "Move an archived bookmark back to unread.", "ID of the bookmark to unarchive"), s.bookmarkAction(s.api.UnarchiveBookmark))

	s.addTool(mcp.NewTool("move_bookmark",
		mcp.WithDescription("Move a bookmark to a folder."),
		mcp.WithNumber("bookmark_id",
			mcp.Required(),
			mcp.Description("ID of the bookmark to move"),
		),
		mcp.WithNumber("folder_id",
			mcp.Required(),
			mcp.Description("ID of the destination folder"),
		),
	), s.handleMoveBookmark)

	s.addTool(mcp.NewTool("update_read_progress",
		mcp.WithDescription("Record how far a bookmark has been read, from 0.0 (not started) to 1.0 (finished)."),
		mcp.WithNumber("bookmark_id",
			mcp.Required(),
			mcp.Description("ID of the bookmark"),
		),
		mcp.WithNumber("progress",
			mcp.Required(),
			mcp.Description("Reading progress as a decimal (0.0 = not started, 1.0 = finished)"),
			mcp.Min(0),
			mcp.Max(1),
		),
	), s.handleUpdateReadProgress)

	// Bulk actions.
	s.addTool(mcp.NewTool("move_bookmarks_bulk",
		mcp.WithDescription("Move several bookmarks to the same folder in parallel. Returns the number moved and a per-bookmark result."),
		bookmarkIDsArg("Array of bookmark IDs to move"),
		mcp.WithNumber("folder_id",
			mcp.Required(),
			mcp.Description("ID of the destination folder for all bookmarks"),
		),
	), s.handleMoveBookmarksBulk)
	s.addTool(bulkTool("star_bookmarks_bulk", "Star several bookmarks in parallel.", "Array of bookmark IDs to star"),
		s.bulkBookmarkAction("star_bookmarks_bulk", "starred", s.api.StarBookmark))
	s.addTool(bulkTool("unstar_bookmarks_bulk", "Remove the star from several bookmarks in parallel.", "Array of bookmark IDs to unstar"),
		s.bulkBookmarkAction("unstar_bookmarks_bulk", "unstarred", s.api.UnstarBookmark))
	s.addTool(bulkTool("archive_bookmarks_bulk", "Archive several bookmarks in parallel.", "Array of bookmark IDs to archive"),
		s.bulkBookmarkAction("archive_bookmarks_bulk", "archived", s.api.ArchiveBookmark))
	s.addTool(bulkTool("unarchive_bookmarks_bulk", "Move several archived bookmarks back to unread in parallel.", "Array of bookmark IDs to unarchive"),
		s.bulkBookmarkAction("unarchive_bookmarks_bulk", "unarchived", s.api.UnarchiveBookmark))
	s.addTool(mcp.NewTool("update_read_progress_bulk",
		mcp.WithDescription("Set the same reading progress on several bookmarks in parallel."),
		bookmarkIDsArg("Array of bookmark IDs to update"),
		mcp.WithNumber("progress",
			mcp.Required(),
			mcp.Description("Reading progress as a decimal (0.0 = not started, 1.0 = finished)"),
			mcp.Min(0),
			mcp.Max(1),
		),
	), s.handleUpdateReadProgressBulk)

	// Folders.
	s.addTool(mcp.NewTool("list_folders",
		mcp.WithDescription("List the folders in the account with their IDs and positions."),
	), s.handleListFolders)

	s.addTool(mcp.NewTool("create_folder",
		mcp.WithDescription("Create a folder for organizing bookmarks."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Name of the folder to create"),
		),
	), s.handleCreateFolder)

	s.addTool(mcp.NewTool("delete_folder",
		mcp.WithDescription("Delete a folder. Its bookmarks move to unread."),
		mcp.WithNumber("folder_id",
			mcp.Required(),
			mcp.Description("ID of the folder to delete"),
		),
	), s.handleDeleteFolder)

	s.addTool(mcp.NewTool("reorder_folders",
		mcp.WithDescription("Set the display order of folders."),
		mcp.WithArray("folder_order",
			mcp.Required(),
			mcp.Description("Array of folder ID and position pairs"),
			mcp.Items(map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"folder_id": map[string]interface{}{"type": "number", "description": "The folder ID"},
					"position":  map[string]interface{}{"type": "number", "description": "The desired position (1 = first)"},
				},
				"required": []string{"folder_id", "position"},
			}),
		),
	), s.handleReorderFolders)

	// Highlights.
	s.addTool(mcp.NewTool("add_highlight",
		mcp.WithDescription("Highlight a passage of an article."),
		mcp.WithNumber("bookmark_id",
			mcp.Required(),
			mcp.Description("ID of the bookmark"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to highlight"),
		),
		mcp.WithNumber("position",
			mcp.Description("Zero-based position of the highlight among the article's paragraphs (default 0)"),
			mcp.Min(0),
		),
	), s.handleAddHighlight)

	s.addTool(mcp.NewTool("delete_highlight",
		mcp.WithDescription("Delete a highlight."),
		mcp.WithNumber("highlight_id",
			mcp.Required(),
			mcp.Description("ID of the highlight to delete"),
		),
	), s.handleDeleteHighlight)
}

func bookmarkIDTool(name, description, argDescription string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithNumber("bookmark_id",
			mcp.Required(),
			mcp.Description(argDescription),
		),
	)
}

func bookmarkIDsArg(description string) mcp.ToolOption {
	return mcp.WithArray("bookmark_ids",
		mcp.Required(),
		mcp.Description(description),
		mcp.Items(bookmarkIDsItems),
	)
}

func bulkTool(name, description, argDescription string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description+" Returns the number of successes and a per-bookmark result; one failure never hides the others."),
		bookmarkIDsArg(argDescription),
	)
}

// addTool compiles the tool's input schema, wraps fn with argument validation,
// tracing, metrics and the error boundary, and registers it.
func (s *Server) addTool(tool mcp.Tool, fn toolFunc) {
	if err := s.validator.Register(tool.Name, inputSchemaDocument(tool)); err != nil {
		s.registerErr = errors.CombineErrors(s.registerErr, err)
		return
	}
	handler := s.wrapTool(tool.Name, fn)
	s.tools[tool.Name] = handler
	s.mcpServer.AddTool(tool, handler)
}

// inputSchemaDocument renders the tool's input schema as a JSON Schema object.
func inputSchemaDocument(tool mcp.Tool) map[string]interface{} {
	properties := tool.InputSchema.Properties
	if properties == nil {
		properties = map[string]interface{}{}
	}
	doc := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(tool.InputSchema.Required) > 0 {
		doc["required"] = tool.InputSchema.Required
	}
	return doc
}

// wrapTool converts fn's errors into isError results so a failed call never
// surfaces as a protocol error. Arguments that do not match the tool's schema
// are rejected before fn runs.
func (s *Server) wrapTool(name string, fn toolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ctx, span := metrics.StartSpan(ctx, "mcp.tool."+name)
		var out interface{}
		err := s.validateArguments(ctx, name, request)
		if err == nil {
			out, err = fn(ctx, request)
		}
		metrics.EndSpan(span, err)
		s.metrics.RecordToolCall(ctx, name, time.Since(start), err)

		if err != nil {
			s.logger.Warn("Tool call failed.",
				"tool", name,
				"kind", errorKind(err),
				"error", err)
			return errorResult(err), nil
		}
		s.logger.Debug("Tool call succeeded.", "tool", name, "duration", time.Since(start))
		return textResult(out)
	}
}

// validateArguments checks the call's arguments against the tool's schema.
func (s *Server) validateArguments(ctx context.Context, name string, request mcp.CallToolRequest) error {
	raw, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "invalid tool arguments"), instapaper.ErrValidation)
	}
	if err := s.validator.Validate(ctx, name, raw); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid tool arguments"), instapaper.ErrValidation)
	}
	return nil
}

// bindArguments decodes the call's arguments into dst.
func bindArguments(request mcp.CallToolRequest, dst interface{}) error {
	raw, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "invalid tool arguments"), instapaper.ErrValidation)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid tool arguments"), instapaper.ErrValidation)
	}
	return nil
}
