// file: internal/server/bulk_tools.go
package server

import (
	"context"
	"time"

	"github.com/dkoosis/instapaper-mcp/internal/bulk"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper"
	"github.com/mark3labs/mcp-go/mcp"
)

// itemResult is one bookmark's entry in a bulk payload. Exactly one of the
// fields is set; an empty article still carries "content".
type itemResult struct {
	Success bool    `json:"success,omitempty"`
	Content *string `json:"content,omitempty"`
	Error   string  `json:"error,omitempty"`
}

type bulkArgs struct {
	BookmarkIDs []int64 `json:"bookmark_ids"`
}

func (a bulkArgs) validate() error {
	if len(a.BookmarkIDs) == 0 {
		return invalidArgumentsf("bookmark_ids must contain at least one bookmark ID")
	}
	return nil
}

// bulkPayload renders outcomes as {total, <verb>, failed, <key>: {id: entry}}
// and records them under the tool's operation name.
func (s *Server) bulkPayload(ctx context.Context, operation, verb, key string,
	outcomes bulk.Outcomes[int64, itemResult]) map[string]interface{} {
	summary := outcomes.Summary()
	s.metrics.RecordBulk(ctx, operation, summary.Succeeded, summary.Failed)
	if summary.Failed > 0 {
		s.logger.Warn("Bulk operation finished with failures.",
			"operation", operation,
			"succeeded", summary.Succeeded,
			"failed", summary.Failed)
	}

	entries := make(map[int64]itemResult, len(outcomes))
	for id, outcome := range outcomes {
		if outcome.OK() {
			entries[id] = outcome.Value
		} else {
			entries[id] = itemResult{Error: outcome.Err.Error()}
		}
	}
	return map[string]interface{}{
		"total":  summary.Total,
		verb:     summary.Succeeded,
		"failed": summary.Failed,
		key:      entries,
	}
}

// dispatchAction applies action to every ID and reports {success: true} for
// each one that succeeds.
func (s *Server) dispatchAction(ctx context.Context, ids []int64, action func(context.Context, int64) error) bulk.Outcomes[int64, itemResult] {
	return bulk.Dispatch(ctx, ids, s.bulkLimit, func(ctx context.Context, id int64) (itemResult, error) {
		if err := action(ctx, id); err != nil {
			return itemResult{}, err
		}
		return itemResult{Success: true}, nil
	})
}

func (s *Server) handleGetArticlesContentBulk(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		bulkArgs
		Format string `json:"format"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	if err := args.validate(); err != nil {
		return nil, err
	}
	if err := validateFormat(args.Format); err != nil {
		return nil, err
	}
	outcomes := bulk.Dispatch(ctx, args.BookmarkIDs, s.bulkLimit, func(ctx context.Context, id int64) (itemResult, error) {
		content, err := s.articleContent(ctx, id, args.Format)
		if err != nil {
			return itemResult{}, err
		}
		return itemResult{Content: &content}, nil
	})
	return s.bulkPayload(ctx, "get_articles_content_bulk", "fetched", "articles", outcomes), nil
}

// bulkBookmarkAction adapts a single-bookmark state change to a bulk tool
// reporting its successes under verb.
func (s *Server) bulkBookmarkAction(operation, verb string, action func(context.Context, int64) (*instapaper.Bookmark, error)) toolFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
		var args bulkArgs
		if err := bindArguments(request, &args); err != nil {
			return nil, err
		}
		if err := args.validate(); err != nil {
			return nil, err
		}
		outcomes := s.dispatchAction(ctx, args.BookmarkIDs, func(ctx context.Context, id int64) error {
			_, err := action(ctx, id)
			return err
		})
		return s.bulkPayload(ctx, operation, verb, "results", outcomes), nil
	}
}

func (s *Server) handleMoveBookmarksBulk(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		bulkArgs
		FolderID int64 `json:"folder_id"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	if err := args.validate(); err != nil {
		return nil, err
	}
	if args.FolderID <= 0 {
		return nil, invalidArgumentsf("folder_id must be a positive integer, got %d", args.FolderID)
	}
	outcomes := s.dispatchAction(ctx, args.BookmarkIDs, func(ctx context.Context, id int64) error {
		_, err := s.api.MoveBookmark(ctx, id, args.FolderID)
		return err
	})
	payload := s.bulkPayload(ctx, "move_bookmarks_bulk", "moved", "results", outcomes)
	payload["folder_id"] = args.FolderID
	return payload, nil
}

func (s *Server) handleUpdateReadProgressBulk(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	var args struct {
		bulkArgs
		Progress *float64 `json:"progress"`
	}
	if err := bindArguments(request, &args); err != nil {
		return nil, err
	}
	if err := args.validate(); err != nil {
		return nil, err
	}
	if args.Progress == nil {
		return nil, invalidArgumentsf("progress is required")
	}
	progress := *args.Progress
	if progress < 0 || progress > 1 {
		return nil, invalidArgumentsf("progress must be between 0.0 and 1.0, got %v", progress)
	}
	outcomes := s.dispatchAction(ctx, args.BookmarkIDs, func(ctx context.Context, id int64) error {
		_, err := s.api.UpdateReadProgress(ctx, id, progress, time.Time{})
		return err
	})
	payload := s.bulkPayload(ctx, "update_read_progress_bulk", "updated", "results", outcomes)
	payload["progress"] = progress
	return payload, nil
}
