// Package server exposes an Instapaper account over the Model Context Protocol:
// tools for reading and organizing bookmarks, resources for folder listings and
// article text, and prompt templates for common reading workflows.
// file: internal/server/server.go
package server

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/dkoosis/instapaper-mcp/internal/metrics"
	"github.com/dkoosis/instapaper-mcp/internal/schema"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// DefaultName is reported to MCP clients during initialization.
	DefaultName = "instapaper-mcp-server"
	// DefaultVersion is reported to MCP clients during initialization.
	DefaultVersion = "1.0.0"
)

// API is the subset of the Instapaper client the server drives.
// *instapaper.Client satisfies it.
type API interface {
	ListBookmarks(ctx context.Context, opts instapaper.ListBookmarksOptions) ([]instapaper.Bookmark, error)
	SearchBookmarks(ctx context.Context, query string, opts instapaper.ListBookmarksOptions) ([]instapaper.Bookmark, error)
	GetArticleText(ctx context.Context, bookmarkID int64) (string, error)
	AddBookmark(ctx context.Context, opts instapaper.AddBookmarkOptions) (*instapaper.Bookmark, error)
	AddPrivateBookmark(ctx context.Context, content, sourceLabel string, opts instapaper.PrivateBookmarkOptions) (*instapaper.Bookmark, error)
	DeleteBookmark(ctx context.Context, bookmarkID int64) error
	StarBookmark(ctx context.Context, bookmarkID int64) (*instapaper.Bookmark, error)
	UnstarBookmark(ctx context.Context, bookmarkID int64) (*instapaper.Bookmark, error)
	ArchiveBookmark(ctx context.Context, bookmarkID int64) (*instapaper.Bookmark, error)
	UnarchiveBookmark(ctx context.Context, bookmarkID int64) (*instapaper.Bookmark, error)
	MoveBookmark(ctx context.Context, bookmarkID, folderID int64) (*instapaper.Bookmark, error)
	UpdateReadProgress(ctx context.Context, bookmarkID int64, progress float64, at time.Time) (*instapaper.Bookmark, error)
	ListFolders(ctx context.Context) ([]instapaper.Folder, error)
	AddFolder(ctx context.Context, title string) (*instapaper.Folder, error)
	DeleteFolder(ctx context.Context, folderID int64) error
	ReorderFolders(ctx context.Context, order []instapaper.FolderPosition) ([]instapaper.Folder, error)
	AddHighlight(ctx context.Context, bookmarkID int64, text string, position int) (*instapaper.Highlight, error)
	ListHighlights(ctx context.Context, bookmarkID int64) ([]instapaper.Highlight, error)
	DeleteHighlight(ctx context.Context, highlightID int64) error
}

var _ API = (*instapaper.Client)(nil)

// Server binds an API to an MCP server.
type Server struct {
	api       API
	logger    logging.Logger
	metrics   *metrics.Metrics
	bulkLimit int
	name      string
	version   string

	mcpServer *server.MCPServer
	validator *schema.Validator
	// tools holds the wrapped handler of every registered tool by name.
	tools map[string]server.ToolHandlerFunc
	// registerErr collects naming and schema errors found while registering.
	registerErr error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the instruments tool calls and bulk outcomes are recorded on.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithBulkLimit caps in-flight requests per bulk tool call. Zero or negative
// leaves bulk calls unbounded.
func WithBulkLimit(limit int) Option {
	return func(s *Server) {
		s.bulkLimit = limit
	}
}

// WithImplementation sets the name and version reported to MCP clients.
func WithImplementation(name, version string) Option {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
		if version != "" {
			s.version = version
		}
	}
}

// New creates a Server and registers every tool, resource and prompt. It fails
// if any name breaks the MCP naming rules or any tool schema does not compile.
func New(api API, opts ...Option) (*Server, error) {
	s := &Server{
		api:     api,
		logger:  logging.GetLogger("mcp_server"),
		metrics: metrics.DefaultMetrics(),
		name:    DefaultName,
		version: DefaultVersion,
		tools:   make(map[string]server.ToolHandlerFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = schema.NewValidator(s.logger.WithField("component", "schema"))

	s.mcpServer = server.NewMCPServer(
		s.name,
		s.version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	if s.registerErr != nil {
		return nil, errors.Wrap(s.registerErr, "failed to register MCP capabilities")
	}

	s.logger.Debug("MCP server configured.",
		"name", s.name,
		"version", s.version,
		"tools", len(s.tools),
		"bulkLimit", s.bulkLimit)
	return s, nil
}

// checkName records a registration error when name breaks the rules for kind.
func (s *Server) checkName(kind schema.EntityType, name string) {
	if err := schema.ValidateName(kind, name); err != nil {
		s.registerErr = errors.CombineErrors(s.registerErr, err)
	}
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ToolNames lists the registered tools.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	return names
}

// ServeStdio serves MCP over stdin/stdout until the input closes or the
// process is signalled.
func (s *Server) ServeStdio() error {
	s.logger.Info("Instapaper MCP server running on stdio.")
	return server.ServeStdio(s.mcpServer)
}
