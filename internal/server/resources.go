// file: internal/server/resources.go
package server

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper"
	"github.com/dkoosis/instapaper-mcp/internal/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	resourceScheme        = "instapaper://"
	folderResourcePrefix  = resourceScheme + "folder/"
	articleResourcePrefix = resourceScheme + "article/"
	foldersResourceURI    = resourceScheme + "folders"

	mimeJSON = "application/json"
	mimeText = "text/plain"
)

// registerResources registers the fixed folder listings and the per-folder
// and per-article templates.
func (s *Server) registerResources() {
	for _, r := range []struct {
		folder      instapaper.WellKnownFolder
		name        string
		description string
	}{
		{instapaper.FolderUnread, "Unread Bookmarks", "All unread articles in your Instapaper account"},
		{instapaper.FolderArchive, "Archived Bookmarks", "All archived articles"},
		{instapaper.FolderStarred, "Starred Bookmarks", "All starred articles"},
	} {
		selector := instapaper.InFolder(r.folder)
		s.addResource(mcp.NewResource(
			resourceScheme+"bookmarks/"+string(r.folder),
			r.name,
			mcp.WithResourceDescription(r.description),
			mcp.WithMIMEType(mimeJSON),
		), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return s.readBookmarks(ctx, request.Params.URI, selector)
		})
	}

	s.addResource(mcp.NewResource(
		foldersResourceURI,
		"Folders",
		mcp.WithResourceDescription("List of all folders"),
		mcp.WithMIMEType(mimeJSON),
	), s.readFolders)

	s.addResourceTemplate(folderResourcePrefix+"{folder_id}", "Folder Bookmarks", s.readFolder,
		mcp.WithTemplateDescription("Bookmarks in a folder, by folder ID or unread, archive, starred"),
		mcp.WithTemplateMIMEType(mimeJSON),
	)

	s.addResourceTemplate(articleResourcePrefix+"{bookmark_id}", "Article Text", s.readArticle,
		mcp.WithTemplateDescription("Processed text of a bookmarked article"),
		mcp.WithTemplateMIMEType(mimeText),
	)
}

func (s *Server) addResource(resource mcp.Resource, handler server.ResourceHandlerFunc) {
	s.checkName(schema.EntityTypeResource, resource.URI)
	s.mcpServer.AddResource(resource, handler)
}

func (s *Server) addResourceTemplate(uriTemplate, name string, handler server.ResourceTemplateHandlerFunc, opts ...mcp.ResourceTemplateOption) {
	s.checkName(schema.EntityTypeResource, uriTemplate)
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(uriTemplate, name, opts...), handler)
}

func (s *Server) readBookmarks(ctx context.Context, uri string, folder instapaper.FolderSelector) ([]mcp.ResourceContents, error) {
	bookmarks, err := s.api.ListBookmarks(ctx, instapaper.ListBookmarksOptions{Folder: folder})
	if err != nil {
		return nil, resourceError(uri, err)
	}
	return jsonContents(uri, nonNil(bookmarks))
}

func (s *Server) readFolders(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	folders, err := s.api.ListFolders(ctx)
	if err != nil {
		return nil, resourceError(uri, err)
	}
	return jsonContents(uri, nonNil(folders))
}

func (s *Server) readFolder(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	folder, err := instapaper.ParseFolderSelector(lastSegment(uri, folderResourcePrefix))
	if err != nil {
		return nil, resourceError(uri, err)
	}
	if folder.IsZero() {
		return nil, resourceError(uri, invalidArgumentsf("folder is required"))
	}
	return s.readBookmarks(ctx, uri, folder)
}

func (s *Server) readArticle(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id, err := strconv.ParseInt(lastSegment(uri, articleResourcePrefix), 10, 64)
	if err != nil {
		return nil, resourceError(uri, invalidArgumentsf("bookmark_id must be an integer"))
	}
	text, err := s.api.GetArticleText(ctx, id)
	if err != nil {
		return nil, resourceError(uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: mimeText, Text: text},
	}, nil
}

// lastSegment returns what follows prefix in uri, or "" when uri lacks it.
func lastSegment(uri, prefix string) string {
	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok {
		return ""
	}
	return strings.Trim(rest, "/")
}

func jsonContents(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, resourceError(uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: mimeJSON, Text: string(text)},
	}, nil
}

func resourceError(uri string, err error) error {
	return errors.Wrapf(err, "failed to read resource %s", uri)
}
