// file: internal/server/resources_test.go
package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper/instapapertest"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRequest(uri string) mcp.ReadResourceRequest {
	var request mcp.ReadResourceRequest
	request.Params.URI = uri
	return request
}

func singleText(t *testing.T, contents []mcp.ResourceContents) mcp.TextResourceContents {
	t.Helper()
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok, "expected text contents, got %T", contents[0])
	return text
}

func TestReadWellKnownFolderResource(t *testing.T) {
	srv := instapapertest.NewServer(t)
	srv.AddResponse("/bookmarks/list", instapapertest.JSON(listJSON))
	s := newTestServer(t, srv)

	uri := "instapaper://bookmarks/archive"
	contents, err := s.readBookmarks(context.Background(), uri, instapaper.InFolder(instapaper.FolderArchive))
	require.NoError(t, err)

	text := singleText(t, contents)
	assert.Equal(t, uri, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)
	var bookmarks []instapaper.Bookmark
	require.NoError(t, json.Unmarshal([]byte(text.Text), &bookmarks))
	assert.Len(t, bookmarks, 2)

	form := srv.FirstRequestTo(t, "/bookmarks/list").Form
	assert.Equal(t, "archive", form.Get("folder_id"))
	assert.Empty(t, form.Get("limit"), "resources list without a limit")
}

func TestReadFoldersResource(t *testing.T) {
	srv := instapapertest.NewServer(t)
	srv.AddResponse("/folders/list", instapapertest.JSON(`[]`))
	s := newTestServer(t, srv)

	contents, err := s.readFolders(context.Background(), readRequest("instapaper://folders"))
	require.NoError(t, err)
	assert.Equal(t, "[]", singleText(t, contents).Text)
}

func TestReadFolderTemplate(t *testing.T) {
	srv := instapapertest.NewServer(t)
	srv.AddResponse("/bookmarks/list", instapapertest.JSON(listJSON))
	s := newTestServer(t, srv)
	ctx := context.Background()

	_, err := s.readFolder(ctx, readRequest("instapaper://folder/9"))
	require.NoError(t, err)
	_, err = s.readFolder(ctx, readRequest("instapaper://folder/Starred"))
	require.NoError(t, err)

	reqs := srv.RequestsTo("/bookmarks/list")
	require.Len(t, reqs, 2)
	assert.Equal(t, "9", reqs[0].Form.Get("folder_id"))
	assert.Equal(t, "starred", reqs[1].Form.Get("folder_id"))

	for _, uri := range []string{"instapaper://folder/", "instapaper://folder/inbox"} {
		_, err = s.readFolder(ctx, readRequest(uri))
		assert.True(t, errors.Is(err, instapaper.ErrValidation), uri)
	}
	assert.Equal(t, 2, srv.Count("/bookmarks/list"))
}

func TestReadArticleTemplate(t *testing.T) {
	srv := instapapertest.NewServer(t)
	srv.AddResponse("/bookmarks/get_text", instapapertest.Text("<p>hello</p>"))
	s := newTestServer(t, srv)
	ctx := context.Background()

	contents, err := s.readArticle(ctx, readRequest("instapaper://article/101"))
	require.NoError(t, err)
	text := singleText(t, contents)
	assert.Equal(t, "text/plain", text.MIMEType)
	assert.Equal(t, "<p>hello</p>", text.Text)
	assert.Equal(t, "101", srv.FirstRequestTo(t, "/bookmarks/get_text").Form.Get("bookmark_id"))

	_, err = s.readArticle(ctx, readRequest("instapaper://article/abc"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, instapaper.ErrValidation))
	assert.Contains(t, err.Error(), "instapaper://article/abc")
}

func TestResourceErrorWrapsCause(t *testing.T) {
	srv := instapapertest.NewServer(t)
	s := newTestServer(t, srv)

	_, err := s.readFolders(context.Background(), readRequest("instapaper://folders"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, instapaper.ErrAPIRequest), "unregistered endpoint answers 404")
	assert.Contains(t, err.Error(), "failed to read resource instapaper://folders")
}
