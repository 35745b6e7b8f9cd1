// file: internal/server/server_test.go
package server

import (
	"context"
	"testing"

	"github.com/dkoosis/instapaper-mcp/internal/instapaper/instapapertest"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryToolHasCompiledSchema(t *testing.T) {
	s := newTestServer(t, instapapertest.NewServer(t))

	names := s.ToolNames()
	assert.ElementsMatch(t, names, s.validator.Names())
}

func TestSchemaRejectsArgumentsBeforeHandler(t *testing.T) {
	srv := instapapertest.NewServer(t)
	s := newTestServer(t, srv)

	tests := []struct {
		tool     string
		args     map[string]interface{}
		contains string
	}{
		{"get_article_content", map[string]interface{}{"bookmark_id": "101"}, "/bookmark_id"},
		{"get_article_content", map[string]interface{}{"bookmark_id": float64(101), "format": "pdf"}, "/format"},
		{"list_bookmarks", map[string]interface{}{"limit": float64(0)}, "/limit"},
		{"update_read_progress", map[string]interface{}{"bookmark_id": float64(1), "progress": float64(2)}, "/progress"},
		{"add_bookmark", map[string]interface{}{"title": "no url"}, "url"},
		{"star_bookmarks_bulk", map[string]interface{}{"bookmark_ids": []interface{}{"a"}}, "/bookmark_ids/0"},
		{"reorder_folders", map[string]interface{}{"folder_order": []interface{}{map[string]interface{}{"folder_id": float64(1)}}}, "position"},
	}
	for _, tc := range tests {
		t.Run(tc.tool, func(t *testing.T) {
			msg := toolError(t, callTool(t, s, tc.tool, tc.args))
			assert.Contains(t, msg, "invalid tool arguments")
			assert.Contains(t, msg, tc.contains)
		})
	}
	assert.Empty(t, srv.Requests())
}

func TestNilArgumentsValidateAsEmptyObject(t *testing.T) {
	srv := instapapertest.NewServer(t)
	srv.AddResponse("/folders/list", instapapertest.JSON(`[]`))
	s := newTestServer(t, srv)

	var folders struct {
		Folders []interface{} `json:"folders"`
	}
	decodeResult(t, callTool(t, s, "list_folders", nil), &folders)
	assert.Empty(t, folders.Folders)
}

func TestRegistrationRejectsBadNames(t *testing.T) {
	s := newTestServer(t, instapapertest.NewServer(t))
	require.NoError(t, s.registerErr)

	s.addTool(mcp.NewTool("Bad-Tool"), func(context.Context, mcp.CallToolRequest) (interface{}, error) {
		return "", nil
	})
	s.checkName("prompt", "Weekly Digest")
	require.Error(t, s.registerErr)
	assert.Contains(t, s.registerErr.Error(), "Bad-Tool")
	assert.NotContains(t, s.ToolNames(), "Bad-Tool")
}

func TestWithImplementation(t *testing.T) {
	s := newTestServer(t, instapapertest.NewServer(t), WithImplementation("custom", ""))
	assert.Equal(t, "custom", s.name)
	assert.Equal(t, DefaultVersion, s.version)
}
