// file: internal/server/helpers_test.go
package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dkoosis/instapaper-mcp/internal/instapaper"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper/instapapertest"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

const bookmarkJSON = `{"type":"bookmark","bookmark_id":101,"url":"https://example.com/go","title":"Concurrency in Go","description":"Goroutines and channels","time":1700000000,"starred":"0","progress":0.25,"progress_timestamp":1700000100}`

const listJSON = `[
	{"type":"user","user_id":7,"username":"reader@example.com"},
	` + bookmarkJSON + `,
	{"type":"bookmark","bookmark_id":102,"url":"https://example.com/rust","title":"Ownership","description":"Borrowing rules","time":1700000200,"starred":"1","progress":0,"progress_timestamp":0}
]`

// newTestServer wires a Server to a real client talking to srv.
func newTestServer(t *testing.T, srv *instapapertest.Server, opts ...Option) *Server {
	t.Helper()
	client := instapaper.NewClient(instapaper.Credentials{
		ConsumerKey:    instapapertest.ConsumerKey,
		ConsumerSecret: instapapertest.ConsumerSecret,
		Username:       instapapertest.Username,
		Password:       instapapertest.Password,
	},
		instapaper.WithBaseURL(srv.BaseURL),
		instapaper.WithLogger(logging.GetNoopLogger()),
		instapaper.WithMetrics(nil),
	)
	base := []Option{WithLogger(logging.GetNoopLogger()), WithMetrics(nil)}
	s, err := New(client, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

// callTool invokes a registered tool the way the MCP server would.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	handler, ok := s.tools[name]
	require.True(t, ok, "tool %q is not registered", name)

	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = args
	result, err := handler(context.Background(), request)
	require.NoError(t, err, "tool handlers report failures in the result, not as errors")
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

// decodeResult requires a successful result and decodes its JSON body.
func decodeResult(t *testing.T, result *mcp.CallToolResult, v interface{}) {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), v))
}

// toolError requires a failed result and returns its error message.
func toolError(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, result.IsError, "expected an error result")
	var payload struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
	require.NotEmpty(t, payload.Error)
	return payload.Error
}

// bulkResult is the decoded payload of a bulk tool.
type bulkResult struct {
	Total    int                  `json:"total"`
	Failed   int                  `json:"failed"`
	FolderID int64                `json:"folder_id"`
	Progress float64              `json:"progress"`
	Results  map[string]bulkEntry `json:"results"`
	Articles map[string]bulkEntry `json:"articles"`
}

type bulkEntry struct {
	Success bool   `json:"success"`
	Content string `json:"content"`
	Error   string `json:"error"`
}

// decodeBulk decodes a bulk payload and the count reported under verb.
func decodeBulk(t *testing.T, result *mcp.CallToolResult, verb string) (bulkResult, int) {
	t.Helper()
	var out bulkResult
	decodeResult(t, result, &out)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &raw))
	count, ok := raw[verb].(float64)
	require.True(t, ok, "payload has no %q count", verb)
	return out, int(count)
}
