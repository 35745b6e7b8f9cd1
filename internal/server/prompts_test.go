// file: internal/server/prompts_test.go
package server

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, result.Messages, 1)
	assert.Equal(t, mcp.RoleUser, result.Messages[0].Role)
	text, ok := result.Messages[0].Content.(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Messages[0].Content)
	return text.Text
}

func TestStaticPrompts(t *testing.T) {
	names := make([]string, 0, len(staticPrompts))
	for _, p := range staticPrompts {
		names = append(names, p.name)
		result, err := p.handler()(context.Background(), mcp.GetPromptRequest{})
		require.NoError(t, err)
		assert.Equal(t, p.text, promptText(t, result))
		assert.Equal(t, p.description, result.Description)
	}
	assert.ElementsMatch(t, []string{
		"weekly_reading_digest", "recommend_next_read", "organize_backlog",
		"archive_candidates", "save_as_private_bookmark",
	}, names)
}

func TestSavePrivateBookmarkGuideNamesBothTools(t *testing.T) {
	assert.Contains(t, savePrivateBookmarkGuide, "add_private_bookmark")
	assert.Contains(t, savePrivateBookmarkGuide, "add_bookmark instead")
	assert.Contains(t, savePrivateBookmarkGuide, "source_label")
}

func TestResearchSynthesisPrompt(t *testing.T) {
	var request mcp.GetPromptRequest
	request.Params.Name = "research_synthesis"
	request.Params.Arguments = map[string]string{"topic": "distributed consensus"}

	result, err := handleResearchSynthesis(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t,
		`Please find all articles in my Instapaper related to "distributed consensus" and provide a comprehensive synthesis of the key insights, themes, and practical takeaways.`,
		promptText(t, result))
}

func TestResearchSynthesisRequiresTopic(t *testing.T) {
	for _, args := range []map[string]string{nil, {"topic": "   "}} {
		var request mcp.GetPromptRequest
		request.Params.Arguments = args
		_, err := handleResearchSynthesis(context.Background(), request)
		require.Error(t, err)
		assert.True(t, errors.Is(err, instapaper.ErrValidation))
		assert.Contains(t, err.Error(), "topic argument is required")
	}
}
