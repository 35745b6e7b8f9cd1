// file: internal/server/prompts.go
package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkoosis/instapaper-mcp/internal/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const savePrivateBookmarkGuide = `You have access to the add_private_bookmark tool for saving content from LLMs and generated text to Instapaper.

WHEN TO USE add_private_bookmark:
- Saving AI-generated content (summaries, analyses, notes you create)
- Saving email subscriptions or newsletters (source: "email")
- Saving personal notes or research (source: "notebook")
- Saving Slack messages or team communications (source: "slack")
- Saving clipped text or snippets (source: "clipped-text")
- Saving any URL-less content you want to preserve

WHEN TO USE add_bookmark instead:
- Saving web articles or web pages (these have URLs)
- Saving content from websites
- Saving any content where you have an HTTP/HTTPS URL

KEY DIFFERENCES:
- add_bookmark: Requires a URL, for web content
- add_private_bookmark: No URL needed, for personal/generated content

BEST PRACTICES FOR LLM-GENERATED CONTENT:
1. When you create a summary, analysis, or generated text: Use add_private_bookmark to save it
2. Set source_label to something descriptive like "generated", "summary", "notes", "analysis"
3. Include a meaningful title that describes what was generated
4. Add a description explaining the context
5. This creates an archived record of your AI interactions

EXAMPLE USAGE:
If you've generated a research summary, save it with:
  - content: The full generated text/HTML
  - title: "Research Summary: [Topic]"
  - source_label: "generated" or "analysis"
  - description: "Generated by AI on [date] for [purpose]"

This helps you maintain a searchable archive of all your generated insights and analyses.`

// staticPrompt is a prompt whose text takes no arguments.
type staticPrompt struct {
	name        string
	description string
	text        string
}

var staticPrompts = []staticPrompt{
	{
		name:        "weekly_reading_digest",
		description: "Generate a weekly digest of unread articles organized by topic",
		text:        "Please analyze my unread Instapaper articles and create a weekly reading digest. Group articles by topic, highlight the most important ones, and suggest a reading order.",
	},
	{
		name:        "recommend_next_read",
		description: "Suggest which article to read next based on interests and starred content",
		text:        "Based on my starred articles and reading history, recommend which unread article I should read next and explain why it would be valuable.",
	},
	{
		name:        "organize_backlog",
		description: "Suggest how to organize unread articles into folders",
		text:        "Review my unread articles and suggest a folder organization system. Propose folder names and which articles should go in each folder.",
	},
	{
		name:        "archive_candidates",
		description: "Identify old unread articles that might be worth archiving",
		text:        "Identify unread articles that are older than 3 months or seem less relevant now. Suggest which ones to archive and which to keep.",
	},
	{
		name:        "save_as_private_bookmark",
		description: "Guidelines for saving generated or URL-less content as a private bookmark",
		text:        savePrivateBookmarkGuide,
	},
}

// registerPrompts registers the reading-workflow prompts.
func (s *Server) registerPrompts() {
	for _, p := range staticPrompts {
		s.addPrompt(mcp.NewPrompt(p.name,
			mcp.WithPromptDescription(p.description),
		), p.handler())
	}

	s.addPrompt(mcp.NewPrompt("research_synthesis",
		mcp.WithPromptDescription("Synthesize insights from articles on a specific topic"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("The research topic to synthesize"),
			mcp.RequiredArgument(),
		),
	), handleResearchSynthesis)
}

func (s *Server) addPrompt(prompt mcp.Prompt, handler server.PromptHandlerFunc) {
	s.checkName(schema.EntityTypePrompt, prompt.Name)
	s.mcpServer.AddPrompt(prompt, handler)
}

func (p staticPrompt) handler() func(context.Context, mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return func(_ context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return userPrompt(p.description, p.text), nil
	}
}

func handleResearchSynthesis(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := strings.TrimSpace(request.Params.Arguments["topic"])
	if topic == "" {
		return nil, invalidArgumentsf("topic argument is required")
	}
	text := fmt.Sprintf("Please find all articles in my Instapaper related to %q and provide a comprehensive synthesis of the key insights, themes, and practical takeaways.", topic)
	return userPrompt("Research synthesis: "+topic, text), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}
