// file: internal/server/errors.go
package server

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/instapaper"
	"github.com/mark3labs/mcp-go/mcp"
)

// errorKind classifies err for logs.
func errorKind(err error) string {
	switch {
	case errors.Is(err, instapaper.ErrValidation):
		return "validation"
	case errors.Is(err, instapaper.ErrAuthentication), errors.Is(err, instapaper.ErrTokenParse):
		return "authentication"
	case errors.Is(err, instapaper.ErrAPIRequest):
		return "api"
	case errors.Is(err, instapaper.ErrDecode):
		return "decode"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

// errorPayload is the body of a failed tool call.
type errorPayload struct {
	Error string `json:"error"`
}

// errorResult renders err as a tool result flagged isError.
func errorResult(err error) *mcp.CallToolResult {
	text, merr := json.Marshal(errorPayload{Error: err.Error()})
	if merr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(text))
}

// textResult renders a handler's output. Strings pass through unchanged;
// anything else is indented JSON.
func textResult(out interface{}) (*mcp.CallToolResult, error) {
	if s, ok := out.(string); ok {
		return mcp.NewToolResultText(s), nil
	}
	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errorResult(errors.Wrap(err, "failed to encode tool result")), nil
	}
	return mcp.NewToolResultText(string(text)), nil
}

// invalidArgumentsf reports a malformed or missing tool argument.
func invalidArgumentsf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), instapaper.ErrValidation)
}
