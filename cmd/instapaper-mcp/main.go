// Command instapaper-mcp serves an Instapaper account to MCP clients over stdio.
// file: cmd/instapaper-mcp/main.go
package main

// Version information, set during build via ldflags.
var (
	Version    = "dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

func main() {
	SetVersion(Version, commitHash, buildDate)
	Execute()
}
