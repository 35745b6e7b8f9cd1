// file: cmd/instapaper-mcp/setup_test.go
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dkoosis/instapaper-mcp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	os.Exit(m.Run())
}

const answersInput = "ck\ncs\nreader@example.com\nhunter2\n"

func TestPromptForCredentials(t *testing.T) {
	var out bytes.Buffer
	a, err := promptForCredentials(bufio.NewReader(strings.NewReader(answersInput)), &out)
	require.NoError(t, err)
	assert.Equal(t, setupAnswers{ConsumerKey: "ck", ConsumerSecret: "cs", Username: "reader@example.com", Password: "hunter2"}, a)
	assert.Contains(t, out.String(), "consumer key")

	_, err = promptForCredentials(bufio.NewReader(strings.NewReader("ck\n\n")), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestPromptAcceptsFinalLineWithoutNewline(t *testing.T) {
	v, err := prompt(bufio.NewReader(strings.NewReader("  value  ")), &bytes.Buffer{}, "Label: ")
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	_, err = prompt(bufio.NewReader(strings.NewReader("")), &bytes.Buffer{}, "Label: ")
	assert.Error(t, err)
}

func TestServerEntryOmitsKeychainPassword(t *testing.T) {
	a := setupAnswers{ConsumerKey: "ck", ConsumerSecret: "cs", Username: "u", Password: "p"}

	entry := serverEntry("/bin/instapaper-mcp", "/cfg.yaml", a, true)
	assert.Equal(t, []string{"serve", "--config", "/cfg.yaml"}, entry.Args)
	assert.NotContains(t, entry.Env, config.EnvPassword)
	assert.Equal(t, "ck", entry.Env[config.EnvConsumerKey])

	entry = serverEntry("/bin/instapaper-mcp", "/cfg.yaml", a, false)
	assert.Equal(t, "p", entry.Env[config.EnvPassword])
}

func TestConfigureClaudeDesktopPreservesOtherEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Claude", "claude_desktop_config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	existing := `{"mcpServers":{"other":{"command":"/bin/other","args":[]}},"globalShortcut":"Ctrl+Space"}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0o600))

	entry := MCPServerConfig{Command: "/bin/instapaper-mcp", Args: []string{"serve"}}
	require.NoError(t, configureClaudeDesktop(&bytes.Buffer{}, path, entry))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got ClaudeDesktopConfig
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, entry, got.MCPServers[claudeServerKey])
	assert.Equal(t, "/bin/other", got.MCPServers["other"].Command)
	assert.JSONEq(t, `"Ctrl+Space"`, string(got.Extra["globalShortcut"]))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigureClaudeDesktopCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new", "claude_desktop_config.json")
	require.NoError(t, configureClaudeDesktop(&bytes.Buffer{}, path, MCPServerConfig{Command: "x", Args: []string{}}))

	var got ClaudeDesktopConfig
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Len(t, got.MCPServers, 1)
}

func TestConfigureClaudeDesktopRefusesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	err := configureClaudeDesktop(&bytes.Buffer{}, path, MCPServerConfig{Command: "x"})
	require.Error(t, err)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "{not json", string(data), "an unreadable file is left untouched")
}

func TestCreateDefaultConfigLoadsAndKeepsExisting(t *testing.T) {
	t.Setenv(config.EnvBulkConcurrency, "")
	path := filepath.Join(t.TempDir(), "instapaper-mcp", "config.yaml")
	var out bytes.Buffer
	require.NoError(t, createDefaultConfig(&out, path))
	assert.Contains(t, out.String(), "Creating default configuration")

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Bulk.Concurrency)
	assert.True(t, cfg.Instapaper.UseKeychain)

	require.NoError(t, os.WriteFile(path, []byte("custom: true\n"), 0o600))
	out.Reset()
	require.NoError(t, createDefaultConfig(&out, path))
	assert.Contains(t, out.String(), "already exists")
	data, _ := os.ReadFile(path)
	assert.Equal(t, "custom: true\n", string(data))
}

func TestRunSetupStoresPasswordInKeychain(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	claudePath := filepath.Join(dir, "claude_desktop_config.json")

	var out bytes.Buffer
	require.NoError(t, runSetup(strings.NewReader(answersInput), &out, configFile, claudePath, true))
	t.Cleanup(func() { _ = config.NewPasswordStore(nil).Delete("reader@example.com") })

	password, err := config.NewPasswordStore(nil).Load("reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)

	data, err := os.ReadFile(claudePath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.Contains(t, string(data), config.EnvUsername)
	assert.FileExists(t, configFile)
}

func TestManualInstructionsRedactCredentials(t *testing.T) {
	var out bytes.Buffer
	entry := serverEntry("/bin/instapaper-mcp", "/cfg.yaml", setupAnswers{ConsumerKey: "ck-secret", ConsumerSecret: "cs-secret", Username: "u", Password: "pw-secret"}, false)
	printManualSetupInstructions(&out, "/claude.json", entry)

	assert.NotContains(t, out.String(), "secret")
	assert.Contains(t, out.String(), "YOUR_"+config.EnvPassword)
}

func TestKeychainDiagnostics(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runKeychainDiagnostics(&out, config.NewPasswordStore(nil)))
	assert.Contains(t, out.String(), "working correctly")
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-01-01")
	cmd := newVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	assert.Equal(t, "instapaper-mcp 1.2.3 (commit abc123, built 2026-01-01)\n", out.String())
}
