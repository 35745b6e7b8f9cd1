// file: cmd/instapaper-mcp/setup.go
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/config"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/spf13/cobra"
)

// claudeServerKey names this server in Claude Desktop's mcpServers map.
const claudeServerKey = "instapaper"

// ClaudeDesktopConfig is the part of Claude Desktop's configuration file this
// command edits. Other top-level keys are preserved through Extra.
type ClaudeDesktopConfig struct {
	MCPServers map[string]MCPServerConfig `json:"mcpServers"`
	Extra      map[string]json.RawMessage `json:"-"`
}

// MCPServerConfig is one server entry in Claude Desktop's configuration.
type MCPServerConfig struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// UnmarshalJSON keeps unknown top-level keys.
func (c *ClaudeDesktopConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.MCPServers = make(map[string]MCPServerConfig)
	if servers, ok := raw["mcpServers"]; ok {
		if err := json.Unmarshal(servers, &c.MCPServers); err != nil {
			return err
		}
		delete(raw, "mcpServers")
	}
	c.Extra = raw
	return nil
}

// MarshalJSON writes mcpServers alongside the preserved keys.
func (c ClaudeDesktopConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(c.Extra)+1)
	for k, v := range c.Extra {
		out[k] = v
	}
	out["mcpServers"] = c.MCPServers
	return json.Marshal(out)
}

// setupAnswers are the values collected interactively by setup.
type setupAnswers struct {
	ConsumerKey    string
	ConsumerSecret string
	Username       string
	Password       string
}

func newSetupCmd() *cobra.Command {
	var (
		claudeConfig string
		useKeychain  bool
	)
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Write a config file and register the server with Claude Desktop",
		Long: `setup asks for the Instapaper consumer key and secret and the account
credentials, writes a default config file if none exists, and adds an
"instapaper" entry to Claude Desktop's configuration.

With --keychain (the default) the password goes to the OS keychain and is
left out of Claude Desktop's configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath
			if path == "" {
				path = defaultConfigPath()
			}
			if claudeConfig == "" {
				claudeConfig = getClaudeConfigPath()
			}
			return runSetup(cmd.InOrStdin(), cmd.OutOrStdout(), path, claudeConfig, useKeychain)
		},
	}
	cmd.Flags().StringVar(&claudeConfig, "claude-config", "", "Path to Claude Desktop's claude_desktop_config.json (default per OS)")
	cmd.Flags().BoolVar(&useKeychain, "keychain", true, "Store the password in the OS keychain instead of Claude Desktop's config")
	return cmd
}

// runSetup collects credentials, writes the config file and registers the
// server with Claude Desktop, falling back to printed instructions.
func runSetup(in io.Reader, out io.Writer, configFile, claudeConfigPath string, useKeychain bool) error {
	exePath, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "failed to get executable path")
	}
	exePath, err = filepath.Abs(exePath)
	if err != nil {
		return errors.Wrap(err, "failed to get absolute executable path")
	}

	answers, err := promptForCredentials(bufio.NewReader(in), out)
	if err != nil {
		return errors.Wrap(err, "failed to get Instapaper credentials")
	}

	if useKeychain {
		store := config.NewPasswordStore(logging.GetLogger("setup"))
		if err := store.Save(answers.Username, answers.Password); err != nil {
			fmt.Fprintf(out, "Warning: could not store the password in the keychain: %v\n", err)
			fmt.Fprintln(out, "The password will be written to Claude Desktop's configuration instead.")
			useKeychain = false
		}
	}

	if err := createDefaultConfig(out, configFile); err != nil {
		return errors.Wrap(err, "failed to create default configuration")
	}

	entry := serverEntry(exePath, configFile, answers, useKeychain)
	if err := configureClaudeDesktop(out, claudeConfigPath, entry); err != nil {
		fmt.Fprintf(out, "Warning: failed to configure Claude Desktop automatically: %v\n", err)
		printManualSetupInstructions(out, claudeConfigPath, entry)
	}

	fmt.Fprintln(out, "✅ Instapaper MCP setup complete.")
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "1. Run 'instapaper-mcp verify' to check the login")
	fmt.Fprintln(out, "2. Restart Claude Desktop")
	fmt.Fprintln(out, "3. Ask 'What is in my Instapaper reading list?'")
	return nil
}

// promptForCredentials reads the consumer pair and account credentials.
func promptForCredentials(r *bufio.Reader, w io.Writer) (setupAnswers, error) {
	var a setupAnswers
	fields := []struct {
		label  string
		target *string
	}{
		{"Instapaper OAuth consumer key: ", &a.ConsumerKey},
		{"Instapaper OAuth consumer secret: ", &a.ConsumerSecret},
		{"Instapaper username (email): ", &a.Username},
		{"Instapaper password: ", &a.Password},
	}
	for _, f := range fields {
		v, err := prompt(r, w, f.label)
		if err != nil {
			return setupAnswers{}, err
		}
		*f.target = v
	}
	return a, nil
}

// serverEntry builds the Claude Desktop entry that launches this binary with
// credentials passed as environment variables.
func serverEntry(exePath, configFile string, a setupAnswers, passwordInKeychain bool) MCPServerConfig {
	env := map[string]string{
		config.EnvConsumerKey:    a.ConsumerKey,
		config.EnvConsumerSecret: a.ConsumerSecret,
		config.EnvUsername:       a.Username,
	}
	if !passwordInKeychain {
		env[config.EnvPassword] = a.Password
	}
	return MCPServerConfig{
		Command: exePath,
		Args:    []string{"serve", "--config", configFile},
		Env:     env,
	}
}

// createDefaultConfig writes a commented config file unless one exists.
func createDefaultConfig(out io.Writer, path string) error {
	if fileExists(path) {
		fmt.Fprintf(out, "Configuration file already exists at %s\n", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create configuration directory")
	}

	fmt.Fprintf(out, "Creating default configuration at %s\n", path)
	defaultConfig := `server:
  name: "instapaper-mcp-server"

# Credentials are passed by Claude Desktop as INSTAPAPER_* environment
# variables; the password may instead live in the OS keychain.
instapaper:
  base_url: "https://www.instapaper.com/api/1"
  request_timeout: 30s
  use_keychain: true

bulk:
  # Maximum in-flight requests per bulk tool call; 0 means unbounded.
  concurrency: 8

logging:
  level: "info"

metrics:
  # Set to e.g. "127.0.0.1:9464" to expose Prometheus metrics.
  addr: ""
`
	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return errors.Wrap(err, "failed to write default configuration file")
	}
	return nil
}

// configureClaudeDesktop adds or replaces the instapaper entry in Claude
// Desktop's configuration, keeping every other server and setting.
func configureClaudeDesktop(out io.Writer, claudeConfigPath string, entry MCPServerConfig) error {
	claudeConfig := ClaudeDesktopConfig{MCPServers: make(map[string]MCPServerConfig)}
	// #nosec G304 -- Path is the OS default or an explicit flag.
	if data, err := os.ReadFile(claudeConfigPath); err == nil {
		if err := json.Unmarshal(data, &claudeConfig); err != nil {
			return errors.Wrapf(err, "existing Claude Desktop configuration at %s is not valid JSON", claudeConfigPath)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to read Claude Desktop configuration")
	}

	claudeConfig.MCPServers[claudeServerKey] = entry

	data, err := json.MarshalIndent(claudeConfig, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal Claude Desktop configuration")
	}
	if err := os.MkdirAll(filepath.Dir(claudeConfigPath), 0o700); err != nil {
		return errors.Wrap(err, "failed to create Claude Desktop configuration directory")
	}
	if err := os.WriteFile(claudeConfigPath, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write Claude Desktop configuration")
	}

	fmt.Fprintf(out, "Successfully configured Claude Desktop at %s\n", claudeConfigPath)
	return nil
}

// getClaudeConfigPath returns the path to Claude Desktop's configuration file
// on this OS.
func getClaudeConfigPath() string {
	var configDir string
	switch runtime.GOOS {
	case "darwin":
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, "Library", "Application Support", "Claude")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "Claude")
	default:
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config", "Claude")
	}
	return filepath.Join(configDir, "claude_desktop_config.json")
}

// printManualSetupInstructions shows the entry to add by hand, with every
// credential replaced by a placeholder.
func printManualSetupInstructions(out io.Writer, claudeConfigPath string, entry MCPServerConfig) {
	redacted := entry
	redacted.Env = make(map[string]string, len(entry.Env))
	for k := range entry.Env {
		redacted.Env[k] = "YOUR_" + k
	}
	snippet, _ := json.MarshalIndent(map[string]interface{}{
		"mcpServers": map[string]MCPServerConfig{claudeServerKey: redacted},
	}, "", "  ")

	fmt.Fprintln(out, "\n==== Manual Claude Desktop Configuration ====")
	fmt.Fprintf(out, "1. Create or edit the file at: %s\n", claudeConfigPath)
	fmt.Fprintln(out, "2. Add the following entry under mcpServers:")
	fmt.Fprintln(out, string(snippet))
	fmt.Fprintln(out, "3. Replace each YOUR_* placeholder with the real value.")
	fmt.Fprintln(out, "4. Restart Claude Desktop to apply the changes.")
	fmt.Fprintln(out, "==============================================")
}
