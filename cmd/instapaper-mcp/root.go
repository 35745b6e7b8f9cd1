// file: cmd/instapaper-mcp/root.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/config"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	built   = "unknown"

	configPath string
	logLevel   string
)

// rootCmd runs the MCP server when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "instapaper-mcp",
	Short: "Instapaper MCP server",
	Long: `instapaper-mcp exposes an Instapaper account to AI assistants over the
Model Context Protocol (stdio transport).

It offers tools to list, search, read, save and organize bookmarks (including
bulk operations), resources for folder listings and article text, and prompt
templates for common reading workflows.

Credentials come from INSTAPAPER_CONSUMER_KEY, INSTAPAPER_CONSUMER_SECRET,
INSTAPAPER_USERNAME and INSTAPAPER_PASSWORD, an optional YAML config file,
or, for the password, the OS keychain.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute adds all child commands to the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// SetVersion records build information for the version output and the MCP handshake.
func SetVersion(v, rev, date string) {
	version = v
	commit = rev
	built = date
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML configuration file (default ~/.config/instapaper-mcp/config.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newKeychainCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// defaultConfigPath returns the conventional config file location.
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("configs", "instapaper-mcp.yaml")
	}
	return filepath.Join(homeDir, ".config", "instapaper-mcp", "config.yaml")
}

// resolveConfigPath returns the --config value, or the default path when it
// exists, or "" to run from the environment alone.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if path := defaultConfigPath(); fileExists(path) {
		return path
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setupLoggingAndConfig loads configuration and installs the stderr logger at
// the configured level, which --log-level overrides.
func setupLoggingAndConfig() (logging.Logger, *config.Config, error) {
	logging.SetupDefaultLogger(levelOr("info"))

	path := resolveConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}
	logging.SetupDefaultLogger(levelOr(cfg.Logging.Level))

	logger := logging.GetLogger("main")
	logger.Debug("Configuration loaded.", "path", path, "baseURL", cfg.Instapaper.BaseURL)
	return logger, cfg, nil
}

func levelOr(fallback string) string {
	if logLevel != "" {
		return logLevel
	}
	return fallback
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "instapaper-mcp %s (commit %s, built %s)\n", version, commit, built)
		},
	}
}
