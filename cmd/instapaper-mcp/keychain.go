// file: cmd/instapaper-mcp/keychain.go
package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/config"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/spf13/cobra"
)

func newKeychainCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "keychain",
		Short: "Manage the Instapaper password stored in the OS keychain",
	}
	cmd.PersistentFlags().StringVar(&username, "username", "", "Instapaper username (defaults to the configured one)")

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store the password, read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := keychainUser(username)
			if err != nil {
				return err
			}
			password, err := prompt(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), "Instapaper password: ")
			if err != nil {
				return err
			}
			if err := config.NewPasswordStore(logging.GetLogger("keychain")).Save(user, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Password stored for %s.\n", user)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := keychainUser(username)
			if err != nil {
				return err
			}
			if err := config.NewPasswordStore(logging.GetLogger("keychain")).Delete(user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password removed for %s.\n", user)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "diagnose",
		Short: "Check that the OS keychain can store and return a value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeychainDiagnostics(cmd.OutOrStdout(), config.NewPasswordStore(logging.GetLogger("keychain_diag")))
		},
	})
	return cmd
}

// keychainUser returns flagUser, or the username from configuration.
func keychainUser(flagUser string) (string, error) {
	if flagUser != "" {
		return flagUser, nil
	}
	_, cfg, err := setupLoggingAndConfig()
	if err != nil {
		return "", err
	}
	if cfg.Instapaper.Username == "" {
		return "", errors.Newf("no username: pass --username or set %s", config.EnvUsername)
	}
	return cfg.Instapaper.Username, nil
}

// runKeychainDiagnostics prints a keychain round trip and advice on failure.
func runKeychainDiagnostics(out io.Writer, store *config.PasswordStore) error {
	fmt.Fprintln(out, "=== Keychain Diagnostics ===")
	fmt.Fprintf(out, "Keychain Service: %s\n", config.KeychainService)

	result := store.Diagnose()
	fmt.Fprintf(out, "%-18s: %t\n", "Available", result.Available)
	fmt.Fprintf(out, "%-18s: %s\n", "Set Operation", stepStatus(result.SetError))
	fmt.Fprintf(out, "%-18s: %s\n", "Get Operation", stepStatus(result.GetError))
	fmt.Fprintf(out, "%-18s: %t\n", "Get Value Match", result.ValueMatch)
	fmt.Fprintf(out, "%-18s: %s\n", "Delete Operation", stepStatus(result.DeleteErr))

	if result.OK() {
		fmt.Fprintln(out, "\nKeychain appears to be working correctly.")
		return nil
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, config.KeychainAdvice())
	for _, err := range []error{result.SetError, result.GetError, result.DeleteErr} {
		if err != nil {
			return errors.Wrap(err, "keychain diagnostics failed")
		}
	}
	return errors.New("keychain diagnostics failed")
}

func stepStatus(err error) string {
	if err != nil {
		return "failed: " + err.Error()
	}
	return "ok"
}

// prompt writes label and reads one trimmed, non-empty line.
func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", errors.Wrapf(err, "failed to read %s", strings.TrimSuffix(strings.TrimSpace(label), ":"))
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.Newf("%s cannot be empty", strings.TrimSuffix(strings.TrimSpace(label), ":"))
	}
	return line, nil
}
