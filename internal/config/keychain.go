// file: internal/config/keychain.go
package config

import (
	"github.com/cockroachdb/errors"
	"github.com/dkoosis/instapaper-mcp/internal/logging"
	"github.com/zalando/go-keyring"
)

// KeychainService is the service name the Instapaper password is stored
// under in the OS keychain. The account is the Instapaper username.
const KeychainService = "instapaper-mcp"

// diagnosticAccount is the throwaway entry Diagnose writes and removes.
const diagnosticAccount = "instapaper-mcp-diagnostic"

// PasswordStore keeps Instapaper passwords in the OS keychain (macOS Keychain,
// Windows Credential Manager, or the Secret Service on Linux).
type PasswordStore struct {
	logger logging.Logger
}

// NewPasswordStore creates a keychain-backed password store.
func NewPasswordStore(logger logging.Logger) *PasswordStore {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &PasswordStore{logger: logger.WithField("component", "password_store")}
}

// IsAvailable checks if the OS keychain is accessible.
func (s *PasswordStore) IsAvailable() bool {
	_, err := keyring.Get(KeychainService, diagnosticAccount)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		s.logger.Warn("Keychain is inaccessible or permissions are insufficient.", "error", err)
		return false
	}
	return true
}

// Load returns the password stored for username. A missing entry yields an
// empty password and no error.
func (s *PasswordStore) Load(username string) (string, error) {
	if username == "" {
		return "", errors.New("username is required to look up a keychain password")
	}
	password, err := keyring.Get(KeychainService, username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			s.logger.Debug("No password stored in keychain.", "service", KeychainService)
			return "", nil
		}
		return "", errors.Wrap(err, "failed to load password from system keychain")
	}
	s.logger.Debug("Loaded password from keychain.", "service", KeychainService)
	return password, nil
}

// Save stores password for username, replacing any existing entry.
func (s *PasswordStore) Save(username, password string) error {
	if username == "" {
		return errors.New("cannot save a keychain password without a username")
	}
	if password == "" {
		return errors.New("cannot save empty password to keychain")
	}
	if err := keyring.Set(KeychainService, username, password); err != nil {
		s.logger.Warn("Potential keychain issues: check access permissions and that the login keychain is unlocked.")
		return errors.Wrap(err, "failed to save password to system keychain")
	}
	s.logger.Info("Password saved to system keychain.", "service", KeychainService)
	return nil
}

// Delete removes the password stored for username. Deleting a missing entry
// is not an error.
func (s *PasswordStore) Delete(username string) error {
	err := keyring.Delete(KeychainService, username)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, "failed to delete password from system keychain")
	}
	return nil
}

// DiagnosticResult reports each step of a keychain round trip. A nil error
// means the step succeeded.
type DiagnosticResult struct {
	Available  bool
	SetError   error
	GetError   error
	ValueMatch bool
	DeleteErr  error
}

// OK reports whether every step succeeded.
func (r DiagnosticResult) OK() bool {
	return r.Available && r.SetError == nil && r.GetError == nil && r.ValueMatch && r.DeleteErr == nil
}

// Diagnose writes, reads back and deletes a throwaway keychain entry.
func (s *PasswordStore) Diagnose() DiagnosticResult {
	const probe = "probe-value"
	result := DiagnosticResult{Available: s.IsAvailable()}

	if result.SetError = keyring.Set(KeychainService, diagnosticAccount, probe); result.SetError != nil {
		return result
	}
	var got string
	got, result.GetError = keyring.Get(KeychainService, diagnosticAccount)
	result.ValueMatch = result.GetError == nil && got == probe
	result.DeleteErr = keyring.Delete(KeychainService, diagnosticAccount)
	return result
}

// KeychainAdvice returns troubleshooting steps for a failing keychain.
func KeychainAdvice() string {
	return `Keychain troubleshooting:
1. macOS: open Keychain Access, make sure the login keychain is unlocked, and delete stale "instapaper-mcp" entries.
2. Linux: a Secret Service provider (gnome-keyring or KWallet) must be running with an unlocked collection.
3. Windows: check Credential Manager for "instapaper-mcp" entries.
4. Or skip the keychain and set INSTAPAPER_PASSWORD instead.`
}
