// Package testutil provides shared test helpers for creating config and settings files.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// DefaultListenAddr is used when a test does not care about the message server.
const DefaultListenAddr = "127.0.0.1:7391"

// SetupTestConfig writes a config file that points the dictionary at dictionaryURL,
// the message server at listenAddr and keeps the settings file inside tmpDir.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, dictionaryURL string, listenAddr string) string {
	t.Helper()

	configContent := fmt.Sprintf(`dictionary:
  base_url: %s
  timeout: 2s
server:
  listen_addr: %s
settings:
  file: %s
`,
		dictionaryURL,
		listenAddr,
		SettingsPath(tmpDir),
	)

	configPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	return configPath
}

// SettingsPath is where SetupTestConfig keeps the settings file.
func SettingsPath(tmpDir string) string {
	return filepath.Join(tmpDir, "settings.yml")
}

// WriteSettings writes a settings file with the given YAML content.
func WriteSettings(t *testing.T, tmpDir string, content string) string {
	t.Helper()

	path := SettingsPath(tmpDir)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
