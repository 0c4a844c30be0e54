package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configHeader is prepended to generated configuration files.
const configHeader = `# finmock Configuration File
#
# Generated by 'finmock init'. The values below are the defaults; edit as
# needed. Environment variables with the FINMOCK_ prefix override file
# values (e.g. FINMOCK_LOGGING_LEVEL=DEBUG, FINMOCK_FIN_PORT=20103).

`

// InitConfig creates a default configuration file at the default location
// ($XDG_CONFIG_HOME/finmock/config.yaml).
//
// Returns the path the file was written to. Fails if the file already
// exists, unless force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath creates a default configuration file at the given path,
// creating parent directories as needed. Fails if the file already exists,
// unless force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	content := append([]byte(configHeader), data...)
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
