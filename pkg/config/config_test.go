package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Write minimal config; everything else comes from defaults
	configContent := `
logging:
  level: "INFO"

controlplane:
  port: 8104
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.FIN.Port != 10103 {
		t.Errorf("Expected default FIN port 10103, got %d", cfg.FIN.Port)
	}
	if cfg.ControlPlane.Port != 8104 {
		t.Errorf("Expected control plane port 8104, got %d", cfg.ControlPlane.Port)
	}
	if cfg.State.Path != "/tmp/finmock_state.json" {
		t.Errorf("Expected default state path, got %q", cfg.State.Path)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// Loading with no config file returns a valid default config.
	// This allows running the mock without a config file for quick testing.
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}

	if cfg == nil {
		t.Fatal("Expected default config to be returned")
	}

	if cfg.ControlPlane.Port != 8104 {
		t.Errorf("Expected default API port 8104, got %d", cfg.ControlPlane.Port)
	}
	if cfg.FIN.Port != 10103 {
		t.Errorf("Expected default FIN port 10103, got %d", cfg.FIN.Port)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_TOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	configContent := `
[logging]
level = "WARN"
format = "json"

[fin]
port = 20103
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load TOML config: %v", err)
	}

	if cfg.Logging.Level != "WARN" {
		t.Errorf("Expected level 'WARN', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected format 'json', got %q", cfg.Logging.Format)
	}
	if cfg.FIN.Port != 20103 {
		t.Errorf("Expected FIN port 20103, got %d", cfg.FIN.Port)
	}
}

func TestLoad_DurationStrings(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
shutdown_timeout: 45s

fin:
  timeouts:
    idle: 2m
    shutdown: 10s
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ShutdownTimeout != 45*time.Second {
		t.Errorf("Expected shutdown_timeout 45s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.FIN.Timeouts.Idle != 2*time.Minute {
		t.Errorf("Expected fin idle timeout 2m, got %v", cfg.FIN.Timeouts.Idle)
	}
	if cfg.FIN.Timeouts.Shutdown != 10*time.Second {
		t.Errorf("Expected fin shutdown timeout 10s, got %v", cfg.FIN.Timeouts.Shutdown)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// Environment variables take precedence over the config file
	t.Setenv("FINMOCK_LOGGING_LEVEL", "ERROR")
	t.Setenv("FINMOCK_CONTROLPLANE_PORT", "9104")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

controlplane:
  port: 8104
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "ERROR" {
		t.Errorf("Expected level 'ERROR' from env var, got %q", cfg.Logging.Level)
	}
	if cfg.ControlPlane.Port != 9104 {
		t.Errorf("Expected port 9104 from env var, got %d", cfg.ControlPlane.Port)
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.FIN.Port != 10103 {
		t.Errorf("Expected default FIN port 10103, got %d", cfg.FIN.Port)
	}
	if cfg.FIN.MACKey != "MOCK_SECRET_KEY" {
		t.Errorf("Expected default MAC key in generated config, got %q", cfg.FIN.MACKey)
	}
	if cfg.FIN.Greeting == nil || !*cfg.FIN.Greeting {
		t.Error("Expected greeting enabled by default")
	}
	if cfg.ControlPlane.Port != 8104 {
		t.Errorf("Expected default API port 8104, got %d", cfg.ControlPlane.Port)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Expected metrics enabled in the default config")
	}
	if cfg.State.Path == "" {
		t.Error("Expected a default state path")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved", "config.yaml")

	original := GetDefaultConfig()
	original.Logging.Level = "DEBUG"
	original.FIN.Port = 20103
	original.FIN.Timeouts.Idle = 90 * time.Second

	if err := SaveConfig(original, configPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	// Saved with restricted permissions
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat config file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected file mode 0600, got %v", info.Mode().Perm())
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Logging.Level != "DEBUG" {
		t.Errorf("Expected level 'DEBUG' after round trip, got %q", loaded.Logging.Level)
	}
	if loaded.FIN.Port != 20103 {
		t.Errorf("Expected FIN port 20103 after round trip, got %d", loaded.FIN.Port)
	}
	if loaded.FIN.Timeouts.Idle != 90*time.Second {
		t.Errorf("Expected idle timeout 90s after round trip, got %v", loaded.FIN.Timeouts.Idle)
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()

	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %q", path)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("Expected filename 'config.yaml', got %q", filepath.Base(path))
	}
}

func TestGetConfigDir(t *testing.T) {
	dir := GetConfigDir()

	if filepath.Base(dir) != "finmock" {
		t.Errorf("Expected directory name 'finmock', got %q", filepath.Base(dir))
	}
}
