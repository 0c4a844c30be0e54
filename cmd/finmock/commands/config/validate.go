package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finwire/finmock/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the finmock configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  finmock config validate

  # Validate specific config file
  finmock config validate --config /etc/finmock/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	// Load and validate configuration
	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	// Determine path for display
	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	// Additional validation checks
	var warnings []string

	// Check archive is configured
	if cfg.State.ArchivePath == "" {
		warnings = append(warnings, "Archive path not configured - full message bodies will not survive the audit ring")
	}

	// Check state file location survives reboots
	if strings.HasPrefix(cfg.State.Path, "/tmp/") {
		warnings = append(warnings, fmt.Sprintf("State file %s is under /tmp - session state will not survive a reboot", cfg.State.Path))
	}

	// Print results
	fmt.Printf("Configuration file: %s\n", displayPath)
	fmt.Println("Validation: OK")

	if len(warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Printf("\nConfiguration summary:\n")
	fmt.Printf("  FIN port:        %d\n", cfg.FIN.Port)
	fmt.Printf("  API port:        %d\n", cfg.ControlPlane.Port)
	fmt.Printf("  State file:      %s\n", cfg.State.Path)
	fmt.Printf("  Log level:       %s\n", cfg.Logging.Level)

	return nil
}
