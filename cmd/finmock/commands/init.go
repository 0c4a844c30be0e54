package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finwire/finmock/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample finmock configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/finmock/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  finmock init

  # Initialize with custom path
  finmock init --config /etc/finmock/config.yaml

  # Force overwrite existing config
  finmock init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		// Use custom path
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		// Use default path
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: finmock start")
	fmt.Printf("  3. Or specify custom config: finmock start --config %s\n", configPath)
	fmt.Println("\nTest clients connect to the FIN port (default 10103).")
	fmt.Println("Fault injection and message inspection use the control-plane API (default 8104):")
	fmt.Println("  finmockctl status")

	return nil
}
