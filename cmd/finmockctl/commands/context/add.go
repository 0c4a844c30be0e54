package context

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finwire/finmock/internal/cli/contexts"
)

var (
	addServer string
	addUse    bool
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new context",
	Long: `Add a new server context.

Examples:
  # Add a context for a local server
  finmockctl context add local --server http://localhost:8104

  # Add a context and switch to it
  finmockctl context add staging --server http://fin-mock.test.internal:8104 --use`,
	Args: cobra.ExactArgs(1),
	RunE: runContextAdd,
}

func init() {
	addCmd.Flags().StringVar(&addServer, "server", "", "Server URL (required)")
	addCmd.Flags().BoolVar(&addUse, "use", false, "Switch to the new context")
	_ = addCmd.MarkFlagRequired("server")
}

func runContextAdd(cmd *cobra.Command, args []string) error {
	contextName := args[0]

	serverURL := strings.TrimRight(addServer, "/")
	parsed, err := url.Parse(serverURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid server URL %q: must include scheme and host (e.g. http://localhost:8104)", addServer)
	}

	store, err := contexts.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize context store: %w", err)
	}

	if err := store.SetContext(contextName, &contexts.Context{ServerURL: serverURL}); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}

	fmt.Printf("Context '%s' added (%s)\n", contextName, serverURL)

	// First context becomes current automatically
	if addUse || store.GetCurrentContextName() == "" {
		if err := store.UseContext(contextName); err != nil {
			return fmt.Errorf("failed to switch context: %w", err)
		}
		fmt.Printf("Switched to context: %s\n", contextName)
	}

	return nil
}
