package context

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finwire/finmock/cmd/finmockctl/cmdutil"
	"github.com/finwire/finmock/internal/cli/contexts"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Long: `Delete a server context.

This removes the saved configuration for the context.

Examples:
  # Delete context named "staging"
  finmockctl context delete staging

  # Delete without confirmation
  finmockctl context delete staging --force`,
	Args: cobra.ExactArgs(1),
	RunE: runContextDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
}

func runContextDelete(cmd *cobra.Command, args []string) error {
	contextName := args[0]

	store, err := contexts.NewStore()
	if err != nil {
		return fmt.Errorf("failed to initialize context store: %w", err)
	}

	if _, err = store.GetContext(contextName); err != nil {
		if errors.Is(err, contexts.ErrContextNotFound) {
			return fmt.Errorf("context '%s' not found", contextName)
		}
		return fmt.Errorf("failed to get context: %w", err)
	}

	return cmdutil.RunDeleteWithConfirmation("Context", contextName, deleteForce, func() error {
		return store.DeleteContext(contextName)
	})
}
